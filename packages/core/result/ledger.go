package result

// Ledger is the append-only, ordered sequence of records for one run
type Ledger struct {
	records []Record
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Append(records ...Record) {
	l.records = append(l.records, records...)
}

// Records returns a copy in insertion order
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Ledger) Len() int {
	return len(l.records)
}

// Summary returns the aggregate of the records appended so far
func (l *Ledger) Summary() Summary {
	return Summarize(l.records)
}

// Summary aggregates a ledger. SuccessRate is a percentage of
// Pass / (Pass+Fail+Skip); Info records are excluded.
type Summary struct {
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	Skipped     int     `json:"skipped"`
	Info        int     `json:"info"`
	SuccessRate float64 `json:"success_rate"`
}

// Verdict buckets the success rate for the closing line of a report
type Verdict int

const (
	VerdictAllPassed Verdict = iota
	VerdictMostlyPassed
	VerdictNeedsAttention
)

// MostlyPassedThreshold is the success rate at or above which a run with
// failures is still considered mostly passing
const MostlyPassedThreshold = 80.0

func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		switch r.Status {
		case Pass:
			s.Passed++
		case Fail:
			s.Failed++
		case Skip:
			s.Skipped++
		case Info:
			s.Info++
		}
	}

	if total := s.Counted(); total > 0 {
		s.SuccessRate = float64(s.Passed) / float64(total) * 100
	}
	return s
}

// Counted is the number of records that take part in the success rate
func (s Summary) Counted() int {
	return s.Passed + s.Failed + s.Skipped
}

func (s Summary) Verdict() Verdict {
	switch {
	case s.SuccessRate == 100:
		return VerdictAllPassed
	case s.SuccessRate >= MostlyPassedThreshold:
		return VerdictMostlyPassed
	default:
		return VerdictNeedsAttention
	}
}
