// Package result defines the records a run produces and the ledger that
// collects them in execution order.
package result

import (
	"fmt"
	"time"
)

// Status is the outcome of one logical check
type Status int

const (
	Pass Status = iota
	Fail
	Skip
	Info
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	case Info:
		return "INFO"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PASS":
		*s = Pass
	case "FAIL":
		*s = Fail
	case "SKIP":
		*s = Skip
	case "INFO":
		*s = Info
	default:
		return fmt.Errorf("unknown status %q", string(text))
	}
	return nil
}

// TimestampFormat is the layout of Record.Timestamp
const TimestampFormat = time.RFC3339

// now is swapped in tests
var now = time.Now

// Record is the immutable outcome of one logical check
type Record struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

func New(name string, status Status, details string) Record {
	return Record{
		Name:      name,
		Status:    status,
		Details:   details,
		Timestamp: now().Format(TimestampFormat),
	}
}

func Passed(name, details string) Record {
	return New(name, Pass, details)
}

func Failed(name, details string) Record {
	return New(name, Fail, details)
}

func Skipped(name, details string) Record {
	return New(name, Skip, details)
}

func Noted(name, details string) Record {
	return New(name, Info, details)
}

// Unavailable is the Skip emitted when a check's dependency is missing
func Unavailable(name, dependency string) Record {
	return Skipped(name, dependency+" unavailable")
}

// Label composes a check name from its suite and variant
func Label(suite, variant string) string {
	return suite + " - " + variant
}
