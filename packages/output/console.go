package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runner"
)

// DefaultPassedPreview is how many passed checks the summary lists by name
const DefaultPassedPreview = 10

const ruleWidth = 60

type ConsoleFormatter struct {
	writer        io.Writer
	noColor       bool
	passedPreview int
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer:        os.Stdout,
		passedPreview: DefaultPassedPreview,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// WithPassedPreview caps the passed checks listed by FormatReport. Negative
// values are ignored.
func WithPassedPreview(n int) ConsoleOption {
	return func(f *ConsoleFormatter) {
		if n >= 0 {
			f.passedPreview = n
		}
	}
}

// FormatRecord prints the live line for one record
func (f *ConsoleFormatter) FormatRecord(r result.Record) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()

	stamp := clock(r.Timestamp)

	switch r.Status {
	case result.Pass:
		fmt.Fprintln(f.writer, green(fmt.Sprintf("[%s] ✓ %s", stamp, r.Name)))
	case result.Fail:
		fmt.Fprintln(f.writer, red(fmt.Sprintf("[%s] ✗ %s", stamp, r.Name)))
		if r.Details != "" {
			fmt.Fprintf(f.writer, "  %s\n", yellow("Details: "+r.Details))
		}
	case result.Skip:
		fmt.Fprintln(f.writer, yellow(fmt.Sprintf("[%s] - %s (%s)", stamp, r.Name, r.Details)))
	default:
		fmt.Fprintln(f.writer, blue(fmt.Sprintf("[%s] ℹ %s", stamp, r.Name)))
	}
}

// FormatReport prints the run summary. Failed checks come first with their
// details, then a preview of the passed ones.
func (f *ConsoleFormatter) FormatReport(report *runner.Report) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	s := report.Summary

	f.banner("Test Summary")
	fmt.Fprintln(f.writer, green(fmt.Sprintf("Passed: %d", s.Passed)))
	fmt.Fprintln(f.writer, red(fmt.Sprintf("Failed: %d", s.Failed)))
	fmt.Fprintln(f.writer, yellow(fmt.Sprintf("Skipped: %d", s.Skipped)))
	fmt.Fprintln(f.writer, blue(fmt.Sprintf("Info: %d", s.Info)))

	if s.Counted() > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", cyan(fmt.Sprintf("Success Rate: %.1f%%", s.SuccessRate)))
		switch s.Verdict() {
		case result.VerdictAllPassed:
			fmt.Fprintf(f.writer, "\n%s\n", green("✓ All order service checks passed!"))
		case result.VerdictMostlyPassed:
			fmt.Fprintf(f.writer, "\n%s\n", yellow("⚠ Most order service checks passed with some issues"))
		default:
			fmt.Fprintf(f.writer, "\n%s\n", red("✗ Order service checks need attention"))
		}
	}

	var failed, passed []result.Record
	for _, r := range report.Records {
		switch r.Status {
		case result.Fail:
			failed = append(failed, r)
		case result.Pass:
			passed = append(passed, r)
		}
	}

	if len(failed) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", red("--- FAILED CHECKS ---"))
		for _, r := range failed {
			fmt.Fprintf(f.writer, "- %s: %s\n", r.Name, r.Details)
		}
	}

	if len(passed) > 0 && f.passedPreview > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", green("--- PASSED CHECKS ---"))
		shown := min(len(passed), f.passedPreview)
		for _, r := range passed[:shown] {
			fmt.Fprintf(f.writer, "✓ %s\n", r.Name)
		}
		if rest := len(passed) - shown; rest > 0 {
			fmt.Fprintf(f.writer, "... and %d more\n", rest)
		}
	}

	if l := report.Latency; l.Calls > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", cyan(fmt.Sprintf("Calls: %d (%d errors)  p50 %s  p95 %s  max %s",
			l.Calls, l.Errors, round(l.P50), round(l.P95), round(l.Max))))
	}
	fmt.Fprintf(f.writer, "Time:  %dms\n", report.Duration.Milliseconds())
}

// FormatHeader prints the banner shown before a run
func (f *ConsoleFormatter) FormatHeader(version, baseURL string) {
	bold := color.New(color.Bold).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold("ordercheck"), version)
	fmt.Fprintln(f.writer, blue("Target: "+baseURL))
	f.banner("Starting Order Service Checks")
}

// FormatSaved reports where an artifact was written
func (f *ConsoleFormatter) FormatSaved(kind, path string) {
	blue := color.New(color.FgBlue).SprintFunc()
	fmt.Fprintln(f.writer, blue(fmt.Sprintf("%s saved to %s", kind, path)))
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) banner(title string) {
	cyan := color.New(color.FgCyan).SprintFunc()
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(f.writer, "\n%s\n%s\n%s\n\n", cyan(rule), cyan(title), cyan(rule))
}

// clock renders a record timestamp as HH:MM:SS
func clock(ts string) string {
	t, err := time.Parse(result.TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format(time.TimeOnly)
}

func round(d time.Duration) time.Duration {
	if d >= time.Millisecond {
		return d.Round(time.Millisecond)
	}
	return d.Round(time.Microsecond)
}
