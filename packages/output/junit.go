package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runner"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents one run
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single record
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a test failure
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitSkipped represents a skipped test
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter renders a report as JUnit XML for CI systems
type JUnitFormatter struct {
	writer io.Writer
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

// FormatReport writes the report as one testsuite. Fail records become
// failures, Skip records skipped cases and Info records carry their details
// in system-out.
func (f *JUnitFormatter) FormatReport(report *runner.Report) error {
	timestamp := report.StartedAt.Format(time.RFC3339)

	suite := JUnitTestSuite{
		Name:      "ordercheck " + report.BaseURL,
		Tests:     len(report.Records),
		Failures:  report.Summary.Failed,
		Skipped:   report.Summary.Skipped,
		Time:      report.Duration.Seconds(),
		Timestamp: timestamp,
		TestCases: make([]JUnitTestCase, 0, len(report.Records)),
	}

	for _, r := range report.Records {
		tc := JUnitTestCase{
			Name:      r.Name,
			ClassName: "ordercheck",
		}

		switch r.Status {
		case result.Fail:
			tc.Failure = &JUnitFailure{
				Message: r.Details,
				Type:    "CheckFailed",
				Content: r.Details,
			}
		case result.Skip:
			tc.Skipped = &JUnitSkipped{Message: r.Details}
		case result.Info:
			tc.SystemOut = r.Details
		}

		suite.TestCases = append(suite.TestCases, tc)
	}

	suites := JUnitTestSuites{
		Name:       "ordercheck",
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Skipped:    suite.Skipped,
		Time:       suite.Time,
		Timestamp:  timestamp,
		TestSuites: []JUnitTestSuite{suite},
	}

	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	return encoder.Encode(suites)
}

// WriteJUnit writes the report as JUnit XML to path
func WriteJUnit(path string, report *runner.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating junit report: %w", err)
	}
	defer file.Close()

	if err := NewJUnitFormatter(JUnitWithWriter(file)).FormatReport(report); err != nil {
		return fmt.Errorf("writing junit report: %w", err)
	}
	return nil
}
