// Package notify sends run results to chat services.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runner"
	"github.com/abdul-hamid-achik/ordercheck/packages/history"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every run
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when a check fails
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when no check fails
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends notifications on failure and on the first clean
	// run after a failed one
	NotifyRecovery NotifyOn = "recovery"
)

// ParseNotifyOn validates a policy name. An empty name means failure.
func ParseNotifyOn(s string) (NotifyOn, error) {
	switch NotifyOn(s) {
	case "":
		return NotifyFailure, nil
	case NotifyAlways, NotifyFailure, NotifySuccess, NotifyRecovery:
		return NotifyOn(s), nil
	default:
		return "", errors.New("notify.on must be one of always, failure, success, recovery")
	}
}

// RunSummary is what a notifier reports about one run
type RunSummary struct {
	RunID         string         `json:"run_id"`
	BaseURL       string         `json:"base_url"`
	Summary       result.Summary `json:"summary"`
	Duration      time.Duration  `json:"duration"`
	FailedResults []FailedCheck  `json:"failed_results,omitempty"`
	IsRecovery    bool           `json:"is_recovery,omitempty"`
}

// FailedCheck is one failed record
type FailedCheck struct {
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
}

// NewRunSummary collects the failed records of a report
func NewRunSummary(report *runner.Report) *RunSummary {
	s := &RunSummary{
		RunID:    report.RunID,
		BaseURL:  report.BaseURL,
		Summary:  report.Summary,
		Duration: report.Duration,
	}
	for _, r := range report.Records {
		if r.Status == result.Fail {
			s.FailedResults = append(s.FailedResults, FailedCheck{Name: r.Name, Details: r.Details})
		}
	}
	return s
}

// Notifier is the interface for notification services
type Notifier interface {
	Notify(ctx context.Context, summary *RunSummary) error
	Name() string
}

// Manager applies the notification policy and fans out to every notifier
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
}

func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
	}
}

func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Enabled reports whether any notifier is configured
func (m *Manager) Enabled() bool {
	return len(m.notifiers) > 0
}

// Notify sends the summary when the policy allows it. previous is the run
// before this one, or nil when there is no history.
func (m *Manager) Notify(ctx context.Context, summary *RunSummary, previous *history.Run) error {
	failed := summary.Summary.Failed > 0
	previousFailed := previous != nil && previous.Summary.Failed > 0

	shouldNotify := false
	switch m.notifyOn {
	case NotifyAlways:
		shouldNotify = true
	case NotifyFailure:
		shouldNotify = failed
	case NotifySuccess:
		shouldNotify = !failed
	case NotifyRecovery:
		if previousFailed && !failed {
			shouldNotify = true
			summary.IsRecovery = true
		}
		if failed {
			shouldNotify = true
		}
	}

	if !shouldNotify {
		return nil
	}

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
