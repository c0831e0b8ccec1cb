package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runctx"
	"github.com/abdul-hamid-achik/ordercheck/packages/http"
	"github.com/abdul-hamid-achik/ordercheck/packages/metrics"
	"github.com/abdul-hamid-achik/ordercheck/packages/suite"
)

const (
	// DefaultDelay is the pause between two checks
	DefaultDelay = 500 * time.Millisecond
	// RunIDHeader carries the run id on every request
	RunIDHeader = "X-Run-ID"
	// CancelledDetail is recorded for checks that never ran
	CancelledDetail = "run cancelled"
)

// ErrAlreadyStarted is returned by a second call to Run
var ErrAlreadyStarted = errors.New("orchestrator already started")

type State int

const (
	NotStarted State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

type Config struct {
	BaseURL string
	// Delay between checks; zero disables pacing
	Delay   time.Duration
	Headers map[string]string
}

// RecordHook observes every record as soon as it is appended to the ledger
type RecordHook func(result.Record)

type Option func(*Orchestrator)

func WithRecordHook(h RecordHook) Option {
	return func(o *Orchestrator) {
		o.onRecord = h
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator runs a list of executors once
type Orchestrator struct {
	client   *http.Client
	config   *Config
	logger   zerolog.Logger
	onRecord RecordHook

	mu    sync.Mutex
	state State
}

func New(client *http.Client, cfg *Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = &Config{}
	}
	if client == nil {
		client = http.NewClient()
	}

	o := &Orchestrator{
		client: client,
		config: cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Report is the outcome of a completed run
type Report struct {
	RunID     string
	BaseURL   string
	StartedAt time.Time
	Duration  time.Duration
	Records   []result.Record
	Summary   result.Summary
	Latency   metrics.LatencySnapshot
}

// Failed reports whether any check failed
func (r *Report) Failed() bool {
	return r.Summary.Failed > 0
}

// Run executes the executors in order and returns the report. The HTTP
// client is closed when Run returns.
func (o *Orchestrator) Run(ctx context.Context, executors []suite.Executor) (*Report, error) {
	if err := o.start(); err != nil {
		return nil, err
	}
	defer o.finish()

	runID := uuid.NewString()
	rc := runctx.New(runID)
	latency := metrics.NewLatency()

	normOpts := []http.NormalizerOption{
		http.WithLatency(latency),
		http.WithHeader(RunIDHeader, runID),
	}
	for k, v := range o.config.Headers {
		normOpts = append(normOpts, http.WithHeader(k, v))
	}
	caller := http.NewNormalizer(o.client, normOpts...)

	var limiter *rate.Limiter
	if o.config.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(o.config.Delay), 1)
	}

	log := o.logger.With().Str("run_id", runID).Logger()
	log.Info().
		Str("base_url", o.config.BaseURL).
		Int("checks", len(executors)).
		Msg("run started")

	startedAt := time.Now()
	ledger := result.NewLedger()

	for i, e := range executors {
		if err := o.pace(ctx, limiter); err != nil {
			log.Warn().Err(err).Int("remaining", len(executors)-i).Msg("run cancelled")
			for _, rest := range executors[i:] {
				o.append(ledger, result.Skipped(rest.Name, CancelledDetail))
			}
			break
		}

		start := time.Now()
		records := o.invoke(ctx, e, caller, rc)
		o.append(ledger, records...)

		log.Debug().
			Str("check", e.Name).
			Int("records", len(records)).
			Dur("duration", time.Since(start)).
			Msg("check finished")
	}

	report := &Report{
		RunID:     runID,
		BaseURL:   o.config.BaseURL,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Records:   ledger.Records(),
		Summary:   ledger.Summary(),
		Latency:   latency.Snapshot(),
	}

	log.Info().
		Int("passed", report.Summary.Passed).
		Int("failed", report.Summary.Failed).
		Int("skipped", report.Summary.Skipped).
		Int("calls", caller.Calls()).
		Dur("duration", report.Duration).
		Msg("run completed")

	return report, nil
}

func (o *Orchestrator) start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != NotStarted {
		return ErrAlreadyStarted
	}
	o.state = Running
	return nil
}

func (o *Orchestrator) finish() {
	o.client.Close()

	o.mu.Lock()
	o.state = Completed
	o.mu.Unlock()
}

// pace blocks until the next check may start
func (o *Orchestrator) pace(ctx context.Context, limiter *rate.Limiter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// invoke runs one executor, converting a panic into a single Fail record
func (o *Orchestrator) invoke(ctx context.Context, e suite.Executor, c suite.Caller, rc *runctx.Context) (records []result.Record) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Str("check", e.Name).Interface("panic", r).Msg("check panicked")
			records = []result.Record{result.Failed(e.Name, fmt.Sprintf("unexpected error: %v", r))}
		}
	}()
	return e.Run(ctx, c, rc)
}

func (o *Orchestrator) append(ledger *result.Ledger, records ...result.Record) {
	ledger.Append(records...)
	if o.onRecord == nil {
		return
	}
	for _, r := range records {
		o.onRecord(r)
	}
}
