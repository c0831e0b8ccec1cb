package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/config"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runner"
	"github.com/abdul-hamid-achik/ordercheck/packages/history"
	"github.com/abdul-hamid-achik/ordercheck/packages/http"
	"github.com/abdul-hamid-achik/ordercheck/packages/logging"
	"github.com/abdul-hamid-achik/ordercheck/packages/notify"
	"github.com/abdul-hamid-achik/ordercheck/packages/output"
	"github.com/abdul-hamid-achik/ordercheck/packages/suite"
)

var runCmd = &cobra.Command{
	Use:   "run [baseURL]",
	Short: "Run the order service checks",
	Long: `Run every order service check against a running service.

The base URL comes from the argument, ORDERCHECK_BASE_URL, the config file
or defaults to http://localhost:3000.

Examples:
  ordercheck run
  ordercheck run http://localhost:3000
  ordercheck run --endpoints module --delay 0
  ordercheck run --junit-file report.xml --history .ordercheck.db
  ordercheck run -H "Authorization: Bearer $TOKEN"
  ordercheck run --watch`,
	Args: maxOneArg,
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	configFlag     string
	envFileFlag    string
	endpointsFlag  string
	timeoutFlag    string
	delayFlag      string
	outputFileFlag string
	junitFileFlag  string
	historyFlag    string
	logLevelFlag   string
	headerFlags    []string
	noColorFlag    bool
	insecureFlag   bool
	watchFlag      bool
)

func init() {
	addRunFlags(runCmd)
}

// addRunFlags binds the run flags to cmd, resetting them to their defaults
func addRunFlags(cmd *cobra.Command) {
	// Config sources
	cmd.Flags().StringVar(&configFlag, "config", getEnvString("ORDERCHECK_CONFIG", ""), "Path to config file (env: ORDERCHECK_CONFIG)")
	cmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("ORDERCHECK_ENV_FILE", ""), "Path to .env file (default .env if present) (env: ORDERCHECK_ENV_FILE)")

	// Target flags
	cmd.Flags().StringVar(&endpointsFlag, "endpoints", suite.ProfileREST, "Endpoint set: rest or module")
	cmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, `Header sent with every request ("Key: Value")`)
	cmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", false, "Disable SSL certificate validation")

	// Execution flags
	cmd.Flags().StringVar(&timeoutFlag, "timeout", "30s", "Request timeout (e.g., 30s, 1m)")
	cmd.Flags().StringVar(&delayFlag, "delay", "500ms", "Pause between checks (0 disables)")
	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the config and .env files and re-run on change")

	// Output flags
	cmd.Flags().StringVar(&outputFileFlag, "output-file", config.DefaultOutput, "Path of the JSON results artifact")
	cmd.Flags().StringVar(&junitFileFlag, "junit-file", "", "Also write a JUnit XML report")
	cmd.Flags().StringVar(&historyFlag, "history", "", "SQLite database recording every run")
	cmd.Flags().StringVar(&logLevelFlag, "log-level", config.DefaultLogLevel, "Diagnostic log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func maxOneArg(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return usageError(fmt.Errorf("accepts at most 1 arg, received %d", len(args)))
	}
	return nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args, false)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := executeRun(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if watchFlag {
		return watch(ctx, cmd, args)
	}
	return checkOutcome(report, cfg)
}

// checkOutcome turns a report into the command result
func checkOutcome(report *runner.Report, cfg *config.Config) error {
	if report.Failed() && cfg.GetFailOnError() {
		return &ExitError{Code: ExitCheckFailure}
	}
	return nil
}

// resolveConfig merges defaults, the config file, the environment and the
// flags. reload re-reads the .env file over variables it set before.
func resolveConfig(cmd *cobra.Command, args []string, reload bool) (*config.Config, error) {
	if reload {
		if path := envFilePath(); path != "" {
			if err := config.OverloadDotEnv(path); err != nil {
				return nil, configError(err)
			}
		}
	} else if err := config.LoadDotEnv(envFileFlag, envFileFlag != ""); err != nil {
		return nil, configError(err)
	}

	fileCfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, configError(err)
	}

	envCfg, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return nil, configError(err)
	}

	cliCfg, err := flagConfig(cmd, args)
	if err != nil {
		return nil, usageError(err)
	}

	cfg := fileCfg.Merge(envCfg).Merge(cliCfg)
	if err := cfg.Validate(); err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

// flagConfig holds only the flags set on the command line
func flagConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	c := &config.Config{}
	flags := cmd.Flags()

	if len(args) == 1 {
		c.BaseURL = strings.TrimSpace(args[0])
	}
	if flags.Changed("endpoints") {
		c.Endpoints = endpointsFlag
	}
	if flags.Changed("timeout") {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid timeout value %q (use format like 30s, 1m, 500ms)", timeoutFlag)
		}
		c.Timeout = int(d.Milliseconds())
	}
	if flags.Changed("delay") {
		d, err := time.ParseDuration(delayFlag)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid delay value %q (use format like 500ms, 1s, 0)", delayFlag)
		}
		c.Delay = config.IntPtr(int(d.Milliseconds()))
	}
	if flags.Changed("output-file") {
		c.Output = outputFileFlag
	}
	if flags.Changed("junit-file") {
		c.JUnit = junitFileFlag
	}
	if flags.Changed("history") {
		c.History = historyFlag
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevelFlag
	}
	if flags.Changed("no-color") {
		c.NoColor = config.BoolPtr(noColorFlag)
	}
	if flags.Changed("insecure") {
		c.ValidateSSL = config.BoolPtr(!insecureFlag)
	}

	for _, h := range headerFlags {
		key, value, found := strings.Cut(h, ":")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid header %q (use \"Key: Value\")", h)
		}
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[key] = strings.TrimSpace(value)
	}

	return c, nil
}

// executeRun performs one full run and persists its results. Persistence
// problems are reported but never change the outcome of the checks.
func executeRun(ctx context.Context, cfg *config.Config, out io.Writer) (*runner.Report, error) {
	logger := logging.New(logging.Options{Level: cfg.LogLevel, NoColor: cfg.GetNoColor()})

	endpoints, err := suite.EndpointsFor(cfg.Endpoints)
	if err != nil {
		return nil, configError(err)
	}

	formatter := output.NewConsoleFormatter(
		output.WithWriter(out),
		output.WithNoColor(cfg.GetNoColor()),
		output.WithPassedPreview(cfg.GetPassedPreview()),
	)
	formatter.FormatHeader(version, cfg.BaseURL)

	client := http.NewClient(
		http.WithTimeout(cfg.GetTimeout()),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithUserAgent("ordercheck/"+version),
	)
	orchestrator := runner.New(client,
		&runner.Config{
			BaseURL: cfg.BaseURL,
			Delay:   cfg.GetDelay(),
			Headers: cfg.Headers,
		},
		runner.WithLogger(logger),
		runner.WithRecordHook(formatter.FormatRecord),
	)

	checks := suite.New(cfg.BaseURL, endpoints, suite.DefaultFixtures())
	report, err := orchestrator.Run(ctx, checks.Executors())
	if err != nil {
		formatter.FormatError(err)
		return nil, err
	}

	formatter.FormatReport(report)
	persist(context.WithoutCancel(ctx), cfg, report, formatter, logger)
	return report, nil
}

func persist(ctx context.Context, cfg *config.Config, report *runner.Report, formatter *output.ConsoleFormatter, logger zerolog.Logger) {
	if cfg.Output != "" {
		if err := output.WriteArtifact(cfg.Output, report); err != nil {
			formatter.FormatError(err)
		} else {
			formatter.FormatSaved("Results", cfg.Output)
		}
	}

	if cfg.JUnit != "" {
		if err := output.WriteJUnit(cfg.JUnit, report); err != nil {
			formatter.FormatError(err)
		} else {
			formatter.FormatSaved("JUnit report", cfg.JUnit)
		}
	}

	previous := recordHistory(ctx, cfg.History, report, formatter, logger)

	if cfg.Notify.SlackWebhook != "" {
		on, err := notify.ParseNotifyOn(cfg.Notify.On)
		if err != nil {
			formatter.FormatError(err)
			return
		}

		var opts []notify.SlackOption
		if cfg.Notify.SlackChannel != "" {
			opts = append(opts, notify.WithSlackChannel(cfg.Notify.SlackChannel))
		}
		manager := notify.NewManager(on, notify.NewSlackNotifier(cfg.Notify.SlackWebhook, opts...))
		if err := manager.Notify(ctx, notify.NewRunSummary(report), previous); err != nil {
			logger.Warn().Err(err).Msg("failed to send notification")
		}
	}
}

// recordHistory saves the report and returns the run before it, if any
func recordHistory(ctx context.Context, path string, report *runner.Report, formatter *output.ConsoleFormatter, logger zerolog.Logger) *history.Run {
	if path == "" {
		return nil
	}

	store, err := history.Open(path)
	if err != nil {
		formatter.FormatError(err)
		return nil
	}
	defer store.Close()

	previous, err := store.Last(ctx)
	if err != nil {
		if !errors.Is(err, history.ErrNoRuns) {
			logger.Warn().Err(err).Msg("reading previous run")
		}
		previous = nil
	}

	if err := store.Save(ctx, report); err != nil {
		formatter.FormatError(err)
	}
	return previous
}

func envFilePath() string {
	path := envFileFlag
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// watchedFiles lists the files whose changes trigger a re-run
func watchedFiles() []string {
	var files []string
	cfgPath := configFlag
	if cfgPath == "" {
		cfgPath = config.FindConfigFile(".")
	}
	if cfgPath != "" {
		files = append(files, cfgPath)
	}
	if envPath := envFilePath(); envPath != "" {
		files = append(files, envPath)
	}
	return files
}

func watch(ctx context.Context, cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	files := watchedFiles()
	if len(files) == 0 {
		return usageError(errors.New("--watch needs a config file or .env file to watch"))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files, so watch the directories
	watched := make(map[string]bool)
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		watched[abs] = true

		dir := filepath.Dir(abs)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	fmt.Fprintf(out, "\nWatching %s for changes... (press Ctrl+C to stop)\n\n", strings.Join(files, ", "))

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer
	rerun := make(chan string, 1)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- name:
				default:
				}
			})

		case name := <-rerun:
			fmt.Fprintf(out, "\n\nFile changed: %s\nRe-running checks...\n\n", name)

			cfg, err := resolveConfig(cmd, args, true)
			if err != nil {
				output.NewConsoleFormatter(output.WithWriter(out)).FormatError(err)
			} else if _, err := executeRun(ctx, cfg, out); err != nil {
				output.NewConsoleFormatter(output.WithWriter(out)).FormatError(err)
			}

			fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			output.NewConsoleFormatter(output.WithWriter(out)).FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}
