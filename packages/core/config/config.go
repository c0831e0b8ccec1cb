package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/ordercheck/packages/http"
	"github.com/abdul-hamid-achik/ordercheck/packages/notify"
	"github.com/abdul-hamid-achik/ordercheck/packages/suite"
)

// Config represents the ordercheck configuration
type Config struct {
	BaseURL       string            `yaml:"baseURL,omitempty"`
	Endpoints     string            `yaml:"endpoints,omitempty"`     // rest or module
	Timeout       int               `yaml:"timeout,omitempty"`       // milliseconds
	Delay         *int              `yaml:"delay,omitempty"`         // milliseconds between checks
	PassedPreview *int              `yaml:"passedPreview,omitempty"` // passed checks listed in the summary
	Output        string            `yaml:"output,omitempty"`        // JSON artifact path
	JUnit         string            `yaml:"junit,omitempty"`         // JUnit XML path
	History       string            `yaml:"history,omitempty"`       // SQLite path
	Headers       map[string]string `yaml:"headers,omitempty"`       // sent with every request
	ValidateSSL   *bool             `yaml:"validateSSL,omitempty"`
	NoColor       *bool             `yaml:"noColor,omitempty"`
	LogLevel      string            `yaml:"logLevel,omitempty"`
	Notify        NotifyConfig      `yaml:"notify,omitempty"`
	FailOnError   *bool             `yaml:"failOnError,omitempty"`
}

type NotifyConfig struct {
	On           string `yaml:"on,omitempty"`
	SlackWebhook string `yaml:"slackWebhook,omitempty"`
	SlackChannel string `yaml:"slackChannel,omitempty"`
}

// BoolPtr returns a pointer to a bool value
func BoolPtr(b bool) *bool {
	return &b
}

// IntPtr returns a pointer to an int value
func IntPtr(i int) *int {
	return &i
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

func getInt(i *int, defaultVal int) int {
	if i == nil {
		return defaultVal
	}
	return *i
}

func (c *Config) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeoutMs * time.Millisecond
	}
	return time.Duration(c.Timeout) * time.Millisecond
}

// GetDelay returns the pause between checks; zero disables pacing
func (c *Config) GetDelay() time.Duration {
	return time.Duration(max(getInt(c.Delay, DefaultDelayMs), 0)) * time.Millisecond
}

func (c *Config) GetPassedPreview() int {
	return getInt(c.PassedPreview, DefaultPassedPreview)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetFailOnError reports whether a failed check fails the process, defaulting
// to true
func (c *Config) GetFailOnError() bool {
	return getBool(c.FailOnError, true)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".ordercheck.yaml",
	"ordercheck.yaml",
	".ordercheck.yml",
}

// LoadConfig loads configuration from the specified path or searches for
// config files in the working directory. The result is merged over defaults.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	if path := FindConfigFile(dir); path != "" {
		return loadConfigFromFile(path)
	}
	return DefaultConfig(), nil
}

// FindConfigFile returns the first config file present in dir, or ""
func FindConfigFile(dir string) string {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}
	return ""
}

// loadConfigFromFile expands ${VAR} references against the environment
// before decoding
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return DefaultConfig().Merge(&file), nil
}

// LoadDotEnv exports the variables of a .env file into the process
// environment without overriding variables that are already set. A missing
// file is an error only when required is true.
func LoadDotEnv(path string, required bool) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// EnvPrefix prefixes every environment override
const EnvPrefix = "ORDERCHECK_"

// FromEnv builds the overrides found in the environment. lookup is usually
// os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	c := &Config{}
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	var errs []error
	intVar := func(name string, set func(int)) {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			set(n)
		}
	}
	boolVar := func(name string, set func(bool)) {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			set(b)
		}
	}
	strVar := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	strVar("BASE_URL", &c.BaseURL)
	strVar("ENDPOINTS", &c.Endpoints)
	strVar("OUTPUT", &c.Output)
	strVar("JUNIT", &c.JUnit)
	strVar("HISTORY", &c.History)
	strVar("LOG_LEVEL", &c.LogLevel)
	strVar("NOTIFY_ON", &c.Notify.On)
	strVar("SLACK_WEBHOOK", &c.Notify.SlackWebhook)
	strVar("SLACK_CHANNEL", &c.Notify.SlackChannel)
	intVar("TIMEOUT", func(n int) { c.Timeout = n })
	intVar("DELAY", func(n int) { c.Delay = IntPtr(n) })
	intVar("PASSED_PREVIEW", func(n int) { c.PassedPreview = IntPtr(n) })
	boolVar("VALIDATE_SSL", func(b bool) { c.ValidateSSL = BoolPtr(b) })
	boolVar("NO_COLOR", func(b bool) { c.NoColor = BoolPtr(b) })
	boolVar("FAIL_ON_ERROR", func(b bool) { c.FailOnError = BoolPtr(b) })

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Endpoints != "" {
		result.Endpoints = other.Endpoints
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Output != "" {
		result.Output = other.Output
	}
	if other.JUnit != "" {
		result.JUnit = other.JUnit
	}
	if other.History != "" {
		result.History = other.History
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.Notify.On != "" {
		result.Notify.On = other.Notify.On
	}
	if other.Notify.SlackWebhook != "" {
		result.Notify.SlackWebhook = other.Notify.SlackWebhook
	}
	if other.Notify.SlackChannel != "" {
		result.Notify.SlackChannel = other.Notify.SlackChannel
	}

	// Pointer fields - only override if explicitly set in other config
	if other.Delay != nil {
		result.Delay = other.Delay
	}
	if other.PassedPreview != nil {
		result.PassedPreview = other.PassedPreview
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.FailOnError != nil {
		result.FailOnError = other.FailOnError
	}

	if len(c.Headers) > 0 || len(other.Headers) > 0 {
		result.Headers = make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			result.Headers[k] = v
		}
		for k, v := range other.Headers {
			result.Headers[k] = v
		}
	}

	return &result
}

// Validate checks the merged configuration before a run
func (c *Config) Validate() error {
	var errs []error

	if err := http.ValidateURL(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("baseURL: %w", err))
	}
	if _, err := suite.EndpointsFor(c.Endpoints); err != nil {
		errs = append(errs, fmt.Errorf("endpoints: %w", err))
	}
	if _, err := notify.ParseNotifyOn(c.Notify.On); err != nil {
		errs = append(errs, err)
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, fmt.Errorf("logLevel: %w", err))
		}
	}
	if c.Delay != nil && *c.Delay < 0 {
		errs = append(errs, errors.New("delay must not be negative"))
	}

	return errors.Join(errs...)
}

// SaveConfig writes the configuration as YAML
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// OverloadDotEnv re-reads a .env file, replacing variables already set. Watch
// mode uses it so edits to the file take effect on the next run.
func OverloadDotEnv(path string) error {
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("reloading env file %s: %w", path, err)
	}
	return nil
}
