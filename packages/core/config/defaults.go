package config

import (
	"github.com/abdul-hamid-achik/ordercheck/packages/output"
	"github.com/abdul-hamid-achik/ordercheck/packages/suite"
)

const (
	DefaultBaseURL       = "http://localhost:3000"
	DefaultTimeoutMs     = 30000
	DefaultDelayMs       = 500
	DefaultPassedPreview = 10
	DefaultOutput        = output.DefaultArtifactPath
	DefaultLogLevel      = "warn"
	DefaultNotifyOn      = "failure"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		Endpoints:     suite.ProfileREST,
		Timeout:       DefaultTimeoutMs,
		Delay:         IntPtr(DefaultDelayMs),
		PassedPreview: IntPtr(DefaultPassedPreview),
		Output:        DefaultOutput,
		ValidateSSL:   BoolPtr(true),
		NoColor:       BoolPtr(false),
		FailOnError:   BoolPtr(true),
		LogLevel:      DefaultLogLevel,
		Notify: NotifyConfig{
			On: DefaultNotifyOn,
		},
	}
}
