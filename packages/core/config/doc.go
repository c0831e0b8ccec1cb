// Package config handles configuration loading and management for ordercheck.
//
// It provides functionality for:
//   - Loading configuration from .ordercheck.yaml or ordercheck.yaml files
//   - Loading .env files into the process environment
//   - ORDERCHECK_* environment overrides
//   - Default configuration values
//   - Configuration merging (defaults < file < environment < flags)
package config
