// Package cmd implements the ordercheck CLI commands using Cobra.
//
// Available commands:
//   - run: Verify a running order service end to end
//   - list: Show the checks and the routes they call
//   - history: Show recent runs from the history database
//   - init: Write a starter .ordercheck.yaml
//   - version: Show ordercheck version information
//
// Settings come from defaults, the config file, ORDERCHECK_* environment
// variables and flags, in increasing order of precedence.
package cmd
