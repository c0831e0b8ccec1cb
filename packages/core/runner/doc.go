// Package runner drives one verification run against the order API.
//
// It provides:
//   - Sequential execution of the check executors in registration order
//   - A run context shared by the checks of a single run
//   - Inter-step pacing with a rate limiter
//   - Panic containment so one broken check never aborts the run
//   - A final Report carrying the ledger, summary and latency figures
//
// An Orchestrator is single-use. Checks never run concurrently, so the run
// context and the ledger need no locking.
package runner
