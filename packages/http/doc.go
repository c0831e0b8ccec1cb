// Package http provides the HTTP client and request normalizer used by the
// order checks.
//
// It wraps the standard library's http package with:
//   - A per-call timeout and a bounded redirect policy
//   - Proxy settings from the environment and an optional TLS bypass
//   - A Normalizer that turns every call into an Outcome: a status code with
//     an optional decoded body, or a transport error. It never fails past
//     its own boundary.
package http
