// Package output renders run reports.
//
// Supported formats:
//   - Console: live colored record lines and the closing summary
//   - JSON: the persisted results artifact, validated against ArtifactSchema
//   - JUnit: JUnit XML for CI integration
package output
