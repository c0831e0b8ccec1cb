package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runner"
)

// DefaultArtifactPath is where a run's results are written unless configured
const DefaultArtifactPath = "order_service_test_results.json"

// Artifact is the persisted JSON document of one run
type Artifact struct {
	RunID     string          `json:"run_id,omitempty"`
	Timestamp string          `json:"timestamp"`
	BaseURL   string          `json:"base_url,omitempty"`
	Summary   result.Summary  `json:"summary"`
	Results   []result.Record `json:"results"`
}

// ArtifactSchema describes the artifact document
const ArtifactSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["timestamp", "summary", "results"],
  "properties": {
    "run_id": {"type": "string"},
    "timestamp": {"type": "string"},
    "base_url": {"type": "string"},
    "summary": {
      "type": "object",
      "required": ["passed", "failed", "skipped", "info", "success_rate"],
      "properties": {
        "passed": {"type": "integer", "minimum": 0},
        "failed": {"type": "integer", "minimum": 0},
        "skipped": {"type": "integer", "minimum": 0},
        "info": {"type": "integer", "minimum": 0},
        "success_rate": {"type": "number", "minimum": 0, "maximum": 100}
      }
    },
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "status", "details", "timestamp"],
        "properties": {
          "name": {"type": "string"},
          "status": {"enum": ["PASS", "FAIL", "SKIP", "INFO"]},
          "details": {"type": "string"},
          "timestamp": {"type": "string"}
        }
      }
    }
  }
}`

func NewArtifact(report *runner.Report) *Artifact {
	records := report.Records
	if records == nil {
		records = []result.Record{}
	}

	ts := report.StartedAt.Add(report.Duration)
	if report.StartedAt.IsZero() {
		ts = time.Now()
	}

	return &Artifact{
		RunID:     report.RunID,
		Timestamp: ts.Format(time.RFC3339),
		BaseURL:   report.BaseURL,
		Summary:   report.Summary,
		Results:   records,
	}
}

// Write encodes the artifact as indented JSON
func (a *Artifact) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(a)
}

// WriteArtifact writes the report to path, replacing any previous file
func WriteArtifact(path string, report *runner.Report) error {
	var buf bytes.Buffer
	if err := NewArtifact(report).Write(&buf); err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads an artifact from disk, rejecting documents that do not
// match ArtifactSchema
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	if err := ValidateArtifact(data); err != nil {
		return nil, err
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}
	return &a, nil
}

func ValidateArtifact(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(ArtifactSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	res, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if res.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range res.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("artifact does not match schema: %s", strings.Join(errs, "; "))
}
