package http

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/abdul-hamid-achik/ordercheck/packages/metrics"
	"github.com/tidwall/gjson"
)

// SuccessSet lists the status codes a call site treats as success
type SuccessSet []int

var (
	// ReadOK is the success set for reads and updates
	ReadOK = SuccessSet{200}
	// CreateOK is the success set for creation calls
	CreateOK = SuccessSet{200, 201}
)

// Contains reports whether status is in the set
func (s SuccessSet) Contains(status int) bool {
	return slices.Contains(s, status)
}

// Outcome is the normalized result of one HTTP call. Exactly one of
// StatusCode (non-zero) and TransportError (non-empty) is set.
type Outcome struct {
	StatusCode     int
	// Body is the decoded JSON. It may be nil for a JSON null; Decoded tells
	// whether decoding happened.
	Body           any
	Decoded        bool
	Raw            []byte
	TransportError string
	DecodeError    string
	Duration       time.Duration
}

// Completed reports whether the exchange produced a status code
func (o Outcome) Completed() bool {
	return o.TransportError == ""
}

// Succeeded reports whether the status was in the call's success set and the
// body decoded
func (o Outcome) Succeeded() bool {
	return o.Completed() && o.Decoded
}

// Get looks up a gjson path in the decoded body
func (o Outcome) Get(path string) gjson.Result {
	if !o.Decoded {
		return gjson.Result{}
	}
	return gjson.GetBytes(o.Raw, path)
}

// JSON returns the decoded body as a gjson result
func (o Outcome) JSON() gjson.Result {
	if !o.Decoded {
		return gjson.Result{}
	}
	return gjson.ParseBytes(o.Raw)
}

// Describe renders the outcome for a failure detail: the status and raw
// text, or the transport error
func (o Outcome) Describe() string {
	if !o.Completed() {
		return o.TransportError
	}
	if len(o.Raw) == 0 {
		return fmt.Sprintf("Status %d", o.StatusCode)
	}
	return fmt.Sprintf("Status %d: %s", o.StatusCode, truncate(string(o.Raw), maxDetailLen))
}

const maxDetailLen = 200

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Normalizer issues calls through a Client and folds every result into an
// Outcome. It never returns an error.
type Normalizer struct {
	client  *Client
	latency *metrics.Latency
	headers map[string]string
	calls   int
}

type NormalizerOption func(*Normalizer)

// WithLatency records every call duration into l
func WithLatency(l *metrics.Latency) NormalizerOption {
	return func(n *Normalizer) {
		n.latency = l
	}
}

// WithHeader adds a header to every call made by the normalizer
func WithHeader(key, value string) NormalizerOption {
	return func(n *Normalizer) {
		n.headers[key] = value
	}
}

func NewNormalizer(client *Client, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		client:  client,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Calls returns how many calls were attempted
func (n *Normalizer) Calls() int {
	return n.calls
}

func (n *Normalizer) Call(ctx context.Context, method, url string, body any, success SuccessSet) Outcome {
	n.calls++

	req := &Request{Method: method, URL: url, Headers: map[string]string{"Accept": "application/json"}}
	for k, v := range n.headers {
		req.Headers[k] = v
	}

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Outcome{TransportError: fmt.Sprintf("encoding request body: %v", err)}
		}
		req.Body = data
		req.Headers["Content-Type"] = "application/json"
	}

	start := time.Now()
	resp, err := n.client.Do(ctx, req)
	if err != nil {
		if n.latency != nil {
			n.latency.Record(time.Since(start), true)
		}
		return Outcome{TransportError: err.Error(), Duration: time.Since(start)}
	}

	if n.latency != nil {
		n.latency.Record(resp.Duration, false)
	}

	out := Outcome{
		StatusCode: resp.StatusCode,
		Raw:        resp.Body,
		Duration:   resp.Duration,
	}

	if !success.Contains(resp.StatusCode) {
		return out
	}

	decoded, err := resp.Decode()
	if err != nil {
		out.DecodeError = fmt.Sprintf("decoding response body: %v", err)
		return out
	}
	out.Body = decoded
	out.Decoded = true
	return out
}
