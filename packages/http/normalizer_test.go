package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/ordercheck/packages/metrics"
	"github.com/stretchr/testify/assert"
)

func TestNormalizer_CreateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "test-customer-123", payload["customer_id"])
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"X"}`))
	}))
	defer server.Close()

	n := NewNormalizer(NewClient())
	out := n.Call(context.Background(), "POST", server.URL, map[string]any{"customer_id": "test-customer-123"}, CreateOK)

	assert.True(t, out.Completed())
	assert.True(t, out.Succeeded())
	assert.Equal(t, 201, out.StatusCode)
	assert.Equal(t, "X", out.Get("id").String())
	assert.Empty(t, out.TransportError)
	assert.Equal(t, 1, n.Calls())
}

func TestNormalizer_StatusOutsideSuccessSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"X"}`))
	}))
	defer server.Close()

	out := NewNormalizer(NewClient()).Call(context.Background(), "GET", server.URL, nil, ReadOK)

	assert.True(t, out.Completed())
	assert.Equal(t, 201, out.StatusCode)
	assert.Nil(t, out.Body)
	assert.Equal(t, `{"id":"X"}`, string(out.Raw))
	assert.False(t, out.Get("id").Exists())
}

func TestNormalizer_ErrorPayloadNotDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad order"}`))
	}))
	defer server.Close()

	out := NewNormalizer(NewClient()).Call(context.Background(), "POST", server.URL, map[string]any{}, CreateOK)

	assert.Equal(t, 400, out.StatusCode)
	assert.Nil(t, out.Body)
	assert.Contains(t, out.Describe(), "Status 400")
	assert.Contains(t, out.Describe(), "bad order")
}

func TestNormalizer_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	out := NewNormalizer(NewClient()).Call(context.Background(), "GET", url, nil, ReadOK)

	assert.False(t, out.Completed())
	assert.Equal(t, 0, out.StatusCode)
	assert.NotEmpty(t, out.TransportError)
	assert.Equal(t, out.TransportError, out.Describe())
}

func TestNormalizer_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	out := NewNormalizer(NewClient(WithTimeout(50*time.Millisecond))).Call(context.Background(), "GET", server.URL, nil, ReadOK)

	assert.False(t, out.Completed())
	assert.Equal(t, 0, out.StatusCode)
	assert.NotEmpty(t, out.TransportError)
}

func TestNormalizer_InvalidURL(t *testing.T) {
	out := NewNormalizer(NewClient()).Call(context.Background(), "GET", "not-a-url", nil, ReadOK)

	assert.False(t, out.Completed())
	assert.Contains(t, out.TransportError, "unsupported URL scheme")
}

func TestNormalizer_UnencodableBody(t *testing.T) {
	out := NewNormalizer(NewClient()).Call(context.Background(), "POST", "http://localhost:1", map[string]any{"ch": make(chan int)}, CreateOK)

	assert.False(t, out.Completed())
	assert.Contains(t, out.TransportError, "encoding request body")
}

func TestNormalizer_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	out := NewNormalizer(NewClient()).Call(context.Background(), "GET", server.URL, nil, ReadOK)

	assert.True(t, out.Completed())
	assert.Equal(t, 200, out.StatusCode)
	assert.Nil(t, out.Body)
	assert.NotEmpty(t, out.DecodeError)
	assert.False(t, out.Succeeded())
}

func TestNormalizer_HeadersAndLatency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "run-1", r.Header.Get("X-Run-ID"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	latency := metrics.NewLatency()
	n := NewNormalizer(NewClient(), WithLatency(latency), WithHeader("X-Run-ID", "run-1"))

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		out := n.Call(context.Background(), method, server.URL, nil, ReadOK)
		assert.True(t, out.Succeeded(), method)
	}

	assert.Equal(t, 3, n.Calls())
	assert.Equal(t, int64(3), latency.Snapshot().Calls)
}

func TestSuccessSet_Contains(t *testing.T) {
	assert.True(t, CreateOK.Contains(201))
	assert.True(t, CreateOK.Contains(200))
	assert.False(t, ReadOK.Contains(201))
	assert.False(t, ReadOK.Contains(404))
}

func TestNormalizer_NullBodySucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`null`))
	}))
	defer server.Close()

	out := NewNormalizer(NewClient()).Call(context.Background(), "GET", server.URL, nil, ReadOK)

	assert.Equal(t, 200, out.StatusCode)
	assert.Nil(t, out.Body)
	assert.True(t, out.Decoded)
	assert.Empty(t, out.DecodeError)
	assert.True(t, out.Succeeded())
	assert.False(t, out.Get("id").Exists())
}
