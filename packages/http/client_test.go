package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/orders/ord-1", r.URL.Path)
		assert.Equal(t, "ordercheck/test", r.UserAgent())
		assert.Equal(t, "run-1", r.Header.Get("X-Run-ID"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"processing"}`))
	}))
	defer server.Close()

	client := NewClient(WithUserAgent("ordercheck/test"))
	resp, err := client.Do(context.Background(), &Request{
		Method:  http.MethodPut,
		URL:     server.URL + "/api/orders/ord-1",
		Headers: map[string]string{"X-Run-ID": "run-1"},
		Body:    []byte(`{"status":"processing"}`),
	})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	v, err := resp.Decode()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "processing"}, v)
}

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, DefaultUserAgent, r.UserAgent())
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 123}`))
	}))
	defer server.Close()

	resp, err := NewClient().Post(context.Background(), server.URL, []byte(`{"name": "test"}`), map[string]string{
		"Content-Type": "application/json",
	})

	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Contains(t, resp.Text(), "123")
}

func TestClient_NonSuccessStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not found"))
	}))
	defer server.Close()

	resp, err := NewClient().Do(context.Background(), &Request{Method: http.MethodGet, URL: server.URL})

	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	_, err = resp.Decode()
	assert.Error(t, err)
}

func TestClient_WithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithTimeout(50 * time.Millisecond))
	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, URL: server.URL})

	assert.Error(t, err)
	assert.Equal(t, 50*time.Millisecond, client.Timeout())
	assert.Equal(t, DefaultTimeout, NewClient(WithTimeout(0)).Timeout())
}

func TestClient_CloseKeepsClientUsable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	client.Close()

	resp, err := client.Do(context.Background(), &Request{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:3000/api/orders", false},
		{"https", "https://example.com", false},
		{"ftp scheme", "ftp://example.com", true},
		{"no host", "http://", true},
		{"relative", "/api/orders", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
