package upstream

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bff-gateway/pkg/domain-errors"
)

func TestForwardRelaysRequestVerbatim(t *testing.T) {
	var got *http.Request
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"bk-9"}`))
	}))
	defer server.Close()

	f := New(server.URL, 5*time.Second)

	inbound := httptest.NewRequest(http.MethodPost, "/api/bookings?expand=therapist",
		bytes.NewReader([]byte(`{"slot":"10:00"}`)))
	inbound.Header.Set("Content-Type", "application/json")
	inbound.Header.Set("Authorization", "Bearer tok")
	inbound.Header.Set("Connection", "keep-alive")

	resp, err := f.Forward(context.Background(), inbound)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.JSONEq(t, `{"id":"bk-9"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/bookings", got.URL.Path)
	assert.Equal(t, "expand=therapist", got.URL.RawQuery)
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	assert.Empty(t, got.Header.Get("Connection"), "hop-by-hop headers must be stripped")
	assert.Equal(t, `{"slot":"10:00"}`, string(gotBody))
}

func TestForwardKeepsEndToEndResponseHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/api/bookings/bk-9")
		w.Header().Set("X-Total-Count", "42")
		w.Header().Set("Proxy-Authenticate", "Basic")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	f := New(server.URL, time.Second)

	resp, err := f.Forward(context.Background(), httptest.NewRequest(http.MethodPost, "/api/bookings", nil))
	require.NoError(t, err)

	assert.Equal(t, "/api/bookings/bk-9", resp.Header.Get("Location"))
	assert.Equal(t, "42", resp.Header.Get("X-Total-Count"))
	assert.Empty(t, resp.Header.Get("Proxy-Authenticate"), "hop-by-hop headers must be stripped")
}

func TestForwardSurfacesNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	f := New(server.URL, time.Second)

	inbound := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	_, err := f.Forward(context.Background(), inbound)

	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
}

func TestForwardPassesErrorStatusesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	f := New(server.URL, time.Second)

	resp, err := f.Forward(context.Background(), httptest.NewRequest(http.MethodGet, "/api/bookings/999", nil))
	require.NoError(t, err, "non-2xx is a valid upstream answer, not a forwarder failure")
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestForwardHonorsContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	f := New(server.URL, 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := f.Forward(ctx, httptest.NewRequest(http.MethodGet, "/api/bookings", nil))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
}

func TestForwardAppliesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	f := New(server.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := f.Forward(context.Background(), httptest.NewRequest(http.MethodGet, "/api/bookings", nil))

	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
	assert.Less(t, time.Since(start), time.Second)
}
