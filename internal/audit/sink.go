package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sink delivers one entry to the collector. Implementations may fail;
// the Recorder owns the decision to drop.
type Sink interface {
	Send(ctx context.Context, entry Entry) error
}

// HTTPSink posts flat JSON entries to the audit collector endpoint. The
// collector's response body is discarded; only the status matters.
type HTTPSink struct {
	url    string
	client *http.Client
}

// NewHTTPSink creates a sink for the given collector URL.
func NewHTTPSink(url string) *HTTPSink {
	return &HTTPSink{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Send posts the entry. Any non-2xx status counts as a failure.
func (s *HTTPSink) Send(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building audit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting audit entry: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("audit collector returned status %d", resp.StatusCode)
	}
	return nil
}
