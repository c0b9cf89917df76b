// Package upstream relays verified requests to the domain API. The gateway
// treats the upstream as a black box: method, path, query, headers, and body
// are forwarded verbatim and the response comes back with only hop-by-hop
// headers removed.
package upstream

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "bff-gateway/pkg/domain-errors"
)

// Response is the upstream's answer: status, headers, and the raw body.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Forwarder relays requests to the configured base URL. There are no
// retries: idempotency of upstream operations is unknown here, so retrying
// is the caller's decision.
type Forwarder struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	tracer  trace.Tracer
}

// New creates a Forwarder for the given upstream base URL. The per-call
// timeout bounds the single blocking I/O point on the request path.
func New(baseURL string, timeout time.Duration) *Forwarder {
	return &Forwarder{
		baseURL: baseURL,
		timeout: timeout,
		client: &http.Client{
			Transport: &http.Transport{MaxIdleConnsPerHost: 100},
		},
		tracer: otel.Tracer("bff-gateway/upstream"),
	}
}

// hop-by-hop headers must not be forwarded (RFC 9110 §7.6.1).
var hopByHop = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forward relays the inbound request and returns the upstream response.
// The inbound context propagates: a disconnected client cancels the
// upstream call.
func (f *Forwarder) Forward(ctx context.Context, r *http.Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	ctx, span := f.tracer.Start(ctx, "upstream.forward", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.target", r.URL.Path),
	))

	targetURL := f.baseURL + r.URL.Path
	if r.URL.RawQuery != "" {
		targetURL += "?" + r.URL.RawQuery
	}

	// Buffer the body once so it can be replayed if other stages need it.
	var bodyReader io.Reader
	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "reading request body")
		}
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, targetURL, bodyReader)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "building upstream request")
	}
	req.Header = r.Header.Clone()
	for _, h := range hopByHop {
		req.Header.Del(h)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "upstream call failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "reading upstream response")
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	span.End()

	header := resp.Header.Clone()
	for _, h := range hopByHop {
		header.Del(h)
	}

	return &Response{
		Status: resp.StatusCode,
		Header: header,
		Body:   body,
	}, nil
}
