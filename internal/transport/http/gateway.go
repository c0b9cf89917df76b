package httptransport

//go:generate mockgen -source=gateway.go -destination=mocks/gateway_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"bff-gateway/internal/audit"
	"bff-gateway/internal/disclosure"
	"bff-gateway/internal/identity"
	"bff-gateway/internal/platform/metrics"
	"bff-gateway/internal/platform/middleware"
	"bff-gateway/internal/platform/privacy"
	"bff-gateway/internal/policy"
	"bff-gateway/internal/transport/httputil"
	"bff-gateway/internal/upstream"
)

// TokenVerifier validates a bearer token and yields the caller identity.
type TokenVerifier interface {
	VerifyAuthorization(ctx context.Context, authHeader string) (identity.Identity, error)
}

// Forwarder relays a request to the domain API.
type Forwarder interface {
	Forward(ctx context.Context, r *http.Request) (*upstream.Response, error)
}

// AuditRecorder queues an audit entry without blocking.
type AuditRecorder interface {
	Record(entry audit.Entry)
}

// Gateway is the request pipeline: authenticate, authorize, forward,
// filter, respond, then dispatch the audit entry as a detached side effect.
// A failure at any step terminates the request with its mapped status.
type Gateway struct {
	verifier TokenVerifier
	table    *policy.Table
	forward  Forwarder
	recorder AuditRecorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewGateway wires the pipeline stages together.
func NewGateway(
	verifier TokenVerifier,
	table *policy.Table,
	forward Forwarder,
	recorder AuditRecorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		verifier: verifier,
		table:    table,
		forward:  forward,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller, err := g.verifier.VerifyAuthorization(ctx, r.Header.Get("Authorization"))
	if err != nil {
		// Unverified identity: no subject to attribute, so no audit entry.
		g.metrics.AuthFailures.Inc()
		g.metrics.RequestsTotal.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		g.logger.WarnContext(ctx, "request rejected: authentication failed",
			"path", r.URL.Path,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	ctx = identity.WithIdentity(ctx, caller)

	if err := g.table.Authorize(r.URL.Path, caller.Role); err != nil {
		g.metrics.Forbidden.Inc()
		g.metrics.RequestsTotal.WithLabelValues(metrics.OutcomeForbidden).Inc()
		g.logger.WarnContext(ctx, "request rejected: role not permitted",
			"path", r.URL.Path,
			"role", caller.Role,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		g.dispatchAudit(r, caller, http.StatusForbidden)
		return
	}

	start := time.Now()
	resp, err := g.forward.Forward(ctx, r)
	g.metrics.UpstreamLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		g.metrics.UpstreamErrors.Inc()
		g.metrics.RequestsTotal.WithLabelValues(metrics.OutcomeUpstreamError).Inc()
		g.logger.ErrorContext(ctx, "upstream call failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		g.dispatchAudit(r, caller, httputil.StatusFor(err))
		return
	}

	body := g.filterBody(ctx, resp.Body, caller.Role, requestID)

	for key, values := range resp.Header {
		w.Header()[key] = values
	}
	// Filtering may change the body length; let the server recompute it.
	w.Header().Del("Content-Length")
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(body)

	g.metrics.RequestsTotal.WithLabelValues(metrics.OutcomeProxied).Inc()
	g.dispatchAudit(r, caller, resp.Status)
}

// filterBody applies the disclosure filter to a JSON body. Bodies that are
// not JSON, or shapes the filter cannot classify, pass through unmodified —
// a filter anomaly never fails the request.
func (g *Gateway) filterBody(ctx context.Context, body []byte, role identity.Role, requestID string) []byte {
	if len(body) == 0 {
		return body
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		g.logger.DebugContext(ctx, "upstream body is not JSON, passing through",
			"request_id", requestID,
		)
		return body
	}

	filtered := disclosure.Filter(parsed, role)

	out, err := json.Marshal(filtered)
	if err != nil {
		g.logger.ErrorContext(ctx, "re-encoding filtered body failed, passing original through",
			"error", err,
			"request_id", requestID,
		)
		return body
	}
	return out
}

// dispatchAudit queues an audit entry for critical actions. Record is
// non-blocking; the response is already on its way when this runs.
func (g *Gateway) dispatchAudit(r *http.Request, caller identity.Identity, status int) {
	if !audit.Critical(r.Method, r.URL.Path) {
		return
	}

	entry := audit.NewEntry(caller, r.Method, r.URL.Path, status)
	entry.ClientIP = privacy.AnonymizeIP(remoteIP(r))
	info := privacy.SummarizeUserAgent(r.Header.Get("User-Agent"))
	entry.ClientOS = info.OS
	entry.ClientBrowser = info.Browser

	g.recorder.Record(entry)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
