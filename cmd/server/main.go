package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"bff-gateway/internal/audit"
	jwttoken "bff-gateway/internal/jwt_token"
	"bff-gateway/internal/platform/config"
	"bff-gateway/internal/platform/logger"
	"bff-gateway/internal/platform/metrics"
	"bff-gateway/internal/policy"
	httptransport "bff-gateway/internal/transport/http"
	"bff-gateway/internal/upstream"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Pipeline logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing bff-gateway",
		"addr", cfg.Addr,
		"upstream", cfg.UpstreamBaseURL,
		"issuer", cfg.TokenIssuer,
	)

	m := metrics.New()

	keys := jwttoken.NewJWKSCache(cfg.JWKSURL, log)
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	keys.StartRefresh(refreshCtx, cfg.JWKSRefresh)

	verifier := jwttoken.NewVerifier(keys, cfg.TokenIssuer, cfg.TokenAudience)
	forwarder := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)

	recorder := audit.NewRecorder(
		audit.NewHTTPSink(cfg.AuditCollectorURL),
		log,
		audit.WithBuffer(cfg.AuditBuffer),
		audit.WithCounters(m.AuditEmitted.Inc, m.AuditDropped.Inc),
	)

	gw := httptransport.NewGateway(verifier, policy.Default(), forwarder, recorder, m, log)
	router := httptransport.NewRouter(gw, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	stopRefresh()
	recorder.Close()

	log.Info("server stopped")
}
