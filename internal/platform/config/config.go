package config

import (
	"os"
	"time"
)

// Server captures gateway process configuration.
type Server struct {
	Addr              string
	JWKSURL           string
	TokenIssuer       string
	TokenAudience     string
	UpstreamBaseURL   string
	AuditCollectorURL string
	UpstreamTimeout   time.Duration
	JWKSRefresh       time.Duration
	AuditBuffer       int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:              envOr("GATEWAY_ADDR", ":8080"),
		JWKSURL:           os.Getenv("JWKS_URL"),
		TokenIssuer:       os.Getenv("TOKEN_ISSUER"),
		TokenAudience:     os.Getenv("TOKEN_AUDIENCE"),
		UpstreamBaseURL:   os.Getenv("UPSTREAM_BASE_URL"),
		AuditCollectorURL: os.Getenv("AUDIT_COLLECTOR_URL"),
		UpstreamTimeout:   15 * time.Second,
		JWKSRefresh:       15 * time.Minute,
		AuditBuffer:       256,
	}

	if s := os.Getenv("UPSTREAM_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.UpstreamTimeout = d
		}
	}
	if s := os.Getenv("JWKS_REFRESH_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.JWKSRefresh = d
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
