package api

import (
	"log/slog"
	"time"
)

// HTTPServerConfig contains all configuration parameters for the relay HTTP server.
type HTTPServerConfig struct {
	// ListenAddr is the address and port the client config API listens on.
	ListenAddr string

	// MetricsAddr is the address and port for the metrics server.
	// If empty, metrics server will not be started.
	MetricsAddr string

	// EnablePprof mounts the pprof debugging API under /debug.
	EnablePprof bool

	Log *slog.Logger

	// DrainDuration is the time /drain holds the server not-ready before
	// reporting completion, allowing load balancers to detect the change.
	DrainDuration time.Duration

	// GracefulShutdownDuration is the maximum time to wait for in-flight
	// requests to complete during shutdown.
	GracefulShutdownDuration time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ClientConfigRequest is the body of POST /api/client-config/{local_user_id}.
type ClientConfigRequest struct {
	// PublicKey is the browser session's public key (PEM, JWK or base64url).
	PublicKey string `json:"publicKey"`
}
