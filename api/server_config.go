package api

import (
	"log/slog"
	"time"
)

const (
	defaultGracefulShutdown = 30 * time.Second
	defaultReadTimeout      = 60 * time.Second
	defaultWriteTimeout     = 30 * time.Second
)

// HTTPServerConfig configures the registry API listener and its companion
// metrics listener.
type HTTPServerConfig struct {
	ListenAddr string
	// MetricsAddr is left empty to run without a metrics listener.
	MetricsAddr string
	EnablePprof bool
	Log         *slog.Logger

	// DrainDuration is how long /readyz reports 503 before the listeners
	// stop, so a load balancer stops routing signed submissions first.
	DrainDuration time.Duration
	// GracefulShutdownDuration bounds the wait for in-flight submissions.
	GracefulShutdownDuration time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// WithDefaults returns a copy with zero timeouts and a nil logger replaced.
// DrainDuration stays as given; zero means no drain wait.
func (c HTTPServerConfig) WithDefaults() *HTTPServerConfig {
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.GracefulShutdownDuration == 0 {
		c.GracefulShutdownDuration = defaultGracefulShutdown
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	return &c
}
