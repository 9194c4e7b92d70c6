// Package ratelimit paces outgoing API requests.
//
// A Limiter built with a non-positive rate is a no-op, so callers can hold one
// unconditionally.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	throttleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pokemon_export_ratelimit_wait_seconds",
		Help:    "Time requests spent waiting for the pacing limiter",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	throttledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokemon_export_ratelimit_throttled_total",
		Help: "Total number of requests delayed by the pacing limiter",
	})
)

// Config holds pacing configuration.
type Config struct {
	// RequestsPerSecond is the sustained request rate. <= 0 disables pacing.
	RequestsPerSecond float64
	// Burst is the number of requests allowed back to back. Defaults to 1.
	Burst int
}

// Limiter gates requests to a configured rate.
type Limiter struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewLimiter creates a limiter. A disabled config yields a pass-through limiter.
func NewLimiter(cfg Config, logger zerolog.Logger) *Limiter {
	l := &Limiter{logger: logger}
	if cfg.RequestsPerSecond <= 0 {
		return l
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	l.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	return l
}

// Enabled reports whether pacing is active.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limiter != nil
}

// Wait blocks until the next request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if !l.Enabled() {
		return nil
	}

	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	waited := time.Since(start)
	throttleWaitSeconds.Observe(waited.Seconds())
	if waited > time.Millisecond {
		throttledTotal.Inc()
		l.logger.Debug().
			Dur("wait_duration", waited).
			Msg("Request paced by rate limiter")
	}

	return nil
}
