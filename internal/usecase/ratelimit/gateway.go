// Package ratelimit governs calls to the completion service with a sliding
// window budget plus a minimum spacing between calls.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/lexiscope/internal/metrics"
)

const (
	DefaultCapacity = 25
	DefaultWindow   = time.Minute
	DefaultSpacing  = 2 * time.Second
)

// Config tunes a Gateway. Zero Capacity or Window take the defaults;
// a negative Spacing disables spacing.
type Config struct {
	Capacity int
	Window   time.Duration
	Spacing  time.Duration
}

// Status is a snapshot of the trailing window.
type Status struct {
	CountInWindow int
	Capacity      int
	Remaining     int
	Active        bool
}

// Gateway admits at most Capacity calls in any trailing Window.
// Admission order among waiters is not FIFO.
type Gateway struct {
	mu       sync.Mutex
	stamps   []time.Time
	capacity int
	window   time.Duration
	interval time.Duration
	spacing  *rate.Limiter
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a gateway.
func New(cfg Config, logger *zap.Logger) *Gateway {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Spacing == 0 {
		cfg.Spacing = DefaultSpacing
	}

	g := &Gateway{
		capacity: cfg.Capacity,
		window:   cfg.Window,
		now:      time.Now,
		logger:   logger,
	}
	if cfg.Spacing > 0 {
		g.interval = cfg.Spacing
		g.spacing = rate.NewLimiter(rate.Every(cfg.Spacing), 1)
	}
	return g
}

// Admit blocks until a call may proceed and records it.
// It fails only when ctx is done.
func (g *Gateway) Admit(ctx context.Context) error {
	start := g.now()
	for {
		wait, admitted := g.tryAdmit()
		if admitted {
			if waited := g.now().Sub(start); waited > 0 {
				metrics.RateWaitSeconds.Observe(waited.Seconds())
				if waited >= time.Second {
					g.logger.Info("Rate gateway admitted after wait", zap.Duration("waited", waited))
				}
			} else {
				metrics.RateWaitSeconds.Observe(0)
			}
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate gateway: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// tryAdmit records an admission when the window and spacing allow it,
// otherwise returns how long to wait before re-checking.
func (g *Gateway) tryAdmit() (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.purge(now)

	if len(g.stamps) >= g.capacity {
		wait := g.window - now.Sub(g.stamps[0])
		return max(wait, time.Millisecond), false
	}
	if g.spacing != nil && !g.spacing.AllowN(now, 1) {
		missing := 1 - g.spacing.TokensAt(now)
		wait := time.Duration(missing * float64(g.interval))
		return max(wait, time.Millisecond), false
	}

	g.stamps = append(g.stamps, now)
	metrics.RateWindowInUse.Set(float64(len(g.stamps)))
	return 0, true
}

// purge drops stamps that left the window. Caller holds mu.
func (g *Gateway) purge(now time.Time) {
	i := 0
	for i < len(g.stamps) && now.Sub(g.stamps[i]) >= g.window {
		i++
	}
	if i > 0 {
		g.stamps = append(g.stamps[:0], g.stamps[i:]...)
	}
}

// Status reports the current window.
func (g *Gateway) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.purge(g.now())
	n := len(g.stamps)
	metrics.RateWindowInUse.Set(float64(n))
	return Status{
		CountInWindow: n,
		Capacity:      g.capacity,
		Remaining:     max(0, g.capacity-n),
		Active:        n >= g.capacity,
	}
}
