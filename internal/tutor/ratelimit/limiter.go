package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

// Limiter decides whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Entry is the fixed-window state kept per key.
type Entry struct {
	Count       int
	WindowStart time.Time
}

// MemoryLimiter is a process-local fixed-window counter. A window expires
// once more than Window has passed since its first request.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*Entry
	window  time.Duration
	max     int
	now     func() time.Time
}

func NewMemoryLimiter(cfg model.RateLimitConfig, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		entries: make(map[string]*Entry),
		window:  cfg.Window,
		max:     cfg.MaxRequests,
		now:     now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.Sub(e.WindowStart) > l.window {
		l.entries[key] = &Entry{Count: 1, WindowStart: now}
		return true, nil
	}
	if e.Count >= l.max {
		return false, nil
	}
	e.Count++
	return true, nil
}

// Sweep drops expired windows and returns how many were removed.
func (l *MemoryLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		if now.Sub(e.WindowStart) > l.window {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports how many keys are tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RunSweeper sweeps on every tick until ctx is done.
func (l *MemoryLimiter) RunSweeper(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep(l.now())
		}
	}
}
