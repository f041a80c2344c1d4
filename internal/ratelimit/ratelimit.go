// Package ratelimit bounds how often a key (principal id or client IP) may
// hit a gated endpoint. Counters are fixed-window and live in process
// memory: a restart resets every window to zero. That is accepted
// degradation for this service, not a hidden failure mode.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Profile is one call site's budget: Limit requests per Window.
type Profile struct {
	Limit  int
	Window time.Duration
}

// StrictProfile guards emergency-mode mutations and SOS endpoints.
func StrictProfile() Profile {
	return Profile{Limit: 5, Window: 60 * time.Second}
}

// DefaultProfile guards ordinary authenticated writes.
func DefaultProfile() Profile {
	return Profile{Limit: 60, Window: 60 * time.Second}
}

type entry struct {
	count       int
	windowStart time.Time
}

// Limiter counts requests per key for a single profile. Construct one per
// call site; the guard is per-endpoint, not global.
type Limiter struct {
	mu      sync.Mutex
	profile Profile
	entries map[string]*entry

	// now is swappable in tests.
	now func() time.Time
}

func New(profile Profile) *Limiter {
	return &Limiter{
		profile: profile,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow records one request for key and reports whether it fits in the
// current window. When it does not, retryAfter says how long until the
// window resets. The read-and-increment happens under the limiter lock so
// two simultaneous requests cannot both take the last slot.
func (l *Limiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.profile.Window {
		l.entries[key] = &entry{count: 1, windowStart: now}
		return true, 0
	}

	if e.count >= l.profile.Limit {
		return false, e.windowStart.Add(l.profile.Window).Sub(now)
	}
	e.count++
	return true, 0
}

// StartJanitor evicts keys whose window expired with no further activity.
// It runs until ctx is cancelled; main owns the cancellation handle.
func (l *Limiter) StartJanitor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(l.profile.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweep()
			}
		}
	}()
}

func (l *Limiter) sweep() {
	now := l.now()
	l.mu.Lock()
	for key, e := range l.entries {
		if now.Sub(e.windowStart) >= l.profile.Window {
			delete(l.entries, key)
		}
	}
	l.mu.Unlock()
}

// size is a test hook for eviction checks.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
