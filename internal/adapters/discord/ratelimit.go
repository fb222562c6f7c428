package discord

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	lim  *rate.Limiter
	last time.Time
}

// userLimiter da un token por usuario cada window (burst 1). Los limiters
// sin uso durante una ventana entera ya se recargaron y se descartan.
type userLimiter struct {
	mu    sync.Mutex
	lims  map[string]*limiterEntry
	win   time.Duration
	now   func() time.Time
	swept time.Time
}

func newUserLimiter(window time.Duration) *userLimiter {
	return &userLimiter{lims: map[string]*limiterEntry{}, win: window, now: time.Now}
}

func (l *userLimiter) Allow(userID string) bool {
	if l == nil || l.win <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	e, ok := l.lims[userID]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(rate.Every(l.win), 1)}
		l.lims[userID] = e
	}
	e.last = now
	return e.lim.AllowN(now, 1)
}

// sweep corre como mucho una vez por ventana
func (l *userLimiter) sweep(now time.Time) {
	if now.Sub(l.swept) < l.win {
		return
	}
	l.swept = now
	for id, e := range l.lims {
		if now.Sub(e.last) >= l.win {
			delete(l.lims, id)
		}
	}
}

func (l *userLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lims)
}
