package service

import (
	"sync"
	"time"
)

// UsageLimiter throttles per-user actions with fixed windows. It is
// abuse mitigation only, never access control: counts are process-local
// and may be approximate across instances.
type UsageLimiter struct {
	mu      sync.Mutex
	windows map[string]*usageWindow
}

type usageWindow struct {
	count   int
	resetAt time.Time
}

func NewUsageLimiter() *UsageLimiter {
	return &UsageLimiter{windows: make(map[string]*usageWindow)}
}

// TryConsume records one use of the named action for the user and
// reports whether it fits inside the window.
func (l *UsageLimiter) TryConsume(userID, action string, limit int, window time.Duration) bool {
	key := userID + ":" + action
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &usageWindow{count: 1, resetAt: now.Add(window)}
		return true
	}

	if w.count >= limit {
		return false
	}
	w.count++
	return true
}
