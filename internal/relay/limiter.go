package relay

import (
	"sync"
	"time"

	"github.com/melodiia/voicerelay/internal/domain"
)

// JoinLimiter caps join attempts per identity over a sliding window, so a
// client stuck in a retry loop cannot hammer the registry.
type JoinLimiter struct {
	mu      sync.Mutex
	history map[domain.Identity][]time.Time
	limit   int
	window  time.Duration
}

func NewJoinLimiter(limit int, window time.Duration) *JoinLimiter {
	return &JoinLimiter{
		history: make(map[domain.Identity][]time.Time),
		limit:   limit,
		window:  window,
	}
}

func (l *JoinLimiter) Allow(id domain.Identity) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-l.window)

	attempts := l.history[id]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= l.limit {
		l.history[id] = fresh
		return false
	}

	fresh = append(fresh, now)
	l.history[id] = fresh
	return true
}
