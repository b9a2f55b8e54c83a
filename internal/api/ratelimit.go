package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IngestLimiter applies a per-employee token bucket to the daemon endpoint
// so one misbehaving daemon cannot starve the rest.
type IngestLimiter struct {
	mu       sync.Mutex
	limiters map[string]*employeeLimiter
	limit    rate.Limit
	burst    int
}

type employeeLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIngestLimiter builds a limiter allowing ratePerMin requests per minute
// per employee with the given burst.
func NewIngestLimiter(ratePerMin, burst int) *IngestLimiter {
	if ratePerMin < 1 {
		ratePerMin = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &IngestLimiter{
		limiters: make(map[string]*employeeLimiter),
		limit:    rate.Limit(float64(ratePerMin) / 60.0),
		burst:    burst,
	}
}

func (l *IngestLimiter) allow(employeeID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[employeeID]
	if !ok {
		if len(l.limiters) >= 4096 {
			l.pruneLocked()
		}
		entry = &employeeLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[employeeID] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// pruneLocked drops entries idle long enough to have refilled completely.
func (l *IngestLimiter) pruneLocked() {
	cutoff := time.Now().Add(-10 * time.Minute)
	for id, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, id)
		}
	}
}
