package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles attempts per key (typically the client IP).
// Idle keys are evicted once their bucket would be full again.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type keyLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewLimiter allows perMinute attempts per key with the given burst.
// A non-positive perMinute or burst disables limiting.
func NewLimiter(perMinute float64, burst int) *Limiter {
	l := &Limiter{
		limiters: make(map[string]*keyLimiter),
		burst:    burst,
		now:      time.Now,
	}
	if perMinute > 0 && burst > 0 {
		l.limit = rate.Limit(perMinute / 60)
	}
	return l
}

// Allow reports whether one more attempt for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.limit == 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.limiters[key]
	if !ok {
		kl = &keyLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = kl
	}
	kl.lastSeen = now
	allowed := kl.lim.AllowN(now, 1)
	l.evict(now)
	return allowed
}

func (l *Limiter) evict(now time.Time) {
	idle := time.Duration(float64(l.burst) / float64(l.limit) * float64(time.Second))
	for k, kl := range l.limiters {
		if now.Sub(kl.lastSeen) > idle {
			delete(l.limiters, k)
		}
	}
}
