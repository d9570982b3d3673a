package telemetry

import (
	"sync"
	"time"
)

// connLimiter is a per-remote-address token bucket guarding websocket
// upgrade attempts, so a single misbehaving viewer can't spin up
// unbounded connections against the broadcast loop.
type connLimiter struct {
	mu      sync.Mutex
	perMin  int
	now     func() time.Time
	buckets map[string]bucket
}

type bucket struct {
	tokens int
	reset  time.Time
}

func newConnLimiter(perMin int) *connLimiter {
	if perMin <= 0 {
		perMin = 1
	}
	return &connLimiter{
		perMin:  perMin,
		now:     time.Now,
		buckets: make(map[string]bucket),
	}
}

// allow reports whether addr may open another connection right now,
// and how many it has left in the current window.
func (l *connLimiter) allow(addr string) (ok bool, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[addr]
	now := l.now()

	if !now.Before(b.reset) {
		b.tokens = l.perMin
		b.reset = now.Add(time.Minute)
	}

	if b.tokens <= 0 {
		l.buckets[addr] = b
		return false, 0
	}

	b.tokens--
	l.buckets[addr] = b
	return true, b.tokens
}
