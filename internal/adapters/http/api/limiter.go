package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// requesterHeader identifies the calling requester for rate limiting.
const requesterHeader = "X-Requester-ID"

// sweepEvery is how many Allow calls pass between idle sweeps.
const sweepEvery = 512

// requesterLimiter applies a token bucket per requester and evicts buckets
// that have been idle longer than idleTTL.
type requesterLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*limiterEntry
	hits  uint64
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRequesterLimiter returns nil, which allows everything, when rps or
// burst is not positive.
func newRequesterLimiter(rps float64, burst int, idleTTL time.Duration) *requesterLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	return &requesterLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*limiterEntry),
	}
}

// Allow reports whether key may spend one token at now.
func (l *requesterLimiter) Allow(key string, now time.Time) bool {
	if l == nil || key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%sweepEvery == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}

// Len returns the number of tracked buckets.
func (l *requesterLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKey)
}

// limiterKey picks the requester a request is charged to: the requester
// header, then the requester query, then the client address.
func limiterKey(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(requesterHeader)); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("requester")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.PathValue("requester")); v != "" {
		return v
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
