package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/haytac/message-formatter/internal/metrics"
)

const limiterIdleTTL = 10 * time.Minute

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client address. A nil
// clientLimiter allows everything.
type clientLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients map[string]*clientEntry
	now     func() time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*clientEntry),
		now:     time.Now,
	}
}

func (l *clientLimiter) allow(client string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.clients[client]
	if !ok {
		l.evictIdle(now)
		e = &clientEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[client] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// evictIdle drops clients not seen for limiterIdleTTL. Caller holds mu.
func (l *clientLimiter) evictIdle(now time.Time) {
	for k, e := range l.clients {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(l.clients, k)
		}
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) rateLimit(transport string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.limiter.allow(clientKey(r)) {
				metrics.RateLimited.WithLabelValues(transport).Inc()
				writeJSON(w, http.StatusTooManyRequests, FormatResponse{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
