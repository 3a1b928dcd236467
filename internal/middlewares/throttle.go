package middlewares

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/config"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/metrics"
)

// ThrottleStore hands out one token bucket per client IP. Idle buckets are
// dropped by the janitor so the map does not grow with every visitor ever
// seen.
type ThrottleStore struct {
	mu      sync.Mutex
	clients map[string]*throttleClient

	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type throttleClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewThrottleStore(cfg *config.Config) *ThrottleStore {
	return &ThrottleStore{
		clients: make(map[string]*throttleClient),
		rps:     rate.Limit(cfg.Throttle.RPS),
		burst:   cfg.Throttle.Burst,
		idleTTL: 3 * time.Minute,
	}
}

// Allow reports whether the client identified by key may proceed.
func (s *ThrottleStore) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[key]
	if !ok {
		c = &throttleClient{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.clients[key] = c
	}
	c.lastSeen = time.Now()

	return c.limiter.Allow()
}

// Cleanup drops buckets that have been idle longer than the TTL.
func (s *ThrottleStore) Cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, c := range s.clients {
		if now.Sub(c.lastSeen) > s.idleTTL {
			delete(s.clients, key)
		}
	}
}

// Size reports how many buckets are live. Test hook.
func (s *ThrottleStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ThrottleMiddleware rejects clients over their per-IP budget with a 429 and
// a Retry-After hint. It keys on RemoteAddr, which ClientIPMiddleware has
// already rewritten to the real client IP.
func ThrottleMiddleware(store *ThrottleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			}

			if !store.Allow(key) {
				metrics.ThrottleRejections.Inc()

				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
