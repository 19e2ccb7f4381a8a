package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ironbridge-it/website-api/internal/ratelimit"
)

const throttledMessage = "Too many requests. Please try again later."

// defaultIdleTTL is how long an unused client bucket is kept.
const defaultIdleTTL = 10 * time.Minute

// Throttle is a per-client token bucket for the read-only API routes.
type Throttle struct {
	mu      sync.Mutex
	buckets map[string]*throttleEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type throttleEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ThrottleOption customizes a Throttle.
type ThrottleOption func(*Throttle)

// WithIdleTTL changes how long idle buckets survive a Sweep.
func WithIdleTTL(d time.Duration) ThrottleOption {
	return func(t *Throttle) {
		if d > 0 {
			t.idleTTL = d
		}
	}
}

// WithThrottleClock replaces time.Now, for tests.
func WithThrottleClock(now func() time.Time) ThrottleOption {
	return func(t *Throttle) {
		if now != nil {
			t.now = now
		}
	}
}

// NewThrottle allows rps requests per second per client with the given burst.
func NewThrottle(rps float64, burst int, opts ...ThrottleOption) *Throttle {
	t := &Throttle{
		buckets: make(map[string]*throttleEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Reserve takes a token for key. It returns zero when the request may proceed,
// otherwise how long the client should wait.
func (t *Throttle) Reserve(key string) time.Duration {
	now := t.now()

	t.mu.Lock()
	ent, ok := t.buckets[key]
	if !ok {
		ent = &throttleEntry{lim: rate.NewLimiter(t.rps, t.burst)}
		t.buckets[key] = ent
	}
	ent.lastSeen = now
	t.mu.Unlock()

	res := ent.lim.ReserveN(now, 1)
	if !res.OK() {
		return time.Second
	}
	delay := res.DelayFrom(now)
	if delay > 0 {
		res.CancelAt(now)
	}
	return delay
}

// Sweep drops buckets idle for longer than the TTL.
func (t *Throttle) Sweep(now time.Time) int {
	cutoff := now.Add(-t.idleTTL)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, ent := range t.buckets {
		if ent.lastSeen.Before(cutoff) {
			delete(t.buckets, key)
			removed++
		}
	}
	return removed
}

// Len reports how many clients are tracked.
func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}

// RateLimit rejects requests exceeding the throttle with 429 Too Many Requests
// and a Retry-After header.
func RateLimit(t *Throttle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if delay := t.Reserve(throttleKey(r)); delay > 0 {
				seconds := int(math.Ceil(delay.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": throttledMessage})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func throttleKey(r *http.Request) string {
	if key := ratelimit.ClientKey(r); key != ratelimit.UnknownClient {
		return key
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return ratelimit.UnknownClient
}
