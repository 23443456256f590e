package mw

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type RateBucket struct {
	RefillPerSec int           // how many tokens are added every second
	Burst        int           // max len bucket
	TTL          time.Duration // how long to keep an idle client's bucket
}

// RateLimitMiddleware throttles per client IP with an in-process token
// bucket. Buckets for idle clients are dropped after TTL.
type RateLimitMiddleware struct {
	cfg RateBucket

	mu      sync.Mutex
	buckets map[string]*ipBucket
	sweep   time.Time
}

type ipBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewRateLimit(cfg RateBucket) *RateLimitMiddleware {
	if cfg.RefillPerSec <= 0 {
		cfg.RefillPerSec = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Minute
	}
	return &RateLimitMiddleware{
		cfg:     cfg,
		buckets: map[string]*ipBucket{},
		sweep:   time.Now(),
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}

		lim := m.limiter(ip)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.cfg.Burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))

		if !lim.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) limiter(ip string) *rate.Limiter {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.sweep) > m.cfg.TTL {
		for k, b := range m.buckets {
			if now.Sub(b.lastSeen) > m.cfg.TTL {
				delete(m.buckets, k)
			}
		}
		m.sweep = now
	}

	b, ok := m.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(rate.Limit(m.cfg.RefillPerSec), m.cfg.Burst)}
		m.buckets[ip] = b
	}
	b.lastSeen = now
	return b.lim
}

func clientIP(r *http.Request) string {
	// return user IP among the proxy IPs
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
