// Per-IP rate limiting for the endpoints that cost real resources: snapshot
// archives and the live stream. Fixed-window counters, in memory.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows maxRate requests per window per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	maxRate int
	span    time.Duration
	now     func() time.Time
}

type window struct {
	used    int
	startAt time.Time
}

// NewRateLimiter creates a limiter allowing maxRate requests per span.
func NewRateLimiter(maxRate int, span time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		maxRate: maxRate,
		span:    span,
		now:     time.Now,
	}
}

// Allow reports whether the client may proceed and consumes a slot if so.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[ip]
	if !ok || now.Sub(w.startAt) >= rl.span {
		rl.windows[ip] = &window{used: 1, startAt: now}
		rl.sweep(now)
		return true
	}
	if w.used < rl.maxRate {
		w.used++
		return true
	}
	return false
}

// RetryAfter returns seconds until the client's window resets.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok {
		return 0
	}
	left := rl.span - rl.now().Sub(w.startAt)
	if left <= 0 {
		return 0
	}
	return int(left.Seconds()) + 1
}

// sweep drops expired windows. Called under the lock from Allow, so the map
// never grows past the set of clients seen in the last two spans.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, w := range rl.windows {
		if now.Sub(w.startAt) > 2*rl.span {
			delete(rl.windows, ip)
		}
	}
}

// clientIP extracts the caller address, preferring X-Forwarded-For when a
// proxy sits in front.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

// Limit wraps a handler, answering 429 with Retry-After when exceeded.
func Limit(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
