package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "darassa/pkg/errors"
	httputil "darassa/pkg/http"
	"darassa/pkg/logger"
)

// KeyExtractor picks the bucket a request is counted against. An empty key
// is not limited.
type KeyExtractor func(r *http.Request) string

// RateLimiter is a sliding-window limiter keyed by principal or client address.
type RateLimiter struct {
	mu           sync.Mutex
	requests     map[string][]time.Time
	limit        int
	window       time.Duration
	keyExtractor KeyExtractor
	log          *logger.Logger
	stopCh       chan struct{}
	stopOnce     sync.Once
	now          func() time.Time
}

func NewRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *RateLimiter {
	if extractor == nil {
		extractor = PrincipalOrIPExtractor
	}
	limiter := &RateLimiter{
		requests:     make(map[string][]time.Time),
		limit:        limit,
		window:       window,
		keyExtractor: extractor,
		log:          log,
		stopCh:       make(chan struct{}),
		now:          time.Now,
	}

	go limiter.cleanup()

	return limiter
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || rl.now().Sub(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow records a hit for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	timestamps := rl.requests[key]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.keyExtractor(r)

			if !limiter.Allow(key) {
				limiter.log.WithContext(r.Context()).Warn("Rate limit exceeded",
					"key", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", retryAfterSeconds(limiter.window))
				_ = httputil.WriteError(w, apperrors.RateLimited("Rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(window time.Duration) string {
	return strconv.Itoa(int(window.Round(time.Second) / time.Second))
}

// PrincipalOrIPExtractor keys authenticated callers by subject and everyone
// else by client address.
func PrincipalOrIPExtractor(r *http.Request) string {
	if p, ok := PrincipalFromContext(r.Context()); ok && p.Subject != "" {
		return "sub:" + p.Subject
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
