package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/conneroisu/stegtext/internal/logging"
)

const (
	bucketExpiry    = 10 * time.Minute
	cleanupInterval = 5 * time.Minute
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// RateLimiter implements per-client token bucket rate limiting
type RateLimiter struct {
	buckets     map[string]*TokenBucket
	bucketMutex sync.Mutex
	config      RateLimitConfig
	logger      logging.Logger
	now         func() time.Time
	stopOnce    sync.Once
	stop        chan struct{}
}

// TokenBucket represents a token bucket for one client
type TokenBucket struct {
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

// RateLimitResult represents the result of a rate limit check
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
// Call Stop to release it.
func NewRateLimiter(config *RateLimitConfig, logger logging.Logger) *RateLimiter {
	if logger == nil {
		logger = logging.Nop()
	}
	rl := &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  *config,
		logger:  logger,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if rl.config.BurstSize < 1 {
		rl.config.BurstSize = 1
	}

	go rl.cleanupLoop()
	return rl
}

// Check consumes a token for key, usually the client IP.
func (rl *RateLimiter) Check(key string) RateLimitResult {
	rl.bucketMutex.Lock()
	defer rl.bucketMutex.Unlock()

	now := rl.now()
	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &TokenBucket{tokens: float64(rl.config.BurstSize), lastRefill: now}
		rl.buckets[key] = bucket
	}
	bucket.lastAccess = now

	elapsed := now.Sub(bucket.lastRefill)
	if elapsed > 0 {
		bucket.tokens += elapsed.Minutes() * float64(rl.config.RequestsPerMinute)
		if bucket.tokens > float64(rl.config.BurstSize) {
			bucket.tokens = float64(rl.config.BurstSize)
		}
		bucket.lastRefill = now
	}

	if bucket.tokens >= 1 {
		bucket.tokens--
		return RateLimitResult{Allowed: true, Remaining: int(bucket.tokens)}
	}

	perToken := time.Minute / time.Duration(rl.config.RequestsPerMinute)
	missing := 1 - bucket.tokens
	return RateLimitResult{RetryAfter: time.Duration(missing * float64(perToken))}
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.performCleanup()
		case <-rl.stop:
			return
		}
	}
}

// performCleanup removes buckets that have not been used recently
func (rl *RateLimiter) performCleanup() {
	rl.bucketMutex.Lock()
	defer rl.bucketMutex.Unlock()

	now := rl.now()
	for key, bucket := range rl.buckets {
		if now.Sub(bucket.lastAccess) > bucketExpiry {
			delete(rl.buckets, key)
		}
	}
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// RateLimitMiddleware rejects clients that exceed their budget with 429.
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)
			result := limiter.Check(clientIP)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.config.RequestsPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				retry := int(result.RetryAfter.Seconds() + 0.999)
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))

				limiter.logger.Warn(r.Context(), nil, "Rate limit exceeded",
					"client_ip", clientIP,
					"path", r.URL.Path,
					"method", r.Method)

				writeJSON(w, http.StatusTooManyRequests, errorResponse{
					Error: "rate limit exceeded",
					Type:  "rate_limited",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the host part of the peer address. Forwarding headers
// are ignored since the server is not meant to sit behind a proxy.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
