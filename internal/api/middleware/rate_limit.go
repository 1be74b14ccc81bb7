package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"oportunidades/internal/pkg/errors"
)

const LimitAuth = "auth"

type RateLimiter struct {
	store  *sync.Map // map[string]*Bucket
	limits map[string]int
	now    func() time.Time
	stop   chan struct{}
}

type Bucket struct {
	tokens     int
	lastRefill time.Time
	mu         sync.Mutex
	lastAccess time.Time
}

// NewRateLimiter allows limits[limitType] requests per minute per client.
// Call Stop to end the cleanup goroutine.
func NewRateLimiter(limits map[string]int) *RateLimiter {
	rl := &RateLimiter{
		store:  &sync.Map{},
		limits: limits,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			now := rl.now()
			rl.store.Range(func(key, value interface{}) bool {
				bucket := value.(*Bucket)
				bucket.mu.Lock()
				if now.Sub(bucket.lastAccess) > 10*time.Minute {
					rl.store.Delete(key)
				}
				bucket.mu.Unlock()
				return true
			})
		}
	}
}

func (rl *RateLimiter) Allow(key string, limit int) bool {
	now := rl.now()

	val, _ := rl.store.LoadOrStore(key, &Bucket{
		tokens:     limit,
		lastRefill: now,
		lastAccess: now,
	})

	bucket := val.(*Bucket)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.lastAccess = now

	// Refill at limit tokens per minute.
	elapsed := now.Sub(bucket.lastRefill)
	refillTokens := int(elapsed.Seconds() * float64(limit) / 60.0)

	if refillTokens > 0 {
		if bucket.tokens+refillTokens > limit {
			bucket.tokens = limit
		} else {
			bucket.tokens += refillTokens
		}
		bucket.lastRefill = now
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}

	return false
}

// Handle limits requests per client IP and limitType. Unknown types allow
// 100 requests per minute.
func (rl *RateLimiter) Handle(limitType string) func(http.HandlerFunc) http.HandlerFunc {
	limit, ok := rl.limits[limitType]
	if !ok || limit <= 0 {
		limit = 100
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("%s:%s", clientIP(r), limitType)

			if !rl.Allow(key, limit) {
				w.Header().Set("Retry-After", "60")
				errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded,
					"Muitas tentativas. Tente novamente em instantes", nil)
				return
			}

			next(w, r)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
