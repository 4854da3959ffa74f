package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"dataforge/internal/store"
	"dataforge/pkg/api"

	"golang.org/x/time/rate"
)

// RateLimiter enforces per-user request rates using each user's configured
// limit. RateLimit=0 means unlimited.
type RateLimiter struct {
	limiters sync.Map // user ID -> *cachedLimiter
	ttl      time.Duration
}

// Option configures a RateLimiter.
type Option func(*RateLimiter)

// WithTTL sets how long a cached limiter is kept before the user's limits
// are re-read.
func WithTTL(ttl time.Duration) Option {
	return func(rl *RateLimiter) {
		rl.ttl = ttl
	}
}

// NewRateLimiter creates a rate limiter with a default 5 minute cache TTL.
func NewRateLimiter(opts ...Option) *RateLimiter {
	rl := &RateLimiter{ttl: 5 * time.Minute}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Middleware returns the HTTP middleware. It must run after AuthMiddleware
// so the user is already in the context.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(api.ErrorResponse{
					Error: "Unauthorized",
					Code:  "401",
				})
				return
			}

			// RateLimit=0 means unlimited
			if user.RateLimit > 0 {
				limiter := rl.getOrCreateLimiter(user)
				if !limiter.Allow() {
					w.Header().Set("Retry-After", "1")
					http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type cachedLimiter struct {
	limiter   *rate.Limiter
	expiresAt time.Time
}

func (rl *RateLimiter) getOrCreateLimiter(user *store.User) *rate.Limiter {
	if v, ok := rl.limiters.Load(user.ID); ok {
		cached := v.(*cachedLimiter)
		if time.Now().Before(cached.expiresAt) {
			return cached.limiter
		}
		// expired, need to create new
	}

	limiter := rate.NewLimiter(
		rate.Limit(user.RateLimit),
		user.RateLimitBurst,
	)
	rl.limiters.Store(user.ID, &cachedLimiter{
		limiter:   limiter,
		expiresAt: time.Now().Add(rl.ttl),
	})
	return limiter
}
