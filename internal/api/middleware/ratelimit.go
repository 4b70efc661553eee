package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies a per-client-IP token bucket to the wizard routes.
type RateLimit struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewRateLimit(rps, burst int) *RateLimit {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 2 * rps
	}

	return &RateLimit{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (r *RateLimit) limiter(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[ip]
	if !ok {
		l = rate.NewLimiter(r.rps, r.burst)
		r.limiters[ip] = l
	}

	return l
}

func (r *RateLimit) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !r.limiter(ctx.ClientIP()).Allow() {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		ctx.Next()
	}
}
