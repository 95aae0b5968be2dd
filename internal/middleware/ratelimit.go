package middleware

import (
	"math"
	"sync"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/apierror"
	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	clients     map[string]*clientInfo
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	idleTimeout time.Duration
	name        string
	retryAfter  int
	stop        chan struct{}
	stopOnce    sync.Once
}

type clientInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMinute sustained
// requests per client with bursts of up to burst. Clients idle for longer
// than idleTimeout are forgotten.
func NewRateLimiter(requestsPerMinute, burst int, idleTimeout time.Duration, name string) *RateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		clients:     make(map[string]*clientInfo),
		limit:       rate.Limit(float64(requestsPerMinute) / 60),
		burst:       burst,
		idleTimeout: idleTimeout,
		name:        name,
		retryAfter:  int(math.Ceil(60 / float64(requestsPerMinute))),
		stop:        make(chan struct{}),
	}

	go rl.cleanup()

	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.Int("requests_per_minute", requestsPerMinute),
		logger.Int("burst", burst),
	)

	return rl
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// cleanup removes idle clients periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
		}

		rl.mu.Lock()
		now := time.Now()
		cleaned := 0
		for ip, info := range rl.clients {
			if now.Sub(info.lastSeen) > rl.idleTimeout {
				delete(rl.clients, ip)
				cleaned++
			}
		}
		remaining := len(rl.clients)
		rl.mu.Unlock()

		if cleaned > 0 {
			logger.Default().Debug("rate limiter cleanup completed",
				logger.String("name", rl.name),
				logger.Int("cleaned", cleaned),
				logger.Int("remaining", remaining),
			)
		}
	}
}

// isAllowed takes a token from the client's bucket
func (rl *RateLimiter) isAllowed(ip string) bool {
	rl.mu.Lock()
	info, exists := rl.clients[ip]
	if !exists {
		info = &clientInfo{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = info
	}
	info.lastSeen = time.Now()
	limiter := info.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// RateLimit returns a middleware handler that limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !limiter.isAllowed(ip) {
			logger.Ctx(c.Request.Context()).Warn("rate limit exceeded",
				logger.String("limiter", limiter.name),
				logger.String("client_ip", ip),
			)

			apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), limiter.retryAfter))
			c.Abort()
			return
		}

		c.Next()
	}
}
