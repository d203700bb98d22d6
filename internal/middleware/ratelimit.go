package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the bucket map between cleanups
const maxTrackedClients = 10000

// clientBucket is the token bucket of one client IP
type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time // Last request from the client
}

// RateLimiter keeps one token bucket per client IP. Only buckets that have
// refilled completely are dropped, so an eviction never hands a limited
// client a fresh burst.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientBucket
	rate       rate.Limit
	burst      int
	maxClients int              // Buckets tracked before eviction kicks in
	now        func() time.Time // Clock, replaced in tests
	log        *logrus.Logger
}

// NewRateLimiter allows perSecond requests per client IP with the given burst
func NewRateLimiter(perSecond float64, burst int, log *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		clients:    make(map[string]*clientBucket),
		rate:       rate.Limit(perSecond),
		burst:      burst,
		maxClients: maxTrackedClients,
		now:        time.Now,
		log:        log,
	}
}

// allow takes one token from the bucket of key
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	b, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= rl.maxClients {
			rl.evictLocked(now)
		}
		b = &clientBucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// evictLocked makes room for one bucket. Refilled buckets go first; when
// every client is still limited the least recently seen one is dropped.
func (rl *RateLimiter) evictLocked(now time.Time) {
	if rl.dropRefilledLocked(now) > 0 {
		return
	}
	var oldest string
	var oldestSeen time.Time
	for key, b := range rl.clients {
		if oldest == "" || b.lastSeen.Before(oldestSeen) {
			oldest, oldestSeen = key, b.lastSeen
		}
	}
	delete(rl.clients, oldest)
}

// dropRefilledLocked removes buckets that are full again. Such a bucket
// behaves exactly like a new one.
func (rl *RateLimiter) dropRefilledLocked(now time.Time) int {
	dropped := 0
	for key, b := range rl.clients {
		if b.limiter.TokensAt(now) >= float64(rl.burst) {
			delete(rl.clients, key)
			dropped++
		}
	}
	return dropped
}

// EvictIdle drops every bucket that has refilled and returns how many went
func (rl *RateLimiter) EvictIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.dropRefilledLocked(rl.now())
}

// Handler aborts with 429 once the client IP exhausts its bucket
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	if rl == nil || rl.rate <= 0 || rl.burst <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !rl.allow(ip) {
			rl.log.WithFields(logrus.Fields{
				"client_ip": ip,
				"path":      c.Request.URL.Path,
				"method":    c.Request.Method,
			}).Warn("Rate limit exceeded")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

// StartCleanup evicts idle buckets every interval until stop is closed
func (rl *RateLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := rl.EvictIdle(); n > 0 {
					rl.log.WithField("evicted", n).Debug("Rate limiter buckets evicted")
				}
			case <-stop:
				return
			}
		}
	}()
}
