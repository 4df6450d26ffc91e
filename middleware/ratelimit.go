package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"LenaAI/pkg/cache"
	"LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// RateLimiter is a token bucket per key. Idle buckets expire from the cache
// after two windows.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  *cache.Cache
	window   time.Duration
	capacity int
	now      func() time.Time
}

func NewRateLimiter(window time.Duration, capacity int) *RateLimiter {
	return &RateLimiter{
		buckets:  cache.New(50000, time.Minute),
		window:   window,
		capacity: capacity,
		now:      time.Now,
	}
}

func (l *RateLimiter) Close() {
	l.buckets.Close()
}

func clientIP(c *gin.Context) string {
	ip := strings.TrimSpace(c.ClientIP())
	if ip == "" {
		host, _, _ := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
		ip = host
	}
	return ip
}

// KeyFunc names the bucket a request draws from.
type KeyFunc func(c *gin.Context) string

// CallerKey keys buckets on user id + client ip. The user id is the
// authenticated subject when one is set, else the subject of the bearer or
// ?token= credential when auth is given, else user_id from the query or the
// JSON body. Requests without a resolvable user share the per-ip bucket.
func CallerKey(auth services.TokenAuthenticator) KeyFunc {
	return func(c *gin.Context) string {
		return callerID(c, auth) + "@" + clientIP(c)
	}
}

func callerID(c *gin.Context, auth services.TokenAuthenticator) string {
	if uid := CurrentUserID(c); uid != "" {
		return uid
	}
	if auth != nil {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			token = c.Query("token")
		}
		if token == "" {
			return ""
		}
		sub, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			return ""
		}
		return sub
	}
	if uid := c.Query("user_id"); uid != "" {
		return uid
	}
	if c.Request.Method == http.MethodPost && c.ContentType() == binding.MIMEJSON {
		// the body stays cached for handlers binding with ShouldBindBodyWith
		var peek struct {
			UserID string `json:"user_id"`
		}
		if err := c.ShouldBindBodyWith(&peek, binding.JSON); err == nil {
			return peek.UserID
		}
	}
	return ""
}

// Allow takes one token from key's bucket.
func (l *RateLimiter) Allow(key string) bool {
	if l.capacity <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	var b *bucket
	if v, ok := l.buckets.Get(key); ok {
		b = v.(*bucket)
	} else {
		b = &bucket{tokens: l.capacity, lastRefill: now}
	}
	if elapsed := now.Sub(b.lastRefill); elapsed > 0 && l.window > 0 {
		add := int(float64(l.capacity) * (float64(elapsed) / float64(l.window)))
		if add > 0 {
			b.tokens = min(b.tokens+add, l.capacity)
			b.lastRefill = now
		}
	}
	l.buckets.Set(key, b, 2*l.window)

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

func (l *RateLimiter) Middleware(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(key(c)) {
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"msg": "too many requests", "error": "rate_limited"})
			return
		}
		c.Next()
	}
}
