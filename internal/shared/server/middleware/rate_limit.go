package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"nextstep-backend/internal/shared/server/respond"
)

// Rule describes a token bucket per client and route group.
type Rule struct {
	Capacity   float64
	RefillRate float64 // tokens per second
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// RateLimiter enforces per-client request budgets keyed by route group.
type RateLimiter struct {
	mu      sync.Mutex
	rules   map[string]Rule
	buckets map[string]*bucket
	now     func() time.Time
}

// DefaultRules keeps the expensive intake pipeline on a tighter budget
// than read traffic.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		"apply":   {Capacity: 5, RefillRate: 5.0 / 60.0},
		"default": {Capacity: 60, RefillRate: 1},
	}
}

func NewRateLimiter(rules map[string]Rule) *RateLimiter {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &RateLimiter{
		rules:   rules,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// GroupFor maps a request path to a rule group.
func GroupFor(method, path string) string {
	if method == http.MethodPost && strings.Contains(path, "/job-applications/apply") {
		return "apply"
	}
	return "default"
}

// Allow reports whether the client may proceed and, when denied, the
// seconds to wait before retrying.
func (rl *RateLimiter) Allow(clientKey, group string) (bool, int) {
	rule, ok := rl.rules[group]
	if !ok {
		rule = rl.rules["default"]
	}
	if rule.Capacity <= 0 || rule.RefillRate <= 0 {
		return true, 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	key := group + "|" + clientKey
	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rule.Capacity, lastFill: now}
		rl.buckets[key] = b
	}

	elapsed := now.Sub(b.lastFill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * rule.RefillRate
		if b.tokens > rule.Capacity {
			b.tokens = rule.Capacity
		}
		b.lastFill = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}

	wait := (1 - b.tokens) / rule.RefillRate
	retry := int(wait)
	if wait > float64(retry) {
		retry++
	}
	if retry < 1 {
		retry = 1
	}
	return false, retry
}

// RateLimit rejects requests that exceed the client's budget with 429.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := UserIDFromContext(c)
		if clientKey == "" {
			clientKey = c.ClientIP()
		}
		group := GroupFor(c.Request.Method, c.Request.URL.Path)
		ok, retryAfter := rl.Allow(clientKey, group)
		if !ok {
			c.Writer.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", nil)
			return
		}
		c.Next()
	}
}
