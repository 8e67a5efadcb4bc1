package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/server/respond"
)

const defaultRateLimitGroup = "DEFAULT"

// RateLimitRule allows Burst requests at once, refilled at Rate per second.
// A zero Rate or Burst disables limiting.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

func (r RateLimitRule) disabled() bool {
	return r.Rate <= 0 || r.Burst <= 0
}

// Limiter decides whether key may proceed under rule and, if not, how long
// the caller should wait.
type Limiter interface {
	Allow(key string, rule RateLimitRule) (bool, time.Duration)
}

// RateLimitConfig maps groups to rules. GroupFor picks the group of a
// request; an empty result falls back to DefaultGroup.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      Limiter
}

// RateLimit throttles per principal and group. Authenticated requests are
// keyed by user ID, anonymous ones by client IP.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	return func(c *gin.Context) {
		group := cfg.group(c)
		rule, ok := cfg.Rules[group]
		if !ok || rule.disabled() {
			c.Next()
			return
		}

		allowed, wait := cfg.Limiter.Allow(principal(c)+"|"+group, rule)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Burst))
		if allowed {
			c.Next()
			return
		}
		metrics.RecordRateLimited(group)
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
		respond.Error(c, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
	}
}

func (cfg RateLimitConfig) group(c *gin.Context) string {
	if cfg.GroupFor != nil {
		if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
			return g
		}
	}
	return cfg.DefaultGroup
}

func principal(c *gin.Context) string {
	if id := strings.TrimSpace(UserIDFromContext(c)); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}

// retryAfterSeconds rounds up to whole seconds, never below one.
func retryAfterSeconds(wait time.Duration) int {
	secs := int((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
