package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"recruit-backend/internal/shared/telemetry"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisLimiter enforces a rule as a fixed window shared by every API
// instance: Burst requests per Burst/Rate seconds. When Redis is
// unreachable it defers to Fallback.
type RedisLimiter struct {
	Client   redis.Scripter
	Prefix   string
	Timeout  time.Duration
	Fallback Limiter
}

func NewRedisLimiter(client redis.Scripter) *RedisLimiter {
	return &RedisLimiter{
		Client:   client,
		Prefix:   "rl:",
		Timeout:  500 * time.Millisecond,
		Fallback: NewRateLimiter(nil),
	}
}

func (l *RedisLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	if l == nil || l.Client == nil {
		return l.fallback(key, rule)
	}
	window := windowFor(rule)
	ctx, cancel := context.WithTimeout(context.Background(), l.Timeout)
	defer cancel()

	redisKey := l.Prefix + key + ":" + strconv.FormatInt(window.Milliseconds(), 10)
	res, err := fixedWindowScript.Run(ctx, l.Client, []string{redisKey}, window.Milliseconds()).Result()
	if err != nil {
		telemetry.Warn("ratelimit.redis_failed", map[string]any{"error": err.Error()})
		return l.fallback(key, rule)
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) < 2 {
		return l.fallback(key, rule)
	}
	count, _ := vals[0].(int64)
	ttlMs, _ := vals[1].(int64)
	if ttlMs < 0 {
		ttlMs = window.Milliseconds()
	}
	if int(count) <= rule.Burst {
		return true, 0
	}
	return false, time.Duration(ttlMs) * time.Millisecond
}

func (l *RedisLimiter) fallback(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || l.Fallback == nil {
		return true, 0
	}
	return l.Fallback.Allow(key, rule)
}

func windowFor(rule RateLimitRule) time.Duration {
	ms := math.Ceil(float64(rule.Burst) / rule.Rate * 1000)
	if ms < 1000 {
		ms = 1000
	}
	return time.Duration(ms) * time.Millisecond
}
