package middleware

import (
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"recruit-backend/internal/shared/telemetry"
)

func TestRedisLimiterFixedWindow(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	lim := NewRedisLimiter(client)
	rule := RateLimitRule{Rate: 1, Burst: 2}
	for i := 0; i < 2; i++ {
		if ok, _ := lim.Allow("user-1|DEFAULT", rule); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, retry := lim.Allow("user-1|DEFAULT", rule)
	if ok {
		t.Fatal("third request should be limited")
	}
	if retry <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retry)
	}
	if ok, _ := lim.Allow("user-2|DEFAULT", rule); !ok {
		t.Fatal("other principals keep their own window")
	}

	mr.FastForward(3 * time.Second)
	if ok, _ := lim.Allow("user-1|DEFAULT", rule); !ok {
		t.Fatal("expected window to reset after expiry")
	}
}

func TestRedisLimiterFallsBackWhenUnavailable(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	lim := NewRedisLimiter(client)
	lim.Fallback = NewRateLimiter(func() time.Time { return now })

	rule := RateLimitRule{Rate: 1, Burst: 1}
	if ok, _ := lim.Allow("k", rule); !ok {
		t.Fatal("first request should pass through fallback")
	}
	if ok, _ := lim.Allow("k", rule); ok {
		t.Fatal("fallback should enforce the burst")
	}
}

func TestNewRedisLimiterDefaults(t *testing.T) {
	lim := NewRedisLimiter(nil)
	if lim.Prefix != "rl:" {
		t.Fatalf("expected default prefix, got %q", lim.Prefix)
	}
	if lim.Fallback == nil {
		t.Fatal("expected in-memory fallback")
	}
	if ok, _ := lim.Allow("k", RateLimitRule{}); !ok {
		t.Fatal("empty rule should allow")
	}
	if got := windowFor(RateLimitRule{Rate: 5, Burst: 30}); got != 6*time.Second {
		t.Fatalf("unexpected window %v", got)
	}
}
