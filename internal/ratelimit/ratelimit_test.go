package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNopAlwaysAllows(t *testing.T) {
	var l Limiter = Nop{}
	for i := 0; i < 100; i++ {
		ok, err := l.Allow(context.Background(), "a@b.c")
		if !ok || err != nil {
			t.Fatalf("attempt %d: ok=%v err=%v", i, ok, err)
		}
	}
}

func TestRedisLimiterKeyNormalizesEmail(t *testing.T) {
	l := NewRedisLimiter(nil, 5, time.Minute)
	if got, want := l.key("  Ann@Example.com "), "ratelimit:login:ann@example.com"; got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
}

func TestRedisLimiterFailsOpenWhenUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	ok, err := NewRedisLimiter(rdb, 1, time.Minute).Allow(context.Background(), "a@b.c")
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !ok {
		t.Fatal("limiter must allow when Redis is unreachable")
	}
}
