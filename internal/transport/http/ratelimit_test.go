package http

import (
	"testing"
	"time"
)

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := newRateLimiter(2, 50*time.Millisecond)

	if !limiter.allow() || !limiter.allow() {
		t.Fatal("requests within the limit were refused")
	}
	if limiter.allow() {
		t.Fatal("request over the limit was allowed")
	}

	time.Sleep(60 * time.Millisecond)

	if !limiter.allow() {
		t.Fatal("request after window elapsed was refused")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := newRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !limiter.allow() {
			t.Fatal("zero limit must not restrict")
		}
	}
}
