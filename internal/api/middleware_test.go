// internal/api/middleware_test.go
package api

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		if !rl.Allow("client", 3, time.Minute) {
			t.Fatalf("第%d次请求应被允许", i+1)
		}
	}
	if rl.Allow("client", 3, time.Minute) {
		t.Error("超过配额的请求应被拒绝")
	}

	// 其他客户端不受影响
	if !rl.Allow("other", 3, time.Minute) {
		t.Error("不同客户端应有独立配额")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter()

	if !rl.Allow("client", 1, time.Millisecond) {
		t.Fatal("首次请求应被允许")
	}
	if rl.Allow("client", 1, time.Millisecond) {
		t.Fatal("配额用尽应被拒绝")
	}

	time.Sleep(5 * time.Millisecond)
	if !rl.Allow("client", 1, time.Millisecond) {
		t.Error("窗口过期后应重新放行")
	}
}

func TestRateLimiterHeaders(t *testing.T) {
	rl := NewRateLimiter()
	rl.Allow("client", 5, time.Minute)

	limit, remaining, reset := rl.GetRateLimitHeaders("client", 5, time.Minute)
	if limit != 5 {
		t.Errorf("limit应为5, got %d", limit)
	}
	if remaining != 4 {
		t.Errorf("remaining应为4, got %d", remaining)
	}
	if reset <= time.Now().Unix()-1 {
		t.Errorf("reset时间应在未来, got %d", reset)
	}
}
