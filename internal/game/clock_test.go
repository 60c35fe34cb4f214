// internal/game/clock_test.go
package game

import (
	"testing"
	"time"
)

func TestManualClockAdvance(t *testing.T) {
	clock := NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	var fired []string
	clock.AfterFunc(3*time.Second, func() { fired = append(fired, "b") })
	clock.AfterFunc(1*time.Second, func() { fired = append(fired, "a") })

	clock.Advance(500 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("提前触发了定时任务: %v", fired)
	}

	clock.Advance(3 * time.Second)
	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Fatalf("触发顺序错误: %v", fired)
	}
}

func TestManualClockStop(t *testing.T) {
	clock := NewManualClock(time.Now())

	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("Stop 应该返回 true")
	}

	clock.Advance(2 * time.Second)
	if fired {
		t.Fatal("已停止的定时任务不应触发")
	}
	if timer.Stop() {
		t.Fatal("重复 Stop 应该返回 false")
	}
}
