// internal/game/trigger_test.go
package game

import "testing"

func TestNextEvent(t *testing.T) {
	none := map[EventType]bool{}

	tests := []struct {
		name      string
		affection int
		completed map[EventType]bool
		active    EventType
		want      EventType
	}{
		{"低于所有阈值", 34, none, EventNone, EventNone},
		{"到达约会阈值", 35, none, EventNone, EventDatePlan},
		{"到达穿搭阈值", 65, none, EventNone, EventOutfit},
		{"到达礼物阈值", 99, none, EventNone, EventGift},
		{"一跃到顶时高阈值优先", 100, none, EventNone, EventGift},
		{"礼物已完成则回落到穿搭", 99, map[EventType]bool{EventGift: true}, EventNone, EventOutfit},
		{"高阈值已完成则取低阈值", 70, map[EventType]bool{EventOutfit: true}, EventNone, EventDatePlan},
		{"全部完成则不触发", 100, map[EventType]bool{EventDatePlan: true, EventOutfit: true, EventGift: true}, EventNone, EventNone},
		{"已有活动事件时互斥", 99, none, EventDatePlan, EventNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextEvent(tt.affection, tt.completed, tt.active); got != tt.want {
				t.Errorf("NextEvent(%d) = %q, 期望 %q", tt.affection, got, tt.want)
			}
		})
	}
}

func TestNextEventOneShot(t *testing.T) {
	completed := map[EventType]bool{}

	// 第一次在 40 触发约会事件
	if got := NextEvent(40, completed, EventNone); got != EventDatePlan {
		t.Fatalf("首次触发 = %q, 期望 %q", got, EventDatePlan)
	}
	completed[EventDatePlan] = true

	// 好感度回落再回升也不会重复触发
	if got := NextEvent(40, completed, EventNone); got != EventNone {
		t.Fatalf("重复触发 = %q, 期望不触发", got)
	}
}
