// internal/game/trigger.go
package game

// EventType 标识阈值触发的迷你事件
type EventType string

const (
	EventNone     EventType = ""
	EventDatePlan EventType = "date_plan"
	EventOutfit   EventType = "outfit"
	EventGift     EventType = "gift"
)

// NextEvent 根据当前好感度决定下一个触发的事件
// 同一时间只允许一个活动事件，每个事件整局只触发一次
// 多个阈值同时满足时高阈值优先
func NextEvent(affection int, completed map[EventType]bool, active EventType) EventType {
	if active != EventNone {
		return EventNone
	}

	switch {
	case affection >= ThresholdGift && !completed[EventGift]:
		return EventGift
	case affection >= ThresholdOutfit && !completed[EventOutfit]:
		return EventOutfit
	case affection >= ThresholdDatePlan && !completed[EventDatePlan]:
		return EventDatePlan
	}

	return EventNone
}
