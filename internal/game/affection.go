// internal/game/affection.go
package game

import "time"

// 好感度与节奏常量
const (
	InitialAffection = 10
	MinAffection     = 0
	MaxAffection     = 100

	// 触发阈值，按优先级降序检查
	ThresholdGift     = 99
	ThresholdOutfit   = 65
	ThresholdDatePlan = 35

	// 失败判定要求的最少消息数（严格大于）
	LossMinMessages = 2

	// 送错礼物的固定结果
	GiftRejectedAffection = 75
	GiftRejectedDelta     = -24

	LossDelay     = 2 * time.Second
	EmotionDwell  = 3 * time.Second
	FeedbackDelay = 5 * time.Second
)

// Emotion 表示角色当前的表情状态
type Emotion string

const (
	EmotionNeutral Emotion = "neutral"
	EmotionHappy   Emotion = "happy"
	EmotionSad     Emotion = "sad"
	EmotionAngry   Emotion = "angry"
)

// ClampAffection 把好感度限制在 [0, 100]
func ClampAffection(v int) int {
	if v < MinAffection {
		return MinAffection
	}
	if v > MaxAffection {
		return MaxAffection
	}
	return v
}

// EmotionFor 根据好感度变化推导表情
// +3 及以上开心，-2 及以下生气，其余负值难过
func EmotionFor(delta int) Emotion {
	switch {
	case delta >= 3:
		return EmotionHappy
	case delta <= -2:
		return EmotionAngry
	case delta < 0:
		return EmotionSad
	default:
		return EmotionNeutral
	}
}
