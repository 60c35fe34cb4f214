// internal/game/events.go
package game

import (
	"context"
	"fmt"

	apperrors "github.com/lovesim/lovesim/internal/errors"
	"github.com/lovesim/lovesim/internal/models"
)

// 事件评判的满意度档位
const (
	SatisfactionHappy   = "happy"
	SatisfactionNeutral = "neutral"
	SatisfactionSad     = "sad"
)

// ChatReply 是一次聊天评判的结果
type ChatReply struct {
	Text   string `json:"text"`
	Delta  int    `json:"affection_change"`
	Reason string `json:"reason"`
}

// EventVerdict 是约会或穿搭事件的评判结果
type EventVerdict struct {
	Feedback     string `json:"feedback"`
	ScoreBonus   int    `json:"score_bonus"`
	Satisfaction string `json:"satisfaction"`
}

// Judge 封装所有需要内容生成器参与的评判调用
// 实现方负责提示词构造和结构化输出解析
type Judge interface {
	JudgeChat(ctx context.Context, character *models.Character, history []models.Message, userText string) (*ChatReply, error)
	JudgeDatePlan(ctx context.Context, character *models.Character, selection DatePlanSelection) (*EventVerdict, error)
	JudgeOutfit(ctx context.Context, character *models.Character, description string) (*EventVerdict, error)
	GenerateGiftOptions(ctx context.Context, character *models.Character, history []models.Message, progress func(string)) ([]models.GiftOption, error)
}

// 评判调用失败时的兜底结果，不改变好感度，游戏继续
func FallbackChatReply() *ChatReply {
	return &ChatReply{Text: "我有點頭暈... (AI 錯誤)", Delta: 0, Reason: "Error"}
}

func FallbackDateVerdict() *EventVerdict {
	return &EventVerdict{Feedback: "這次約會... 挺特別的。", ScoreBonus: 0, Satisfaction: SatisfactionNeutral}
}

func FallbackOutfitVerdict() *EventVerdict {
	return &EventVerdict{Feedback: "嗯... 這穿搭挺有創意的。", ScoreBonus: 0, Satisfaction: SatisfactionNeutral}
}

// DatePlanSelection 约会事件的三段行程选择
type DatePlanSelection struct {
	Morning   string `json:"morning"`
	Afternoon string `json:"afternoon"`
	Evening   string `json:"evening"`
}

// Validate 检查三个时段都已选择且来自候选目录
func (s DatePlanSelection) Validate() error {
	slots := []struct {
		period string
		label  string
	}{
		{"morning", s.Morning},
		{"afternoon", s.Afternoon},
		{"evening", s.Evening},
	}

	for _, slot := range slots {
		if slot.label == "" {
			return apperrors.NewValidationError(fmt.Sprintf("約會行程 %s 尚未選擇", slot.period), nil)
		}
		if !dateLabelExists(slot.period, slot.label) {
			return apperrors.NewValidationError(fmt.Sprintf("無效的約會選項: %s", slot.label), nil)
		}
	}
	return nil
}

func dateLabelExists(period, label string) bool {
	for _, opt := range DateOptions[period] {
		if opt.Label == label {
			return true
		}
	}
	return false
}

// OutfitSelection 穿搭事件的五个槽位，存放候选项ID
type OutfitSelection struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
	Head   string `json:"head"`
	Body   string `json:"body"`
	Hand   string `json:"hand"`
}

// Describe 把选择转换为发给评判调用的英文槽位描述
func (s OutfitSelection) Describe(gender string) (string, error) {
	slots := []struct {
		slot  string
		field string
		id    string
	}{
		{"tops", "Top", s.Top},
		{"bottoms", "Bottom", s.Bottom},
		{"head", "Headwear", s.Head},
		{"body", "Accessory", s.Body},
		{"hand", "Hand", s.Hand},
	}

	description := fmt.Sprintf("Gender: %s", gender)
	for _, slot := range slots {
		name := outfitItemName(slot.slot, slot.id)
		if name == "" {
			return "", apperrors.NewValidationError(fmt.Sprintf("無效的穿搭選項: %s/%s", slot.slot, slot.id), nil)
		}
		description += fmt.Sprintf(", %s: %s", slot.field, name)
	}
	return description, nil
}

func outfitItemName(slot, id string) string {
	for _, item := range OutfitOptions[slot] {
		if item.ID == id {
			return item.Name
		}
	}
	return ""
}
