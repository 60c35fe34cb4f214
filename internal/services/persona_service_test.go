// internal/services/persona_service_test.go
package services

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/lovesim/lovesim/internal/errors"
	"github.com/lovesim/lovesim/internal/game"
	"github.com/lovesim/lovesim/internal/models"
)

func testAttrs() models.CharacterAttributes {
	return models.CharacterAttributes{
		Gender:      "女性",
		AgeRange:    "25-30 歲",
		Personality: "開朗",
		Interests:   "看電影",
		Occupation:  "上班族",
	}
}

// 未配置密钥的角色服务，所有生成调用都会走兜底路径
func newOfflinePersonaService(t *testing.T) *PersonaService {
	t.Helper()
	llm := NewLLMService()
	if llm.IsReady() {
		t.Skip("當前環境已配置LLM密鑰")
	}
	return NewPersonaService(llm)
}

func TestBuildSystemInstruction(t *testing.T) {
	svc := newOfflinePersonaService(t)
	attrs := testAttrs()

	instruction := svc.BuildSystemInstruction(attrs)
	for _, want := range []string{attrs.Gender, attrs.Personality, attrs.Interests, attrs.Occupation, "繁體中文"} {
		if !strings.Contains(instruction, want) {
			t.Errorf("人设指令应包含 %q", want)
		}
	}
}

func TestGenerateCharacterFallsBackToPlaceholder(t *testing.T) {
	svc := newOfflinePersonaService(t)

	character := svc.GenerateCharacter(context.Background(), testAttrs())
	if character.Name == "" {
		t.Error("角色应有随机名字")
	}
	if character.AvatarURL != game.PlaceholderAvatarURL {
		t.Errorf("头像生成失败应使用占位图, got %s", character.AvatarURL)
	}
	if character.SystemInstruction == "" {
		t.Error("角色应携带人设指令")
	}
	if character.CreatedAt.IsZero() {
		t.Error("角色应记录创建时间")
	}
}

func TestOutfitPreviewFallsBackToPlaceholder(t *testing.T) {
	svc := newOfflinePersonaService(t)

	url := svc.GenerateOutfitPreview(context.Background(), "Gender: 女性, Top: 連帽衫")
	if url != game.PlaceholderOutfitURL {
		t.Errorf("预览生成失败应使用占位图, got %s", url)
	}
}

func TestJudgedCallsReturnJudgmentErrors(t *testing.T) {
	svc := newOfflinePersonaService(t)
	ctx := context.Background()
	character := svc.GenerateCharacter(ctx, testAttrs())

	if _, err := svc.JudgeChat(ctx, character, nil, "你好"); !apperrors.IsJudgmentError(err) {
		t.Errorf("聊天评判失败应返回评判错误, got %v", err)
	}

	selection := game.DatePlanSelection{
		Morning:   game.DateOptions["morning"][0].Label,
		Afternoon: game.DateOptions["afternoon"][0].Label,
		Evening:   game.DateOptions["evening"][0].Label,
	}
	if _, err := svc.JudgeDatePlan(ctx, character, selection); !apperrors.IsJudgmentError(err) {
		t.Errorf("约会评判失败应返回评判错误, got %v", err)
	}

	if _, err := svc.JudgeOutfit(ctx, character, "Gender: 女性, Top: 連帽衫"); !apperrors.IsJudgmentError(err) {
		t.Errorf("穿搭评判失败应返回评判错误, got %v", err)
	}

	var progressMessages []string
	_, err := svc.GenerateGiftOptions(ctx, character, nil, func(msg string) {
		progressMessages = append(progressMessages, msg)
	})
	if !apperrors.IsJudgmentError(err) {
		t.Errorf("礼物生成失败应返回评判错误, got %v", err)
	}
	if len(progressMessages) == 0 {
		t.Error("礼物生成应至少推送一条进度消息")
	}
}
