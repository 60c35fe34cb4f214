// internal/game/affection_test.go
package game

import "testing"

func TestClampAffection(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"低于下限", -5, 0},
		{"下限", 0, 0},
		{"正常值", 42, 42},
		{"上限", 100, 100},
		{"超过上限", 130, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampAffection(tt.in); got != tt.want {
				t.Errorf("ClampAffection(%d) = %d, 期望 %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestEmotionFor(t *testing.T) {
	tests := []struct {
		delta int
		want  Emotion
	}{
		{10, EmotionHappy},
		{3, EmotionHappy},
		{2, EmotionNeutral},
		{1, EmotionNeutral},
		{0, EmotionNeutral},
		{-1, EmotionSad},
		{-2, EmotionAngry},
		{-10, EmotionAngry},
	}

	for _, tt := range tests {
		if got := EmotionFor(tt.delta); got != tt.want {
			t.Errorf("EmotionFor(%d) = %s, 期望 %s", tt.delta, got, tt.want)
		}
	}
}
