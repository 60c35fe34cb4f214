// internal/services/llm_service_test.go
package services

import (
	"context"
	"testing"
)

func TestCleanJSONString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "markdown围栏",
			input: "```json\n{\"reply\": \"嗨\"}\n```",
			want:  `{"reply": "嗨"}`,
		},
		{
			name:  "前后闲聊",
			input: "好的，以下是結果：{\"reply\": \"嗨\"} 希望有幫助！",
			want:  `{"reply": "嗨"}`,
		},
		{
			name:  "JSON数组",
			input: "```\n[{\"name\": \"鮮花\"}]\n```",
			want:  `[{"name": "鮮花"}]`,
		},
		{
			name:  "零宽字符和BOM",
			input: "\ufeff{\"a\":\u200b1}",
			want:  `{"a":1}`,
		},
		{
			name:  "没有JSON内容原样返回",
			input: "抱歉我無法回答",
			want:  "抱歉我無法回答",
		},
		{
			name:  "空字符串",
			input: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanJSONString(tc.input); got != tc.want {
				t.Errorf("cleanJSONString(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestLLMServiceNotReadyWithoutKey(t *testing.T) {
	svc := NewLLMService()

	status := svc.Status()
	if status.Ready {
		// 环境里配置了密钥时跳过
		t.Skip("當前環境已配置LLM密鑰")
	}
	if status.Reason == "" {
		t.Error("未就绪状态应附带原因")
	}

	if _, err := svc.GenerateImage(context.Background(), "a red rose"); err == nil {
		t.Error("服务未就绪时生成调用应返回错误")
	}
}
