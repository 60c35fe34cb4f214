// internal/services/llm_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/lovesim/lovesim/internal/config"
	"github.com/lovesim/lovesim/internal/llm"
	"github.com/lovesim/lovesim/internal/utils"
)

var ErrLLMNotReady = errors.New("llm service not ready")

// LLMService 提供统一的大语言模型调用接口
type LLMService struct {
	providerMutex      sync.RWMutex
	provider           llm.Provider
	providerName       string
	isReady            bool
	readyState         string
	activeDefaultModel string
}

// LLMStatus 对外暴露的服务状态
type LLMStatus struct {
	Ready    bool   `json:"ready"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// NewLLMService 根据当前配置初始化LLM服务
// 没有API密钥时服务仍可创建，调用方会收到未就绪错误
func NewLLMService() *LLMService {
	s := &LLMService{}
	s.reloadProvider()
	return s
}

func (s *LLMService) reloadProvider() {
	cfg := config.GetCurrentConfig()

	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()

	if cfg.LLMConfig == nil || cfg.LLMConfig["api_key"] == "" {
		s.isReady = false
		s.readyState = "未配置API密钥"
		return
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		s.isReady = false
		s.readyState = fmt.Sprintf("初始化提供者失败: %v", err)
		utils.GetLogger().Errorf("LLM提供者初始化失败: %v", err)
		return
	}

	s.provider = provider
	s.providerName = cfg.LLMProvider
	s.activeDefaultModel = cfg.LLMConfig["default_model"]
	s.isReady = true
	s.readyState = "ready"
}

// IsReady 返回服务是否可用
func (s *LLMService) IsReady() bool {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.isReady
}

// Status 返回当前提供者状态
func (s *LLMService) Status() LLMStatus {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()

	status := LLMStatus{Ready: s.isReady}
	if s.isReady {
		status.Provider = s.providerName
		status.Model = s.activeDefaultModel
	} else {
		status.Reason = s.readyState
	}
	return status
}

// UpdateProvider 更新提供者配置并重新初始化
func (s *LLMService) UpdateProvider(name string, providerConfig map[string]string) error {
	if err := config.UpdateLLMConfig(name, providerConfig); err != nil {
		return err
	}
	s.reloadProvider()

	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	if !s.isReady {
		return fmt.Errorf("提供者更新后仍不可用: %s", s.readyState)
	}
	return nil
}

func (s *LLMService) currentProvider() (llm.Provider, error) {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()

	if !s.isReady || s.provider == nil {
		return nil, fmt.Errorf("%w: %s", ErrLLMNotReady, s.readyState)
	}
	return s.provider, nil
}

// CompleteText 透传文本生成调用
func (s *LLMService) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	provider, err := s.currentProvider()
	if err != nil {
		return nil, err
	}
	return provider.CompleteText(ctx, req)
}

// CreateStructuredCompletion 请求JSON输出并解析到给定结构
func (s *LLMService) CreateStructuredCompletion(ctx context.Context, prompt, systemPrompt string, outputSchema interface{}) error {
	provider, err := s.currentProvider()
	if err != nil {
		return err
	}

	structuredSystemPrompt := systemPrompt
	if systemPrompt != "" {
		structuredSystemPrompt += "\n\n"
	}
	structuredSystemPrompt += "Return your response in valid JSON format, following the provided output schema, without adding explanations or preambles."

	resp, err := provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: structuredSystemPrompt,
		Temperature:  0.3,
		ExtraParams: map[string]interface{}{
			"responseMimeType": "application/json",
		},
	})
	if err != nil {
		return err
	}

	text := cleanJSONString(resp.Text)
	if err := json.Unmarshal([]byte(text), outputSchema); err != nil {
		return fmt.Errorf("failed to parse AI response into structured data: %w\nAI return: %s", err, text)
	}

	return nil
}

// GenerateImage 生成图像并返回可展示的URL
func (s *LLMService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	provider, err := s.currentProvider()
	if err != nil {
		return "", err
	}

	resp, err := provider.GenerateImage(ctx, llm.ImageRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

// 清理JSON字符串，去除Markdown围栏和前后非JSON内容
var jsonNoiseReplacer = strings.NewReplacer(
	"```json", "",
	"```", "",
	"\ufeff", "",
	"\u00a0", " ",
)

func cleanJSONString(s string) string {
	if s == "" {
		return s
	}

	s = jsonNoiseReplacer.Replace(s)
	s = strings.TrimSpace(s)

	// 移除零宽字符及除换行/制表符外的控制字符
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	// 截取首个 { 或 [ 到最后一个配对括号之间的内容
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	s = s[start:]

	closer := "}"
	if s[0] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(s, closer); end != -1 {
		s = s[:end+1]
	}

	return strings.TrimSpace(s)
}
