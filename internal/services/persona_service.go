// internal/services/persona_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/lovesim/lovesim/internal/errors"
	"github.com/lovesim/lovesim/internal/game"
	"github.com/lovesim/lovesim/internal/models"
	"github.com/lovesim/lovesim/internal/utils"
)

// PersonaService 负责角色生成和所有评判调用的提示词构造
// 实现 game.Judge 接口
type PersonaService struct {
	llm    *LLMService
	logger *utils.Logger
}

// NewPersonaService 创建角色服务
func NewPersonaService(llmService *LLMService) *PersonaService {
	return &PersonaService{
		llm:    llmService,
		logger: utils.GetLogger(),
	}
}

// BuildSystemInstruction 根据角色属性生成人设指令
// 指令对状态机不透明，每次评判调用都原样携带
func (s *PersonaService) BuildSystemInstruction(attrs models.CharacterAttributes) string {
	return fmt.Sprintf(`
你是一個戀愛模擬遊戲中的角色。請全程使用繁體中文（台灣用語）進行角色扮演。
你的設定如下：
- 性別: %s
- 年齡區間: %s
- 個性: %s
- 興趣: %s
- 職業: %s
- 額外設定: %s
指令：
1. 隨時保持角色設定，不要跳脫角色 (Break character)。
2. 自然地回應使用者的訊息。
3. 如果對話冷場，請根據你的興趣主動提問。
4. 你內心有一個「好感度計量表」，你會根據使用者的訊息來評價。
5. 回覆請簡潔（通常在 3 句話以內），除非你在說故事。
6. 請用繁體中文回答。
`, attrs.Gender, attrs.AgeRange, attrs.Personality, attrs.Interests, attrs.Occupation, attrs.CustomPrompt)
}

// GenerateCharacter 按属性生成角色，名字随机取自名字池，头像失败时用占位图
func (s *PersonaService) GenerateCharacter(ctx context.Context, attrs models.CharacterAttributes) *models.Character {
	character := &models.Character{
		CharacterAttributes: attrs,
		Name:                game.RandomName(attrs.Gender),
		SystemInstruction:   s.BuildSystemInstruction(attrs),
		AvatarURL:           s.generateAvatar(ctx, attrs),
		CreatedAt:           time.Now(),
	}
	return character
}

func (s *PersonaService) generateAvatar(ctx context.Context, attrs models.CharacterAttributes) string {
	prompt := fmt.Sprintf(`
A high-quality, photorealistic close-up portrait of a real person.
Gender: %s.
Age: Young adult / Adult.
Personality vibe: %s.
Occupation hint: %s.
Asian Taiwanese
Style: Professional photography, studio lighting, sharp focus, facing camera directly, neutral background.
Do NOT generate cartoons, anime, or drawings. It must look like a real photo of a person.
`, attrs.Gender, attrs.Personality, attrs.Occupation)

	url, err := s.llm.GenerateImage(ctx, prompt)
	if err != nil {
		s.logger.Warnf("頭像生成失敗，使用佔位圖: %v", err)
		return game.PlaceholderAvatarURL
	}
	return url
}

// GenerateOutfitPreview 生成穿搭预览图，失败时返回占位图
func (s *PersonaService) GenerateOutfitPreview(ctx context.Context, description string) string {
	prompt := fmt.Sprintf(`
Full body fashion photography of a person wearing: %s.
The person should be facing forward and taiwanese looking.
casual, neutral studio background.
Focus on the clothes.
`, description)

	url, err := s.llm.GenerateImage(ctx, prompt)
	if err != nil {
		s.logger.Warnf("穿搭預覽生成失敗，使用佔位圖: %v", err)
		return game.PlaceholderOutfitURL
	}
	return url
}

// JudgeChat 让角色评判一条玩家消息并生成回复
func (s *PersonaService) JudgeChat(ctx context.Context, character *models.Character, history []models.Message, userText string) (*game.ChatReply, error) {
	recent := history
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	var contextBuilder strings.Builder
	for _, m := range recent {
		contextBuilder.WriteString(fmt.Sprintf("%s: %s\n", m.Sender, m.Text))
	}

	prompt := fmt.Sprintf(`
目前的對話紀錄：
%s
使用者: %s
任務：
1. 根據你的個性 (%s) 和興趣 (%s) 分析使用者的訊息。
2. 決定「好感度變化分數」 (整數，範圍 -10 到 +10)。
   - 加分: 稱讚、共同興趣、幽默、體貼。
   - 扣分: 無禮、無聊、禁忌話題、尷尬、敷衍。
3. 生成角色回應 (繁體中文)。
請只輸出 JSON 格式。
`, contextBuilder.String(), userText, character.Personality, character.Interests)

	var result struct {
		Reply           string `json:"reply"`
		AffectionChange int    `json:"affectionChange"`
		Reason          string `json:"reason"`
	}
	if err := s.llm.CreateStructuredCompletion(ctx, prompt, character.SystemInstruction, &result); err != nil {
		return nil, apperrors.NewJudgmentError("聊天評判調用失敗", err)
	}

	if result.Reply == "" {
		result.Reply = "..."
	}
	if result.Reason == "" {
		result.Reason = "無原因"
	}

	return &game.ChatReply{
		Text:   result.Reply,
		Delta:  result.AffectionChange,
		Reason: result.Reason,
	}, nil
}

// JudgeDatePlan 整体评判三段约会行程
func (s *PersonaService) JudgeDatePlan(ctx context.Context, character *models.Character, selection game.DatePlanSelection) (*game.EventVerdict, error) {
	prompt := fmt.Sprintf(`
使用者為你安排了一整天的約會行程。
早上: %s
下午: %s
晚上: %s
請根據你的個性 (%s) 和興趣 (%s) 嚴格評價這次約會。
有些選項是非常糟糕的（例如去墓地、放鳥、髒亂的環境），遇到這些選項請務必給予負分。

回傳 JSON:
- feedback: 一段約 50-80 字的約會心得 (繁體中文)，如果很不滿意請直接表達生氣或失望。
- satisfaction: "happy" (很滿意), "neutral" (普通), "sad" (不滿意/生氣)。
- scoreBonus:
  - 如果行程完美符合喜好: +5 到 +10
  - 如果行程普通: +1 到 +4
  - 如果行程包含糟糕選項或不符合喜好: -5 到 -10 (請不要客氣，該扣分就扣分)
`, selection.Morning, selection.Afternoon, selection.Evening, character.Personality, character.Interests)

	return s.judgeEvent(ctx, character, prompt, "約會評判調用失敗")
}

// JudgeOutfit 评判整套穿搭
func (s *PersonaService) JudgeOutfit(ctx context.Context, character *models.Character, description string) (*game.EventVerdict, error) {
	prompt := fmt.Sprintf(`
使用者為了和你的約會，穿搭了以下服裝：
%s
你的喜好：
- 個性: %s
- 興趣: %s
- 職業: %s
請評價這套衣服是否得體、是否符合你的審美觀。
注意：如果使用者穿著怪異（如小丑假髮、睡衣、泳衣、指虎），請務必給予強烈的負評和扣分。

回傳 JSON:
- feedback: 一段約 30-50 字的評價 (繁體中文)，如果是怪異穿搭請表現出驚嚇或嫌棄。
- satisfaction: "happy" (好看), "neutral" (普通), "sad" (難看/怪異)。
- scoreBonus:
  - 非常好看/符合喜好: +5 到 +10
  - 普通: +0 到 +3
  - 怪異/隨便/糟糕: -5 到 -10
`, description, character.Personality, character.Interests, character.Occupation)

	return s.judgeEvent(ctx, character, prompt, "穿搭評判調用失敗")
}

func (s *PersonaService) judgeEvent(ctx context.Context, character *models.Character, prompt, failMsg string) (*game.EventVerdict, error) {
	var result struct {
		Feedback     string `json:"feedback"`
		Satisfaction string `json:"satisfaction"`
		ScoreBonus   int    `json:"scoreBonus"`
	}
	if err := s.llm.CreateStructuredCompletion(ctx, prompt, character.SystemInstruction, &result); err != nil {
		return nil, apperrors.NewJudgmentError(failMsg, err)
	}

	if result.Satisfaction == "" {
		result.Satisfaction = game.SatisfactionNeutral
	}

	return &game.EventVerdict{
		Feedback:     result.Feedback,
		ScoreBonus:   result.ScoreBonus,
		Satisfaction: result.Satisfaction,
	}, nil
}

// GenerateGiftOptions 生成三个礼物选项并并行绘制图片
// 单张图片失败不影响整体，只替换为占位图
func (s *PersonaService) GenerateGiftOptions(ctx context.Context, character *models.Character, history []models.Message, progress func(string)) ([]models.GiftOption, error) {
	if progress == nil {
		progress = func(string) {}
	}

	progress("正在分析對方的喜好...")

	prompt := `
根據我們的對話紀錄和我的個性，建議 3 個告白禮物選項。

規則：
1. 第一個禮物：我會「非常喜歡」的完美禮物。
2. 第二個禮物：稍微普通一點，但我還是會接受的禮物。
3. 第三個禮物：我會「討厭」或覺得「莫名其妙」的地雷禮物（例如：不雅物品、沒有聊過或是顯然不適合我的東西）。

回傳包含 3 個物件的 JSON 陣列 (繁體中文)。
imageUrl 欄位請提供一個英文描述詞 (Prompt)，用來生成這個禮物的圖片。描述需具體（例如包含顏色、材質）。
isLiked 欄位：喜歡/普通為 true, 討厭為 false。
`

	recent := history
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	var contextBuilder strings.Builder
	contextBuilder.WriteString("對話紀錄：\n")
	for _, m := range recent {
		contextBuilder.WriteString(m.Text)
		contextBuilder.WriteString(" ")
	}

	var rawItems []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsLiked     bool   `json:"isLiked"`
		ImageURL    string `json:"imageUrl"`
	}
	if err := s.llm.CreateStructuredCompletion(ctx, contextBuilder.String()+prompt, character.SystemInstruction, &rawItems); err != nil {
		return nil, apperrors.NewJudgmentError("禮物選項生成失敗", err)
	}
	if len(rawItems) < 3 {
		return nil, apperrors.NewJudgmentError("禮物選項數量不足", nil)
	}

	// 收敛为3个，且至少一个喜欢和一个地雷
	if len(rawItems) > 3 {
		rawItems = rawItems[:3]
	}
	hasLiked, hasDisliked := false, false
	for _, item := range rawItems {
		if item.IsLiked {
			hasLiked = true
		} else {
			hasDisliked = true
		}
	}
	if !hasLiked {
		rawItems[0].IsLiked = true
	}
	if !hasDisliked {
		rawItems[len(rawItems)-1].IsLiked = false
	}

	progress("正在生成禮物清單...")

	total := len(rawItems)
	progress(fmt.Sprintf("正在繪製禮物圖片 (0/%d)...", total))

	gifts := make([]models.GiftOption, total)
	completed := 0
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, item := range rawItems {
		wg.Add(1)
		go func(index int, name, description, imagePrompt string, isLiked bool) {
			defer wg.Done()

			if imagePrompt == "" {
				imagePrompt = name
			}
			imageURL := s.generateGiftImage(ctx, imagePrompt)

			mu.Lock()
			completed++
			done := completed
			gifts[index] = models.GiftOption{
				ID:          fmt.Sprintf("gift-%d", index),
				Name:        name,
				Description: description,
				IsLiked:     isLiked,
				ImageURL:    imageURL,
			}
			mu.Unlock()

			progress(fmt.Sprintf("正在繪製禮物圖片 (%d/%d)...", done, total))
		}(i, item.Name, item.Description, item.ImageURL, item.IsLiked)
	}
	wg.Wait()

	progress("禮物準備完成！")
	return gifts, nil
}

func (s *PersonaService) generateGiftImage(ctx context.Context, description string) string {
	prompt := fmt.Sprintf(`
A high-quality product photography of %s.
Style: Minimalist, studio lighting, white or neutral background, photorealistic.
The object should be centered.
Do NOT generate text or labels in the image.
`, description)

	url, err := s.llm.GenerateImage(ctx, prompt)
	if err != nil {
		s.logger.Warnf("禮物圖片生成失敗，使用佔位圖: %v", err)
		return game.PlaceholderGiftURL
	}
	return url
}
