// internal/game/session.go
package game

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lovesim/lovesim/internal/errors"
	"github.com/lovesim/lovesim/internal/models"
	"github.com/lovesim/lovesim/internal/utils"
)

// Stage 表示一局游戏所处的阶段
type Stage string

const (
	StageCharacterSetup Stage = "character_setup"
	StageChat           Stage = "chat"
	StageEnded          Stage = "ended"
)

// 推送给订阅者的通知类型
const (
	NoticeMessage        = "message"
	NoticeTyping         = "typing"
	NoticeAffection      = "affection"
	NoticeEmotion        = "emotion"
	NoticeStage          = "stage"
	NoticeEventTriggered = "event_triggered"
	NoticeEventFeedback  = "event_feedback"
	NoticeEventCompleted = "event_completed"
	NoticeGiftProgress   = "gift_progress"
	NoticeGiftOptions    = "gift_options_ready"
	NoticeGameOver       = "game_over"
)

// Notice 是会话推送的一条状态通知
type Notice struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Snapshot 是会话状态的客户端视图
// 礼物选项经过脱敏，不包含正确性标记
type Snapshot struct {
	ID              string                  `json:"id"`
	Stage           Stage                   `json:"stage"`
	Affection       int                     `json:"affection"`
	Emotion         Emotion                 `json:"emotion"`
	Character       *models.Character       `json:"character,omitempty"`
	Messages        []models.Message        `json:"messages"`
	ActiveEvent     EventType               `json:"active_event"`
	CompletedEvents []EventType             `json:"completed_events"`
	EventFeedback   string                  `json:"event_feedback,omitempty"`
	GiftOptions     []models.GiftOptionView `json:"gift_options,omitempty"`
	GiftsReady      bool                    `json:"gifts_ready"`
	GiftProgress    string                  `json:"gift_progress,omitempty"`
	IsFinished      bool                    `json:"is_finished"`
	Result          string                  `json:"result,omitempty"`
}

// Session 是单局游戏的状态机
// 所有状态变更都在互斥锁内完成，评判调用在锁外进行，
// 调用返回后恰好应用一次状态转换
type Session struct {
	mu sync.Mutex

	id     string
	clock  Clock
	judge  Judge
	logger *utils.Logger

	user      models.UserProfile
	character *models.Character
	messages  []models.Message
	affection int
	emotion   Emotion
	stage     Stage

	activeEvent   EventType
	completed     map[EventType]bool
	eventFeedback string

	giftOptions  []models.GiftOption
	giftsReady   bool
	giftProgress string

	judging     bool
	lossPending bool
	finished    bool
	result      string

	emotionTimer Timer
	timers       []Timer

	listener func(Notice)
	onFinish func(models.GameSession)
}

// NewSession 创建新的一局游戏，好感度从初始值开始
func NewSession(user models.UserProfile, judge Judge, clock Clock) *Session {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Session{
		id:        uuid.NewString(),
		clock:     clock,
		judge:     judge,
		logger:    utils.GetLogger(),
		user:      user,
		affection: InitialAffection,
		emotion:   EmotionNeutral,
		stage:     StageCharacterSetup,
		completed: make(map[EventType]bool),
	}
}

// ID 返回会话标识
func (s *Session) ID() string {
	return s.id
}

// User 返回本局绑定的玩家档案
func (s *Session) User() models.UserProfile {
	return s.user
}

// SetListener 注册状态通知回调，回调不应阻塞
func (s *Session) SetListener(fn func(Notice)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// SetOnFinish 注册对局结束回调，用于归档
func (s *Session) SetOnFinish(fn func(models.GameSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinish = fn
}

// StartChat 绑定生成的角色并进入聊天阶段，角色会先打招呼
func (s *Session) StartChat(character *models.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageCharacterSetup {
		return apperrors.NewConflictError("角色已經設定，無法重新開始", nil)
	}
	if character == nil || character.Name == "" {
		return apperrors.NewValidationError("角色資料不完整", nil)
	}

	s.character = character
	s.stage = StageChat

	greeting := fmt.Sprintf("嗨 %s！很高興認識你。聽說你喜歡%s？", s.user.Nickname, s.user.Interests)
	s.appendMessageLocked(models.SenderAI, greeting, nil, "")
	s.emitLocked(Notice{Type: NoticeStage, Payload: s.stage})

	return nil
}

// Chat 处理一条玩家消息，评判调用失败时用兜底回复恢复
func (s *Session) Chat(ctx context.Context, text string) (*ChatReply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("訊息不能為空", nil)
	}

	s.mu.Lock()
	if err := s.ensureChatReadyLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	character := s.character
	history := models.CloneMessages(s.messages)
	s.appendMessageLocked(models.SenderUser, text, nil, "")
	s.judging = true
	s.emitLocked(Notice{Type: NoticeTyping, Payload: true})
	s.mu.Unlock()

	reply, err := s.judge.JudgeChat(ctx, character, history, text)
	if err != nil || reply == nil {
		s.logger.Warnf("聊天評判失敗，使用兜底回覆: %v", err)
		reply = FallbackChatReply()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.judging = false
	s.emitLocked(Notice{Type: NoticeTyping, Payload: false})
	if s.finished {
		return reply, nil
	}

	s.appendMessageLocked(models.SenderAI, reply.Text, models.IntPtr(reply.Delta), reply.Reason)
	s.applyDeltaLocked(reply.Delta)

	return reply, nil
}

func (s *Session) ensureChatReadyLocked() error {
	if s.finished || s.stage != StageChat {
		return apperrors.NewConflictError("對局尚未開始或已結束", nil)
	}
	if s.activeEvent != EventNone {
		return apperrors.NewConflictError("有事件進行中，請先完成事件", nil)
	}
	if s.judging {
		return apperrors.NewConflictError("上一則訊息還在處理中", nil)
	}
	return nil
}

// SubmitDatePlan 提交约会三段行程，反馈在延迟后并入聊天记录
func (s *Session) SubmitDatePlan(ctx context.Context, selection DatePlanSelection) (*EventVerdict, error) {
	if err := selection.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.ensureEventReadyLocked(EventDatePlan, "沒有進行中的約會事件"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	character := s.character
	s.judging = true
	s.mu.Unlock()

	verdict, err := s.judge.JudgeDatePlan(ctx, character, selection)
	if err != nil || verdict == nil {
		s.logger.Warnf("約會評判失敗，使用兜底結果: %v", err)
		verdict = FallbackDateVerdict()
	}

	s.settleEvent(EventDatePlan, *verdict)
	return verdict, nil
}

// SubmitOutfit 提交五个槽位的穿搭选择
func (s *Session) SubmitOutfit(ctx context.Context, selection OutfitSelection) (*EventVerdict, error) {
	s.mu.Lock()
	if err := s.ensureEventReadyLocked(EventOutfit, "沒有進行中的穿搭事件"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	character := s.character
	s.mu.Unlock()

	description, err := selection.Describe(character.Gender)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.ensureEventReadyLocked(EventOutfit, "沒有進行中的穿搭事件"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.judging = true
	s.mu.Unlock()

	verdict, judgeErr := s.judge.JudgeOutfit(ctx, character, description)
	if judgeErr != nil || verdict == nil {
		s.logger.Warnf("穿搭評判失敗，使用兜底結果: %v", judgeErr)
		verdict = FallbackOutfitVerdict()
	}

	s.settleEvent(EventOutfit, *verdict)
	return verdict, nil
}

func (s *Session) ensureEventReadyLocked(event EventType, msg string) error {
	if s.finished || s.stage != StageChat {
		return apperrors.NewConflictError("對局尚未開始或已結束", nil)
	}
	if s.activeEvent != event {
		return apperrors.NewConflictError(msg, nil)
	}
	if s.judging {
		return apperrors.NewConflictError("事件正在處理中", nil)
	}
	return nil
}

// settleEvent 标记事件完成并安排延迟结算
func (s *Session) settleEvent(event EventType, verdict EventVerdict) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.judging = false
	if s.finished {
		return
	}

	s.completed[event] = true
	s.eventFeedback = verdict.Feedback
	s.emitLocked(Notice{Type: NoticeEventFeedback, Payload: verdict.Feedback})

	s.addTimerLocked(s.clock.AfterFunc(FeedbackDelay, func() {
		s.resolveEventVerdict(event, verdict)
	}))
}

func (s *Session) resolveEventVerdict(event EventType, verdict EventVerdict) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return
	}

	delta := verdict.ScoreBonus
	sign := ""
	if delta > 0 {
		sign = "+"
	}

	var sysText, reason string
	if event == EventDatePlan {
		outcome := "普通"
		switch verdict.Satisfaction {
		case SatisfactionHappy:
			outcome = "大成功"
		case SatisfactionSad:
			outcome = "失敗"
		}
		sysText = fmt.Sprintf("約會事件完成: %s。 好感度: %s%d%%", outcome, sign, delta)
		reason = "約會評價"
	} else {
		sysText = fmt.Sprintf("穿搭事件完成。 好感度: %s%d%%", sign, delta)
		reason = "穿搭評價"
	}

	s.appendMessageLocked(models.SenderSystem, sysText, nil, "")
	s.appendMessageLocked(models.SenderAI, verdict.Feedback, models.IntPtr(delta), reason)

	s.activeEvent = EventNone
	s.eventFeedback = ""
	s.applyDeltaLocked(delta)
	s.emitLocked(Notice{Type: NoticeEventCompleted, Payload: event})
}

// GiftOptions 返回脱敏后的礼物选项和就绪标记
func (s *Session) GiftOptions() ([]models.GiftOptionView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.MaskGiftOptions(s.giftOptions), s.giftsReady
}

// ChooseGift 结算告白礼物选择
// 选对礼物直接获胜，选错礼物好感度固定回落且对局继续
func (s *Session) ChooseGift(giftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.stage != StageChat {
		return apperrors.NewConflictError("對局尚未開始或已結束", nil)
	}
	if s.activeEvent != EventGift {
		return apperrors.NewConflictError("沒有進行中的禮物事件", nil)
	}
	if !s.giftsReady {
		return apperrors.NewConflictError("禮物選項還在準備中", nil)
	}

	var gift *models.GiftOption
	for i := range s.giftOptions {
		if s.giftOptions[i].ID == giftID {
			gift = &s.giftOptions[i]
			break
		}
	}
	if gift == nil {
		return apperrors.NewNotFoundError("找不到指定的禮物選項", nil)
	}

	s.completed[EventGift] = true

	if gift.IsLiked {
		s.affection = MaxAffection
		s.setEmotionLocked(EmotionHappy, false)
		s.emitLocked(Notice{Type: NoticeAffection, Payload: s.affection})
		s.finishLocked(models.ResultWin)
		return nil
	}

	s.affection = GiftRejectedAffection
	s.activeEvent = EventNone
	s.setEmotionLocked(EmotionAngry, false)
	s.emitLocked(Notice{Type: NoticeAffection, Payload: s.affection})
	s.appendMessageLocked(models.SenderSystem, "禮物被拒絕！好感度下降至 75%。", nil, "")
	s.appendMessageLocked(models.SenderAI,
		fmt.Sprintf("呃... 這東西 (%s)？ 謝謝，但其實我不是很喜歡...", gift.Name),
		models.IntPtr(GiftRejectedDelta), "送錯禮物")
	s.checkTransitionsLocked()

	return nil
}

// Snapshot 返回当前状态的深拷贝视图
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := make([]EventType, 0, len(s.completed))
	for _, ev := range []EventType{EventDatePlan, EventOutfit, EventGift} {
		if s.completed[ev] {
			completed = append(completed, ev)
		}
	}

	var character *models.Character
	if s.character != nil {
		c := *s.character
		character = &c
	}

	return Snapshot{
		ID:              s.id,
		Stage:           s.stage,
		Affection:       s.affection,
		Emotion:         s.emotion,
		Character:       character,
		Messages:        models.CloneMessages(s.messages),
		ActiveEvent:     s.activeEvent,
		CompletedEvents: completed,
		EventFeedback:   s.eventFeedback,
		GiftOptions:     models.MaskGiftOptions(s.giftOptions),
		GiftsReady:      s.giftsReady,
		GiftProgress:    s.giftProgress,
		IsFinished:      s.finished,
		Result:          s.result,
	}
}

// IsFinished 返回对局是否已结束
func (s *Session) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Close 放弃会话并取消所有待定的定时转换
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimersLocked()
}

// --- 内部状态转换 ---

func (s *Session) appendMessageLocked(sender, text string, delta *int, reason string) {
	msg := models.Message{
		ID:              uuid.NewString(),
		Sender:          sender,
		Text:            text,
		Timestamp:       s.clock.Now(),
		AffectionChange: delta,
		Reason:          reason,
	}
	s.messages = append(s.messages, msg)
	s.emitLocked(Notice{Type: NoticeMessage, Payload: msg})
}

func (s *Session) applyDeltaLocked(delta int) {
	s.affection = ClampAffection(s.affection + delta)
	s.emitLocked(Notice{Type: NoticeAffection, Payload: s.affection})
	s.setEmotionLocked(EmotionFor(delta), true)
	s.checkTransitionsLocked()
}

func (s *Session) setEmotionLocked(emotion Emotion, dwell bool) {
	if s.emotionTimer != nil {
		s.emotionTimer.Stop()
		s.emotionTimer = nil
	}

	s.emotion = emotion
	s.emitLocked(Notice{Type: NoticeEmotion, Payload: emotion})

	if dwell && emotion != EmotionNeutral {
		s.emotionTimer = s.clock.AfterFunc(EmotionDwell, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.finished || s.affection <= MinAffection {
				return
			}
			s.emotion = EmotionNeutral
			s.emitLocked(Notice{Type: NoticeEmotion, Payload: EmotionNeutral})
		})
	}
}

func (s *Session) checkTransitionsLocked() {
	if s.finished || s.lossPending {
		return
	}

	// 失败判定优先于任何事件触发
	if s.affection <= MinAffection && len(s.messages) > LossMinMessages {
		s.lossPending = true
		s.setEmotionLocked(EmotionSad, false)
		s.addTimerLocked(s.clock.AfterFunc(LossDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.finishLocked(models.ResultLoss)
		}))
		return
	}

	if next := NextEvent(s.affection, s.completed, s.activeEvent); next != EventNone {
		s.activeEvent = next
		s.emitLocked(Notice{Type: NoticeEventTriggered, Payload: next})
		if next == EventGift {
			s.giftsReady = false
			s.giftOptions = nil
			s.giftProgress = "正在分析對話..."
			go s.prepareGifts()
		}
	}
}

// prepareGifts 在后台生成礼物选项，失败时落到备用清单
func (s *Session) prepareGifts() {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s.mu.Lock()
	character := s.character
	history := models.CloneMessages(s.messages)
	s.mu.Unlock()

	progress := func(msg string) {
		s.mu.Lock()
		s.giftProgress = msg
		s.emitLocked(Notice{Type: NoticeGiftProgress, Payload: msg})
		s.mu.Unlock()
	}

	options, err := s.judge.GenerateGiftOptions(ctx, character, history, progress)
	if err != nil || len(options) == 0 {
		s.logger.Warnf("禮物選項生成失敗，使用備用清單: %v", err)
		progress("發生錯誤，使用備用方案...")
		options = FallbackGiftOptions()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished || s.activeEvent != EventGift {
		return
	}
	s.giftOptions = options
	s.giftsReady = true
	s.giftProgress = ""
	s.emitLocked(Notice{Type: NoticeGiftOptions, Payload: models.MaskGiftOptions(options)})
}

func (s *Session) finishLocked(result string) {
	if s.finished {
		return
	}

	s.finished = true
	s.result = result
	s.stage = StageEnded
	s.stopTimersLocked()

	record := s.buildRecordLocked()
	s.emitLocked(Notice{Type: NoticeGameOver, Payload: result})

	if s.onFinish != nil {
		go s.onFinish(record)
	}
}

func (s *Session) buildRecordLocked() models.GameSession {
	startTime := s.clock.Now()
	if len(s.messages) > 0 {
		startTime = s.messages[0].Timestamp
	}

	record := models.GameSession{
		ID:         s.id,
		StartTime:  startTime,
		User:       s.user,
		Messages:   models.CloneMessages(s.messages),
		Affection:  s.affection,
		IsFinished: true,
		Result:     s.result,
	}
	if s.character != nil {
		record.Character = *s.character
	}
	return record
}

func (s *Session) addTimerLocked(t Timer) {
	s.timers = append(s.timers, t)
}

func (s *Session) stopTimersLocked() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	if s.emotionTimer != nil {
		s.emotionTimer.Stop()
		s.emotionTimer = nil
	}
}

func (s *Session) emitLocked(n Notice) {
	if s.listener != nil {
		s.listener(n)
	}
}
