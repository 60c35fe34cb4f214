// internal/game/session_test.go
package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lovesim/lovesim/internal/models"
)

type fakeJudge struct {
	reply     *ChatReply
	chatErr   error
	verdict   *EventVerdict
	eventErr  error
	gifts     []models.GiftOption
	giftErr   error
	giftCalls int
}

func (f *fakeJudge) JudgeChat(ctx context.Context, character *models.Character, history []models.Message, userText string) (*ChatReply, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	r := *f.reply
	return &r, nil
}

func (f *fakeJudge) JudgeDatePlan(ctx context.Context, character *models.Character, selection DatePlanSelection) (*EventVerdict, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	v := *f.verdict
	return &v, nil
}

func (f *fakeJudge) JudgeOutfit(ctx context.Context, character *models.Character, description string) (*EventVerdict, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	v := *f.verdict
	return &v, nil
}

func (f *fakeJudge) GenerateGiftOptions(ctx context.Context, character *models.Character, history []models.Message, progress func(string)) ([]models.GiftOption, error) {
	f.giftCalls++
	if progress != nil {
		progress("正在分析對方的喜好...")
	}
	if f.giftErr != nil {
		return nil, f.giftErr
	}
	return f.gifts, nil
}

func testUser() models.UserProfile {
	return models.UserProfile{Nickname: "小明", Gender: "男性", Interests: "看電影"}
}

func testCharacter() *models.Character {
	return &models.Character{
		CharacterAttributes: models.CharacterAttributes{
			Gender:      "女性",
			AgeRange:    "25-30 歲",
			Personality: "開朗",
			Interests:   "看電影",
			Occupation:  "上班族",
		},
		Name:              "雅婷",
		SystemInstruction: "persona",
	}
}

func newChatSession(t *testing.T, judge Judge, clock Clock) *Session {
	t.Helper()
	s := NewSession(testUser(), judge, clock)
	if err := s.StartChat(testCharacter()); err != nil {
		t.Fatalf("StartChat 失败: %v", err)
	}
	return s
}

func waitGiftsReady(t *testing.T, s *Session) []models.GiftOptionView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if views, ready := s.GiftOptions(); ready {
			return views
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("礼物选项超时未就绪")
	return nil
}

func TestNewSessionStartsAtInitialAffection(t *testing.T) {
	s := NewSession(testUser(), &fakeJudge{}, NewManualClock(time.Now()))
	snap := s.Snapshot()

	if snap.Affection != InitialAffection {
		t.Errorf("初始好感度 = %d, 期望 %d", snap.Affection, InitialAffection)
	}
	if snap.Stage != StageCharacterSetup {
		t.Errorf("初始阶段 = %s, 期望 %s", snap.Stage, StageCharacterSetup)
	}
	if snap.Emotion != EmotionNeutral {
		t.Errorf("初始表情 = %s, 期望 neutral", snap.Emotion)
	}
}

func TestStartChatAddsGreeting(t *testing.T) {
	s := newChatSession(t, &fakeJudge{}, NewManualClock(time.Now()))
	snap := s.Snapshot()

	if snap.Stage != StageChat {
		t.Fatalf("阶段 = %s, 期望 %s", snap.Stage, StageChat)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Sender != models.SenderAI {
		t.Fatalf("期望一条AI开场白, 实际消息: %+v", snap.Messages)
	}
	if err := s.StartChat(testCharacter()); err == nil {
		t.Fatal("重复设定角色应该返回冲突错误")
	}
}

func TestChatAppliesDeltaAndEmotion(t *testing.T) {
	clock := NewManualClock(time.Now())
	judge := &fakeJudge{reply: &ChatReply{Text: "真的嗎？", Delta: 5, Reason: "共同興趣"}}
	s := newChatSession(t, judge, clock)

	reply, err := s.Chat(context.Background(), "我也喜歡看電影")
	if err != nil {
		t.Fatalf("Chat 失败: %v", err)
	}
	if reply.Delta != 5 {
		t.Fatalf("delta = %d, 期望 5", reply.Delta)
	}

	snap := s.Snapshot()
	if snap.Affection != 15 {
		t.Errorf("好感度 = %d, 期望 15", snap.Affection)
	}
	if snap.Emotion != EmotionHappy {
		t.Errorf("表情 = %s, 期望 happy", snap.Emotion)
	}
	if len(snap.Messages) != 3 {
		t.Errorf("消息数 = %d, 期望 3", len(snap.Messages))
	}
	last := snap.Messages[2]
	if last.AffectionChange == nil || *last.AffectionChange != 5 || last.Reason != "共同興趣" {
		t.Errorf("AI消息缺少好感度标注: %+v", last)
	}

	// 表情停留3秒后回到中性
	clock.Advance(EmotionDwell)
	if got := s.Snapshot().Emotion; got != EmotionNeutral {
		t.Errorf("停留期后表情 = %s, 期望 neutral", got)
	}
}

func TestChatAppliesRawDeltaClampsTotal(t *testing.T) {
	clock := NewManualClock(time.Now())
	judge := &fakeJudge{reply: &ChatReply{Text: "我不想再理你了", Delta: -75, Reason: "徹底失望"}}
	s := newChatSession(t, judge, clock)

	reply, err := s.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Chat 失败: %v", err)
	}
	// 评分原样入账，只对好感度总量做上下限
	if reply.Delta != -75 {
		t.Errorf("delta = %d, 期望原样记录 -75", reply.Delta)
	}
	if got := s.Snapshot().Affection; got != MinAffection {
		t.Errorf("好感度 = %d, 期望钳到 %d", got, MinAffection)
	}

	clock.Advance(LossDelay)
	snap := s.Snapshot()
	if !snap.IsFinished || snap.Result != models.ResultLoss {
		t.Fatalf("一回合扣穿下限应判负, 实际 finished=%v result=%s", snap.IsFinished, snap.Result)
	}
}

func TestChatLargePositiveDeltaClampsAtMax(t *testing.T) {
	judge := &fakeJudge{reply: &ChatReply{Text: "太感動了", Delta: 200, Reason: "被打動"}}
	s := newChatSession(t, judge, NewManualClock(time.Now()))

	if _, err := s.Chat(context.Background(), "我寫了一首詩給你"); err != nil {
		t.Fatalf("Chat 失败: %v", err)
	}

	snap := s.Snapshot()
	if snap.Affection != MaxAffection {
		t.Errorf("好感度 = %d, 期望 %d", snap.Affection, MaxAffection)
	}
	if snap.ActiveEvent != EventGift {
		t.Errorf("好感度满值应触发告白事件, 实际 %q", snap.ActiveEvent)
	}
}

func TestChatFallbackOnJudgeFailure(t *testing.T) {
	judge := &fakeJudge{chatErr: errors.New("api down")}
	s := newChatSession(t, judge, NewManualClock(time.Now()))

	reply, err := s.Chat(context.Background(), "在嗎")
	if err != nil {
		t.Fatalf("评判失败不应向上返回错误: %v", err)
	}
	if reply.Delta != 0 || reply.Reason != "Error" {
		t.Errorf("兜底回复 = %+v", reply)
	}
	if got := s.Snapshot().Affection; got != InitialAffection {
		t.Errorf("兜底回复不应改变好感度, 实际 %d", got)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	s := newChatSession(t, &fakeJudge{}, NewManualClock(time.Now()))
	if _, err := s.Chat(context.Background(), "   "); err == nil {
		t.Fatal("空消息应该被拒绝")
	}
	if got := len(s.Snapshot().Messages); got != 1 {
		t.Fatalf("被拒绝的消息不应入库, 消息数 = %d", got)
	}
}

func TestDatePlanTriggerAndResolution(t *testing.T) {
	clock := NewManualClock(time.Now())
	judge := &fakeJudge{
		reply:   &ChatReply{Text: "好啊", Delta: 10, Reason: "體貼"},
		verdict: &EventVerdict{Feedback: "行程安排得真用心！", ScoreBonus: 8, Satisfaction: SatisfactionHappy},
	}
	s := newChatSession(t, judge, clock)

	// 10 -> 20 -> 30 -> 40，第三次越过35触发约会事件
	for i := 0; i < 3; i++ {
		if _, err := s.Chat(context.Background(), "聊天"); err != nil {
			t.Fatalf("第 %d 次聊天失败: %v", i+1, err)
		}
	}

	snap := s.Snapshot()
	if snap.ActiveEvent != EventDatePlan {
		t.Fatalf("活动事件 = %q, 期望约会事件", snap.ActiveEvent)
	}

	// 事件进行中禁止聊天
	if _, err := s.Chat(context.Background(), "還在嗎"); err == nil {
		t.Fatal("事件进行中聊天应该被拒绝")
	}

	selection := DatePlanSelection{Morning: "網美早午餐", Afternoon: "河濱公園騎腳踏車", Evening: "浪漫景觀餐廳晚餐"}
	verdict, err := s.SubmitDatePlan(context.Background(), selection)
	if err != nil {
		t.Fatalf("SubmitDatePlan 失败: %v", err)
	}
	if verdict.ScoreBonus != 8 {
		t.Fatalf("verdict = %+v", verdict)
	}

	// 结算前分数未入账
	if got := s.Snapshot().Affection; got != 40 {
		t.Fatalf("延迟结算前好感度 = %d, 期望 40", got)
	}

	clock.Advance(FeedbackDelay)

	snap = s.Snapshot()
	if snap.Affection != 48 {
		t.Errorf("结算后好感度 = %d, 期望 48", snap.Affection)
	}
	if snap.ActiveEvent != EventNone {
		t.Errorf("结算后活动事件 = %q, 期望清空", snap.ActiveEvent)
	}
	if len(snap.CompletedEvents) != 1 || snap.CompletedEvents[0] != EventDatePlan {
		t.Errorf("已完成事件 = %v", snap.CompletedEvents)
	}

	// 结算追加系统消息和AI评价
	n := len(snap.Messages)
	if n < 2 || snap.Messages[n-2].Sender != models.SenderSystem || snap.Messages[n-1].Sender != models.SenderAI {
		t.Errorf("结算消息缺失: %+v", snap.Messages[n-2:])
	}
	if snap.Messages[n-1].Reason != "約會評價" {
		t.Errorf("评价原因 = %q", snap.Messages[n-1].Reason)
	}
}

func TestDatePlanRejectsUnknownOption(t *testing.T) {
	s := newChatSession(t, &fakeJudge{}, NewManualClock(time.Now()))
	s.mu.Lock()
	s.activeEvent = EventDatePlan
	s.mu.Unlock()

	bad := DatePlanSelection{Morning: "不存在的行程", Afternoon: "河濱公園騎腳踏車", Evening: "夜店狂歡"}
	if _, err := s.SubmitDatePlan(context.Background(), bad); err == nil {
		t.Fatal("目录外的选项应该被拒绝")
	}
}

func TestOutfitNegativeVerdictCanCauseLoss(t *testing.T) {
	clock := NewManualClock(time.Now())
	judge := &fakeJudge{
		reply:   &ChatReply{Text: "...", Delta: 1, Reason: "普通"},
		verdict: &EventVerdict{Feedback: "這是什麼打扮？！", ScoreBonus: -10, Satisfaction: SatisfactionSad},
	}
	s := newChatSession(t, judge, clock)

	s.mu.Lock()
	s.affection = 5
	s.activeEvent = EventOutfit
	s.messages = append(s.messages,
		models.Message{ID: "m1", Sender: models.SenderUser, Text: "a", Timestamp: clock.Now()},
		models.Message{ID: "m2", Sender: models.SenderAI, Text: "b", Timestamp: clock.Now()},
	)
	s.mu.Unlock()

	selection := OutfitSelection{Top: "05", Bottom: "06", Head: "03", Body: "00", Hand: "00"}
	if _, err := s.SubmitOutfit(context.Background(), selection); err != nil {
		t.Fatalf("SubmitOutfit 失败: %v", err)
	}

	clock.Advance(FeedbackDelay)

	snap := s.Snapshot()
	if snap.Affection != 0 {
		t.Fatalf("好感度 = %d, 期望钳到 0", snap.Affection)
	}
	if snap.Emotion != EmotionSad {
		t.Errorf("失败前表情 = %s, 期望 sad", snap.Emotion)
	}
	if snap.IsFinished {
		t.Fatal("失败应延迟结算")
	}

	// 表情停留计时不应在好感度归零时恢复中性
	clock.Advance(EmotionDwell)
	if got := s.Snapshot().Emotion; got != EmotionSad {
		t.Errorf("归零后表情 = %s, 期望保持 sad", got)
	}

	clock.Advance(LossDelay)
	snap = s.Snapshot()
	if !snap.IsFinished || snap.Result != models.ResultLoss {
		t.Fatalf("期望判负, 实际 %+v", snap)
	}
}

func TestGiftLikedWinsImmediately(t *testing.T) {
	clock := NewManualClock(time.Now())
	judge := &fakeJudge{
		reply: &ChatReply{Text: "嗯嗯", Delta: 2, Reason: "普通"},
		gifts: []models.GiftOption{
			{ID: "g1", Name: "手作巧克力", IsLiked: true},
			{ID: "g2", Name: "鮮花", IsLiked: true},
			{ID: "g3", Name: "石頭", IsLiked: false},
		},
	}
	s := newChatSession(t, judge, clock)

	var finished []models.GameSession
	done := make(chan struct{})
	s.SetOnFinish(func(record models.GameSession) {
		finished = append(finished, record)
		close(done)
	})

	s.mu.Lock()
	s.affection = 98
	s.completed[EventDatePlan] = true
	s.completed[EventOutfit] = true
	s.mu.Unlock()

	if _, err := s.Chat(context.Background(), "最喜歡你了"); err != nil {
		t.Fatalf("Chat 失败: %v", err)
	}

	snap := s.Snapshot()
	if snap.ActiveEvent != EventGift {
		t.Fatalf("活动事件 = %q, 期望礼物事件", snap.ActiveEvent)
	}

	views := waitGiftsReady(t, s)
	if len(views) != 3 {
		t.Fatalf("礼物选项数 = %d", len(views))
	}

	if err := s.ChooseGift("g1"); err != nil {
		t.Fatalf("ChooseGift 失败: %v", err)
	}

	snap = s.Snapshot()
	if !snap.IsFinished || snap.Result != models.ResultWin {
		t.Fatalf("期望获胜, 实际 finished=%v result=%q", snap.IsFinished, snap.Result)
	}
	if snap.Affection != MaxAffection {
		t.Errorf("获胜好感度 = %d, 期望 100", snap.Affection)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("对局结束回调超时")
	}
	if len(finished) != 1 || finished[0].Result != models.ResultWin || !finished[0].IsFinished {
		t.Fatalf("归档记录错误: %+v", finished)
	}
	if finished[0].StartTime != s.Snapshot().Messages[0].Timestamp {
		t.Error("归档开始时间应取第一条消息的时间戳")
	}
}

func TestGiftRejectedFallsBackTo75(t *testing.T) {
	clock := NewManualClock(time.Now())
	judge := &fakeJudge{
		reply: &ChatReply{Text: "嗯嗯", Delta: 2, Reason: "普通"},
		gifts: []models.GiftOption{
			{ID: "g1", Name: "手作巧克力", IsLiked: true},
			{ID: "g2", Name: "鮮花", IsLiked: true},
			{ID: "g3", Name: "一把鼻毛剪", IsLiked: false},
		},
	}
	s := newChatSession(t, judge, clock)

	s.mu.Lock()
	s.affection = 98
	s.completed[EventDatePlan] = true
	s.completed[EventOutfit] = true
	s.mu.Unlock()

	if _, err := s.Chat(context.Background(), "最喜歡你了"); err != nil {
		t.Fatalf("Chat 失败: %v", err)
	}
	waitGiftsReady(t, s)

	if err := s.ChooseGift("g3"); err != nil {
		t.Fatalf("ChooseGift 失败: %v", err)
	}

	snap := s.Snapshot()
	if snap.IsFinished {
		t.Fatal("送错礼物不应结束对局")
	}
	if snap.Affection != GiftRejectedAffection {
		t.Errorf("好感度 = %d, 期望固定回落到 75", snap.Affection)
	}
	if snap.ActiveEvent != EventNone {
		t.Errorf("活动事件 = %q, 期望清空", snap.ActiveEvent)
	}
	if snap.Emotion != EmotionAngry {
		t.Errorf("表情 = %s, 期望 angry", snap.Emotion)
	}

	// 展示的变化量与实际回落幅度不一致，按产品文案保留 -24
	last := snap.Messages[len(snap.Messages)-1]
	if last.AffectionChange == nil || *last.AffectionChange != GiftRejectedDelta || last.Reason != "送錯禮物" {
		t.Errorf("拒绝消息标注错误: %+v", last)
	}

	// 礼物事件一次性，好感度再到99也不重复触发
	s.mu.Lock()
	s.affection = 99
	s.checkTransitionsLocked()
	active := s.activeEvent
	s.mu.Unlock()
	if active == EventGift {
		t.Fatal("礼物事件不应重复触发")
	}
}

func TestGiftFallbackOptionsOnFailure(t *testing.T) {
	clock := NewManualClock(time.Now())
	judge := &fakeJudge{
		reply:   &ChatReply{Text: "嗯嗯", Delta: 2, Reason: "普通"},
		giftErr: errors.New("api down"),
	}
	s := newChatSession(t, judge, clock)

	s.mu.Lock()
	s.affection = 98
	s.completed[EventDatePlan] = true
	s.completed[EventOutfit] = true
	s.mu.Unlock()

	if _, err := s.Chat(context.Background(), "hi"); err != nil {
		t.Fatalf("Chat 失败: %v", err)
	}

	views := waitGiftsReady(t, s)
	if len(views) != 3 {
		t.Fatalf("备用礼物选项数 = %d, 期望 3", len(views))
	}
	if views[0].Name != "神秘禮物" {
		t.Errorf("备用清单内容错误: %+v", views)
	}
}

func TestGiftOptionsHideIsLiked(t *testing.T) {
	options := []models.GiftOption{{ID: "g1", Name: "x", IsLiked: true}}
	views := models.MaskGiftOptions(options)

	if len(views) != 1 {
		t.Fatalf("视图数 = %d", len(views))
	}
	// 视图结构不携带正确性标记，编译期即保证，这里校验其余字段透传
	if views[0].ID != "g1" || views[0].Name != "x" {
		t.Errorf("视图字段透传错误: %+v", views[0])
	}
}

func TestLossRequiresMinimumExchange(t *testing.T) {
	clock := NewManualClock(time.Now())
	judge := &fakeJudge{reply: &ChatReply{Text: "走開", Delta: -10, Reason: "無禮"}}
	s := newChatSession(t, judge, clock)

	// 开场白+玩家+AI共3条，好感度 10-10=0，满足判负条件
	if _, err := s.Chat(context.Background(), "喂"); err != nil {
		t.Fatalf("Chat 失败: %v", err)
	}

	snap := s.Snapshot()
	if snap.IsFinished {
		t.Fatal("判负应有延迟")
	}
	if snap.Emotion != EmotionSad {
		t.Errorf("判负前表情 = %s, 期望 sad", snap.Emotion)
	}

	clock.Advance(LossDelay)
	snap = s.Snapshot()
	if !snap.IsFinished || snap.Result != models.ResultLoss {
		t.Fatalf("期望判负, 实际 %+v", snap)
	}

	// 结束后一切操作拒绝
	if _, err := s.Chat(context.Background(), "再見"); err == nil {
		t.Fatal("结束后聊天应该被拒绝")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newChatSession(t, &fakeJudge{}, NewManualClock(time.Now()))

	snap := s.Snapshot()
	snap.Messages[0].Text = "被篡改"
	snap.Character.Name = "冒牌貨"

	fresh := s.Snapshot()
	if fresh.Messages[0].Text == "被篡改" {
		t.Fatal("快照应当与内部状态隔离")
	}
	if fresh.Character.Name == "冒牌貨" {
		t.Fatal("快照角色应当与内部状态隔离")
	}
}
