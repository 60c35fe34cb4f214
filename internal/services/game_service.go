// internal/services/game_service.go
package services

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/lovesim/lovesim/internal/errors"
	"github.com/lovesim/lovesim/internal/game"
	"github.com/lovesim/lovesim/internal/models"
	"github.com/lovesim/lovesim/internal/utils"
)

// CharacterDirector 汇总一局游戏需要的全部生成与评判能力
type CharacterDirector interface {
	game.Judge
	GenerateCharacter(ctx context.Context, attrs models.CharacterAttributes) *models.Character
	GenerateOutfitPreview(ctx context.Context, description string) string
}

// GameService 管理每个账号的当前对局
// 一个账号同一时间只有一局进行中的游戏
type GameService struct {
	mutex    sync.RWMutex
	sessions map[string]*game.Session

	profiles *ProfileService
	persona  CharacterDirector
	history  *HistoryService
	accounts *AccountService
	notify   *NotifyService
	clock    game.Clock
	logger   *utils.Logger
}

// NewGameService 创建对局管理服务
func NewGameService(
	profiles *ProfileService,
	persona CharacterDirector,
	history *HistoryService,
	accounts *AccountService,
	notify *NotifyService,
	clock game.Clock,
) *GameService {
	if clock == nil {
		clock = game.NewRealClock()
	}
	return &GameService{
		sessions: make(map[string]*game.Session),
		profiles: profiles,
		persona:  persona,
		history:  history,
		accounts: accounts,
		notify:   notify,
		clock:    clock,
		logger:   utils.GetLogger(),
	}
}

// Start 为账号开新的一局
// 已有未结束对局且未指定覆盖时拒绝，覆盖时旧对局直接废弃不归档
func (s *GameService) Start(accountID string, overwrite bool) (*game.Snapshot, error) {
	profile := s.profiles.GetProfile(accountID)
	if !profile.IsComplete() {
		return nil, apperrors.NewValidationError("請先完成個人檔案再開始遊戲", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing, ok := s.sessions[accountID]; ok {
		if !existing.IsFinished() && !overwrite {
			return nil, apperrors.NewConflictError("已有進行中的對局，確認覆蓋後才能重新開始", nil)
		}
		existing.Close()
		s.notify.CloseSession(existing.ID())
	}

	session := game.NewSession(profile, s.persona, s.clock)
	sessionID := session.ID()
	session.SetListener(func(n game.Notice) {
		s.notify.Publish(sessionID, n)
	})
	session.SetOnFinish(func(record models.GameSession) {
		s.archiveFinished(accountID, record)
	})

	s.sessions[accountID] = session
	snapshot := session.Snapshot()
	return &snapshot, nil
}

func (s *GameService) archiveFinished(accountID string, record models.GameSession) {
	if err := s.history.Archive(accountID, record); err != nil {
		s.logger.Errorf("對局歸檔失敗: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	progress := models.GameProgress{
		AffectionLevel:    record.Affection,
		LastChatTimestamp: s.clock.Now(),
	}
	if err := s.accounts.UpdateProgress(ctx, accountID, progress); err != nil {
		s.logger.Warnf("更新帳號進度失敗: %v", err)
	}
}

func (s *GameService) session(accountID string) (*game.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, ok := s.sessions[accountID]
	if !ok {
		return nil, apperrors.NewNotFoundError("沒有進行中的對局", nil)
	}
	return session, nil
}

// Snapshot 返回账号当前对局的状态视图
func (s *GameService) Snapshot(accountID string) (*game.Snapshot, error) {
	session, err := s.session(accountID)
	if err != nil {
		return nil, err
	}
	snapshot := session.Snapshot()
	return &snapshot, nil
}

// SessionID 返回账号当前对局的标识，供通知订阅使用
func (s *GameService) SessionID(accountID string) (string, error) {
	session, err := s.session(accountID)
	if err != nil {
		return "", err
	}
	return session.ID(), nil
}

// CreateCharacter 生成约会对象并让对局进入聊天阶段
func (s *GameService) CreateCharacter(ctx context.Context, accountID string, attrs models.CharacterAttributes) (*game.Snapshot, error) {
	session, err := s.session(accountID)
	if err != nil {
		return nil, err
	}

	character := s.persona.GenerateCharacter(ctx, attrs)
	if err := session.StartChat(character); err != nil {
		return nil, err
	}

	snapshot := session.Snapshot()
	return &snapshot, nil
}

// Chat 转发一条玩家消息到当前对局
func (s *GameService) Chat(ctx context.Context, accountID, text string) (*game.Snapshot, error) {
	session, err := s.session(accountID)
	if err != nil {
		return nil, err
	}
	if _, err := session.Chat(ctx, text); err != nil {
		return nil, err
	}
	snapshot := session.Snapshot()
	return &snapshot, nil
}

// SubmitDatePlan 提交约会行程
func (s *GameService) SubmitDatePlan(ctx context.Context, accountID string, selection game.DatePlanSelection) (*game.EventVerdict, error) {
	session, err := s.session(accountID)
	if err != nil {
		return nil, err
	}
	return session.SubmitDatePlan(ctx, selection)
}

// SubmitOutfit 提交穿搭选择
func (s *GameService) SubmitOutfit(ctx context.Context, accountID string, selection game.OutfitSelection) (*game.EventVerdict, error) {
	session, err := s.session(accountID)
	if err != nil {
		return nil, err
	}
	return session.SubmitOutfit(ctx, selection)
}

// PreviewOutfit 生成穿搭预览图，不影响对局状态
func (s *GameService) PreviewOutfit(ctx context.Context, accountID string, selection game.OutfitSelection) (string, error) {
	session, err := s.session(accountID)
	if err != nil {
		return "", err
	}

	gender := ""
	if snapshot := session.Snapshot(); snapshot.Character != nil {
		gender = snapshot.Character.Gender
	}
	description, err := selection.Describe(gender)
	if err != nil {
		return "", err
	}
	return s.persona.GenerateOutfitPreview(ctx, description), nil
}

// GiftOptions 返回当前对局的脱敏礼物选项
func (s *GameService) GiftOptions(accountID string) ([]models.GiftOptionView, bool, error) {
	session, err := s.session(accountID)
	if err != nil {
		return nil, false, err
	}
	options, ready := session.GiftOptions()
	return options, ready, nil
}

// ChooseGift 结算告白礼物选择
func (s *GameService) ChooseGift(accountID, giftID string) (*game.Snapshot, error) {
	session, err := s.session(accountID)
	if err != nil {
		return nil, err
	}
	if err := session.ChooseGift(giftID); err != nil {
		return nil, err
	}
	snapshot := session.Snapshot()
	return &snapshot, nil
}
