// internal/services/history_service.go
package services

import (
	apperrors "github.com/lovesim/lovesim/internal/errors"
	"github.com/lovesim/lovesim/internal/models"
	"github.com/lovesim/lovesim/internal/storage"
	"github.com/lovesim/lovesim/internal/utils"
)

const sessionsFilename = "sessions.json"

// HistoryService 管理已结束对局的归档
// 归档记录一经写入不再修改
type HistoryService struct {
	storage *storage.FileStorage
	logger  *utils.Logger
}

// NewHistoryService 创建归档服务
func NewHistoryService(fileStorage *storage.FileStorage) *HistoryService {
	return &HistoryService{
		storage: fileStorage,
		logger:  utils.GetLogger(),
	}
}

// List 返回玩家的全部对局归档，最新的在最前
// 文件缺失或损坏时返回空列表
func (s *HistoryService) List(accountID string) []models.GameSession {
	var sessions []models.GameSession
	if err := s.storage.LoadJSONFile(profileDir(accountID), sessionsFilename, &sessions); err != nil {
		if s.storage.FileExists(profileDir(accountID), sessionsFilename) {
			s.logger.Warnf("對局歸檔損壞，視為空列表: %v", err)
		}
		return []models.GameSession{}
	}
	if sessions == nil {
		sessions = []models.GameSession{}
	}
	return sessions
}

// Get 按ID查找一条归档记录
func (s *HistoryService) Get(accountID, sessionID string) (*models.GameSession, error) {
	for _, session := range s.List(accountID) {
		if session.ID == sessionID {
			record := session.Clone()
			return &record, nil
		}
	}
	return nil, apperrors.NewNotFoundError("找不到指定的對局記錄", nil)
}

// Archive 把已结束的对局插入归档列表头部
func (s *HistoryService) Archive(accountID string, record models.GameSession) error {
	if !record.IsFinished {
		return apperrors.NewValidationError("只能歸檔已結束的對局", nil)
	}

	sessions := s.List(accountID)
	sessions = append([]models.GameSession{record.Clone()}, sessions...)

	if err := s.storage.SaveJSONFile(profileDir(accountID), sessionsFilename, sessions); err != nil {
		return apperrors.NewProcessingError("保存對局歸檔失敗", err)
	}
	return nil
}
