// internal/services/profile_service.go
package services

import (
	"path/filepath"

	apperrors "github.com/lovesim/lovesim/internal/errors"
	"github.com/lovesim/lovesim/internal/models"
	"github.com/lovesim/lovesim/internal/storage"
	"github.com/lovesim/lovesim/internal/utils"
)

const profileFilename = "profile.json"

// ProfileService 管理玩家个人档案的持久化
type ProfileService struct {
	storage *storage.FileStorage
	logger  *utils.Logger
}

// NewProfileService 创建档案服务
func NewProfileService(fileStorage *storage.FileStorage) *ProfileService {
	return &ProfileService{
		storage: fileStorage,
		logger:  utils.GetLogger(),
	}
}

func profileDir(accountID string) string {
	return filepath.Join("users", accountID)
}

// GetProfile 读取玩家档案
// 文件缺失或损坏时返回空档案，不报错
func (s *ProfileService) GetProfile(accountID string) models.UserProfile {
	var profile models.UserProfile
	if err := s.storage.LoadJSONFile(profileDir(accountID), profileFilename, &profile); err != nil {
		if s.storage.FileExists(profileDir(accountID), profileFilename) {
			s.logger.Warnf("玩家檔案損壞，視為空檔案: %v", err)
		}
		return models.UserProfile{}
	}
	return profile
}

// SaveProfile 保存玩家档案，必填字段缺失时拒绝
func (s *ProfileService) SaveProfile(accountID string, profile models.UserProfile) error {
	if !profile.IsComplete() {
		return apperrors.NewValidationError("暱稱和興趣為必填欄位", nil)
	}
	if err := s.storage.SaveJSONFile(profileDir(accountID), profileFilename, profile); err != nil {
		return apperrors.NewProcessingError("保存玩家檔案失敗", err)
	}
	return nil
}
