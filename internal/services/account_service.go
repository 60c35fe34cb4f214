// internal/services/account_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lovesim/lovesim/internal/auth"
	apperrors "github.com/lovesim/lovesim/internal/errors"
	"github.com/lovesim/lovesim/internal/models"
	"github.com/lovesim/lovesim/internal/storage"
	"github.com/lovesim/lovesim/internal/utils"
)

// 令牌有效期
const tokenExpiration = 7 * 24 * time.Hour

// LoginResult 登录结果
type LoginResult struct {
	Account   *models.Account `json:"user"`
	Token     string          `json:"token"`
	IsNewUser bool            `json:"is_new_user"`
}

// AccountService 负责账号注册、登录和令牌签发
type AccountService struct {
	store       *storage.AccountStore
	tokenConfig *auth.TokenConfig
	logger      *utils.Logger
}

// NewAccountService 创建账号服务
func NewAccountService(store *storage.AccountStore, secret []byte) *AccountService {
	return &AccountService{
		store: store,
		tokenConfig: &auth.TokenConfig{
			Secret:     secret,
			Expiration: tokenExpiration,
		},
		logger: utils.GetLogger(),
	}
}

// LoginOrRegister 注册与登录一体化
// 用户名不存在时自动注册，存在时校验密码，密码错误不签发令牌
func (s *AccountService) LoginOrRegister(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("帳號密碼不能為空", nil)
	}

	account, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.NewProcessingError("查詢帳號失敗", err)
	}

	isNewUser := false
	now := time.Now()

	if account == nil {
		isNewUser = true
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, apperrors.NewProcessingError("密碼加密失敗", err)
		}

		account = &models.Account{
			ID:           uuid.NewString(),
			Username:     username,
			PasswordHash: hash,
			CreatedAt:    now,
			LastLogin:    now,
		}
		if err := s.store.Create(ctx, account); err != nil {
			return nil, apperrors.NewProcessingError("建立帳號失敗", err)
		}
		s.logger.Infof("新帳號註冊: %s", username)
	} else {
		if !auth.CheckPassword(account.PasswordHash, password) {
			return nil, apperrors.NewCredentialError("密碼錯誤", nil)
		}
		if err := s.store.UpdateLastLogin(ctx, account.ID, now); err != nil {
			s.logger.Warnf("更新登入時間失敗: %v", err)
		}
		account.LastLogin = now
	}

	token, err := auth.GenerateToken(account.ID, account.Username, s.tokenConfig)
	if err != nil {
		return nil, apperrors.NewProcessingError("簽發令牌失敗", err)
	}

	return &LoginResult{
		Account:   account,
		Token:     token,
		IsNewUser: isNewUser,
	}, nil
}

// ParseToken 校验并解析令牌
func (s *AccountService) ParseToken(token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.tokenConfig)
	if err != nil {
		return nil, apperrors.NewCredentialError("無效的令牌", err)
	}
	return claims, nil
}

// UpdateProgress 把对局结果写回账号的长期进度
func (s *AccountService) UpdateProgress(ctx context.Context, accountID string, progress models.GameProgress) error {
	if err := s.store.UpdateProgress(ctx, accountID, progress); err != nil {
		return apperrors.NewProcessingError("更新遊戲進度失敗", err)
	}
	return nil
}
