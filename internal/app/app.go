// internal/app/app.go
package app

import (
	"fmt"

	"github.com/lovesim/lovesim/internal/auth"
	"github.com/lovesim/lovesim/internal/config"
	"github.com/lovesim/lovesim/internal/di"
	"github.com/lovesim/lovesim/internal/game"
	"github.com/lovesim/lovesim/internal/services"
	"github.com/lovesim/lovesim/internal/storage"
	"github.com/lovesim/lovesim/internal/utils"
)

// InitServices 按依赖顺序初始化所有服务并注册到容器
// 调用前必须先完成 config.InitConfig
func InitServices() error {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()

	fileStorage, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("初始化文件存儲失敗: %w", err)
	}

	accountStore, err := storage.OpenAccountStore(cfg.AccountDBPath)
	if err != nil {
		return fmt.Errorf("打開帳號數據庫失敗: %w", err)
	}
	container.Register("account_store", accountStore)

	secret, err := resolveJWTSecret(cfg)
	if err != nil {
		return err
	}

	llmService := services.NewLLMService()
	personaService := services.NewPersonaService(llmService)
	accountService := services.NewAccountService(accountStore, secret)
	profileService := services.NewProfileService(fileStorage)
	historyService := services.NewHistoryService(fileStorage)
	notifyService := services.NewNotifyService()
	gameService := services.NewGameService(
		profileService,
		personaService,
		historyService,
		accountService,
		notifyService,
		game.NewRealClock(),
	)

	container.Register("llm", llmService)
	container.Register("persona", personaService)
	container.Register("account", accountService)
	container.Register("profile", profileService)
	container.Register("history", historyService)
	container.Register("notify", notifyService)
	container.Register("game", gameService)

	return nil
}

// resolveJWTSecret 取得令牌签名密钥
// 未配置时生成随机密钥，重启后所有令牌失效
func resolveJWTSecret(cfg *config.AppConfig) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}

	secret, err := auth.GenerateSecureKey(32)
	if err != nil {
		return nil, fmt.Errorf("生成令牌密鑰失敗: %w", err)
	}
	utils.GetLogger().Warn("未設置 JWT_SECRET，使用隨機密鑰，重啟後所有登入狀態將失效", nil)
	return secret, nil
}

// CloseServices 释放需要显式关闭的资源
func CloseServices() {
	container := di.GetContainer()
	if store, ok := container.Get("account_store").(*storage.AccountStore); ok {
		if err := store.Close(); err != nil {
			utils.GetLogger().Warnf("關閉帳號數據庫失敗: %v", err)
		}
	}
}
