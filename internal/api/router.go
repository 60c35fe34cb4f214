// internal/api/router.go
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lovesim/lovesim/internal/config"
	"github.com/lovesim/lovesim/internal/di"
	"github.com/lovesim/lovesim/internal/services"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()

	accountService, ok := container.Get("account").(*services.AccountService)
	if !ok {
		return nil, fmt.Errorf("帳號服務未正確初始化")
	}

	profileService, ok := container.Get("profile").(*services.ProfileService)
	if !ok {
		return nil, fmt.Errorf("檔案服務未正確初始化")
	}

	gameService, ok := container.Get("game").(*services.GameService)
	if !ok {
		return nil, fmt.Errorf("對局服務未正確初始化")
	}

	historyService, ok := container.Get("history").(*services.HistoryService)
	if !ok {
		return nil, fmt.Errorf("歸檔服務未正確初始化")
	}

	llmService, ok := container.Get("llm").(*services.LLMService)
	if !ok {
		return nil, fmt.Errorf("LLM服務未正確初始化")
	}

	notifyService, ok := container.Get("notify").(*services.NotifyService)
	if !ok {
		return nil, fmt.Errorf("通知服務未正確初始化")
	}

	handler := NewHandler(
		accountService,
		profileService,
		gameService,
		historyService,
		llmService,
		notifyService,
	)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(corsMiddleware())
	r.Use(DefaultRateLimit())

	// 静态文件服务（前端打包产物）
	if cfg.StaticDir != "" {
		r.Static("/static", cfg.StaticDir)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticDir + "/index.html")
		})
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := AuthMiddleware(accountService)

	// WebSocket 支持
	r.GET("/ws/game", auth, handler.GameWebSocket)

	api := r.Group("/api")
	{
		api.POST("/auth/login", handler.Login)
		api.GET("/llm/status", handler.GetLLMStatus)
		api.GET("/options", handler.GetOptions)

		// 以下路由需要登入
		authed := api.Group("", auth)
		{
			authed.GET("/profile", handler.GetProfile)
			authed.PUT("/profile", handler.UpdateProfile)

			gameGroup := authed.Group("/game")
			{
				gameGroup.GET("", handler.GetGame)
				gameGroup.POST("/start", handler.StartGame)
				gameGroup.POST("/character", handler.CreateCharacter)
				gameGroup.POST("/chat", ChatRateLimit(), handler.Chat)
				gameGroup.POST("/date", handler.SubmitDatePlan)
				gameGroup.POST("/outfit/preview", handler.PreviewOutfit)
				gameGroup.POST("/outfit", handler.SubmitOutfit)
				gameGroup.GET("/gift", handler.GetGiftOptions)
				gameGroup.POST("/gift", handler.ChooseGift)
			}

			authed.GET("/history", handler.ListHistory)
			authed.GET("/history/:id", handler.GetHistory)
		}
	}

	return r, nil
}
