// internal/api/handlers.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lovesim/lovesim/internal/game"
	"github.com/lovesim/lovesim/internal/models"
	"github.com/lovesim/lovesim/internal/services"
)

// Handler API处理器
type Handler struct {
	Accounts *services.AccountService
	Profiles *services.ProfileService
	Games    *services.GameService
	History  *services.HistoryService
	LLM      *services.LLMService
	Notify   *services.NotifyService
	Response *ResponseHelper
}

// NewHandler 创建API处理器
func NewHandler(
	accounts *services.AccountService,
	profiles *services.ProfileService,
	games *services.GameService,
	history *services.HistoryService,
	llm *services.LLMService,
	notify *services.NotifyService,
) *Handler {
	return &Handler{
		Accounts: accounts,
		Profiles: profiles,
		Games:    games,
		History:  history,
		LLM:      llm,
		Notify:   notify,
		Response: NewResponseHelper(),
	}
}

func (h *Handler) accountID(c *gin.Context) string {
	return c.GetString(ContextAccountID)
}

// ========================================
// 认证
// ========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 登录，用户名不存在时自动注册
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "無效的請求格式", err.Error())
		return
	}

	result, err := h.Accounts.LoginOrRegister(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}

	if result.IsNewUser {
		h.Response.Created(c, result, "註冊成功")
		return
	}
	h.Response.Success(c, result, "登入成功")
}

// ========================================
// 玩家档案
// ========================================

// GetProfile 读取当前账号的玩家档案
// 档案尚未建立时返回404，客户端据此进入档案设定页
func (h *Handler) GetProfile(c *gin.Context) {
	profile := h.Profiles.GetProfile(h.accountID(c))
	if !profile.IsComplete() {
		h.Response.NotFound(c, "尚未建立個人檔案")
		return
	}
	h.Response.Success(c, profile)
}

// UpdateProfile 保存玩家档案
func (h *Handler) UpdateProfile(c *gin.Context) {
	var profile models.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		h.Response.BadRequest(c, "無效的請求格式", err.Error())
		return
	}

	if err := h.Profiles.SaveProfile(h.accountID(c), profile); err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Success(c, profile, "檔案已更新")
}

// ========================================
// 游戏选项目录
// ========================================

// GetOptions 返回角色属性、约会行程和穿搭槽位的候选目录
func (h *Handler) GetOptions(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"tags":    game.TagOptions,
		"dates":   game.DateOptions,
		"outfits": game.OutfitOptions,
	})
}

// ========================================
// 对局
// ========================================

// GetGame 返回当前对局的状态快照
func (h *Handler) GetGame(c *gin.Context) {
	snapshot, err := h.Games.Snapshot(h.accountID(c))
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Success(c, snapshot)
}

// StartGameRequest 开局请求
type StartGameRequest struct {
	Overwrite bool `json:"overwrite"`
}

// StartGame 开新的一局，已有进行中的对局时需要确认覆盖
func (h *Handler) StartGame(c *gin.Context) {
	var req StartGameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Response.BadRequest(c, "無效的請求格式", err.Error())
			return
		}
	}

	snapshot, err := h.Games.Start(h.accountID(c), req.Overwrite)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Created(c, snapshot, "新對局已建立")
}

// CreateCharacter 生成约会对象并开始聊天
func (h *Handler) CreateCharacter(c *gin.Context) {
	var attrs models.CharacterAttributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		h.Response.BadRequest(c, "無效的請求格式", err.Error())
		return
	}

	snapshot, err := h.Games.CreateCharacter(c.Request.Context(), h.accountID(c), attrs)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Success(c, snapshot, "角色已生成")
}

// ChatRequest 聊天请求
type ChatRequest struct {
	Text string `json:"text"`
}

// Chat 发送一条聊天消息
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "無效的請求格式", err.Error())
		return
	}

	snapshot, err := h.Games.Chat(c.Request.Context(), h.accountID(c), req.Text)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Success(c, snapshot)
}

// SubmitDatePlan 提交约会三段行程
func (h *Handler) SubmitDatePlan(c *gin.Context) {
	var selection game.DatePlanSelection
	if err := c.ShouldBindJSON(&selection); err != nil {
		h.Response.BadRequest(c, "無效的請求格式", err.Error())
		return
	}

	verdict, err := h.Games.SubmitDatePlan(c.Request.Context(), h.accountID(c), selection)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Success(c, verdict)
}

// PreviewOutfit 生成穿搭预览图
func (h *Handler) PreviewOutfit(c *gin.Context) {
	var selection game.OutfitSelection
	if err := c.ShouldBindJSON(&selection); err != nil {
		h.Response.BadRequest(c, "無效的請求格式", err.Error())
		return
	}

	url, err := h.Games.PreviewOutfit(c.Request.Context(), h.accountID(c), selection)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Success(c, gin.H{"image_url": url})
}

// SubmitOutfit 提交穿搭选择
func (h *Handler) SubmitOutfit(c *gin.Context) {
	var selection game.OutfitSelection
	if err := c.ShouldBindJSON(&selection); err != nil {
		h.Response.BadRequest(c, "無效的請求格式", err.Error())
		return
	}

	verdict, err := h.Games.SubmitOutfit(c.Request.Context(), h.accountID(c), selection)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Success(c, verdict)
}

// GetGiftOptions 返回脱敏后的礼物选项
func (h *Handler) GetGiftOptions(c *gin.Context) {
	options, ready, err := h.Games.GiftOptions(h.accountID(c))
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Success(c, gin.H{
		"ready":   ready,
		"options": options,
	})
}

// ChooseGiftRequest 礼物选择请求
type ChooseGiftRequest struct {
	GiftID string `json:"gift_id"`
}

// ChooseGift 结算告白礼物选择
func (h *Handler) ChooseGift(c *gin.Context) {
	var req ChooseGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "無效的請求格式", err.Error())
		return
	}

	snapshot, err := h.Games.ChooseGift(h.accountID(c), req.GiftID)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Success(c, snapshot)
}

// ========================================
// 对局归档
// ========================================

// ListHistory 返回当前账号的全部对局归档，最新在前
func (h *Handler) ListHistory(c *gin.Context) {
	h.Response.Success(c, h.History.List(h.accountID(c)))
}

// GetHistory 按ID返回一条归档记录
func (h *Handler) GetHistory(c *gin.Context) {
	record, err := h.History.Get(h.accountID(c), c.Param("id"))
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}
	h.Response.Success(c, record)
}

// ========================================
// LLM状态
// ========================================

// GetLLMStatus 返回内容生成服务的就绪状态
func (h *Handler) GetLLMStatus(c *gin.Context) {
	h.Response.Success(c, h.LLM.Status())
}
