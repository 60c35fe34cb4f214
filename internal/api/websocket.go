// internal/api/websocket.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/lovesim/lovesim/internal/game"
	"github.com/lovesim/lovesim/internal/utils"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 前后端分开部署，放行所有来源
		return true
	},
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// GameWebSocket 把当前对局的状态通知实时推送给客户端
// 连接建立后先推送一次完整快照，之后按通知流增量推送
func (h *Handler) GameWebSocket(c *gin.Context) {
	accountID := h.accountID(c)

	sessionID, err := h.Games.SessionID(accountID)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.GetLogger().Warnf("WebSocket升級失敗: %v", err)
		return
	}

	notices := h.Notify.Subscribe(sessionID)
	defer func() {
		h.Notify.Unsubscribe(sessionID, notices)
		conn.Close()
	}()

	// 初始快照，让断线重连的客户端直接对齐状态
	if snapshot, err := h.Games.Snapshot(accountID); err == nil {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(game.Notice{Type: "snapshot", Payload: snapshot}); err != nil {
			return
		}
	}

	// 读循环只负责响应pong和探测断线
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case notice, open := <-notices:
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(notice); err != nil {
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
