package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wfunc/card-slot/internal/config"
	"github.com/wfunc/card-slot/internal/game"
	"github.com/wfunc/card-slot/internal/middleware"
	ws "github.com/wfunc/card-slot/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler WebSocket处理器
type WebSocketHandler struct {
	hub      *ws.Hub
	sessions *game.SessionManager
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(hub *ws.Hub, sessions *game.SessionManager, cfg *config.WebSocketConfig, logger *zap.Logger) *WebSocketHandler {
	readBuffer, writeBuffer := 1024, 1024
	compression := false
	if cfg != nil {
		if cfg.ReadBufferSize > 0 {
			readBuffer = cfg.ReadBufferSize
		}
		if cfg.WriteBufferSize > 0 {
			writeBuffer = cfg.WriteBufferSize
		}
		compression = cfg.EnableCompression
	}

	return &WebSocketHandler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    readBuffer,
			WriteBufferSize:   writeBuffer,
			EnableCompression: compression,
			CheckOrigin: func(r *http.Request) bool {
				// 在生产环境中应该检查Origin
				return true
			},
		},
		logger: logger,
	}
}

// GameWebSocket 对局WebSocket连接
// 连接时通过session_id查询参数（或令牌里的会话）绑定到对局，之后接收该对局的全部通知。
func (h *WebSocketHandler) GameWebSocket(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		if id, ok := middleware.GetSessionID(c); ok {
			sessionID = id
		}
	}

	// 只允许连接到存在的会话
	if sessionID != "" {
		if _, err := h.sessions.GetSession(sessionID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "SESSION_NOT_FOUND",
				"message": "游戏会话不存在",
			})
			return
		}
	}

	// 升级为WebSocket连接
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket升级失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}

	// 创建客户端
	client := ws.NewClient(h.hub, conn, sessionID)

	// 注册客户端
	h.hub.Register(client)

	// 启动读写协程
	go client.WritePump()
	go client.ReadPump()
}
