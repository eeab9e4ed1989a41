package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/card-slot/internal/analytics"
	"github.com/wfunc/card-slot/internal/config"
	apperrors "github.com/wfunc/card-slot/internal/errors"
	"github.com/wfunc/card-slot/internal/game"
	"github.com/wfunc/card-slot/internal/middleware"
	"github.com/wfunc/card-slot/internal/utils"
	"go.uber.org/zap"
)

// GameHandler 对局处理器
type GameHandler struct {
	sessions *game.SessionManager
	jwt      *utils.JWTManager
	tracker  *analytics.Tracker
	rules    *config.GameConfig
	logger   *zap.Logger
}

// NewGameHandler 创建对局处理器
func NewGameHandler(sessions *game.SessionManager, jwt *utils.JWTManager, tracker *analytics.Tracker, rules *config.GameConfig, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		sessions: sessions,
		jwt:      jwt,
		tracker:  tracker,
		rules:    rules,
		logger:   logger,
	}
}

// CreateGameRequest 创建对局请求
type CreateGameRequest struct {
	Player1Name string `json:"player1_name" binding:"required,max=32"`
	Player2Name string `json:"player2_name" binding:"max=32"`
	Mode        string `json:"mode" binding:"required,oneof=solo cpu"`
	FirstPlayer int    `json:"first_player" binding:"omitempty,oneof=1 2"`
}

// CreateGameResponse 创建对局响应
type CreateGameResponse struct {
	SessionID string             `json:"session_id"`
	Token     string             `json:"token"`
	State     *game.GameSnapshot `json:"state"`
}

// StateResponse 对局状态响应
type StateResponse struct {
	SessionID string             `json:"session_id"`
	State     *game.GameSnapshot `json:"state"`
}

// PlaceRequest 放置卡牌请求
type PlaceRequest struct {
	CardID int `json:"card_id" binding:"min=0"`
	Slot   int `json:"slot" binding:"required,min=1,max=9"`
}

// ResolveRequest 结算判定线请求
type ResolveRequest struct {
	LineIndex     int   `json:"line_index" binding:"min=0,max=7"`
	SelectedSlots []int `json:"selected_slots"`
}

// ResolveResponse 结算判定线响应
type ResolveResponse struct {
	Resolution *game.LineResolution `json:"resolution"`
	State      *game.GameSnapshot   `json:"state"`
}

// DiscardRequest 弃置盘面卡牌请求
type DiscardRequest struct {
	Slot int `json:"slot" binding:"required,min=1,max=9"`
}

// CanPlaceResponse 落子预检响应
type CanPlaceResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// PlayAgainRequest 再来一局统计请求
type PlayAgainRequest struct {
	Mode string `json:"mode" binding:"required,oneof=solo cpu"`
}

// Create 创建对局
func (h *GameHandler) Create(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	mode := game.GameMode(req.Mode)
	player2 := req.Player2Name
	if mode == game.ModeCPU && player2 == "" {
		player2 = h.cpuPlayerName()
	}
	if mode == game.ModeSolo && player2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "双人模式需要玩家二名称"})
		return
	}

	session, err := h.sessions.CreateSession(req.Player1Name, player2, h.gameConfig(mode, req.FirstPlayer))
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.jwt.GenerateSessionToken(req.Player1Name, session.ID, req.Mode)
	if err != nil {
		h.logger.Error("签发会话令牌失败",
			zap.String("session_id", session.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "令牌签发失败"})
		return
	}

	snapshot, err := h.sessions.Snapshot(session.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateGameResponse{
		SessionID: session.ID,
		Token:     token,
		State:     snapshot,
	})
}

// Get 查询对局状态
func (h *GameHandler) Get(c *gin.Context) {
	sessionID := c.Param("id")
	snapshot, err := h.sessions.Snapshot(sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StateResponse{
		SessionID: sessionID,
		State:     snapshot,
	})
}

// Place 放置手牌
func (h *GameHandler) Place(c *gin.Context) {
	sessionID := c.Param("id")

	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if err := h.sessions.PlaceCard(sessionID, req.CardID, req.Slot); err != nil {
		h.respondError(c, err)
		return
	}

	h.respondState(c, sessionID)
}

// CanPlace 落子预检
func (h *GameHandler) CanPlace(c *gin.Context) {
	sessionID := c.Param("id")

	var query struct {
		CardID int `form:"card_id" binding:"min=0"`
		Slot   int `form:"slot" binding:"required,min=1,max=9"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	allowed, reason, err := h.sessions.CanPlaceCard(sessionID, query.Slot, query.CardID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CanPlaceResponse{
		Allowed: allowed,
		Reason:  string(reason),
	})
}

// Resolve 结算判定线
func (h *GameHandler) Resolve(c *gin.Context) {
	sessionID := c.Param("id")

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resolution, err := h.sessions.ResolveLine(sessionID, req.LineIndex, req.SelectedSlots)
	if err != nil {
		h.respondError(c, err)
		return
	}

	snapshot, err := h.sessions.Snapshot(sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResolveResponse{
		Resolution: resolution,
		State:      snapshot,
	})
}

// Discard 满盘弃置
func (h *GameHandler) Discard(c *gin.Context) {
	sessionID := c.Param("id")

	var req DiscardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if err := h.sessions.DiscardCardFromSlot(sessionID, req.Slot); err != nil {
		h.respondError(c, err)
		return
	}

	h.respondState(c, sessionID)
}

// EndTurn 结束回合
func (h *GameHandler) EndTurn(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.sessions.EndTurn(sessionID); err != nil {
		h.respondError(c, err)
		return
	}

	h.respondState(c, sessionID)
}

// Close 关闭对局会话
func (h *GameHandler) Close(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.sessions.CloseSession(sessionID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "会话已关闭"})
}

// PlayAgain 上报再来一局统计事件
func (h *GameHandler) PlayAgain(c *gin.Context) {
	var req PlayAgainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if h.tracker != nil {
		h.tracker.TrackPlayAgain(game.GameMode(req.Mode))
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// gameConfig 把配置的规则参数套用到新对局，未配置项由引擎补默认值
func (h *GameHandler) gameConfig(mode game.GameMode, firstPlayer int) game.Config {
	cfg := game.Config{
		Mode:        mode,
		FirstPlayer: firstPlayer,
	}
	if h.rules != nil {
		cfg.CPULevel = h.rules.CPU.Level
		cfg.HeavenlyHandRainbow7 = h.rules.HeavenlyHandRainbow7
		cfg.HeavenlyHandSilver3 = h.rules.HeavenlyHandSilver3
		cfg.InitialHandSize = h.rules.InitialHandSize
	}
	return cfg
}

// cpuPlayerName CPU座位的显示名称
func (h *GameHandler) cpuPlayerName() string {
	if h.rules != nil && h.rules.CPU.PlayerName != "" {
		return h.rules.CPU.PlayerName
	}
	return "CPU"
}

// respondState 返回最新对局状态
func (h *GameHandler) respondState(c *gin.Context, sessionID string) {
	snapshot, err := h.sessions.Snapshot(sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StateResponse{
		SessionID: sessionID,
		State:     snapshot,
	})
}

// respondError 将引擎错误映射为HTTP响应
func (h *GameHandler) respondError(c *gin.Context, err error) {
	appErr := mapGameError(err)

	playerName, _ := middleware.GetPlayerName(c)
	h.logger.Debug("对局命令被拒绝",
		zap.String("path", c.FullPath()),
		zap.String("player", playerName),
		zap.Error(err))

	c.JSON(appErr.HTTPStatus(), apperrors.NewErrorResponse(appErr, c.GetHeader("X-Request-ID")))
}

// mapGameError 引擎错误到应用错误码的映射
func mapGameError(err error) *apperrors.AppError {
	var rejected *game.PlacementRejectedError
	if errors.As(err, &rejected) {
		return apperrors.New(apperrors.ErrInvalidPlacement, string(rejected.Reason))
	}

	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return apperrors.New(apperrors.ErrSessionNotFound)
	case errors.Is(err, game.ErrSessionLimit):
		return apperrors.New(apperrors.ErrSessionLimit)
	case errors.Is(err, game.ErrCPUTurnInProgress):
		return apperrors.New(apperrors.ErrCPUTurnInProgress)
	case errors.Is(err, game.ErrGameNotStarted):
		return apperrors.New(apperrors.ErrGameNotStarted)
	case errors.Is(err, game.ErrGameEnded):
		return apperrors.New(apperrors.ErrGameAlreadyEnded)
	case errors.Is(err, game.ErrLinesPending):
		return apperrors.New(apperrors.ErrLinesPending)
	case errors.Is(err, game.ErrNoLinesPending), errors.Is(err, game.ErrLineNotPending):
		return apperrors.New(apperrors.ErrNoLinesPending, err.Error())
	case errors.Is(err, game.ErrNoPlacementYet):
		return apperrors.New(apperrors.ErrTurnNotComplete, err.Error())
	case errors.Is(err, game.ErrBoardNotFull), errors.Is(err, game.ErrCenterDiscard), errors.Is(err, game.ErrDiscardSlotEmpty):
		return apperrors.New(apperrors.ErrInvalidDiscard, err.Error())
	case errors.Is(err, game.ErrInvalidPlayerName), errors.Is(err, game.ErrInvalidFirstPlayer):
		return apperrors.New(apperrors.ErrInvalidParam, err.Error())
	default:
		return apperrors.Wrap(err, apperrors.ErrUnknown)
	}
}
