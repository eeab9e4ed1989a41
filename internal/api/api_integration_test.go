package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/card-slot/internal/game"
	"github.com/wfunc/card-slot/internal/models"
	"github.com/wfunc/card-slot/internal/repository"
	"github.com/wfunc/card-slot/internal/utils"
	ws "github.com/wfunc/card-slot/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestRouter 搭建完整路由器（内存数据库，无CPU对手）
func setupTestRouter(t *testing.T) *Router {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GameRecord{}))

	sessions := game.NewSessionManager(game.SessionManagerConfig{
		Logger: zap.NewNop(),
	})

	return NewRouter(Deps{
		DB:       db,
		Sessions: sessions,
		Hub:      ws.NewHub(zap.NewNop()),
		JWT:      utils.NewJWTManager("test-secret", time.Hour),
		Records:  repository.NewGameRecordRepository(db),
		Logger:   zap.NewNop(),
	})
}

// doJSON 发送JSON请求
func doJSON(router *Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, req)
	return w
}

// createGame 创建对局并解析响应
func createGame(t *testing.T, router *Router) *CreateGameResponse {
	w := doJSON(router, "POST", "/api/v1/games", "", CreateGameRequest{
		Player1Name: "玩家一",
		Player2Name: "玩家二",
		Mode:        "solo",
		FirstPlayer: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CreateGameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	require.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.State)
	return &resp
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestCreateGame(t *testing.T) {
	router := setupTestRouter(t)

	resp := createGame(t, router)
	assert.Equal(t, game.PhaseFirstTurn, resp.State.Phase)
	assert.Equal(t, 1, resp.State.CurrentPlayer)
	assert.Len(t, resp.State.Players[0].Hand, resp.State.Players[0].HandSize)

	// 参数校验
	w := doJSON(router, "POST", "/api/v1/games", "", map[string]string{"mode": "cpu"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 双人模式缺少玩家二
	w = doJSON(router, "POST", "/api/v1/games", "", CreateGameRequest{
		Player1Name: "玩家一",
		Mode:        "solo",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGameCommands_RequireToken(t *testing.T) {
	router := setupTestRouter(t)
	created := createGame(t, router)

	// 无令牌
	w := doJSON(router, "GET", "/api/v1/games/"+created.SessionID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 其他会话的令牌
	other := createGame(t, router)
	w = doJSON(router, "GET", "/api/v1/games/"+created.SessionID, other.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 正确令牌
	w = doJSON(router, "GET", "/api/v1/games/"+created.SessionID, created.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlaceCard_FirstTurn(t *testing.T) {
	router := setupTestRouter(t)
	created := createGame(t, router)

	hand := created.State.Players[0].Hand
	require.NotEmpty(t, hand)
	cardID := hand[0].ID

	// 预检：首回合只能放中央格
	w := doJSON(router, "GET",
		"/api/v1/games/"+created.SessionID+"/can-place?card_id="+itoa(cardID)+"&slot=3",
		created.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var canPlace CanPlaceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &canPlace))
	assert.False(t, canPlace.Allowed)
	assert.Equal(t, string(game.RejectCenterOnly), canPlace.Reason)

	// 非中央格放置被拒绝
	w = doJSON(router, "POST", "/api/v1/games/"+created.SessionID+"/place",
		created.Token, PlaceRequest{CardID: cardID, Slot: 3})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 找一张能放中央格的牌（首回合禁止RAINBOW_7和SILVER_3）
	placed := false
	for _, card := range hand {
		if card.Symbol == game.SymbolRainbow7 || card.Symbol == game.SymbolSilver3 {
			continue
		}
		w = doJSON(router, "POST", "/api/v1/games/"+created.SessionID+"/place",
			created.Token, PlaceRequest{CardID: card.ID, Slot: game.CenterSlot})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		placed = true
		break
	}
	require.True(t, placed, "起始手牌应当至少有一张可放中央格的牌")

	var state StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.State.PlacedThisTurn)
	assert.NotEmpty(t, state.State.Board)

	// 重复放置被拒绝
	w = doJSON(router, "POST", "/api/v1/games/"+created.SessionID+"/place",
		created.Token, PlaceRequest{CardID: hand[1].ID, Slot: 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 结束回合
	w = doJSON(router, "POST", "/api/v1/games/"+created.SessionID+"/end-turn",
		created.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 2, state.State.CurrentPlayer)
}

func TestEndTurn_WithoutPlacement(t *testing.T) {
	router := setupTestRouter(t)
	created := createGame(t, router)

	w := doJSON(router, "POST", "/api/v1/games/"+created.SessionID+"/end-turn",
		created.Token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCloseSession(t *testing.T) {
	router := setupTestRouter(t)
	created := createGame(t, router)

	w := doJSON(router, "DELETE", "/api/v1/games/"+created.SessionID, created.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 关闭后查询返回404
	w = doJSON(router, "GET", "/api/v1/games/"+created.SessionID, created.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecords(t *testing.T) {
	router := setupTestRouter(t)

	// 空记录列表
	w := doJSON(router, "GET", "/api/v1/records", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(0), list.Total)

	// 统计
	w = doJSON(router, "GET", "/api/v1/records/stats", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 不存在的记录
	w = doJSON(router, "GET", "/api/v1/records/no-such-session", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlayAgainEvent(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, "POST", "/api/v1/events/play-again", "", PlayAgainRequest{Mode: "cpu"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "POST", "/api/v1/events/play-again", "", map[string]string{"mode": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotFoundRoute(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, "GET", "/api/v1/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
