package analytics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/wfunc/card-slot/internal/game"
	"github.com/wfunc/card-slot/internal/models"
	"github.com/wfunc/card-slot/internal/repository"
	"go.uber.org/zap"
)

// 统计事件名
const (
	EventNewGameStarted = "new_game_started"
	EventGameCompleted  = "game_completed"
	EventPlayAgain      = "play_again"
)

// ProductionEnvironment 只有此环境才真正上报事件
const ProductionEnvironment = "production"

// SnapshotProvider 提供会话状态快照（由会话管理器实现）
type SnapshotProvider interface {
	Snapshot(sessionID string) (*game.GameSnapshot, error)
}

// Tracker 对局统计上报器
// 订阅引擎通知，上报统计事件并在对局结束时落库。
// 非生产环境只记录日志，不上报。
type Tracker struct {
	logger    *zap.Logger
	env       string
	records   repository.GameRecordRepository
	snapshots SnapshotProvider

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// sessionState 从通知流中累积的会话信息
type sessionState struct {
	mode      game.GameMode
	players   [2]string
	startedAt time.Time
}

// NewTracker 创建统计上报器
func NewTracker(logger *zap.Logger, env string, records repository.GameRecordRepository) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		logger:   logger,
		env:      env,
		records:  records,
		sessions: make(map[string]*sessionState),
	}
}

// BindSnapshots 绑定快照来源（会话管理器创建后调用）
func (t *Tracker) BindSnapshots(provider SnapshotProvider) {
	t.snapshots = provider
}

// IsProduction 是否为生产环境
func (t *Tracker) IsProduction() bool {
	return t.env == ProductionEnvironment
}

// SubscriberFor 为会话创建通知订阅者
func (t *Tracker) SubscriberFor(sessionID string) game.EventHandler {
	return func(event game.Event) {
		switch event.Type {
		case game.EventGameStarted:
			payload, ok := event.Payload.(game.GameStartedPayload)
			if !ok {
				return
			}
			t.onGameStarted(sessionID, payload)
		case game.EventGameEnded:
			payload, ok := event.Payload.(game.GameEndedPayload)
			if !ok {
				return
			}
			t.onGameEnded(sessionID, payload)
		}
	}
}

// onGameStarted 记录开局信息并上报
func (t *Tracker) onGameStarted(sessionID string, payload game.GameStartedPayload) {
	t.mu.Lock()
	t.sessions[sessionID] = &sessionState{
		mode:      payload.Mode,
		players:   payload.Players,
		startedAt: time.Now(),
	}
	t.mu.Unlock()

	t.SendEvent(EventNewGameStarted, map[string]interface{}{
		"event_category": "game",
		"event_label":    "new_game_button_clicked",
		"game_mode":      string(payload.Mode),
	})
}

// onGameEnded 上报对局完成事件并异步落库
// 通知在引擎锁内同步分发，落库前的快照读取必须放到goroutine里。
func (t *Tracker) onGameEnded(sessionID string, payload game.GameEndedPayload) {
	winner := payload.Winner
	if winner == "" {
		winner = "draw"
	}

	t.mu.Lock()
	state := t.sessions[sessionID]
	delete(t.sessions, sessionID)
	t.mu.Unlock()

	mode := game.ModeSolo
	if state != nil {
		mode = state.mode
	}

	t.SendEvent(EventGameCompleted, map[string]interface{}{
		"event_category": "game",
		"event_label":    "game_finished",
		"winner":         winner,
		"win_reason":     string(payload.Reason),
		"game_mode":      string(mode),
	})

	if t.records != nil {
		go t.persistRecord(sessionID, payload, state)
	}
}

// TrackPlayAgain 上报再来一局事件
func (t *Tracker) TrackPlayAgain(mode game.GameMode) {
	t.SendEvent(EventPlayAgain, map[string]interface{}{
		"event_category": "game",
		"event_label":    "play_again_button_clicked",
		"game_mode":      string(mode),
	})
}

// SendEvent 上报统计事件（非生产环境只记录日志）
func (t *Tracker) SendEvent(name string, params map[string]interface{}) {
	if !t.IsProduction() {
		t.logger.Debug("非生产环境，跳过统计事件",
			zap.String("event", name),
			zap.Any("params", params))
		return
	}

	t.logger.Info("统计事件",
		zap.String("event", name),
		zap.Any("params", params))
}

// persistRecord 将对局结果写入数据库
func (t *Tracker) persistRecord(sessionID string, payload game.GameEndedPayload, state *sessionState) {
	record := &models.GameRecord{
		SessionID: sessionID,
		WinReason: string(payload.Reason),
		TurnCount: payload.Turns,
	}

	startedAt := time.Now()
	if state != nil {
		record.Mode = string(state.mode)
		record.Player1Name = state.players[0]
		record.Player2Name = state.players[1]
		startedAt = state.startedAt
	}
	record.StartedAt = startedAt

	ended := time.Now()
	record.EndedAt = &ended
	record.Duration = int(ended.Sub(startedAt).Seconds())

	switch payload.Winner {
	case "":
		record.Winner = 0
	case record.Player1Name:
		record.Winner = 1
	default:
		record.Winner = 2
	}

	// 通知分发结束后引擎锁已释放，可以安全读取快照
	if t.snapshots != nil {
		if snap, err := t.snapshots.Snapshot(sessionID); err == nil {
			record.Player1Score = snap.Players[0].Score
			record.Player2Score = snap.Players[1].Score
			record.DeckRemain = snap.DeckSize
			record.FinalBoard = boardToJSON(snap.Board)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := t.records.Create(ctx, record); err != nil {
		t.logger.Error("对局记录写入失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}

	t.logger.Info("对局记录已保存",
		zap.String("session_id", sessionID),
		zap.Int("winner", record.Winner),
		zap.String("win_reason", record.WinReason))
}

// boardToJSON 将盘面快照转成可落库的JSON结构
func boardToJSON(board map[int]game.Card) models.JSONMap {
	if len(board) == 0 {
		return nil
	}
	out := make(models.JSONMap, len(board))
	for slot, card := range board {
		out[strconv.Itoa(slot)] = string(card.Symbol)
	}
	return out
}
