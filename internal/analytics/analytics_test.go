package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/card-slot/internal/game"
	"github.com/wfunc/card-slot/internal/models"
	"github.com/wfunc/card-slot/internal/repository"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) repository.GameRecordRepository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GameRecord{}))
	return repository.NewGameRecordRepository(db)
}

// 非生产环境不上报，只记录调试日志
func TestTracker_SendEvent_NonProduction(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tracker := NewTracker(zap.New(core), "development", nil)

	tracker.SendEvent(EventNewGameStarted, map[string]interface{}{"game_mode": "cpu"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "跳过统计事件")
	assert.False(t, tracker.IsProduction())
}

// 生产环境正常上报
func TestTracker_SendEvent_Production(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tracker := NewTracker(zap.New(core), ProductionEnvironment, nil)

	tracker.SendEvent(EventPlayAgain, map[string]interface{}{"game_mode": "solo"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "统计事件", entries[0].Message)
	assert.True(t, tracker.IsProduction())
}

// 对局结束时写入对局记录
func TestTracker_PersistsGameRecord(t *testing.T) {
	repo := newTestRepo(t)
	tracker := NewTracker(zap.NewNop(), "development", repo)

	sessionID := "session-analytics-1"
	handler := tracker.SubscriberFor(sessionID)

	handler(game.Event{
		Type: game.EventGameStarted,
		Payload: game.GameStartedPayload{
			Players:     [2]string{"玩家一", "CPU"},
			FirstPlayer: 1,
			Mode:        game.ModeCPU,
			DeckSize:    43,
		},
	})

	handler(game.Event{
		Type: game.EventGameEnded,
		Payload: game.GameEndedPayload{
			Winner: "CPU",
			Reason: game.WinReasonRainbow7Line,
			Turns:  12,
		},
	})

	// 落库在goroutine中执行，轮询等待
	ctx := context.Background()
	var record *models.GameRecord
	require.Eventually(t, func() bool {
		found, err := repo.FindBySessionID(ctx, sessionID)
		if err != nil {
			return false
		}
		record = found
		return true
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "cpu", record.Mode)
	assert.Equal(t, "玩家一", record.Player1Name)
	assert.Equal(t, "CPU", record.Player2Name)
	assert.Equal(t, 2, record.Winner)
	assert.Equal(t, string(game.WinReasonRainbow7Line), record.WinReason)
	assert.Equal(t, 12, record.TurnCount)
	assert.NotNil(t, record.EndedAt)
}

// 平局记录Winner为0
func TestTracker_PersistsDraw(t *testing.T) {
	repo := newTestRepo(t)
	tracker := NewTracker(zap.NewNop(), "development", repo)

	sessionID := "session-analytics-draw"
	handler := tracker.SubscriberFor(sessionID)

	handler(game.Event{
		Type: game.EventGameStarted,
		Payload: game.GameStartedPayload{
			Players: [2]string{"玩家一", "玩家二"},
			Mode:    game.ModeSolo,
		},
	})
	handler(game.Event{
		Type: game.EventGameEnded,
		Payload: game.GameEndedPayload{
			Winner: "",
			Reason: game.WinReasonDeckEmptyDraw,
			Turns:  30,
		},
	})

	ctx := context.Background()
	require.Eventually(t, func() bool {
		record, err := repo.FindBySessionID(ctx, sessionID)
		return err == nil && record.Winner == 0
	}, 2*time.Second, 10*time.Millisecond)
}
