package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/card-slot/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试套件设置测试数据库
func SetupTestDB(t *testing.T) *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.GameRecord{},
	)
	require.NoError(t, err)

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// CreateTestGameRecord 创建测试对局记录
func CreateTestGameRecord(sessionID string, winner int, reason string) *models.GameRecord {
	started := time.Now().Add(-5 * time.Minute)
	ended := time.Now()
	return &models.GameRecord{
		SessionID:    sessionID,
		Mode:         "cpu",
		Player1Name:  "玩家一",
		Player2Name:  "CPU",
		Winner:       winner,
		WinReason:    reason,
		TurnCount:    18,
		Player1Score: 12,
		Player2Score: 7,
		DeckRemain:   4,
		FinalBoard: models.JSONMap{
			"9": "BELL",
		},
		StartedAt: started,
		EndedAt:   &ended,
		Duration:  int(ended.Sub(started).Seconds()),
	}
}

// AssertGameRecord 验证对局记录
func AssertGameRecord(t *testing.T, expected, actual *models.GameRecord) {
	assert.Equal(t, expected.SessionID, actual.SessionID)
	assert.Equal(t, expected.Mode, actual.Mode)
	assert.Equal(t, expected.Winner, actual.Winner)
	assert.Equal(t, expected.WinReason, actual.WinReason)
	assert.Equal(t, expected.TurnCount, actual.TurnCount)
}
