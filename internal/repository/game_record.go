package repository

import (
	"context"
	"time"

	"github.com/wfunc/card-slot/internal/models"
	"gorm.io/gorm"
)

// GameRecordRepository 对局记录仓储接口
type GameRecordRepository interface {
	BaseRepository
	Create(ctx context.Context, record *models.GameRecord) error
	FindByID(ctx context.Context, id uint) (*models.GameRecord, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.GameRecord, error)
	ListRecent(ctx context.Context, p *Pagination) ([]*models.GameRecord, error)
	ListByMode(ctx context.Context, mode string, p *Pagination) ([]*models.GameRecord, error)
	GetStatistics(ctx context.Context, startTime, endTime time.Time) (*GameStatistics, error)
}

// GameStatistics 对局统计
type GameStatistics struct {
	TotalGames     int64            `json:"total_games"`
	CPUGames       int64            `json:"cpu_games"`
	SoloGames      int64            `json:"solo_games"`
	Draws          int64            `json:"draws"`
	AverageTurns   float64          `json:"average_turns"`
	WinsByReason   map[string]int64 `json:"wins_by_reason"`
	MaxTurnCount   int              `json:"max_turn_count"`
	AverageSeconds float64          `json:"average_seconds"`
}

// gameRecordRepo 对局记录仓储实现
type gameRecordRepo struct {
	*BaseRepo
}

// NewGameRecordRepository 创建对局记录仓储
func NewGameRecordRepository(db *gorm.DB) GameRecordRepository {
	return &gameRecordRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建对局记录
func (r *gameRecordRepo) Create(ctx context.Context, record *models.GameRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID 根据ID查找
func (r *gameRecordRepo) FindByID(ctx context.Context, id uint) (*models.GameRecord, error) {
	var record models.GameRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindBySessionID 根据会话ID查找
func (r *gameRecordRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.GameRecord, error) {
	var record models.GameRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRecent 查询最近的对局记录
func (r *gameRecordRepo) ListRecent(ctx context.Context, p *Pagination) ([]*models.GameRecord, error) {
	var records []*models.GameRecord

	// 查询总数
	r.db.WithContext(ctx).
		Model(&models.GameRecord{}).
		Count(&p.Total)

	// 查询数据
	err := r.db.WithContext(ctx).
		Order("ended_at desc").
		Scopes(Paginate(p)).
		Find(&records).Error

	return records, err
}

// ListByMode 按游戏模式查询
func (r *gameRecordRepo) ListByMode(ctx context.Context, mode string, p *Pagination) ([]*models.GameRecord, error) {
	var records []*models.GameRecord

	// 查询总数
	r.db.WithContext(ctx).
		Model(&models.GameRecord{}).
		Where("mode = ?", mode).
		Count(&p.Total)

	// 查询数据
	err := r.db.WithContext(ctx).
		Where("mode = ?", mode).
		Order("ended_at desc").
		Scopes(Paginate(p)).
		Find(&records).Error

	return records, err
}

// GetStatistics 获取时间段内的对局统计
func (r *gameRecordRepo) GetStatistics(ctx context.Context, startTime, endTime time.Time) (*GameStatistics, error) {
	stats := &GameStatistics{
		WinsByReason: make(map[string]int64),
	}

	base := r.db.WithContext(ctx).
		Model(&models.GameRecord{}).
		Where("ended_at BETWEEN ? AND ?", startTime, endTime)

	// 总对局数
	if err := base.Session(&gorm.Session{}).Count(&stats.TotalGames).Error; err != nil {
		return nil, err
	}

	// 按模式统计
	base.Session(&gorm.Session{}).Where("mode = ?", "cpu").Count(&stats.CPUGames)
	base.Session(&gorm.Session{}).Where("mode = ?", "solo").Count(&stats.SoloGames)

	// 平局数
	base.Session(&gorm.Session{}).Where("winner = ?", 0).Count(&stats.Draws)

	// 回合统计
	var turnStats struct {
		AvgTurns float64
		MaxTurns int
		AvgSecs  float64
	}
	err := base.Session(&gorm.Session{}).
		Select("COALESCE(AVG(turn_count), 0) as avg_turns, COALESCE(MAX(turn_count), 0) as max_turns, COALESCE(AVG(duration), 0) as avg_secs").
		Scan(&turnStats).Error
	if err != nil {
		return nil, err
	}
	stats.AverageTurns = turnStats.AvgTurns
	stats.MaxTurnCount = turnStats.MaxTurns
	stats.AverageSeconds = turnStats.AvgSecs

	// 按获胜原因分组
	var reasonRows []struct {
		WinReason string
		Count     int64
	}
	err = base.Session(&gorm.Session{}).
		Select("win_reason, COUNT(*) as count").
		Where("winner > 0").
		Group("win_reason").
		Scan(&reasonRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range reasonRows {
		stats.WinsByReason[row.WinReason] = row.Count
	}

	return stats, nil
}
