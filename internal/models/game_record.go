package models

import (
	"time"
)

// GameRecord 对局记录表（对局结束时写入）
type GameRecord struct {
	BaseModel
	SessionID    string     `gorm:"uniqueIndex;size:64;not null" json:"session_id"`
	Mode         string     `gorm:"size:20;not null" json:"mode"` // solo, cpu
	Player1Name  string     `gorm:"size:100" json:"player1_name"`
	Player2Name  string     `gorm:"size:100" json:"player2_name"`
	Winner       int        `gorm:"default:0" json:"winner"` // 0=平局, 1/2=获胜玩家
	WinReason    string     `gorm:"size:40" json:"win_reason"`
	TurnCount    int        `gorm:"default:0" json:"turn_count"`
	Player1Score int        `gorm:"default:0" json:"player1_score"`
	Player2Score int        `gorm:"default:0" json:"player2_score"`
	DeckRemain   int        `gorm:"default:0" json:"deck_remain"`
	FinalBoard   JSONMap    `gorm:"type:json" json:"final_board"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	Duration     int        `json:"duration"` // 秒
}

// TableName 指定表名
func (GameRecord) TableName() string {
	return "game_records"
}
