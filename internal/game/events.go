package game

import (
	"time"

	"go.uber.org/zap"
)

// EventType 引擎通知类型
type EventType string

// 通知类型定义
const (
	EventGameStarted           EventType = "game_started"
	EventFirstTurnStarted      EventType = "first_turn_started"
	EventTurnStarted           EventType = "turn_started"
	EventTurnEnded             EventType = "turn_ended"
	EventCardPlaced            EventType = "card_placed"
	EventCardDiscarded         EventType = "card_discarded"
	EventLinesCompleted        EventType = "lines_completed"
	EventLineResolved          EventType = "line_resolved"
	EventForcedRefresh         EventType = "forced_refresh_occurred"
	EventPlayerEliminated      EventType = "player_eliminated"
	EventDeckEmptyJudgment     EventType = "deck_empty_score_judgment"
	EventHandDepletionVictory  EventType = "hand_depletion_victory"
	EventGameEnded             EventType = "game_ended"
)

// Event 引擎通知
type Event struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// 各通知的负载结构

// GameStartedPayload 对局开始
type GameStartedPayload struct {
	Players     [2]string `json:"players"`
	FirstPlayer int       `json:"first_player"`
	Mode        GameMode  `json:"mode"`
	DeckSize    int       `json:"deck_size"`
}

// TurnPayload 回合开始/结束
type TurnPayload struct {
	Player string    `json:"player"`
	Phase  GamePhase `json:"phase"`
}

// CardPlacedPayload 卡牌放置
type CardPlacedPayload struct {
	Player string `json:"player"`
	Card   Card   `json:"card"`
	Slot   int    `json:"slot"`
}

// CardDiscardedPayload 卡牌弃置
type CardDiscardedPayload struct {
	Card   Card   `json:"card"`
	Slot   int    `json:"slot,omitempty"`   // 来自盘面时的格子编号
	Source string `json:"source"`           // board_discard / forced_refresh / effect
	Player string `json:"player,omitempty"` // 触发方（若有）
}

// LinesCompletedPayload 判定线完成
type LinesCompletedPayload struct {
	Player string          `json:"player"`
	Lines  []CompletedLine `json:"lines"`
}

// LineResolvedPayload 判定线结算
type LineResolvedPayload struct {
	Player     string          `json:"player"`
	Line       CompletedLine   `json:"line"`
	Resolution *LineResolution `json:"resolution"`
}

// ForcedRefreshPayload 强制刷新
type ForcedRefreshPayload struct {
	Slot     int   `json:"slot"`
	NewCard  Card  `json:"new_card"`
	Removed  *Card `json:"removed,omitempty"`
}

// PlayerEliminatedPayload 玩家出局
type PlayerEliminatedPayload struct {
	Player string `json:"player"`
}

// DeckEmptyJudgmentPayload 牌库耗尽判定
type DeckEmptyJudgmentPayload struct {
	Scores  [2]int    `json:"scores"`
	Players [2]string `json:"players"`
	Winner  string    `json:"winner,omitempty"` // 平局时为空
	Reason  WinReason `json:"reason"`
}

// HandDepletionPayload 手牌耗尽导致的胜负
type HandDepletionPayload struct {
	DepletedPlayer string `json:"depleted_player"`
	Winner         string `json:"winner"`
}

// GameEndedPayload 对局结束
type GameEndedPayload struct {
	Winner string    `json:"winner,omitempty"` // 平局时为空
	Reason WinReason `json:"reason"`
	Turns  int       `json:"turns"`
}

// EventHandler 通知处理函数
type EventHandler func(Event)

// EventBus 引擎通知总线
// 同步分发，投递顺序等于注册顺序；单个处理函数的panic被隔离并记录，
// 不会中断后续处理函数，也不会破坏引擎状态。
type EventBus struct {
	handlers []EventHandler
	logger   *zap.Logger
}

// NewEventBus 创建通知总线
func NewEventBus(logger *zap.Logger) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{logger: logger}
}

// Subscribe 注册通知处理函数
func (b *EventBus) Subscribe(handler EventHandler) {
	if handler == nil {
		return
	}
	b.handlers = append(b.handlers, handler)
}

// Publish 发布通知
func (b *EventBus) Publish(eventType EventType, payload interface{}) {
	event := Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	for _, handler := range b.handlers {
		b.dispatch(handler, event)
	}
}

// dispatch 调用单个处理函数并隔离panic
func (b *EventBus) dispatch(handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("通知处理函数panic",
				zap.String("event", string(event.Type)),
				zap.Any("panic", r))
		}
	}()
	handler(event)
}
