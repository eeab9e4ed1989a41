package game

// PlayerSnapshot 玩家状态快照
type PlayerSnapshot struct {
	Name     string `json:"name"`
	Hand     []Card `json:"hand"`
	HandSize int    `json:"hand_size"`
	Score    int    `json:"score"`
	Active   bool   `json:"active"`
}

// GameSnapshot 对局状态快照（只读副本，返回后与引擎状态脱钩）
type GameSnapshot struct {
	Phase          GamePhase          `json:"phase"`
	Mode           GameMode           `json:"mode"`
	CurrentPlayer  int                `json:"current_player"` // 1或2
	Players        [2]PlayerSnapshot  `json:"players"`
	Board          map[int]Card       `json:"board"`
	DeckSize       int                `json:"deck_size"`
	DiscardSize    int                `json:"discard_size"`
	DiscardCounts  map[Symbol]int     `json:"discard_counts"`
	PendingLines   []CompletedLine    `json:"pending_lines,omitempty"`
	PlacedThisTurn bool               `json:"placed_this_turn"`
	TurnCount      int                `json:"turn_count"`
	Winner         string             `json:"winner,omitempty"`
	WinReason      WinReason          `json:"win_reason,omitempty"`
}

// Snapshot 当前对局状态的完整快照
func (m *Manager) Snapshot() *GameSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := &GameSnapshot{
		Phase:          m.phase,
		Mode:           m.cfg.Mode,
		CurrentPlayer:  m.current + 1,
		PlacedThisTurn: m.placedThisTurn,
		TurnCount:      m.turnCount,
		WinReason:      m.winReason,
	}
	if m.winnerIdx >= 0 {
		snap.Winner = m.players[m.winnerIdx].Name
	}
	if m.board != nil {
		snap.Board = m.board.Snapshot()
	}
	if m.deck != nil {
		snap.DeckSize = m.deck.Size()
	}
	if m.discard != nil {
		snap.DiscardSize = m.discard.Size()
		snap.DiscardCounts = m.discard.CountBySymbol()
	}
	if len(m.pendingLines) > 0 {
		snap.PendingLines = make([]CompletedLine, len(m.pendingLines))
		copy(snap.PendingLines, m.pendingLines)
	}
	for i, p := range m.players {
		if p == nil {
			continue
		}
		snap.Players[i] = PlayerSnapshot{
			Name:     p.Name,
			Hand:     p.Hand.Cards(),
			HandSize: p.Hand.Size(),
			Score:    p.Score(),
			Active:   p.IsActive(),
		}
	}
	return snap
}

// Phase 当前对局阶段
func (m *Manager) Phase() GamePhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Mode 对局模式
func (m *Manager) Mode() GameMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Mode
}

// CurrentPlayer 当前行动玩家
func (m *Manager) CurrentPlayer() *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.players[0] == nil {
		return nil
	}
	return m.players[m.current]
}

// CurrentPlayerIndex 当前行动玩家序号（1或2）
func (m *Manager) CurrentPlayerIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current + 1
}

// Winner 获胜玩家与胜负原因（对局未结束或平局时玩家为nil）
func (m *Manager) Winner() (*Player, WinReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.winnerIdx < 0 {
		return nil, m.winReason
	}
	return m.players[m.winnerIdx], m.winReason
}

// BoardClone 盘面访问（CPU决策用；返回深拷贝避免外部改动引擎状态）
func (m *Manager) BoardClone() *Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.board == nil {
		return NewBoard()
	}
	return m.board.Clone()
}

// CurrentHandCards 当前玩家手牌的只读副本
func (m *Manager) CurrentHandCards() []Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.players[0] == nil {
		return nil
	}
	return m.players[m.current].Hand.Cards()
}
