package game

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// GamePhase 对局阶段（单向推进：setup → firstTurn → normal → ended）
type GamePhase string

const (
	PhaseSetup     GamePhase = "setup"
	PhaseFirstTurn GamePhase = "firstTurn"
	PhaseNormal    GamePhase = "normal"
	PhaseEnded     GamePhase = "ended"
)

// GameMode 对局模式
type GameMode string

const (
	ModeSolo GameMode = "solo" // 双人同屏
	ModeCPU  GameMode = "cpu"  // 对战CPU
)

// WinReason 胜负原因
type WinReason string

const (
	WinReasonHeavenlyHand       WinReason = "heavenly_hand"
	WinReasonRainbow7Line       WinReason = "rainbow_7_line"
	WinReasonOpponentEliminated WinReason = "opponent_eliminated"
	WinReasonDeckEmptyNoWinner  WinReason = "deck_empty_no_winner"
	WinReasonDeckEmptySurvival  WinReason = "deck_empty_survival"
	WinReasonDeckEmptyScore     WinReason = "deck_empty_score"
	WinReasonDeckEmptyDraw      WinReason = "deck_empty_draw"
)

// RejectReason 放置校验的机器可读拒绝原因
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectGameEnded         RejectReason = "game_ended"
	RejectGameNotStarted    RejectReason = "game_not_started"
	RejectAlreadyPlaced     RejectReason = "placement_already_done"
	RejectLinesPending      RejectReason = "lines_pending"
	RejectCardNotInHand     RejectReason = "card_not_in_hand"
	RejectInvalidSlot       RejectReason = "invalid_slot"
	RejectCenterOnly        RejectReason = "first_turn_center_only"
	RejectSymbolForbidden   RejectReason = "symbol_forbidden_on_center"
	RejectSlotOccupied      RejectReason = "slot_occupied"
)

// 命令错误
var (
	ErrGameNotStarted    = errors.New("游戏未开始")
	ErrGameEnded         = errors.New("游戏已经结束")
	ErrInvalidPlacement  = errors.New("无效的放置操作")
	ErrLinesPending      = errors.New("存在未结算的连线")
	ErrNoLinesPending    = errors.New("没有待结算的连线")
	ErrLineNotPending    = errors.New("该连线不在待结算列表中")
	ErrNoPlacementYet    = errors.New("当前玩家尚未放置卡牌")
	ErrBoardNotFull      = errors.New("只有满盘时才能弃置盘面卡牌")
	ErrCenterDiscard     = errors.New("中央格的卡牌不能弃置")
	ErrDiscardSlotEmpty  = errors.New("弃置目标格为空")
	ErrInvalidPlayerName = errors.New("玩家名称不能为空")
	ErrInvalidFirstPlayer = errors.New("先手玩家必须是1或2")
)

// Config 对局配置
type Config struct {
	Mode        GameMode
	FirstPlayer int    // 1或2
	CPULevel    string // 预留：当前仅easy

	// 天和判定阈值（起始手牌恰好持有的张数）
	HeavenlyHandRainbow7 int
	HeavenlyHandSilver3  int

	// 起始手牌张数
	InitialHandSize int

	// 随机源，nil时使用加密随机源
	Random RandomSource
}

// 配置默认值
const (
	DefaultHeavenlyHandRainbow7 = 5
	DefaultHeavenlyHandSilver3  = 5
	DefaultInitialHandSize      = 13
)

// applyDefaults 填充配置默认值
func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeSolo
	}
	if c.FirstPlayer == 0 {
		c.FirstPlayer = 1
	}
	if c.CPULevel == "" {
		c.CPULevel = "easy"
	}
	if c.HeavenlyHandRainbow7 == 0 {
		c.HeavenlyHandRainbow7 = DefaultHeavenlyHandRainbow7
	}
	if c.HeavenlyHandSilver3 == 0 {
		c.HeavenlyHandSilver3 = DefaultHeavenlyHandSilver3
	}
	if c.InitialHandSize == 0 {
		c.InitialHandSize = DefaultInitialHandSize
	}
	if c.Random == nil {
		c.Random = NewCryptoRandomSource()
	}
}

// Manager 对局管理器
// 持有一局游戏的全部状态并驱动回合推进；所有变更通过命令方法串行化，
// 每个命令是一次原子的状态转换（失败时状态保持不变）。
type Manager struct {
	mu       sync.Mutex
	logger   *zap.Logger
	events   *EventBus
	resolver *LineEffectResolver

	cfg     Config
	phase   GamePhase
	deck    *Deck
	discard *DiscardPile
	board   *Board
	players [2]*Player

	current        int // 当前玩家下标（0/1）
	winnerIdx      int // 获胜玩家下标，-1表示无（未结束或平局）
	winReason      WinReason
	pendingLines   []CompletedLine // 等待外部选择结算的完成线
	placedThisTurn bool
	turnCount      int
}

// NewManager 创建对局管理器（尚未开局）
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:    logger,
		events:    NewEventBus(logger),
		resolver:  NewLineEffectResolver(),
		phase:     PhaseSetup,
		winnerIdx: -1,
	}
}

// Events 通知总线（订阅入口）
func (m *Manager) Events() *EventBus {
	return m.events
}

// StartGame 开始新对局
// 重复调用会完全丢弃上一局的状态（牌库/盘面/手牌均重建，不复用实例）。
func (m *Manager) StartGame(player1Name, player2Name string, cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if player1Name == "" || player2Name == "" {
		return ErrInvalidPlayerName
	}
	cfg.applyDefaults()
	if cfg.FirstPlayer != 1 && cfg.FirstPlayer != 2 {
		return ErrInvalidFirstPlayer
	}

	m.cfg = cfg
	m.deck = NewShuffledDeck(cfg.Random)
	m.discard = NewDiscardPile()
	m.board = NewBoard()
	m.players = [2]*Player{NewPlayer(player1Name), NewPlayer(player2Name)}
	m.current = cfg.FirstPlayer - 1
	m.winnerIdx = -1
	m.winReason = ""
	m.pendingLines = nil
	m.placedThisTurn = false
	m.turnCount = 0
	m.phase = PhaseSetup

	// 交替发牌，先手先摸
	for i := 0; i < cfg.InitialHandSize; i++ {
		for offset := 0; offset < 2; offset++ {
			card, ok := m.deck.Draw()
			if !ok {
				break
			}
			m.players[(m.current+offset)%2].Hand.Add(card)
		}
	}

	m.logger.Info("对局开始",
		zap.String("player1", player1Name),
		zap.String("player2", player2Name),
		zap.String("mode", string(cfg.Mode)),
		zap.Int("first_player", cfg.FirstPlayer))

	m.events.Publish(EventGameStarted, GameStartedPayload{
		Players:     [2]string{player1Name, player2Name},
		FirstPlayer: cfg.FirstPlayer,
		Mode:        cfg.Mode,
		DeckSize:    m.deck.Size(),
	})

	// 天和判定：起始手牌满足阈值则开局即胜，先手优先
	for offset := 0; offset < 2; offset++ {
		idx := (m.current + offset) % 2
		hand := m.players[idx].Hand
		if hand.CountBySymbol(SymbolRainbow7) == cfg.HeavenlyHandRainbow7 &&
			hand.CountBySymbol(SymbolSilver3) == cfg.HeavenlyHandSilver3 {
			m.logger.Info("天和成立", zap.String("player", m.players[idx].Name))
			m.endGameLocked(idx, WinReasonHeavenlyHand)
			return nil
		}
	}

	m.phase = PhaseFirstTurn
	m.events.Publish(EventFirstTurnStarted, TurnPayload{
		Player: m.players[m.current].Name,
		Phase:  m.phase,
	})
	return nil
}

// CanPlaceCard 放置校验，返回是否合法及机器可读的拒绝原因
func (m *Manager) CanPlaceCard(slot int, cardID int) (bool, RejectReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, reason := m.canPlaceLocked(slot, cardID)
	return reason == RejectNone, reason
}

// canPlaceLocked 放置校验（须持锁）
func (m *Manager) canPlaceLocked(slot int, cardID int) (Card, RejectReason) {
	switch m.phase {
	case PhaseEnded:
		return Card{}, RejectGameEnded
	case PhaseSetup:
		return Card{}, RejectGameNotStarted
	}
	if len(m.pendingLines) > 0 {
		return Card{}, RejectLinesPending
	}
	if m.placedThisTurn {
		return Card{}, RejectAlreadyPlaced
	}
	card, ok := m.players[m.current].Hand.Find(cardID)
	if !ok {
		return Card{}, RejectCardNotInHand
	}
	if !validSlot(slot) {
		return Card{}, RejectInvalidSlot
	}
	if m.phase == PhaseFirstTurn {
		if slot != CenterSlot {
			return Card{}, RejectCenterOnly
		}
		if !m.board.CanPlaceOnCenter(card) {
			return Card{}, RejectSymbolForbidden
		}
		return card, RejectNone
	}
	if !m.board.IsSlotEmpty(slot) {
		return Card{}, RejectSlotOccupied
	}
	return card, RejectNone
}

// PlaceCard 当前玩家从手牌打出一张牌到指定格子
func (m *Manager) PlaceCard(cardID int, slot int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	card, reason := m.canPlaceLocked(slot, cardID)
	if reason != RejectNone {
		return placementError(reason)
	}

	player := m.players[m.current]
	player.Hand.Remove(card)
	if err := m.board.Place(slot, card); err != nil {
		// canPlaceLocked已校验，到这里属于内部不变量被破坏
		player.Hand.Add(card)
		return err
	}
	m.placedThisTurn = true

	m.logger.Debug("卡牌放置",
		zap.String("player", player.Name),
		zap.String("card", card.String()),
		zap.Int("slot", slot))

	m.events.Publish(EventCardPlaced, CardPlacedPayload{
		Player: player.Name,
		Card:   card,
		Slot:   slot,
	})

	if m.phase == PhaseFirstTurn {
		m.phase = PhaseNormal
	}

	lines := m.board.CompletedLines()

	// 手牌耗尽判定：盘面同时存在完成的RAINBOW_7线时该线优先，
	// 经正常的完成线结算路径处理；否则打空手牌的一方立即出局。
	if player.Hand.IsEmpty() && !containsRainbow7(lines) {
		m.eliminateCurrentLocked()
		return nil
	}

	if len(lines) > 0 {
		m.pendingLines = lines
		m.events.Publish(EventLinesCompleted, LinesCompletedPayload{
			Player: player.Name,
			Lines:  lines,
		})
	}
	return nil
}

// PendingLines 等待结算的完成线（外部选择用）
func (m *Manager) PendingLines() []CompletedLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletedLine, len(m.pendingLines))
	copy(out, m.pendingLines)
	return out
}

// ResolveLine 结算一条完成线
// lineIndex为盘面判定线编号（CompletedLine.LineIndex），必须在等待结算
// 的集合中；多线同时完成时恰好结算其中一条，其余随之作废（不级联）。
func (m *Manager) ResolveLine(lineIndex int, selectedSlots []int) (*LineResolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseEnded {
		return nil, ErrGameEnded
	}
	if len(m.pendingLines) == 0 {
		return nil, ErrNoLinesPending
	}
	var line *CompletedLine
	for i := range m.pendingLines {
		if m.pendingLines[i].LineIndex == lineIndex {
			line = &m.pendingLines[i]
			break
		}
	}
	if line == nil {
		return nil, ErrLineNotPending
	}

	player := m.players[m.current]
	resolution := m.resolver.Resolve(m.board, *line, player.Hand, m.deck, m.discard, selectedSlots)
	resolved := *line
	m.pendingLines = nil

	m.logger.Info("判定线结算",
		zap.String("player", player.Name),
		zap.String("symbol", string(resolution.Symbol)),
		zap.Bool("instant_win", resolution.InstantWin),
		zap.Bool("deck_empty", resolution.DeckEmpty))

	m.events.Publish(EventLineResolved, LineResolvedPayload{
		Player:     player.Name,
		Line:       resolved,
		Resolution: resolution,
	})

	if resolution.InstantWin {
		m.endGameLocked(m.current, WinReasonRainbow7Line)
		return resolution, nil
	}
	if resolution.DeckEmpty {
		m.evaluateDeckExhaustionLocked()
		return resolution, nil
	}

	// 结算改变了手牌构成，重新执行手牌耗尽判定
	m.checkHandEmptyLocked()
	return resolution, nil
}

// CheckHandEmptyAfterLineResolution 结算后的手牌耗尽判定
// 返回当前玩家是否因此出局。
func (m *Manager) CheckHandEmptyAfterLineResolution() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseEnded {
		return false, ErrGameEnded
	}
	if m.phase == PhaseSetup {
		return false, ErrGameNotStarted
	}
	return m.checkHandEmptyLocked(), nil
}

// checkHandEmptyLocked 手牌耗尽判定（须持锁）
// 盘面存在完成的RAINBOW_7线时不出局（该线经结算路径处理优先获胜）。
func (m *Manager) checkHandEmptyLocked() bool {
	if m.phase == PhaseEnded {
		return false
	}
	player := m.players[m.current]
	if !player.Hand.IsEmpty() {
		return false
	}
	if containsRainbow7(m.board.CompletedLines()) {
		return false
	}
	m.eliminateCurrentLocked()
	return true
}

// eliminateCurrentLocked 当前玩家出局，对手获胜（须持锁）
func (m *Manager) eliminateCurrentLocked() {
	loser := m.players[m.current]
	winnerIdx := 1 - m.current
	winner := m.players[winnerIdx]
	loser.Eliminate()

	m.logger.Info("玩家出局",
		zap.String("eliminated", loser.Name),
		zap.String("winner", winner.Name))

	m.events.Publish(EventPlayerEliminated, PlayerEliminatedPayload{Player: loser.Name})
	m.events.Publish(EventHandDepletionVictory, HandDepletionPayload{
		DepletedPlayer: loser.Name,
		Winner:         winner.Name,
	})
	m.endGameLocked(winnerIdx, WinReasonOpponentEliminated)
}

// DiscardCardFromSlot 盘面已满时的手动弃置
// 仅允许弃置中央格以外的已占据格子，为随后的放置腾出空位。
func (m *Manager) DiscardCardFromSlot(slot int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseEnded {
		return ErrGameEnded
	}
	if m.phase != PhaseNormal {
		return ErrGameNotStarted
	}
	if len(m.pendingLines) > 0 {
		return ErrLinesPending
	}
	if m.placedThisTurn {
		return placementError(RejectAlreadyPlaced)
	}
	if !m.board.IsFull() {
		return ErrBoardNotFull
	}
	if !validSlot(slot) {
		return ErrInvalidSlot
	}
	if slot == CenterSlot {
		return ErrCenterDiscard
	}

	card, ok := m.board.Remove(slot)
	if !ok {
		return ErrDiscardSlotEmpty
	}
	m.discard.Add(card)

	player := m.players[m.current]
	m.logger.Debug("手动弃置",
		zap.String("player", player.Name),
		zap.String("card", card.String()),
		zap.Int("slot", slot))

	m.events.Publish(EventCardDiscarded, CardDiscardedPayload{
		Card:   card,
		Slot:   slot,
		Source: "board_discard",
		Player: player.Name,
	})
	return nil
}

// EndTurn 结束当前回合并交给下一位玩家
// 新回合开始前执行盘面已满的强制刷新预检。
func (m *Manager) EndTurn() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseEnded {
		return ErrGameEnded
	}
	if m.phase != PhaseNormal && m.phase != PhaseFirstTurn {
		return ErrGameNotStarted
	}
	if len(m.pendingLines) > 0 {
		return ErrLinesPending
	}
	if !m.placedThisTurn {
		return ErrNoPlacementYet
	}

	prev := m.players[m.current]
	m.events.Publish(EventTurnEnded, TurnPayload{Player: prev.Name, Phase: m.phase})

	m.current = 1 - m.current
	m.placedThisTurn = false
	m.turnCount++

	// 新回合预检：盘面已满时先执行强制刷新（格子3严格先于格子7）
	if m.board.IsFull() {
		m.runForcedRefreshLocked()
		if m.phase == PhaseEnded {
			return nil
		}
	}

	m.events.Publish(EventTurnStarted, TurnPayload{
		Player: m.players[m.current].Name,
		Phase:  m.phase,
	})
	return nil
}

// runForcedRefreshLocked 强制刷新事件（须持锁）
// 依次处理格子3、7：牌库为空立即进入牌库耗尽判定并中止序列，
// 否则摸一张牌替换该格，被替换的卡牌进入弃牌堆。
func (m *Manager) runForcedRefreshLocked() {
	for _, slot := range RefreshSlots {
		if m.deck.IsEmpty() {
			m.evaluateDeckExhaustionLocked()
			return
		}
		newCard, _ := m.deck.Draw()
		removed, had, err := m.board.ForcedRefresh(slot, newCard)
		if err != nil {
			m.logger.Error("强制刷新失败", zap.Int("slot", slot), zap.Error(err))
			return
		}

		payload := ForcedRefreshPayload{Slot: slot, NewCard: newCard}
		if had {
			m.discard.Add(removed)
			r := removed
			payload.Removed = &r
			m.events.Publish(EventCardDiscarded, CardDiscardedPayload{
				Card:   removed,
				Slot:   slot,
				Source: "forced_refresh",
			})
		}
		m.logger.Debug("强制刷新",
			zap.Int("slot", slot),
			zap.String("new_card", newCard.String()))
		m.events.Publish(EventForcedRefresh, payload)
	}
}

// evaluateDeckExhaustionLocked 牌库耗尽判定（须持锁）
// 按未出局玩家人数分派：0人平局、1人存活胜、2人比较手牌得分。
func (m *Manager) evaluateDeckExhaustionLocked() {
	var active []int
	for i, p := range m.players {
		if p.IsActive() {
			active = append(active, i)
		}
	}

	scores := [2]int{m.players[0].Score(), m.players[1].Score()}
	names := [2]string{m.players[0].Name, m.players[1].Name}

	switch len(active) {
	case 0:
		m.events.Publish(EventDeckEmptyJudgment, DeckEmptyJudgmentPayload{
			Scores: scores, Players: names, Reason: WinReasonDeckEmptyNoWinner,
		})
		m.endGameLocked(-1, WinReasonDeckEmptyNoWinner)

	case 1:
		winner := active[0]
		m.events.Publish(EventDeckEmptyJudgment, DeckEmptyJudgmentPayload{
			Scores: scores, Players: names,
			Winner: m.players[winner].Name, Reason: WinReasonDeckEmptySurvival,
		})
		m.endGameLocked(winner, WinReasonDeckEmptySurvival)

	default:
		if scores[0] == scores[1] {
			m.events.Publish(EventDeckEmptyJudgment, DeckEmptyJudgmentPayload{
				Scores: scores, Players: names, Reason: WinReasonDeckEmptyDraw,
			})
			m.endGameLocked(-1, WinReasonDeckEmptyDraw)
			return
		}
		winner := 0
		if scores[1] > scores[0] {
			winner = 1
		}
		m.events.Publish(EventDeckEmptyJudgment, DeckEmptyJudgmentPayload{
			Scores: scores, Players: names,
			Winner: m.players[winner].Name, Reason: WinReasonDeckEmptyScore,
		})
		m.endGameLocked(winner, WinReasonDeckEmptyScore)
	}
}

// endGameLocked 终结对局（须持锁），单向转换，之后所有变更命令被拒绝
func (m *Manager) endGameLocked(winnerIdx int, reason WinReason) {
	m.phase = PhaseEnded
	m.winnerIdx = winnerIdx
	m.winReason = reason

	winnerName := ""
	if winnerIdx >= 0 {
		winnerName = m.players[winnerIdx].Name
	}

	m.logger.Info("对局结束",
		zap.String("winner", winnerName),
		zap.String("reason", string(reason)),
		zap.Int("turns", m.turnCount))

	m.events.Publish(EventGameEnded, GameEndedPayload{
		Winner: winnerName,
		Reason: reason,
		Turns:  m.turnCount,
	})
}

// containsRainbow7 完成线集合中是否含RAINBOW_7线
func containsRainbow7(lines []CompletedLine) bool {
	for _, l := range lines {
		if l.Symbol == SymbolRainbow7 {
			return true
		}
	}
	return false
}

// placementError 将拒绝原因映射为命令错误
func placementError(reason RejectReason) error {
	switch reason {
	case RejectGameEnded:
		return ErrGameEnded
	case RejectGameNotStarted:
		return ErrGameNotStarted
	case RejectLinesPending:
		return ErrLinesPending
	default:
		return &PlacementRejectedError{Reason: reason}
	}
}

// PlacementRejectedError 携带机器可读原因的放置拒绝错误
type PlacementRejectedError struct {
	Reason RejectReason
}

// Error 实现error接口
func (e *PlacementRejectedError) Error() string {
	return "放置被拒绝: " + string(e.Reason)
}
