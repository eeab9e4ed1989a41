package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 会话错误
var (
	ErrSessionNotFound   = errors.New("游戏会话不存在")
	ErrSessionLimit      = errors.New("会话数量已达上限")
	ErrCPUTurnInProgress = errors.New("电脑回合进行中")
)

// AutoPlayer CPU行动驱动器接口
// 由internal/cpu实现；PlayTurn驱动一整个CPU回合，Active报告是否在行动中。
type AutoPlayer interface {
	PlayTurn(ctx context.Context, m *Manager) error
	Active() bool
}

// AutoPlayerFactory 为会话创建CPU驱动器
type AutoPlayerFactory func(logger *zap.Logger) AutoPlayer

// SubscriberFactory 为会话创建通知订阅者（WebSocket推送、统计上报等）
type SubscriberFactory func(sessionID string) EventHandler

// Session 对局会话
type Session struct {
	ID           string
	Manager      *Manager
	CreatedAt    time.Time
	lastActivity time.Time
	auto         AutoPlayer
	cpuSeat      int         // CPU的座位（1或2），0表示无CPU
	cpuTurn      atomic.Bool // CPU回合已排定（发起goroutine前同步置位）
	mu           sync.Mutex
}

// Touch 更新活跃时间
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity 最近活跃时间
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// CPUBusy CPU回合是否已排定或正在行动
func (s *Session) CPUBusy() bool {
	return s.auto != nil && (s.cpuTurn.Load() || s.auto.Active())
}

// SessionManagerConfig 会话管理器配置
type SessionManagerConfig struct {
	Logger            *zap.Logger
	SessionTimeout    time.Duration
	MaxSessions       int
	AutoPlayerFactory AutoPlayerFactory
	Subscribers       []SubscriberFactory
}

// SessionManager 会话管理器
// 管理多个并发对局，是外部行动者唯一的命令入口：
// CPU回合进行中到达的人类命令会被显式拒绝（不排队、不静默吞掉）。
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
	cfg      SessionManagerConfig
}

// NewSessionManager 创建会话管理器
func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 30 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		logger:   cfg.Logger,
		cfg:      cfg,
	}
}

// CreateSession 创建新对局会话并开局
// CPU模式下玩家2固定由CPU驱动；若先手是CPU，开局后立即发起CPU回合。
func (sm *SessionManager) CreateSession(player1Name, player2Name string, cfg Config) (*Session, error) {
	sm.mu.Lock()
	if len(sm.sessions) >= sm.cfg.MaxSessions {
		sm.mu.Unlock()
		return nil, ErrSessionLimit
	}
	sm.mu.Unlock()

	sessionID := uuid.New().String()
	manager := NewManager(sm.logger.With(zap.String("session_id", sessionID)))

	// 订阅者必须在开局前注册，否则会错过gameStarted与天和的gameEnded
	for _, factory := range sm.cfg.Subscribers {
		if handler := factory(sessionID); handler != nil {
			manager.Events().Subscribe(handler)
		}
	}

	session := &Session{
		ID:           sessionID,
		Manager:      manager,
		CreatedAt:    time.Now(),
		lastActivity: time.Now(),
	}
	if cfg.Mode == ModeCPU && sm.cfg.AutoPlayerFactory != nil {
		session.auto = sm.cfg.AutoPlayerFactory(sm.logger.With(zap.String("session_id", sessionID)))
		session.cpuSeat = 2
	}

	if err := manager.StartGame(player1Name, player2Name, cfg); err != nil {
		return nil, err
	}

	// 插入前在锁内复核上限，避免并发创建超出限制
	sm.mu.Lock()
	if len(sm.sessions) >= sm.cfg.MaxSessions {
		sm.mu.Unlock()
		return nil, ErrSessionLimit
	}
	sm.sessions[sessionID] = session
	sm.mu.Unlock()

	sm.logger.Info("创建对局会话",
		zap.String("session_id", sessionID),
		zap.String("player1", player1Name),
		zap.String("player2", player2Name),
		zap.String("mode", string(cfg.Mode)))

	sm.maybeStartAutoTurn(session)
	return session, nil
}

// GetSession 获取会话
func (sm *SessionManager) GetSession(sessionID string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, ok := sm.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// CloseSession 关闭并移除会话
func (sm *SessionManager) CloseSession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, ok := sm.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(sm.sessions, sessionID)
	sm.logger.Info("关闭对局会话", zap.String("session_id", sessionID))
	return nil
}

// Count 当前会话数量
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// guardHuman 人类命令的会话前置检查
func (sm *SessionManager) guardHuman(sessionID string) (*Session, error) {
	session, err := sm.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.CPUBusy() {
		return nil, ErrCPUTurnInProgress
	}
	session.Touch()
	return session, nil
}

// PlaceCard 人类命令：放置卡牌
func (sm *SessionManager) PlaceCard(sessionID string, cardID, slot int) error {
	session, err := sm.guardHuman(sessionID)
	if err != nil {
		return err
	}
	return session.Manager.PlaceCard(cardID, slot)
}

// CanPlaceCard 放置校验
func (sm *SessionManager) CanPlaceCard(sessionID string, slot, cardID int) (bool, RejectReason, error) {
	session, err := sm.GetSession(sessionID)
	if err != nil {
		return false, RejectNone, err
	}
	valid, reason := session.Manager.CanPlaceCard(slot, cardID)
	return valid, reason, nil
}

// ResolveLine 人类命令：结算判定线
func (sm *SessionManager) ResolveLine(sessionID string, lineIndex int, selectedSlots []int) (*LineResolution, error) {
	session, err := sm.guardHuman(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Manager.ResolveLine(lineIndex, selectedSlots)
}

// DiscardCardFromSlot 人类命令：盘面已满时的手动弃置
func (sm *SessionManager) DiscardCardFromSlot(sessionID string, slot int) error {
	session, err := sm.guardHuman(sessionID)
	if err != nil {
		return err
	}
	return session.Manager.DiscardCardFromSlot(slot)
}

// EndTurn 人类命令：结束回合
// 回合交到CPU座位时发起CPU行动序列。
func (sm *SessionManager) EndTurn(sessionID string) error {
	session, err := sm.guardHuman(sessionID)
	if err != nil {
		return err
	}
	if err := session.Manager.EndTurn(); err != nil {
		return err
	}
	sm.maybeStartAutoTurn(session)
	return nil
}

// Snapshot 对局快照
func (sm *SessionManager) Snapshot(sessionID string) (*GameSnapshot, error) {
	session, err := sm.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Manager.Snapshot(), nil
}

// maybeStartAutoTurn 若当前轮到CPU则发起CPU回合
// 繁忙标记在goroutine启动前同步置位，返回后人类命令立即被guardHuman拒绝。
func (sm *SessionManager) maybeStartAutoTurn(session *Session) {
	if session.auto == nil || session.auto.Active() {
		return
	}
	phase := session.Manager.Phase()
	if phase != PhaseFirstTurn && phase != PhaseNormal {
		return
	}
	if session.Manager.CurrentPlayerIndex() != session.cpuSeat {
		return
	}
	if !session.cpuTurn.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer session.cpuTurn.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := session.auto.PlayTurn(ctx, session.Manager); err != nil {
			sm.logger.Error("CPU回合执行失败",
				zap.String("session_id", session.ID),
				zap.Error(err))
		}
	}()
}

// StartCleanup 启动过期会话清理循环
func (sm *SessionManager) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sm.sweepExpired()
			}
		}
	}()
}

// sweepExpired 移除超过空闲时限的会话
func (sm *SessionManager) sweepExpired() {
	cutoff := time.Now().Add(-sm.cfg.SessionTimeout)
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for id, session := range sm.sessions {
		if session.LastActivity().Before(cutoff) {
			delete(sm.sessions, id)
			sm.logger.Info("会话超时清理", zap.String("session_id", id))
		}
	}
}
