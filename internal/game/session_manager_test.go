package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// idleAutoPlayer 可控的CPU驱动器桩
type idleAutoPlayer struct {
	mu     sync.Mutex
	active bool
	played int
}

func (a *idleAutoPlayer) PlayTurn(ctx context.Context, m *Manager) error {
	a.mu.Lock()
	a.played++
	a.mu.Unlock()
	return nil
}

func (a *idleAutoPlayer) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *idleAutoPlayer) setActive(v bool) {
	a.mu.Lock()
	a.active = v
	a.mu.Unlock()
}

func soloConfig() Config {
	return Config{Mode: ModeSolo, FirstPlayer: 1, Random: identitySource{}}
}

func TestSessionManager_CreateAndClose(t *testing.T) {
	sm := NewSessionManager(SessionManagerConfig{Logger: zap.NewNop()})

	session, err := sm.CreateSession("玩家一", "玩家二", soloConfig())
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, 1, sm.Count())

	got, err := sm.GetSession(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	snap, err := sm.Snapshot(session.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseFirstTurn, snap.Phase)

	require.NoError(t, sm.CloseSession(session.ID))
	assert.Equal(t, 0, sm.Count())
	_, err = sm.GetSession(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, sm.CloseSession(session.ID), ErrSessionNotFound)
}

func TestSessionManager_SessionLimit(t *testing.T) {
	sm := NewSessionManager(SessionManagerConfig{Logger: zap.NewNop(), MaxSessions: 1})

	_, err := sm.CreateSession("玩家一", "玩家二", soloConfig())
	require.NoError(t, err)

	_, err = sm.CreateSession("玩家三", "玩家四", soloConfig())
	assert.ErrorIs(t, err, ErrSessionLimit)
}

func TestSessionManager_SessionLimitConcurrent(t *testing.T) {
	sm := NewSessionManager(SessionManagerConfig{Logger: zap.NewNop(), MaxSessions: 1})

	// 并发创建也不越过上限
	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sm.CreateSession("玩家一", "玩家二", soloConfig()); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrSessionLimit)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, sm.Count())
}

func TestSessionManager_UnknownSession(t *testing.T) {
	sm := NewSessionManager(SessionManagerConfig{Logger: zap.NewNop()})

	assert.ErrorIs(t, sm.PlaceCard("missing", 0, 9), ErrSessionNotFound)
	assert.ErrorIs(t, sm.EndTurn("missing"), ErrSessionNotFound)
	_, _, err := sm.CanPlaceCard("missing", 9, 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sm.Snapshot("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_RejectsCommandsDuringCPUTurn(t *testing.T) {
	auto := &idleAutoPlayer{}
	sm := NewSessionManager(SessionManagerConfig{
		Logger:            zap.NewNop(),
		AutoPlayerFactory: func(*zap.Logger) AutoPlayer { return auto },
	})

	session, err := sm.CreateSession("玩家一", "CPU", Config{
		Mode:        ModeCPU,
		FirstPlayer: 1,
		Random:      identitySource{},
	})
	require.NoError(t, err)

	// CPU行动中的人类命令被显式拒绝，不排队
	auto.setActive(true)
	assert.ErrorIs(t, sm.PlaceCard(session.ID, 14, CenterSlot), ErrCPUTurnInProgress)
	assert.ErrorIs(t, sm.EndTurn(session.ID), ErrCPUTurnInProgress)
	_, err = sm.ResolveLine(session.ID, 0, nil)
	assert.ErrorIs(t, err, ErrCPUTurnInProgress)
	assert.ErrorIs(t, sm.DiscardCardFromSlot(session.ID, 1), ErrCPUTurnInProgress)

	// 校验查询不受CPU行动影响
	_, _, err = sm.CanPlaceCard(session.ID, 3, 14)
	assert.NoError(t, err)

	auto.setActive(false)
	assert.NoError(t, sm.PlaceCard(session.ID, 14, CenterSlot))
}

func TestSessionManager_CPUFirstPlayerStartsAutoTurn(t *testing.T) {
	auto := &idleAutoPlayer{}
	sm := NewSessionManager(SessionManagerConfig{
		Logger:            zap.NewNop(),
		AutoPlayerFactory: func(*zap.Logger) AutoPlayer { return auto },
	})

	// CPU先手：开局后立即发起CPU回合
	_, err := sm.CreateSession("玩家一", "CPU", Config{
		Mode:        ModeCPU,
		FirstPlayer: 2,
		Random:      identitySource{},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		auto.mu.Lock()
		defer auto.mu.Unlock()
		return auto.played == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// gatedAutoPlayer 回合阻塞到release关闭为止的CPU驱动器桩
type gatedAutoPlayer struct {
	release chan struct{}
}

func (a *gatedAutoPlayer) PlayTurn(ctx context.Context, m *Manager) error {
	select {
	case <-a.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *gatedAutoPlayer) Active() bool { return false }

func TestSessionManager_CPUTurnGuardsBeforeGoroutineRuns(t *testing.T) {
	auto := &gatedAutoPlayer{release: make(chan struct{})}
	sm := NewSessionManager(SessionManagerConfig{
		Logger:            zap.NewNop(),
		AutoPlayerFactory: func(*zap.Logger) AutoPlayer { return auto },
	})

	session, err := sm.CreateSession("玩家一", "CPU", Config{
		Mode:        ModeCPU,
		FirstPlayer: 2,
		Random:      identitySource{},
	})
	require.NoError(t, err)

	// 繁忙标记在CreateSession返回前已同步置位，
	// 即使CPU回合的goroutine尚未被调度，人类命令也已被拒绝
	assert.True(t, session.CPUBusy())
	assert.ErrorIs(t, sm.PlaceCard(session.ID, 14, CenterSlot), ErrCPUTurnInProgress)

	close(auto.release)
	require.Eventually(t, func() bool {
		return !session.CPUBusy()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionManager_SubscribersRegisteredBeforeStart(t *testing.T) {
	var mu sync.Mutex
	received := make(map[string][]EventType)
	sm := NewSessionManager(SessionManagerConfig{
		Logger: zap.NewNop(),
		Subscribers: []SubscriberFactory{
			func(sessionID string) EventHandler {
				return func(e Event) {
					mu.Lock()
					received[sessionID] = append(received[sessionID], e.Type)
					mu.Unlock()
				}
			},
		},
	})

	session, err := sm.CreateSession("玩家一", "玩家二", soloConfig())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, received[session.ID])
	// 开局通知不能被错过
	assert.Equal(t, EventGameStarted, received[session.ID][0])
	assert.Contains(t, received[session.ID], EventFirstTurnStarted)
}

func TestSessionManager_SweepExpired(t *testing.T) {
	sm := NewSessionManager(SessionManagerConfig{
		Logger:         zap.NewNop(),
		SessionTimeout: time.Minute,
	})

	stale, err := sm.CreateSession("玩家一", "玩家二", soloConfig())
	require.NoError(t, err)
	fresh, err := sm.CreateSession("玩家三", "玩家四", soloConfig())
	require.NoError(t, err)

	stale.mu.Lock()
	stale.lastActivity = time.Now().Add(-time.Hour)
	stale.mu.Unlock()

	sm.sweepExpired()

	assert.Equal(t, 1, sm.Count())
	_, err = sm.GetSession(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sm.GetSession(fresh.ID)
	assert.NoError(t, err)
}

func TestSession_TouchUpdatesActivity(t *testing.T) {
	sm := NewSessionManager(SessionManagerConfig{Logger: zap.NewNop()})
	session, err := sm.CreateSession("玩家一", "玩家二", soloConfig())
	require.NoError(t, err)

	before := session.LastActivity()
	time.Sleep(5 * time.Millisecond)
	session.Touch()
	assert.True(t, session.LastActivity().After(before))
}
