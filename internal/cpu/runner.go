package cpu

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/wfunc/card-slot/internal/game"
	"go.uber.org/zap"
)

// Runner错误
var (
	ErrNoPlayableCard = errors.New("电脑没有可出的牌")
	ErrNoTargetSlot   = errors.New("电脑找不到可用的目标格")
)

// Options Runner配置
type Options struct {
	// 每个决策步骤间的延迟范围（UX节奏用，对游戏逻辑无意义）
	MinStepDelay time.Duration
	MaxStepDelay time.Duration
	// 随机源，nil时使用加密随机源
	Random game.RandomSource
}

// applyDefaults 填充默认值
func (o *Options) applyDefaults() {
	if o.MinStepDelay <= 0 {
		o.MinStepDelay = 400 * time.Millisecond
	}
	if o.MaxStepDelay < o.MinStepDelay {
		o.MaxStepDelay = o.MinStepDelay + 800*time.Millisecond
	}
	if o.Random == nil {
		o.Random = game.NewCryptoRandomSource()
	}
}

// Runner CPU回合驱动器
// 把一个CPU回合拆成离散决策步骤（弃置→选牌→选格→放置→选线→结算→结束回合），
// 步骤之间插入可取消的延迟。引擎命令面保持同步，Runner只是调度方。
type Runner struct {
	opts   Options
	logger *zap.Logger
	active atomic.Bool
}

// NewRunner 创建CPU回合驱动器
func NewRunner(logger *zap.Logger, opts Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.applyDefaults()
	return &Runner{opts: opts, logger: logger}
}

// Active CPU是否正在行动中
func (r *Runner) Active() bool {
	return r.active.Load()
}

// PlayTurn 执行一整个CPU回合
// ctx取消时中断后续步骤（已施加的状态转换不回滚，引擎保持一致）。
func (r *Runner) PlayTurn(ctx context.Context, m *game.Manager) error {
	r.active.Store(true)
	defer r.active.Store(false)

	phase := m.Phase()
	if phase != game.PhaseFirstTurn && phase != game.PhaseNormal {
		return nil
	}

	// 盘面已满：先手动弃置一格腾出空位（强制刷新在回合开始时已由引擎执行）
	if phase == game.PhaseNormal && m.BoardClone().IsFull() {
		slot, ok := SelectSlotToDiscard(r.opts.Random, m.BoardClone())
		if !ok {
			return ErrNoTargetSlot
		}
		if err := r.pause(ctx); err != nil {
			return err
		}
		if err := m.DiscardCardFromSlot(slot); err != nil {
			return err
		}
		r.logger.Debug("CPU弃置盘面卡牌", zap.Int("slot", slot))
	}

	// 选牌
	card, ok := SelectCardToPlay(r.opts.Random, m.CurrentHandCards(), phase)
	if !ok {
		return ErrNoPlayableCard
	}
	if err := r.pause(ctx); err != nil {
		return err
	}

	// 选格并放置
	slot, ok := SelectSlotForCard(r.opts.Random, m.BoardClone(), card, phase)
	if !ok {
		return ErrNoTargetSlot
	}
	if err := r.pause(ctx); err != nil {
		return err
	}
	if err := m.PlaceCard(card.ID, slot); err != nil {
		return err
	}
	r.logger.Debug("CPU放置卡牌",
		zap.String("card", card.String()),
		zap.Int("slot", slot))

	if m.Phase() == game.PhaseEnded {
		return nil
	}

	// 完成线结算
	if lines := m.PendingLines(); len(lines) > 0 {
		line, _ := SelectLineToResolve(r.opts.Random, lines)
		var selected []int
		if line.Symbol == game.SymbolCherry {
			selected = SelectSlotsForCherry(r.opts.Random, m.BoardClone(), line)
		}
		if err := r.pause(ctx); err != nil {
			return err
		}
		if _, err := m.ResolveLine(line.LineIndex, selected); err != nil {
			return err
		}
		r.logger.Debug("CPU结算判定线",
			zap.Int("line_index", line.LineIndex),
			zap.String("symbol", string(line.Symbol)))

		if m.Phase() == game.PhaseEnded {
			return nil
		}
	}

	if err := r.pause(ctx); err != nil {
		return err
	}
	return m.EndTurn()
}

// pause 在决策步骤之间等待一个随机延迟，支持取消
func (r *Runner) pause(ctx context.Context) error {
	span := int(r.opts.MaxStepDelay - r.opts.MinStepDelay)
	delay := r.opts.MinStepDelay
	if span > 0 {
		delay += time.Duration(r.opts.Random.Intn(span + 1))
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
