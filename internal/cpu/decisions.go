// Package cpu 实现Easy级别的CPU对手。
// 决策函数是当前状态的纯函数，与引擎的命令面完全解耦；
// 回合推进由Runner按离散步骤调度执行。
package cpu

import (
	"github.com/wfunc/card-slot/internal/game"
)

// randomChoice 从切片中随机取一个
func randomChoice[T any](rng game.RandomSource, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[rng.Intn(len(items))], true
}

// SelectCardToPlay 选择要打出的卡牌
// 优先级：仅剩1张直接打出；首手排除RAINBOW_7/SILVER_3；
// 普通回合优先打非RAINBOW_7/SILVER_3；兜底全手牌随机。
func SelectCardToPlay(rng game.RandomSource, hand []game.Card, phase game.GamePhase) (game.Card, bool) {
	if len(hand) == 0 {
		return game.Card{}, false
	}
	if len(hand) == 1 {
		return hand[0], true
	}

	preferred := make([]game.Card, 0, len(hand))
	for _, c := range hand {
		if c.Symbol != game.SymbolRainbow7 && c.Symbol != game.SymbolSilver3 {
			preferred = append(preferred, c)
		}
	}

	if phase == game.PhaseFirstTurn {
		// 中央格禁止RAINBOW_7/SILVER_3
		if card, ok := randomChoice(rng, preferred); ok {
			return card, true
		}
		// 正常对局状态下不应发生
		return randomChoice(rng, hand)
	}

	if card, ok := randomChoice(rng, preferred); ok {
		return card, true
	}
	// 手里只剩RAINBOW_7和SILVER_3
	return randomChoice(rng, hand)
}

// SelectSlotForCard 选择放置格子
// 优先级：完成己方判定线 > 占据中央格 > 阻断对手的两连 > 随机空格。
func SelectSlotForCard(rng game.RandomSource, board *game.Board, card game.Card, phase game.GamePhase) (int, bool) {
	if phase == game.PhaseFirstTurn {
		return game.CenterSlot, true
	}

	emptySlots := board.EmptySlots()
	if len(emptySlots) == 0 {
		return 0, false
	}

	if completing := findLineCompletingSlots(board, card, emptySlots); len(completing) > 0 {
		slot, _ := randomChoice(rng, completing)
		return slot, true
	}

	for _, slot := range emptySlots {
		if slot == game.CenterSlot {
			return game.CenterSlot, true
		}
	}

	if blocking := findOpponentBlockingSlots(board, emptySlots); len(blocking) > 0 {
		slot, _ := randomChoice(rng, blocking)
		return slot, true
	}

	slot, _ := randomChoice(rng, emptySlots)
	return slot, true
}

// findLineCompletingSlots 试放探测：放下该牌能完成判定线的空格
func findLineCompletingSlots(board *game.Board, card game.Card, emptySlots []int) []int {
	var completing []int
	probe := board.Clone()
	for _, slot := range emptySlots {
		if err := probe.Place(slot, card); err != nil {
			continue
		}
		if len(probe.CompletedLines()) > 0 {
			completing = append(completing, slot)
		}
		probe.Remove(slot)
	}
	return completing
}

// findOpponentBlockingSlots 找出对手两连线上唯一剩余的空格
func findOpponentBlockingSlots(board *game.Board, emptySlots []int) []int {
	emptySet := make(map[int]bool, len(emptySlots))
	for _, slot := range emptySlots {
		emptySet[slot] = true
	}

	blockingSet := make(map[int]bool)
	for _, line := range game.BoardLines {
		var cards []game.Card
		var emptyInLine []int
		for _, slot := range line {
			if card, ok := board.CardAt(slot); ok {
				cards = append(cards, card)
			} else {
				emptyInLine = append(emptyInLine, slot)
			}
		}
		if len(cards) == 2 && len(emptyInLine) == 1 && cards[0].Symbol == cards[1].Symbol {
			if emptySet[emptyInLine[0]] {
				blockingSet[emptyInLine[0]] = true
			}
		}
	}

	var blocking []int
	for slot := 1; slot <= game.BoardSlots; slot++ {
		if blockingSet[slot] {
			blocking = append(blocking, slot)
		}
	}
	return blocking
}

// SelectLineToResolve 多线同时完成时随机选一条结算
func SelectLineToResolve(rng game.RandomSource, lines []game.CompletedLine) (game.CompletedLine, bool) {
	return randomChoice(rng, lines)
}

// SelectSlotsForCherry CHERRY效果的取牌格选择
// Easy级别随机取1个合法格（非中央、非被结算线、已占据）。
func SelectSlotsForCherry(rng game.RandomSource, board *game.Board, line game.CompletedLine) []int {
	inLine := func(slot int) bool {
		return slot == line.Slots[0] || slot == line.Slots[1] || slot == line.Slots[2]
	}
	var candidates []int
	for slot := 1; slot <= game.BoardSlots; slot++ {
		if slot == game.CenterSlot || inLine(slot) || board.IsSlotEmpty(slot) {
			continue
		}
		candidates = append(candidates, slot)
	}
	if slot, ok := randomChoice(rng, candidates); ok {
		return []int{slot}
	}
	return nil
}

// SelectSlotToDiscard 盘面已满时选择要弃置的格子（中央格除外）
func SelectSlotToDiscard(rng game.RandomSource, board *game.Board) (int, bool) {
	return randomChoice(rng, board.OccupiedNonCenterSlots())
}
