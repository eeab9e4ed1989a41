package game

// 再玩效果最多弃置的张数
const replayDiscardLimit = 3

// 西瓜效果摸牌张数
const watermelonDrawCount = 2

// LineResolution 判定线效果结算的结果
type LineResolution struct {
	Symbol          Symbol `json:"symbol"`
	Slots           [3]int `json:"slots"`
	InstantWin      bool   `json:"instant_win"`      // RAINBOW_7立即获胜
	DeckEmpty       bool   `json:"deck_empty"`       // 结算过程中牌库被清空
	CardsToHand     []Card `json:"cards_to_hand"`    // 移入结算方手牌的卡牌（CHERRY）
	CardsDrawn      []Card `json:"cards_drawn"`      // 从牌库摸到手牌的卡牌（WATERMELON/BELL）
	ReplayExecuted  bool   `json:"replay_executed"`  // 是否执行了再玩效果
	ReplayDiscarded int    `json:"replay_discarded"` // 再玩效果弃置的张数
}

// LineEffectResolver 判定线效果结算器
// 输入一条已由外部选定的完成线（多线同时完成时的取舍不在此处决定）、
// 结算方手牌、共享的牌库与弃牌堆，施加恰好一个符号效果并返回结构化结果。
type LineEffectResolver struct{}

// NewLineEffectResolver 创建结算器
func NewLineEffectResolver() *LineEffectResolver {
	return &LineEffectResolver{}
}

// Resolve 结算一条完成线
// selectedSlots 仅CHERRY效果使用；非法选择（中央格、被结算线自身的格子、
// 空格子）会被静默过滤而不是报错。
//
// RAINBOW_7是唯一不弃置线上卡牌的效果：对局立即结束，盘面保持原样。
// 其余符号先将线上3张卡牌移入弃牌堆，再施加各自的效果。
func (r *LineEffectResolver) Resolve(board *Board, line CompletedLine, hand *Hand, deck *Deck, discard *DiscardPile, selectedSlots []int) *LineResolution {
	result := &LineResolution{
		Symbol: line.Symbol,
		Slots:  line.Slots,
	}

	if line.Symbol == SymbolRainbow7 {
		result.InstantWin = true
		return result
	}

	// 线上卡牌离开盘面进入弃牌堆
	for _, slot := range line.Slots {
		if card, ok := board.Remove(slot); ok {
			discard.Add(card)
		}
	}

	switch line.Symbol {
	case SymbolSilver3:
		// 牌库剩余卡牌全部移入弃牌堆，强制调用方立即进入牌库耗尽判定
		discard.AddAll(deck.DrainAll())
		result.DeckEmpty = true

	case SymbolCherry:
		// 从盘面取最多1张进入手牌
		for _, slot := range r.filterCherrySlots(board, line, selectedSlots) {
			card, ok := board.Remove(slot)
			if !ok {
				continue
			}
			hand.Add(card)
			result.CardsToHand = append(result.CardsToHand, card)
			break
		}

	case SymbolWatermelon:
		result.CardsDrawn = r.drawToHand(hand, deck, watermelonDrawCount)

	case SymbolBell:
		result.CardsDrawn = r.drawToHand(hand, deck, 1)

	case SymbolReplay:
		// 最多弃置3张，逐张进行，牌库一旦为空立即停止。
		// 弃置的卡牌不上盘面、不进手牌，也绝不触发新的判定线结算。
		result.ReplayExecuted = true
		for i := 0; i < replayDiscardLimit; i++ {
			card, ok := deck.Draw()
			if !ok {
				result.DeckEmpty = true
				break
			}
			discard.Add(card)
			result.ReplayDiscarded++
		}
		if deck.IsEmpty() {
			result.DeckEmpty = true
		}
	}

	return result
}

// filterCherrySlots 过滤CHERRY效果的格子选择
// 中央格、属于被结算线的格子、空格子均不计入"最多1张"的上限。
func (r *LineEffectResolver) filterCherrySlots(board *Board, line CompletedLine, selected []int) []int {
	inLine := func(slot int) bool {
		return slot == line.Slots[0] || slot == line.Slots[1] || slot == line.Slots[2]
	}
	var valid []int
	for _, slot := range selected {
		if slot == CenterSlot || inLine(slot) || board.IsSlotEmpty(slot) {
			continue
		}
		if !validSlot(slot) {
			continue
		}
		valid = append(valid, slot)
	}
	return valid
}

// drawToHand 从牌库摸最多n张进入手牌，牌库中途耗尽不是错误
func (r *LineEffectResolver) drawToHand(hand *Hand, deck *Deck, n int) []Card {
	var drawn []Card
	for i := 0; i < n; i++ {
		card, ok := deck.Draw()
		if !ok {
			break
		}
		hand.Add(card)
		drawn = append(drawn, card)
	}
	return drawn
}
