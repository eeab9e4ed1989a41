package game

import "sort"

// Hand 手牌
// 语义上是无序多重集合，为了展示稳定按符号目录顺序保持排序。
// 成员判定与移除以卡牌ID为准。
type Hand struct {
	cards []Card
}

// NewHand 创建空手牌
func NewHand() *Hand {
	return &Hand{}
}

// Add 加入一张卡牌
func (h *Hand) Add(card Card) {
	h.cards = append(h.cards, card)
	h.sortBySymbol()
}

// AddAll 加入多张卡牌
func (h *Hand) AddAll(cards []Card) {
	h.cards = append(h.cards, cards...)
	h.sortBySymbol()
}

// Remove 按ID移除一张卡牌
// 卡牌不在手牌中返回false —— 这种情况意味着调用方的bug（打出未持有的牌）。
func (h *Hand) Remove(card Card) bool {
	for i, c := range h.cards {
		if c.ID == card.ID {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return true
		}
	}
	return false
}

// Has 是否持有该卡牌（按ID）
func (h *Hand) Has(card Card) bool {
	for _, c := range h.cards {
		if c.ID == card.ID {
			return true
		}
	}
	return false
}

// Find 按ID查找持有的卡牌
func (h *Hand) Find(cardID int) (Card, bool) {
	for _, c := range h.cards {
		if c.ID == cardID {
			return c, true
		}
	}
	return Card{}, false
}

// CountBySymbol 统计某符号的张数
func (h *Hand) CountBySymbol(symbol Symbol) int {
	n := 0
	for _, c := range h.cards {
		if c.Symbol == symbol {
			n++
		}
	}
	return n
}

// Score 手牌得分（各卡牌符号分值之和）
func (h *Hand) Score() int {
	total := 0
	for _, c := range h.cards {
		total += c.Score()
	}
	return total
}

// IsEmpty 手牌是否为空
func (h *Hand) IsEmpty() bool {
	return len(h.cards) == 0
}

// Size 手牌张数
func (h *Hand) Size() int {
	return len(h.cards)
}

// Cards 手牌的只读副本
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// sortBySymbol 按符号目录顺序排序（同符号按ID），仅影响展示
func (h *Hand) sortBySymbol() {
	sort.SliceStable(h.cards, func(i, j int) bool {
		oi, oj := symbolOrder[h.cards[i].Symbol], symbolOrder[h.cards[j].Symbol]
		if oi != oj {
			return oi < oj
		}
		return h.cards[i].ID < h.cards[j].ID
	})
}
