package game

// DiscardPile 弃牌堆（对局中只追加，仅用于计分核对与调试，不会被重新摸取）
type DiscardPile struct {
	cards []Card
}

// NewDiscardPile 创建空弃牌堆
func NewDiscardPile() *DiscardPile {
	return &DiscardPile{}
}

// Add 追加一张卡牌
func (p *DiscardPile) Add(card Card) {
	p.cards = append(p.cards, card)
}

// AddAll 追加多张卡牌
func (p *DiscardPile) AddAll(cards []Card) {
	p.cards = append(p.cards, cards...)
}

// Size 弃牌堆张数
func (p *DiscardPile) Size() int {
	return len(p.cards)
}

// IsEmpty 弃牌堆是否为空
func (p *DiscardPile) IsEmpty() bool {
	return len(p.cards) == 0
}

// Top 最后一张被弃置的卡牌（不取出）
func (p *DiscardPile) Top() (Card, bool) {
	if len(p.cards) == 0 {
		return Card{}, false
	}
	return p.cards[len(p.cards)-1], true
}

// CountBySymbol 各符号的弃置张数统计
func (p *DiscardPile) CountBySymbol() map[Symbol]int {
	counts := make(map[Symbol]int)
	for _, c := range p.cards {
		counts[c.Symbol]++
	}
	return counts
}

// Cards 弃牌堆的只读副本
func (p *DiscardPile) Cards() []Card {
	out := make([]Card, len(p.cards))
	copy(out, p.cards)
	return out
}
