package game

import "fmt"

// Deck 牌库（有序，前端为下次摸牌）
// 卡牌只通过Draw离开牌库；正常对局中不会回流
// （SILVER_3效果通过DrainAll整体移入弃牌堆）。
type Deck struct {
	cards []Card
}

// NewShuffledDeck 构建完整的63张牌库并做一次无偏的原地洗牌（Fisher-Yates）
func NewShuffledDeck(rng RandomSource) *Deck {
	cards := buildFullCardSet()
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	return &Deck{cards: cards}
}

// Draw 从前端摸一张牌
// 牌库为空返回 ok=false —— 牌库耗尽是正常的对局事件而非错误，
// 调用方必须检查第二个返回值。
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DrainAll 移出牌库中剩余的全部卡牌（SILVER_3效果）
func (d *Deck) DrainAll() []Card {
	drained := d.cards
	d.cards = nil
	return drained
}

// IsEmpty 牌库是否为空
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Size 剩余张数
func (d *Deck) Size() int {
	return len(d.cards)
}

// Cards 剩余卡牌的只读副本（调试用）
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// String 调试用
func (d *Deck) String() string {
	return fmt.Sprintf("Deck (%d cards remaining)", len(d.cards))
}
