package game

import "fmt"

// Card 卡牌（创建后不可变）
// ID是局内卡牌池的稳定索引（0..62），同一符号存在多张副本，
// 因此相等性与移除始终以ID判定，绝不以符号判定。
type Card struct {
	ID     int    `json:"id"`
	Symbol Symbol `json:"symbol"`
}

// Score 卡牌的计分值
func (c Card) Score() int {
	return c.Symbol.Score()
}

// Display 卡牌的显示名称
func (c Card) Display() string {
	return c.Symbol.Display()
}

// String 调试用
func (c Card) String() string {
	return fmt.Sprintf("%s (#%d)", c.Display(), c.ID)
}

// buildFullCardSet 按符号目录构建一局游戏的完整卡牌池。
// ID按目录顺序从0开始连续分配，仅在本局内有意义。
func buildFullCardSet() []Card {
	cards := make([]Card, 0, DeckSize)
	id := 0
	for _, symbol := range OrderedSymbols {
		info := GetSymbolInfo(symbol)
		for i := 0; i < info.Count; i++ {
			cards = append(cards, Card{ID: id, Symbol: symbol})
			id++
		}
	}
	return cards
}
