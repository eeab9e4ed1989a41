package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHand_AddKeepsCatalogOrder(t *testing.T) {
	hand := NewHand()
	hand.Add(Card{ID: 50, Symbol: SymbolReplay})
	hand.Add(Card{ID: 30, Symbol: SymbolBell})
	hand.Add(Card{ID: 0, Symbol: SymbolRainbow7})
	hand.Add(Card{ID: 14, Symbol: SymbolCherry})

	cards := hand.Cards()
	require.Len(t, cards, 4)
	assert.Equal(t, SymbolRainbow7, cards[0].Symbol)
	assert.Equal(t, SymbolCherry, cards[1].Symbol)
	assert.Equal(t, SymbolBell, cards[2].Symbol)
	assert.Equal(t, SymbolReplay, cards[3].Symbol)
}

func TestHand_RemoveByID(t *testing.T) {
	hand := NewHand()
	// 同符号多张副本，移除以ID判定
	hand.AddAll([]Card{bell(30), bell(31), bell(32)})

	assert.True(t, hand.Remove(bell(31)))
	assert.Equal(t, 2, hand.Size())
	assert.False(t, hand.Has(bell(31)))
	assert.True(t, hand.Has(bell(30)))

	// 未持有的卡牌移除失败
	assert.False(t, hand.Remove(bell(31)))
}

func TestHand_Find(t *testing.T) {
	hand := NewHand()
	hand.Add(cherry(14))

	card, ok := hand.Find(14)
	require.True(t, ok)
	assert.Equal(t, SymbolCherry, card.Symbol)

	_, ok = hand.Find(99)
	assert.False(t, ok)
}

func TestHand_Score(t *testing.T) {
	hand := NewHand()
	assert.Equal(t, 0, hand.Score())

	// RAINBOW_7计-1、CHERRY计2、BELL计1、REPLAY计0
	hand.AddAll([]Card{rainbow7(0), cherry(14), bell(30), {ID: 50, Symbol: SymbolReplay}})
	assert.Equal(t, 2, hand.Score())
}

func TestHand_CountBySymbol(t *testing.T) {
	hand := NewHand()
	hand.AddAll([]Card{rainbow7(0), rainbow7(1), silver3(8), bell(30)})

	assert.Equal(t, 2, hand.CountBySymbol(SymbolRainbow7))
	assert.Equal(t, 1, hand.CountBySymbol(SymbolSilver3))
	assert.Equal(t, 0, hand.CountBySymbol(SymbolCherry))
}
