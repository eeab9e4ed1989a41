package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identitySource 令Fisher-Yates洗牌保持目录顺序（Intn恒返回上界-1，即不交换）
type identitySource struct{}

func (identitySource) Intn(n int) int { return n - 1 }

func TestNewShuffledDeck_Composition(t *testing.T) {
	deck := NewShuffledDeck(NewSeededRandomSource(42))
	require.Equal(t, DeckSize, deck.Size())

	counts := make(map[Symbol]int)
	for {
		card, ok := deck.Draw()
		if !ok {
			break
		}
		counts[card.Symbol]++
	}

	for _, symbol := range OrderedSymbols {
		info := GetSymbolInfo(symbol)
		assert.Equal(t, info.Count, counts[symbol], "符号%s的张数不符", symbol)
	}
	assert.True(t, deck.IsEmpty())
}

func TestNewShuffledDeck_SeededDeterminism(t *testing.T) {
	d1 := NewShuffledDeck(NewSeededRandomSource(7))
	d2 := NewShuffledDeck(NewSeededRandomSource(7))
	assert.Equal(t, d1.Cards(), d2.Cards(), "相同种子必须得到相同的洗牌结果")
}

func TestNewShuffledDeck_IdentityOrder(t *testing.T) {
	deck := NewShuffledDeck(identitySource{})

	first, ok := deck.Draw()
	require.True(t, ok)
	assert.Equal(t, 0, first.ID)
	assert.Equal(t, SymbolRainbow7, first.Symbol)

	second, ok := deck.Draw()
	require.True(t, ok)
	assert.Equal(t, 1, second.ID)
}

func TestDeck_DrawExhaustion(t *testing.T) {
	deck := &Deck{cards: []Card{{ID: 30, Symbol: SymbolBell}}}

	card, ok := deck.Draw()
	require.True(t, ok)
	assert.Equal(t, 30, card.ID)

	// 牌库耗尽返回ok=false而非错误
	_, ok = deck.Draw()
	assert.False(t, ok)
	assert.True(t, deck.IsEmpty())
	assert.Equal(t, 0, deck.Size())
}

func TestDeck_DrainAll(t *testing.T) {
	deck := &Deck{cards: []Card{
		{ID: 30, Symbol: SymbolBell},
		{ID: 50, Symbol: SymbolReplay},
		{ID: 13, Symbol: SymbolCherry},
	}}

	drained := deck.DrainAll()
	assert.Len(t, drained, 3)
	assert.True(t, deck.IsEmpty())
	assert.Empty(t, deck.DrainAll())
}
