package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bell(id int) Card       { return Card{ID: id, Symbol: SymbolBell} }
func cherry(id int) Card     { return Card{ID: id, Symbol: SymbolCherry} }
func rainbow7(id int) Card   { return Card{ID: id, Symbol: SymbolRainbow7} }
func silver3(id int) Card    { return Card{ID: id, Symbol: SymbolSilver3} }
func watermelon(id int) Card { return Card{ID: id, Symbol: SymbolWatermelon} }

func TestBoard_Place(t *testing.T) {
	board := NewBoard()

	require.NoError(t, board.Place(1, bell(30)))

	card, ok := board.CardAt(1)
	require.True(t, ok)
	assert.Equal(t, 30, card.ID)

	// 已占据的格子放置失败且不改变状态
	err := board.Place(1, bell(31))
	assert.ErrorIs(t, err, ErrSlotOccupied)
	card, _ = board.CardAt(1)
	assert.Equal(t, 30, card.ID)

	assert.ErrorIs(t, board.Place(0, bell(32)), ErrInvalidSlot)
	assert.ErrorIs(t, board.Place(10, bell(32)), ErrInvalidSlot)
}

func TestBoard_RemoveAndEmptySlots(t *testing.T) {
	board := NewBoard()
	require.NoError(t, board.Place(5, cherry(14)))

	card, ok := board.Remove(5)
	require.True(t, ok)
	assert.Equal(t, 14, card.ID)

	_, ok = board.Remove(5)
	assert.False(t, ok)

	assert.Len(t, board.EmptySlots(), BoardSlots)
	assert.False(t, board.IsFull())
}

func TestBoard_NonCenterHelpers(t *testing.T) {
	board := NewBoard()
	require.NoError(t, board.Place(2, bell(30)))
	require.NoError(t, board.Place(CenterSlot, bell(31)))

	assert.NotContains(t, board.NonCenterEmptySlots(), CenterSlot)
	assert.Equal(t, []int{2}, board.OccupiedNonCenterSlots())
}

func TestBoard_CompletedLines(t *testing.T) {
	board := NewBoard()

	// 上横排与左纵列共享格子1，同时完成两条线
	for i, slot := range []int{1, 2, 3, 8, 7} {
		require.NoError(t, board.Place(slot, bell(30+i)))
	}

	lines := board.CompletedLines()
	require.Len(t, lines, 2)
	assert.Equal(t, 0, lines[0].LineIndex)
	assert.Equal(t, [3]int{1, 2, 3}, lines[0].Slots)
	assert.Equal(t, 3, lines[1].LineIndex)
	assert.Equal(t, [3]int{1, 8, 7}, lines[1].Slots)
	for _, line := range lines {
		assert.Equal(t, SymbolBell, line.Symbol)
	}
}

func TestBoard_CompletedLines_MixedSymbols(t *testing.T) {
	board := NewBoard()
	require.NoError(t, board.Place(1, bell(30)))
	require.NoError(t, board.Place(2, bell(31)))
	require.NoError(t, board.Place(3, cherry(14)))

	assert.Empty(t, board.CompletedLines())
}

func TestBoard_ForcedRefresh(t *testing.T) {
	board := NewBoard()
	require.NoError(t, board.Place(3, cherry(14)))

	// 占据的刷新格：旧卡被替换并返回
	removed, had, err := board.ForcedRefresh(3, bell(30))
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, 14, removed.ID)
	card, _ := board.CardAt(3)
	assert.Equal(t, 30, card.ID)

	// 空的刷新格：直接放入新卡
	_, had, err = board.ForcedRefresh(7, bell(31))
	require.NoError(t, err)
	assert.False(t, had)

	// 刷新只作用于格子3与7
	_, _, err = board.ForcedRefresh(5, bell(32))
	assert.ErrorIs(t, err, ErrInvalidRefreshSlot)
}

func TestBoard_CanPlaceOnCenter(t *testing.T) {
	board := NewBoard()
	assert.False(t, board.CanPlaceOnCenter(rainbow7(0)))
	assert.False(t, board.CanPlaceOnCenter(silver3(8)))
	assert.True(t, board.CanPlaceOnCenter(bell(30)))
	assert.True(t, board.CanPlaceOnCenter(cherry(14)))
}

func TestBoard_CloneIndependence(t *testing.T) {
	board := NewBoard()
	require.NoError(t, board.Place(1, bell(30)))

	clone := board.Clone()
	require.NoError(t, clone.Place(2, bell(31)))
	clone.Remove(1)

	_, ok := board.CardAt(1)
	assert.True(t, ok, "修改副本不能影响原盘面")
	assert.True(t, board.IsSlotEmpty(2))
}

func TestBoard_LowestEmptySlot(t *testing.T) {
	board := NewBoard()
	slot, ok := board.LowestEmptySlot()
	require.True(t, ok)
	assert.Equal(t, 1, slot)

	for s := 1; s <= BoardSlots; s++ {
		require.NoError(t, board.Place(s, bell(30+s)))
	}
	assert.True(t, board.IsFull())
	_, ok = board.LowestEmptySlot()
	assert.False(t, ok)
}
