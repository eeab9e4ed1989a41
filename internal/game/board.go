package game

import "errors"

// 盘面常量
const (
	// BoardSlots 格子数量（编号1-9）
	BoardSlots = 9
	// CenterSlot 中央格（首手限定，禁止手动弃置）
	CenterSlot = 9
	// LineCount 固定判定线数量
	LineCount = 8
)

// RefreshSlots 强制刷新格，按此固定顺序处理
var RefreshSlots = [2]int{3, 7}

// BoardLines 盘面的8条固定判定线
// 格子编号布局: 1,2,3 / 8,9,4 / 7,6,5
var BoardLines = [LineCount][3]int{
	{1, 2, 3}, // 上横排
	{8, 9, 4}, // 中横排
	{7, 6, 5}, // 下横排
	{1, 8, 7}, // 左纵列
	{2, 9, 6}, // 中纵列
	{3, 4, 5}, // 右纵列
	{1, 9, 5}, // 对角线（左上-右下）
	{3, 9, 7}, // 对角线（右上-左下）
}

// 盘面错误
var (
	ErrInvalidSlot        = errors.New("格子编号必须在1-9之间")
	ErrSlotOccupied       = errors.New("格子已被占用")
	ErrInvalidRefreshSlot = errors.New("强制刷新只作用于3号和7号格")
)

// CompletedLine 完成的判定线
// 当一条线的3个格子全部被占据且符号相同时，该线完成。
type CompletedLine struct {
	LineIndex int     `json:"line_index"`
	Slots     [3]int  `json:"slots"`
	Cards     [3]Card `json:"cards"`
	Symbol    Symbol  `json:"symbol"`
}

// Board 3x3盘面，每格最多放置一张卡牌
type Board struct {
	slots [BoardSlots + 1]*Card // 下标1-9，0不使用
}

// NewBoard 创建空盘面
func NewBoard() *Board {
	return &Board{}
}

// validSlot 格子编号是否合法
func validSlot(slot int) bool {
	return slot >= 1 && slot <= BoardSlots
}

// Place 在格子上放置卡牌，格子非法或已被占据时失败且不改变状态
func (b *Board) Place(slot int, card Card) error {
	if !validSlot(slot) {
		return ErrInvalidSlot
	}
	if b.slots[slot] != nil {
		return ErrSlotOccupied
	}
	c := card
	b.slots[slot] = &c
	return nil
}

// Remove 移除格子上的卡牌
func (b *Board) Remove(slot int) (Card, bool) {
	if !validSlot(slot) || b.slots[slot] == nil {
		return Card{}, false
	}
	card := *b.slots[slot]
	b.slots[slot] = nil
	return card, true
}

// CardAt 查看格子上的卡牌
func (b *Board) CardAt(slot int) (Card, bool) {
	if !validSlot(slot) || b.slots[slot] == nil {
		return Card{}, false
	}
	return *b.slots[slot], true
}

// IsSlotEmpty 格子是否为空（非法编号视为非空，调用方应先校验）
func (b *Board) IsSlotEmpty(slot int) bool {
	return validSlot(slot) && b.slots[slot] == nil
}

// EmptySlots 所有空格子（编号升序）
func (b *Board) EmptySlots() []int {
	var out []int
	for slot := 1; slot <= BoardSlots; slot++ {
		if b.slots[slot] == nil {
			out = append(out, slot)
		}
	}
	return out
}

// NonCenterEmptySlots 中央格以外的空格子
func (b *Board) NonCenterEmptySlots() []int {
	var out []int
	for slot := 1; slot <= BoardSlots; slot++ {
		if slot != CenterSlot && b.slots[slot] == nil {
			out = append(out, slot)
		}
	}
	return out
}

// OccupiedNonCenterSlots 中央格以外已被占据的格子（手动弃置候选）
func (b *Board) OccupiedNonCenterSlots() []int {
	var out []int
	for slot := 1; slot <= BoardSlots; slot++ {
		if slot != CenterSlot && b.slots[slot] != nil {
			out = append(out, slot)
		}
	}
	return out
}

// IsFull 盘面是否已满
func (b *Board) IsFull() bool {
	for slot := 1; slot <= BoardSlots; slot++ {
		if b.slots[slot] == nil {
			return false
		}
	}
	return true
}

// LowestEmptySlot 编号最小的空格子
func (b *Board) LowestEmptySlot() (int, bool) {
	for slot := 1; slot <= BoardSlots; slot++ {
		if b.slots[slot] == nil {
			return slot, true
		}
	}
	return 0, false
}

// CompletedLines 扫描全部8条判定线，返回当前所有完成的线
// 一次放置可能同时完成0条、1条或多条线。
func (b *Board) CompletedLines() []CompletedLine {
	var completed []CompletedLine
	for i, line := range BoardLines {
		c1 := b.slots[line[0]]
		c2 := b.slots[line[1]]
		c3 := b.slots[line[2]]
		if c1 == nil || c2 == nil || c3 == nil {
			continue
		}
		if c1.Symbol != c2.Symbol || c2.Symbol != c3.Symbol {
			continue
		}
		completed = append(completed, CompletedLine{
			LineIndex: i,
			Slots:     line,
			Cards:     [3]Card{*c1, *c2, *c3},
			Symbol:    c1.Symbol,
		})
	}
	return completed
}

// ForcedRefresh 强制刷新：原子地移除格子上的卡牌（若有）并放入新卡牌
// 仅对格子3和7有效，返回被移除的卡牌供调用方弃置。
func (b *Board) ForcedRefresh(slot int, newCard Card) (Card, bool, error) {
	if slot != RefreshSlots[0] && slot != RefreshSlots[1] {
		return Card{}, false, ErrInvalidRefreshSlot
	}
	removed, had := b.Remove(slot)
	c := newCard
	b.slots[slot] = &c
	return removed, had, nil
}

// CanPlaceOnCenter 卡牌是否允许放在中央格（首手校验：RAINBOW_7与SILVER_3禁止）
func (b *Board) CanPlaceOnCenter(card Card) bool {
	return card.Symbol != SymbolRainbow7 && card.Symbol != SymbolSilver3
}

// Clone 盘面的深拷贝（CPU试放探测用）
func (b *Board) Clone() *Board {
	clone := NewBoard()
	for slot := 1; slot <= BoardSlots; slot++ {
		if b.slots[slot] != nil {
			c := *b.slots[slot]
			clone.slots[slot] = &c
		}
	}
	return clone
}

// Snapshot 盘面快照：格子编号到卡牌的映射（空格子不出现）
func (b *Board) Snapshot() map[int]Card {
	out := make(map[int]Card)
	for slot := 1; slot <= BoardSlots; slot++ {
		if b.slots[slot] != nil {
			out[slot] = *b.slots[slot]
		}
	}
	return out
}
