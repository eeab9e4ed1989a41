package game

// Symbol 卡牌符号
type Symbol string

// 符号定义
const (
	SymbolRainbow7   Symbol = "RAINBOW_7"  // 彩虹7（集齐一线立即获胜）
	SymbolSilver3    Symbol = "SILVER_3"   // 银色3（清空牌库）
	SymbolCherry     Symbol = "CHERRY"     // 樱桃（从盘面取牌）
	SymbolWatermelon Symbol = "WATERMELON" // 西瓜（摸2张）
	SymbolBell       Symbol = "BELL"       // 铃铛（摸1张）
	SymbolReplay     Symbol = "REPLAY"     // 再玩（弃置最多3张）
)

// OrderedSymbols 符号的目录顺序（构建牌库与手牌排序用）
var OrderedSymbols = []Symbol{
	SymbolRainbow7,
	SymbolSilver3,
	SymbolCherry,
	SymbolWatermelon,
	SymbolBell,
	SymbolReplay,
}

// DeckSize 完整牌库的张数
const DeckSize = 63

// SymbolInfo 符号目录条目
type SymbolInfo struct {
	Symbol  Symbol `json:"symbol"`
	Count   int    `json:"count"`   // 完整牌库中的张数
	Score   int    `json:"score"`   // 计分值
	Display string `json:"display"` // 显示名称
	Image   string `json:"image"`   // 图片资源路径
}

// symbolCatalog 符号目录（不可变）
var symbolCatalog = map[Symbol]*SymbolInfo{
	SymbolRainbow7: {
		Symbol:  SymbolRainbow7,
		Count:   8,
		Score:   -1,
		Display: "Rainbow 7",
		Image:   "assets/rainbow_7.svg",
	},
	SymbolSilver3: {
		Symbol:  SymbolSilver3,
		Count:   5,
		Score:   -1,
		Display: "Silver 3",
		Image:   "assets/silver_3.svg",
	},
	SymbolCherry: {
		Symbol:  SymbolCherry,
		Count:   8,
		Score:   2,
		Display: "Cherry",
		Image:   "assets/cherry.svg",
	},
	SymbolWatermelon: {
		Symbol:  SymbolWatermelon,
		Count:   8,
		Score:   2,
		Display: "Watermelon",
		Image:   "assets/watermelon.svg",
	},
	SymbolBell: {
		Symbol:  SymbolBell,
		Count:   21,
		Score:   1,
		Display: "Bell",
		Image:   "assets/bell.svg",
	},
	SymbolReplay: {
		Symbol:  SymbolReplay,
		Count:   13,
		Score:   0,
		Display: "REPLAY",
		Image:   "assets/replay.svg",
	},
}

// symbolOrder 符号到目录顺序索引的映射
var symbolOrder = func() map[Symbol]int {
	m := make(map[Symbol]int, len(OrderedSymbols))
	for i, s := range OrderedSymbols {
		m[s] = i
	}
	return m
}()

// GetSymbolInfo 获取符号目录条目，未知符号返回nil
func GetSymbolInfo(s Symbol) *SymbolInfo {
	return symbolCatalog[s]
}

// IsValid 检查符号是否在目录中
func (s Symbol) IsValid() bool {
	_, ok := symbolCatalog[s]
	return ok
}

// Score 符号的计分值
func (s Symbol) Score() int {
	if info, ok := symbolCatalog[s]; ok {
		return info.Score
	}
	return 0
}

// Display 符号的显示名称
func (s Symbol) Display() string {
	if info, ok := symbolCatalog[s]; ok {
		return info.Display
	}
	return string(s)
}
