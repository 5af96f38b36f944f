package scene

// Palette maps a category to its fill colour.
type Palette map[string]string

// CategoryOrder is the legend order of the built-in palette.
var CategoryOrder = []string{
	"快乐", "关心", "自信", "高能量", "低能量", "脆弱", "冷漠", "害怕", "悲伤", "愤怒", "困惑",
}

// DefaultPalette returns the fixed category colours.
func DefaultPalette() Palette {
	return Palette{
		"快乐":  "#FF6B6B",
		"关心":  "#4ECDC4",
		"自信":  "#45B7D1",
		"高能量": "#96CEB4",
		"低能量": "#FFEAA7",
		"脆弱":  "#DDA0DD",
		"冷漠":  "#A9A9A9",
		"害怕":  "#FFA726",
		"悲伤":  "#6A5ACD",
		"愤怒":  "#FF5252",
		"困惑":  "#26C6DA",
	}
}

// Lookup returns the colour for category. Unknown categories have no colour;
// that is not an error.
func (p Palette) Lookup(category string) (string, bool) {
	c, ok := p[category]
	return c, ok
}

// Fill returns the colour for category or "" when it has none.
func (p Palette) Fill(category string) string {
	return p[category]
}

// LegendEntry is one row of a category legend.
type LegendEntry struct {
	Category string
	Color    string
}

// Legend lists the palette in CategoryOrder followed by any extra entries
// in the order given by extra.
func (p Palette) Legend(extra []string) []LegendEntry {
	seen := make(map[string]bool, len(p))
	var out []LegendEntry
	for _, cat := range CategoryOrder {
		if c, ok := p[cat]; ok {
			out = append(out, LegendEntry{Category: cat, Color: c})
			seen[cat] = true
		}
	}
	for _, cat := range extra {
		if seen[cat] {
			continue
		}
		if c, ok := p[cat]; ok {
			out = append(out, LegendEntry{Category: cat, Color: c})
			seen[cat] = true
		}
	}
	return out
}
