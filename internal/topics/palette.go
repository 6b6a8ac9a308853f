// Package topics maps post categories to colour families and display names.
package topics

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Steps is the number of discrete intensity steps a non-empty cell can take.
const Steps = 4

// EmptyHex is the baseline colour of a day without posts (slate-100).
const EmptyHex = "#f1f5f9"

// Streak is the synthetic category the backend emits for a 7-day writing streak.
const Streak = "7일 연속 작성"

// Family is the colour and label used to render one category.
type Family struct {
	Key   string
	Name  string
	Hex   string
	Class string // utility class used by the web widget
}

// Palette is a read-only category lookup table. The zero value maps every
// category to the fallback family.
type Palette struct {
	families map[string]Family
	fallback Family
}

// Default is the process-wide palette.
var Default = NewPalette([]Family{
	{Key: "life", Name: "일상/라이프", Hex: "#e7e5e4", Class: "bg-stone-200"},
	{Key: "travel", Name: "여행", Hex: "#cbd5e1", Class: "bg-slate-300"},
	{Key: "food", Name: "음식/맛집", Hex: "#fdba74", Class: "bg-orange-300"},
	{Key: "review", Name: "리뷰", Hex: "#fda4af", Class: "bg-rose-300"},
	{Key: "tech", Name: "기술/개발", Hex: "#f87171", Class: "bg-red-400"},
	{Key: Streak, Name: Streak, Hex: "#fbbf24", Class: "bg-amber-400"},
}, Family{Hex: EmptyHex, Class: "bg-slate-100"})

// NewPalette builds a palette. Family keys are normalized.
func NewPalette(families []Family, fallback Family) Palette {
	m := make(map[string]Family, len(families))
	for _, f := range families {
		f.Key = Normalize(f.Key)
		m[f.Key] = f
	}
	return Palette{families: m, fallback: fallback}
}

// Normalize lowercases and trims a category name.
func Normalize(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// Lookup returns the family for category. Unknown categories get the
// fallback colour and keep their own name.
func (p Palette) Lookup(category string) Family {
	key := Normalize(category)
	if f, ok := p.families[key]; ok {
		return f
	}
	f := p.fallback
	f.Key = key
	f.Name = category
	if f.Hex == "" {
		f.Hex = EmptyHex
	}
	return f
}

// Known reports whether category has a dedicated colour family.
func (p Palette) Known(category string) bool {
	_, ok := p.families[Normalize(category)]
	return ok
}

// DisplayName returns the human label for category.
func (p Palette) DisplayName(category string) string {
	return p.Lookup(category).Name
}

// Hex returns the base colour for category.
func (p Palette) Hex(category string) string {
	return p.Lookup(category).Hex
}

// Shade returns the colour of a cell at the given intensity step, blended
// over background at step*25% opacity. Step 0 is the empty colour.
func (p Palette) Shade(category string, step int, background string) string {
	if step <= 0 {
		return EmptyHex
	}
	if step > Steps {
		step = Steps
	}
	base, err := colorful.Hex(p.Hex(category))
	if err != nil {
		return EmptyHex
	}
	bg, err := colorful.Hex(background)
	if err != nil {
		return base.Hex()
	}
	return bg.BlendRgb(base, float64(step)/Steps).Clamped().Hex()
}

// ContrastText picks a readable foreground for text drawn on hex.
func ContrastText(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "#ffffff"
	}
	brightness := (299*c.R + 587*c.G + 114*c.B) / 1000
	if brightness >= 0.6 {
		return "#0f172a"
	}
	return "#ffffff"
}
