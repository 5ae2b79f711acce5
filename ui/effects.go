package ui

import (
	"math/rand/v2"
	"unicode"
)

// glitch glyphs avoid '[' and ']' so frames stay valid tview color markup
var glitchGlyphs = []rune("!<>-_/\\=+*^?#%&@ﾊﾐﾋｰｳｼ01")

// Glitch produces corrupted frames of a fixed text
type Glitch struct {
	text []rune
	rnd  *rand.Rand
}

// NewGlitch creates a glitch effect for text
func NewGlitch(text string, rnd *rand.Rand) *Glitch {
	return &Glitch{text: []rune(text), rnd: rnd}
}

// Text returns the clean text
func (g *Glitch) Text() string {
	return string(g.text)
}

// Frame replaces each visible character with a random glyph with the given probability
func (g *Glitch) Frame(probability float64) string {
	out := make([]rune, len(g.text))
	for i, r := range g.text {
		if !unicode.IsSpace(r) && g.rnd.Float64() < probability {
			r = glitchGlyphs[g.rnd.IntN(len(glitchGlyphs))]
		}
		out[i] = r
	}
	return string(out)
}

// Visualizer holds the heights of the spectrum bars. Heights are random
// between 20% and 100%; there is no audio analysis behind them.
type Visualizer struct {
	heights []float64
	rnd     *rand.Rand
}

// NewVisualizer creates n bars at their minimum height
func NewVisualizer(n int, rnd *rand.Rand) *Visualizer {
	v := &Visualizer{rnd: rnd}
	v.Resize(n)
	return v
}

// Resize changes the number of bars
func (v *Visualizer) Resize(n int) {
	if n < 0 {
		n = 0
	}
	heights := make([]float64, n)
	for i := range heights {
		heights[i] = 0.2
		if i < len(v.heights) {
			heights[i] = v.heights[i]
		}
	}
	v.heights = heights
}

// Step rolls new heights
func (v *Visualizer) Step() {
	for i := range v.heights {
		v.heights[i] = 0.2 + v.rnd.Float64()*0.8
	}
}

// Heights returns the current bar heights
func (v *Visualizer) Heights() []float64 {
	return v.heights
}

// Render draws the bars rows high
func (v *Visualizer) Render(rows int) string {
	return renderBars(v.heights, rows)
}
