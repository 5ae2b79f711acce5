package ui

import (
	"math/rand/v2"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/tview"
)

var rainGlyphs = []rune("ﾊﾐﾋｰｳｼﾅﾓﾆｻﾜﾂｵﾘｱﾎﾃﾏｹﾒｴｶｷﾑﾕﾗｾﾈｽﾀﾇﾍ01∞")

const (
	rainReset = 0.975 // a drop past the bottom restarts when a roll exceeds this
	rainFade  = 0.82
	rainShade = 16
)

// rainField is the simulation behind Rain: one falling drop per column
// leaving a fading trail.
type rainField struct {
	cols, rows int
	drops      []int
	glyphs     [][]rune
	heat       [][]float64
	rnd        *rand.Rand
}

func newRainField(rnd *rand.Rand) *rainField {
	return &rainField{rnd: rnd}
}

// resize adapts the field to the screen; surviving columns keep their drops
func (f *rainField) resize(cols, rows int) {
	if cols == f.cols && rows == f.rows {
		return
	}
	drops := make([]int, cols)
	for i := range drops {
		drops[i] = 1
		if i < len(f.drops) {
			drops[i] = f.drops[i]
		}
	}
	f.drops = drops
	f.glyphs = make([][]rune, rows)
	f.heat = make([][]float64, rows)
	for r := range rows {
		f.glyphs[r] = make([]rune, cols)
		f.heat[r] = make([]float64, cols)
	}
	f.cols, f.rows = cols, rows
}

func (f *rainField) step() {
	for r := range f.heat {
		for c := range f.heat[r] {
			f.heat[r][c] *= rainFade
		}
	}
	for i := range f.drops {
		if row := f.drops[i] - 1; row >= 0 && row < f.rows {
			f.glyphs[row][i] = rainGlyphs[f.rnd.IntN(len(rainGlyphs))]
			f.heat[row][i] = 1
		}
		if f.drops[i] > f.rows && f.rnd.Float64() > rainReset {
			f.drops[i] = 0
		}
		f.drops[i]++
	}
}

// Rain draws the matrix rain backdrop
type Rain struct {
	*tview.Box
	field   *rainField
	palette [rainShade]tcell.Color
}

// NewRain creates the rain primitive
func NewRain() *Rain {
	r := &Rain{
		Box:   tview.NewBox(),
		field: newRainField(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))),
	}

	bg, _ := colorful.Hex("#0a0a0f")
	neon, _ := colorful.Hex("#39ff14")
	for i := range r.palette {
		c := bg.BlendLab(neon, float64(i)/float64(rainShade-1)).Clamped()
		red, green, blue := c.RGB255()
		r.palette[i] = tcell.NewRGBColor(int32(red), int32(green), int32(blue))
	}
	return r
}

// Step advances the animation by one frame
func (r *Rain) Step() {
	r.field.step()
}

// Draw draws this primitive onto the screen
func (r *Rain) Draw(screen tcell.Screen) {
	r.Box.DrawForSubclass(screen, r)
	x, y, width, height := r.GetInnerRect()
	r.field.resize(width, height)

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			h := r.field.heat[row][col]
			if h < 1.0/rainShade {
				continue
			}
			shade := int(h * float64(rainShade-1))
			style := tcell.StyleDefault.Foreground(r.palette[shade])
			if h == 1 {
				style = style.Bold(true)
			}
			screen.SetContent(x+col, y+row, r.field.glyphs[row][col], nil, style)
		}
	}
}
