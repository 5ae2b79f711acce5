package ui

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testField(cols, rows int) *rainField {
	f := newRainField(rand.New(rand.NewPCG(1, 2)))
	f.resize(cols, rows)
	return f
}

func TestRainFieldFalls(t *testing.T) {
	f := testField(3, 5)
	assert.Equal(t, []int{1, 1, 1}, f.drops)

	f.step()
	assert.Equal(t, []int{2, 2, 2}, f.drops)
	for c := 0; c < 3; c++ {
		assert.Equal(t, 1.0, f.heat[0][c])
		assert.NotZero(t, f.glyphs[0][c])
	}

	f.step()
	assert.Equal(t, 1.0, f.heat[1][0])
	assert.InDelta(t, rainFade, f.heat[0][0], 1e-9)

	// no drop restarts before it has passed the bottom row
	for i := 0; i < 3; i++ {
		f.step()
	}
	assert.Equal(t, []int{6, 6, 6}, f.drops)
}

func TestRainFieldDropsRestart(t *testing.T) {
	f := testField(4, 3)
	restarted := make([]bool, 4)

	for i := 0; i < 2000; i++ {
		before := append([]int(nil), f.drops...)
		f.step()
		for c := range f.drops {
			if f.drops[c] < before[c] {
				assert.Equal(t, 1, f.drops[c])
				assert.Greater(t, before[c], 3)
				restarted[c] = true
			}
		}
	}
	assert.Equal(t, []bool{true, true, true, true}, restarted)
}

func TestRainFieldResizeKeepsDrops(t *testing.T) {
	f := testField(2, 4)
	f.step()
	f.step()

	f.resize(4, 6)
	require.Len(t, f.drops, 4)
	assert.Equal(t, []int{3, 3, 1, 1}, f.drops)
	assert.Len(t, f.heat, 6)
	assert.Len(t, f.glyphs[5], 4)

	f.resize(1, 6)
	assert.Equal(t, []int{3}, f.drops)
}
