package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"

	"github.com/yhkl-dev/rainplayer/domain"
)

func viewTracks(names ...string) []domain.Track {
	out := make([]domain.Track, len(names))
	for i, n := range names {
		out[i] = domain.NewTrack(domain.File{Name: n, Path: "/music/" + n, MediaType: "audio/mpeg"})
	}
	return out
}

func TestPlaylistViewRendersRows(t *testing.T) {
	pv := NewPlaylistView(8, nil)
	pv.OnReplaced(viewTracks("first.mp3", "a very long title.flac"))

	assert.Equal(t, 3, pv.Primitive().GetRowCount())
	assert.Equal(t, "first", pv.CellText(0, colTitle))
	assert.Equal(t, "a very …", pv.CellText(1, colTitle))
	assert.Equal(t, domain.UnknownArtist[:7]+"…", pv.CellText(0, colArtist))
	assert.Equal(t, "--:--", pv.CellText(0, colDuration))
	assert.Equal(t, -1, pv.Active())
}

func TestPlaylistViewUpdatesRow(t *testing.T) {
	pv := NewPlaylistView(40, nil)
	tracks := viewTracks("a.mp3", "b.mp3")
	pv.OnReplaced(tracks)

	updated := tracks[1]
	updated.Title = "Bee"
	updated.Artist = "Band"
	updated.Duration = 125
	pv.OnTrackUpdated(1, updated)
	pv.OnTrackUpdated(5, updated)

	assert.Equal(t, "a", pv.CellText(0, colTitle))
	assert.Equal(t, "Bee", pv.CellText(1, colTitle))
	assert.Equal(t, "Band", pv.CellText(1, colArtist))
	assert.Equal(t, "2:05", pv.CellText(1, colDuration))
}

func TestPlaylistViewMarksActiveRow(t *testing.T) {
	pv := NewPlaylistView(40, nil)
	pv.OnReplaced(viewTracks("a.mp3", "b.mp3", "c.mp3"))

	pv.OnCurrentChanged(0)
	assert.Equal(t, "▶ 1", pv.CellText(0, colIndex))

	pv.OnCurrentChanged(2)
	assert.Equal(t, "1", pv.CellText(0, colIndex))
	assert.Equal(t, "▶ 3", pv.CellText(2, colIndex))
	assert.Equal(t, 2, pv.Active())

	row, _ := pv.Primitive().GetSelection()
	assert.Equal(t, 3, row)

	pv.OnReplaced(nil)
	assert.Equal(t, 1, pv.Primitive().GetRowCount())
	assert.Equal(t, -1, pv.Active())
}

func TestPlaylistViewEnterPlaysSelection(t *testing.T) {
	played := -1
	pv := NewPlaylistView(40, func(index int) { played = index })
	pv.OnReplaced(viewTracks("a.mp3", "b.mp3"))
	pv.Primitive().Select(2, 0)

	handler := pv.Primitive().InputHandler()
	handler(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})

	assert.Equal(t, 1, played)
}
