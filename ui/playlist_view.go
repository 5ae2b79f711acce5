package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/yhkl-dev/rainplayer/domain"
)

const (
	colIndex = iota
	colTitle
	colArtist
	colDuration
)

// PlaylistView renders the playlist as a table and keeps the active row marked
type PlaylistView struct {
	table    *tview.Table
	maxWidth int
	active   int
	tracks   []domain.Track
	onPlay   func(index int)
}

// NewPlaylistView creates the table. onPlay is called with the track index
// when a row is activated with Enter or a click.
func NewPlaylistView(maxWidth int, onPlay func(index int)) *PlaylistView {
	pv := &PlaylistView{
		maxWidth: maxWidth,
		active:   -1,
		onPlay:   onPlay,
	}

	pv.table = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	pv.table.SetBorder(true).
		SetTitle(" Playlist ").
		SetBorderColor(tcell.ColorDarkGreen)
	pv.table.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorDarkGreen).
		Foreground(tcell.ColorWhite))

	pv.table.SetSelectedFunc(func(row, column int) {
		if row > 0 && pv.onPlay != nil {
			pv.onPlay(row - 1)
		}
	})
	pv.table.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		if action != tview.MouseLeftClick {
			return action, event
		}
		row, _ := pv.table.CellAt(event.Position())
		if row > 0 && row <= len(pv.tracks) && pv.onPlay != nil {
			pv.onPlay(row - 1)
		}
		return action, event
	})

	pv.setupHeaders()
	return pv
}

// Primitive returns the table for layout
func (pv *PlaylistView) Primitive() *tview.Table {
	return pv.table
}

// SetMaxWidth changes the title/artist column width and re-renders
func (pv *PlaylistView) SetMaxWidth(width int) {
	pv.maxWidth = width
	for i := range pv.tracks {
		pv.renderRow(i)
	}
}

func (pv *PlaylistView) setupHeaders() {
	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorGray).Attributes(tcell.AttrBold)
	headers := []string{"#", "Title", "Artist", "Time"}
	for col, h := range headers {
		pv.table.SetCell(0, col, tview.NewTableCell(h).
			SetStyle(headerStyle).
			SetSelectable(false))
	}
}

// OnReplaced rebuilds every row
func (pv *PlaylistView) OnReplaced(tracks []domain.Track) {
	pv.tracks = tracks
	pv.active = -1
	pv.table.Clear()
	pv.setupHeaders()
	for i := range tracks {
		pv.renderRow(i)
	}
	pv.table.Select(1, 0)
	pv.table.ScrollToBeginning()
	pv.table.SetTitle(fmt.Sprintf(" Playlist (%d) ", len(tracks)))
}

// OnTrackUpdated re-renders a single row
func (pv *PlaylistView) OnTrackUpdated(index int, track domain.Track) {
	if index < 0 || index >= len(pv.tracks) {
		return
	}
	pv.tracks[index] = track
	pv.renderRow(index)
}

// OnCurrentChanged moves the active marker
func (pv *PlaylistView) OnCurrentChanged(index int) {
	prev := pv.active
	pv.active = index
	if prev >= 0 && prev < len(pv.tracks) {
		pv.renderRow(prev)
	}
	if index >= 0 && index < len(pv.tracks) {
		pv.renderRow(index)
		pv.table.Select(index+1, 0)
	}
}

// Active returns the index of the marked row, -1 if none
func (pv *PlaylistView) Active() int {
	return pv.active
}

// SelectFirst moves the cursor to the first track
func (pv *PlaylistView) SelectFirst() {
	if len(pv.tracks) > 0 {
		pv.table.Select(1, 0)
		pv.table.ScrollToBeginning()
	}
}

// SelectLast moves the cursor to the last track
func (pv *PlaylistView) SelectLast() {
	if len(pv.tracks) > 0 {
		pv.table.Select(len(pv.tracks), 0)
		pv.table.ScrollToEnd()
	}
}

// CellText returns the text shown at a playlist index and column
func (pv *PlaylistView) CellText(index, col int) string {
	cell := pv.table.GetCell(index+1, col)
	if cell == nil {
		return ""
	}
	return cell.Text
}

func (pv *PlaylistView) renderRow(i int) {
	track := pv.tracks[i]
	row := i + 1
	rowStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)

	marker := fmt.Sprintf("%d", i+1)
	titleColor := tcell.ColorWhite
	if i == pv.active {
		marker = "▶ " + marker
		titleColor = tcell.NewHexColor(0x39ff14)
	}

	pv.table.SetCell(row, colIndex, tview.NewTableCell(marker).
		SetStyle(rowStyle.Foreground(tcell.ColorLightGreen)).
		SetAlign(tview.AlignRight))
	pv.table.SetCell(row, colTitle, tview.NewTableCell(Truncate(track.Title, pv.maxWidth)).
		SetStyle(rowStyle.Foreground(titleColor)).
		SetExpansion(2))
	pv.table.SetCell(row, colArtist, tview.NewTableCell(Truncate(track.Artist, pv.maxWidth)).
		SetStyle(rowStyle.Foreground(tcell.ColorGray)).
		SetExpansion(1))
	pv.table.SetCell(row, colDuration, tview.NewTableCell(FormatRowDuration(track.Duration)).
		SetStyle(rowStyle.Foreground(tcell.ColorGray)).
		SetAlign(tview.AlignRight))
}
