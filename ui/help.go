package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpText = `[yellow::b]Keyboard Shortcuts[-:-:-]

[#39ff14]Playback Controls:[-]
  [white]Space[-]       Play/Pause
  [white]Enter[-]       Play selected track
  [white]n / l / →[-]   Next track
  [white]p / h / ←[-]   Previous track
  [white][ / ][-]       Seek back/forward
  [white]+ / -[-]       Volume up/down

[#39ff14]Navigation:[-]
  [white]j / k[-]       Move in the playlist
  [white]gg / G[-]      First/last track
  [white]o[-]           Open files, folders or globs
  [white]?[-]           Show this help panel

[#39ff14]Mouse:[-]
  Click a track to play it, click the progress
  or volume bar to seek or set the volume.

[#39ff14]General:[-]
  [white]ESC / q[-]     Close modal / Exit program
  [white]Ctrl+C[-]      Exit program

[yellow]Press ESC or ? to close this help panel[-]
`

// HelpView represents the keyboard shortcuts help interface
type HelpView struct {
	app       *App
	container *tview.Flex
	textView  *tview.TextView
	isActive  bool
}

// NewHelpView creates a new help view
func NewHelpView(app *App) *HelpView {
	hv := &HelpView{
		app: app,
	}

	hv.textView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true).
		SetText(helpText)

	hv.container = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(hv.textView, 0, 1, true)

	hv.container.SetBorder(true).
		SetTitle(" Help (ESC to close) ").
		SetBorderColor(tcell.ColorYellow)

	return hv
}

// Show displays the help view as a modal over the player
func (hv *HelpView) Show() {
	modal := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexColumn).
			AddItem(nil, 0, 1, false).
			AddItem(hv.container, 56, 0, true).
			AddItem(nil, 0, 1, false), 28, 0, true).
		AddItem(nil, 0, 1, false)

	hv.isActive = true
	hv.app.tviewApp.SetRoot(modal, true)
	hv.app.tviewApp.SetFocus(hv.textView)
}

// Close hides the help view
func (hv *HelpView) Close() {
	hv.isActive = false
	hv.app.tviewApp.SetRoot(hv.app.rootFlex, true)
	hv.app.tviewApp.SetFocus(hv.app.playlistView.Primitive())
}

// IsActive returns whether the help view is active
func (hv *HelpView) IsActive() bool {
	return hv.isActive
}
