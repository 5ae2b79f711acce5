package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/yhkl-dev/rainplayer/domain"
)

// FormatTime converts seconds to M:SS, truncating both parts.
// Values that are not a number yield "0:00".
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	minutes := int(seconds / 60)
	secs := int(math.Mod(seconds, 60))
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FormatRowDuration is FormatTime for playlist rows, with a placeholder while unknown
func FormatRowDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "--:--"
	}
	return FormatTime(seconds)
}

// Truncate shortens s to at most width terminal cells
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// CreateProgressBar creates a visual progress bar
func CreateProgressBar(progress float64, width int) string {
	progress = math.Max(0, math.Min(1, progress))
	filledWidth := int(progress * float64(width))

	var bar strings.Builder
	bar.WriteString("[#39ff14]")
	bar.WriteString(strings.Repeat("▓", filledWidth))
	bar.WriteString("[darkgray]")
	bar.WriteString(strings.Repeat("░", width-filledWidth))
	return bar.String()
}

// CreateVolumeBar renders the volume as a short bar followed by the percentage
func CreateVolumeBar(volume float64, width int) string {
	volume = math.Max(0, math.Min(1, volume))
	filled := int(math.Round(volume * float64(width)))
	return fmt.Sprintf("[#39ff14]%s[darkgray]%s [white]%3.0f%%",
		strings.Repeat("■", filled), strings.Repeat("□", width-filled), volume*100)
}

// CreateTimeText creates the current/total time display
func CreateTimeText(position, duration float64) string {
	return fmt.Sprintf("[white]%s [darkgray]/ [white]%s", FormatTime(position), FormatTime(duration))
}

// FormatTrackInfo creates the now playing display for a track
func FormatTrackInfo(index int, track domain.Track, state domain.PlaybackState, total int) string {
	if index < 0 {
		return CreateWelcomeMessage()
	}

	badge := "[yellow]❚❚ PAUSED"
	if state == domain.StatePlaying {
		badge = "[#39ff14]▶ PLAYING"
	}

	return fmt.Sprintf(`
[darkgray]track %d/%d  %s

[white::b]%s[-:-:-]
[gray]%s

[darkgray]file  %s
[darkgray]type  %s  size %.1f MB`,
		index+1, total, badge,
		tview.Escape(track.Title), tview.Escape(track.Artist),
		tview.Escape(track.File.Name), track.File.MediaType,
		float64(track.File.Size)/1024/1024)
}

// CreateWelcomeMessage creates the welcome screen message
func CreateWelcomeMessage() string {
	return `
[#39ff14] Welcome to rainplayer
[darkgray]No tracks loaded

[gray]  o      open files or folders
[gray]  SPACE  play/pause
[gray]  n/p    next/prev
[gray]  ?      help
[gray]  ESC    exit`
}

// renderBars draws heights (0-1) as vertical bars rows high
func renderBars(heights []float64, rows int) string {
	if len(heights) == 0 || rows <= 0 {
		return ""
	}
	const levels = " ▁▂▃▄▅▆▇█"
	blocks := []rune(levels)
	steps := float64(len(blocks) - 1)

	var sb strings.Builder
	sb.WriteString("[#39ff14]")
	for r := 0; r < rows; r++ {
		// rows are drawn top down, floor is the cell's distance from the bottom
		floor := float64(rows - 1 - r)
		for i, h := range heights {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fill := math.Max(0, math.Min(1, h*float64(rows)-floor))
			b := blocks[int(math.Round(fill*steps))]
			sb.WriteRune(b)
			sb.WriteRune(b)
		}
		if r < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
