package mpvplayer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wildeyedskies/go-mpv/mpv"
)

type Mpvplayer struct {
	*mpv.Mpv
	EventChannel chan *mpv.Event
}

// New wraps an initialized instance and starts pumping its events
func New(ctx context.Context, m *mpv.Mpv) *Mpvplayer {
	return &Mpvplayer{
		Mpv:          m,
		EventChannel: eventListener(ctx, m),
	}
}

func (m *Mpvplayer) GetProgress() (float64, error) {
	return m.getDouble("time-pos")
}

func (m *Mpvplayer) GetDuration() (float64, error) {
	return m.getDouble("duration")
}

func (m *Mpvplayer) getDouble(name string) (float64, error) {
	v, err := m.GetProperty(name, mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: unexpected type %T", name, v)
	}
	return f, nil
}

// LoadPaused replaces the current file with path without starting playback
func (m *Mpvplayer) LoadPaused(path string) error {
	if err := m.SetPause(true); err != nil {
		return err
	}
	return m.Command([]string{"loadfile", path, "replace"})
}

func (m *Mpvplayer) SetPause(paused bool) error {
	value := "no"
	if paused {
		value = "yes"
	}
	return m.Command([]string{"set", "pause", value})
}

// SeekAbsolute jumps to seconds from the start of the file
func (m *Mpvplayer) SeekAbsolute(seconds float64) error {
	return m.Command([]string{"seek", strconv.FormatFloat(seconds, 'f', 3, 64), "absolute"})
}

// SetVolume sets the volume in percent, 0 - 100
func (m *Mpvplayer) SetVolume(percent float64) error {
	return m.Command([]string{"set", "volume", strconv.FormatFloat(percent, 'f', 1, 64)})
}

// Stop unloads the current file, leaving mpv idle
func (m *Mpvplayer) Stop() error {
	return m.Command([]string{"stop"})
}

func CreateMPVInstance() (*mpv.Mpv, error) {
	mpvInstance := mpv.Create()

	mpvInstance.SetOptionString("audio-display", "no")
	mpvInstance.SetOptionString("video", "no")
	mpvInstance.SetOptionString("idle", "yes")

	err := mpvInstance.Initialize()
	if err != nil {
		mpvInstance.TerminateDestroy()
		return nil, err
	}
	return mpvInstance, nil
}

// eventListener creates an event listener for MPV events
func eventListener(ctx context.Context, m *mpv.Mpv) chan *mpv.Event {
	c := make(chan *mpv.Event)
	go func() {
		defer close(c)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				e := m.WaitEvent(1)
				if e == nil || e.Event_Id == mpv.EVENT_NONE {
					time.Sleep(10 * time.Millisecond)
					continue
				}
				select {
				case c <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return c
}
