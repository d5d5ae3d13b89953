package tui

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/vidplay/vidplay/icon"
	"github.com/vidplay/vidplay/media"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/ui"
)

const maxEvents = 4

// Frame is everything the view needs, copied out of the Surface.
type Frame struct {
	Visible map[ui.Region]bool
	Icons   map[ui.Button]icon.Icon
	Sliders map[ui.Slider]float64
	State   state.PlayerState
	Events  []string
}

// Surface is the ui.Surface the player draws on. It is written from the
// player's event loop and read by the TUI; writes never block.
type Surface struct {
	mu      sync.Mutex
	frame   Frame
	changed chan struct{}
}

var _ ui.Surface = (*Surface)(nil)

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{
		frame: Frame{
			Visible: map[ui.Region]bool{},
			Icons:   map[ui.Button]icon.Icon{},
			Sliders: map[ui.Slider]float64{},
			State:   state.Default(),
		},
		changed: make(chan struct{}, 1),
	}
}

func (s *Surface) update(fn func(f *Frame)) {
	s.mu.Lock()
	fn(&s.frame)
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *Surface) Show(r ui.Region) { s.update(func(f *Frame) { f.Visible[r] = true }) }
func (s *Surface) Hide(r ui.Region) { s.update(func(f *Frame) { f.Visible[r] = false }) }

func (s *Surface) SetIcon(b ui.Button, i icon.Icon) {
	s.update(func(f *Frame) { f.Icons[b] = i })
}

func (s *Surface) SetSlider(name ui.Slider, value float64) {
	s.update(func(f *Frame) { f.Sliders[name] = value })
}

// SetState records the latest player state.
func (s *Surface) SetState(ps state.PlayerState) {
	s.update(func(f *Frame) { f.State = ps })
}

// Event records a media event for the activity line.
func (s *Surface) Event(e media.Event, ps state.PlayerState) {
	s.update(func(f *Frame) {
		f.State = ps
		f.Events = append(f.Events, fmt.Sprintf("%s (%s)", e, ps.UIState))
		if len(f.Events) > maxEvents {
			f.Events = f.Events[len(f.Events)-maxEvents:]
		}
	})
}

// Changed fires after one or more updates. Updates that happen while a
// signal is pending are folded into it.
func (s *Surface) Changed() <-chan struct{} {
	return s.changed
}

// Snapshot copies the current frame.
func (s *Surface) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Frame{
		Visible: lo.Assign(s.frame.Visible),
		Icons:   lo.Assign(s.frame.Icons),
		Sliders: lo.Assign(s.frame.Sliders),
		State:   s.frame.State,
		Events:  append([]string{}, s.frame.Events...),
	}
}
