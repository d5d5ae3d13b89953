// Package ui is the contract between the player and whatever draws its controls.
package ui

import "github.com/vidplay/vidplay/icon"

// Region is a named area of the controls that can be shown or hidden.
type Region string

const (
	Controls       Region = "controls"
	ProgressBar    Region = "progress"
	CaptionsButton Region = "captions-button"
	OptionsMenu    Region = "options-menu"
	Transport      Region = "transport"
	Seekers        Region = "seekers"
	CastButton     Region = "cast-button"
	CastOverlay    Region = "cast-overlay"
	PIPButton      Region = "pip-button"
)

// Button is a control carrying a glyph.
type Button string

const (
	PlayButton       Button = "play"
	MuteButton       Button = "mute"
	CastIcon         Button = "cast"
	PIPIcon          Button = "pip"
	FullscreenButton Button = "fullscreen"
	CaptionsIcon     Button = "captions"
)

// Slider is a control carrying a value.
type Slider string

const (
	VolumeSlider   Slider = "volume"
	ProgressSlider Slider = "progress"
)

// Surface is implemented by the layer that draws the controls.
// All calls happen on the player's event loop.
type Surface interface {
	Show(r Region)
	Hide(r Region)
	SetIcon(b Button, i icon.Icon)
	SetSlider(s Slider, value float64)
}

// Noop discards every call.
type Noop struct{}

func (Noop) Show(Region)               {}
func (Noop) Hide(Region)               {}
func (Noop) SetIcon(Button, icon.Icon) {}
func (Noop) SetSlider(Slider, float64) {}

// Recorder keeps the last value of everything it was told; tests use it
// to assert on the visible controls.
type Recorder struct {
	Visible map[Region]bool
	Icons   map[Button]icon.Icon
	Sliders map[Slider]float64
	// IconCalls counts SetIcon calls per button.
	IconCalls map[Button]int
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Visible:   map[Region]bool{},
		Icons:     map[Button]icon.Icon{},
		Sliders:   map[Slider]float64{},
		IconCalls: map[Button]int{},
	}
}

func (r *Recorder) Show(region Region) { r.Visible[region] = true }
func (r *Recorder) Hide(region Region) { r.Visible[region] = false }

func (r *Recorder) SetIcon(b Button, i icon.Icon) {
	r.Icons[b] = i
	r.IconCalls[b]++
}

func (r *Recorder) SetSlider(s Slider, value float64) { r.Sliders[s] = value }
