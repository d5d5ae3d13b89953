// Package media defines the contract of the element that renders playback.
package media

import (
	"context"

	"github.com/samber/mo"
)

// Event is the unified media lifecycle event.
type Event string

const (
	LoadStart      Event = "loadstart"
	LoadedMetadata Event = "loadedmetadata"
	LoadedData     Event = "loadeddata"
	CanPlay        Event = "canplay"
	CanPlayThrough Event = "canplaythrough"
	Play           Event = "play"
	Playing        Event = "playing"
	Pause          Event = "pause"
	Progress       Event = "progress"
	TimeUpdate     Event = "timeupdate"
	DurationChange Event = "durationchange"
	Waiting        Event = "waiting"
	Stalled        Event = "stalled"
	Seeking        Event = "seeking"
	Seeked         Event = "seeked"
	Ended          Event = "ended"
	Error          Event = "error"
	VolumeChange   Event = "volumechange"
	Abort          Event = "abort"
	Emptied        Event = "emptied"
)

// Events lists every event an Element may emit, in a stable order.
var Events = []Event{
	LoadStart, LoadedMetadata, LoadedData, CanPlay, CanPlayThrough,
	Play, Playing, Pause, Progress, TimeUpdate, DurationChange,
	Waiting, Stalled, Seeking, Seeked, Ended, Error, VolumeChange,
	Abort, Emptied,
}

// Range is a [Start, End] interval in seconds.
type Range struct {
	Start float64
	End   float64
}

// TextTrack is a subtitle or caption track exposed by the element.
type TextTrack struct {
	ID       string
	Label    string
	Language string
	// Kind is "subtitles", "captions" or "metadata".
	Kind    string
	Cues    int
	Showing bool
}

// Element is the playback surface the engines attach to.
// Subscribers may be called on any goroutine.
type Element interface {
	// Load points the element at url, optionally starting at a position.
	Load(ctx context.Context, url string, start mo.Option[float64]) error
	// Unload stops playback and clears the current media.
	Unload(ctx context.Context) error
	Src() string

	Play() error
	Pause() error
	Paused() bool

	CurrentTime() float64
	SetCurrentTime(seconds float64) error
	Duration() float64
	IsLive() bool

	// Volume is in [0, 1].
	Volume() float64
	SetVolume(v float64) error
	Muted() bool
	SetMuted(muted bool) error

	Buffered() []Range
	Seekable() []Range

	TextTracks() []TextTrack
	// SetTextTrack shows the track with the given id; an empty id disables all tracks.
	SetTextTrack(id string) error

	SetPIP(on bool) error
	SetFullscreen(on bool) error

	// Subscribe registers fn for every event and returns a function removing it.
	Subscribe(fn func(Event)) (unsubscribe func())
	// Err returns the error behind the last Error event.
	Err() error
}

// BufferedEnd returns the end of the last buffered range, or zero.
func BufferedEnd(el Element) float64 {
	ranges := el.Buffered()
	if len(ranges) == 0 {
		return 0
	}
	return ranges[len(ranges)-1].End
}

// LiveEdge returns the end of the seekable window, or zero.
func LiveEdge(el Element) float64 {
	ranges := el.Seekable()
	if len(ranges) == 0 {
		return 0
	}
	return ranges[len(ranges)-1].End
}
