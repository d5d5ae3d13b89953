// Package mediatest provides an in-memory media.Element for tests.
package mediatest

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vidplay/vidplay/media"
)

// Fake records every call and lets tests emit events.
type Fake struct {
	mu sync.Mutex

	src        string
	start      mo.Option[float64]
	paused     bool
	current    float64
	duration   float64
	live       bool
	volume     float64
	muted      bool
	buffered   []media.Range
	seekable   []media.Range
	tracks     []media.TextTrack
	pip        bool
	fullscreen bool
	err        error

	subscribers map[int]func(media.Event)
	nextID      int

	Calls []string
}

// New returns a paused element at full volume.
func New() *Fake {
	return &Fake{
		paused:      true,
		volume:      1,
		subscribers: make(map[int]func(media.Event)),
	}
}

func (f *Fake) record(call string) {
	f.Calls = append(f.Calls, call)
}

// Count returns how many times call was recorded.
func (f *Fake) Count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.Count(f.Calls, call)
}

func (f *Fake) Load(_ context.Context, url string, start mo.Option[float64]) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("load")
	f.src = url
	f.start = start
	f.current = start.OrElse(0)
	return nil
}

func (f *Fake) Unload(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("unload")
	f.src = ""
	f.paused = true
	return nil
}

func (f *Fake) Src() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.src
}

// Start returns the start position passed to the last Load.
func (f *Fake) Start() mo.Option[float64] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.start
}

func (f *Fake) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("play")
	f.paused = false
	return nil
}

func (f *Fake) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("pause")
	f.paused = true
	return nil
}

func (f *Fake) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *Fake) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Fake) SetCurrentTime(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("seek")
	f.current = seconds
	return nil
}

func (f *Fake) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *Fake) IsLive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

func (f *Fake) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *Fake) SetVolume(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("volume")
	f.volume = v
	return nil
}

func (f *Fake) Muted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted
}

func (f *Fake) SetMuted(muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("mute")
	f.muted = muted
	return nil
}

func (f *Fake) Buffered() []media.Range {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]media.Range{}, f.buffered...)
}

func (f *Fake) Seekable() []media.Range {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]media.Range{}, f.seekable...)
}

func (f *Fake) TextTracks() []media.TextTrack {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]media.TextTrack{}, f.tracks...)
}

func (f *Fake) SetTextTrack(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("texttrack:" + id)
	for i := range f.tracks {
		f.tracks[i].Showing = id != "" && f.tracks[i].ID == id
	}
	return nil
}

func (f *Fake) SetPIP(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("pip")
	f.pip = on
	return nil
}

func (f *Fake) SetFullscreen(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("fullscreen")
	f.fullscreen = on
	return nil
}

// Fullscreen reports the last value passed to SetFullscreen.
func (f *Fake) Fullscreen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fullscreen
}

func (f *Fake) Subscribe(fn func(media.Event)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.subscribers[id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subscribers, id)
	}
}

// Subscribers returns the number of live subscriptions.
func (f *Fake) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

func (f *Fake) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Emit delivers e to every subscriber on the calling goroutine.
func (f *Fake) Emit(e media.Event) {
	f.mu.Lock()
	subs := lo.Values(f.subscribers)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Fail sets the element error and emits media.Error.
func (f *Fake) Fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	f.Emit(media.Error)
}

// SetPosition sets the playhead without recording a seek.
func (f *Fake) SetPosition(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = seconds
}

// SetLive marks the element as playing live content.
func (f *Fake) SetLive(live bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live = live
}

// SetBuffered replaces the buffered and seekable ranges.
func (f *Fake) SetBuffered(buffered, seekable []media.Range) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffered = buffered
	f.seekable = seekable
}

// SetTracks replaces the text tracks.
func (f *Fake) SetTracks(tracks []media.TextTrack) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracks = tracks
}

// SetAudio sets volume and muted without recording calls.
func (f *Fake) SetAudio(volume float64, muted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = volume
	f.muted = muted
}

// Reset forgets the recorded calls.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}
