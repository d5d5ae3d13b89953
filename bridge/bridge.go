// Package bridge translates media element events into player state
// mutations and recovery actions.
package bridge

import (
	"math"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/icon"
	"github.com/vidplay/vidplay/log"
	"github.com/vidplay/vidplay/media"
	"github.com/vidplay/vidplay/metrics"
	"github.com/vidplay/vidplay/sched"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/ui"
)

const (
	taskTextTracks = "bridge.text-tracks"

	// positionSaveEvery is how much media time passes between saved positions.
	positionSaveEvery = 5.0
)

// Host is the player as seen by the bridge. Every call happens on the
// player's event loop.
type Host interface {
	Element() media.Element
	Options() config.Options
	PlayerState() state.PlayerState
	Update(fn func(*state.PlayerState)) state.PlayerState
	Surface() ui.Surface

	// Attached reports whether an engine currently drives the element.
	Attached() bool
	// Attaching reports whether an engine is still being attached. The
	// element may already report data in that window.
	Attaching() bool

	ResetRetry()
	HandleMediaError(err error)
	ReloadAfter(grace time.Duration)
	StartLoad(from mo.Option[float64])
	StopLoad()

	SavePosition(seconds float64)
	ClearPosition()
}

// Bridge owns the stall heuristics and the text track discovery task.
type Bridge struct {
	host     Host
	sched    *sched.Scheduler
	metrics  *metrics.Metrics
	external func(media.Event, state.PlayerState)
	log      log.Entry

	progressTicks  int
	nudged         bool
	sawTimeUpdate  bool
	lastTimeUpdate time.Time
	seeking        bool
	lastSaved      float64
}

// New returns a bridge. external, if set, is called after the internal
// handling of every event.
func New(host Host, s *sched.Scheduler, m *metrics.Metrics, external func(media.Event, state.PlayerState)) *Bridge {
	return &Bridge{
		host:     host,
		sched:    s,
		metrics:  m,
		external: external,
		log:      log.Component("bridge"),
	}
}

// Reset forgets the heuristics and stops text track discovery.
// The player calls it whenever an engine is detached.
func (b *Bridge) Reset() {
	b.sched.Cancel(taskTextTracks)
	b.progressTicks = 0
	b.nudged = false
	b.sawTimeUpdate = false
	b.lastTimeUpdate = time.Time{}
	b.seeking = false
	b.lastSaved = 0
}

// ProgressTicks is the current stall counter.
func (b *Bridge) ProgressTicks() int {
	return b.progressTicks
}

// Handle processes one event: internal handling first, the external callback last.
// Events of a detached element only reach the callback.
func (b *Bridge) Handle(e media.Event) {
	switch {
	case b.host.Attached(), e == media.VolumeChange:
		b.handle(e)
	case b.host.Attaching():
		// a failing attach goes through the retry policy on its own
		if e != media.Error {
			b.handle(e)
		}
	}

	if b.external != nil {
		b.external(e, b.host.PlayerState())
	}
}

func (b *Bridge) handle(e media.Event) {
	switch e {
	case media.LoadedData:
		b.onLoadedData()
	case media.Play, media.Playing:
		b.onPlaying(e)
	case media.Pause:
		b.onPause()
	case media.Progress:
		b.onProgress()
	case media.TimeUpdate:
		b.onTimeUpdate()
	case media.Waiting, media.Stalled:
		b.onWaiting()
	case media.Seeking:
		b.onSeeking()
	case media.Seeked:
		b.onSeeked()
	case media.Ended:
		b.onEnded()
	case media.Error:
		b.onError()
	case media.VolumeChange:
		b.onVolumeChange()
	}
}

func (b *Bridge) onLoadedData() {
	b.host.ResetRetry()

	opts := b.host.Options()
	el := b.host.Element()
	surface := b.host.Surface()

	if !opts.DisableControls {
		surface.Show(ui.Controls)
		surface.Show(ui.ProgressBar)
	}

	if opts.StartMuted && !el.Muted() {
		if err := el.SetMuted(true); err != nil {
			b.log.Warnf("start muted: %v", err)
		}
	}

	b.host.Update(func(s *state.PlayerState) {
		s.Loaded = true
		s.IsPlaying = false
		s.UIState = state.UINone
	})

	b.discoverTextTracks()
	b.onVolumeChange()
}

// discoverTextTracks polls until a non-metadata track with cues shows up.
// It never gives up on its own; Reset stops it.
func (b *Bridge) discoverTextTracks() {
	poll := func() bool {
		tracks := lo.Filter(b.host.Element().TextTracks(), func(t media.TextTrack, _ int) bool {
			return t.Kind != "metadata" && t.Cues > 0
		})
		if len(tracks) == 0 {
			return false
		}

		selected, _ := lo.Find(tracks, func(t media.TextTrack) bool { return t.Showing })

		b.host.Update(func(s *state.PlayerState) {
			s.TextTracks = lo.Map(tracks, func(t media.TextTrack, _ int) state.Track {
				return state.Track{ID: t.ID, Label: t.Label, Language: t.Language, Kind: t.Kind}
			})
			s.SelectedTextTrackID = selected.ID
		})
		b.host.Surface().Show(ui.CaptionsButton)
		b.log.Debugf("found %d text tracks", len(tracks))
		return true
	}

	b.sched.Cancel(taskTextTracks)
	if poll() {
		return
	}

	b.sched.Every(taskTextTracks, b.host.Options().TrackPoll, func() {
		if poll() {
			b.sched.Cancel(taskTextTracks)
		}
	})
}

func (b *Bridge) onPlaying(e media.Event) {
	b.host.Update(func(s *state.PlayerState) {
		s.IsPlaying = true
		if e == media.Playing && s.UIState == state.UILoading {
			s.UIState = state.UINone
		}
		if s.UIState == state.UIEnded {
			s.UIState = state.UINone
		}
	})
	b.host.Surface().SetIcon(ui.PlayButton, icon.Pause)
}

func (b *Bridge) onPause() {
	b.host.Update(func(s *state.PlayerState) {
		s.IsPlaying = false
	})
	b.host.Surface().SetIcon(ui.PlayButton, icon.Play)
}

// onProgress is the silent stall detector. Progress ticks without a
// timeupdate in between mean the playhead is stuck: first nudge it to the
// buffered edge, then reload.
func (b *Bridge) onProgress() {
	if b.sawTimeUpdate {
		b.sawTimeUpdate = false
		b.progressTicks = 0
		b.nudged = false
		return
	}

	el := b.host.Element()
	if el.Paused() || b.seeking || b.host.PlayerState().HasUserPaused {
		return
	}

	b.progressTicks++
	opts := b.host.Options()

	switch {
	case b.progressTicks >= opts.ReloadTicks:
		b.log.Warnf("playhead stuck for %d progress ticks, reloading", b.progressTicks)
		b.progressTicks = 0
		b.nudged = false
		b.host.ReloadAfter(opts.StallReloadGrace)
	case b.progressTicks > opts.NudgeTicks && !b.nudged:
		b.nudged = true
		edge := media.BufferedEnd(el)
		if edge > el.CurrentTime() {
			b.log.Infof("playhead stuck, nudging from %.2f to %.2f", el.CurrentTime(), edge)
			b.metrics.IncStallNudges()
			if err := el.SetCurrentTime(edge); err != nil {
				b.log.Warnf("nudge: %v", err)
			}
		}
	}
}

func (b *Bridge) onTimeUpdate() {
	b.sawTimeUpdate = true
	b.lastTimeUpdate = b.sched.Now()

	el := b.host.Element()
	t := el.CurrentTime()

	if d := el.Duration(); d > 0 && !math.IsInf(d, 0) {
		b.host.Surface().SetSlider(ui.ProgressSlider, t/d)
	}

	if b.host.PlayerState().UIState == state.UILoading && !el.Paused() {
		b.host.Update(func(s *state.PlayerState) { s.UIState = state.UINone })
	}

	if !el.IsLive() && math.Abs(t-b.lastSaved) >= positionSaveEvery {
		b.lastSaved = t
		b.host.SavePosition(t)
	}
}

func (b *Bridge) onWaiting() {
	if !b.seeking {
		b.host.Update(func(s *state.PlayerState) { s.UIState = state.UILoading })
	}

	el := b.host.Element()
	if !el.IsLive() || b.host.PlayerState().HasUserPaused {
		return
	}

	window := b.host.Options().LiveStallWindow
	if !b.lastTimeUpdate.IsZero() && b.sched.Now().Sub(b.lastTimeUpdate) < window {
		return
	}

	b.log.Infof("live stream stalled, restarting load at the live edge")
	b.host.StartLoad(mo.None[float64]())
	if edge := media.LiveEdge(el); edge > 0 {
		if err := el.SetCurrentTime(edge); err != nil {
			b.log.Warnf("seek to live edge: %v", err)
		}
	}
}

func (b *Bridge) onSeeking() {
	b.seeking = true
	b.progressTicks = 0
	b.host.StartLoad(mo.Some(b.host.Element().CurrentTime()))
}

func (b *Bridge) onSeeked() {
	b.seeking = false

	if b.host.Element().Paused() {
		b.host.StopLoad()
	}

	if b.host.PlayerState().UIState == state.UILoading {
		b.host.Update(func(s *state.PlayerState) { s.UIState = state.UINone })
	}
}

func (b *Bridge) onEnded() {
	b.host.Update(func(s *state.PlayerState) {
		s.UIState = state.UIEnded
		s.IsPlaying = false
	})
	b.host.Surface().SetIcon(ui.PlayButton, icon.Replay)
	b.host.ClearPosition()
	b.lastSaved = 0
}

func (b *Bridge) onError() {
	b.host.HandleMediaError(b.host.Element().Err())
}

func (b *Bridge) onVolumeChange() {
	el := b.host.Element()
	volume, muted := el.Volume(), el.Muted()

	b.host.Update(func(s *state.PlayerState) { s.IsMuted = muted })

	surface := b.host.Surface()
	surface.SetIcon(ui.MuteButton, icon.Volume(volume, muted))
	surface.SetSlider(ui.VolumeSlider, lo.Ternary(muted, 0, volume))
}
