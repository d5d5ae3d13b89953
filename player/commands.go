package player

import (
	"context"
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/vidplay/vidplay/cast"
	"github.com/vidplay/vidplay/icon"
	"github.com/vidplay/vidplay/source"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/ui"
)

// casting reports whether commands go to the receiver.
func (p *Player) casting() bool {
	return p.cast != nil && p.store.Get().IsCasting
}

// TogglePlayPause plays or pauses, locally or on the receiver.
func (p *Player) TogglePlayPause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.casting() {
		p.cast.TogglePlayPause()
		return
	}

	if p.store.Get().UIState == state.UIEnded {
		p.replayLocked()
		return
	}

	paused := p.el.Paused()
	err := lo.Ternary(paused, p.el.Play, p.el.Pause)()
	if err != nil {
		p.log.Warnf("toggle play/pause: %v", err)
		return
	}

	p.store.Update(func(s *state.PlayerState) {
		s.HasUserPaused = !paused
	})
}

// ToggleMuteUnMute flips the mute flag.
func (p *Player) ToggleMuteUnMute() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.casting() {
		p.cast.ToggleMute()
		return
	}

	if err := p.el.SetMuted(!p.el.Muted()); err != nil {
		p.log.Warnf("toggle mute: %v", err)
	}
}

// ToggleForwardRewind skips by cast.SkipSeconds in either direction.
func (p *Player) ToggleForwardRewind(forward bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.casting() {
		p.cast.Skip(forward)
		return
	}

	delta := float64(cast.SkipSeconds)
	if !forward {
		delta = -delta
	}
	p.seekLocked(p.el.CurrentTime() + delta)
}

// SeekTime moves the playhead to seconds.
func (p *Player) SeekTime(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.casting() {
		p.cast.Seek(seconds)
		return
	}

	p.seekLocked(seconds)
}

func (p *Player) seekLocked(seconds float64) {
	target := max(seconds, 0)
	if d := p.el.Duration(); d > 0 && !p.el.IsLive() {
		target = min(target, d)
	}

	if err := p.el.SetCurrentTime(target); err != nil {
		p.log.Warnf("seek to %.2f: %v", target, err)
	}
}

// TogglePip flips picture-in-picture.
func (p *Player) TogglePip() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.casting() {
		p.cast.Unsupported("pip")
		return
	}

	on := !p.store.Get().IsPIP
	if err := p.el.SetPIP(on); err != nil {
		p.log.Warnf("toggle pip: %v", err)
		return
	}

	p.store.Update(func(s *state.PlayerState) {
		s.IsPIP = on
	})
	p.surface.SetIcon(ui.PIPIcon, icon.PIP)
}

// ToggleFullScreen flips fullscreen.
func (p *Player) ToggleFullScreen() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.casting() {
		p.cast.Unsupported("fullscreen")
		return
	}

	on := !p.fullscreen
	if err := p.el.SetFullscreen(on); err != nil {
		p.log.Warnf("toggle fullscreen: %v", err)
		return
	}

	p.fullscreen = on
	p.surface.SetIcon(ui.FullscreenButton, lo.Ternary(on, icon.ExitFullscreen, icon.Fullscreen))
}

// OnEndedReplay starts again from the beginning.
func (p *Player) OnEndedReplay() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.casting() {
		p.cast.Restart()
		return
	}

	p.replayLocked()
}

func (p *Player) replayLocked() {
	if err := p.el.SetCurrentTime(0); err != nil {
		p.log.Warnf("replay: %v", err)
		return
	}
	if err := p.el.Play(); err != nil {
		p.log.Warnf("replay: %v", err)
	}

	p.store.Update(func(s *state.PlayerState) {
		s.UIState = state.UINone
		s.HasUserPaused = false
	})
}

// SelectTextTrack shows the discovered text track whose label (or language,
// for unlabelled tracks) best matches query. An empty query turns captions off. While casting it toggles the
// receiver's captions instead.
func (p *Player) SelectTextTrack(query string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.casting() {
		p.cast.ToggleTextTracks()
		return nil
	}

	id := ""
	if query != "" {
		tracks := p.store.Get().TextTracks
		labels := lo.Map(tracks, func(t state.Track, _ int) string {
			return lo.CoalesceOrEmpty(t.Label, t.Language, t.ID)
		})

		ranks := fuzzy.RankFindNormalizedFold(query, labels)
		if len(ranks) == 0 {
			return fmt.Errorf("no text track matches %q", query)
		}
		best := lo.MinBy(ranks, func(a, b fuzzy.Rank) bool { return a.Distance < b.Distance })
		id = tracks[best.OriginalIndex].ID
	}

	if err := p.el.SetTextTrack(id); err != nil {
		return fmt.Errorf("select text track: %w", err)
	}

	p.store.Update(func(s *state.PlayerState) {
		s.SelectedTextTrackID = id
	})
	return nil
}

// Cast asks the framework for a session with the configured receiver.
func (p *Player) Cast(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cast == nil {
		p.log.Warnf("casting is not configured")
		return
	}
	p.cast.Cast(ctx)
}

// SetCastingSource replaces what the receiver plays.
func (p *Player) SetCastingSource(src source.Source, contentType string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cast != nil {
		p.cast.SetSource(src, contentType)
	}
}

// SetCastingMediaInfo replaces the metadata the receiver shows.
func (p *Player) SetCastingMediaInfo(info cast.MediaInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cast != nil {
		p.cast.SetMediaInfo(info)
	}
}

// StopCasting ends the cast session. With resume local playback takes over.
func (p *Player) StopCasting(ctx context.Context, resume bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cast != nil {
		p.cast.Stop(ctx, resume)
	}
}

// CastSnapshot describes the cast session; ok is false when casting is not configured.
func (p *Player) CastSnapshot() (snap cast.Snapshot, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cast == nil {
		return cast.Snapshot{}, false
	}
	return p.cast.Snapshot(), true
}
