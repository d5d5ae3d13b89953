package player

import (
	"context"
	"time"

	"github.com/samber/mo"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/media"
	"github.com/vidplay/vidplay/source"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/ui"
)

// host is the view of the player given to the bridge, the retry policy and
// the cast session. Its methods are only called with the player's lock held.
type host struct {
	p *Player
}

func (h *host) Element() media.Element { return h.p.el }
func (h *host) Options() config.Options { return h.p.opts }
func (h *host) PlayerState() state.PlayerState { return h.p.store.Get() }
func (h *host) Surface() ui.Surface { return h.p.surface }
func (h *host) Source() source.Source { return h.p.src }
func (h *host) Initialized() bool { return h.p.initialized }
func (h *host) CurrentTime() float64 { return h.p.el.CurrentTime() }

func (h *host) Update(fn func(*state.PlayerState)) state.PlayerState {
	return h.p.store.Update(fn)
}

func (h *host) Attached() bool {
	return h.p.lifecycle.State() == LifecycleAttached
}

func (h *host) Attaching() bool {
	return h.p.lifecycle.State() == LifecycleAttaching
}

func (h *host) ResetRetry() {
	h.p.policy.Reset()
}

func (h *host) HandleMediaError(err error) {
	h.p.handleFailure(err, "media", false)
}

func (h *host) ReloadAfter(grace time.Duration) {
	h.p.reloadAfter(grace)
}

func (h *host) StartLoad(from mo.Option[float64]) {
	if h.p.adapter != nil {
		h.p.adapter.StartLoad(from)
	}
}

func (h *host) StopLoad() {
	if h.p.adapter != nil {
		h.p.adapter.StopLoad()
	}
}

func (h *host) SavePosition(seconds float64) {
	if err := h.p.positions.Save(h.p.src.Fingerprint(), seconds); err != nil {
		h.p.log.Warnf("save position: %v", err)
	}
}

func (h *host) ClearPosition() {
	if err := h.p.positions.Clear(); err != nil {
		h.p.log.Warnf("clear position: %v", err)
	}
}

func (h *host) SetUIState(s state.UIState) {
	h.p.setUIState(s)
}

func (h *host) Retry(hard bool) {
	h.p.retryLocked(hard)
}

// SetCasting mirrors the cast connection. Going remote detaches the local engine.
func (h *host) SetCasting(on bool) {
	h.p.store.Update(func(s *state.PlayerState) {
		s.IsCasting = on
	})
	if !on {
		return
	}

	if err := h.p.detachLocked(context.Background(), false, eventDetach); err != nil {
		h.p.log.Warnf("detach for casting: %v", err)
	}
}

// Resume initializes the player again with the source held while casting.
func (h *host) Resume() {
	p := h.p
	p.initialized = false
	gen, src := p.gen, p.src

	p.goBackground(func() {
		p.mu.Lock()
		stale := gen != p.gen
		p.mu.Unlock()
		if stale {
			return
		}
		p.Init(context.Background(), src, nil, nil)
	})
}
