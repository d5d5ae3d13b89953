package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/vidplay/vidplay/engine"
	"github.com/vidplay/vidplay/retry"
	"github.com/vidplay/vidplay/source"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/ui"
)

// ErrSuperseded is returned by SetSource when a later call replaced it
// before its engine finished attaching.
var ErrSuperseded = errors.New("source superseded")

// SetSource selects an engine for src and attaches it, detaching whatever
// was attached before. While casting the source is only stored. Of
// overlapping calls the last one wins; earlier ones return ErrSuperseded.
func (p *Player) SetSource(ctx context.Context, src source.Source, isRetry bool) error {
	return p.setSource(ctx, src, isRetry, mo.None[uint64]())
}

// setSource is SetSource that gives up when expect is set and the
// generation has moved on, so background retries never outlive the
// attach they were meant to repair.
func (p *Player) setSource(ctx context.Context, src source.Source, isRetry bool, expect mo.Option[uint64]) error {
	p.mu.Lock()

	if gen, ok := expect.Get(); ok && gen != p.gen {
		p.mu.Unlock()
		return ErrSuperseded
	}

	if err := src.Validate(); err != nil {
		p.mu.Unlock()
		p.log.Warnf("ignoring source: %v", err)
		return fmt.Errorf("set source: %w", err)
	}

	p.src = src
	if p.store.Get().IsCasting {
		p.mu.Unlock()
		p.log.Debugf("casting, deferring %s", src)
		return nil
	}

	start := p.restorePosition(src)
	contentType := src.ContentType(p.opts.Type)
	kind := engine.Select(src, contentType, p.runtime)

	if err := p.detachLocked(ctx, isRetry, eventDetach); err != nil {
		p.log.Warnf("detach before attach: %v", err)
	}
	prev := p.inflight

	adapter, err := p.registry.New(kind)
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("set source: %w", err)
	}

	if _, err := p.lifecycle.Fire(eventSelect); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("set source: %w", err)
	}

	p.gen++
	gen := p.gen
	attachCtx, cancel := context.WithCancel(ctx)
	p.cancelAttach = cancel
	done := make(chan struct{})
	p.inflight = done

	adapter.OnError(func(e engine.ErrorEvent) {
		p.dispatch(func() { p.onEngineError(gen, e) })
	})

	p.store.Update(func(s *state.PlayerState) {
		s.UIState = state.UILoading
	})

	el, opts := p.el, p.opts
	p.log.Infof("attaching %s engine for %s (%s)", kind, src, contentType)
	p.mu.Unlock()

	defer close(done)
	defer cancel()

	// the superseded attach must finish unwinding before this one starts
	if prev != nil {
		<-prev
	}

	target := src
	target.StartTime = start
	attachErr := adapter.Attach(attachCtx, el, target, opts)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inflight == done {
		p.inflight = nil
	}

	if gen != p.gen {
		if attachErr == nil {
			if err := adapter.Detach(context.WithoutCancel(ctx)); err != nil {
				p.log.Warnf("detach superseded %s: %v", kind, err)
			}
		}
		return ErrSuperseded
	}

	p.cancelAttach = nil
	p.metrics.ObserveAttach(string(kind), attachErr)

	if attachErr != nil {
		if _, err := p.lifecycle.Fire(eventFailed); err != nil {
			p.log.Errorf("%v", err)
		}
		p.gen++
		p.sched.Cancel(taskReload)
		p.bridge.Reset()
		p.store.Update(func(s *state.PlayerState) {
			*s = s.Reset()
			s.UIState = state.UILoading
		})
		p.log.Errorf("attach %s: %v", kind, attachErr)

		// the policy either schedules another attach or settles on the error state
		if ctx.Err() == nil {
			p.handleFailure(attachErr, string(kind), isDRMError(attachErr.Error()))
		} else {
			p.setUIState(state.UINone)
		}
		return fmt.Errorf("attach %s: %w", kind, attachErr)
	}

	if _, err := p.lifecycle.Fire(eventAttached); err != nil {
		return fmt.Errorf("set source: %w", err)
	}
	p.adapter = adapter
	p.store.Update(func(s *state.PlayerState) {
		s.Engine = kind
	})

	return nil
}

// restorePosition resumes a reopened source where it was left. Any other
// source clears the saved position.
func (p *Player) restorePosition(src source.Source) mo.Option[float64] {
	if src.StartTime.IsPresent() {
		return src.StartTime
	}

	fp := src.Fingerprint()
	saved, err := p.positions.Lookup(fp)
	if err != nil {
		p.log.Warnf("lookup position: %v", err)
	}
	if t, ok := saved.Get(); ok {
		p.log.Infof("resuming %s at %.1fs", src, t)
		return saved
	}

	if err := p.positions.Clear(); err != nil {
		p.log.Warnf("clear position: %v", err)
	}
	return mo.None[float64]()
}

// DetachMediaElement detaches the engine, if any, and resets the state.
// Without isRetry the transient controls are hidden as well.
func (p *Player) DetachMediaElement(ctx context.Context, isRetry bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detachLocked(ctx, isRetry, eventDetach)
}

func (p *Player) detachLocked(ctx context.Context, isRetry bool, event lifecycleEvent) error {
	var detachErr error

	switch p.lifecycle.State() {
	case LifecycleNone:
		return nil
	case LifecycleAttaching:
		// the in-flight attach notices the new generation and detaches itself
		if p.cancelAttach != nil {
			p.cancelAttach()
			p.cancelAttach = nil
		}
		event = eventDetach
	case LifecycleAttached:
		adapter := p.adapter
		p.adapter = nil
		if err := adapter.Detach(ctx); err != nil {
			detachErr = fmt.Errorf("detach %s: %w", adapter.Kind(), err)
		}
	}

	if _, err := p.lifecycle.Fire(event); err != nil {
		return err
	}
	p.gen++
	p.sched.Cancel(taskReload)
	p.bridge.Reset()

	if !isRetry {
		p.surface.Hide(ui.ProgressBar)
		p.surface.Hide(ui.CaptionsButton)
		p.surface.Hide(ui.OptionsMenu)
	}

	p.store.Update(func(s *state.PlayerState) {
		keep := s.UIState
		*s = s.Reset()
		if isRetry {
			s.UIState = keep
		}
	})

	if err := p.el.SetTextTrack(""); err != nil {
		p.log.Warnf("disable text tracks: %v", err)
	}

	return detachErr
}

// Retry puts the UI into loading and reloads. A hard retry attaches the
// current source again from scratch; its failure is only logged.
func (p *Player) Retry(hard bool) {
	p.mu.Lock()
	if !hard {
		p.retryLocked(false)
		p.mu.Unlock()
		return
	}

	p.setUIState(state.UILoading)
	src, gen := p.src, p.gen
	p.mu.Unlock()

	p.retrySource(src, gen)
}

func (p *Player) retryLocked(hard bool) {
	p.setUIState(state.UILoading)
	if hard {
		p.retryInBackground()
		return
	}
	p.reloadLocked(context.Background())
}

func (p *Player) retryInBackground() {
	src, gen := p.src, p.gen
	p.goBackground(func() { p.retrySource(src, gen) })
}

func (p *Player) retrySource(src source.Source, gen uint64) {
	err := p.setSource(context.Background(), src, true, mo.Some(gen))
	switch {
	case errors.Is(err, ErrSuperseded):
		p.log.Debugf("retry superseded")
	case err != nil:
		p.log.Warnf("retry: %v", err)
	}
}

// Reload reloads the engine in place when it can, otherwise retries hard.
// With wait it first sleeps for the reload grace; cancelling ctx during
// the grace aborts the reload and returns the context error.
func (p *Player) Reload(ctx context.Context, wait bool) error {
	if wait {
		p.mu.Lock()
		grace := p.opts.ReloadGrace
		p.mu.Unlock()

		timer := p.sched.Clock().Timer(grace)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("reload: %w", ctx.Err())
		case <-timer.C:
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloadLocked(ctx)
	return nil
}

func (p *Player) reloadLocked(ctx context.Context) {
	reloader, ok := p.adapter.(engine.Reloader)
	if !ok || p.lifecycle.State() != LifecycleAttached {
		p.metrics.IncReloads("hard")
		p.retryInBackground()
		return
	}

	if _, err := p.lifecycle.Fire(eventReload); err != nil {
		p.log.Errorf("%v", err)
		return
	}

	p.metrics.IncReloads("soft")
	if err := reloader.Reload(ctx); err != nil {
		p.log.Warnf("in-place reload failed, retrying hard: %v", err)
		p.retryInBackground()
	}
}

// reloadAfter schedules a reload; a newer request replaces a pending one.
func (p *Player) reloadAfter(grace time.Duration) {
	p.sched.After(taskReload, grace, func() {
		p.reloadLocked(context.Background())
	})
}

func (p *Player) setUIState(s state.UIState) {
	if p.store.Get().UIState == s {
		return
	}
	p.store.Update(func(ps *state.PlayerState) {
		ps.UIState = s
	})
}

// onEngineError ignores errors of engines that are no longer current.
// Non-fatal errors only show the loading indicator.
func (p *Player) onEngineError(gen uint64, e engine.ErrorEvent) {
	if gen != p.gen {
		return
	}

	if !e.Fatal {
		p.log.Debugf("non-fatal engine error: %v", e)
		if e.Details == engine.DetailsBufferStalled {
			p.setUIState(state.UILoading)
		}
		return
	}

	kind := engine.None
	if p.adapter != nil {
		kind = p.adapter.Kind()
	}
	p.handleFailure(e, string(kind), isDRMError(e.Details))
}

func (p *Player) handleFailure(err error, origin string, drm bool) {
	outcome := p.policy.ClassifyAndHandle(err, retry.Context{
		Origin:        origin,
		DRM:           drm,
		MaxRetryCount: p.opts.MaxRetryCount,
	})
	if outcome != retry.Terminal {
		return
	}

	if p.lifecycle.State() == LifecycleAttached {
		if err := p.detachLocked(context.Background(), true, eventFatal); err != nil {
			p.log.Warnf("detach after terminal error: %v", err)
		}
	}
	p.setUIState(state.UIError)
}

func isDRMError(details string) bool {
	d := strings.ToLower(details)
	return strings.Contains(d, "drm") || strings.Contains(d, "key") || strings.Contains(d, "license")
}
