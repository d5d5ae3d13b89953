// Package player is the playback orchestrator. It owns the current source,
// configuration and PlayerState, selects and drives one engine adapter at a
// time, and hands playback over to a cast session when one connects.
//
// A Player is safe to call from any goroutine. Element events, timers, engine
// errors and cast callbacks are re-posted through the dispatcher given to New
// and then run under the player's lock, so at most one of them is in flight.
package player

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/samber/mo"
	"github.com/vidplay/vidplay/bridge"
	"github.com/vidplay/vidplay/cast"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/engine"
	"github.com/vidplay/vidplay/history"
	"github.com/vidplay/vidplay/log"
	"github.com/vidplay/vidplay/media"
	"github.com/vidplay/vidplay/metrics"
	"github.com/vidplay/vidplay/retry"
	"github.com/vidplay/vidplay/sched"
	"github.com/vidplay/vidplay/source"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/ui"
)

const taskReload = "player.reload"

// Positions persists the last playback position of a source.
type Positions interface {
	Lookup(fingerprint string) (mo.Option[float64], error)
	Save(fingerprint string, seconds float64) error
	Clear() error
}

// Callbacks are the asynchronous notifications a caller can register.
type Callbacks struct {
	// OnStateChange is called synchronously after every state mutation.
	OnStateChange func(state.PlayerState)
	// OnEvent is called after the player handled the event.
	OnEvent map[media.Event]func(state.PlayerState)
}

// Player is the playback orchestrator.
type Player struct {
	mu sync.Mutex
	wg sync.WaitGroup

	el        media.Element
	registry  engine.Registry
	runtime   engine.Runtime
	surface   ui.Surface
	clock     clock.Clock
	outer     sched.Dispatcher
	sched     *sched.Scheduler
	metrics   *metrics.Metrics
	positions Positions
	framework cast.Framework
	token     func() (string, error)
	log       log.Entry

	store  *state.Store
	policy *retry.Policy
	bridge *bridge.Bridge
	cast   *cast.Session

	base      config.Options
	opts      config.Options
	src       source.Source
	callbacks Callbacks

	initialized   bool
	castListening bool
	fullscreen    bool
	unsubscribe   func()

	lifecycle    *lifecycle
	adapter      engine.Adapter
	gen          uint64
	cancelAttach context.CancelFunc
	inflight     chan struct{}
}

// Option configures a Player.
type Option func(*Player)

// WithRegistry sets the engine adapters.
func WithRegistry(r engine.Registry) Option {
	return func(p *Player) { p.registry = r }
}

// WithRuntime describes the host capabilities used by engine selection.
func WithRuntime(rt engine.Runtime) Option {
	return func(p *Player) { p.runtime = rt }
}

// WithSurface sets the control surface.
func WithSurface(s ui.Surface) Option {
	return func(p *Player) { p.surface = s }
}

// WithClock sets the clock timers run on.
func WithClock(c clock.Clock) Option {
	return func(p *Player) { p.clock = c }
}

// WithMetrics records player counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Player) { p.metrics = m }
}

// WithPositions sets where playback positions are persisted.
func WithPositions(s Positions) Option {
	return func(p *Player) { p.positions = s }
}

// WithConfig sets the options Init patches are merged over.
func WithConfig(o config.Options) Option {
	return func(p *Player) { p.base = o.Normalize() }
}

// WithCast enables casting through the given framework.
func WithCast(f cast.Framework) Option {
	return func(p *Player) { p.framework = f }
}

// WithToken supplies the auth token sent to receivers.
func WithToken(fn func() (string, error)) Option {
	return func(p *Player) { p.token = fn }
}

// New returns a player driving el. dispatch must run its function later on
// another goroutine, never inline.
func New(el media.Element, dispatch sched.Dispatcher, opts ...Option) *Player {
	p := &Player{
		el:        el,
		outer:     dispatch,
		surface:   ui.Noop{},
		positions: history.NewMemory(),
		base:      config.Defaults(),
		store:     state.NewStore(),
		lifecycle: newLifecycle(),
		log:       log.Component("player"),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.opts = p.base
	p.sched = sched.New(p.clock, p.dispatch)

	h := &host{p: p}
	p.policy = retry.New(h, p.metrics)
	p.bridge = bridge.New(h, p.sched, p.metrics, p.onEvent)

	if p.framework != nil {
		castOpts := []cast.Option{cast.WithMetrics(p.metrics)}
		if p.token != nil {
			castOpts = append(castOpts, cast.WithToken(p.token))
		}
		p.cast = cast.New(p.framework, h, p.sched, p.dispatch, castOpts...)
	}

	return p
}

// dispatch re-posts fn through the outer dispatcher and runs it under the lock.
func (p *Player) dispatch(fn func()) {
	p.outer(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		fn()
	})
}

// Init applies cfg and callbacks and loads src. It is a no-op when already
// initialized, unless casting. Errors are logged, never returned.
func (p *Player) Init(ctx context.Context, src source.Source, cfg *config.Patch, cb *Callbacks) {
	p.mu.Lock()
	if p.initialized && !p.store.Get().IsCasting {
		p.mu.Unlock()
		return
	}

	if cfg != nil {
		p.opts = p.base.Merge(*cfg)
	}
	if cb != nil {
		p.callbacks = *cb
		p.store.OnChange(cb.OnStateChange)
	}
	log.SetDebug(p.opts.Debug)

	if p.unsubscribe == nil {
		p.unsubscribe = p.el.Subscribe(func(e media.Event) {
			p.dispatch(func() { p.bridge.Handle(e) })
		})
	}
	if p.cast != nil && !p.castListening {
		p.castListening = true
		p.cast.Listen()
	}
	p.initialized = true
	p.mu.Unlock()

	if err := p.SetSource(ctx, src, false); err != nil {
		p.log.Errorf("init: %v", err)
	}
}

func (p *Player) onEvent(e media.Event, st state.PlayerState) {
	if fn := p.callbacks.OnEvent[e]; fn != nil {
		fn(st)
	}
}

// Source returns the current source.
func (p *Player) Source() source.Source {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src
}

// Config returns the effective options.
func (p *Player) Config() config.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts
}

// UpdateConfig merges patch over the current options.
func (p *Player) UpdateConfig(patch config.Patch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts = p.opts.Merge(patch)
	log.SetDebug(p.opts.Debug)
}

// PlayerState returns a copy of the state.
func (p *Player) PlayerState() state.PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Get()
}

// SetPlayerState mutates the state; the change callback runs before it returns.
func (p *Player) SetPlayerState(fn func(*state.PlayerState)) state.PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Update(fn)
}

// Lifecycle returns the engine attachment state.
func (p *Player) Lifecycle() Lifecycle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lifecycle.State()
}

// Engine returns the kind of the attached engine, or engine.None.
func (p *Player) Engine() engine.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.adapter == nil {
		return engine.None
	}
	return p.adapter.Kind()
}

// RetryCount is the number of retries since the last successful load.
func (p *Player) RetryCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.policy.RetryCount()
}

// RemovePlayer detaches the engine and stops every timer. The player can be
// initialized again afterwards.
func (p *Player) RemovePlayer(ctx context.Context) {
	p.mu.Lock()
	p.removeLocked(ctx)
	p.mu.Unlock()
	p.wg.Wait()
}

// Unmount is RemovePlayer that also stops casting and forgets the saved position.
func (p *Player) Unmount(ctx context.Context) {
	p.mu.Lock()
	if p.cast != nil {
		p.cast.Stop(ctx, false)
	}
	if err := p.positions.Clear(); err != nil {
		p.log.Warnf("clear position: %v", err)
	}
	p.removeLocked(ctx)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Player) removeLocked(ctx context.Context) {
	if err := p.detachLocked(ctx, false, eventDetach); err != nil {
		p.log.Warnf("remove: %v", err)
	}
	p.gen++
	p.sched.CancelAll()

	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}

	p.surface.Hide(ui.Controls)
	p.policy.Reset()
	p.initialized = false
}

// ReloadPlayer tears the player down and initializes it again with the
// same source, options and callbacks.
func (p *Player) ReloadPlayer(ctx context.Context) {
	p.mu.Lock()
	src := p.src
	p.mu.Unlock()

	p.RemovePlayer(ctx)
	p.Init(ctx, src, nil, nil)
}

// goBackground runs fn on its own goroutine; RemovePlayer waits for it.
func (p *Player) goBackground(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fn()
	}()
}
