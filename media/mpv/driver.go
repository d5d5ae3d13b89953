package mpv

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/mo"
	"github.com/vidplay/vidplay/engine"
	"github.com/vidplay/vidplay/log"
	"github.com/vidplay/vidplay/media"
)

// ErrProcessExited is reported as a fatal error once mpv is gone.
var ErrProcessExited = errors.New("mpv process exited")

// Mode picks which engine role a Driver plays.
type Mode int

const (
	ModeAdaptive Mode = iota
	ModeDash
)

// Driver lets mpv stand in for the streaming engines. mpv demuxes HLS
// and DASH itself, so both roles reduce to loading the manifest url.
type Driver struct {
	mode   Mode
	exited <-chan struct{}
	logger log.Entry

	mu          sync.Mutex
	el          media.Element
	unsubscribe func()
	handlers    []func(engine.DriverError)
	stop        chan struct{}
	destroyed   bool
}

// NewDriver returns a driver. exited may be nil when the element has no process.
func NewDriver(mode Mode, exited <-chan struct{}) *Driver {
	return &Driver{
		mode:   mode,
		exited: exited,
		logger: log.Component("mpv-driver"),
		stop:   make(chan struct{}),
	}
}

var (
	_ engine.AdaptiveDriver = (*Driver)(nil)
	_ engine.DashDriver     = (*Driver)(nil)
)

func (d *Driver) OnError(fn func(engine.DriverError)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, fn)
}

func (d *Driver) report(e engine.DriverError) {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	handlers := append([]func(engine.DriverError){}, d.handlers...)
	d.mu.Unlock()

	for _, fn := range handlers {
		fn(e)
	}
}

func (d *Driver) AttachMedia(el media.Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return fmt.Errorf("driver destroyed")
	}
	if d.el != nil {
		return fmt.Errorf("media already attached")
	}

	d.el = el
	d.unsubscribe = el.Subscribe(d.onMediaEvent)

	if d.exited != nil {
		go d.watchExit()
	}
	return nil
}

// Attach is the DASH name for AttachMedia.
func (d *Driver) Attach(el media.Element) error {
	return d.AttachMedia(el)
}

func (d *Driver) watchExit() {
	select {
	case <-d.exited:
		d.report(engine.DriverError{Fatal: true, Type: "mediaError", Details: "processExited", Err: ErrProcessExited})
	case <-d.stop:
	}
}

// onMediaEvent reports a cache underrun as a stalled buffer in adaptive mode.
// Playback failures reach the player through the element's own error event.
func (d *Driver) onMediaEvent(ev media.Event) {
	if ev == media.Waiting && d.mode == ModeAdaptive {
		d.report(engine.DriverError{Type: "mediaError", Details: engine.DetailsBufferStalled})
	}
}

func (d *Driver) element() media.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.el
}

func (d *Driver) LoadSource(ctx context.Context, url string, start mo.Option[float64]) error {
	return d.Load(ctx, url, start)
}

func (d *Driver) Load(ctx context.Context, url string, start mo.Option[float64]) error {
	el := d.element()
	if el == nil {
		return engine.ErrNotAttached
	}
	return el.Load(ctx, url, start)
}

// StartLoad seeks when given a position; mpv never stops buffering on its own.
func (d *Driver) StartLoad(from float64) {
	el := d.element()
	if el == nil || from < 0 {
		return
	}
	if err := el.SetCurrentTime(from); err != nil {
		d.logger.Warnf("start load at %.2f: %v", from, err)
	}
}

func (d *Driver) StopLoad() {
	d.logger.Debugf("stop load ignored")
}

// Configure accepts the DRM config but mpv cannot decrypt protected streams.
func (d *Driver) Configure(cfg engine.DashConfig) error {
	if len(cfg.Servers) > 0 {
		d.logger.Warnf("mpv has no content decryption; %d license server(s) ignored", len(cfg.Servers))
	}
	return nil
}

func (d *Driver) DetachMedia() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
	d.el = nil
	return nil
}

func (d *Driver) Unload(ctx context.Context) error {
	el := d.element()
	if el == nil {
		return nil
	}
	if err := el.Unload(ctx); err != nil {
		return err
	}
	return d.DetachMedia()
}

func (d *Driver) Destroy() error {
	if err := d.DetachMedia(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.destroyed {
		d.destroyed = true
		close(d.stop)
	}
	return nil
}

// Registry returns engine factories backed by mpv. Native playback uses
// the element directly.
func Registry(exited <-chan struct{}) engine.Registry {
	return engine.Registry{
		Native: func() engine.Adapter { return engine.NewNative() },
		Adaptive: func() engine.Adapter {
			return engine.NewAdaptive(func() engine.AdaptiveDriver { return NewDriver(ModeAdaptive, exited) })
		},
		Dash: func() engine.Adapter {
			return engine.NewDash(func() engine.DashDriver { return NewDriver(ModeDash, exited) })
		},
	}
}
