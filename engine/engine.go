// Package engine wraps the pluggable playback engines behind one contract
// and decides which of them plays a given source.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/mo"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/log"
	"github.com/vidplay/vidplay/media"
	"github.com/vidplay/vidplay/source"
	"github.com/vidplay/vidplay/state"
)

// Kind is the selection outcome.
type Kind = state.Engine

const (
	None     = state.EngineNone
	Native   = state.EngineNative
	Adaptive = state.EngineAdaptive
	Dash     = state.EngineDash
)

// DetailsBufferStalled marks the non-fatal stall an adaptive engine reports
// while it waits for data.
const DetailsBufferStalled = "bufferStalledError"

// ErrNotAttached is returned by operations that need an attached engine.
var ErrNotAttached = errors.New("engine not attached")

// ErrorEvent is an error reported by an engine after attach.
type ErrorEvent struct {
	Fatal   bool
	Details string
	Err     error
}

func (e ErrorEvent) Error() string {
	kind := "non-fatal"
	if e.Fatal {
		kind = "fatal"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s engine error (%s): %v", kind, e.Details, e.Err)
	}
	return fmt.Sprintf("%s engine error (%s)", kind, e.Details)
}

func (e ErrorEvent) Unwrap() error {
	return e.Err
}

// Adapter is the uniform contract every engine is driven through.
// OnError handlers may be called on any goroutine.
type Adapter interface {
	Kind() Kind
	Attach(ctx context.Context, el media.Element, src source.Source, opts config.Options) error
	Detach(ctx context.Context) error
	StartLoad(from mo.Option[float64])
	StopLoad()
	OnError(fn func(ErrorEvent))
}

// Reloader is implemented by adapters that can reload in place.
type Reloader interface {
	Reload(ctx context.Context) error
}

// DriverError is what an opaque engine driver reports.
type DriverError struct {
	Fatal   bool
	Type    string
	Details string
	Err     error
}

// Runtime describes the capabilities of the host the player runs in.
type Runtime struct {
	// NativeHLS is true on runtimes that play HLS without an adaptive engine.
	NativeHLS bool
}

// Select picks the engine for src by fixed precedence:
// DRM_DASH when the runtime plays HLS natively, the source needs DRM or the
// content is DASH; ADAPTIVE_HTTP for HLS; NATIVE otherwise.
func Select(src source.Source, contentType string, rt Runtime) Kind {
	switch {
	case rt.NativeHLS || src.NeedsDRM() || source.IsDASH(contentType):
		return Dash
	case source.IsHLS(contentType):
		return Adaptive
	default:
		return Native
	}
}

// Registry constructs a fresh adapter for each attach.
type Registry struct {
	Native   func() Adapter
	Adaptive func() Adapter
	Dash     func() Adapter
}

// New returns a new adapter of the given kind.
func (r Registry) New(kind Kind) (Adapter, error) {
	var ctor func() Adapter

	switch kind {
	case Native:
		ctor = r.Native
	case Adaptive:
		ctor = r.Adaptive
	case Dash:
		ctor = r.Dash
	}

	if ctor == nil {
		return nil, fmt.Errorf("no adapter registered for engine %s", kind)
	}

	return ctor(), nil
}

// handlers fans out error events to registered callbacks.
type handlers struct {
	fns []func(ErrorEvent)
}

func (h *handlers) add(fn func(ErrorEvent)) {
	if fn != nil {
		h.fns = append(h.fns, fn)
	}
}

func (h *handlers) emit(e ErrorEvent) {
	for _, fn := range h.fns {
		fn(e)
	}
}

// destroy releases a driver after an earlier failure. That failure is the
// one reported, so a destroy error is only logged.
func destroy(kind Kind, driver interface{ Destroy() error }) {
	if err := driver.Destroy(); err != nil {
		log.Component("engine").Debugf("destroy %s driver: %v", kind, err)
	}
}
