package engine

import (
	"context"
	"fmt"

	"github.com/samber/mo"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/media"
	"github.com/vidplay/vidplay/source"
)

// NativeAdapter plays directly through the media element.
// Element errors reach the player as media.Error events, not through OnError.
type NativeAdapter struct {
	el       media.Element
	handlers handlers
}

// NewNative returns an unattached native adapter.
func NewNative() *NativeAdapter {
	return &NativeAdapter{}
}

func (n *NativeAdapter) Kind() Kind { return Native }

func (n *NativeAdapter) Attach(ctx context.Context, el media.Element, src source.Source, _ config.Options) error {
	if err := el.Load(ctx, src.URL, src.StartTime); err != nil {
		return fmt.Errorf("native load: %w", err)
	}
	n.el = el
	return nil
}

func (n *NativeAdapter) Detach(ctx context.Context) error {
	if n.el == nil {
		return nil
	}
	el := n.el
	n.el = nil
	return el.Unload(ctx)
}

// StartLoad is a no-op; the element buffers on its own.
func (n *NativeAdapter) StartLoad(mo.Option[float64]) {}

// StopLoad is a no-op; the element buffers on its own.
func (n *NativeAdapter) StopLoad() {}

func (n *NativeAdapter) OnError(fn func(ErrorEvent)) {
	n.handlers.add(fn)
}
