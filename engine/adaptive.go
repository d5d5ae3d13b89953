package engine

import (
	"context"
	"fmt"

	"github.com/samber/mo"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/media"
	"github.com/vidplay/vidplay/source"
)

// AdaptiveDriver is an HTTP adaptive streaming engine that feeds a media element.
type AdaptiveDriver interface {
	AttachMedia(el media.Element) error
	LoadSource(ctx context.Context, url string, start mo.Option[float64]) error
	StartLoad(from float64)
	StopLoad()
	DetachMedia() error
	Destroy() error
	OnError(fn func(DriverError))
}

// AdaptiveAdapter drives an AdaptiveDriver.
type AdaptiveAdapter struct {
	newDriver func() AdaptiveDriver
	driver    AdaptiveDriver
	handlers  handlers
}

// NewAdaptive returns an adapter creating a fresh driver on every attach.
func NewAdaptive(newDriver func() AdaptiveDriver) *AdaptiveAdapter {
	return &AdaptiveAdapter{newDriver: newDriver}
}

func (a *AdaptiveAdapter) Kind() Kind { return Adaptive }

func (a *AdaptiveAdapter) Attach(ctx context.Context, el media.Element, src source.Source, _ config.Options) error {
	driver := a.newDriver()
	driver.OnError(a.classify)

	if err := driver.AttachMedia(el); err != nil {
		destroy(Adaptive, driver)
		return fmt.Errorf("adaptive attach media: %w", err)
	}

	if err := driver.LoadSource(ctx, src.URL, src.StartTime); err != nil {
		destroy(Adaptive, driver)
		return fmt.Errorf("adaptive load source: %w", err)
	}

	a.driver = driver
	return nil
}

// classify turns a driver error into an ErrorEvent. A stalled buffer is
// never fatal, whatever the driver says.
func (a *AdaptiveAdapter) classify(e DriverError) {
	fatal := e.Fatal && e.Details != DetailsBufferStalled
	a.handlers.emit(ErrorEvent{Fatal: fatal, Details: e.Details, Err: e.Err})
}

func (a *AdaptiveAdapter) Detach(context.Context) error {
	if a.driver == nil {
		return nil
	}

	driver := a.driver
	a.driver = nil

	if err := driver.DetachMedia(); err != nil {
		destroy(Adaptive, driver)
		return fmt.Errorf("adaptive detach media: %w", err)
	}

	return driver.Destroy()
}

// StartLoad resumes segment loading; without a position it continues from the playhead.
func (a *AdaptiveAdapter) StartLoad(from mo.Option[float64]) {
	if a.driver != nil {
		a.driver.StartLoad(from.OrElse(-1))
	}
}

func (a *AdaptiveAdapter) StopLoad() {
	if a.driver != nil {
		a.driver.StopLoad()
	}
}

func (a *AdaptiveAdapter) OnError(fn func(ErrorEvent)) {
	a.handlers.add(fn)
}
