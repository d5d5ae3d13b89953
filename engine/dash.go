package engine

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/media"
	"github.com/vidplay/vidplay/source"
)

// Key system identifiers understood by DASH drivers.
const (
	KeySystemWidevine  = "com.widevine.alpha"
	KeySystemFairPlay  = "com.apple.fps.1_0"
	KeySystemPlayReady = "com.microsoft.playready"
)

// DashConfig is the DRM configuration handed to a DashDriver.
type DashConfig struct {
	// Servers maps a key system to its license server.
	Servers map[string]string
	// Certificates maps a key system to its server certificate url.
	Certificates   map[string]string
	LicenseHeaders map[string]string
	Base64License  bool
}

// DashDriver is a multi-DRM engine with an explicit load/unload cycle.
type DashDriver interface {
	Configure(cfg DashConfig) error
	Attach(el media.Element) error
	Load(ctx context.Context, url string, start mo.Option[float64]) error
	Unload(ctx context.Context) error
	Destroy() error
	OnError(fn func(DriverError))
}

// DashAdapter drives a DashDriver and supports reloading in place.
type DashAdapter struct {
	newDriver func() DashDriver
	driver    DashDriver
	el        media.Element
	src       source.Source
	handlers  handlers
}

// NewDash returns an adapter creating a fresh driver on every attach.
func NewDash(newDriver func() DashDriver) *DashAdapter {
	return &DashAdapter{newDriver: newDriver}
}

func (d *DashAdapter) Kind() Kind { return Dash }

// BuildConfig derives the driver configuration from the source's DRM metadata.
func BuildConfig(src source.Source) DashConfig {
	cfg := DashConfig{
		Servers:        map[string]string{},
		Certificates:   map[string]string{},
		LicenseHeaders: map[string]string{},
	}

	if src.DRM == nil {
		return cfg
	}

	var keySystem string
	switch src.DRM.Type {
	case source.DRMWidevine:
		keySystem = KeySystemWidevine
	case source.DRMFairPlay:
		keySystem = KeySystemFairPlay
	case source.DRMPlayReady:
		keySystem = KeySystemPlayReady
	default:
		return cfg
	}

	cfg.Servers[keySystem] = src.DRM.LicenseURL
	if src.DRM.CertificateURL != "" {
		cfg.Certificates[keySystem] = src.DRM.CertificateURL
	}
	cfg.LicenseHeaders = lo.Assign(cfg.LicenseHeaders, src.DRM.LicenseHeader)
	cfg.Base64License = src.DRM.RequireBase64Encoding

	return cfg
}

func (d *DashAdapter) Attach(ctx context.Context, el media.Element, src source.Source, _ config.Options) error {
	driver := d.newDriver()
	driver.OnError(func(e DriverError) {
		d.handlers.emit(ErrorEvent{Fatal: e.Fatal, Details: e.Details, Err: e.Err})
	})

	if err := driver.Configure(BuildConfig(src)); err != nil {
		destroy(Dash, driver)
		return fmt.Errorf("dash configure: %w", err)
	}

	if err := driver.Attach(el); err != nil {
		destroy(Dash, driver)
		return fmt.Errorf("dash attach: %w", err)
	}

	if err := driver.Load(ctx, src.URL, src.StartTime); err != nil {
		destroy(Dash, driver)
		return fmt.Errorf("dash load: %w", err)
	}

	d.driver, d.el, d.src = driver, el, src
	return nil
}

// Reload loads the same url again at the current playhead.
func (d *DashAdapter) Reload(ctx context.Context) error {
	if d.driver == nil {
		return ErrNotAttached
	}

	start := mo.None[float64]()
	if t := d.el.CurrentTime(); t > 0 && !d.el.IsLive() {
		start = mo.Some(t)
	}

	if err := d.driver.Load(ctx, d.src.URL, start); err != nil {
		return fmt.Errorf("dash reload: %w", err)
	}
	return nil
}

func (d *DashAdapter) Detach(ctx context.Context) error {
	if d.driver == nil {
		return nil
	}

	driver := d.driver
	d.driver, d.el = nil, nil

	if err := driver.Unload(ctx); err != nil {
		destroy(Dash, driver)
		return fmt.Errorf("dash unload: %w", err)
	}

	return driver.Destroy()
}

// StartLoad is a no-op; the DASH driver streams continuously.
func (d *DashAdapter) StartLoad(mo.Option[float64]) {}

// StopLoad is a no-op; the DASH driver streams continuously.
func (d *DashAdapter) StopLoad() {}

func (d *DashAdapter) OnError(fn func(ErrorEvent)) {
	d.handlers.add(fn)
}
