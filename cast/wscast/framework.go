package wscast

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vidplay/vidplay/cast"
	"github.com/vidplay/vidplay/log"
	"golang.org/x/net/websocket"
)

// ErrNoReceiver is returned by RequestSession when no receiver URL is known.
var ErrNoReceiver = errors.New("no receiver configured")

const defaultProbeInterval = 5 * time.Second

// Framework implements cast.Framework for websocket receivers.
type Framework struct {
	receiver string
	origin   string
	interval time.Duration
	clock    clock.Clock
	log      log.Entry

	mu        sync.Mutex
	ready     bool
	available mo.Option[bool]
	listeners []func(bool)
}

var _ cast.Framework = (*Framework)(nil)

// Option configures a Framework.
type Option func(*Framework)

// WithProbeInterval sets how often Watch checks the receiver.
func WithProbeInterval(d time.Duration) Option {
	return func(f *Framework) { f.interval = d }
}

// WithClock replaces the wall clock used by Watch.
func WithClock(c clock.Clock) Option {
	return func(f *Framework) { f.clock = c }
}

// New returns a framework for the receiver at rawURL. http and https URLs
// are rewritten to ws and wss. An empty URL is allowed: sessions then need
// an explicit receiver id.
func New(rawURL string, opts ...Option) (*Framework, error) {
	f := &Framework{
		interval: defaultProbeInterval,
		clock:    clock.New(),
		log:      log.Component("wscast"),
	}

	if rawURL != "" {
		u, origin, err := normalize(rawURL)
		if err != nil {
			return nil, err
		}
		f.receiver, f.origin = u, origin
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// normalize returns the websocket URL and the matching http origin.
func normalize(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("receiver url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if !strings.HasPrefix(u.Scheme, "ws") || u.Host == "" {
		return "", "", fmt.Errorf("receiver url: invalid scheme or host in %q", rawURL)
	}

	origin := url.URL{Scheme: lo.Ternary(u.Scheme == "wss", "https", "http"), Host: u.Host}
	return u.String(), origin.String(), nil
}

// Ready reports whether the first probe finished.
func (f *Framework) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

// OnAvailability registers fn. If availability is already known fn is
// called with it right away.
func (f *Framework) OnAvailability(fn func(available bool)) {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	known := f.available
	f.mu.Unlock()

	if available, ok := known.Get(); ok {
		fn(available)
	}
}

func (f *Framework) setAvailable(available bool) {
	f.mu.Lock()
	f.ready = true
	if prev, ok := f.available.Get(); ok && prev == available {
		f.mu.Unlock()
		return
	}
	f.available = mo.Some(available)
	listeners := append([]func(bool){}, f.listeners...)
	f.mu.Unlock()

	f.log.Infof("receiver %s available: %t", f.receiver, available)
	for _, fn := range listeners {
		fn(available)
	}
}

// Watch probes the receiver until ctx is done, reporting availability
// changes to the listeners. Without a receiver URL the framework becomes
// ready with no receivers and Watch returns.
func (f *Framework) Watch(ctx context.Context) {
	if f.receiver == "" {
		f.setAvailable(false)
		return
	}

	ticker := f.clock.Ticker(f.interval)
	defer ticker.Stop()

	for {
		f.setAvailable(f.probe(ctx))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (f *Framework) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, f.interval)
	defer cancel()

	conn, err := f.dial(ctx, f.receiver, f.origin)
	if err != nil {
		f.log.Debugf("probe %s: %v", f.receiver, err)
		return false
	}
	_ = conn.Close()
	return true
}

func (f *Framework) dial(ctx context.Context, target, origin string) (*websocket.Conn, error) {
	config, err := websocket.NewConfig(target, origin)
	if err != nil {
		return nil, err
	}
	return config.DialContext(ctx)
}

// RequestSession dials the receiver and says hello. receiverID, when set,
// is the receiver's URL and overrides the one the framework was built with.
// The returned handle is connecting until the receiver reports its status.
func (f *Framework) RequestSession(ctx context.Context, receiverID string) (cast.Handle, error) {
	target, origin := f.receiver, f.origin
	if receiverID != "" {
		var err error
		if target, origin, err = normalize(receiverID); err != nil {
			return nil, err
		}
	}
	if target == "" {
		return nil, ErrNoReceiver
	}

	conn, err := f.dial(ctx, target, origin)
	if err != nil {
		return nil, fmt.Errorf("dial receiver: %w", err)
	}

	h := newHandle(uuid.New().String(), conn, f.log)
	if err := h.write(ctx, Frame{Kind: KindHello, Session: h.id, Receiver: receiverID}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}

	go h.read()

	f.log.Infof("session %s requested from %s", h.id, target)
	return h, nil
}
