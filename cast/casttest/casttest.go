// Package casttest provides an in-memory casting framework for tests.
package casttest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/vidplay/vidplay/cast"
)

// Framework is a scriptable cast.Framework.
type Framework struct {
	mu           sync.Mutex
	ready        bool
	availability []func(bool)

	// Next is returned by the next RequestSession; nil makes it fail.
	Next *Handle
	// Requests counts RequestSession calls.
	Requests int
}

// NewFramework returns a ready framework whose next session is h.
func NewFramework(h *Handle) *Framework {
	return &Framework{ready: true, Next: h}
}

func (f *Framework) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

// SetReady flips Ready.
func (f *Framework) SetReady(ready bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = ready
}

func (f *Framework) OnAvailability(fn func(bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.availability = append(f.availability, fn)
}

// SetAvailable notifies every availability listener.
func (f *Framework) SetAvailable(available bool) {
	f.mu.Lock()
	fns := append([]func(bool){}, f.availability...)
	f.mu.Unlock()

	for _, fn := range fns {
		fn(available)
	}
}

func (f *Framework) RequestSession(context.Context, string) (cast.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests++
	if f.Next == nil {
		return nil, errors.New("no receiver answered")
	}
	return f.Next, nil
}

// Handle is a scriptable cast.Handle.
type Handle struct {
	mu       sync.Mutex
	name     string
	status   cast.Status
	updates  []func(cast.Status)
	messages []func([]byte)
	sent     [][]byte
	stops    int

	// SendErr fails every SendMessage when set.
	SendErr error
	// Hung makes Stop wait for its context like an unresponsive receiver.
	Hung bool
}

// NewHandle returns a handle that is still connecting.
func NewHandle(name string) *Handle {
	return &Handle{name: name, status: cast.StatusConnecting}
}

func (h *Handle) ID() string { return "test-" + h.name }

func (h *Handle) ReceiverName() string { return h.name }

func (h *Handle) Status() cast.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *Handle) AddUpdateListener(fn func(cast.Status)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, fn)
}

func (h *Handle) AddMessageListener(_ string, fn func([]byte)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, fn)
}

func (h *Handle) SendMessage(_ context.Context, _ string, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.SendErr != nil {
		return h.SendErr
	}
	h.sent = append(h.sent, payload)
	return nil
}

func (h *Handle) Stop(ctx context.Context) error {
	h.mu.Lock()
	h.stops++
	hung := h.Hung
	h.mu.Unlock()

	if hung {
		<-ctx.Done()
		return ctx.Err()
	}
	h.SetStatus(cast.StatusStopped)
	return nil
}

// Stops counts Stop calls.
func (h *Handle) Stops() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stops
}

// SetStatus changes the status and notifies update listeners.
func (h *Handle) SetStatus(status cast.Status) {
	h.mu.Lock()
	h.status = status
	fns := append([]func(cast.Status){}, h.updates...)
	h.mu.Unlock()

	for _, fn := range fns {
		fn(status)
	}
}

// Deliver hands payload to every message listener, as if sent by the receiver.
func (h *Handle) Deliver(payload []byte) {
	h.mu.Lock()
	fns := append([]func([]byte){}, h.messages...)
	h.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}

// Sent returns the decoded envelopes sent so far.
func (h *Handle) Sent() []cast.Envelope {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]cast.Envelope, 0, len(h.sent))
	for _, payload := range h.sent {
		var env cast.Envelope
		if json.Unmarshal(payload, &env) == nil {
			out = append(out, env)
		}
	}
	return out
}

// SentOfType returns the sent envelopes of one type.
func (h *Handle) SentOfType(typ string) []cast.Envelope {
	var out []cast.Envelope
	for _, env := range h.Sent() {
		if env.Type == typ {
			out = append(out, env)
		}
	}
	return out
}
