package wscast

import (
	"context"
	"errors"
	"sync"

	"github.com/vidplay/vidplay/cast"
	"github.com/vidplay/vidplay/log"
	"golang.org/x/net/websocket"
)

// ErrClosed is returned when sending on a finished session.
var ErrClosed = errors.New("session closed")

// Handle is one websocket session. It implements cast.Handle.
type Handle struct {
	id   string
	conn *websocket.Conn
	log  log.Entry

	mu       sync.Mutex
	status   cast.Status
	name     string
	stopping bool
	updates  []func(cast.Status)
	messages map[string][]func([]byte)

	writeMu sync.Mutex
	done    chan struct{}
}

var _ cast.Handle = (*Handle)(nil)

func newHandle(id string, conn *websocket.Conn, l log.Entry) *Handle {
	return &Handle{
		id:       id,
		conn:     conn,
		log:      l.With("session", id),
		status:   cast.StatusConnecting,
		messages: make(map[string][]func([]byte)),
		done:     make(chan struct{}),
	}
}

func (h *Handle) ID() string { return h.id }

func (h *Handle) Status() cast.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *Handle) ReceiverName() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.name
}

func (h *Handle) AddUpdateListener(fn func(cast.Status)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, fn)
}

func (h *Handle) AddMessageListener(namespace string, fn func(payload []byte)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages[namespace] = append(h.messages[namespace], fn)
}

func (h *Handle) finished() bool {
	return h.status == cast.StatusStopped || h.status == cast.StatusDisconnected
}

// SendMessage writes payload on namespace. payload must be JSON.
func (h *Handle) SendMessage(ctx context.Context, namespace string, payload []byte) error {
	h.mu.Lock()
	finished := h.finished()
	h.mu.Unlock()
	if finished {
		return ErrClosed
	}

	return h.write(ctx, Frame{Kind: KindMessage, Session: h.id, Namespace: namespace, Payload: payload})
}

func (h *Handle) write(ctx context.Context, frame Frame) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	// A zero deadline clears any previous one.
	deadline, _ := ctx.Deadline()
	if err := h.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	return websocket.JSON.Send(h.conn, frame)
}

// Stop says bye, closes the connection and waits for the reader to finish
// or ctx to expire.
func (h *Handle) Stop(ctx context.Context) error {
	h.mu.Lock()
	if h.stopping || h.finished() {
		h.mu.Unlock()
		return nil
	}
	h.stopping = true
	h.mu.Unlock()

	if err := h.write(ctx, Frame{Kind: KindBye, Session: h.id}); err != nil {
		h.log.Debugf("bye: %v", err)
	}
	err := h.conn.Close()

	select {
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (h *Handle) read() {
	defer close(h.done)

	for {
		var frame Frame
		if err := websocket.JSON.Receive(h.conn, &frame); err != nil {
			h.mu.Lock()
			stopping := h.stopping
			h.mu.Unlock()

			if stopping {
				h.setStatus(cast.StatusStopped, "")
			} else {
				h.log.Warnf("receiver connection lost: %v", err)
				h.setStatus(cast.StatusDisconnected, "")
			}
			_ = h.conn.Close()
			return
		}

		if frame.Session != "" && frame.Session != h.id {
			h.log.Debugf("dropping frame for session %s", frame.Session)
			continue
		}

		switch frame.Kind {
		case KindStatus:
			h.setStatus(frame.Status, frame.Name)
		case KindMessage:
			h.deliver(frame.Namespace, frame.Payload)
		case KindBye:
			h.setStatus(cast.StatusStopped, "")
			_ = h.conn.Close()
			return
		default:
			h.log.Debugf("dropping frame of kind %q", frame.Kind)
		}
	}
}

func (h *Handle) setStatus(status cast.Status, name string) {
	h.mu.Lock()
	if name != "" {
		h.name = name
	}
	if status == "" || status == h.status || h.finished() {
		h.mu.Unlock()
		return
	}
	h.status = status
	updates := append([]func(cast.Status){}, h.updates...)
	h.mu.Unlock()

	h.log.Debugf("status %s", status)
	for _, fn := range updates {
		fn(status)
	}
}

func (h *Handle) deliver(namespace string, payload []byte) {
	h.mu.Lock()
	listeners := append([]func([]byte){}, h.messages[namespace]...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(payload)
	}
}
