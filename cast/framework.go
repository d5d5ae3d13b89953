package cast

import "context"

// Status is the connection status reported by a session handle.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusStopped      Status = "stopped"
)

// Framework discovers receivers and opens sessions to them.
// Callbacks may be invoked on any goroutine.
type Framework interface {
	// Ready reports whether the framework finished loading.
	Ready() bool
	OnAvailability(fn func(available bool))
	// RequestSession may block until the receiver accepts or rejects.
	RequestSession(ctx context.Context, receiverID string) (Handle, error)
}

// Handle is an opaque session with one receiver.
// Listener callbacks may be invoked on any goroutine.
type Handle interface {
	ID() string
	Status() Status
	ReceiverName() string
	AddUpdateListener(fn func(Status))
	AddMessageListener(namespace string, fn func(payload []byte))
	SendMessage(ctx context.Context, namespace string, payload []byte) error
	Stop(ctx context.Context) error
}
