// Package wscast reaches cast receivers over a websocket.
//
// Every websocket frame is a JSON Frame. A session starts with a hello
// from the sender, after which the receiver reports its status and both
// sides exchange namespaced messages until one of them says bye or the
// connection drops.
package wscast

import (
	"encoding/json"

	"github.com/vidplay/vidplay/cast"
)

// Frame kinds.
const (
	KindHello   = "hello"
	KindStatus  = "status"
	KindMessage = "message"
	KindBye     = "bye"
)

// Frame is the unit written to and read from the websocket.
type Frame struct {
	Kind      string          `json:"kind"`
	Session   string          `json:"session"`
	Receiver  string          `json:"receiver,omitempty"`
	Name      string          `json:"name,omitempty"`
	Status    cast.Status     `json:"status,omitempty"`
	Namespace string          `json:"namespace,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
