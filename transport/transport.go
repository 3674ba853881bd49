// Package transport carries opaque game messages between the peers of one
// session: a point-to-multipoint channel with a single host. Delivery order
// from a single sender is preserved; cross-sender ordering is not.
package transport

import "encoding/json"

// Well-known frame addresses.
const (
	// ToHost routes a frame to whichever peer currently holds the host role.
	ToHost = "host"
	// ToAll routes a frame to every peer except the sender.
	ToAll = "*"
)

// CtlWelcome is the control frame the relay sends once on connect.
const CtlWelcome = "welcome"

// Frame is the relay wire format. Game payloads ride opaquely in Data; the
// relay only reads the addressing fields.
type Frame struct {
	Ctl    string          `json:"ctl,omitempty"`
	From   string          `json:"from,omitempty"` // stamped by the relay on delivery
	To     string          `json:"to,omitempty"`
	PeerID string          `json:"peerId,omitempty"` // welcome only
	HostID string          `json:"hostId,omitempty"` // welcome only
	Data   json.RawMessage `json:"data,omitempty"`
}

// Handler receives one inbound message and the sender's identity. Called
// from the transport's read goroutine, one message at a time.
type Handler func(data []byte, from string)

// Transport is one peer's connection to a session.
type Transport interface {
	// ID is this peer's stable identity, assigned at connect.
	ID() string
	// HostID is the identity of the session's host peer.
	HostID() string
	// IsHost reports whether this peer holds the host role.
	IsHost() bool

	// Broadcast sends to every other peer in the session (host role).
	Broadcast(data []byte) error
	// SendTo sends to exactly one peer.
	SendTo(peer string, data []byte) error
	// SendToHost sends to the session host (client role).
	SendToHost(data []byte) error

	// SetHandler installs the inbound message callback. Messages arriving
	// before a handler is installed are dropped; the protocol is best-effort.
	SetHandler(h Handler)

	// Close releases the connection and local presence.
	Close() error
}
