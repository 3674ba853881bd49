package session

import (
	"context"
	"fmt"
	"sync"

	"presentrush/game"
	"presentrush/protocol"
	"presentrush/transport"
)

// Client is the thin participant role: it forwards local input to the host
// and holds a stale-by-design replica of the game state, replaced wholesale
// on every snapshot.
type Client struct {
	tr transport.Transport

	playerID string
	view     snapshotHolder

	mu       sync.Mutex
	lastSent game.Input
	sentAny  bool

	accepted chan struct{}
	once     sync.Once
}

// Join connects the client role over tr: it sends a join request to the
// host and blocks until the host accepts or ctx expires.
func Join(ctx context.Context, tr transport.Transport, name string, skin game.Skin) (*Client, error) {
	c := &Client{
		tr:       tr,
		accepted: make(chan struct{}),
	}
	tr.SetHandler(c.handle)

	req := protocol.JoinRequest{Name: name, Skin: skin}
	b, err := protocol.Encode(protocol.MsgJoinRequest, req)
	if err != nil {
		return nil, err
	}
	if err := tr.SendToHost(b); err != nil {
		return nil, err
	}

	select {
	case <-c.accepted:
		return c, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("session: join not accepted: %w", ctx.Err())
	}
}

// ID is this participant's player identity, valid after Join returns.
func (c *Client) ID() string { return c.playerID }

// Snapshot returns the latest received state. Callers must treat it as
// read-only; it is replaced, never mutated, on the next update.
func (c *Client) Snapshot() *game.State { return c.view.get() }

// SetInput forwards the local movement intent to the host. Sent only when
// the value changes; duplicates would be harmless but are pointless.
func (c *Client) SetInput(in game.Input) {
	c.mu.Lock()
	if c.sentAny && in == c.lastSent {
		c.mu.Unlock()
		return
	}
	c.lastSent = in
	c.sentAny = true
	c.mu.Unlock()

	b, err := protocol.Encode(protocol.MsgInput, protocol.Input{DX: in.DX, DY: in.DY})
	if err != nil {
		return
	}
	_ = c.tr.SendToHost(b)
}

// Leave releases the connection.
func (c *Client) Leave() error { return c.tr.Close() }

func (c *Client) handle(data []byte, from string) {
	// Everything authoritative comes from the host; frames claiming another
	// sender are dropped.
	if from != c.tr.HostID() {
		return
	}

	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		return
	}

	switch env.T {
	case protocol.MsgJoinAccept:
		acc, err := protocol.DecodePayload[protocol.JoinAccept](env)
		if err != nil || acc.State == nil {
			return
		}
		c.playerID = acc.PlayerID
		c.view.set(acc.State)
		c.once.Do(func() { close(c.accepted) })

	case protocol.MsgGameUpdate:
		upd, err := protocol.DecodePayload[protocol.GameUpdate](env)
		if err != nil || upd.State == nil {
			return
		}
		c.view.set(upd.State)

	case protocol.MsgStartGame, protocol.MsgGameOver:
		// Both are carried by the surrounding snapshots; nothing to do
		// beyond what the next game_update replaces.

	default:
		// unknown tags are ignored
	}
}
