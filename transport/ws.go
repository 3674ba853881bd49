package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// WS is a Transport over a websocket connection to a session relay.
type WS struct {
	conn *websocket.Conn

	id   string
	host string

	writeMu sync.Mutex

	handlerMu sync.RWMutex
	handler   Handler

	closeOnce sync.Once
}

// Dial connects to a relay session URL (ws:// or wss://) and blocks until
// the relay's welcome frame assigns this peer an identity.
func Dial(ctx context.Context, url string) (*WS, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var welcome Frame
	if err := conn.ReadJSON(&welcome); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: reading welcome: %w", err)
	}
	if welcome.Ctl != CtlWelcome || welcome.PeerID == "" {
		conn.Close()
		return nil, fmt.Errorf("transport: unexpected first frame %q", welcome.Ctl)
	}

	t := &WS{
		conn: conn,
		id:   welcome.PeerID,
		host: welcome.HostID,
	}
	go t.readLoop()
	return t, nil
}

func (t *WS) ID() string     { return t.id }
func (t *WS) HostID() string { return t.host }
func (t *WS) IsHost() bool   { return t.id == t.host }

func (t *WS) Broadcast(data []byte) error {
	return t.write(Frame{To: ToAll, Data: data})
}

func (t *WS) SendTo(peer string, data []byte) error {
	if peer == "" {
		return fmt.Errorf("transport: empty peer id")
	}
	return t.write(Frame{To: peer, Data: data})
}

func (t *WS) SendToHost(data []byte) error {
	return t.write(Frame{To: ToHost, Data: data})
}

func (t *WS) SetHandler(h Handler) {
	t.handlerMu.Lock()
	t.handler = h
	t.handlerMu.Unlock()
}

func (t *WS) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})
	return err
}

func (t *WS) write(f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, b)
}

func (t *WS) readLoop() {
	defer t.Close()

	for {
		var f Frame
		if err := t.conn.ReadJSON(&f); err != nil {
			return
		}
		if f.Ctl != "" || len(f.Data) == 0 {
			continue
		}

		t.handlerMu.RLock()
		h := t.handler
		t.handlerMu.RUnlock()

		if h != nil {
			h(f.Data, f.From)
		}
	}
}
