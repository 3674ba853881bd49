// Presentrush session relay
//
// Each session is a point-to-multipoint message channel between peers:
// - WebSockets per session ID: /play/:sessionid/ws
// - First connection to a session becomes the authoritative host
// - The relay assigns peer identities and stamps the sender on every frame
// - Frames are routed by address only; game payloads are never interpreted
// - Host disconnect ends the session; other peers are dropped
// - Sessions auto-reaped after a configurable idle timeout
// - Random 8-char session IDs via crypto/rand, with collision check
// - In-browser QR code to share a session URL, backed by go-qrcode

package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"presentrush/transport"
)

type peer struct {
	conn *websocket.Conn
	send chan transport.Frame
	id   string
}

type routedFrame struct {
	from  string
	frame transport.Frame
}

// relayHub routes frames between the peers of one session. It is the only
// goroutine touching its maps; pumps communicate through channels.
type relayHub struct {
	id    string
	peers map[string]*peer

	register chan *peer
	unreg    chan *peer
	frames   chan routedFrame

	mu         sync.RWMutex
	hostID     string
	createdAt  time.Time
	lastActive time.Time
	closed     bool
}

func newRelayHub(sessionID string) *relayHub {
	now := time.Now()
	return &relayHub{
		id:         sessionID,
		peers:      make(map[string]*peer),
		register:   make(chan *peer),
		unreg:      make(chan *peer),
		frames:     make(chan routedFrame, 64),
		createdAt:  now,
		lastActive: now,
	}
}

func (h *relayHub) run(cfg *Config) {
	for {
		select {
		case p := <-h.register:
			h.mu.Lock()
			h.lastActive = time.Now()

			// First peer in becomes the session host.
			if h.hostID == "" {
				h.hostID = p.id
			}
			h.peers[p.id] = p
			hostID := h.hostID
			h.mu.Unlock()

			p.send <- transport.Frame{
				Ctl:    transport.CtlWelcome,
				PeerID: p.id,
				HostID: hostID,
			}
			logf(cfg, "RELAY: Peer %s joined session %s (host: %s)", p.id, h.id, hostID)

		case p := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.peers[p.id]; ok {
				delete(h.peers, p.id)
				close(p.send)
			}
			isHost := p.id == h.hostID
			h.mu.Unlock()

			// Without its host the session cannot continue.
			if isHost {
				logf(cfg, "RELAY: Host left, closing session %s", h.id)
				h.closeAll()
			}

		case rf := <-h.frames:
			h.route(rf)
		}
	}
}

// route delivers one frame according to its address. Slow peers are evicted
// rather than blocking the hub.
func (h *relayHub) route(rf routedFrame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	f := rf.frame
	f.Ctl = ""
	f.From = rf.from

	deliver := func(p *peer) {
		select {
		case p.send <- f:
		default:
			delete(h.peers, p.id)
			close(p.send)
		}
	}

	switch f.To {
	case transport.ToAll:
		for id, p := range h.peers {
			if id == rf.from {
				continue
			}
			deliver(p)
		}
	case transport.ToHost, "":
		if p, ok := h.peers[h.hostID]; ok {
			deliver(p)
		}
	default:
		if p, ok := h.peers[f.To]; ok {
			deliver(p)
		}
	}
}

// closeAll disconnects every peer of this hub (host left, or reaped).
func (h *relayHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, p := range h.peers {
		close(p.send)
		delete(h.peers, id)
	}
}

func (p *peer) readPump(h *relayHub) {
	defer func() {
		h.unreg <- p
		_ = p.conn.Close()
	}()

	for {
		var f transport.Frame
		if err := p.conn.ReadJSON(&f); err != nil {
			return
		}
		if f.Ctl != "" {
			continue // peers do not send control frames
		}
		h.frames <- routedFrame{from: p.id, frame: f}
	}
}

func (p *peer) writePump() {
	defer p.conn.Close()

	for f := range p.send {
		if err := p.conn.WriteJSON(f); err != nil {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// newPeerID generates a fresh identity for one connection.
func newPeerID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	return hex.EncodeToString(buf)
}

// sessionManager holds a set of hubs keyed by session ID, so each
// $path/$sessionid is its own isolated match.
type sessionManager struct {
	mu          sync.Mutex
	hubs        map[string]*relayHub
	idleTimeout time.Duration
}

func newSessionManager(idleTimeout time.Duration) *sessionManager {
	sm := &sessionManager{
		hubs:        make(map[string]*relayHub),
		idleTimeout: idleTimeout,
	}
	if idleTimeout > 0 {
		go sm.reaperLoop()
	}
	return sm
}

func (sm *sessionManager) getHub(cfg *Config, sessionID string) *relayHub {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if hub, ok := sm.hubs[sessionID]; ok {
		return hub
	}

	hub := newRelayHub(sessionID)
	sm.hubs[sessionID] = hub
	go hub.run(cfg)
	return hub
}

// newSessionID generates a crypto-random session ID and ensures it doesn't
// collide with existing sessions.
func (sm *sessionManager) newSessionID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		sm.mu.Lock()
		_, exists := sm.hubs[id]
		sm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs idle longer than idleTimeout.
func (sm *sessionManager) reaperLoop() {
	ticker := time.NewTicker(sm.idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-sm.idleTimeout)

		sm.mu.Lock()
		for id, hub := range sm.hubs {
			hub.mu.RLock()
			last := hub.lastActive
			hub.mu.RUnlock()

			if last.Before(cutoff) {
				delete(sm.hubs, id)
				go hub.closeAll()
			}
		}
		sm.mu.Unlock()
	}
}

// serveRelayWS attaches one websocket connection to the hub named by
// :sessionid.
func serveRelayWS(cfg *Config, sm *sessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sessionID := ps.ByName("sessionid")
		if sessionID == "" {
			http.Error(w, "missing session id", http.StatusBadRequest)
			return
		}

		peerID := newPeerID()
		if peerID == "" {
			http.Error(w, "unable to assign peer id", http.StatusInternalServerError)
			return
		}

		hub := sm.getHub(cfg, sessionID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		p := &peer{
			conn: conn,
			send: make(chan transport.Frame, 16),
			id:   peerID,
		}

		hub.register <- p

		go p.writePump()
		p.readPump(hub)
	}
}

// qrHandler generates a PNG QR code for the current session URL.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("sessionid")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:sessionid/qr; strip trailing "/qr" for the share URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// serveSessionInfo renders a minimal share page with the join command.
func serveSessionInfo(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sessionID := ps.ByName("sessionid")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		body := "Session " + sessionID + ". Join with: presentrush play --session " + sessionID + " --relay " + r.Host
		_, _ = w.Write([]byte(newPage("presentrush", body)))
	}
}

// redirectNewSession handles GET /path by generating a new random session ID
// (with server-side collision detection) and redirecting to /path/:sessionid.
func redirectNewSession(cfg *Config, path string, sm *sessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		sessionID := sm.newSessionID()
		logf(cfg, "RELAY: Created session %s/%s", path, sessionID)
		http.Redirect(w, r, path+"/"+sessionID, http.StatusTemporaryRedirect)
	}
}

// registerArena sets up routes so that:
//   - $path                  → redirects to a new random session (8-char ID)
//   - $path/:sessionid       → share page
//   - $path/:sessionid/ws    → WebSocket relay for that session
//   - $path/:sessionid/qr    → PNG QR code for that session URL
func registerArena(cfg *Config, path string, mux *httprouter.Router) {
	sm := newSessionManager(cfg.sessionTimeout)

	mux.GET(path, redirectNewSession(cfg, path, sm))

	mux.GET(cfg.prefix+path+"/:sessionid", serveSessionInfo(cfg))

	mux.GET(cfg.prefix+path+"/:sessionid/ws", serveRelayWS(cfg, sm))

	mux.GET(cfg.prefix+path+"/:sessionid/qr", qrHandler)
}
