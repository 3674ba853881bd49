package session

import (
	"context"
	"math/rand"
	"time"

	"presentrush/chaos"
	"presentrush/game"
	"presentrush/protocol"
	"presentrush/transport"
)

// HostConfig configures the authoritative side of a session.
type HostConfig struct {
	Name string
	Skin game.Skin

	// Provider supplies chaos event content. Wrapped with chaos.Reliable,
	// so a failing provider degrades to local fallback events.
	Provider chaos.Provider

	// Seed for the engine's random source; 0 means time-based.
	Seed int64

	// Logf receives verbose progress lines. Nil disables logging.
	Logf func(format string, args ...any)

	// OnGameOver is called once, from the host goroutine, when the match
	// ends.
	OnGameOver func(winnerID string)
}

type inbound struct {
	data []byte
	from string
}

// Host owns the canonical game state and runs the simulation loop. All
// state mutation happens on the Run goroutine; the transport handler and
// the UI only ever post to channels or read published snapshots.
type Host struct {
	tr  transport.Transport
	cfg HostConfig
	eng *game.Engine

	state  *game.State
	inputs map[string]game.Input

	inbox   chan inbound
	localIn chan game.Input
	startCh chan struct{}
	fetched chan game.ChaosEvent
	quit    chan struct{}

	pendingFetch bool
	nextEventAt  float64 // elapsed match seconds
	lastAttempt  time.Time

	view snapshotHolder
}

// NewHost creates a host session. The local player is created immediately;
// remote players join through the transport.
func NewHost(tr transport.Transport, cfg HostConfig) *Host {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.Provider == nil {
		cfg.Provider = chaos.NewFallback()
	}

	local := &game.Player{
		ID:   tr.ID(),
		Name: cfg.Name,
		Skin: cfg.Skin,
		X:    game.ArenaWidth/2 - game.PlayerSize/2,
		Y:    game.ArenaHeight/2 - game.PlayerSize/2,
	}

	h := &Host{
		tr:          tr,
		cfg:         cfg,
		eng:         game.NewEngine(rand.NewSource(seed)),
		state:       game.NewState(local),
		inputs:      make(map[string]game.Input),
		inbox:       make(chan inbound, 256),
		localIn:     make(chan game.Input, 16),
		startCh:     make(chan struct{}, 1),
		fetched:     make(chan game.ChaosEvent, 1),
		quit:        make(chan struct{}),
		nextEventAt: game.EventInterval,
	}
	h.view.set(h.state.Clone())

	tr.SetHandler(func(data []byte, from string) {
		select {
		case h.inbox <- inbound{data: data, from: from}:
		case <-h.quit:
		}
	})
	return h
}

// ID is the host's own player identity.
func (h *Host) ID() string { return h.tr.ID() }

// Snapshot returns the most recently published state copy. Safe to call
// from any goroutine; the returned value is never mutated again.
func (h *Host) Snapshot() *game.State { return h.view.get() }

// SetInput records the host's own movement intent for the next tick.
func (h *Host) SetInput(in game.Input) {
	select {
	case h.localIn <- in:
	default:
	}
}

// Start begins the match. Joins arriving afterwards are still accepted.
func (h *Host) Start() {
	select {
	case h.startCh <- struct{}{}:
	default:
	}
}

// Stop ends the session without finishing the match.
func (h *Host) Stop() {
	select {
	case <-h.quit:
	default:
		close(h.quit)
	}
}

// Run drives the simulation until the match ends, Stop is called, or ctx is
// cancelled. It owns all state mutation.
func (h *Host) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / protocol.SimTickHz)
	defer ticker.Stop()
	defer h.tr.Close()

	lastTick := time.Now()
	var lastBroadcast time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.quit:
			return

		case m := <-h.inbox:
			h.handleMessage(m)

		case in := <-h.localIn:
			h.inputs[h.tr.ID()] = in

		case <-h.startCh:
			if h.state.Started || h.state.Over() {
				continue
			}
			h.state.Started = true
			lastTick = time.Now()
			h.logf("HOST: Match started with %d players", len(h.state.Players))
			if b, err := protocol.Encode(protocol.MsgStartGame, protocol.StartGame{}); err == nil {
				_ = h.tr.Broadcast(b)
			}
			h.publish()
			lastBroadcast = time.Now()

		case ev := <-h.fetched:
			h.pendingFetch = false
			// A fetch resolving after the match ended, or after another
			// event was installed, is discarded.
			if !h.state.Started || h.state.Over() || h.state.Event.Active {
				continue
			}
			game.ApplyEvent(h.state, ev)
			h.logf("HOST: Chaos event %q (%s) for %.0fs", ev.Name, ev.Type, ev.Remaining)

		case now := <-ticker.C:
			dt := now.Sub(lastTick).Seconds()
			lastTick = now
			if !h.state.Started || h.state.Over() {
				continue
			}

			if ended := h.eng.Advance(h.state, dt, h.inputs); ended {
				h.finish()
				return
			}

			h.maybeRequestEvent(now)

			if now.Sub(lastBroadcast) >= protocol.BroadcastInterval {
				h.publish()
				lastBroadcast = now
			}
		}
	}
}

func (h *Host) handleMessage(m inbound) {
	env, err := protocol.DecodeEnvelope(m.data)
	if err != nil || m.from == "" {
		return
	}

	switch env.T {
	case protocol.MsgJoinRequest:
		req, err := protocol.DecodePayload[protocol.JoinRequest](env)
		if err != nil {
			return
		}
		h.handleJoin(m.from, req)

	case protocol.MsgInput:
		if _, ok := h.state.Players[m.from]; !ok {
			return // unknown sender, ignore
		}
		in, err := protocol.DecodePayload[protocol.Input](env)
		if err != nil {
			return
		}
		h.inputs[m.from] = game.Input{DX: clampAxis(in.DX), DY: clampAxis(in.DY)}

	default:
		// unknown tags are ignored
	}
}

func (h *Host) handleJoin(from string, req protocol.JoinRequest) {
	p, ok := h.state.Players[from]
	if !ok {
		name := req.Name
		if name == "" {
			name = "Player " + from[:min(4, len(from))]
		}
		skin := req.Skin
		if !game.ValidSkin(skin) {
			skin = game.Skins[len(h.state.Players)%len(game.Skins)]
		}
		p = &game.Player{
			ID:   from,
			Name: name,
			Skin: skin,
			X:    float64(len(h.state.Players)) * game.PlayerSize * 2,
			Y:    game.ArenaHeight / 2,
		}
		if h.state.Event.Active {
			p.Frozen = h.state.Event.Type == game.EventFreeze
			p.Inverted = h.state.Event.Type == game.EventReverse
		}
		h.state.Players[from] = p
		h.logf("HOST: Player %q joined as %s", p.Name, p.Skin)
	}

	accept := protocol.JoinAccept{State: h.state.Clone(), PlayerID: from}
	if b, err := protocol.Encode(protocol.MsgJoinAccept, accept); err == nil {
		_ = h.tr.SendTo(from, b)
	}
	h.publish()
}

// maybeRequestEvent fires the asynchronous content fetch when no event is
// active, the next periodic mark in match time has passed, and the real-time
// cooldown since the last attempt has elapsed. The tick never waits on the
// fetch; the result is installed whenever it resolves.
func (h *Host) maybeRequestEvent(now time.Time) {
	if h.pendingFetch || h.state.Event.Active {
		return
	}
	elapsed := game.MatchDuration - h.state.TimeLeft
	if elapsed < h.nextEventAt {
		return
	}
	if !h.lastAttempt.IsZero() && now.Sub(h.lastAttempt).Seconds() < game.EventCooldown {
		return
	}

	h.pendingFetch = true
	h.lastAttempt = now
	h.nextEventAt = elapsed + game.EventInterval

	provider := chaos.Reliable(h.cfg.Provider)
	go func() {
		ev, err := provider.Generate(context.Background())
		if err != nil {
			return // Reliable never fails; kept for interface honesty
		}
		select {
		case h.fetched <- ev:
		case <-h.quit:
		}
	}()
}

// finish broadcasts the terminal snapshot and the game_over signal.
func (h *Host) finish() {
	h.publish()
	over := protocol.GameOver{WinnerID: h.state.WinnerID}
	if b, err := protocol.Encode(protocol.MsgGameOver, over); err == nil {
		_ = h.tr.Broadcast(b)
	}
	h.logf("HOST: Match over, winner %s", h.state.WinnerID)
	if h.cfg.OnGameOver != nil {
		h.cfg.OnGameOver(h.state.WinnerID)
	}
}

// publish broadcasts a full snapshot and records it for local rendering.
// The clone is immutable from here on.
func (h *Host) publish() {
	snap := h.state.Clone()
	h.view.set(snap)
	if b, err := protocol.Encode(protocol.MsgGameUpdate, protocol.GameUpdate{State: snap}); err == nil {
		_ = h.tr.Broadcast(b)
	}
}

func (h *Host) logf(format string, args ...any) {
	if h.cfg.Logf != nil {
		h.cfg.Logf(format, args...)
	}
}

func clampAxis(v int) int {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
