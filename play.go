package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"presentrush/chaos"
	"presentrush/game"
	"presentrush/session"
	"presentrush/transport"
	"presentrush/ui"
)

const joinTimeout = 10 * time.Second

// participant is what the render loop needs from either role.
type participant interface {
	ID() string
	Snapshot() *game.State
	SetInput(game.Input)
}

// Play connects to a relay session and runs the terminal client. The first
// peer into a session is assigned the host role by the relay and runs the
// authoritative simulation locally; everyone else is a thin client.
func Play(ctx context.Context, cfg *Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tr, err := transport.Dial(ctx, relayURL(cfg))
	if err != nil {
		return fmt.Errorf("unable to join session %q: %w", cfg.session, err)
	}
	defer tr.Close()

	name := cfg.name
	if name == "" {
		name = "Player " + tr.ID()[:4]
	}
	skin := game.Skin(cfg.skin)
	if !game.ValidSkin(skin) {
		skin = game.Skins[int(time.Now().UnixNano())%len(game.Skins)]
	}

	var part participant
	var host *session.Host

	if tr.IsHost() {
		host = session.NewHost(tr, session.HostConfig{
			Name:     name,
			Skin:     skin,
			Provider: eventProvider(cfg),
			Logf: func(format string, args ...any) {
				logf(cfg, format, args...)
			},
		})
		go host.Run(ctx)
		part = host
	} else {
		joinCtx, cancelJoin := context.WithTimeout(ctx, joinTimeout)
		defer cancelJoin()

		client, err := session.Join(joinCtx, tr, name, skin)
		if err != nil {
			return err
		}
		part = client
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	renderer := ui.NewRenderer(screen)
	frame := time.NewTicker(time.Second / 30)
	defer frame.Stop()

	var cur game.Input

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch tev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				switch ui.KeyToAction(tev) {
				case ui.ActionQuit:
					if host != nil {
						host.Stop()
					}
					return nil
				case ui.ActionStart:
					if host != nil {
						host.Start()
					}
				case ui.ActionHalt:
					cur = game.Input{}
					part.SetInput(cur)
				default:
					if in, ok := ui.KeyToInput(tev); ok {
						cur = in
						part.SetInput(cur)
					}
				}
			}

		case <-frame.C:
			renderer.Draw(part.Snapshot(), part.ID())
		}
	}
}

func eventProvider(cfg *Config) chaos.Provider {
	if cfg.eventURL == "" {
		return chaos.NewFallback()
	}
	return &chaos.HTTPProvider{URL: cfg.eventURL, APIKey: cfg.eventKey}
}

// relayURL builds the websocket URL for the configured relay and session.
// The relay flag may be a bare host:port or carry an http(s)/ws(s) scheme.
func relayURL(cfg *Config) string {
	addr := cfg.relay
	scheme := "ws"

	switch {
	case strings.HasPrefix(addr, "wss://"):
		scheme, addr = "wss", strings.TrimPrefix(addr, "wss://")
	case strings.HasPrefix(addr, "ws://"):
		addr = strings.TrimPrefix(addr, "ws://")
	case strings.HasPrefix(addr, "https://"):
		scheme, addr = "wss", strings.TrimPrefix(addr, "https://")
	case strings.HasPrefix(addr, "http://"):
		addr = strings.TrimPrefix(addr, "http://")
	}

	return scheme + "://" + strings.TrimSuffix(addr, "/") + "/play/" + cfg.session + "/ws"
}
