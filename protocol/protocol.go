package protocol

import (
	"time"

	"presentrush/game"
)

// Message tags. Receivers ignore unknown tags.
const (
	MsgJoinRequest = "join_request"
	MsgJoinAccept  = "join_accept"
	MsgInput       = "input"
	MsgGameUpdate  = "game_update"
	MsgStartGame   = "start_game"
	MsgGameOver    = "game_over"
)

const (
	// SimTickHz drives the host simulation loop.
	SimTickHz = 60
	// BroadcastInterval bounds snapshot bandwidth independently of the tick
	// rate; no two snapshots go out closer together than this.
	BroadcastInterval = 40 * time.Millisecond
)

type JoinRequest struct {
	Name string    `json:"name"`
	Skin game.Skin `json:"skin"`
}

type JoinAccept struct {
	State    *game.State `json:"gameState"`
	PlayerID string      `json:"playerId"`
}

// Input carries one axis pair, each in {-1, 0, 1}. Sent client to host once
// per local input change; duplicates and reorders are harmless.
type Input struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// GameUpdate is a full snapshot; clients replace their view wholesale.
type GameUpdate struct {
	State *game.State `json:"gameState"`
}

type StartGame struct{}

type GameOver struct {
	WinnerID string `json:"winnerId"`
}
