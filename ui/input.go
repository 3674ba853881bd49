package ui

import (
	"github.com/gdamore/tcell/v2"

	"presentrush/game"
)

// Action is a non-movement player intent.
type Action uint8

const (
	ActionNone Action = iota
	ActionQuit
	ActionStart
	ActionHalt
)

// KeyToAction maps a key event to a session action.
func KeyToAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyEnter:
		return ActionStart
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return ActionQuit
	case ' ':
		return ActionHalt
	}

	return ActionNone
}

// KeyToInput maps a key event to a movement vector. Terminals report no key
// release, so a direction key latches until another direction or a halt.
func KeyToInput(ev *tcell.EventKey) (game.Input, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return game.Input{DY: -1}, true
	case tcell.KeyDown:
		return game.Input{DY: 1}, true
	case tcell.KeyLeft:
		return game.Input{DX: -1}, true
	case tcell.KeyRight:
		return game.Input{DX: 1}, true
	}

	switch ev.Rune() {
	case 'w', 'W', 'k':
		return game.Input{DY: -1}, true
	case 's', 'S', 'j':
		return game.Input{DY: 1}, true
	case 'a', 'A', 'h':
		return game.Input{DX: -1}, true
	case 'd', 'D', 'l':
		return game.Input{DX: 1}, true
	}

	return game.Input{}, false
}
