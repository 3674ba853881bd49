// Package session runs the two participant roles of a match: the host,
// which owns the canonical state and the simulation loop, and the client,
// which forwards input and renders the latest snapshot.
package session

import (
	"sync"

	"presentrush/game"
)

// snapshotHolder publishes immutable state copies across goroutines.
// Writers replace the value wholesale; readers never observe a torn state.
type snapshotHolder struct {
	mu   sync.RWMutex
	snap *game.State
}

func (s *snapshotHolder) set(snap *game.State) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *snapshotHolder) get() *game.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
