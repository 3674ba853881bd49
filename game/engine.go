package game

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"
)

// Input is one player's current movement intent, each axis in {-1, 0, 1}.
type Input struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Engine is the host-side state transition function. It owns no state of its
// own beyond a random source; all mutation happens on the State it is given,
// synchronously, so it must only ever be called from the goroutine that owns
// that State.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine drawing spawn positions and values from src.
func NewEngine(src rand.Source) *Engine {
	return &Engine{rng: rand.New(src)}
}

// Advance runs one tick: input integration, timers, collisions, spawning.
// dt is elapsed real seconds. Returns true when this tick ended the match,
// in which case the winner has been assigned and nothing past the timer
// step ran.
func (e *Engine) Advance(s *State, dt float64, inputs map[string]Input) bool {
	if s.Over() {
		return false
	}

	e.integrate(s, dt, inputs)

	s.TimeLeft -= dt
	if s.TimeLeft <= 0 {
		s.TimeLeft = 0
		s.WinnerID = Winner(s)
		return true
	}
	if s.Event.Active {
		s.Event.Remaining -= dt
		if s.Event.Remaining <= 0 {
			s.Event = ChaosEvent{}
			ClearEventFlags(s)
		}
	}

	e.collect(s)
	e.spawn(s)
	return false
}

func (e *Engine) integrate(s *State, dt float64, inputs map[string]Input) {
	for _, id := range sortedPlayerIDs(s) {
		p := s.Players[id]
		in, ok := inputs[id]
		if !ok || p.Frozen {
			continue
		}
		dx, dy := float64(in.DX), float64(in.DY)
		if s.Event.Active && s.Event.Type == EventReverse {
			dx, dy = -dx, -dy
		}
		speed := BaseSpeed
		if s.Event.Active {
			switch s.Event.Type {
			case EventSpeedBoost:
				speed *= SpeedBoostFactor
			case EventSlowness:
				speed *= SlownessFactor
			}
		}
		p.X = clamp(p.X+dx*speed*dt, 0, ArenaWidth-PlayerSize)
		p.Y = clamp(p.Y+dy*speed*dt, 0, ArenaHeight-PlayerSize)
	}
}

// collect removes every present overlapped by a player and awards its value.
// Players are visited in ascending ID order, so when two players overlap the
// same present on the same tick, the lowest ID claims it.
func (e *Engine) collect(s *State) {
	ids := sortedPlayerIDs(s)
	for prID, pr := range s.Presents {
		for _, id := range ids {
			p := s.Players[id]
			if !overlaps(p.X, p.Y, PlayerSize, pr.X, pr.Y, PresentSize) {
				continue
			}
			value := pr.Value
			if s.Event.Active && s.Event.Type == EventDoublePoints {
				value *= 2
			}
			p.Score += value
			delete(s.Presents, prID)
			break
		}
	}
}

func (e *Engine) spawn(s *State) {
	if len(s.Presents) >= MaxPresents || e.rng.Float64() >= SpawnChance {
		return
	}
	value := PresentValueLow
	if e.rng.Float64() < PresentHighChance {
		value = PresentValueHigh
	}
	pr := &Present{
		ID:    uuid.NewString(),
		X:     e.rng.Float64() * (ArenaWidth - PresentSize),
		Y:     e.rng.Float64() * (ArenaHeight - PresentSize),
		Value: value,
	}
	s.Presents[pr.ID] = pr
}

// Winner returns the ID of the player with the strictly highest score.
// Ties break to the lowest player ID, so the result is stable for a given
// state. Empty only when the state has no players.
func Winner(s *State) string {
	best := ""
	bestScore := -1
	for _, id := range sortedPlayerIDs(s) {
		if sc := s.Players[id].Score; sc > bestScore {
			best, bestScore = id, sc
		}
	}
	return best
}

// ApplyEvent installs ev as the active event. FREEZE sets every player's
// frozen flag for the event's lifetime; REVERSE_CONTROLS sets inverted, used
// by clients for cosmetic feedback. Clearing happens on expiry in Advance.
func ApplyEvent(s *State, ev ChaosEvent) {
	ev.Active = true
	s.Event = ev
	for _, p := range s.Players {
		p.Frozen = ev.Type == EventFreeze
		p.Inverted = ev.Type == EventReverse
	}
}

// ClearEventFlags resets the per-player flags once no event is active.
func ClearEventFlags(s *State) {
	for _, p := range s.Players {
		p.Frozen = false
		p.Inverted = false
	}
}

func sortedPlayerIDs(s *State) []string {
	ids := make([]string, 0, len(s.Players))
	for id := range s.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func overlaps(ax, ay, asize, bx, by, bsize float64) bool {
	return ax < bx+bsize && ax+asize > bx && ay < by+bsize && ay+asize > by
}
