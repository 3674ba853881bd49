package game

// Authoritative game state. One canonical State lives on the host; every
// other participant holds a replica that is replaced wholesale on each
// snapshot, never merged.

// Skin is one of a small fixed set of avatar glyphs chosen at join time.
type Skin string

const (
	SkinSanta    Skin = "santa"
	SkinElf      Skin = "elf"
	SkinSnowman  Skin = "snowman"
	SkinReindeer Skin = "reindeer"
	SkinPenguin  Skin = "penguin"
)

// Skins lists every valid skin, in display order.
var Skins = []Skin{SkinSanta, SkinElf, SkinSnowman, SkinReindeer, SkinPenguin}

// ValidSkin reports whether s names a known skin.
func ValidSkin(s Skin) bool {
	for _, k := range Skins {
		if k == s {
			return true
		}
	}
	return false
}

type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Skin     Skin    `json:"skin"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Score    int     `json:"score"`
	Host     bool    `json:"host"`
	Frozen   bool    `json:"frozen"`
	Inverted bool    `json:"inverted"`
}

// Present is a collectible item. Destroyed on pickup.
type Present struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value int     `json:"value"`
}

type EventType string

const (
	EventNone         EventType = "NORMAL"
	EventSpeedBoost   EventType = "SPEED_BOOST"
	EventSlowness     EventType = "SLOWNESS"
	EventFreeze       EventType = "FREEZE"
	EventReverse      EventType = "REVERSE_CONTROLS"
	EventDoublePoints EventType = "DOUBLE_POINTS"
)

// EventTypes lists every type a provider may return.
var EventTypes = []EventType{
	EventSpeedBoost, EventSlowness, EventFreeze, EventReverse, EventDoublePoints,
}

// ValidEventType reports whether t is one of the allowed event types.
func ValidEventType(t EventType) bool {
	if t == EventNone {
		return true
	}
	for _, k := range EventTypes {
		if k == t {
			return true
		}
	}
	return false
}

// ChaosEvent is a timed global rule modifier. At most one is active at a
// time; Remaining counts down to zero and the event clears.
type ChaosEvent struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        EventType `json:"type"`
	Remaining   float64   `json:"remaining"`
	Active      bool      `json:"active"`
}

// State is the aggregate root. WinnerID is non-empty exactly when the match
// has ended.
type State struct {
	Players  map[string]*Player  `json:"players"`
	Presents map[string]*Present `json:"presents"`
	Event    ChaosEvent          `json:"event"`
	Started  bool                `json:"started"`
	TimeLeft float64             `json:"timeLeft"`
	WinnerID string              `json:"winnerId,omitempty"`
}

// NewState creates a fresh session state containing only the host player.
func NewState(host *Player) *State {
	host.Host = true
	return &State{
		Players:  map[string]*Player{host.ID: host},
		Presents: make(map[string]*Present),
		TimeLeft: MatchDuration,
	}
}

// Over reports whether the match has ended.
func (s *State) Over() bool {
	return s.WinnerID != ""
}

// Clone returns a deep copy, safe to hand to an encoder while the original
// keeps mutating.
func (s *State) Clone() *State {
	cp := *s
	cp.Players = make(map[string]*Player, len(s.Players))
	for id, p := range s.Players {
		pc := *p
		cp.Players[id] = &pc
	}
	cp.Presents = make(map[string]*Present, len(s.Presents))
	for id, pr := range s.Presents {
		prc := *pr
		cp.Presents[id] = &prc
	}
	return &cp
}
