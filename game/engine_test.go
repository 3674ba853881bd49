package game

import (
	"math"
	"math/rand"
	"testing"
)

func testEngine() *Engine {
	return NewEngine(rand.NewSource(1))
}

func twoPlayerState() *State {
	s := NewState(&Player{ID: "aaaa", Name: "a", X: 100, Y: 100})
	s.Players["bbbb"] = &Player{ID: "bbbb", Name: "b", X: 400, Y: 300}
	s.Started = true
	return s
}

func TestIntegrationClampsToArena(t *testing.T) {
	e := testEngine()
	s := NewState(&Player{ID: "p1", X: 0, Y: 0})
	s.Started = true

	inputs := map[string]Input{"p1": {DX: -1, DY: -1}}
	for i := 0; i < 50; i++ {
		e.Advance(s, 0.02, inputs)
	}
	p := s.Players["p1"]
	if p.X != 0 || p.Y != 0 {
		t.Fatalf("expected player pinned to origin, got (%f, %f)", p.X, p.Y)
	}

	inputs = map[string]Input{"p1": {DX: 1, DY: 1}}
	for i := 0; i < 1000; i++ {
		e.Advance(s, 0.02, inputs)
	}
	p = s.Players["p1"]
	if p.X != ArenaWidth-PlayerSize || p.Y != ArenaHeight-PlayerSize {
		t.Fatalf("expected player pinned to far corner, got (%f, %f)", p.X, p.Y)
	}
}

func TestFrozenPlayerIgnoresInput(t *testing.T) {
	e := testEngine()
	s := NewState(&Player{ID: "p1", X: 100, Y: 100, Frozen: true})
	s.Started = true

	e.integrate(s, 0.02, map[string]Input{"p1": {DX: 1, DY: 1}})

	p := s.Players["p1"]
	if p.X != 100 || p.Y != 100 {
		t.Fatalf("frozen player moved to (%f, %f)", p.X, p.Y)
	}
}

func TestReverseControlsInvertsBothAxes(t *testing.T) {
	e := testEngine()
	s := NewState(&Player{ID: "p1", X: 400, Y: 300})
	ApplyEvent(s, ChaosEvent{Name: "Mirror World", Type: EventReverse, Remaining: 10})

	e.integrate(s, 0.02, map[string]Input{"p1": {DX: 1, DY: -1}})

	p := s.Players["p1"]
	wantX := 400 - BaseSpeed*0.02
	wantY := 300 + BaseSpeed*0.02
	if math.Abs(p.X-wantX) > 1e-9 || math.Abs(p.Y-wantY) > 1e-9 {
		t.Fatalf("got (%f, %f), want (%f, %f)", p.X, p.Y, wantX, wantY)
	}
}

func TestSpeedEventsScaleDisplacement(t *testing.T) {
	cases := []struct {
		name   string
		event  EventType
		factor float64
	}{
		{"boost", EventSpeedBoost, SpeedBoostFactor},
		{"slow", EventSlowness, SlownessFactor},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := testEngine()
			s := NewState(&Player{ID: "p1", X: 400, Y: 300})
			ApplyEvent(s, ChaosEvent{Name: "x", Type: tc.event, Remaining: 10})

			e.integrate(s, 0.02, map[string]Input{"p1": {DX: 1}})

			want := 400 + BaseSpeed*tc.factor*0.02
			if math.Abs(s.Players["p1"].X-want) > 1e-9 {
				t.Fatalf("x = %f, want %f", s.Players["p1"].X, want)
			}
		})
	}
}

func TestPickupAwardsValueExactlyOnce(t *testing.T) {
	e := testEngine()
	s := twoPlayerState()
	s.Presents["g1"] = &Present{ID: "g1", X: 105, Y: 105, Value: PresentValueHigh}

	e.collect(s)

	if got := s.Players["aaaa"].Score; got != PresentValueHigh {
		t.Fatalf("score after pickup = %d, want %d", got, PresentValueHigh)
	}
	if _, ok := s.Presents["g1"]; ok {
		t.Fatalf("present still present after pickup")
	}

	e.collect(s)
	if got := s.Players["aaaa"].Score; got != PresentValueHigh {
		t.Fatalf("score changed on second pass: %d", got)
	}
}

func TestDoublePointsDoublesAward(t *testing.T) {
	e := testEngine()
	s := twoPlayerState()
	ApplyEvent(s, ChaosEvent{Name: "Gold Rush", Type: EventDoublePoints, Remaining: 10})
	s.Presents["g1"] = &Present{ID: "g1", X: 105, Y: 105, Value: PresentValueLow}

	e.collect(s)

	if got := s.Players["aaaa"].Score; got != 2*PresentValueLow {
		t.Fatalf("score = %d, want %d", got, 2*PresentValueLow)
	}
}

func TestSimultaneousPickupGoesToLowestID(t *testing.T) {
	e := testEngine()
	s := twoPlayerState()
	s.Players["bbbb"].X = 100
	s.Players["bbbb"].Y = 100
	s.Presents["g1"] = &Present{ID: "g1", X: 110, Y: 110, Value: PresentValueLow}

	e.collect(s)

	if s.Players["aaaa"].Score != PresentValueLow {
		t.Fatalf("lowest ID did not claim: a=%d b=%d", s.Players["aaaa"].Score, s.Players["bbbb"].Score)
	}
	if s.Players["bbbb"].Score != 0 {
		t.Fatalf("both players scored the same present")
	}
}

func TestMatchEndFinalizesAndSkipsRemainingSteps(t *testing.T) {
	e := testEngine()
	s := twoPlayerState()
	s.TimeLeft = 0.016
	s.Players["bbbb"].Score = 7
	// A present overlapping a player must survive the final tick: collection
	// runs after the timer step, which short-circuits.
	s.Presents["g1"] = &Present{ID: "g1", X: 105, Y: 105, Value: PresentValueLow}

	ended := e.Advance(s, 0.02, nil)

	if !ended {
		t.Fatalf("expected match to end")
	}
	if s.TimeLeft != 0 {
		t.Fatalf("TimeLeft = %f, want 0", s.TimeLeft)
	}
	if s.WinnerID != "bbbb" {
		t.Fatalf("winner = %q, want bbbb", s.WinnerID)
	}
	if !s.Over() {
		t.Fatalf("state not terminal after match end")
	}
	if _, ok := s.Presents["g1"]; !ok {
		t.Fatalf("present collected on the finalizing tick")
	}
	if s.Players["aaaa"].Score != 0 {
		t.Fatalf("score changed on the finalizing tick")
	}
}

func TestWinnerTieBreaksDeterministically(t *testing.T) {
	s := twoPlayerState()
	s.Players["aaaa"].Score = 5
	s.Players["bbbb"].Score = 5

	for i := 0; i < 10; i++ {
		if got := Winner(s); got != "aaaa" {
			t.Fatalf("tie-break run %d picked %q, want aaaa", i, got)
		}
	}
}

func TestAdvanceAfterEndIsANoOp(t *testing.T) {
	e := testEngine()
	s := twoPlayerState()
	s.WinnerID = "aaaa"
	s.TimeLeft = 0

	if ended := e.Advance(s, 0.02, map[string]Input{"bbbb": {DX: 1}}); ended {
		t.Fatalf("terminal state ended twice")
	}
	if s.Players["bbbb"].X != 400 {
		t.Fatalf("player moved after match end")
	}
}

func TestEventExpiryClearsEventAndFlags(t *testing.T) {
	e := testEngine()
	s := twoPlayerState()
	ApplyEvent(s, ChaosEvent{Name: "Deep Freeze", Type: EventFreeze, Remaining: 0.01})

	if !s.Players["aaaa"].Frozen {
		t.Fatalf("freeze event did not set frozen flags")
	}

	e.Advance(s, 0.02, nil)

	if s.Event.Active {
		t.Fatalf("event still active after expiry")
	}
	if s.Event.Type != "" && s.Event.Type != EventNone {
		t.Fatalf("event type not cleared: %q", s.Event.Type)
	}
	if s.Players["aaaa"].Frozen || s.Players["bbbb"].Frozen {
		t.Fatalf("frozen flags survived event expiry")
	}
}

func TestSpawnerNeverExceedsCap(t *testing.T) {
	e := testEngine()
	s := NewState(&Player{ID: "p1"})
	s.Started = true
	s.TimeLeft = 1e6

	for i := 0; i < 5000; i++ {
		e.spawn(s)
		if len(s.Presents) > MaxPresents {
			t.Fatalf("present count %d exceeds cap %d", len(s.Presents), MaxPresents)
		}
	}
	if len(s.Presents) != MaxPresents {
		t.Fatalf("expected spawner to reach cap over 5000 ticks, got %d", len(s.Presents))
	}

	for _, pr := range s.Presents {
		if pr.Value != PresentValueLow && pr.Value != PresentValueHigh {
			t.Fatalf("present value %d outside allowed set", pr.Value)
		}
		if pr.X < 0 || pr.X > ArenaWidth-PresentSize || pr.Y < 0 || pr.Y > ArenaHeight-PresentSize {
			t.Fatalf("present spawned out of bounds at (%f, %f)", pr.X, pr.Y)
		}
	}
}
