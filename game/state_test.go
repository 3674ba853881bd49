package game

import (
	"encoding/json"
	"reflect"
	"testing"
)

func sampleState() *State {
	s := NewState(&Player{ID: "h1", Name: "host", Skin: SkinSanta, X: 12.5, Y: 44.25, Score: 3})
	s.Players["c1"] = &Player{ID: "c1", Name: "guest", Skin: SkinPenguin, X: 300, Y: 200, Score: 11, Frozen: true}
	s.Presents["g1"] = &Present{ID: "g1", X: 50, Y: 60, Value: PresentValueHigh}
	s.Event = ChaosEvent{Name: "Mirror World", Description: "Controls are reversed.", Type: EventReverse, Remaining: 7.5, Active: true}
	s.Started = true
	s.TimeLeft = 88.25
	return s
}

func TestStateJSONRoundTrip(t *testing.T) {
	s := sampleState()

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got State
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(s, &got) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", &got, s)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := sampleState()
	cp := s.Clone()

	if !reflect.DeepEqual(s, cp) {
		t.Fatalf("clone differs from original")
	}

	s.Players["h1"].Score = 99
	s.Presents["g1"].X = 1
	s.TimeLeft = 1

	if cp.Players["h1"].Score == 99 {
		t.Fatalf("clone shares player storage with original")
	}
	if cp.Presents["g1"].X == 1 {
		t.Fatalf("clone shares present storage with original")
	}
	if cp.TimeLeft == 1 {
		t.Fatalf("clone shares scalar fields with original")
	}
}

func TestWinnerSetOnlyAtGameEnd(t *testing.T) {
	s := sampleState()
	if s.Over() {
		t.Fatalf("running state reported over")
	}
	s.WinnerID = "c1"
	if !s.Over() {
		t.Fatalf("state with winner not reported over")
	}
}

func TestValidSkinAndEventType(t *testing.T) {
	for _, k := range Skins {
		if !ValidSkin(k) {
			t.Fatalf("skin %q rejected", k)
		}
	}
	if ValidSkin("yeti") {
		t.Fatalf("unknown skin accepted")
	}

	for _, k := range EventTypes {
		if !ValidEventType(k) {
			t.Fatalf("event type %q rejected", k)
		}
	}
	if ValidEventType("EARTHQUAKE") {
		t.Fatalf("unknown event type accepted")
	}
}
