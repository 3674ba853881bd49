package protocol

import (
	"reflect"
	"testing"

	"presentrush/game"
)

func TestEncodeDecodeInput(t *testing.T) {
	b, err := Encode(MsgInput, Input{DX: -1, DY: 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.T != MsgInput {
		t.Fatalf("tag = %q, want %q", env.T, MsgInput)
	}

	in, err := DecodePayload[Input](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if in.DX != -1 || in.DY != 1 {
		t.Fatalf("payload = %+v", in)
	}
}

func TestGameUpdateRoundTrip(t *testing.T) {
	s := game.NewState(&game.Player{ID: "h1", Name: "host", Skin: game.SkinElf, X: 10, Y: 20})
	s.Presents["g1"] = &game.Present{ID: "g1", X: 1, Y: 2, Value: 5}
	s.Event = game.ChaosEvent{Name: "Sugar Rush", Type: game.EventSpeedBoost, Remaining: 3, Active: true}
	s.Started = true

	b, err := Encode(MsgGameUpdate, GameUpdate{State: s})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	upd, err := DecodePayload[GameUpdate](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}

	if !reflect.DeepEqual(s, upd.State) {
		t.Fatalf("snapshot round trip mismatch:\n got %+v\nwant %+v", upd.State, s)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeEnvelope(nil); err == nil {
		t.Fatalf("empty message accepted")
	}
	if _, err := DecodeEnvelope([]byte("not json")); err == nil {
		t.Fatalf("non-JSON message accepted")
	}
	if _, err := DecodeEnvelope([]byte(`{"p": {}}`)); err == nil {
		t.Fatalf("tagless message accepted")
	}
}

func TestEncodeRejectsEmptyTag(t *testing.T) {
	if _, err := Encode("", Input{}); err == nil {
		t.Fatalf("empty tag accepted")
	}
}
