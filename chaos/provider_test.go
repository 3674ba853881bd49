package chaos

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"presentrush/game"
)

type failingProvider struct{}

func (failingProvider) Generate(context.Context) (game.ChaosEvent, error) {
	return game.ChaosEvent{}, errors.New("service unavailable")
}

func TestReliableSubstitutesFallbackOnError(t *testing.T) {
	p := Reliable(failingProvider{})

	for i := 0; i < 20; i++ {
		ev, err := p.Generate(context.Background())
		if err != nil {
			t.Fatalf("reliable provider returned error: %v", err)
		}
		if ev.Name == "" {
			t.Fatalf("fallback event has empty name")
		}
		if !game.ValidEventType(ev.Type) || ev.Type == game.EventNone {
			t.Fatalf("fallback event type %q not in allowed set", ev.Type)
		}
		if !ev.Active {
			t.Fatalf("fallback event not active")
		}
		if ev.Remaining <= 0 {
			t.Fatalf("fallback event has no duration")
		}
	}
}

func TestReliableWithNilInnerStillServes(t *testing.T) {
	ev, err := Reliable(nil).Generate(context.Background())
	if err != nil || ev.Name == "" {
		t.Fatalf("got (%+v, %v)", ev, err)
	}
}

func TestHTTPProviderParsesResponse(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"name":"Blizzard","description":"Whiteout!","type":"FREEZE","duration":6}`))
	}))
	defer srv.Close()

	p := &HTTPProvider{URL: srv.URL, APIKey: "sekrit"}
	ev, err := p.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if gotAuth != "Bearer sekrit" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if ev.Name != "Blizzard" || ev.Type != game.EventFreeze || ev.Remaining != 6 || !ev.Active {
		t.Fatalf("event = %+v", ev)
	}
}

func TestHTTPProviderRejectsMalformedContent(t *testing.T) {
	cases := []struct {
		name string
		body string
		code int
	}{
		{"unknown type", `{"name":"x","type":"EARTHQUAKE","duration":5}`, http.StatusOK},
		{"missing name", `{"type":"FREEZE","duration":5}`, http.StatusOK},
		{"not json", `oops`, http.StatusOK},
		{"server error", `{}`, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			if _, err := (&HTTPProvider{URL: srv.URL}).Generate(context.Background()); err == nil {
				t.Fatalf("malformed response accepted")
			}
		})
	}
}

func TestHTTPProviderRequiresEndpoint(t *testing.T) {
	if _, err := (&HTTPProvider{}).Generate(context.Background()); err == nil {
		t.Fatalf("missing endpoint accepted")
	}
}

func TestFallbackSeededIsDeterministic(t *testing.T) {
	a, _ := NewFallbackSeeded(42).Generate(context.Background())
	b, _ := NewFallbackSeeded(42).Generate(context.Background())
	if a.Name != b.Name {
		t.Fatalf("same seed picked %q and %q", a.Name, b.Name)
	}
}
