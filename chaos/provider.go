// Package chaos produces timed global rule modifiers for a match, either
// from an external content-generation service or from a local table.
package chaos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"presentrush/game"
)

// Provider generates the next chaos event. Implementations may fail; wrap
// with Reliable to guarantee a usable event.
type Provider interface {
	Generate(ctx context.Context) (game.ChaosEvent, error)
}

const requestTimeout = 4 * time.Second

// HTTPProvider fetches event content from an external generation service.
// The endpoint must answer GET with JSON:
//
//	{"name": "...", "description": "...", "type": "FREEZE", "duration": 8}
type HTTPProvider struct {
	URL    string
	APIKey string
	Client *http.Client
}

type eventResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        game.EventType `json:"type"`
	Duration    float64        `json:"duration"`
}

func (p *HTTPProvider) Generate(ctx context.Context) (game.ChaosEvent, error) {
	if p.URL == "" {
		return game.ChaosEvent{}, errors.New("chaos: no event service configured")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return game.ChaosEvent{}, err
	}
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return game.ChaosEvent{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return game.ChaosEvent{}, fmt.Errorf("chaos: event service returned %s", resp.Status)
	}

	var body eventResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return game.ChaosEvent{}, err
	}
	if body.Name == "" || body.Type == game.EventNone || !game.ValidEventType(body.Type) {
		return game.ChaosEvent{}, fmt.Errorf("chaos: malformed event %q type %q", body.Name, body.Type)
	}
	if body.Duration <= 0 {
		body.Duration = defaultDuration
	}

	return game.ChaosEvent{
		Name:        body.Name,
		Description: body.Description,
		Type:        body.Type,
		Remaining:   body.Duration,
		Active:      true,
	}, nil
}

// Reliable wraps p so Generate never fails: any error is swallowed and a
// local fallback event is returned instead.
func Reliable(p Provider) Provider {
	return reliable{inner: p, fallback: NewFallback()}
}

type reliable struct {
	inner    Provider
	fallback *Fallback
}

func (r reliable) Generate(ctx context.Context) (game.ChaosEvent, error) {
	if r.inner != nil {
		if ev, err := r.inner.Generate(ctx); err == nil {
			return ev, nil
		}
	}
	return r.fallback.Generate(ctx)
}
