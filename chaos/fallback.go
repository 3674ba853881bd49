package chaos

import (
	"context"
	"math/rand"
	"time"

	"presentrush/game"
)

const defaultDuration = 10.0 // seconds

// canned events used whenever the external service is unavailable.
var canned = []game.ChaosEvent{
	{Name: "Sugar Rush", Description: "Everyone moves twice as fast!", Type: game.EventSpeedBoost, Remaining: 8},
	{Name: "Treacle Floor", Description: "Everyone wades at half speed.", Type: game.EventSlowness, Remaining: 8},
	{Name: "Deep Freeze", Description: "Nobody can move!", Type: game.EventFreeze, Remaining: 4},
	{Name: "Mirror World", Description: "Controls are reversed.", Type: game.EventReverse, Remaining: 10},
	{Name: "Gold Rush", Description: "Presents are worth double.", Type: game.EventDoublePoints, Remaining: 12},
}

// Fallback serves canned events, randomly ordered. It never fails.
type Fallback struct {
	rng *rand.Rand
}

func NewFallback() *Fallback {
	return &Fallback{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewFallbackSeeded is for deterministic selection.
func NewFallbackSeeded(seed int64) *Fallback {
	return &Fallback{rng: rand.New(rand.NewSource(seed))}
}

func (f *Fallback) Generate(_ context.Context) (game.ChaosEvent, error) {
	ev := canned[f.rng.Intn(len(canned))]
	ev.Active = true
	return ev, nil
}
