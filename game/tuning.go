package game

const (
	ArenaWidth  = 800.0
	ArenaHeight = 600.0
	PlayerSize  = 40.0
	PresentSize = 24.0

	BaseSpeed = 200.0 // px per second before event scaling

	MatchDuration = 120.0 // seconds

	MaxPresents       = 10
	SpawnChance       = 0.05 // per tick while below cap
	PresentValueLow   = 1
	PresentValueHigh  = 5
	PresentHighChance = 0.2

	// Chaos events: request one every EventInterval seconds of elapsed match
	// time, with a real-time cooldown between attempts so the periodic
	// condition does not re-fire every tick.
	EventInterval = 30.0 // seconds of match time
	EventCooldown = 5.0  // real seconds between trigger attempts

	SpeedBoostFactor = 2.0
	SlownessFactor   = 0.5
)
