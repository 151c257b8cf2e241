package game

const TickRate = 20 // ticks per second

// SecsToTicks converts a duration in seconds to game ticks.
func SecsToTicks(s float64) int {
	t := int(s * TickRate)
	if t < 1 {
		t = 1
	}
	return t
}

// DelayTicks converts an authored delay to ticks. Unlike SecsToTicks a
// zero (or negative) delay stays zero, meaning "run now".
func DelayTicks(s float64) int {
	if s <= 0 {
		return 0
	}
	return SecsToTicks(s)
}

// Timing constants, authored in seconds and converted to ticks at init.
var (
	AttackCooldown   = SecsToTicks(0.4)  // ticks between player swings
	HitFlashDuration = SecsToTicks(0.25) // how long an enemy flashes after a hit
)
