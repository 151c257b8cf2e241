package game

import (
	"fmt"
	"math"
)

// Damageable is the capability shared by every pawn that can be hurt or
// healed. Players and enemies both implement it.
type Damageable interface {
	// ApplyDamage subtracts amount and reports whether the pawn is dead.
	ApplyDamage(amount float64) bool
	// ApplyHealing adds amount, clamped to MaxHealth.
	ApplyHealing(amount float64)
	MaxHealth() float64
	Alive() bool
}

// EnemyClass defines an enemy type's base stats.
type EnemyClass struct {
	Name           string
	Glyph          rune
	MaxHealth      float64
	Attack         float64 // contact damage per hit
	Speed          float64 // tiles per second while chasing
	StopDistance   float64 // chase stops this close to the target
	ContactRange   float64 // contact damage reaches this far
	AttackInterval float64 // seconds between contact hits
}

// DefaultEnemyClass is the basic arena enemy.
var DefaultEnemyClass = EnemyClass{
	Name:           "Trickster",
	Glyph:          't',
	MaxHealth:      3,
	Attack:         1,
	Speed:          3,
	StopDistance:   1,
	ContactRange:   1.25,
	AttackInterval: 1,
}

// Intensity bounds applied to wave scaling.
const (
	MinIntensity = 0.1
	MaxIntensity = 5.0
)

// ClampIntensity keeps an intensity scale inside [MinIntensity, MaxIntensity].
// Non-positive values mean "unscaled".
func ClampIntensity(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 1
	}
	return math.Min(MaxIntensity, math.Max(MinIntensity, v))
}

// DeathListener is notified when an enemy it spawned dies. The enemy holds
// it weakly: the notification is skipped once the listener is not alive.
type DeathListener interface {
	Liveness
	OnEnemyDied(e *Enemy)
}

// Enemy is a live enemy in the arena.
type Enemy struct {
	Handle    EnemyHandle
	Class     *EnemyClass
	Label     string
	Pos       Vec2
	Health    float64
	MaxHP     float64
	Intensity float64
	WaveIndex int

	owner       DeathListener
	world       *World
	aiEnabled   bool
	dead        bool
	attackTimer int // ticks until the next contact hit is allowed
	hitFlash    int
}

// EnemySnapshot is a read-only view of an enemy for rendering.
type EnemySnapshot struct {
	Label     string
	Glyph     rune
	X, Y      int
	HP, MaxHP float64
	Engaged   bool
	HitFlash  bool
}

func newEnemy(w *World, class *EnemyClass, pos Vec2, intensity float64, owner DeathListener) *Enemy {
	intensity = ClampIntensity(intensity)
	return &Enemy{
		Class:     class,
		Label:     class.Name,
		Pos:       pos,
		Health:    class.MaxHealth,
		MaxHP:     class.MaxHealth,
		Intensity: intensity,
		owner:     owner,
		world:     w,
	}
}

// Alive reports whether the enemy is still standing.
func (e *Enemy) Alive() bool { return !e.dead }

// MaxHealth implements Damageable.
func (e *Enemy) MaxHealth() float64 { return e.MaxHP }

// AIEnabled reports whether the enemy is allowed to chase and attack.
func (e *Enemy) AIEnabled() bool { return e.aiEnabled }

// SetAIEnabled toggles chasing and attacking. Dead enemies stay disabled.
func (e *Enemy) SetAIEnabled(on bool) {
	if e.dead {
		on = false
	}
	e.aiEnabled = on
	if !on {
		e.attackTimer = 0
	}
}

// ApplyDamage implements Damageable. Higher intensity enemies shrug off
// part of each hit. A dead enemy absorbs further hits and stays dead.
func (e *Enemy) ApplyDamage(amount float64) bool {
	if e.dead {
		return true
	}
	if amount <= 0 {
		return false
	}
	e.Health = math.Max(0, e.Health-amount/e.Intensity)
	e.hitFlash = HitFlashDuration
	if e.Health > 0 {
		return false
	}
	e.die()
	return true
}

// ApplyHealing implements Damageable.
func (e *Enemy) ApplyHealing(amount float64) {
	if e.dead || amount <= 0 {
		return
	}
	e.Health = math.Min(e.MaxHP, e.Health+amount)
}

// ContactDamage is the damage one contact hit deals.
func (e *Enemy) ContactDamage() float64 {
	return e.Class.Attack * e.Intensity
}

// die removes the enemy from the world, publishes its death and tells the
// spawner that owns it, in that order.
func (e *Enemy) die() {
	e.dead = true
	e.aiEnabled = false
	if e.world != nil {
		e.world.removeEnemy(e)
	}
	if e.owner != nil && e.owner.Alive() {
		e.owner.OnEnemyDied(e)
	}
}

// Snapshot returns a read-only copy of the enemy.
func (e *Enemy) Snapshot() EnemySnapshot {
	x, y := e.Pos.Tile()
	return EnemySnapshot{
		Label:    e.Label,
		Glyph:    e.Class.Glyph,
		X:        x,
		Y:        y,
		HP:       e.Health,
		MaxHP:    e.MaxHP,
		Engaged:  e.aiEnabled,
		HitFlash: e.hitFlash > 0,
	}
}

// enemyLabel generates labels like "Trickster A", "Trickster B", ... for
// the n-th enemy of a wave.
func enemyLabel(name string, n int) string {
	if n < 26 {
		return name + " " + string(rune('A'+n))
	}
	return fmt.Sprintf("%s %d", name, n+1)
}
