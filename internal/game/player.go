package game

import "math"

// Action represents a player input action.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionAttack
	ActionLockOn
	ActionRestart
	ActionQuit
)

// Direction the player is facing.
type Direction int

const (
	DirDown Direction = iota // default, facing the camera
	DirUp
	DirLeft
	DirRight
)

// Vector returns the unit vector for d.
func (d Direction) Vector() Vec2 {
	switch d {
	case DirUp:
		return Vec2{0, -1}
	case DirLeft:
		return Vec2{-1, 0}
	case DirRight:
		return Vec2{1, 0}
	default:
		return Vec2{0, 1}
	}
}

// InputEvent carries a player action into the game loop.
type InputEvent struct {
	PlayerID string
	Action   Action
}

// DefaultPlayerHealth is the max health of a fresh player.
const DefaultPlayerHealth = 10

// Player holds the game state for a connected player.
type Player struct {
	ID    string
	Name  string
	X, Y  int
	Color int // index into the render color palette
	Start int // index into the arena's player starts

	Dir        Direction
	HP, MaxHP  float64
	Dead       bool
	LockTarget EnemyHandle
	Kills      int

	AttackCooldown int // ticks until next swing allowed
	HitFlash       int

	connected    bool
	respawnTimer TimerHandle
}

// PlayerSnapshot is a read-only copy of player state for rendering.
type PlayerSnapshot struct {
	ID        string
	Name      string
	X, Y      int
	Color     int
	Dir       Direction
	HP, MaxHP float64
	Dead      bool
	Locked    bool
	Kills     int
	HitFlash  bool
}

// NewPlayer returns a full-health player standing at x,y.
func NewPlayer(id, name string, x, y int) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		X:         x,
		Y:         y,
		HP:        DefaultPlayerHealth,
		MaxHP:     DefaultPlayerHealth,
		connected: true,
	}
}

// Position returns the player's tile as a Vec2.
func (p *Player) Position() Vec2 { return TileCenter(p.X, p.Y) }

// Alive reports whether the player is standing.
func (p *Player) Alive() bool { return !p.Dead }

// Connected reports whether the player's session is still open.
func (p *Player) Connected() bool { return p.connected }

// MaxHealth implements Damageable.
func (p *Player) MaxHealth() float64 { return p.MaxHP }

// ApplyDamage implements Damageable.
func (p *Player) ApplyDamage(amount float64) bool {
	if p.Dead {
		return true
	}
	if amount <= 0 {
		return false
	}
	p.HP = math.Max(0, p.HP-amount)
	p.HitFlash = HitFlashDuration
	if p.HP > 0 {
		return false
	}
	p.Dead = true
	p.LockTarget = NoEnemy
	return true
}

// ApplyHealing implements Damageable. Fallen players wait for respawn
// instead of being healed back up.
func (p *Player) ApplyHealing(amount float64) {
	if p.Dead || amount <= 0 {
		return
	}
	p.HP = math.Min(p.MaxHP, p.HP+amount)
}

// Snapshot returns a read-only copy of the player.
func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		X:        p.X,
		Y:        p.Y,
		Color:    p.Color,
		Dir:      p.Dir,
		HP:       p.HP,
		MaxHP:    p.MaxHP,
		Dead:     p.Dead,
		Locked:   !p.LockTarget.IsZero(),
		Kills:    p.Kills,
		HitFlash: p.HitFlash > 0,
	}
}

const numPlayerColors = 6

var colorIndex int

// NextPlayerColor returns the next color index from the rotating palette.
func NextPlayerColor() int {
	c := colorIndex % numPlayerColors
	colorIndex++
	return c
}
