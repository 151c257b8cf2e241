package game

import (
	"math/rand"

	"realm-defense/internal/maps"
)

// World is the shared context handed to spawners, the engagement manager
// and the game mode. It owns the arena, the enemy registry, the event bus,
// the scheduler and the players.
type World struct {
	Arena     *maps.Map
	Enemies   *Registry
	Bus       *Bus
	Scheduler *Scheduler
	Rand      *rand.Rand

	players []*Player // join order
}

// NewWorld creates a world around arena. A nil arena uses maps.DefaultMap
// and a nil rng is seeded with 1.
func NewWorld(arena *maps.Map, rng *rand.Rand) *World {
	if arena == nil {
		arena = maps.DefaultMap()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &World{
		Arena:     arena,
		Enemies:   NewRegistry(),
		Bus:       NewBus(),
		Scheduler: NewScheduler(),
		Rand:      rng,
	}
}

// CanMoveTo checks if the destination tile is walkable and unoccupied by a
// living player.
func (w *World) CanMoveTo(x, y int) bool {
	if !w.Arena.IsWalkable(x, y) {
		return false
	}
	for _, p := range w.players {
		if !p.Dead && p.X == x && p.Y == y {
			return false
		}
	}
	return true
}

// StartPoint returns the tile for player start i.
func (w *World) StartPoint(i int) (int, int) {
	pt := w.Arena.PlayerStart(i)
	return pt.X, pt.Y
}

// NearestWalkable returns pos if it lies on a walkable tile, otherwise the
// closest walkable tile within a few rings. When nothing nearby is walkable
// pos is returned unchanged.
func (w *World) NearestWalkable(pos Vec2) Vec2 {
	x, y := pos.Tile()
	if w.Arena.IsWalkable(x, y) {
		return pos
	}
	for r := 1; r <= 3; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				if w.Arena.IsWalkable(x+dx, y+dy) {
					return TileCenter(x+dx, y+dy)
				}
			}
		}
	}
	return pos
}

// AddPlayer places p in the world.
func (w *World) AddPlayer(p *Player) {
	w.players = append(w.players, p)
}

// RemovePlayer takes the player out of the world and cancels its respawn.
func (w *World) RemovePlayer(id string) *Player {
	for i, p := range w.players {
		if p.ID == id {
			p.connected = false
			w.Scheduler.Clear(&p.respawnTimer)
			w.players = append(w.players[:i], w.players[i+1:]...)
			return p
		}
	}
	return nil
}

// Player returns the player with the given id, or nil.
func (w *World) Player(id string) *Player {
	for _, p := range w.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Players returns the players in join order.
func (w *World) Players() []*Player {
	return w.players
}

// Pawns returns every player as a Damageable.
func (w *World) Pawns() []Damageable {
	out := make([]Damageable, len(w.players))
	for i, p := range w.players {
		out[i] = p
	}
	return out
}

// SpawnEnemy creates an enemy of class at pos, registers it and returns it.
// owner is told when it dies.
func (w *World) SpawnEnemy(class *EnemyClass, pos Vec2, intensity float64, owner DeathListener) *Enemy {
	e := newEnemy(w, class, w.NearestWalkable(pos), intensity, owner)
	w.Enemies.Add(e)
	return e
}

// Enemy resolves a handle.
func (w *World) Enemy(h EnemyHandle) (*Enemy, bool) {
	return w.Enemies.Get(h)
}

func (w *World) removeEnemy(e *Enemy) {
	h := e.Handle
	if !w.Enemies.Remove(h) {
		return
	}
	w.Bus.Publish(Event{Type: EventEnemyDied, Source: SourceWorld, Enemy: h, WaveIndex: e.WaveIndex})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
