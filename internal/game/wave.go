package game

import (
	"log"
	"math/rand"
)

// WaveConfig is one authored wave. It is read-only once handed to a spawner.
type WaveConfig struct {
	EnemyCount int
	// EnemyClass is spawned when ClassPool is empty. A nil class means the
	// wave's spawns are skipped.
	EnemyClass *EnemyClass
	// ClassPool, when non-empty, is sampled uniformly for every spawn.
	ClassPool      []*EnemyClass
	WaveStartDelay float64 // seconds before the first spawn
	SpawnInterval  float64 // seconds between spawns, 0 spawns the wave at once
	IntensityScale float64
	RushWave       bool // spawn every enemy of the wave in one burst
}

// Burst reports whether the wave spawns all of its enemies at once.
func (c WaveConfig) Burst() bool {
	return c.RushWave || c.SpawnInterval <= 0
}

// SpawnerState is the wave spawner's position in its run.
type SpawnerState int

const (
	StateIdle SpawnerState = iota
	StateWaveStarting
	StateSpawning
	StateWaveActive
	StateWaveCleared
	StateAllComplete
)

func (s SpawnerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaveStarting:
		return "starting"
	case StateSpawning:
		return "spawning"
	case StateWaveActive:
		return "active"
	case StateWaveCleared:
		return "cleared"
	case StateAllComplete:
		return "complete"
	}
	return "unknown"
}

// DefaultSpawnJitter is the jitter of the default FixedPoint strategy.
const DefaultSpawnJitter = 1.0

// WaveSpawner runs an ordered list of waves. It spawns each wave's enemies,
// tracks which are still alive, and starts the next wave once the current
// one is fully spawned and cleared.
//
// Enemies are owned by the world; the spawner only holds handles and is
// told about deaths through OnEnemyDied.
type WaveSpawner struct {
	Name         string
	Origin       Vec2
	StartOnBegin bool

	world    *World
	waves    []WaveConfig
	location LocationStrategy
	rng      *rand.Rand

	pendingWaves    []WaveConfig
	hasPending      bool
	pendingLocation LocationStrategy

	state       SpawnerState
	currentWave int
	spawnIndex  int
	live        []EnemyHandle
	allSpawned  []EnemyHandle
	run         int // bumped on every restart so stale callbacks can tell

	waveTimer  TimerHandle
	spawnTimer TimerHandle
	torndown   bool
}

// NewWaveSpawner creates an idle spawner. A nil location strategy spawns at
// the origin with DefaultSpawnJitter.
func NewWaveSpawner(w *World, name string, origin Vec2, waves []WaveConfig, location LocationStrategy) *WaveSpawner {
	if location == nil {
		location = NewFixedPoint(DefaultSpawnJitter, w.Rand)
	}
	return &WaveSpawner{
		Name:     name,
		Origin:   origin,
		world:    w,
		waves:    append([]WaveConfig(nil), waves...),
		location: location,
		rng:      w.Rand,
	}
}

// Alive reports whether the spawner has not been torn down.
func (s *WaveSpawner) Alive() bool { return !s.torndown }

// SetWaves replaces the wave list. The new list is used from the next
// StartWaves; a run in progress keeps its waves.
func (s *WaveSpawner) SetWaves(waves []WaveConfig) {
	s.pendingWaves = append([]WaveConfig(nil), waves...)
	s.hasPending = true
}

// SetLocationStrategy replaces the placement strategy from the next
// StartWaves, like SetWaves. A nil strategy is ignored.
func (s *WaveSpawner) SetLocationStrategy(l LocationStrategy) {
	if l != nil {
		s.pendingLocation = l
	}
}

// StartWaves restarts the run from wave 0. Timers from a previous run are
// cancelled; enemies it spawned stay in the world but are no longer
// tracked.
func (s *WaveSpawner) StartWaves() {
	if s.torndown {
		return
	}
	s.reset()
	if len(s.waves) == 0 {
		return
	}
	log.Printf("[spawner %s] starting %d waves", s.Name, len(s.waves))
	s.SpawnNextWave()
}

// ResetWaves stops the run and returns to idle.
func (s *WaveSpawner) ResetWaves() {
	if s.torndown {
		return
	}
	s.reset()
}

func (s *WaveSpawner) reset() {
	s.run++
	s.clearTimers()
	if s.hasPending {
		s.waves = s.pendingWaves
		s.pendingWaves = nil
		s.hasPending = false
	}
	if s.pendingLocation != nil {
		s.location = s.pendingLocation
		s.pendingLocation = nil
	}
	s.state = StateIdle
	s.currentWave = 0
	s.spawnIndex = 0
	s.live = nil
	s.allSpawned = nil
}

// Teardown cancels every pending callback. The spawner ignores all calls
// and death notifications afterwards.
func (s *WaveSpawner) Teardown() {
	if s.torndown {
		return
	}
	s.torndown = true
	s.clearTimers()
	s.world.Scheduler.CancelOwner(s)
}

func (s *WaveSpawner) clearTimers() {
	s.world.Scheduler.Clear(&s.waveTimer)
	s.world.Scheduler.Clear(&s.spawnTimer)
}

// SpawnNextWave starts the wave at the current index, or announces that
// every wave is done when the index is past the end.
func (s *WaveSpawner) SpawnNextWave() {
	if s.torndown {
		return
	}
	if s.currentWave >= len(s.waves) {
		s.finishAll()
		return
	}

	s.clearTimers()
	i, run := s.currentWave, s.run
	s.spawnIndex = 0
	s.live = nil
	s.state = StateWaveStarting
	log.Printf("[spawner %s] wave %d/%d starting", s.Name, i+1, len(s.waves))
	s.publish(EventWaveStarted, i, NoEnemy)
	if s.run != run || s.torndown {
		return
	}

	delay := DelayTicks(s.waves[i].WaveStartDelay)
	if delay == 0 {
		s.beginSpawning()
		return
	}
	s.world.Scheduler.Set(&s.waveTimer, delay, s, s.beginSpawning)
}

func (s *WaveSpawner) beginSpawning() {
	if s.torndown || s.state != StateWaveStarting {
		return
	}
	s.state = StateSpawning
	s.spawnEnemyInWave()
}

// spawnEnemyInWave spawns the next enemy of the current wave and schedules
// the one after it. Burst waves spawn the whole remainder here.
func (s *WaveSpawner) spawnEnemyInWave() {
	if s.torndown || s.state != StateSpawning {
		return
	}
	run := s.run
	cfg := s.waves[s.currentWave]
	for s.spawnIndex < cfg.EnemyCount {
		s.spawnOne(cfg)
		if s.run != run || s.torndown {
			return
		}
		s.spawnIndex++
		if s.spawnIndex < cfg.EnemyCount && !cfg.Burst() {
			s.world.Scheduler.Set(&s.spawnTimer, DelayTicks(cfg.SpawnInterval), s, s.spawnEnemyInWave)
			return
		}
	}

	s.state = StateWaveActive
	// Every spawn may have been skipped, or the wave killed while spawning.
	if len(s.live) == 0 {
		s.completeWave()
	}
}

// spawnOne places one enemy. A missing class skips the spawn silently and
// leaves the location strategy where it was.
func (s *WaveSpawner) spawnOne(cfg WaveConfig) {
	class := s.pickClass(cfg)
	if class == nil {
		return
	}
	pos := s.location.SpawnLocation(s.Origin, s.spawnIndex)
	e := s.world.SpawnEnemy(class, pos, cfg.IntensityScale, s)
	e.WaveIndex = s.currentWave
	e.Label = enemyLabel(class.Name, s.spawnIndex)
	s.live = append(s.live, e.Handle)
	s.allSpawned = append(s.allSpawned, e.Handle)
	s.location.LocationUsed()
	s.publish(EventEnemySpawned, s.currentWave, e.Handle)
}

func (s *WaveSpawner) pickClass(cfg WaveConfig) *EnemyClass {
	if len(cfg.ClassPool) > 0 {
		return cfg.ClassPool[s.rng.Intn(len(cfg.ClassPool))]
	}
	return cfg.EnemyClass
}

// OnEnemyDied implements DeathListener. The wave completes once it has
// finished spawning and its last tracked enemy is gone.
func (s *WaveSpawner) OnEnemyDied(e *Enemy) {
	if s.torndown {
		return
	}
	idx := -1
	for i, h := range s.live {
		if h == e.Handle {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	s.live = append(s.live[:idx], s.live[idx+1:]...)
	if s.state == StateWaveActive && len(s.live) == 0 {
		s.completeWave()
	}
}

func (s *WaveSpawner) completeWave() {
	i, run := s.currentWave, s.run
	s.state = StateWaveCleared
	log.Printf("[spawner %s] wave %d/%d cleared", s.Name, i+1, len(s.waves))
	s.publish(EventWaveCompleted, i, NoEnemy)
	if s.run != run || s.torndown {
		return
	}
	s.currentWave++
	s.SpawnNextWave()
}

func (s *WaveSpawner) finishAll() {
	if s.state == StateAllComplete {
		return
	}
	s.state = StateAllComplete
	log.Printf("[spawner %s] all waves complete", s.Name)
	s.publish(EventAllWavesCompleted, s.currentWave, NoEnemy)
}

func (s *WaveSpawner) publish(t EventType, wave int, enemy EnemyHandle) {
	s.world.Bus.Publish(Event{Type: t, Source: s.Name, Enemy: enemy, WaveIndex: wave})
}

// State returns the spawner's current state.
func (s *WaveSpawner) State() SpawnerState { return s.state }

// CurrentWaveIndex returns the index of the wave in progress. It equals
// WaveCount once every wave is done.
func (s *WaveSpawner) CurrentWaveIndex() int { return s.currentWave }

// WaveCount returns the number of waves in the current run.
func (s *WaveSpawner) WaveCount() int { return len(s.waves) }

// SpawnIndex returns how many spawns of the current wave have happened.
func (s *WaveSpawner) SpawnIndex() int { return s.spawnIndex }

// CurrentWaveEnemies returns the live enemies of the current wave.
func (s *WaveSpawner) CurrentWaveEnemies() []EnemyHandle {
	return s.world.Enemies.Filter(s.live)
}

// AllSpawnedEnemies returns every enemy of this run that is still alive.
func (s *WaveSpawner) AllSpawnedEnemies() []EnemyHandle {
	return s.world.Enemies.Filter(s.allSpawned)
}

// SpawnedCount returns how many enemies this run has spawned, dead or alive.
func (s *WaveSpawner) SpawnedCount() int { return len(s.allSpawned) }

// AreAllWavesComplete reports whether the index has run past the last wave
// and nothing from the final wave is still standing.
func (s *WaveSpawner) AreAllWavesComplete() bool {
	return s.currentWave >= len(s.waves) && len(s.CurrentWaveEnemies()) == 0
}
