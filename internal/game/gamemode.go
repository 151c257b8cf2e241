package game

import "log"

// ModeConfig tunes the game mode.
type ModeConfig struct {
	HealPerWaveCleared float64
	TransitionDelay    float64 // seconds between engagements
	RespawnDelay       float64 // seconds a fallen player waits
	Combat             CombatConfig
}

// DefaultModeConfig returns the tuning used when nothing is configured.
func DefaultModeConfig() ModeConfig {
	return ModeConfig{
		HealPerWaveCleared: 2,
		TransitionDelay:    DefaultTransitionDelay,
		RespawnDelay:       3,
		Combat:             DefaultCombatConfig(),
	}
}

// GameMode glues spawners to the engagement manager and the players:
// spawned enemies queue for engagement, cleared waves heal the players,
// and finishing every wave of every spawner defends the realm.
type GameMode struct {
	Config     ModeConfig
	Engagement *EngagementManager

	world     *World
	spawners  []*WaveSpawner
	completed map[*WaveSpawner]bool // present once a spawner has started a wave
	defended  bool
	subs      []Subscription
}

// NewGameMode wires a game mode into w.
func NewGameMode(w *World, cfg ModeConfig) *GameMode {
	gm := &GameMode{
		Config:     cfg,
		Engagement: NewEngagementManager(w),
		world:      w,
		completed:  make(map[*WaveSpawner]bool),
	}
	gm.Engagement.TransitionDelay = cfg.TransitionDelay
	gm.subs = append(gm.subs, w.Bus.Subscribe(EventEnemyDied, gm.onEnemyDied))
	return gm
}

// RegisterWaveSpawner listens to sp's events. Events from spawners that
// were never registered are ignored.
func (gm *GameMode) RegisterWaveSpawner(sp *WaveSpawner) {
	for _, existing := range gm.spawners {
		if existing == sp {
			return
		}
	}
	gm.spawners = append(gm.spawners, sp)
	from := func(fn Handler) Handler {
		return func(ev Event) {
			if ev.Source == sp.Name {
				fn(ev)
			}
		}
	}
	bus := gm.world.Bus
	gm.subs = append(gm.subs,
		bus.Subscribe(EventEnemySpawned, from(gm.onEnemySpawned)),
		bus.Subscribe(EventWaveStarted, from(func(ev Event) { gm.onWaveStarted(sp, ev) })),
		bus.Subscribe(EventWaveCompleted, from(gm.onWaveCompleted)),
		bus.Subscribe(EventAllWavesCompleted, from(func(ev Event) { gm.onAllWavesCompleted(sp) })),
	)
}

// World returns the world the mode runs in.
func (gm *GameMode) World() *World { return gm.world }

// Spawners returns the registered spawners in registration order.
func (gm *GameMode) Spawners() []*WaveSpawner { return gm.spawners }

// BeginPlay starts every spawner flagged StartOnBegin.
func (gm *GameMode) BeginPlay() {
	var starting []*WaveSpawner
	for _, sp := range gm.spawners {
		if sp.StartOnBegin {
			starting = append(starting, sp)
		}
	}
	gm.start(starting)
}

// RestartWaves drops the engagement queue and restarts every spawner from
// its first wave.
func (gm *GameMode) RestartWaves() {
	gm.Engagement.ClearQueue()
	gm.defended = false
	clear(gm.completed)
	gm.start(gm.spawners)
}

func (gm *GameMode) start(spawners []*WaveSpawner) {
	// Mark them all first so one finishing instantly cannot defend the
	// realm before the rest have begun.
	for _, sp := range spawners {
		gm.completed[sp] = false
	}
	for _, sp := range spawners {
		sp.StartWaves()
		if sp.State() == StateIdle {
			// Nothing to run.
			delete(gm.completed, sp)
		}
	}
	gm.checkDefended()
}

// Defended reports whether the realm has been defended this run.
func (gm *GameMode) Defended() bool { return gm.defended }

// Tick runs the per-tick engagement check.
func (gm *GameMode) Tick() {
	gm.Engagement.Tick()
}

// Teardown unsubscribes from the bus and tears down the engagement manager
// and every registered spawner.
func (gm *GameMode) Teardown() {
	for _, s := range gm.subs {
		gm.world.Bus.Unsubscribe(s)
	}
	gm.subs = nil
	for _, sp := range gm.spawners {
		sp.Teardown()
	}
	gm.Engagement.Teardown()
}

func (gm *GameMode) onEnemySpawned(ev Event) {
	gm.Engagement.RegisterEnemy(ev.Enemy)
}

func (gm *GameMode) onEnemyDied(ev Event) {
	gm.Engagement.Deregister(ev.Enemy)
}

func (gm *GameMode) onWaveStarted(sp *WaveSpawner, ev Event) {
	gm.completed[sp] = false
	if ev.WaveIndex == 0 {
		// A fresh run, possibly started directly on the spawner.
		gm.defended = false
	}
}

func (gm *GameMode) onWaveCompleted(ev Event) {
	amount := gm.Config.HealPerWaveCleared
	if amount <= 0 {
		return
	}
	for _, p := range gm.world.Pawns() {
		p.ApplyHealing(amount)
	}
}

func (gm *GameMode) onAllWavesCompleted(sp *WaveSpawner) {
	for _, p := range gm.world.Pawns() {
		p.ApplyHealing(p.MaxHealth())
	}
	gm.completed[sp] = true
	gm.checkDefended()
}

func (gm *GameMode) checkDefended() {
	if gm.defended || len(gm.completed) == 0 {
		return
	}
	// Only spawners that have run this session take part.
	for _, done := range gm.completed {
		if !done {
			return
		}
	}
	gm.defended = true
	log.Printf("[mode] realm defended")
	gm.world.Bus.Publish(Event{Type: EventRealmDefended, Source: SourceMode})
}
