package game

import (
	"fmt"
	"sync"
	"time"

	"realm-defense/internal/maps"
)

const (
	InputChanSize = 256
	maxLogLines   = 5
)

// WaveStatus summarises one spawner for the HUD.
type WaveStatus struct {
	Spawner string
	Wave    int // 1-based, clamped to Total
	Total   int
	State   string
	Alive   int
}

// GameState is a snapshot sent to each session for rendering.
type GameState struct {
	Players  []PlayerSnapshot
	Enemies  []EnemySnapshot
	Map      *maps.Map
	Tick     uint64
	Waves    []WaveStatus
	Engaged  string // label of the engaged enemy, empty when none
	Waiting  int
	Defended bool
	Log      []string
}

// RenderChan is the per-session channel that receives game state snapshots.
type RenderChan chan GameState

// savedState holds persisted player data for reconnecting players.
type savedState struct {
	Color int
	Start int
	Kills int
}

// GameLoop is the central game loop singleton. All game logic runs on the
// goroutine calling Run; sessions talk to it through the input channel.
type GameLoop struct {
	world     *World
	mode      *GameMode
	inputCh   chan InputEvent
	applyCh   chan func(*GameMode)
	tickCount uint64

	mu          sync.Mutex
	renderChans map[string]RenderChan
	saved       map[string]savedState // keyed by username
	nextStart   int
	log         []string

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewGameLoop creates a game loop driving mode inside world.
func NewGameLoop(world *World, mode *GameMode) *GameLoop {
	gl := &GameLoop{
		world:       world,
		mode:        mode,
		inputCh:     make(chan InputEvent, InputChanSize),
		applyCh:     make(chan func(*GameMode), 8),
		renderChans: make(map[string]RenderChan),
		saved:       make(map[string]savedState),
		stopCh:      make(chan struct{}),
	}
	for _, t := range []EventType{EventWaveStarted, EventWaveCompleted, EventAllWavesCompleted, EventEngagementStarted, EventRealmDefended} {
		world.Bus.Subscribe(t, gl.record)
	}
	return gl
}

// InputChan returns the shared input channel for sessions to send events.
func (gl *GameLoop) InputChan() chan<- InputEvent {
	return gl.inputCh
}

// Apply queues fn to run on the loop goroutine at the start of the next
// tick. It is how other goroutines (config reload) touch game state.
func (gl *GameLoop) Apply(fn func(*GameMode)) {
	select {
	case gl.applyCh <- fn:
	case <-gl.stopCh:
	}
}

// AddPlayer registers a player using their username as identity.
// If the username was seen before, color and start are restored.
// Returns the effective player ID and the render channel.
func (gl *GameLoop) AddPlayer(name string) (string, RenderChan) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	// If this username is already online, add a suffix
	id := name
	if gl.world.Player(id) != nil {
		id = fmt.Sprintf("%s_%04d", name, time.Now().UnixNano()%10000)
	}

	ss, ok := gl.saved[name]
	if !ok {
		ss = savedState{Color: NextPlayerColor(), Start: gl.nextStart}
		gl.nextStart++
	}
	x, y := gl.world.StartPoint(ss.Start)
	player := NewPlayer(id, name, x, y)
	player.Color = ss.Color
	player.Start = ss.Start
	player.Kills = ss.Kills

	gl.world.AddPlayer(player)
	ch := make(RenderChan, 2)
	gl.renderChans[id] = ch
	return id, ch
}

// RemovePlayer saves the player's state and unregisters them.
func (gl *GameLoop) RemovePlayer(id string) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if p := gl.world.RemovePlayer(id); p != nil {
		gl.saved[p.Name] = savedState{Color: p.Color, Start: p.Start, Kills: p.Kills}
	}
	if ch, ok := gl.renderChans[id]; ok {
		close(ch)
		delete(gl.renderChans, id)
	}
}

// Run starts the game loop. Blocks until Stop is called.
func (gl *GameLoop) Run() {
	ticker := time.NewTicker(time.Second / TickRate)
	defer ticker.Stop()

	gl.mu.Lock()
	gl.mode.BeginPlay()
	gl.mu.Unlock()

	for {
		select {
		case <-gl.stopCh:
			gl.mu.Lock()
			gl.mode.Teardown()
			gl.mu.Unlock()
			return
		case <-ticker.C:
			gl.tick()
		}
	}
}

// Stop shuts down the game loop.
func (gl *GameLoop) Stop() {
	gl.stopOnce.Do(func() { close(gl.stopCh) })
}

func (gl *GameLoop) tick() {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	// Drain all pending input events
drain:
	for {
		select {
		case ev := <-gl.inputCh:
			gl.processInput(ev)
		case fn := <-gl.applyCh:
			fn(gl.mode)
		default:
			break drain
		}
	}

	gl.tickCount++
	gl.world.Scheduler.Tick()
	gl.mode.Tick()
	gl.world.UpdatePlayers(gl.mode.Config.RespawnDelay)
	gl.world.UpdateEnemies()

	state := gl.snapshot()

	// Non-blocking send to each render channel
	for _, ch := range gl.renderChans {
		select {
		case ch <- state:
		default:
			// Drop frame for slow client
		}
	}
}

func (gl *GameLoop) snapshot() GameState {
	w := gl.world
	state := GameState{
		Players:  make([]PlayerSnapshot, 0, len(w.Players())),
		Enemies:  make([]EnemySnapshot, 0, w.Enemies.Len()),
		Map:      w.Arena,
		Tick:     gl.tickCount,
		Waiting:  len(gl.mode.Engagement.WaitingEnemies()),
		Defended: gl.mode.Defended(),
		Log:      append([]string(nil), gl.log...),
	}
	for _, p := range w.Players() {
		state.Players = append(state.Players, p.Snapshot())
	}
	w.Enemies.Each(func(e *Enemy) {
		state.Enemies = append(state.Enemies, e.Snapshot())
	})
	if h, ok := gl.mode.Engagement.CurrentEnemy(); ok {
		if e, ok := w.Enemy(h); ok {
			state.Engaged = e.Label
		}
	}
	for _, sp := range gl.mode.Spawners() {
		state.Waves = append(state.Waves, WaveStatus{
			Spawner: sp.Name,
			Wave:    min(sp.CurrentWaveIndex()+1, sp.WaveCount()),
			Total:   sp.WaveCount(),
			State:   sp.State().String(),
			Alive:   len(sp.CurrentWaveEnemies()),
		})
	}
	return state
}

func (gl *GameLoop) processInput(ev InputEvent) {
	player := gl.world.Player(ev.PlayerID)
	if player == nil {
		return
	}

	if ev.Action == ActionRestart {
		gl.mode.RestartWaves()
		return
	}
	if player.Dead {
		return
	}

	newX, newY := player.X, player.Y
	switch ev.Action {
	case ActionUp:
		newY--
		player.Dir = DirUp
	case ActionDown:
		newY++
		player.Dir = DirDown
	case ActionLeft:
		newX--
		player.Dir = DirLeft
	case ActionRight:
		newX++
		player.Dir = DirRight
	case ActionAttack:
		PlayerAttack(gl.world, player, gl.mode.Config.Combat)
		return
	case ActionLockOn:
		ToggleLockOn(gl.world, player, gl.mode.Config.Combat)
		return
	default:
		return
	}

	if gl.world.CanMoveTo(newX, newY) {
		player.X = newX
		player.Y = newY
	}
}

// record turns bus events into HUD log lines.
func (gl *GameLoop) record(ev Event) {
	var msg string
	switch ev.Type {
	case EventWaveStarted:
		msg = fmt.Sprintf("%s: wave %d approaches", ev.Source, ev.WaveIndex+1)
	case EventWaveCompleted:
		msg = fmt.Sprintf("%s: wave %d cleared", ev.Source, ev.WaveIndex+1)
	case EventAllWavesCompleted:
		msg = fmt.Sprintf("%s: every wave cleared", ev.Source)
	case EventEngagementStarted:
		if e, ok := gl.world.Enemy(ev.Enemy); ok {
			msg = e.Label + " steps forward"
		}
	case EventRealmDefended:
		msg = "The realm is defended!"
	}
	if msg == "" {
		return
	}
	gl.log = append(gl.log, msg)
	if len(gl.log) > maxLogLines {
		gl.log = gl.log[len(gl.log)-maxLogLines:]
	}
}
