package game

import "log"

// DefaultTransitionDelay is the pause between one engagement ending and the
// next starting, in seconds.
const DefaultTransitionDelay = 2.0

// EngagementManager lets enemies fight one at a time. Registered enemies
// wait in a FIFO queue with their AI disabled; the engaged enemy is the
// only one allowed to chase and attack.
type EngagementManager struct {
	// TransitionDelay is the pacing beat between engagements, in seconds.
	TransitionDelay float64

	world      *World
	queue      []EnemyHandle
	current    EnemyHandle
	transition TimerHandle
	torndown   bool
}

// NewEngagementManager returns an idle manager with DefaultTransitionDelay.
func NewEngagementManager(w *World) *EngagementManager {
	return &EngagementManager{
		TransitionDelay: DefaultTransitionDelay,
		world:           w,
	}
}

// Alive reports whether the manager has not been torn down.
func (m *EngagementManager) Alive() bool { return !m.torndown }

// RegisterEnemy queues h and disables its AI. Dead, duplicate and already
// engaged handles are ignored.
func (m *EngagementManager) RegisterEnemy(h EnemyHandle) {
	if m.torndown {
		return
	}
	e, ok := m.world.Enemy(h)
	if !ok || h == m.current || m.queued(h) {
		return
	}
	m.queue = append(m.queue, h)
	e.SetAIEnabled(false)
}

// RegisterEnemies registers each handle in order.
func (m *EngagementManager) RegisterEnemies(hs []EnemyHandle) {
	for _, h := range hs {
		m.RegisterEnemy(h)
	}
}

func (m *EngagementManager) queued(h EnemyHandle) bool {
	for _, q := range m.queue {
		if q == h {
			return true
		}
	}
	return false
}

// StartNextEngagement ends any current engagement and engages the first
// queued enemy that is still alive. Dead entries ahead of it are dropped.
// It is safe to call at any time, including from event handlers.
func (m *EngagementManager) StartNextEngagement() {
	if m.torndown {
		return
	}
	if !m.current.IsZero() {
		m.EndCurrentEngagement()
		if m.torndown || !m.current.IsZero() {
			// A handler of the ended event already engaged someone.
			return
		}
	}
	// Starting now supersedes any scheduled start.
	m.world.Scheduler.Clear(&m.transition)

	next := -1
	for i, h := range m.queue {
		if m.world.Enemies.Alive(h) {
			next = i
			break
		}
	}
	if next < 0 {
		m.queue = nil
		return
	}

	h := m.queue[next]
	m.queue = append([]EnemyHandle(nil), m.queue[next+1:]...)
	m.current = h
	for _, q := range m.queue {
		if e, ok := m.world.Enemy(q); ok {
			e.SetAIEnabled(false)
		}
	}
	e, _ := m.world.Enemy(h)
	e.SetAIEnabled(true)
	log.Printf("[engagement] %s engaged, %d waiting", e.Label, len(m.queue))
	m.world.Bus.Publish(Event{Type: EventEngagementStarted, Source: SourceEngagement, Enemy: h})
}

// EndCurrentEngagement disengages the current enemy and, if others are
// waiting, schedules the next engagement after TransitionDelay.
func (m *EngagementManager) EndCurrentEngagement() {
	if m.torndown || m.current.IsZero() {
		return
	}
	h := m.current
	m.current = NoEnemy
	if e, ok := m.world.Enemy(h); ok {
		e.SetAIEnabled(false)
	}
	m.remove(h)
	m.world.Bus.Publish(Event{Type: EventEngagementEnded, Source: SourceEngagement, Enemy: h})
	if m.torndown || !m.current.IsZero() {
		// A handler already moved on.
		return
	}
	if len(m.queue) > 0 {
		m.world.Scheduler.Set(&m.transition, DelayTicks(m.TransitionDelay), m, m.StartNextEngagement)
	}
}

// Deregister forgets h. If h is the engaged enemy the engagement ends.
func (m *EngagementManager) Deregister(h EnemyHandle) {
	if h == m.current && !h.IsZero() {
		m.EndCurrentEngagement()
		return
	}
	m.remove(h)
}

func (m *EngagementManager) remove(h EnemyHandle) {
	for i, q := range m.queue {
		if q == h {
			m.queue = append(m.queue[:i:i], m.queue[i+1:]...)
			return
		}
	}
}

// Tick ends an engagement whose enemy has vanished and starts a new one
// when nothing is engaged, enemies are waiting and no transition is
// already scheduled.
func (m *EngagementManager) Tick() {
	if m.torndown {
		return
	}
	if !m.current.IsZero() && !m.world.Enemies.Alive(m.current) {
		m.EndCurrentEngagement()
	}
	if m.current.IsZero() && len(m.queue) > 0 && !m.world.Scheduler.Pending(m.transition) {
		m.StartNextEngagement()
	}
}

// ClearQueue disables every queued and engaged enemy and forgets them all.
func (m *EngagementManager) ClearQueue() {
	m.world.Scheduler.Clear(&m.transition)
	for _, h := range m.queue {
		if e, ok := m.world.Enemy(h); ok {
			e.SetAIEnabled(false)
		}
	}
	if e, ok := m.world.Enemy(m.current); ok {
		e.SetAIEnabled(false)
	}
	m.queue = nil
	m.current = NoEnemy
}

// Teardown cancels the pending transition. The manager ignores all calls
// afterwards.
func (m *EngagementManager) Teardown() {
	m.world.Scheduler.Clear(&m.transition)
	m.torndown = true
}

// CurrentEnemy returns the engaged enemy, if any.
func (m *EngagementManager) CurrentEnemy() (EnemyHandle, bool) {
	return m.current, !m.current.IsZero()
}

// IsEngagementActive reports whether an enemy is engaged.
func (m *EngagementManager) IsEngagementActive() bool {
	return !m.current.IsZero()
}

// WaitingEnemies returns the queued enemies that are still alive.
func (m *EngagementManager) WaitingEnemies() []EnemyHandle {
	return m.world.Enemies.Filter(m.queue)
}

// TransitionPending reports whether a scheduled start is waiting.
func (m *EngagementManager) TransitionPending() bool {
	return m.world.Scheduler.Pending(m.transition)
}
