package game

// EventType identifies a gameplay event published on the Bus.
type EventType int

const (
	EventEnemySpawned EventType = iota
	EventEnemyDied
	EventWaveStarted
	EventWaveCompleted
	EventAllWavesCompleted
	EventEngagementStarted
	EventEngagementEnded
	EventRealmDefended
)

var eventNames = [...]string{
	EventEnemySpawned:      "enemy_spawned",
	EventEnemyDied:         "enemy_died",
	EventWaveStarted:       "wave_started",
	EventWaveCompleted:     "wave_completed",
	EventAllWavesCompleted: "all_waves_completed",
	EventEngagementStarted: "engagement_started",
	EventEngagementEnded:   "engagement_ended",
	EventRealmDefended:     "realm_defended",
}

func (t EventType) String() string {
	if int(t) >= 0 && int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event sources that are not spawners.
const (
	SourceEngagement = "engagement"
	SourceMode       = "mode"
	SourceWorld      = "world"
)

// Event is a single occurrence. Enemy is set for enemy and engagement
// events, WaveIndex for wave events.
type Event struct {
	Type      EventType
	Source    string
	Enemy     EnemyHandle
	WaveIndex int
}

// Handler receives published events.
type Handler func(Event)

// Subscription identifies a registered handler for Unsubscribe.
type Subscription struct {
	typ EventType
	id  uint64
}

type listener struct {
	id uint64
	fn Handler
}

// Bus is a synchronous observer list keyed by event type.
//
// Handlers run in registration order. Publishing from inside a handler
// dispatches the nested event immediately (depth first). Subscribe and
// Unsubscribe calls made while any dispatch is running take effect once
// the outermost Publish returns, so a handler never mutates the list it is
// being invoked from.
type Bus struct {
	listeners map[EventType][]listener
	nextID    uint64
	depth     int
	pending   []func()
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[EventType][]listener)}
}

// Subscribe registers fn for events of type t.
func (b *Bus) Subscribe(t EventType, fn Handler) Subscription {
	b.nextID++
	sub := Subscription{typ: t, id: b.nextID}
	add := func() {
		b.listeners[t] = append(b.listeners[t], listener{id: sub.id, fn: fn})
	}
	if b.depth > 0 {
		b.pending = append(b.pending, add)
	} else {
		add()
	}
	return sub
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	remove := func() {
		ls := b.listeners[sub.typ]
		for i, l := range ls {
			if l.id == sub.id {
				b.listeners[sub.typ] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
	if b.depth > 0 {
		b.pending = append(b.pending, remove)
	} else {
		remove()
	}
}

// Publish delivers ev to every handler subscribed to ev.Type.
func (b *Bus) Publish(ev Event) {
	ls := b.listeners[ev.Type]
	b.depth++
	defer b.endDispatch()
	for _, l := range ls {
		l.fn(ev)
	}
}

// endDispatch closes one Publish level, running deferred (un)subscribes
// once the outermost one returns, even when a handler panicked.
func (b *Bus) endDispatch() {
	b.depth--
	if b.depth == 0 && len(b.pending) > 0 {
		pending := b.pending
		b.pending = nil
		for _, fn := range pending {
			fn()
		}
	}
}

// Len returns the number of handlers for t.
func (b *Bus) Len(t EventType) int {
	return len(b.listeners[t])
}
