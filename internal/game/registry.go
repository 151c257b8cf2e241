package game

// EnemyHandle is a weak, non-owning reference to an enemy in a Registry.
// A handle outlives its enemy safely: once the enemy is removed the handle
// never resolves again, even after its slot is reused.
type EnemyHandle struct {
	id  uint32
	gen uint32
}

// NoEnemy is the zero handle. It never resolves.
var NoEnemy EnemyHandle

// IsZero reports whether h is the zero handle.
func (h EnemyHandle) IsZero() bool { return h.gen == 0 }

type enemySlot struct {
	gen   uint32
	enemy *Enemy
}

// Registry owns every live enemy in a world and hands out generational
// handles to them.
type Registry struct {
	slots []enemySlot
	free  []uint32
	count int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add stores e and returns its handle. The handle is also written to e.
func (r *Registry) Add(e *Enemy) EnemyHandle {
	var id uint32
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		id = uint32(len(r.slots))
		r.slots = append(r.slots, enemySlot{})
	}
	slot := &r.slots[id]
	slot.gen++
	if slot.gen == 0 {
		slot.gen = 1
	}
	slot.enemy = e
	r.count++
	h := EnemyHandle{id: id, gen: slot.gen}
	e.Handle = h
	return h
}

// Get resolves h. It returns false for stale or zero handles.
func (r *Registry) Get(h EnemyHandle) (*Enemy, bool) {
	if h.IsZero() || int(h.id) >= len(r.slots) {
		return nil, false
	}
	slot := r.slots[h.id]
	if slot.gen != h.gen || slot.enemy == nil {
		return nil, false
	}
	return slot.enemy, true
}

// Alive reports whether h still refers to a registered enemy.
func (r *Registry) Alive(h EnemyHandle) bool {
	_, ok := r.Get(h)
	return ok
}

// Remove drops the enemy behind h. It returns false if h was already stale.
func (r *Registry) Remove(h EnemyHandle) bool {
	if !r.Alive(h) {
		return false
	}
	slot := &r.slots[h.id]
	slot.enemy = nil
	// Bump now so the old handle is stale even before the slot is reused.
	slot.gen++
	if slot.gen == 0 {
		slot.gen = 1
	}
	r.free = append(r.free, h.id)
	r.count--
	return true
}

// Len returns the number of live enemies.
func (r *Registry) Len() int { return r.count }

// Each calls fn for every live enemy in slot order. fn must not add or
// remove enemies.
func (r *Registry) Each(fn func(*Enemy)) {
	for i := range r.slots {
		if e := r.slots[i].enemy; e != nil {
			fn(e)
		}
	}
}

// Enemies returns the live enemies in slot order.
func (r *Registry) Enemies() []*Enemy {
	out := make([]*Enemy, 0, r.count)
	r.Each(func(e *Enemy) { out = append(out, e) })
	return out
}

// Filter returns the handles in hs that are still alive, preserving order.
func (r *Registry) Filter(hs []EnemyHandle) []EnemyHandle {
	out := make([]EnemyHandle, 0, len(hs))
	for _, h := range hs {
		if r.Alive(h) {
			out = append(out, h)
		}
	}
	return out
}
