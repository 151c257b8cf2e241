package game

import "sort"

// Liveness is implemented by anything that owns scheduled work. A task whose
// owner reports not alive is dropped instead of run.
type Liveness interface {
	Alive() bool
}

// LivenessFunc adapts a function to Liveness.
type LivenessFunc func() bool

func (f LivenessFunc) Alive() bool { return f() }

// TimerHandle identifies a scheduled task. The zero handle is never issued.
type TimerHandle uint64

type task struct {
	handle TimerHandle
	due    uint64
	owner  Liveness
	fn     func()
}

// Scheduler runs deferred callbacks on the game tick. It is not safe for
// concurrent use; the game loop is its only caller.
type Scheduler struct {
	now    uint64
	nextID TimerHandle
	tasks  map[TimerHandle]*task
}

// NewScheduler returns an empty scheduler at tick 0.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[TimerHandle]*task)}
}

// Now returns the current tick.
func (s *Scheduler) Now() uint64 { return s.now }

// After schedules fn to run ticks ticks from now. A delay of 0 runs on the
// next Tick, never synchronously.
func (s *Scheduler) After(ticks int, owner Liveness, fn func()) TimerHandle {
	if ticks < 0 {
		ticks = 0
	}
	s.nextID++
	t := &task{
		handle: s.nextID,
		due:    s.now + uint64(ticks),
		owner:  owner,
		fn:     fn,
	}
	s.tasks[t.handle] = t
	return t.handle
}

// Set cancels whatever *h refers to and schedules a replacement into it.
func (s *Scheduler) Set(h *TimerHandle, ticks int, owner Liveness, fn func()) {
	s.Cancel(*h)
	*h = s.After(ticks, owner, fn)
}

// Clear cancels *h and zeroes it.
func (s *Scheduler) Clear(h *TimerHandle) {
	s.Cancel(*h)
	*h = 0
}

// Cancel removes a pending task. Unknown or already run handles are ignored.
func (s *Scheduler) Cancel(h TimerHandle) {
	delete(s.tasks, h)
}

// CancelOwner removes every pending task owned by owner. owner must be a
// comparable value such as a pointer; a LivenessFunc owner cannot be
// cancelled this way.
func (s *Scheduler) CancelOwner(owner Liveness) {
	for h, t := range s.tasks {
		if t.owner == owner {
			delete(s.tasks, h)
		}
	}
}

// Pending reports whether h is still waiting to run.
func (s *Scheduler) Pending(h TimerHandle) bool {
	_, ok := s.tasks[h]
	return ok
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int { return len(s.tasks) }

// Tick advances time by one tick and runs every task that has come due, in
// due order then scheduling order. Tasks scheduled while running wait for a
// later tick.
func (s *Scheduler) Tick() {
	s.now++
	var due []*task
	for _, t := range s.tasks {
		if t.due <= s.now {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].handle < due[j].handle
	})
	for _, t := range due {
		// An earlier task may have cancelled this one.
		if _, ok := s.tasks[t.handle]; !ok {
			continue
		}
		delete(s.tasks, t.handle)
		if t.owner != nil && !t.owner.Alive() {
			continue
		}
		t.fn()
	}
}

// Advance runs n ticks.
func (s *Scheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}
