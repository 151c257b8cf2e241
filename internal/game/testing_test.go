package game

import (
	"math/rand"
	"testing"
)

// recorder collects bus events in publish order.
type recorder struct {
	events []Event
}

func record(w *World, types ...EventType) *recorder {
	r := &recorder{}
	for _, t := range types {
		w.Bus.Subscribe(t, func(ev Event) { r.events = append(r.events, ev) })
	}
	return r
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) waveIndexes(t EventType) []int {
	var out []int
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev.WaveIndex)
		}
	}
	return out
}

func newTestWorld() *World {
	return NewWorld(nil, rand.New(rand.NewSource(7)))
}

func testClass() *EnemyClass {
	c := DefaultEnemyClass
	return &c
}

// kill deals enough damage to finish the enemy behind h.
func kill(t *testing.T, w *World, h EnemyHandle) {
	t.Helper()
	e, ok := w.Enemy(h)
	if !ok {
		t.Fatalf("enemy %v is not alive", h)
	}
	if !e.ApplyDamage(e.Health * e.Intensity * 2) {
		t.Fatalf("enemy %s survived a lethal hit", e.Label)
	}
}

// aiEnabledCount counts registered enemies with AI on.
func aiEnabledCount(w *World) int {
	n := 0
	w.Enemies.Each(func(e *Enemy) {
		if e.AIEnabled() {
			n++
		}
	})
	return n
}
