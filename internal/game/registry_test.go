package game

import "testing"

func TestRegistryHandles(t *testing.T) {
	r := NewRegistry()
	a := &Enemy{Label: "a"}
	b := &Enemy{Label: "b"}
	ha := r.Add(a)
	hb := r.Add(b)

	if a.Handle != ha || b.Handle != hb {
		t.Fatal("Add did not write the handle back to the enemy")
	}
	if got, ok := r.Get(ha); !ok || got != a {
		t.Fatalf("Get(a) = %v, %v", got, ok)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}

	if !r.Remove(ha) {
		t.Fatal("Remove(a) = false")
	}
	if r.Remove(ha) {
		t.Error("second Remove(a) = true")
	}
	if r.Alive(ha) {
		t.Error("removed handle still alive")
	}

	// The freed slot is reused, but the old handle stays stale.
	c := &Enemy{Label: "c"}
	hc := r.Add(c)
	if hc.id != ha.id {
		t.Fatalf("slot not reused: %d vs %d", hc.id, ha.id)
	}
	if got, ok := r.Get(ha); ok {
		t.Errorf("stale handle resolved to %s", got.Label)
	}
	if got, ok := r.Get(hc); !ok || got != c {
		t.Errorf("Get(c) = %v, %v", got, ok)
	}
}

func TestRegistryZeroHandle(t *testing.T) {
	r := NewRegistry()
	r.Add(&Enemy{})
	if r.Alive(NoEnemy) {
		t.Error("zero handle resolved")
	}
	if r.Alive(EnemyHandle{id: 40, gen: 1}) {
		t.Error("out of range handle resolved")
	}
}

func TestRegistryFilterKeepsOrder(t *testing.T) {
	r := NewRegistry()
	var hs []EnemyHandle
	for i := 0; i < 4; i++ {
		hs = append(hs, r.Add(&Enemy{}))
	}
	r.Remove(hs[1])
	got := r.Filter(hs)
	want := []EnemyHandle{hs[0], hs[2], hs[3]}
	if len(got) != len(want) {
		t.Fatalf("Filter len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Filter[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
