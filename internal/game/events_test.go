package game

import (
	"reflect"
	"testing"
)

func TestBusRegistrationOrder(t *testing.T) {
	b := NewBus()
	var got []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		b.Subscribe(EventWaveStarted, func(Event) { got = append(got, name) })
	}
	b.Publish(Event{Type: EventWaveStarted})

	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("handler order = %v, want %v", got, want)
	}
}

func TestBusOnlyMatchingType(t *testing.T) {
	b := NewBus()
	calls := 0
	b.Subscribe(EventWaveCompleted, func(Event) { calls++ })
	b.Publish(Event{Type: EventWaveStarted})
	if calls != 0 {
		t.Errorf("handler for another type ran %d times", calls)
	}
}

func TestBusSubscribeDuringDispatchIsDeferred(t *testing.T) {
	b := NewBus()
	late := 0
	b.Subscribe(EventEnemySpawned, func(Event) {
		b.Subscribe(EventEnemySpawned, func(Event) { late++ })
	})

	b.Publish(Event{Type: EventEnemySpawned})
	if late != 0 {
		t.Fatalf("handler added mid-dispatch saw the event being dispatched")
	}
	if n := b.Len(EventEnemySpawned); n != 2 {
		t.Fatalf("listeners after dispatch = %d, want 2", n)
	}

	b.Publish(Event{Type: EventEnemySpawned})
	if late != 1 {
		t.Errorf("late handler calls = %d, want 1", late)
	}
}

func TestBusUnsubscribeDuringDispatchIsDeferred(t *testing.T) {
	b := NewBus()
	var second Subscription
	calls := 0
	b.Subscribe(EventWaveStarted, func(Event) { b.Unsubscribe(second) })
	second = b.Subscribe(EventWaveStarted, func(Event) { calls++ })

	b.Publish(Event{Type: EventWaveStarted})
	if calls != 1 {
		t.Fatalf("second handler calls = %d, want 1 (removal applies after dispatch)", calls)
	}
	b.Publish(Event{Type: EventWaveStarted})
	if calls != 1 {
		t.Errorf("unsubscribed handler still called: %d", calls)
	}
}

func TestBusNestedPublishIsDepthFirst(t *testing.T) {
	b := NewBus()
	var got []EventType
	b.Subscribe(EventWaveCompleted, func(ev Event) {
		got = append(got, ev.Type)
		b.Publish(Event{Type: EventWaveStarted})
		got = append(got, EventWaveCompleted)
	})
	b.Subscribe(EventWaveStarted, func(ev Event) { got = append(got, ev.Type) })

	b.Publish(Event{Type: EventWaveCompleted})
	want := []EventType{EventWaveCompleted, EventWaveStarted, EventWaveCompleted}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		typ  EventType
		want string
	}{
		{EventEnemySpawned, "enemy_spawned"},
		{EventRealmDefended, "realm_defended"},
		{EventType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestBusRecoversAfterHandlerPanic(t *testing.T) {
	b := NewBus()
	b.Subscribe(EventWaveStarted, func(Event) { panic("handler failed") })
	func() {
		defer func() { _ = recover() }()
		b.Publish(Event{Type: EventWaveStarted})
	}()

	calls := 0
	b.Subscribe(EventWaveCompleted, func(Event) { calls++ })
	b.Publish(Event{Type: EventWaveCompleted})
	if calls != 1 {
		t.Errorf("subscription after a panicking dispatch ran %d times, want 1", calls)
	}
}
