package game

import (
	"math"
	"math/rand"
	"testing"
)

func TestFixedPointJitterBounds(t *testing.T) {
	f := NewFixedPoint(1.5, rand.New(rand.NewSource(3)))
	origin := Vec2{10, 10}
	for i := 0; i < 200; i++ {
		p := f.SpawnLocation(origin, i)
		if math.Abs(p.X-origin.X) > 1.5 || math.Abs(p.Y-origin.Y) > 1.5 {
			t.Fatalf("spawn %d at %v escapes jitter 1.5", i, p)
		}
	}

	still := NewFixedPoint(0, nil)
	if p := still.SpawnLocation(origin, 4); p != origin {
		t.Errorf("zero jitter moved the spawn to %v", p)
	}
}

func TestRoundRobin(t *testing.T) {
	origin := Vec2{5, 5}
	tests := []struct {
		name string
		rr   RoundRobin
		want []Vec2
	}{
		{
			name: "cycles points",
			rr:   RoundRobin{Points: []Vec2{{1, 1}, {2, 2}, {3, 3}}},
			want: []Vec2{{1, 1}, {2, 2}, {3, 3}, {1, 1}},
		},
		{
			name: "fallback steps from origin",
			rr:   RoundRobin{FallbackOffset: Vec2{2, 0}},
			want: []Vec2{{5, 5}, {7, 5}, {9, 5}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				if got := tt.rr.SpawnLocation(origin, i); got != want {
					t.Errorf("index %d = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestSpinningRadiusAngleWraps(t *testing.T) {
	tests := []struct {
		step  float64
		uses  int
		angle float64
	}{
		{90, 4, 0},
		{100, 4, 40},
		{-90, 1, 270},
		{720, 3, 0},
	}
	for _, tt := range tests {
		s := NewSpinningRadius(3, tt.step)
		for i := 0; i < tt.uses; i++ {
			s.LocationUsed()
		}
		if got := s.Angle(); math.Abs(got-tt.angle) > 1e-9 {
			t.Errorf("step %v x%d: angle = %v, want %v", tt.step, tt.uses, got, tt.angle)
		}
		if a := s.Angle(); a < 0 || a >= 360 {
			t.Errorf("angle %v outside [0, 360)", a)
		}
	}
}

func TestSpinningRadiusMinimum(t *testing.T) {
	s := NewSpinningRadius(0, 45)
	p := s.SpawnLocation(Vec2{}, 0)
	if math.Abs(p.Len()-MinSpinRadius) > 1e-9 {
		t.Errorf("radius = %v, want clamp to %v", p.Len(), MinSpinRadius)
	}
}
