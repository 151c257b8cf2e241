package game

import (
	"math"
	"math/rand"
)

// LocationStrategy decides where a spawner places each enemy.
type LocationStrategy interface {
	// SpawnLocation returns the point for the spawnIndex-th enemy of the
	// current wave.
	SpawnLocation(origin Vec2, spawnIndex int) Vec2
	// LocationUsed is called after an enemy actually spawned at the last
	// returned point.
	LocationUsed()
}

// FixedPoint spawns at the origin with a small random jitter.
type FixedPoint struct {
	Jitter float64
	rng    *rand.Rand
}

// NewFixedPoint returns a FixedPoint drawing jitter from rng.
func NewFixedPoint(jitter float64, rng *rand.Rand) *FixedPoint {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &FixedPoint{Jitter: math.Abs(jitter), rng: rng}
}

func (f *FixedPoint) SpawnLocation(origin Vec2, _ int) Vec2 {
	if f.Jitter == 0 {
		return origin
	}
	return origin.Add(Vec2{
		X: (f.rng.Float64()*2 - 1) * f.Jitter,
		Y: (f.rng.Float64()*2 - 1) * f.Jitter,
	})
}

func (f *FixedPoint) LocationUsed() {}

// RoundRobin cycles through authored points by spawn index. With no points
// each spawn steps FallbackOffset further from the origin.
type RoundRobin struct {
	Points         []Vec2
	FallbackOffset Vec2
}

func (r *RoundRobin) SpawnLocation(origin Vec2, spawnIndex int) Vec2 {
	if len(r.Points) > 0 {
		return r.Points[spawnIndex%len(r.Points)]
	}
	return origin.Add(r.FallbackOffset.Scale(float64(spawnIndex)))
}

func (r *RoundRobin) LocationUsed() {}

// SpinningRadius walks around a circle centred on the origin, stepping the
// angle after every spawn.
type SpinningRadius struct {
	Radius    float64
	AngleStep float64 // degrees
	angle     float64 // degrees, always in [0, 360)
}

// MinSpinRadius is the smallest radius SpinningRadius accepts.
const MinSpinRadius = 0.5

// NewSpinningRadius returns a strategy starting at angle 0.
func NewSpinningRadius(radius, angleStep float64) *SpinningRadius {
	return &SpinningRadius{Radius: math.Max(MinSpinRadius, radius), AngleStep: angleStep}
}

// Angle returns the current angle in degrees.
func (s *SpinningRadius) Angle() float64 { return s.angle }

func (s *SpinningRadius) SpawnLocation(origin Vec2, _ int) Vec2 {
	rad := s.angle * math.Pi / 180
	return origin.Add(Vec2{X: s.Radius * math.Cos(rad), Y: s.Radius * math.Sin(rad)})
}

func (s *SpinningRadius) LocationUsed() {
	s.angle = math.Mod(s.angle+s.AngleStep, 360)
	if s.angle < 0 {
		s.angle += 360
	}
	if s.angle >= 360 {
		s.angle = 0
	}
}
