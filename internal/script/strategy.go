// Package script runs tengo scripts as spawn-location strategies.
//
// A script sees the globals origin_x, origin_y, spawn_index and used_count
// and must define x and y:
//
//	math := import("math")
//	a := used_count * 0.8
//	x := origin_x + 4 * math.cos(a)
//	y := origin_y + 4 * math.sin(a)
package script

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"realm-defense/internal/game"
)

// ErrNoResult is returned when a script finishes without numeric x and y.
var ErrNoResult = errors.New("script did not define numeric x and y")

// Strategy is a game.LocationStrategy backed by a compiled tengo script.
type Strategy struct {
	Name string

	compiled *tengo.Compiled
	used     int
	failed   bool // a failure has been logged already
}

// Load reads and compiles the script at path.
func Load(path string) (*Strategy, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Compile(path, src)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Compile compiles src. name only labels log lines and errors.
func Compile(name string, src []byte) (*Strategy, error) {
	sc := tengo.NewScript(src)
	_ = sc.Add("origin_x", 0.0)
	_ = sc.Add("origin_y", 0.0)
	_ = sc.Add("spawn_index", 0)
	_ = sc.Add("used_count", 0)
	sc.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := sc.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return &Strategy{Name: name, compiled: compiled}, nil
}

// Locate runs the script for one spawn.
func (s *Strategy) Locate(origin game.Vec2, spawnIndex int) (game.Vec2, error) {
	c := s.compiled
	for name, v := range map[string]any{
		"origin_x":    origin.X,
		"origin_y":    origin.Y,
		"spawn_index": spawnIndex,
		"used_count":  s.used,
	} {
		if err := c.Set(name, v); err != nil {
			return origin, err
		}
	}
	if err := c.Run(); err != nil {
		return origin, fmt.Errorf("run %s: %w", s.Name, err)
	}
	if !c.IsDefined("x") || !c.IsDefined("y") {
		return origin, ErrNoResult
	}
	x, okX := tengo.ToFloat64(c.Get("x").Object())
	y, okY := tengo.ToFloat64(c.Get("y").Object())
	if !okX || !okY {
		return origin, ErrNoResult
	}
	return game.Vec2{X: x, Y: y}, nil
}

// SpawnLocation implements game.LocationStrategy. A failing script spawns
// at the origin so the wave still runs.
func (s *Strategy) SpawnLocation(origin game.Vec2, spawnIndex int) game.Vec2 {
	p, err := s.Locate(origin, spawnIndex)
	if err != nil {
		if !s.failed {
			log.Printf("[script] %s: %v, spawning at origin", s.Name, err)
			s.failed = true
		}
		return origin
	}
	return p
}

// LocationUsed implements game.LocationStrategy.
func (s *Strategy) LocationUsed() { s.used++ }

// UsedCount returns how many spawns have used a location from this script.
func (s *Strategy) UsedCount() int { return s.used }
