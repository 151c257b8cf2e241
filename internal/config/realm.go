// Package config loads the realm description: enemy classes, wave spawners
// and game mode tuning.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"realm-defense/internal/game"
	"realm-defense/internal/script"
)

var (
	// ErrNoWaves is returned for a spawner that defines no waves.
	ErrNoWaves = errors.New("no waves defined")
	// ErrUnknownStrategy is returned for an unrecognised location strategy.
	ErrUnknownStrategy = errors.New("unknown location strategy")
)

// Location strategy names accepted in realm files (case-insensitive).
const (
	StrategyFixed      = "fixed"
	StrategyRoundRobin = "roundrobin"
	StrategySpinning   = "spinning"
	StrategyScript     = "script"
)

// reserved event sources a spawner may not be named after.
var reservedNames = map[string]bool{
	game.SourceEngagement: true,
	game.SourceMode:       true,
	game.SourceWorld:      true,
}

// RealmConfig is the top-level realm file.
type RealmConfig struct {
	Enemies  map[string]EnemyConfig `yaml:"enemies"`
	Spawners []SpawnerConfig        `yaml:"spawners"`
	Mode     ModeConfig             `yaml:"mode"`

	dir string // directory of the realm file, for relative script paths
}

// EnemyConfig defines an enemy class. Zero fields take the stock values.
type EnemyConfig struct {
	Glyph          string  `yaml:"glyph"`
	MaxHealth      float64 `yaml:"maxHealth"`
	Attack         float64 `yaml:"attack"`
	Speed          float64 `yaml:"speed"`
	StopDistance   float64 `yaml:"stopDistance"`
	ContactRange   float64 `yaml:"contactRange"`
	AttackInterval float64 `yaml:"attackInterval"`
}

// PointConfig is an arena position in tiles.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SpawnerConfig describes one wave spawner.
type SpawnerConfig struct {
	Name string `yaml:"name"`
	// Marker anchors the spawner to a named arena marker. It wins over Origin.
	Marker       string         `yaml:"marker"`
	Origin       *PointConfig   `yaml:"origin"`
	StartOnBegin *bool          `yaml:"startOnBegin"`
	Location     LocationConfig `yaml:"location"`
	Waves        []WaveConfig   `yaml:"waves"`
}

// LocationConfig selects and tunes the spawn-location strategy.
type LocationConfig struct {
	Strategy  string        `yaml:"strategy"`
	Jitter    *float64      `yaml:"jitter"`
	Points    []PointConfig `yaml:"points"`
	Offset    PointConfig   `yaml:"offset"`
	Radius    float64       `yaml:"radius"`
	AngleStep float64       `yaml:"angleStep"`
	Script    string        `yaml:"script"`
}

func (lc LocationConfig) jitter() float64 {
	if lc.Jitter == nil {
		return game.DefaultSpawnJitter
	}
	return *lc.Jitter
}

// WaveConfig is one authored wave.
type WaveConfig struct {
	Count      int      `yaml:"count"`
	Class      string   `yaml:"class"`
	Pool       []string `yaml:"pool"`
	StartDelay float64  `yaml:"startDelay"`
	Interval   float64  `yaml:"interval"`
	Intensity  float64  `yaml:"intensity"`
	Rush       bool     `yaml:"rush"`
}

// ModeConfig tunes the game mode. Unset values take game.DefaultModeConfig.
type ModeConfig struct {
	HealPerWave     *float64 `yaml:"healPerWave"`
	TransitionDelay *float64 `yaml:"transitionDelay"`
	RespawnDelay    *float64 `yaml:"respawnDelay"`
	MeleeDamage     float64  `yaml:"meleeDamage"`
	MeleeRange      float64  `yaml:"meleeRange"`
	LockOnRange     float64  `yaml:"lockOnRange"`
}

// LoadRealmConfig reads, defaults and validates a realm file.
func LoadRealmConfig(path string) (*RealmConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read realm file: %w", err)
	}
	cfg, err := ParseRealmConfig(data)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// ParseRealmConfig parses realm YAML. Relative script paths resolve against
// the working directory.
func ParseRealmConfig(data []byte) (*RealmConfig, error) {
	var cfg RealmConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse realm YAML: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid realm config: %w", err)
	}
	return &cfg, nil
}

func (c *RealmConfig) applyDefaults() {
	for i := range c.Spawners {
		sp := &c.Spawners[i]
		if sp.StartOnBegin == nil {
			on := true
			sp.StartOnBegin = &on
		}
		if sp.Location.Strategy == "" {
			sp.Location.Strategy = StrategyFixed
		}
		sp.Location.Strategy = strings.ToLower(sp.Location.Strategy)
		if sp.Location.Jitter == nil {
			j := game.DefaultSpawnJitter
			sp.Location.Jitter = &j
		}
		for j := range sp.Waves {
			if sp.Waves[j].Intensity == 0 {
				sp.Waves[j].Intensity = 1
			}
		}
	}
}

// Validate checks the realm for values the game cannot run with.
func (c *RealmConfig) Validate() error {
	for name, e := range c.Enemies {
		if name == "" {
			return fmt.Errorf("enemy class name cannot be empty")
		}
		if utf8.RuneCountInString(e.Glyph) > 1 {
			return fmt.Errorf("enemy %q: glyph must be a single character, got %q", name, e.Glyph)
		}
		for field, v := range map[string]float64{
			"maxHealth":      e.MaxHealth,
			"attack":         e.Attack,
			"speed":          e.Speed,
			"stopDistance":   e.StopDistance,
			"contactRange":   e.ContactRange,
			"attackInterval": e.AttackInterval,
		} {
			if v < 0 {
				return fmt.Errorf("enemy %q: %s must be >= 0, got %v", name, field, v)
			}
		}
	}

	if len(c.Spawners) == 0 {
		return fmt.Errorf("spawners cannot be empty")
	}
	seen := make(map[string]bool)
	for i, sp := range c.Spawners {
		if sp.Name == "" {
			return fmt.Errorf("spawner %d: name cannot be empty", i)
		}
		if reservedNames[sp.Name] {
			return fmt.Errorf("spawner name %q is reserved", sp.Name)
		}
		if seen[sp.Name] {
			return fmt.Errorf("duplicate spawner name %q", sp.Name)
		}
		seen[sp.Name] = true
		if err := sp.validate(); err != nil {
			return fmt.Errorf("spawner %q: %w", sp.Name, err)
		}
	}

	m := c.Mode
	for field, v := range map[string]*float64{
		"transitionDelay": m.TransitionDelay,
		"respawnDelay":    m.RespawnDelay,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("mode.%s must be >= 0, got %v", field, *v)
		}
	}
	if m.MeleeDamage < 0 || m.MeleeRange < 0 || m.LockOnRange < 0 {
		return fmt.Errorf("mode combat values must be >= 0")
	}
	return nil
}

func (sp SpawnerConfig) validate() error {
	if len(sp.Waves) == 0 {
		return ErrNoWaves
	}
	loc := sp.Location
	switch loc.Strategy {
	case StrategyFixed:
		if loc.jitter() < 0 {
			return fmt.Errorf("jitter must be >= 0, got %v", loc.jitter())
		}
	case StrategyRoundRobin:
	case StrategySpinning:
		if loc.Radius < 0 {
			return fmt.Errorf("radius must be >= 0, got %v", loc.Radius)
		}
	case StrategyScript:
		if strings.TrimSpace(loc.Script) == "" {
			return fmt.Errorf("script strategy needs a script path")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, loc.Strategy)
	}
	for i, w := range sp.Waves {
		switch {
		case w.Count < 0:
			return fmt.Errorf("wave %d: count must be >= 0, got %d", i+1, w.Count)
		case w.StartDelay < 0:
			return fmt.Errorf("wave %d: startDelay must be >= 0, got %v", i+1, w.StartDelay)
		case w.Interval < 0:
			return fmt.Errorf("wave %d: interval must be >= 0, got %v", i+1, w.Interval)
		case w.Intensity < 0:
			return fmt.Errorf("wave %d: intensity must be >= 0, got %v", i+1, w.Intensity)
		}
	}
	return nil
}

// Classes builds one EnemyClass per configured enemy. The stock class is
// always available under its own name unless the realm redefines it.
func (c *RealmConfig) Classes() map[string]*game.EnemyClass {
	out := make(map[string]*game.EnemyClass, len(c.Enemies)+1)
	stock := game.DefaultEnemyClass
	out[stock.Name] = &stock
	for name, e := range c.Enemies {
		out[name] = e.class(name)
	}
	return out
}

func (e EnemyConfig) class(name string) *game.EnemyClass {
	cl := game.DefaultEnemyClass
	cl.Name = name
	cl.Glyph = unicode.ToLower([]rune(name)[0])
	if r, _ := utf8.DecodeRuneInString(e.Glyph); e.Glyph != "" {
		cl.Glyph = r
	}
	set := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	set(&cl.MaxHealth, e.MaxHealth)
	set(&cl.Attack, e.Attack)
	set(&cl.Speed, e.Speed)
	set(&cl.StopDistance, e.StopDistance)
	set(&cl.ContactRange, e.ContactRange)
	set(&cl.AttackInterval, e.AttackInterval)
	return &cl
}

// Waves resolves every spawner's waves against classes, keyed by spawner
// name. An unknown class name becomes a nil class, which the spawner skips.
func (c *RealmConfig) Waves(classes map[string]*game.EnemyClass) map[string][]game.WaveConfig {
	lookup := func(spawner, name string) *game.EnemyClass {
		if name == "" {
			return classes[game.DefaultEnemyClass.Name]
		}
		cl, ok := classes[name]
		if !ok {
			log.Printf("[config] spawner %s: unknown enemy class %q, its spawns will be skipped", spawner, name)
		}
		return cl
	}

	out := make(map[string][]game.WaveConfig, len(c.Spawners))
	for _, sp := range c.Spawners {
		waves := make([]game.WaveConfig, 0, len(sp.Waves))
		for _, w := range sp.Waves {
			wc := game.WaveConfig{
				EnemyCount:     w.Count,
				WaveStartDelay: w.StartDelay,
				SpawnInterval:  w.Interval,
				IntensityScale: w.Intensity,
				RushWave:       w.Rush,
			}
			if len(w.Pool) > 0 {
				for _, name := range w.Pool {
					wc.ClassPool = append(wc.ClassPool, lookup(sp.Name, name))
				}
			} else {
				wc.EnemyClass = lookup(sp.Name, w.Class)
			}
			waves = append(waves, wc)
		}
		out[sp.Name] = waves
	}
	return out
}

// ModeConfig returns the game mode tuning with defaults filled in.
func (c *RealmConfig) ModeConfig() game.ModeConfig {
	mc := game.DefaultModeConfig()
	m := c.Mode
	if m.HealPerWave != nil {
		mc.HealPerWaveCleared = *m.HealPerWave
	}
	if m.TransitionDelay != nil {
		mc.TransitionDelay = *m.TransitionDelay
	}
	if m.RespawnDelay != nil {
		mc.RespawnDelay = *m.RespawnDelay
	}
	if m.MeleeDamage > 0 {
		mc.Combat.MeleeDamage = m.MeleeDamage
	}
	if m.MeleeRange > 0 {
		mc.Combat.MeleeRange = m.MeleeRange
	}
	if m.LockOnRange > 0 {
		mc.Combat.LockOnRange = m.LockOnRange
	}
	return mc
}

// Build creates a game mode in w with one registered spawner per configured
// spawner.
func (c *RealmConfig) Build(w *game.World) (*game.GameMode, error) {
	gm := game.NewGameMode(w, c.ModeConfig())
	waves := c.Waves(c.Classes())
	for _, spc := range c.Spawners {
		origin, err := c.origin(w, spc)
		if err != nil {
			return nil, fmt.Errorf("spawner %q: %w", spc.Name, err)
		}
		loc, err := c.location(w, spc.Location)
		if err != nil {
			return nil, fmt.Errorf("spawner %q: %w", spc.Name, err)
		}
		sp := game.NewWaveSpawner(w, spc.Name, origin, waves[spc.Name], loc)
		sp.StartOnBegin = spc.StartOnBegin == nil || *spc.StartOnBegin
		gm.RegisterWaveSpawner(sp)
	}
	return gm, nil
}

func (c *RealmConfig) origin(w *game.World, sp SpawnerConfig) (game.Vec2, error) {
	if sp.Marker != "" {
		p, ok := w.Arena.Marker(sp.Marker)
		if !ok {
			return game.Vec2{}, fmt.Errorf("arena %q has no marker %q", w.Arena.Name, sp.Marker)
		}
		return game.TileCenter(p.X, p.Y), nil
	}
	if sp.Origin != nil {
		return game.Vec2{X: sp.Origin.X, Y: sp.Origin.Y}, nil
	}
	return game.TileCenter(w.Arena.Width/2, w.Arena.Height/2), nil
}

func (c *RealmConfig) location(w *game.World, lc LocationConfig) (game.LocationStrategy, error) {
	switch lc.Strategy {
	case StrategyRoundRobin:
		rr := &game.RoundRobin{FallbackOffset: game.Vec2{X: lc.Offset.X, Y: lc.Offset.Y}}
		for _, p := range lc.Points {
			rr.Points = append(rr.Points, game.Vec2{X: p.X, Y: p.Y})
		}
		return rr, nil
	case StrategySpinning:
		return game.NewSpinningRadius(lc.Radius, lc.AngleStep), nil
	case StrategyScript:
		path := lc.Script
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		return script.Load(path)
	case StrategyFixed:
		return game.NewFixedPoint(lc.jitter(), w.Rand), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, lc.Strategy)
}

// Apply hands the realm's waves, placement and tuning to an existing game
// mode. New waves and placement take effect when each spawner next starts;
// spawners the realm no longer mentions keep theirs. A placement that fails
// to build (a broken script) is logged and the old one kept.
func (c *RealmConfig) Apply(gm *game.GameMode) {
	waves := c.Waves(c.Classes())
	byName := make(map[string]SpawnerConfig, len(c.Spawners))
	for _, spc := range c.Spawners {
		byName[spc.Name] = spc
	}
	for _, sp := range gm.Spawners() {
		if ws, ok := waves[sp.Name]; ok {
			sp.SetWaves(ws)
		}
		spc, ok := byName[sp.Name]
		if !ok {
			continue
		}
		loc, err := c.location(gm.World(), spc.Location)
		if err != nil {
			log.Printf("[config] spawner %q keeps its placement: %v", sp.Name, err)
			continue
		}
		sp.SetLocationStrategy(loc)
	}
	mc := c.ModeConfig()
	gm.Config = mc
	gm.Engagement.TransitionDelay = mc.TransitionDelay
}

const defaultRealm = `
spawners:
  - name: north
    marker: north
    waves:
      - count: 3
        interval: 1
      - count: 5
        interval: 0.5
        intensity: 1.5
      - count: 6
        rush: true
        intensity: 2
`

// DefaultRealmConfig returns the built-in realm used when no realm file is
// available: one spawner on the arena's north marker with three waves of
// the stock class.
func DefaultRealmConfig() *RealmConfig {
	cfg, err := ParseRealmConfig([]byte(defaultRealm))
	if err != nil {
		panic(err)
	}
	return cfg
}
