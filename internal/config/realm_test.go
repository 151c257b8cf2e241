package config

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"realm-defense/internal/game"
	"realm-defense/internal/maps"
)

const sampleRealm = `
enemies:
  Brute:
    glyph: B
    maxHealth: 6
    attack: 2
    speed: 2
  Imp: {}

spawners:
  - name: north
    marker: north
    location:
      strategy: spinning
      radius: 3
      angleStep: 90
    waves:
      - count: 2
        class: Imp
        interval: 0.5
      - count: 3
        pool: [Imp, Brute]
        rush: true
        intensity: 1.5
  - name: south
    origin: {x: 10, y: 20}
    startOnBegin: false
    waves:
      - count: 1

mode:
  healPerWave: 0
  transitionDelay: 1.5
  lockOnRange: 6
`

func writeRealm(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "realm.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRealmConfig(t *testing.T) {
	cfg, err := LoadRealmConfig(writeRealm(t, sampleRealm))
	if err != nil {
		t.Fatalf("LoadRealmConfig: %v", err)
	}
	if len(cfg.Spawners) != 2 {
		t.Fatalf("spawners = %d", len(cfg.Spawners))
	}
	north, south := cfg.Spawners[0], cfg.Spawners[1]
	if !*north.StartOnBegin || *south.StartOnBegin {
		t.Error("startOnBegin defaults wrong")
	}
	if south.Location.Strategy != StrategyFixed || *south.Location.Jitter != game.DefaultSpawnJitter {
		t.Errorf("south location = %+v", south.Location)
	}
	if north.Waves[0].Intensity != 1 || north.Waves[1].Intensity != 1.5 {
		t.Errorf("intensities = %v, %v", north.Waves[0].Intensity, north.Waves[1].Intensity)
	}

	mc := cfg.ModeConfig()
	def := game.DefaultModeConfig()
	if mc.HealPerWaveCleared != 0 || mc.TransitionDelay != 1.5 || mc.RespawnDelay != def.RespawnDelay {
		t.Errorf("mode = %+v", mc)
	}
	if mc.Combat.LockOnRange != 6 || mc.Combat.MeleeRange != def.Combat.MeleeRange {
		t.Errorf("combat = %+v", mc.Combat)
	}
}

func TestClasses(t *testing.T) {
	cfg, err := ParseRealmConfig([]byte(sampleRealm))
	if err != nil {
		t.Fatal(err)
	}
	classes := cfg.Classes()
	brute := classes["Brute"]
	if brute == nil || brute.Glyph != 'B' || brute.MaxHealth != 6 || brute.Attack != 2 {
		t.Fatalf("Brute = %+v", brute)
	}
	if brute.ContactRange != game.DefaultEnemyClass.ContactRange {
		t.Errorf("unset field not defaulted: %v", brute.ContactRange)
	}
	imp := classes["Imp"]
	if imp == nil || imp.Glyph != 'i' || imp.MaxHealth != game.DefaultEnemyClass.MaxHealth {
		t.Errorf("Imp = %+v", imp)
	}
	if classes[game.DefaultEnemyClass.Name] == nil {
		t.Error("stock class missing")
	}
}

func TestWavesResolveClasses(t *testing.T) {
	cfg, err := ParseRealmConfig([]byte(`
spawners:
  - name: gate
    waves:
      - count: 2
        class: Ghost
      - count: 1
      - count: 2
        pool: [Trickster, Ghost]
`))
	if err != nil {
		t.Fatal(err)
	}
	classes := cfg.Classes()
	waves := cfg.Waves(classes)["gate"]
	if len(waves) != 3 {
		t.Fatalf("waves = %d", len(waves))
	}
	if waves[0].EnemyClass != nil {
		t.Error("unknown class did not resolve to nil")
	}
	if waves[1].EnemyClass != classes[game.DefaultEnemyClass.Name] {
		t.Error("empty class did not use the stock class")
	}
	if len(waves[2].ClassPool) != 2 || waves[2].ClassPool[0] == nil || waves[2].ClassPool[1] != nil {
		t.Errorf("pool = %v", waves[2].ClassPool)
	}
}

func TestInvalidRealm(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantMsg string
	}{
		{"not yaml", "spawners: [", nil, "failed to parse"},
		{"no spawners", "enemies: {}", nil, "spawners cannot be empty"},
		{"no waves", "spawners: [{name: a}]", ErrNoWaves, ""},
		{"unknown strategy", "spawners: [{name: a, location: {strategy: zigzag}, waves: [{count: 1}]}]", ErrUnknownStrategy, ""},
		{"unnamed", "spawners: [{waves: [{count: 1}]}]", nil, "name cannot be empty"},
		{"duplicate", "spawners: [{name: a, waves: [{count: 1}]}, {name: a, waves: [{count: 1}]}]", nil, "duplicate spawner"},
		{"reserved", "spawners: [{name: mode, waves: [{count: 1}]}]", nil, "reserved"},
		{"negative count", "spawners: [{name: a, waves: [{count: -1}]}]", nil, "count must be >= 0"},
		{"negative intensity", "spawners: [{name: a, waves: [{count: 1, intensity: -1}]}]", nil, "intensity must be >= 0"},
		{"negative interval", "spawners: [{name: a, waves: [{count: 1, interval: -2}]}]", nil, "interval"},
		{"negative jitter", "spawners: [{name: a, location: {jitter: -1}, waves: [{count: 1}]}]", nil, "jitter"},
		{"script without path", "spawners: [{name: a, location: {strategy: script}, waves: [{count: 1}]}]", nil, "script path"},
		{"long glyph", "enemies: {Orc: {glyph: OR}}\nspawners: [{name: a, waves: [{count: 1}]}]", nil, "single character"},
		{"negative delay", "mode: {respawnDelay: -1}\nspawners: [{name: a, waves: [{count: 1}]}]", nil, "respawnDelay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRealmConfig([]byte(tt.body))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadRealmConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestBuild(t *testing.T) {
	cfg, err := ParseRealmConfig([]byte(sampleRealm))
	if err != nil {
		t.Fatal(err)
	}
	w := game.NewWorld(nil, rand.New(rand.NewSource(1)))
	gm, err := cfg.Build(w)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sps := gm.Spawners()
	if len(sps) != 2 {
		t.Fatalf("spawners = %d", len(sps))
	}
	north, south := sps[0], sps[1]
	marker, _ := w.Arena.Marker("north")
	if north.Origin != game.TileCenter(marker.X, marker.Y) || !north.StartOnBegin {
		t.Errorf("north origin %v start %v", north.Origin, north.StartOnBegin)
	}
	if south.Origin != (game.Vec2{X: 10, Y: 20}) || south.StartOnBegin {
		t.Errorf("south origin %v start %v", south.Origin, south.StartOnBegin)
	}
	if gm.Engagement.TransitionDelay != 1.5 {
		t.Errorf("transition delay = %v", gm.Engagement.TransitionDelay)
	}

	gm.BeginPlay()
	if north.State() == game.StateIdle || south.State() != game.StateIdle {
		t.Errorf("states after BeginPlay: north %v south %v", north.State(), south.State())
	}
	if n := len(north.CurrentWaveEnemies()); n != 1 {
		t.Errorf("north spawned %d enemies immediately, want 1 of 2 (interval 0.5s)", n)
	}
}

func TestBuildMissingMarker(t *testing.T) {
	cfg, err := ParseRealmConfig([]byte("spawners: [{name: a, marker: east, waves: [{count: 1}]}]"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.Build(game.NewWorld(nil, nil)); err == nil || !strings.Contains(err.Error(), "east") {
		t.Errorf("err = %v, want missing marker error", err)
	}
}

func TestBuildScriptStrategy(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "line.tengo"), []byte("x := origin_x + used_count\ny := origin_y"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "realm.yaml")
	body := "spawners: [{name: a, origin: {x: 20, y: 10}, location: {strategy: Script, script: line.tengo}, waves: [{count: 2}]}]"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadRealmConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	w := game.NewWorld(nil, nil)
	gm, err := cfg.Build(w)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	gm.BeginPlay()
	hs := gm.Spawners()[0].CurrentWaveEnemies()
	if len(hs) != 2 {
		t.Fatalf("spawned %d", len(hs))
	}
	second, _ := w.Enemy(hs[1])
	if second.Pos != (game.Vec2{X: 21, Y: 10}) {
		t.Errorf("second enemy at %v", second.Pos)
	}
}

func TestApplyReplacesWavesOnRestart(t *testing.T) {
	cfg, err := ParseRealmConfig([]byte("spawners: [{name: a, waves: [{count: 1}]}]"))
	if err != nil {
		t.Fatal(err)
	}
	w := game.NewWorld(nil, nil)
	gm, err := cfg.Build(w)
	if err != nil {
		t.Fatal(err)
	}
	gm.BeginPlay()

	next, err := ParseRealmConfig([]byte("spawners: [{name: a, waves: [{count: 3}, {count: 1}]}]\nmode: {healPerWave: 5}"))
	if err != nil {
		t.Fatal(err)
	}
	next.Apply(gm)
	sp := gm.Spawners()[0]
	if sp.WaveCount() != 1 {
		t.Fatalf("running waves replaced mid-run: %d", sp.WaveCount())
	}
	if gm.Config.HealPerWaveCleared != 5 {
		t.Errorf("heal = %v", gm.Config.HealPerWaveCleared)
	}
	gm.RestartWaves()
	if sp.WaveCount() != 2 || len(sp.CurrentWaveEnemies()) != 3 {
		t.Errorf("after restart: %d waves, %d enemies", sp.WaveCount(), len(sp.CurrentWaveEnemies()))
	}
}

func TestWatcherReportsRealmChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	realm := filepath.Join(dir, "realm.yaml")
	if err := os.WriteFile(realm, []byte("spawners: []"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if got != realm {
			t.Errorf("event for %q, want %q", got, realm)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event for the realm file")
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	for range w.Events {
	}
}

func TestDefaultRealmConfig(t *testing.T) {
	cfg := DefaultRealmConfig()
	gm, err := cfg.Build(game.NewWorld(nil, nil))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sps := gm.Spawners(); len(sps) != 1 || sps[0].WaveCount() != 3 {
		t.Errorf("default realm spawners = %v", sps)
	}
}

func TestRealmAsset(t *testing.T) {
	assets := filepath.Join("..", "..", "assets")
	cfg, err := LoadRealmConfig(filepath.Join(assets, "realm.yaml"))
	if err != nil {
		t.Fatalf("LoadRealmConfig: %v", err)
	}
	arena, err := maps.LoadMap(filepath.Join(assets, "arena.json"))
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	gm, err := cfg.Build(game.NewWorld(arena, rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(gm.Spawners()) != 2 {
		t.Errorf("spawners = %d", len(gm.Spawners()))
	}
}

func TestApplyReloadsScriptPlacement(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "place.tengo")
	writeScript := func(src string) {
		t.Helper()
		if err := os.WriteFile(scriptPath, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	realmPath := filepath.Join(dir, "realm.yaml")
	body := "spawners: [{name: a, origin: {x: 30, y: 15}, location: {strategy: script, script: place.tengo}, waves: [{count: 1}]}]"
	if err := os.WriteFile(realmPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	writeScript("x := origin_x + 2\ny := origin_y")

	cfg, err := LoadRealmConfig(realmPath)
	if err != nil {
		t.Fatal(err)
	}
	w := game.NewWorld(nil, nil)
	gm, err := cfg.Build(w)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sp := gm.Spawners()[0]
	firstPos := func() game.Vec2 {
		t.Helper()
		hs := sp.CurrentWaveEnemies()
		if len(hs) != 1 {
			t.Fatalf("spawned %d enemies, want 1", len(hs))
		}
		e, _ := w.Enemy(hs[0])
		return e.Pos
	}
	reload := func() {
		t.Helper()
		next, err := LoadRealmConfig(realmPath)
		if err != nil {
			t.Fatal(err)
		}
		next.Apply(gm)
		gm.RestartWaves()
	}

	gm.BeginPlay()
	if got := firstPos(); got != (game.Vec2{X: 32, Y: 15}) {
		t.Fatalf("first run placed at %v", got)
	}

	writeScript("x := origin_x - 2\ny := origin_y")
	reload()
	if got := firstPos(); got != (game.Vec2{X: 28, Y: 15}) {
		t.Errorf("after script edit placed at %v, want (28,15)", got)
	}

	// A script that no longer compiles leaves the last good placement.
	writeScript("x := (")
	reload()
	if got := firstPos(); got != (game.Vec2{X: 28, Y: 15}) {
		t.Errorf("after broken script placed at %v, want (28,15)", got)
	}
}
