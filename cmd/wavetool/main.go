// Command wavetool checks and previews realm files offline.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strings"

	"realm-defense/internal/config"
	"realm-defense/internal/game"
	"realm-defense/internal/maps"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ExitOnError)
		arenaPath := fs.String("arena", "", "arena JSON file (default: built-in arena)")
		fs.Parse(args)
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Usage: wavetool validate [-arena file] <realm-file>")
			os.Exit(1)
		}
		os.Exit(runValidate(os.Stdout, fs.Arg(0), *arenaPath))
	case "arena":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: wavetool arena <arena-file>")
			os.Exit(1)
		}
		os.Exit(runArena(os.Stdout, args[0]))
	case "simulate":
		fs := flag.NewFlagSet("simulate", flag.ExitOnError)
		opts := simOptions{}
		arenaPath := fs.String("arena", "", "arena JSON file (default: built-in arena)")
		fs.Int64Var(&opts.Seed, "seed", 1, "random seed")
		fs.Float64Var(&opts.Damage, "damage", 1, "damage dealt to the engaged enemy per hit")
		fs.Float64Var(&opts.HitEvery, "hit-every", 0.5, "seconds between hits")
		fs.Float64Var(&opts.Limit, "limit", 600, "give up after this many simulated seconds")
		verbose := fs.Bool("v", false, "show game log output")
		fs.Parse(args)
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Usage: wavetool simulate [flags] <realm-file>")
			os.Exit(1)
		}
		if !*verbose {
			log.SetOutput(io.Discard)
		}
		os.Exit(runSimulate(os.Stdout, fs.Arg(0), *arenaPath, opts))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: wavetool <command> [flags] <path>

Commands:
  validate <realm-file>   Check a realm file against an arena
  arena    <arena-file>   Render an arena with its markers and tile stats
  simulate <realm-file>   Play the waves headless and print the event log`)
}

func loadArena(path string) (*maps.Map, error) {
	if path == "" {
		return maps.DefaultMap(), nil
	}
	return maps.LoadMap(path)
}

// --- validate ---

func runValidate(out io.Writer, realmPath, arenaPath string) int {
	realm, err := config.LoadRealmConfig(realmPath)
	if err != nil {
		fmt.Fprintf(out, "FAIL: %v\n", err)
		return 1
	}
	arena, err := loadArena(arenaPath)
	if err != nil {
		fmt.Fprintf(out, "FAIL: %v\n", err)
		return 1
	}

	problems := arena.Problems()
	for _, p := range problems {
		fmt.Fprintf(out, "  ERROR: arena %s\n", p)
	}

	classes := realm.Classes()
	waves := realm.Waves(classes)
	for _, sp := range realm.Spawners {
		total := 0
		for _, wc := range waves[sp.Name] {
			total += wc.EnemyCount
		}
		fmt.Fprintf(out, "Spawner %q: %d waves, %d enemies, %s placement\n", sp.Name, len(sp.Waves), total, sp.Location.Strategy)
		for i, wc := range sp.Waves {
			if wc.Class != "" && classes[wc.Class] == nil {
				fmt.Fprintf(out, "  WARN: wave %d uses unknown class %q and will spawn nothing\n", i+1, wc.Class)
			}
			for _, name := range wc.Pool {
				if classes[name] == nil {
					fmt.Fprintf(out, "  WARN: wave %d pool names unknown class %q\n", i+1, name)
				}
			}
		}
	}

	if _, err := realm.Build(game.NewWorld(arena, nil)); err != nil {
		fmt.Fprintf(out, "  ERROR: %v\n", err)
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		fmt.Fprintf(out, "\n%d error(s) found\n", len(problems))
		return 1
	}
	fmt.Fprintf(out, "\nRealm valid against %q\n", arena.Name)
	return 0
}

// --- arena ---

func ansiColor(code int) string {
	return fmt.Sprintf("\033[%dm", code)
}

func runArena(out io.Writer, path string) int {
	m, err := maps.LoadMap(path)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}

	marks := make(map[maps.Point]rune)
	for i, p := range m.PlayerStarts {
		marks[p] = rune('1' + i%9)
	}
	for name, p := range m.Markers {
		if name != "" {
			marks[p] = []rune(strings.ToUpper(name))[0]
		}
	}

	fmt.Fprintf(out, "%s (%dx%d)\n", m.Name, m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if r, ok := marks[maps.Point{X: x, Y: y}]; ok {
				fmt.Fprint(out, ansiColor(93), string(r), "\033[0m")
				continue
			}
			tile := m.TileAt(x, y)
			fmt.Fprint(out, ansiColor(tile.Fg), string(tile.Char), "\033[0m")
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out)
	for i, p := range m.PlayerStarts {
		fmt.Fprintf(out, "Start %d: (%d,%d)\n", i+1, p.X, p.Y)
	}
	for name, p := range m.Markers {
		fmt.Fprintf(out, "Marker %s: (%d,%d)\n", name, p.X, p.Y)
	}

	counts := make(map[string]int)
	walkable := 0
	total := m.Width * m.Height
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			tile := m.TileAt(x, y)
			counts[tile.Name]++
			if tile.Walkable {
				walkable++
			}
		}
	}
	fmt.Fprintln(out)
	for name, count := range counts {
		fmt.Fprintf(out, "  %-10s %4d (%5.1f%%)\n", name, count, float64(count)/float64(total)*100)
	}
	fmt.Fprintf(out, "\nWalkable: %d/%d (%.1f%%)\n", walkable, total, float64(walkable)/float64(total)*100)

	for _, p := range m.Problems() {
		fmt.Fprintf(out, "  WARN: %s\n", p)
	}
	return 0
}

// --- simulate ---

func runSimulate(out io.Writer, realmPath, arenaPath string, opts simOptions) int {
	realm, err := config.LoadRealmConfig(realmPath)
	if err != nil {
		fmt.Fprintf(out, "FAIL: %v\n", err)
		return 1
	}
	arena, err := loadArena(arenaPath)
	if err != nil {
		fmt.Fprintf(out, "FAIL: %v\n", err)
		return 1
	}
	res, err := simulate(out, realm, arena, opts)
	if err != nil {
		fmt.Fprintf(out, "FAIL: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "\n%d enemies defeated in %.2fs\n", res.Kills, float64(res.Ticks)/game.TickRate)
	if !res.Defended {
		fmt.Fprintln(out, "The realm was not defended before the limit")
		return 1
	}
	return 0
}

type simOptions struct {
	Seed     int64
	Damage   float64 // per hit on the engaged enemy
	HitEvery float64 // seconds
	Limit    float64 // seconds
}

type simResult struct {
	Ticks    uint64
	Kills    int
	Defended bool
}

// simulate runs realm in arena with no players, striking whichever enemy
// is engaged at a fixed rate, and writes each gameplay event to out.
func simulate(out io.Writer, realm *config.RealmConfig, arena *maps.Map, opts simOptions) (simResult, error) {
	w := game.NewWorld(arena, rand.New(rand.NewSource(opts.Seed)))
	gm, err := realm.Build(w)
	if err != nil {
		return simResult{}, err
	}
	defer gm.Teardown()

	var res simResult
	for t := game.EventEnemySpawned; t <= game.EventRealmDefended; t++ {
		w.Bus.Subscribe(t, func(ev game.Event) {
			if ev.Type == game.EventEnemyDied {
				res.Kills++
			}
			line := fmt.Sprintf("[%7.2fs] %-10s %s", float64(w.Scheduler.Now())/game.TickRate, ev.Source, ev.Type)
			switch {
			case ev.Type == game.EventWaveStarted || ev.Type == game.EventWaveCompleted:
				line += fmt.Sprintf(" wave=%d", ev.WaveIndex+1)
			case !ev.Enemy.IsZero():
				if e, ok := w.Enemy(ev.Enemy); ok {
					line += " " + e.Label
				}
			}
			fmt.Fprintln(out, line)
		})
	}

	gm.BeginPlay()
	hitEvery := uint64(game.SecsToTicks(opts.HitEvery))
	limit := uint64(game.SecsToTicks(opts.Limit))
	for res.Ticks = 0; res.Ticks < limit && !gm.Defended(); res.Ticks++ {
		w.Scheduler.Tick()
		gm.Tick()
		w.UpdateEnemies()
		if res.Ticks%hitEvery == 0 {
			if h, ok := gm.Engagement.CurrentEnemy(); ok {
				if e, ok := w.Enemy(h); ok {
					e.ApplyDamage(opts.Damage)
				}
			}
		}
	}
	res.Defended = gm.Defended()
	return res, nil
}
