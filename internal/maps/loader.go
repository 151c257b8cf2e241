package maps

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"unicode/utf8"
)

// colorNames maps color names from JSON to ANSI codes.
var colorNames = map[string]int{
	"black":          30,
	"red":            31,
	"green":          32,
	"yellow":         33,
	"blue":           34,
	"magenta":        35,
	"cyan":           36,
	"white":          37,
	"gray":           90,
	"grey":           90,
	"bright_red":     91,
	"bright_green":   92,
	"bright_yellow":  93,
	"bright_blue":    94,
	"bright_magenta": 95,
	"bright_cyan":    96,
	"bright_white":   97,
}

func resolveColor(name string) int {
	if code, ok := colorNames[name]; ok {
		return code
	}
	return 37
}

// TileDef defines the visual and gameplay properties of a tile type.
type TileDef struct {
	Char     rune
	Fg       int
	Bg       int
	Walkable bool
	Name     string
}

// Point is a tile coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Map represents a loaded arena.
type Map struct {
	Name   string
	Width  int
	Height int
	Tiles  [][]int   // [y][x] tile indices
	Legend []TileDef // index → tile definition

	// PlayerStarts are where players enter and respawn, in join order.
	PlayerStarts []Point
	// Markers are named points spawners can anchor to.
	Markers map[string]Point
}

// jsonMap is the on-disk JSON format.
type jsonMap struct {
	Name         string              `json:"name"`
	Width        int                 `json:"width"`
	Height       int                 `json:"height"`
	PlayerStarts []Point             `json:"player_starts"`
	Markers      map[string]Point    `json:"markers,omitempty"`
	Tiles        [][]int             `json:"tiles"`
	Legend       map[string]jsonTile `json:"legend"`
}

type jsonTile struct {
	Char     string `json:"char"`
	Fg       string `json:"fg"`
	Bg       string `json:"bg,omitempty"`
	Walkable bool   `json:"walkable"`
	Name     string `json:"name"`
}

// LoadMap reads a JSON map file from disk.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}

	var jm jsonMap
	if err := json.Unmarshal(data, &jm); err != nil {
		return nil, fmt.Errorf("parse map JSON: %w", err)
	}

	legend, err := buildLegend(jm.Legend)
	if err != nil {
		return nil, err
	}

	// Validate tile dimensions
	if len(jm.Tiles) != jm.Height {
		return nil, fmt.Errorf("tile rows %d != declared height %d", len(jm.Tiles), jm.Height)
	}
	for y, row := range jm.Tiles {
		if len(row) != jm.Width {
			return nil, fmt.Errorf("row %d has %d tiles, expected %d", y, len(row), jm.Width)
		}
	}

	if len(jm.PlayerStarts) == 0 {
		return nil, fmt.Errorf("map %q has no player_starts", jm.Name)
	}
	markers := jm.Markers
	if markers == nil {
		markers = make(map[string]Point)
	}

	return &Map{
		Name:         jm.Name,
		Width:        jm.Width,
		Height:       jm.Height,
		Tiles:        jm.Tiles,
		Legend:       legend,
		PlayerStarts: jm.PlayerStarts,
		Markers:      markers,
	}, nil
}

// buildLegend turns the keyed legend into a slice indexed by tile value.
// Gaps stay as zero TileDefs, which are not walkable.
func buildLegend(raw map[string]jsonTile) ([]TileDef, error) {
	idx := make(map[int]jsonTile, len(raw))
	size := 0
	for k, jt := range raw {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("legend key %q is not a tile index", k)
		}
		idx[i] = jt
		size = max(size, i+1)
	}

	legend := make([]TileDef, size)
	for i, jt := range idx {
		ch := '?'
		if r, _ := utf8.DecodeRuneInString(jt.Char); jt.Char != "" {
			ch = r
		}
		bg := 0
		if jt.Bg != "" {
			bg = resolveColor(jt.Bg)
		}
		legend[i] = TileDef{
			Char:     ch,
			Fg:       resolveColor(jt.Fg),
			Bg:       bg,
			Walkable: jt.Walkable,
			Name:     jt.Name,
		}
	}
	return legend, nil
}

// TileAt returns the tile definition at the given coordinates.
// Returns a default non-walkable tile for out-of-bounds coordinates.
func (m *Map) TileAt(x, y int) TileDef {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return TileDef{Char: ' ', Fg: 37, Walkable: false, Name: "void"}
	}
	idx := m.Tiles[y][x]
	if idx < 0 || idx >= len(m.Legend) {
		return TileDef{Char: '?', Fg: 37, Walkable: false, Name: "unknown"}
	}
	return m.Legend[idx]
}

// IsWalkable checks if the tile at x,y can be walked on.
func (m *Map) IsWalkable(x, y int) bool {
	return m.TileAt(x, y).Walkable
}

// InBounds reports whether x,y lies inside the map.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// PlayerStart returns start i, falling back to the first start when i is
// out of range.
func (m *Map) PlayerStart(i int) Point {
	if i >= 0 && i < len(m.PlayerStarts) {
		return m.PlayerStarts[i]
	}
	return m.PlayerStarts[0]
}

// Marker returns the named marker.
func (m *Map) Marker(name string) (Point, bool) {
	p, ok := m.Markers[name]
	return p, ok
}

// DefaultMap returns a walled field used when no arena file is available.
func DefaultMap() *Map {
	w, h := 60, 30
	tiles := make([][]int, h)
	for y := 0; y < h; y++ {
		tiles[y] = make([]int, w)
		for x := 0; x < w; x++ {
			if x == 0 || x == w-1 || y == 0 || y == h-1 {
				tiles[y][x] = 1 // wall
			} else {
				tiles[y][x] = 0 // grass
			}
		}
	}

	return &Map{
		Name:   "Default",
		Width:  w,
		Height: h,
		Tiles:  tiles,
		Legend: []TileDef{
			{Char: '.', Fg: 32, Walkable: true, Name: "grass"},
			{Char: '#', Fg: 90, Walkable: false, Name: "wall"},
		},
		PlayerStarts: []Point{{X: w/2 - 2, Y: h / 2}, {X: w/2 + 2, Y: h / 2}},
		Markers: map[string]Point{
			"north": {X: w / 2, Y: 3},
			"south": {X: w / 2, Y: h - 4},
		},
	}
}

// Problems lists authoring mistakes that LoadMap tolerates: starts and
// markers that are off the map or on blocked tiles, and tile indices with
// no legend entry.
func (m *Map) Problems() []string {
	var out []string
	for i, p := range m.PlayerStarts {
		if !m.IsWalkable(p.X, p.Y) {
			out = append(out, fmt.Sprintf("player start %d at (%d,%d) is not walkable", i, p.X, p.Y))
		}
	}
	names := make([]string, 0, len(m.Markers))
	for name := range m.Markers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := m.Markers[name]
		if !m.InBounds(p.X, p.Y) {
			out = append(out, fmt.Sprintf("marker %q at (%d,%d) is out of bounds", name, p.X, p.Y))
		}
	}
	for y, row := range m.Tiles {
		for x, idx := range row {
			if idx < 0 || idx >= len(m.Legend) {
				out = append(out, fmt.Sprintf("tile (%d,%d) index %d out of legend range [0..%d]", x, y, idx, len(m.Legend)-1))
			}
		}
	}
	return out
}
