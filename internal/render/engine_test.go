package render

import (
	"strings"
	"testing"

	"realm-defense/internal/game"
	"realm-defense/internal/maps"
)

// rowText returns the characters of screen row y after the last Render.
func rowText(e *Engine, y int) string {
	var sb strings.Builder
	for _, c := range e.current[y] {
		sb.WriteRune(c.Ch)
	}
	return sb.String()
}

func screenText(e *Engine) string {
	rows := make([]string, e.height)
	for y := range rows {
		rows[y] = rowText(e, y)
	}
	return strings.Join(rows, "\n")
}

func testState() game.GameState {
	return game.GameState{
		Map: maps.DefaultMap(),
		Players: []game.PlayerSnapshot{
			{ID: "ann", Name: "ann", X: 28, Y: 15, HP: 7, MaxHP: 10, Dir: game.DirRight},
			{ID: "ben", Name: "ben", X: 32, Y: 15, HP: 10, MaxHP: 10, Color: 1},
		},
		Enemies: []game.EnemySnapshot{
			{Label: "Trickster A", Glyph: 't', X: 30, Y: 12, HP: 3, MaxHP: 3, Engaged: true},
		},
		Waves:   []game.WaveStatus{{Spawner: "north", Wave: 2, Total: 3, State: "active", Alive: 1}},
		Engaged: "Trickster A",
		Waiting: 2,
		Log:     []string{"north: wave 2 approaches"},
	}
}

func TestRenderDrawsArenaAndHUD(t *testing.T) {
	e := NewEngine(100, 40)
	out := e.Render("ann", testState(), 100, 40)
	if !strings.HasPrefix(out, MoveTo(1, 1)) || !strings.HasSuffix(out, Reset) {
		t.Fatalf("first frame is not a full redraw: %q...", out[:min(len(out), 20)])
	}

	screen := screenText(e)
	for _, want := range []string{
		"@>",
		"t█",
		"ann",
		"Default",
		"2 Online",
		"north wave 2/3 active (1)",
		"Engaged: Trickster A   2 waiting",
		"Health",
		"7/10",
		"north: wave 2 approaches",
	} {
		if !strings.Contains(screen, want) {
			t.Errorf("screen is missing %q", want)
		}
	}
}

func TestRenderEmitsOnlyChanges(t *testing.T) {
	e := NewEngine(80, 30)
	st := testState()
	e.Render("ann", st, 80, 30)
	if out := e.Render("ann", st, 80, 30); out != "" {
		t.Errorf("unchanged frame emitted %d bytes", len(out))
	}

	st.Enemies[0].HitFlash = true
	out := e.Render("ann", st, 80, 30)
	if out == "" || strings.Contains(out, MoveTo(1, 1)) {
		t.Errorf("changed frame should be a small diff, got %d bytes", len(out))
	}
}

func TestRenderResizeRedraws(t *testing.T) {
	e := NewEngine(80, 30)
	st := testState()
	e.Render("ann", st, 80, 30)
	out := e.Render("ann", st, 90, 30)
	if !strings.HasPrefix(out, MoveTo(1, 1)) {
		t.Error("resize did not trigger a full redraw")
	}
}

func TestRenderDefendedAndFallen(t *testing.T) {
	e := NewEngine(100, 40)
	st := testState()
	st.Defended = true
	st.Players[0].Dead = true
	e.Render("ann", st, 100, 40)

	screen := screenText(e)
	for _, want := range []string{"The realm is defended!", "You have fallen", "%>"} {
		if !strings.Contains(screen, want) {
			t.Errorf("screen is missing %q", want)
		}
	}
}

func TestHealthPip(t *testing.T) {
	tests := []struct {
		hp, max float64
		want    rune
	}{
		{3, 3, '█'},
		{0, 3, ' '},
		{0.1, 3, '▁'},
		{1, 0, ' '},
	}
	for _, tt := range tests {
		if got := healthPip(tt.hp, tt.max); got != tt.want {
			t.Errorf("healthPip(%v, %v) = %q, want %q", tt.hp, tt.max, got, tt.want)
		}
	}
}

func TestViewport(t *testing.T) {
	tests := []struct {
		name               string
		px, py             int
		termW, termH       int
		wantCamX, wantCamY int
		wantOffset         int
	}{
		{"centered", 30, 15, 40, 16, 20, 10, 0},
		{"clamped top left", 1, 1, 40, 16, 0, 0, 0},
		{"clamped bottom right", 58, 28, 40, 16, 40, 20, 0},
		{"arena narrower than screen", 30, 15, 200, 46, 0, 0, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := NewViewport(tt.px, tt.py, tt.termW, tt.termH, 60, 30, HUDRows)
			if vp.CamX != tt.wantCamX || vp.CamY != tt.wantCamY || vp.OffsetX != tt.wantOffset {
				t.Errorf("cam (%d,%d) offset %d, want (%d,%d) offset %d",
					vp.CamX, vp.CamY, vp.OffsetX, tt.wantCamX, tt.wantCamY, tt.wantOffset)
			}
		})
	}

	vp := NewViewport(30, 15, 40, 16, 60, 30, HUDRows)
	if sx, sy, ok := vp.WorldToScreen(30, 15); !ok || sx != 20 || sy != 5 {
		t.Errorf("WorldToScreen = %d,%d,%v", sx, sy, ok)
	}
	if _, _, ok := vp.WorldToScreen(0, 0); ok {
		t.Error("off-screen tile reported visible")
	}
}
