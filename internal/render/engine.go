package render

import (
	"fmt"
	"math"
	"strings"

	"realm-defense/internal/game"
	"realm-defense/internal/maps"
)

// HUDRows is the number of rows reserved for the HUD below the arena.
const HUDRows = 6

// Cell represents a single terminal cell with full RGB color.
type Cell struct {
	Ch     rune
	Fg, Bg RGB
	Bold   bool
}

// sentinel never matches a drawn cell, forcing a full redraw.
var sentinel = Cell{Ch: '\x00', Fg: RGB{255, 0, 0}, Bg: RGB{0, 0, 255}, Bold: true}

func cell(ch rune, fg, bg RGB, bold bool) Cell {
	return Cell{Ch: ch, Fg: fg, Bg: bg, Bold: bold}
}

var (
	screenBG = RGB{10, 10, 15}
	hudBG    = RGB{15, 18, 30}
	hudText  = RGB{180, 180, 195}
	hudDim   = RGB{110, 110, 125}
	hudSep   = RGB{60, 65, 85}
	goldText = RGB{255, 215, 90}
)

// Engine is a per-session double-buffer diff renderer.
type Engine struct {
	width, height int
	current       [][]Cell
	next          [][]Cell
	firstFrame    bool
}

// NewEngine creates a renderer for the given terminal dimensions.
func NewEngine(width, height int) *Engine {
	e := &Engine{
		width:      width,
		height:     height,
		firstFrame: true,
	}
	e.current = e.makeBuffer(sentinel)
	e.next = e.makeBuffer(Cell{})
	return e
}

// Resize adjusts the renderer for a new terminal size.
func (e *Engine) Resize(width, height int) {
	e.width = width
	e.height = height
	e.current = e.makeBuffer(sentinel)
	e.next = e.makeBuffer(Cell{})
	e.firstFrame = true
}

func (e *Engine) makeBuffer(fill Cell) [][]Cell {
	buf := make([][]Cell, e.height)
	for y := 0; y < e.height; y++ {
		buf[y] = make([]Cell, e.width)
		for x := 0; x < e.width; x++ {
			buf[y][x] = fill
		}
	}
	return buf
}

// Render produces the ANSI output for one frame of st as seen by viewerID.
// Only cells that changed since the previous frame are emitted.
func (e *Engine) Render(viewerID string, st game.GameState, termW, termH int) string {
	if termW != e.width || termH != e.height {
		e.Resize(termW, termH)
	}

	var viewer game.PlayerSnapshot
	for _, p := range st.Players {
		if p.ID == viewerID {
			viewer = p
			break
		}
	}

	bg := cell(' ', screenBG, screenBG, false)
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			e.next[y][x] = bg
		}
	}

	if st.Map != nil {
		vp := NewViewport(viewer.X, viewer.Y, termW, termH, st.Map.Width, st.Map.Height, HUDRows)
		e.drawArena(vp, st.Map)
		e.drawEnemies(vp, st.Enemies)
		e.drawPlayers(vp, st.Players, viewerID)
		e.drawHUD(viewer, st)
	}

	return e.flush()
}

func (e *Engine) drawArena(vp Viewport, m *maps.Map) {
	for ty := 0; ty < vp.ViewH; ty++ {
		for tx := 0; tx < vp.ViewW; tx++ {
			wx, wy := vp.CamX+tx, vp.CamY+ty
			if !m.InBounds(wx, wy) {
				continue
			}
			tile := m.TileAt(wx, wy)
			fg := PaletteColor(tile.Fg)
			back := screenBG
			if tile.Bg != 0 && tile.Bg != 37 {
				back = PaletteColor(tile.Bg).Dim(3)
			}
			sx, sy, _ := vp.WorldToScreen(wx, wy)
			e.set(sx, sy, cell(tile.Char, fg, back, false))
			e.set(sx+1, sy, cell(' ', fg, back, false))
		}
	}
}

func (e *Engine) drawEnemies(vp Viewport, enemies []game.EnemySnapshot) {
	for _, en := range enemies {
		sx, sy, ok := vp.WorldToScreen(en.X, en.Y)
		if !ok {
			continue
		}
		fg := EnemyIdle
		if en.Engaged {
			fg = EnemyEngaged
		}
		if en.HitFlash {
			fg = HitFlash
		}
		back := e.bgAt(sx, sy)
		e.set(sx, sy, cell(en.Glyph, fg, back, en.Engaged))
		e.set(sx+1, sy, cell(healthPip(en.HP, en.MaxHP), fg, back, false))
	}
}

// healthPip is a one-cell health gauge drawn beside an enemy glyph.
func healthPip(hp, maxHP float64) rune {
	pips := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	if maxHP <= 0 {
		return ' '
	}
	i := int(math.Ceil(hp / maxHP * float64(len(pips)-1)))
	return pips[max(0, min(i, len(pips)-1))]
}

func (e *Engine) drawPlayers(vp Viewport, players []game.PlayerSnapshot, viewerID string) {
	for _, p := range players {
		sx, sy, ok := vp.WorldToScreen(p.X, p.Y)
		if !ok {
			continue
		}
		color := PlayerBGColors[p.Color%len(PlayerBGColors)]
		ch, fg := '@', RGB{255, 255, 255}
		switch {
		case p.Dead:
			ch, fg, color = '%', hudDim, screenBG
		case p.HitFlash:
			fg = EnemyEngaged
		}
		self := p.ID == viewerID
		e.set(sx, sy, cell(ch, fg, color, self))
		e.set(sx+1, sy, cell(facingMark(p.Dir), fg, color, self))
	}
}

func facingMark(d game.Direction) rune {
	switch d {
	case game.DirUp:
		return '^'
	case game.DirLeft:
		return '<'
	case game.DirRight:
		return '>'
	default:
		return 'v'
	}
}

func (e *Engine) drawHUD(viewer game.PlayerSnapshot, st game.GameState) {
	hudY := e.height - HUDRows
	if hudY < 0 {
		return
	}

	for x := 0; x < e.width; x++ {
		t := uint8(60 - x*40/max(e.width, 1))
		e.next[hudY][x] = cell('━', RGB{40 + t, 70 + t, 90 + t}, hudBG, false)
	}
	for row := 1; row < HUDRows; row++ {
		for x := 0; x < e.width; x++ {
			e.next[hudY+row][x] = cell(' ', hudText, hudBG, false)
		}
	}

	// Row 1: who and where
	row := hudY + 1
	pc := PlayerBGColors[viewer.Color%len(PlayerBGColors)]
	name := RGB{pc[0] + (255-pc[0])/3, pc[1] + (255-pc[1])/3, pc[2] + (255-pc[2])/3}
	col := e.writeText(row, 1, viewer.Name, name, true)
	col = e.writeText(row, col, "  │  ", hudSep, false)
	col = e.writeText(row, col, st.Map.Name, hudText, false)
	col = e.writeText(row, col, "  │  ", hudSep, false)
	col = e.writeText(row, col, fmt.Sprintf("%d Online", len(st.Players)), hudText, false)
	col = e.writeText(row, col, "  │  ", hudSep, false)
	e.writeText(row, col, fmt.Sprintf("Kills %d", viewer.Kills), hudText, false)

	// Row 2: waves
	row = hudY + 2
	col = 1
	for i, w := range st.Waves {
		if i > 0 {
			col = e.writeText(row, col, "  ", hudText, false)
		}
		text := fmt.Sprintf("%s wave %d/%d %s", w.Spawner, w.Wave, w.Total, w.State)
		if w.Alive > 0 {
			text += fmt.Sprintf(" (%d)", w.Alive)
		}
		col = e.writeText(row, col, text, hudText, false)
	}

	// Row 3: engagement
	row = hudY + 3
	switch {
	case st.Defended:
		e.writeText(row, 1, "★ The realm is defended! Press R to fight again.", goldText, true)
	case st.Engaged != "":
		col = e.writeText(row, 1, "Engaged: ", hudDim, false)
		col = e.writeText(row, col, st.Engaged, EnemyEngaged, true)
		e.writeText(row, col, fmt.Sprintf("   %d waiting", st.Waiting), hudDim, false)
	case st.Waiting > 0:
		e.writeText(row, 1, fmt.Sprintf("Next challenger approaches... %d waiting", st.Waiting), hudDim, false)
	}

	// Row 4: health
	row = hudY + 4
	if viewer.Dead {
		e.writeText(row, 1, "You have fallen. Respawning...", EnemyEngaged, true)
	} else {
		fr, fg, fb := hpBarColor(viewer.HP, viewer.MaxHP)
		col = e.drawStatBar(row, 1, "Health", viewer.HP, viewer.MaxHP, 20, RGB{255, 80, 80}, RGB{fr, fg, fb})
		if viewer.Locked {
			e.writeText(row, col+2, "[locked]", EnemyEngaged, true)
		}
	}

	// Row 5: latest log line, controls on the right
	row = hudY + 5
	if n := len(st.Log); n > 0 {
		e.writeText(row, 1, st.Log[n-1], hudText, false)
	}
	controls := "WASD Move  Space Attack  Tab Lock  R Restart  Q Quit"
	if start := e.width - len([]rune(controls)) - 1; start > e.width/2 {
		e.writeText(row, start, controls, hudDim, false)
	}
}

// hpBarColor returns the fill color for an HP bar based on current/max ratio.
func hpBarColor(current, maxHP float64) (uint8, uint8, uint8) {
	if maxHP <= 0 {
		return 80, 80, 90
	}
	ratio := current / maxHP
	if ratio > 0.5 {
		return 70, 210, 70
	} else if ratio > 0.25 {
		return 220, 200, 40
	}
	return 220, 60, 40
}

// drawStatBar draws a labeled stat bar with fill. Returns the next column.
func (e *Engine) drawStatBar(row, col int, label string, current, maximum float64, barWidth int, labelFg, fill RGB) int {
	col = e.writeText(row, col, label, labelFg, true)
	col++

	filled := 0
	if maximum > 0 {
		filled = int(math.Round(float64(barWidth) * current / maximum))
	}
	filled = max(0, min(filled, barWidth))
	for i := 0; i < barWidth; i++ {
		if i < filled {
			e.set(col+i, row, cell('█', fill, hudBG, false))
		} else {
			e.set(col+i, row, cell('░', RGB{45, 45, 55}, hudBG, false))
		}
	}
	col += barWidth + 1
	return e.writeText(row, col, fmt.Sprintf("%g/%g", math.Ceil(current*10)/10, maximum), hudText, false)
}

// writeText writes colored text starting at col. Returns the next column.
func (e *Engine) writeText(row, col int, text string, fg RGB, bold bool) int {
	for _, r := range text {
		if col >= e.width {
			break
		}
		e.set(col, row, cell(r, fg, e.bgAt(col, row), bold))
		col++
	}
	return col
}

func (e *Engine) set(x, y int, c Cell) {
	if x >= 0 && x < e.width && y >= 0 && y < e.height {
		e.next[y][x] = c
	}
}

func (e *Engine) bgAt(x, y int) RGB {
	if x < 0 || x >= e.width || y < 0 || y >= e.height {
		return screenBG
	}
	return e.next[y][x].Bg
}

// flush diffs next against current, emits changed cells and swaps buffers.
func (e *Engine) flush() string {
	var sb strings.Builder
	sb.Grow(16384)

	lastRow, lastCol := -1, -1
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			nc := e.next[y][x]
			if e.firstFrame || nc != e.current[y][x] {
				// Only emit cursor position if not consecutive
				if y != lastRow || x != lastCol {
					sb.WriteString(MoveTo(y+1, x+1))
				}
				nc.writeSGR(&sb)
				lastRow = y
				lastCol = x + 1
			}
		}
	}

	if sb.Len() > 0 {
		sb.WriteString(Reset)
	}

	e.current, e.next = e.next, e.current
	e.firstFrame = false

	return sb.String()
}
