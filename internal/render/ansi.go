package render

import (
	"strconv"
	"strings"
)

const (
	CSI   = "\x1b["
	Reset = CSI + "0m"

	// TileWidth is how many screen columns each world tile occupies.
	// 2 makes tiles appear roughly square since terminal chars are ~2:1.
	TileWidth = 2

	// EnterScreen switches to the alternate buffer, hides the cursor and
	// clears the screen. LeaveScreen undoes the first two.
	EnterScreen = CSI + "?1049h" + CSI + "?25l" + CSI + "2J"
	LeaveScreen = CSI + "?25h" + CSI + "?1049l"
)

// RGB is a 24-bit terminal color.
type RGB [3]uint8

// Dim scales each channel down by div.
func (c RGB) Dim(div uint8) RGB {
	return RGB{c[0] / div, c[1] / div, c[2] / div}
}

// Enemy colors.
var (
	EnemyIdle    = RGB{200, 120, 60}
	EnemyEngaged = RGB{255, 70, 70}
	HitFlash     = RGB{255, 255, 255}
)

// PlayerBGColors are the background tints for player tiles, indexed by
// game.Player.Color.
var PlayerBGColors = []RGB{
	{180, 50, 50},  // red
	{50, 160, 50},  // green
	{190, 160, 40}, // yellow
	{50, 80, 180},  // blue
	{160, 50, 160}, // magenta
	{50, 160, 160}, // cyan
}

// MoveTo positions the cursor at row, col (1-based).
func MoveTo(row, col int) string {
	return CSI + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "H"
}

// writeSGR writes the cell's complete attribute set followed by its rune.
// Each cell resets attributes first so nothing leaks from the previous one.
func (c Cell) writeSGR(sb *strings.Builder) {
	sb.WriteString(CSI + "0")
	if c.Bold {
		sb.WriteString(";1")
	}
	sb.WriteString(";38;2")
	writeRGB(sb, c.Fg)
	sb.WriteString(";48;2")
	writeRGB(sb, c.Bg)
	sb.WriteByte('m')
	sb.WriteRune(c.Ch)
}

func writeRGB(sb *strings.Builder, c RGB) {
	for _, v := range c {
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(int(v)))
	}
}

// ansiPalette maps the basic ANSI color codes used by arena files to RGB.
var ansiPalette = map[int]RGB{
	30: {0, 0, 0},
	31: {170, 0, 0},
	32: {0, 170, 0},
	33: {170, 170, 0},
	34: {0, 0, 170},
	35: {170, 0, 170},
	36: {0, 170, 170},
	37: {170, 170, 170},
	90: {85, 85, 85},
	91: {255, 85, 85},
	92: {85, 255, 85},
	93: {255, 255, 85},
	94: {85, 85, 255},
	95: {255, 85, 255},
	96: {85, 255, 255},
	97: {255, 255, 255},
}

// PaletteColor converts a basic ANSI color code to RGB. Unknown codes are
// light gray.
func PaletteColor(code int) RGB {
	if c, ok := ansiPalette[code]; ok {
		return c
	}
	return ansiPalette[37]
}
