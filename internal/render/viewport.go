package render

// Viewport computes camera coordinates for a player's view. Each world tile
// is TileWidth screen columns wide and one row tall.
type Viewport struct {
	CamX, CamY   int // top-left world coordinate
	ViewW, ViewH int // viewport size in tiles
	OffsetX      int // left margin in columns when the arena is narrower than the screen
}

// NewViewport calculates the camera position centered on the player,
// clamped to map edges. hudRows reserves space for the HUD at the bottom.
func NewViewport(playerX, playerY, termW, termH, mapW, mapH, hudRows int) Viewport {
	viewW := termW / TileWidth
	viewH := termH - hudRows
	if viewH < 0 {
		viewH = 0
	}

	camX := clampCam(playerX-viewW/2, viewW, mapW)
	camY := clampCam(playerY-viewH/2, viewH, mapH)

	offsetX := 0
	if mapW < viewW {
		offsetX = (viewW - mapW) / 2 * TileWidth
	}

	return Viewport{
		CamX:    camX,
		CamY:    camY,
		ViewW:   viewW,
		ViewH:   viewH,
		OffsetX: offsetX,
	}
}

func clampCam(cam, view, size int) int {
	if cam+view > size {
		cam = size - view
	}
	if cam < 0 {
		cam = 0
	}
	return cam
}

// WorldToScreen converts world coordinates to the 0-based screen column and
// row of the tile's first cell. ok is false outside the viewport.
func (v Viewport) WorldToScreen(wx, wy int) (sx, sy int, ok bool) {
	tx := wx - v.CamX
	ty := wy - v.CamY
	if tx < 0 || tx >= v.ViewW || ty < 0 || ty >= v.ViewH {
		return 0, 0, false
	}
	return v.OffsetX + tx*TileWidth, ty, true
}
