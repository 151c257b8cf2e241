package game

import "math"

// Vec2 is a position or direction in arena tile units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }

// Normalized returns the unit vector, or the zero vector for zero length.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Tile returns the arena tile containing v.
func (v Vec2) Tile() (int, int) {
	return int(math.Floor(v.X + 0.5)), int(math.Floor(v.Y + 0.5))
}

// TileCenter returns the position of tile (x, y).
func TileCenter(x, y int) Vec2 {
	return Vec2{float64(x), float64(y)}
}
