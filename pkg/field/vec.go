package field

import "math"

// Vec2 is a continuous 2D point or direction.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Norm returns the Euclidean length of v.
func (v Vec2) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

// Unit returns v normalized to unit length. The zero vector is
// returned unchanged.
func (v Vec2) Unit() Vec2 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Round returns the nearest integer grid cell, rounding halves away
// from zero in both axes. This rounding mode determines which cell a
// continuous line position samples, so it must not be changed.
func (v Vec2) Round() Cell {
	return Cell{X: int(math.Round(v.X)), Y: int(math.Round(v.Y))}
}

// Cell is an integer grid coordinate. Grid cells are 1-based: valid
// coordinates run from 1 to the grid dimension inclusive. The zero
// Cell doubles as the "no contact found" sentinel in grasp results.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// IsZero reports whether c is the zero cell.
func (c Cell) IsZero() bool {
	return c.X == 0 && c.Y == 0
}

// Vec2 returns the cell center as a continuous point.
func (c Cell) Vec2() Vec2 {
	return Vec2{X: float64(c.X), Y: float64(c.Y)}
}
