package field

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNotSquare is returned when a flat sample slice cannot be reshaped
// into a square grid.
var ErrNotSquare = errors.New("field: sample count is not a perfect square")

// Grid is a square 2D grid of signed scalar samples, typically a
// truncated signed-distance field. Negative values are inside the
// surface, positive outside, and the zero level-set is the surface
// itself.
//
// Cells are addressed 1-based in both axes; see Cell.
type Grid struct {
	m   *mat.Dense
	dim int
}

// FromSamples reshapes a flat row-major sample slice into a square
// grid. The slice length must be a perfect square.
func FromSamples(samples []float64) (*Grid, error) {
	n := len(samples)
	dim := int(math.Sqrt(float64(n)))
	if dim*dim != n {
		return nil, fmt.Errorf("%w: %d samples", ErrNotSquare, n)
	}
	return &Grid{m: mat.NewDense(dim, dim, samples), dim: dim}, nil
}

// NewGrid allocates a zero-filled dim x dim grid.
func NewGrid(dim int) *Grid {
	return &Grid{m: mat.NewDense(dim, dim, nil), dim: dim}
}

// Dim returns the grid edge length.
func (g *Grid) Dim() int { return g.dim }

// InBounds reports whether the cell lies within the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 1 && c.X <= g.dim && c.Y >= 1 && c.Y <= g.dim
}

// At returns the sample at cell c. The cell must be in bounds.
func (g *Grid) At(c Cell) float64 {
	return g.m.At(c.X-1, c.Y-1)
}

// Set stores a sample at cell c. The cell must be in bounds.
func (g *Grid) Set(c Cell, v float64) {
	g.m.Set(c.X-1, c.Y-1, v)
}

// RawMatrix exposes the backing matrix for read-only numeric work
// (plot adapters, statistics). Callers must not mutate it.
func (g *Grid) RawMatrix() mat.Matrix { return g.m }

// NormalField holds the surface normal (field gradient) at each grid
// cell as two parallel component grids.
type NormalField struct {
	X *Grid
	Y *Grid
}

// NormalsFromSamples builds a normal field from two flat row-major
// component slices. Both must reshape to the same square dimension.
func NormalsFromSamples(xs, ys []float64) (*NormalField, error) {
	gx, err := FromSamples(xs)
	if err != nil {
		return nil, fmt.Errorf("x component: %w", err)
	}
	gy, err := FromSamples(ys)
	if err != nil {
		return nil, fmt.Errorf("y component: %w", err)
	}
	if gx.Dim() != gy.Dim() {
		return nil, fmt.Errorf("field: normal component dims differ: %d vs %d", gx.Dim(), gy.Dim())
	}
	return &NormalField{X: gx, Y: gy}, nil
}

// Dim returns the field edge length.
func (n *NormalField) Dim() int { return n.X.dim }

// At returns the normal vector at cell c. The cell must be in bounds.
func (n *NormalField) At(c Cell) Vec2 {
	return Vec2{X: n.X.At(c), Y: n.Y.At(c)}
}

// Gradient computes the normalized central-difference gradient of a
// grid, yielding an approximate surface normal at every cell. Border
// cells use one-sided differences.
func Gradient(g *Grid) *NormalField {
	dim := g.dim
	nx := NewGrid(dim)
	ny := NewGrid(dim)
	for x := 1; x <= dim; x++ {
		for y := 1; y <= dim; y++ {
			c := Cell{X: x, Y: y}
			v := Vec2{
				X: diff(g, Cell{X: x - 1, Y: y}, Cell{X: x + 1, Y: y}, c),
				Y: diff(g, Cell{X: x, Y: y - 1}, Cell{X: x, Y: y + 1}, c),
			}.Unit()
			nx.Set(c, v.X)
			ny.Set(c, v.Y)
		}
	}
	return &NormalField{X: nx, Y: ny}
}

// diff returns the difference quotient between lo and hi, falling back
// to the center cell for whichever neighbor is outside the grid.
func diff(g *Grid, lo, hi, center Cell) float64 {
	span := 2.0
	if !g.InBounds(lo) {
		lo = center
		span = 1.0
	}
	if !g.InBounds(hi) {
		hi = center
		span--
	}
	if span == 0 {
		return 0
	}
	return (g.At(hi) - g.At(lo)) / span
}
