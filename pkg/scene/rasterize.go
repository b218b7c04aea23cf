package scene

import (
	"fmt"
	"math"

	"github.com/seagrove/graspkit/pkg/field"
)

// Frame maps between world coordinates and grid cells. The sampling
// frame is square and centered on the surface bounds; cell centers sit
// at integer grid coordinates 1..Dim.
type Frame struct {
	Min      field.Vec2
	CellSize float64
	Dim      int
}

// ToGrid converts a world point to continuous grid coordinates.
func (f Frame) ToGrid(p field.Vec2) field.Vec2 {
	return field.Vec2{
		X: (p.X-f.Min.X)/f.CellSize + 0.5,
		Y: (p.Y-f.Min.Y)/f.CellSize + 0.5,
	}
}

// ToWorld converts a grid cell to the world coordinates of its center.
func (f Frame) ToWorld(c field.Cell) field.Vec2 {
	return field.Vec2{
		X: f.Min.X + (float64(c.X)-0.5)*f.CellSize,
		Y: f.Min.Y + (float64(c.Y)-0.5)*f.CellSize,
	}
}

// Rasterize samples a surface onto a square grid per spec, truncating
// distances to the spec's truncation band, and derives the normal
// field from the sampled values. Distances are stored in cell units so
// downstream thresholds and the finder's sign sentinel are resolution
// independent.
func Rasterize(s Surface, spec GridSpec) (*field.Grid, *field.NormalField, Frame, error) {
	if s == nil {
		return nil, nil, Frame{}, fmt.Errorf("%w: nil surface", ErrInvalidPlan)
	}
	if spec.Dim < 2 {
		return nil, nil, Frame{}, fmt.Errorf("%w: grid dim %d", ErrInvalidPlan, spec.Dim)
	}

	min, max := s.Bounds()
	pad := spec.Truncation
	size := math.Max(max.X-min.X, max.Y-min.Y) + 2*pad
	if size <= 0 {
		return nil, nil, Frame{}, fmt.Errorf("%w: degenerate surface bounds", ErrInvalidPlan)
	}
	center := min.Add(max).Scale(0.5)
	frame := Frame{
		Min:      center.Sub(field.Vec2{X: size / 2, Y: size / 2}),
		CellSize: size / float64(spec.Dim),
		Dim:      spec.Dim,
	}

	g := field.NewGrid(spec.Dim)
	truncCells := spec.Truncation / frame.CellSize
	for x := 1; x <= spec.Dim; x++ {
		for y := 1; y <= spec.Dim; y++ {
			c := field.Cell{X: x, Y: y}
			w := frame.ToWorld(c)
			d := s.Distance(w.X, w.Y) / frame.CellSize
			if d > truncCells {
				d = truncCells
			} else if d < -truncCells {
				d = -truncCells
			}
			g.Set(c, d)
		}
	}
	return g, field.Gradient(g), frame, nil
}

// CenterOfMass returns the centroid, in grid coordinates, of all cells
// inside the surface (negative samples). It is presentation-only data;
// the contact search never consumes it. The zero vector means the grid
// contains no inside cells.
func CenterOfMass(g *field.Grid) field.Vec2 {
	var sum field.Vec2
	count := 0
	for x := 1; x <= g.Dim(); x++ {
		for y := 1; y <= g.Dim(); y++ {
			c := field.Cell{X: x, Y: y}
			if g.At(c) < 0 {
				sum = sum.Add(c.Vec2())
				count++
			}
		}
	}
	if count == 0 {
		return field.Vec2{}
	}
	return sum.Scale(1 / float64(count))
}

// GridLines converts the plan's world-coordinate grasp lines into the
// grid coordinates of a sampling frame, ready for the contact finder.
func (p *Plan) GridLines(f Frame) []field.Vec2 {
	out := make([]field.Vec2, len(p.Lines))
	for i, w := range p.Lines {
		out[i] = f.ToGrid(w)
	}
	return out
}
