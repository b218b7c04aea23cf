// Package viz renders grasp analysis results as images. It is a
// presentation side channel only: it consumes the sampled field and
// the finder's results and never feeds anything back into the search.
package viz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/seagrove/graspkit/pkg/field"
	"github.com/seagrove/graspkit/pkg/grasp"
)

// heatGrid adapts a field.Grid to plotter.GridXYZ. Plot x maps to
// cell X and plot y to cell Y, matching the finder's coordinates.
type heatGrid struct {
	g *field.Grid
}

func (h heatGrid) Dims() (c, r int)   { return h.g.Dim(), h.g.Dim() }
func (h heatGrid) X(c int) float64    { return float64(c + 1) }
func (h heatGrid) Y(r int) float64    { return float64(r + 1) }
func (h heatGrid) Z(c, r int) float64 { return h.g.At(field.Cell{X: c + 1, Y: r + 1}) }

// Render draws the TSDF as a heat map with the candidate lines of
// action, the recorded contact points, and the center of mass overlaid,
// and saves the result as a PNG.
//
// pairs are the grid-coordinate line endpoints handed to the finder;
// com is presentation-only and skipped when zero.
func Render(title string, g *field.Grid, pairs []field.Vec2, res *grasp.Result, com field.Vec2, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (cells)"
	p.Y.Label.Text = "y (cells)"

	hm := plotter.NewHeatMap(heatGrid{g: g}, palette.Heat(16, 1))
	p.Add(hm)

	for i := 0; i+1 < len(pairs); i += 2 {
		line, err := plotter.NewLine(plotter.XYs{
			{X: pairs[i].X, Y: pairs[i].Y},
			{X: pairs[i+1].X, Y: pairs[i+1].Y},
		})
		if err != nil {
			return fmt.Errorf("viz: line %d: %w", i/2, err)
		}
		line.Color = color.RGBA{B: 255, A: 255}
		p.Add(line)
	}

	if res != nil {
		pts := make(plotter.XYs, 0, len(res.Contacts))
		for _, c := range res.Contacts {
			if c.IsZero() {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(c.X), Y: float64(c.Y)})
		}
		if len(pts) > 0 {
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return fmt.Errorf("viz: contacts: %w", err)
			}
			sc.GlyphStyle.Color = color.RGBA{G: 200, A: 255}
			sc.GlyphStyle.Radius = vg.Points(4)
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(sc)
		}
	}

	if !(com == field.Vec2{}) {
		mark, err := plotter.NewScatter(plotter.XYs{{X: com.X, Y: com.Y}})
		if err != nil {
			return fmt.Errorf("viz: center of mass: %w", err)
		}
		mark.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
		mark.GlyphStyle.Radius = vg.Points(5)
		mark.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(mark)
	}

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("viz: save %s: %w", path, err)
	}
	return nil
}
