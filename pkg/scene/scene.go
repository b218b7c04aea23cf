// Package scene defines the scene description produced by script
// evaluation: an implicit 2D surface, the candidate grasp lines aimed
// at it, and the grid resolution to sample it at. It also rasterizes
// surfaces into the sampled fields the contact finder consumes.
package scene

import (
	"errors"
	"fmt"

	"github.com/seagrove/graspkit/pkg/field"
)

// Surface is an implicit 2D shape: a signed distance to the nearest
// boundary, negative inside.
type Surface interface {
	// Distance returns the signed distance from (x, y) to the surface.
	Distance(x, y float64) float64
	// Bounds returns an axis-aligned box containing the surface.
	Bounds() (min, max field.Vec2)
}

// Default grid parameters used when a scene script does not configure
// its own.
const (
	DefaultDim        = 64
	DefaultTruncation = 4.0
	DefaultThreshold  = 0.0
)

// GridSpec configures surface sampling.
type GridSpec struct {
	// Dim is the grid edge length in cells.
	Dim int
	// Truncation clamps sampled distances to [-Truncation, Truncation],
	// in world units. It also pads the sampling frame so the zero
	// level-set stays interior to the grid.
	Truncation float64
	// Threshold is the surface tolerance handed to the contact finder.
	Threshold float64
}

// DefaultGridSpec returns the grid parameters used when a script does
// not set its own.
func DefaultGridSpec() GridSpec {
	return GridSpec{Dim: DefaultDim, Truncation: DefaultTruncation, Threshold: DefaultThreshold}
}

// ErrInvalidPlan wraps all plan validation failures.
var ErrInvalidPlan = errors.New("scene: invalid plan")

// Plan is the complete output of evaluating a scene script: what to
// sample and which grasp lines to test against it. Plans are built
// once per evaluation and never mutated afterwards.
type Plan struct {
	// Name labels the scene in output and persisted results.
	Name string
	// Surface is the object under test.
	Surface Surface
	// Lines holds 2*k world-coordinate points, grouped consecutively
	// as (start, end) per candidate grasp line.
	Lines []field.Vec2
	// Grid configures sampling.
	Grid GridSpec
}

// Contacts returns the number of candidate grasp lines in the plan.
func (p *Plan) Contacts() int { return len(p.Lines) / 2 }

// Validate checks the structural invariants a plan must satisfy before
// rasterization.
func (p *Plan) Validate() error {
	if p.Surface == nil {
		return fmt.Errorf("%w: no shape declared", ErrInvalidPlan)
	}
	if len(p.Lines)%2 != 0 {
		return fmt.Errorf("%w: odd grasp line point count %d", ErrInvalidPlan, len(p.Lines))
	}
	if p.Contacts() < 2 {
		return fmt.Errorf("%w: %d grasp lines declared, need at least 2", ErrInvalidPlan, p.Contacts())
	}
	if p.Grid.Dim < 2 {
		return fmt.Errorf("%w: grid dim %d", ErrInvalidPlan, p.Grid.Dim)
	}
	if p.Grid.Truncation <= 0 {
		return fmt.Errorf("%w: truncation %v", ErrInvalidPlan, p.Grid.Truncation)
	}
	if p.Grid.Threshold < 0 {
		return fmt.Errorf("%w: negative threshold %v", ErrInvalidPlan, p.Grid.Threshold)
	}
	return nil
}
