// Package sdfx builds scene.Surface values on top of the
// github.com/deadsy/sdfx SDF-based CAD library. Scenes are composed
// from 2D primitives and boolean operations, then sampled onto the
// grasp analysis grid by the scene package.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/seagrove/graspkit/pkg/field"
	"github.com/seagrove/graspkit/pkg/scene"
)

// Compile-time interface check.
var _ scene.Surface = (*sdfSurface)(nil)

// sdfSurface wraps an sdf.SDF2 to implement scene.Surface.
type sdfSurface struct {
	s sdf.SDF2
}

// Distance returns the signed distance from (x, y) to the surface.
func (s *sdfSurface) Distance(x, y float64) float64 {
	return s.s.Evaluate(v2.Vec{X: x, Y: y})
}

// Bounds returns the axis-aligned bounding box.
func (s *sdfSurface) Bounds() (min, max field.Vec2) {
	bb := s.s.BoundingBox()
	min = field.Vec2{X: bb.Min.X, Y: bb.Min.Y}
	max = field.Vec2{X: bb.Max.X, Y: bb.Max.Y}
	return min, max
}

// unwrap extracts the underlying sdf.SDF2 from a scene.Surface.
func unwrap(s scene.Surface) sdf.SDF2 {
	return s.(*sdfSurface).s
}

// wrap creates a scene.Surface from an sdf.SDF2.
func wrap(s sdf.SDF2) scene.Surface {
	return &sdfSurface{s: s}
}

// Circle creates a circle of the given radius centered at the origin.
func Circle(radius float64) scene.Surface {
	s, err := sdf.Circle2D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Circle2D: %v", err))
	}
	return wrap(s)
}

// Box creates a w x h rectangle centered at the origin.
func Box(w, h float64) scene.Surface {
	return wrap(sdf.Box2D(v2.Vec{X: w, Y: h}, 0))
}

// Polygon creates a closed polygon from its vertices, wound
// counter-clockwise.
func Polygon(pts []field.Vec2) scene.Surface {
	vs := make([]v2.Vec, len(pts))
	for i, p := range pts {
		vs[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	s, err := sdf.Polygon2D(vs)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Polygon2D: %v", err))
	}
	return wrap(s)
}

// Union returns the union of the given surfaces.
func Union(surfaces ...scene.Surface) scene.Surface {
	ss := make([]sdf.SDF2, len(surfaces))
	for i, s := range surfaces {
		ss[i] = unwrap(s)
	}
	return wrap(sdf.Union2D(ss...))
}

// Difference returns a - b.
func Difference(a, b scene.Surface) scene.Surface {
	return wrap(sdf.Difference2D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two surfaces.
func Intersection(a, b scene.Surface) scene.Surface {
	return wrap(sdf.Intersect2D(unwrap(a), unwrap(b)))
}

// Translate moves a surface by (x, y).
func Translate(s scene.Surface, x, y float64) scene.Surface {
	m := sdf.Translate2d(v2.Vec{X: x, Y: y})
	return wrap(sdf.Transform2D(unwrap(s), m))
}

// Rotate rotates a surface about the origin by an angle in degrees.
func Rotate(s scene.Surface, degrees float64) scene.Surface {
	m := sdf.Rotate2d(degrees * math.Pi / 180.0)
	return wrap(sdf.Transform2D(unwrap(s), m))
}
