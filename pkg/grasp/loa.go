package grasp

import (
	"github.com/seagrove/graspkit/pkg/field"
)

// LineOfAction discretizes the segment from start to end into grid
// cells at unit arc-length steps. The walk samples at t = 0, 1, 2, ...
// strictly below the segment length, so the start point is always
// included and the end point never is. Each continuous position rounds
// half-away-from-zero to the nearest cell.
//
// A zero-length segment has no direction and yields no samples.
func LineOfAction(start, end field.Vec2) []field.Cell {
	delta := end.Sub(start)
	length := delta.Norm()
	if length == 0 {
		return nil
	}
	dir := delta.Scale(1 / length)

	cells := make([]field.Cell, 0, int(length)+1)
	for t := 0.0; t < length; t++ {
		cells = append(cells, start.Add(dir.Scale(t)).Round())
	}
	return cells
}
