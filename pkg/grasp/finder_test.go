package grasp

import (
	"errors"
	"testing"

	"github.com/seagrove/graspkit/pkg/field"
)

// testField builds a dim x dim grid filled with fill, plus a normal
// field whose vectors encode the cell coordinates so tests can verify
// that the normal comes from the contact cell.
func testField(t *testing.T, dim int, fill float64) (*field.Grid, *field.NormalField) {
	t.Helper()
	g := field.NewGrid(dim)
	nx := field.NewGrid(dim)
	ny := field.NewGrid(dim)
	for x := 1; x <= dim; x++ {
		for y := 1; y <= dim; y++ {
			c := field.Cell{X: x, Y: y}
			g.Set(c, fill)
			nx.Set(c, float64(x))
			ny.Set(c, float64(y))
		}
	}
	return g, &field.NormalField{X: nx, Y: ny}
}

// setColumn writes vals down the column at the given x, starting at y=1.
func setColumn(g *field.Grid, x int, vals []float64) {
	for i, v := range vals {
		g.Set(field.Cell{X: x, Y: i + 1}, v)
	}
}

// vertical returns a contact pair walking the column at x from y=1 to y=end.
func vertical(x int, end float64) [2]field.Vec2 {
	fx := float64(x)
	return [2]field.Vec2{{X: fx, Y: 1}, {X: fx, Y: end}}
}

func TestSignCrossing(t *testing.T) {
	g, n := testField(t, 6, 5)
	setColumn(g, 2, []float64{2, 1, -1, -3})
	setColumn(g, 4, []float64{2, 1, -1, -3})

	p1 := vertical(2, 6)
	p2 := vertical(4, 6)
	pairs := []field.Vec2{p1[0], p1[1], p2[0], p2[1]}

	res, err := FindContactPoints(pairs, 2, g, n, 0)
	if err != nil {
		t.Fatalf("FindContactPoints failed: %v", err)
	}
	// The first negative value sits at the 3rd sample, not the 4th.
	want := field.Cell{X: 2, Y: 3}
	if res.Contacts[0] != want {
		t.Errorf("contact 0 = %v, want %v", res.Contacts[0], want)
	}
	if res.Contacts[1] != (field.Cell{X: 4, Y: 3}) {
		t.Errorf("contact 1 = %v, want (4,3)", res.Contacts[1])
	}
	if res.Bad {
		t.Error("Bad = true for a resolved grasp")
	}
	// Normal comes from the contact cell.
	if res.Normals[0] != (field.Vec2{X: 2, Y: 3}) {
		t.Errorf("normal 0 = %v, want (2,3)", res.Normals[0])
	}
}

func TestThresholdDetection(t *testing.T) {
	g, n := testField(t, 6, 5)
	// No sign change anywhere, but the 2nd sample is within tolerance.
	setColumn(g, 2, []float64{2, 0.05, 2})
	setColumn(g, 4, []float64{2, 0.05, 2})

	p1 := vertical(2, 4)
	p2 := vertical(4, 4)
	pairs := []field.Vec2{p1[0], p1[1], p2[0], p2[1]}

	res, err := FindContactPoints(pairs, 2, g, n, 0.1)
	if err != nil {
		t.Fatalf("FindContactPoints failed: %v", err)
	}
	if res.Contacts[0] != (field.Cell{X: 2, Y: 2}) {
		t.Errorf("contact 0 = %v, want (2,2)", res.Contacts[0])
	}
}

func TestZeroAtStart(t *testing.T) {
	g, n := testField(t, 4, 5)
	g.Set(field.Cell{X: 2, Y: 1}, 0)
	g.Set(field.Cell{X: 3, Y: 1}, 0)

	pairs := []field.Vec2{
		{X: 2, Y: 1}, {X: 2, Y: 4},
		{X: 3, Y: 1}, {X: 3, Y: 4},
	}
	// A field value of exactly zero is on the surface for any
	// non-negative threshold, including zero.
	res, err := FindContactPoints(pairs, 2, g, n, 0)
	if err != nil {
		t.Fatalf("FindContactPoints failed: %v", err)
	}
	if res.Contacts[0] != (field.Cell{X: 2, Y: 1}) {
		t.Errorf("contact 0 = %v, want the start sample (2,1)", res.Contacts[0])
	}
}

func TestLineFullyOutsideGrid(t *testing.T) {
	g, n := testField(t, 4, 5)
	setColumn(g, 2, []float64{2, -2})

	pairs := []field.Vec2{
		{X: 20, Y: 20}, {X: 20, Y: 30}, // never enters the grid
		{X: 2, Y: 1}, {X: 2, Y: 4},
	}
	res, err := FindContactPoints(pairs, 2, g, n, 0)
	if err != nil {
		t.Fatalf("FindContactPoints failed: %v", err)
	}
	if !res.Contacts[0].IsZero() {
		t.Errorf("contact 0 = %v, want zero cell", res.Contacts[0])
	}
	if !res.Bad {
		t.Error("Bad = false although a required contact is unresolved")
	}
}

func TestSentinelSeedsOutOfBoundsStart(t *testing.T) {
	g, n := testField(t, 4, 5)
	// The line starts below the grid; the first in-bounds sample is
	// negative, which must register as a sign change against the
	// positive sentinel.
	setColumn(g, 2, []float64{-1, -1, -1, -1})

	pairs := []field.Vec2{
		{X: 2, Y: -2}, {X: 2, Y: 4},
		{X: 2, Y: -2}, {X: 2, Y: 4},
	}
	res, err := FindContactPoints(pairs, 2, g, n, 0)
	if err != nil {
		t.Fatalf("FindContactPoints failed: %v", err)
	}
	if res.Contacts[0] != (field.Cell{X: 2, Y: 1}) {
		t.Errorf("contact 0 = %v, want first in-bounds cell (2,1)", res.Contacts[0])
	}
}

func TestNoCrossingLeavesZero(t *testing.T) {
	g, n := testField(t, 4, 5) // uniformly positive field
	pairs := []field.Vec2{
		{X: 1, Y: 1}, {X: 1, Y: 4},
		{X: 2, Y: 1}, {X: 2, Y: 4},
	}
	res, err := FindContactPoints(pairs, 2, g, n, 0)
	if err != nil {
		t.Fatalf("FindContactPoints failed: %v", err)
	}
	for k, c := range res.Contacts {
		if !c.IsZero() {
			t.Errorf("contact %d = %v, want zero cell", k, c)
		}
	}
	if !res.Bad {
		t.Error("Bad = false although no contacts resolved")
	}
}

func TestThirdContactDoesNotAffectBad(t *testing.T) {
	g, n := testField(t, 6, 5)
	setColumn(g, 2, []float64{2, -2})
	setColumn(g, 3, []float64{2, -2})
	// Column 5 stays positive: the third line finds nothing.

	pairs := []field.Vec2{
		{X: 2, Y: 1}, {X: 2, Y: 5},
		{X: 3, Y: 1}, {X: 3, Y: 5},
		{X: 5, Y: 1}, {X: 5, Y: 5},
	}
	res, err := FindContactPoints(pairs, 3, g, n, 0)
	if err != nil {
		t.Fatalf("FindContactPoints failed: %v", err)
	}
	if !res.Contacts[2].IsZero() {
		t.Errorf("contact 2 = %v, want zero cell", res.Contacts[2])
	}
	if res.Bad {
		t.Error("Bad = true although both required contacts resolved")
	}
}

func TestInvalidInputs(t *testing.T) {
	g, n := testField(t, 4, 5)
	good := []field.Vec2{
		{X: 1, Y: 1}, {X: 1, Y: 4},
		{X: 2, Y: 1}, {X: 2, Y: 4},
	}

	cases := []struct {
		name      string
		pairs     []field.Vec2
		n         int
		threshold float64
	}{
		{"pair count mismatch", good[:3], 2, 0},
		{"too few contacts", good[:2], 1, 0},
		{"negative threshold", good, 2, -0.5},
	}
	for _, tc := range cases {
		_, err := FindContactPoints(tc.pairs, tc.n, g, n, tc.threshold)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: got %v, want ErrInvalidInput", tc.name, err)
		}
	}

	// Mismatched normal field dimension.
	_, bigNormals := testField(t, 6, 5)
	if _, err := FindContactPoints(good, 2, g, bigNormals, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("dim mismatch: got %v, want ErrInvalidInput", err)
	}
}

func TestFindContactPointsSamples(t *testing.T) {
	// 3x3 grid with a sign change down the middle column.
	tsdf := []float64{
		5, 2, 5,
		5, -2, 5,
		5, -2, 5,
	}
	zeros := make([]float64, 9)
	ones := make([]float64, 9)
	for i := range ones {
		ones[i] = 1
	}

	pairs := []field.Vec2{
		{X: 1, Y: 2}, {X: 3, Y: 2},
		{X: 1, Y: 2}, {X: 3, Y: 2},
	}
	res, err := FindContactPointsSamples(pairs, 2, tsdf, ones, zeros, 0)
	if err != nil {
		t.Fatalf("FindContactPointsSamples failed: %v", err)
	}
	if res.Bad {
		t.Error("Bad = true for a resolved grasp")
	}
	if res.Contacts[0] != (field.Cell{X: 2, Y: 2}) {
		t.Errorf("contact 0 = %v, want (2,2)", res.Contacts[0])
	}
	if res.Normals[0] != (field.Vec2{X: 1}) {
		t.Errorf("normal 0 = %v, want (1,0)", res.Normals[0])
	}

	// Non-square sample counts fail fast.
	if _, err := FindContactPointsSamples(pairs, 2, tsdf[:8], ones[:8], zeros[:8], 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("non-square samples: got %v, want ErrInvalidInput", err)
	}
}

// recordingTracer captures tracer callbacks for inspection.
type recordingTracer struct {
	steps    int
	contacts []field.Cell
}

func (r *recordingTracer) Step(int, field.Cell, float64) { r.steps++ }
func (r *recordingTracer) Contact(_ int, c field.Cell, _ field.Vec2) {
	r.contacts = append(r.contacts, c)
}

func TestTracerObservesSearch(t *testing.T) {
	g, n := testField(t, 4, 5)
	setColumn(g, 2, []float64{2, -2})
	setColumn(g, 3, []float64{2, -2})

	pairs := []field.Vec2{
		{X: 2, Y: 1}, {X: 2, Y: 4},
		{X: 3, Y: 1}, {X: 3, Y: 4},
	}
	tr := &recordingTracer{}
	res, err := FindContactPoints(pairs, 2, g, n, 0, WithTracer(tr))
	if err != nil {
		t.Fatalf("FindContactPoints failed: %v", err)
	}
	if tr.steps == 0 {
		t.Error("tracer saw no steps")
	}
	if len(tr.contacts) != 2 {
		t.Fatalf("tracer saw %d contacts, want 2", len(tr.contacts))
	}
	if tr.contacts[0] != res.Contacts[0] {
		t.Errorf("tracer contact %v != result contact %v", tr.contacts[0], res.Contacts[0])
	}
}
