// Package grasp finds gripper contact points on a sampled signed
// distance field. Each candidate contact is a line of action walked
// from its start point until it crosses the zero level-set of the
// field; the crossing cell and the field normal there form the
// contact.
package grasp

import (
	"errors"
	"fmt"
	"math"

	"github.com/seagrove/graspkit/pkg/field"
)

// ErrInvalidInput wraps all argument validation failures.
var ErrInvalidInput = errors.New("grasp: invalid input")

// RequiredContacts is the number of contacts that must resolve for a
// grasp to be valid. A parallel-jaw gripper needs exactly two opposing
// contacts; candidate lines beyond the first two never affect the
// validity verdict.
const RequiredContacts = 2

// noSignalTSDF seeds the previous-value chain when the first sample of
// a line lies outside the grid. It must exceed any real truncated
// field magnitude so that its sign is deterministically positive and
// it can never satisfy a sane threshold on its own.
const noSignalTSDF = 10.0

// Result holds the outcome of a contact search.
type Result struct {
	// Contacts has one cell per candidate line. The zero cell means
	// no crossing was found within grid bounds.
	Contacts []field.Cell
	// Normals holds the normal-field vector at each recorded contact,
	// zero where no contact was found.
	Normals []field.Vec2
	// Bad is true when either of the first RequiredContacts contacts
	// failed to resolve.
	Bad bool
}

// FindContactPoints walks one line of action per contact pair and
// records the first cell where the field magnitude falls within
// threshold of zero or the field changes sign. pairs holds 2*n points
// grouped (start_k, end_k); threshold is the non-negative surface
// tolerance.
//
// Out-of-range geometry is not an error: samples outside the grid are
// skipped for value purposes and the last in-bounds value carries
// forward. The only caller-visible failure signal for a line is the
// zero-cell sentinel and, for the required contacts, Result.Bad.
func FindContactPoints(pairs []field.Vec2, n int, tsdf *field.Grid, normals *field.NormalField, threshold float64, opts ...Option) (*Result, error) {
	if len(pairs) != 2*n {
		return nil, fmt.Errorf("%w: %d contact pairs for %d contacts", ErrInvalidInput, len(pairs), n)
	}
	if n < RequiredContacts {
		return nil, fmt.Errorf("%w: need at least %d contacts, got %d", ErrInvalidInput, RequiredContacts, n)
	}
	if threshold < 0 {
		return nil, fmt.Errorf("%w: negative threshold %v", ErrInvalidInput, threshold)
	}
	if tsdf == nil || normals == nil {
		return nil, fmt.Errorf("%w: nil field", ErrInvalidInput)
	}
	if normals.Dim() != tsdf.Dim() {
		return nil, fmt.Errorf("%w: normal field dim %d != grid dim %d", ErrInvalidInput, normals.Dim(), tsdf.Dim())
	}

	var cfg config
	cfg.tracer = nopTracer{}
	for _, opt := range opts {
		opt(&cfg)
	}

	res := &Result{
		Contacts: make([]field.Cell, n),
		Normals:  make([]field.Vec2, n),
	}

	for k := 0; k < n; k++ {
		start := pairs[2*k]
		end := pairs[2*k+1]
		loa := LineOfAction(start, end)

		cell, normal, found := walkLine(loa, tsdf, normals, threshold, k, cfg.tracer)
		if found {
			res.Contacts[k] = cell
			res.Normals[k] = normal
		}
	}

	for k := 0; k < RequiredContacts; k++ {
		if res.Contacts[k].IsZero() {
			res.Bad = true
		}
	}
	return res, nil
}

// FindContactPointsSamples is FindContactPoints for callers holding
// raw flat sample arrays instead of constructed grids. The TSDF and
// normal component slices must all reshape to the same square
// dimension.
func FindContactPointsSamples(pairs []field.Vec2, n int, tsdfSamples, normXSamples, normYSamples []float64, threshold float64, opts ...Option) (*Result, error) {
	tsdf, err := field.FromSamples(tsdfSamples)
	if err != nil {
		return nil, fmt.Errorf("%w: tsdf: %v", ErrInvalidInput, err)
	}
	normals, err := field.NormalsFromSamples(normXSamples, normYSamples)
	if err != nil {
		return nil, fmt.Errorf("%w: normals: %v", ErrInvalidInput, err)
	}
	return FindContactPoints(pairs, n, tsdf, normals, threshold, opts...)
}

// walkLine scans a discretized line for the first zero crossing.
func walkLine(loa []field.Cell, tsdf *field.Grid, normals *field.NormalField, threshold float64, index int, tr Tracer) (field.Cell, field.Vec2, bool) {
	if len(loa) == 0 {
		return field.Cell{}, field.Vec2{}, false
	}

	// Seed the sign chain from the first sample; without sign
	// information the sentinel keeps the chain deterministically
	// positive.
	prev := noSignalTSDF
	if tsdf.InBounds(loa[0]) {
		prev = tsdf.At(loa[0])
	}

	for _, c := range loa {
		// Out-of-bounds samples carry the previous value unchanged
		// and never trigger a stop themselves.
		if !tsdf.InBounds(c) {
			tr.Step(index, c, prev)
			continue
		}
		val := tsdf.At(c)
		tr.Step(index, c, val)

		onSurface := math.Abs(val) <= threshold
		crossed := val*prev < 0
		if onSurface || crossed {
			normal := normals.At(c)
			tr.Contact(index, c, normal)
			return c, normal, true
		}
		prev = val
	}
	return field.Cell{}, field.Vec2{}, false
}
