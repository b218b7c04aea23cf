package store

import (
	"path/filepath"
	"testing"

	"github.com/seagrove/graspkit/pkg/field"
	"github.com/seagrove/graspkit/pkg/grasp"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndReadRun(t *testing.T) {
	s := openTestStore(t)

	res := &grasp.Result{
		Contacts: []field.Cell{{X: 6, Y: 8}, {X: 10, Y: 8}, {}},
		Normals:  []field.Vec2{{X: 1}, {X: -1}, {}},
		Bad:      false,
	}
	id, err := s.RecordRun("pipe-connector", 64, 0.1, res)
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if id == "" {
		t.Fatal("empty run id")
	}

	runs, err := s.Runs()
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != id || r.Scene != "pipe-connector" || r.GridDim != 64 || r.Threshold != 0.1 || r.Bad {
		t.Errorf("unexpected run: %+v", r)
	}

	contacts, err := s.Contacts(id)
	if err != nil {
		t.Fatalf("Contacts failed: %v", err)
	}
	if len(contacts) != 3 {
		t.Fatalf("got %d contacts, want 3", len(contacts))
	}
	if contacts[0].Cell != (field.Cell{X: 6, Y: 8}) || !contacts[0].Found {
		t.Errorf("contact 0: %+v", contacts[0])
	}
	if contacts[1].Normal != (field.Vec2{X: -1}) {
		t.Errorf("contact 1 normal: %+v", contacts[1].Normal)
	}
	// The unresolved third contact round-trips as not found.
	if contacts[2].Found {
		t.Errorf("contact 2 marked found: %+v", contacts[2])
	}
}

func TestRecordBadRun(t *testing.T) {
	s := openTestStore(t)

	res := &grasp.Result{
		Contacts: []field.Cell{{}, {}},
		Normals:  []field.Vec2{{}, {}},
		Bad:      true,
	}
	id, err := s.RecordRun("unreachable", 32, 0, res)
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := s.Runs()
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || !runs[0].Bad {
		t.Fatalf("bad flag not persisted: %+v", runs)
	}

	contacts, err := s.Contacts(id)
	if err != nil {
		t.Fatalf("Contacts failed: %v", err)
	}
	for _, c := range contacts {
		if c.Found {
			t.Errorf("contact %d marked found for a bad run", c.Index)
		}
	}
}

func TestContactsUnknownRun(t *testing.T) {
	s := openTestStore(t)
	contacts, err := s.Contacts("no-such-run")
	if err != nil {
		t.Fatalf("Contacts failed: %v", err)
	}
	if len(contacts) != 0 {
		t.Errorf("got %d contacts for unknown run", len(contacts))
	}
}
