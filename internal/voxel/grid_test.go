package voxel

import (
	"testing"

	"github.com/boatbomber/CullThrottle/internal/handle"
)

func TestFloorKeyNegativeCoordinates(t *testing.T) {
	k := FloorKey(-0.5, -10.1, 9.9, 10)
	want := Key{I: -1, J: -2, K: 0}
	if k != want {
		t.Fatalf("FloorKey(-0.5,-10.1,9.9,10) = %+v, want %+v", k, want)
	}
}

func TestGridInsertRemoveSwapWithLast(t *testing.T) {
	g := New()
	k := Key{I: 1, J: 2, K: 3}
	g.Insert(k, handle.Handle(1))
	g.Insert(k, handle.Handle(2))
	g.Insert(k, handle.Handle(3))

	g.Remove(k, handle.Handle(2))
	occupants := g.At(k)
	if len(occupants) != 2 {
		t.Fatalf("len(occupants) = %d, want 2", len(occupants))
	}
	for _, h := range occupants {
		if h == 2 {
			t.Fatalf("handle 2 still present after Remove")
		}
	}
}

func TestGridRemoveEmptiesVoxel(t *testing.T) {
	g := New()
	k := Key{I: 0, J: 0, K: 0}
	g.Insert(k, handle.Handle(1))
	g.Remove(k, handle.Handle(1))
	if g.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after removing the only occupant", g.Len())
	}
	if occupants := g.At(k); occupants != nil {
		t.Fatalf("At(k) = %v, want nil", occupants)
	}
}

func TestGridRemoveMissingIsNoop(t *testing.T) {
	g := New()
	g.Remove(Key{}, handle.Handle(99)) // must not panic
}

func TestGridResetPreservesPointerIdentity(t *testing.T) {
	g := New()
	g.Insert(Key{I: 1}, handle.Handle(1))
	g.Reset()
	if g.Len() != 0 {
		t.Fatalf("Len() = %d after Reset, want 0", g.Len())
	}
	g.Insert(Key{I: 2}, handle.Handle(2))
	if len(g.At(Key{I: 2})) != 1 {
		t.Fatalf("grid not usable after Reset")
	}
}

func TestKeyManhattan(t *testing.T) {
	a := Key{I: 0, J: 0, K: 0}
	b := Key{I: 3, J: -2, K: 1}
	if got := a.Manhattan(b); got != 6 {
		t.Fatalf("Manhattan = %d, want 6", got)
	}
}
