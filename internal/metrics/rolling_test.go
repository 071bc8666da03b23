package metrics

import "testing"

func TestRollingMeanWindow(t *testing.T) {
	r := NewRollingMean(3)
	r.Push(1)
	r.Push(2)
	r.Push(3)
	if got := r.Mean(); got != 2 {
		t.Fatalf("Mean() = %v, want 2", got)
	}
	r.Push(9) // evicts the 1
	if got := r.Mean(); got != (2.0+3.0+9.0)/3.0 {
		t.Fatalf("Mean() = %v, want %v", got, (2.0+3.0+9.0)/3.0)
	}
}

func TestRollingMeanEmpty(t *testing.T) {
	r := NewRollingMean(4)
	if got := r.Mean(); got != 0 {
		t.Fatalf("Mean() on empty window = %v, want 0", got)
	}
}

func TestRollingMeanDefaultsWindowSize(t *testing.T) {
	r := NewRollingMean(0)
	if len(r.window) != 4 {
		t.Fatalf("len(window) = %d, want 4 for a non-positive request", len(r.window))
	}
}

func TestRollingMeanReset(t *testing.T) {
	r := NewRollingMean(2)
	r.Push(5)
	r.Push(5)
	r.Reset()
	if got := r.Mean(); got != 0 {
		t.Fatalf("Mean() after Reset = %v, want 0", got)
	}
}
