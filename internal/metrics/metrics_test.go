package metrics

import (
	"math"
	"testing"
)

func TestWindowMean(t *testing.T) {
	w := NewWindow(3)
	if !math.IsNaN(w.Mean()) {
		t.Fatalf("empty window mean = %v, want NaN", w.Mean())
	}

	w.Add(1)
	w.Add(2)
	if got := w.Mean(); got != 1.5 {
		t.Fatalf("mean = %v, want 1.5", got)
	}
	if w.Count() != 2 {
		t.Fatalf("count = %d, want 2", w.Count())
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{1, 2, 3, 10} {
		w.Add(v)
	}
	// 1 has been evicted; window holds 2, 3, 10.
	if got := w.Mean(); got != 5 {
		t.Fatalf("mean = %v, want 5", got)
	}
	if w.Count() != 3 {
		t.Fatalf("count = %d, want 3", w.Count())
	}
}

func TestWindowReset(t *testing.T) {
	w := NewWindow(4)
	w.Add(7)
	w.Reset()
	if w.Count() != 0 || !math.IsNaN(w.Mean()) {
		t.Fatalf("reset window: count=%d mean=%v", w.Count(), w.Mean())
	}
	w.Add(2)
	if got := w.Mean(); got != 2 {
		t.Fatalf("mean after reset = %v, want 2", got)
	}
}

func TestWindowClampsSize(t *testing.T) {
	w := NewWindow(0)
	w.Add(3)
	w.Add(9)
	if got := w.Mean(); got != 9 {
		t.Fatalf("size-1 window mean = %v, want 9", got)
	}
}

func TestCounter(t *testing.T) {
	var c Counter
	if !math.IsNaN(c.Mean()) {
		t.Fatalf("empty counter mean = %v, want NaN", c.Mean())
	}

	c.Add(1)
	c.Add(3)
	c.AddN(12, 2)
	if c.Count() != 4 {
		t.Fatalf("count = %d, want 4", c.Count())
	}
	if got := c.Mean(); got != 4 {
		t.Fatalf("mean = %v, want 4", got)
	}
}
