// Package metrics provides small aggregates for training telemetry.
package metrics

import "math"

// Window is a fixed-size sliding window over float64 samples. Training
// loops use it to smooth per-batch loss before logging.
type Window struct {
	vals []float64
	idx  int
	n    int
}

// NewWindow returns a window holding up to size samples.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = 1
	}
	return &Window{vals: make([]float64, size)}
}

// Add inserts a sample, evicting the oldest once the window is full.
func (w *Window) Add(v float64) {
	w.vals[w.idx] = v
	w.idx = (w.idx + 1) % len(w.vals)
	if w.n < len(w.vals) {
		w.n++
	}
}

// Count returns the number of samples currently held.
func (w *Window) Count() int { return w.n }

// Mean returns the average of the held samples, or NaN when empty.
func (w *Window) Mean() float64 {
	if w.n == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range w.vals[:w.n] {
		sum += v
	}
	return sum / float64(w.n)
}

// Reset drops all samples.
func (w *Window) Reset() {
	w.idx, w.n = 0, 0
}

// Counter accumulates a total and a count, for dataset-wide averages.
type Counter struct {
	sum float64
	n   int
}

// Add folds in a sample.
func (c *Counter) Add(v float64) {
	c.sum += v
	c.n++
}

// AddN folds in a pre-aggregated sum of n samples.
func (c *Counter) AddN(sum float64, n int) {
	c.sum += sum
	c.n += n
}

// Mean returns the running average, or NaN when empty.
func (c *Counter) Mean() float64 {
	if c.n == 0 {
		return math.NaN()
	}
	return c.sum / float64(c.n)
}

// Count returns the number of samples folded in.
func (c *Counter) Count() int { return c.n }
