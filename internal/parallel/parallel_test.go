package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversRange(t *testing.T) {
	cfgs := map[string]Config{
		"sequential": {Enabled: false},
		"parallel":   {Enabled: true, NumWorkers: 4, MinChunkSize: 8},
	}
	for name, cfg := range cfgs {
		t.Run(name, func(t *testing.T) {
			const n = 1000
			var hits [n]atomic.Int32
			For(n, cfg, func(i int) {
				hits[i].Add(1)
			})
			for i := range hits {
				if got := hits[i].Load(); got != 1 {
					t.Fatalf("index %d visited %d times", i, got)
				}
			}
		})
	}
}

func TestForSmallStaysSequential(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 100}
	order := make([]int, 0, 10)
	For(10, cfg, func(i int) {
		order = append(order, i) // safe only if sequential
	})
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d, want in-order sequential run", i, v)
		}
	}
	if len(order) != 10 {
		t.Fatalf("visited %d of 10", len(order))
	}
}

func TestForRangeDisjoint(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 4}
	const n = 100
	var hits [n]atomic.Int32
	var total atomic.Int64
	ForRange(n, cfg, func(start, end int) {
		if start >= end {
			t.Errorf("empty range [%d, %d)", start, end)
		}
		total.Add(int64(end - start))
		for i := start; i < end; i++ {
			hits[i].Add(1)
		}
	})
	if total.Load() != n {
		t.Fatalf("ranges cover %d items, want %d", total.Load(), n)
	}
	for i := range hits {
		if got := hits[i].Load(); got != 1 {
			t.Fatalf("index %d covered %d times", i, got)
		}
	}
}

func TestForRangeZero(t *testing.T) {
	called := 0
	ForRange(0, Config{Enabled: false}, func(start, end int) {
		called++
		if start != 0 || end != 0 {
			t.Fatalf("range [%d, %d), want [0, 0)", start, end)
		}
	})
	if called != 1 {
		t.Fatalf("called %d times, want 1", called)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.NumWorkers < 1 {
		t.Fatalf("NumWorkers = %d", cfg.NumWorkers)
	}
	if cfg.MinChunkSize < 1 {
		t.Fatalf("MinChunkSize = %d", cfg.MinChunkSize)
	}
}
