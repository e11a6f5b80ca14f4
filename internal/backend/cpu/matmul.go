package cpu

import (
	"fmt"

	"github.com/mintml/mint/internal/parallel"
	"github.com/mintml/mint/internal/tensor"
)

// MatMul computes the product of two 2-D tensors [m,k] x [k,n] -> [m,n].
func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	xs, ys := x.Shape(), y.Shape()
	if len(xs) != 2 || len(ys) != 2 {
		panic(fmt.Sprintf("matmul: want 2-D operands, got %v x %v", xs, ys))
	}
	if xs[1] != ys[0] {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v x %v", xs, ys))
	}
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", x.DType(), y.DType()))
	}
	m, k, n := xs[0], xs[1], ys[1]
	out := tensor.MustNewRaw(tensor.Shape{m, n}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		matmulF32(x.Float32s(), y.Float32s(), out.Float32s(), m, k, n, b.parallel)
	case tensor.Float64:
		matmulF64(x.Float64s(), y.Float64s(), out.Float64s(), m, k, n, b.parallel)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", x.DType()))
	}
	return out
}

// matmulF32 uses an ikj loop order so the inner loop streams rows of b,
// which vectorizes well and stays cache friendly without explicit tiling
// for the small k typical of MLP layers. Rows of a are split across workers.
func matmulF32(a, b, c []float32, m, k, n int, cfg parallel.Config) {
	parallel.ForRange(m, cfg, func(rs, re int) {
		for i := rs; i < re; i++ {
			ci := c[i*n : (i+1)*n]
			for p := 0; p < k; p++ {
				aip := a[i*k+p]
				if aip == 0 {
					continue
				}
				bp := b[p*n : (p+1)*n]
				for j := range ci {
					ci[j] += aip * bp[j]
				}
			}
		}
	})
}

func matmulF64(a, b, c []float64, m, k, n int, cfg parallel.Config) {
	parallel.ForRange(m, cfg, func(rs, re int) {
		for i := rs; i < re; i++ {
			ci := c[i*n : (i+1)*n]
			for p := 0; p < k; p++ {
				aip := a[i*k+p]
				if aip == 0 {
					continue
				}
				bp := b[p*n : (p+1)*n]
				for j := range ci {
					ci[j] += aip * bp[j]
				}
			}
		}
	})
}
