// Package cpu implements the pure Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"

	"github.com/mintml/mint/internal/parallel"
	"github.com/mintml/mint/internal/tensor"
)

// Backend executes tensor operations on the CPU. Elementwise kernels use
// in-place fast paths when the left operand's buffer is unique; MatMul fans
// out row blocks across goroutines.
type Backend struct {
	name     string
	parallel parallel.Config
}

// New creates a CPU backend tuned from the detected processor.
func New() *Backend {
	cfg := parallel.DefaultConfig()
	if n := cpuid.CPU.LogicalCores; n > 0 {
		cfg.NumWorkers = n
		cfg.Enabled = n > 1
	}

	name := "cpu"
	if cpuid.CPU.Supports(cpuid.AVX2) {
		name = "cpu/avx2"
	} else if cpuid.CPU.Supports(cpuid.ASIMD) {
		name = "cpu/asimd"
	}

	return &Backend{name: name, parallel: cfg}
}

// Name returns the backend name, including the detected vector extension.
func (b *Backend) Name() string { return b.name }

// Add performs elementwise addition with broadcasting.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("add", x, y, func(a, c float32) float32 { return a + c }, func(a, c float64) float64 { return a + c })
}

// Sub performs elementwise subtraction with broadcasting.
func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("sub", x, y, func(a, c float32) float32 { return a - c }, func(a, c float64) float64 { return a - c })
}

// Mul performs elementwise multiplication with broadcasting.
func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("mul", x, y, func(a, c float32) float32 { return a * c }, func(a, c float64) float64 { return a * c })
}

// Div performs elementwise division with broadcasting.
func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("div", x, y, func(a, c float32) float32 { return a / c }, func(a, c float64) float64 { return a / c })
}

// binary dispatches an elementwise binary kernel with broadcasting.
func (b *Backend) binary(op string, x, y *tensor.RawTensor, f32 func(a, c float32) float32, f64 func(a, c float64) float64) *tensor.RawTensor {
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", op, x.DType(), y.DType()))
	}

	outShape, expanded, err := tensor.Broadcast(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	if !expanded && x.Shape().Equal(y.Shape()) {
		return b.binarySameShape(op, x, y, f32, f64)
	}
	return b.binaryBroadcast(op, x, y, outShape, f32, f64)
}

func (b *Backend) binarySameShape(op string, x, y *tensor.RawTensor, f32 func(a, c float32) float32, f64 func(a, c float64) float64) *tensor.RawTensor {
	switch x.DType() {
	case tensor.Float32:
		xs, ys := x.Float32s(), y.Float32s()
		dst := x
		if !x.IsUnique() {
			dst = tensor.MustNewRaw(x.Shape(), tensor.Float32)
		}
		out := dst.Float32s()
		parallel.ForRange(len(xs), b.parallel, func(s, e int) {
			for i := s; i < e; i++ {
				out[i] = f32(xs[i], ys[i])
			}
		})
		return dst
	case tensor.Float64:
		xs, ys := x.Float64s(), y.Float64s()
		dst := x
		if !x.IsUnique() {
			dst = tensor.MustNewRaw(x.Shape(), tensor.Float64)
		}
		out := dst.Float64s()
		parallel.ForRange(len(xs), b.parallel, func(s, e int) {
			for i := s; i < e; i++ {
				out[i] = f64(xs[i], ys[i])
			}
		})
		return dst
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}
}

func (b *Backend) binaryBroadcast(op string, x, y *tensor.RawTensor, outShape tensor.Shape, f32 func(a, c float32) float32, f64 func(a, c float64) float64) *tensor.RawTensor {
	out := tensor.MustNewRaw(outShape, x.DType())
	xIdx := broadcastIndexer(x.Shape(), outShape)
	yIdx := broadcastIndexer(y.Shape(), outShape)
	n := outShape.NumElements()

	switch x.DType() {
	case tensor.Float32:
		xs, ys, os := x.Float32s(), y.Float32s(), out.Float32s()
		parallel.ForRange(n, b.parallel, func(s, e int) {
			for i := s; i < e; i++ {
				os[i] = f32(xs[xIdx(i)], ys[yIdx(i)])
			}
		})
	case tensor.Float64:
		xs, ys, os := x.Float64s(), y.Float64s(), out.Float64s()
		parallel.ForRange(n, b.parallel, func(s, e int) {
			for i := s; i < e; i++ {
				os[i] = f64(xs[xIdx(i)], ys[yIdx(i)])
			}
		})
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}
	return out
}

// broadcastIndexer maps a flat index in outShape to the flat index of the
// corresponding element in inShape, treating size-1 dimensions as repeated.
func broadcastIndexer(inShape, outShape tensor.Shape) func(int) int {
	if inShape.Equal(outShape) {
		return func(i int) int { return i }
	}

	outStrides := outShape.Strides()
	inStrides := inShape.Strides()

	// Align shapes from the right; dimensions the input lacks, or has as
	// size 1, contribute stride 0.
	n := len(outShape)
	offset := n - len(inShape)
	effective := make([]int, n)
	for d := 0; d < n; d++ {
		inDim := d - offset
		if inDim >= 0 && inShape[inDim] != 1 {
			effective[d] = inStrides[inDim]
		}
	}

	return func(i int) int {
		idx := 0
		rem := i
		for d := 0; d < n; d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			idx += coord * effective[d]
		}
		return idx
	}
}
