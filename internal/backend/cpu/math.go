package cpu

import (
	"fmt"
	"math"

	"github.com/mintml/mint/internal/parallel"
	"github.com/mintml/mint/internal/tensor"
)

// AddScalar returns x + s elementwise.
func (b *Backend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return b.unary("addscalar", x,
		func(v float32) float32 { return v + float32(s) },
		func(v float64) float64 { return v + s })
}

// MulScalar returns x * s elementwise.
func (b *Backend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return b.unary("mulscalar", x,
		func(v float32) float32 { return v * float32(s) },
		func(v float64) float64 { return v * s })
}

// Exp returns e^x elementwise.
func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("exp", x,
		func(v float32) float32 { return float32(math.Exp(float64(v))) },
		math.Exp)
}

// Log returns the natural logarithm elementwise.
func (b *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("log", x,
		func(v float32) float32 { return float32(math.Log(float64(v))) },
		math.Log)
}

// Sqrt returns the square root elementwise.
func (b *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("sqrt", x,
		func(v float32) float32 { return float32(math.Sqrt(float64(v))) },
		math.Sqrt)
}

// ReLU returns max(0, x) elementwise.
func (b *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("relu", x,
		func(v float32) float32 { return max(v, 0) },
		func(v float64) float64 { return max(v, 0) })
}

// Sigmoid returns 1 / (1 + e^-x) elementwise.
func (b *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("sigmoid", x,
		func(v float32) float32 { return float32(1 / (1 + math.Exp(float64(-v)))) },
		func(v float64) float64 { return 1 / (1 + math.Exp(-v)) })
}

// Tanh returns the hyperbolic tangent elementwise.
func (b *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("tanh", x,
		func(v float32) float32 { return float32(math.Tanh(float64(v))) },
		math.Tanh)
}

// unary applies an elementwise kernel into a fresh tensor. Unary results
// never reuse the input buffer: activations and math ops are recorded by the
// autodiff backend, which needs the input intact for the backward pass.
func (b *Backend) unary(op string, x *tensor.RawTensor, f32 func(float32) float32, f64 func(float64) float64) *tensor.RawTensor {
	out := tensor.MustNewRaw(x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		xs, os := x.Float32s(), out.Float32s()
		parallel.ForRange(len(xs), b.parallel, func(s, e int) {
			for i := s; i < e; i++ {
				os[i] = f32(xs[i])
			}
		})
	case tensor.Float64:
		xs, os := x.Float64s(), out.Float64s()
		parallel.ForRange(len(xs), b.parallel, func(s, e int) {
			for i := s; i < e; i++ {
				os[i] = f64(xs[i])
			}
		})
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}
	return out
}
