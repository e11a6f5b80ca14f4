// Package ops defines the differentiable operations recorded on a gradient
// tape. Each operation captures its inputs and output at execution time and
// knows how to turn an output gradient into input gradients.
package ops

import (
	"github.com/mintml/mint/internal/tensor"
)

// Operation is one recorded step of a forward computation.
type Operation interface {
	// Name identifies the operation in error messages.
	Name() string

	// Inputs returns the tensors the operation consumed, in call order.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor the operation produced.
	Output() *tensor.RawTensor

	// Backward maps the gradient of the loss with respect to the output
	// to gradients with respect to each input. The returned slice is
	// parallel to Inputs; a nil entry marks a non-differentiable input.
	Backward(b tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor
}

// base carries the input/output bookkeeping shared by every operation.
type base struct {
	name   string
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

func (b *base) Name() string                { return b.name }
func (b *base) Inputs() []*tensor.RawTensor { return b.inputs }
func (b *base) Output() *tensor.RawTensor   { return b.output }

// onesLike returns a tensor of the given shape and dtype filled with ones.
func onesLike(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	out := tensor.MustNewRaw(shape, dtype)
	switch dtype {
	case tensor.Float32:
		data := out.Float32s()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := out.Float64s()
		for i := range data {
			data[i] = 1
		}
	}
	return out
}

// scalarValue reads the single element of a [1] tensor as float64.
func scalarValue(t *tensor.RawTensor) float64 {
	switch t.DType() {
	case tensor.Float32:
		return float64(t.Float32s()[0])
	case tensor.Float64:
		return t.Float64s()[0]
	}
	panic("scalarValue: non-float tensor")
}

// reduceTo sums grad down to the given shape, undoing broadcasting: extra
// leading dimensions are summed away, and dimensions the input held at size
// one are summed with keepDim.
func reduceTo(b tensor.Backend, grad *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	g := grad
	for len(g.Shape()) > len(shape) {
		g = b.SumDim(g, 0, false)
	}
	for i, d := range shape {
		if d == 1 && g.Shape()[i] != 1 {
			g = b.SumDim(g, i, true)
		}
	}
	if !g.Shape().Equal(shape) {
		g = b.Reshape(g, shape)
	}
	return g
}
