// Package autodiff provides reverse-mode automatic differentiation as a
// backend decorator. Wrap any tensor.Backend with New and every operation
// executed through the wrapper is recorded on a gradient tape; Backward then
// replays the tape to produce gradients for the recorded inputs.
package autodiff

import (
	"github.com/mintml/mint/internal/autodiff/ops"
	"github.com/mintml/mint/internal/tensor"
)

// Backend wraps an inner backend and records differentiable operations.
// It satisfies tensor.Backend, so models run unchanged on top of it.
type Backend struct {
	inner tensor.Backend
	tape  *Tape
}

var _ tensor.Backend = (*Backend)(nil)

// New wraps inner with a fresh gradient tape.
func New(inner tensor.Backend) *Backend {
	return &Backend{inner: inner, tape: NewTape()}
}

// Tape returns the gradient tape operations are recorded on.
func (b *Backend) Tape() *Tape { return b.tape }

// Inner returns the wrapped backend. Gradient computation and optimizer
// updates run on it directly so they are not recorded.
func (b *Backend) Inner() tensor.Backend { return b.inner }

// Name identifies the backend in logs.
func (b *Backend) Name() string { return "autodiff(" + b.inner.Name() + ")" }

// Backward computes gradients of loss with respect to every recorded input,
// then resets the tape.
func (b *Backend) Backward(loss *tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	grads, err := b.tape.Backward(b.inner, loss)
	b.tape.Reset()
	return grads, err
}

// record pins the inputs so the inner backend cannot reuse their buffers in
// place, then appends the operation to the tape.
func (b *Backend) record(op ops.Operation) {
	inputs := op.Inputs()
	unpins := make([]func(), 0, len(inputs)+1)
	for _, in := range inputs {
		unpins = append(unpins, in.Pin())
	}
	unpins = append(unpins, op.Output().Pin())
	b.tape.Record(op, unpins...)
}

func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	// Pin before executing: the inner backend reuses unique input buffers.
	unpinX, unpinY := x.Pin(), y.Pin()
	out := b.inner.Add(x, y)
	unpinX()
	unpinY()
	b.record(ops.NewAdd(x, y, out))
	return out
}

func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	unpinX, unpinY := x.Pin(), y.Pin()
	out := b.inner.Sub(x, y)
	unpinX()
	unpinY()
	b.record(ops.NewSub(x, y, out))
	return out
}

func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	unpinX, unpinY := x.Pin(), y.Pin()
	out := b.inner.Mul(x, y)
	unpinX()
	unpinY()
	b.record(ops.NewMul(x, y, out))
	return out
}

func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	unpinX, unpinY := x.Pin(), y.Pin()
	out := b.inner.Div(x, y)
	unpinX()
	unpinY()
	b.record(ops.NewDiv(x, y, out))
	return out
}

func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.MatMul(x, y)
	b.record(ops.NewMatMul(x, y, out))
	return out
}

func (b *Backend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out := b.inner.Reshape(x, shape)
	b.record(ops.NewReshape(x, out))
	return out
}

func (b *Backend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	out := b.inner.Transpose(x, axes...)
	b.record(ops.NewTranspose(x, out, axes))
	return out
}

func (b *Backend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	out := b.inner.AddScalar(x, s)
	b.record(ops.NewAddScalar(x, out, s))
	return out
}

func (b *Backend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	out := b.inner.MulScalar(x, s)
	b.record(ops.NewMulScalar(x, out, s))
	return out
}

func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Exp(x)
	b.record(ops.NewExp(x, out))
	return out
}

func (b *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Log(x)
	b.record(ops.NewLog(x, out))
	return out
}

func (b *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sqrt(x)
	b.record(ops.NewSqrt(x, out))
	return out
}

func (b *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.ReLU(x)
	b.record(ops.NewReLU(x, out))
	return out
}

func (b *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sigmoid(x)
	b.record(ops.NewSigmoid(x, out))
	return out
}

func (b *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Tanh(x)
	b.record(ops.NewTanh(x, out))
	return out
}

func (b *Backend) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Softmax(x)
	b.record(ops.NewSoftmax(x, out))
	return out
}

func (b *Backend) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.CrossEntropy(logits, targets)
	b.record(ops.NewCrossEntropy(logits, targets, out))
	return out
}

func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sum(x)
	b.record(ops.NewSum(x, out))
	return out
}

func (b *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Mean(x)
	b.record(ops.NewMean(x, out))
	return out
}

func (b *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	out := b.inner.SumDim(x, dim, keepDim)
	b.record(ops.NewSumDim(x, out, dim, keepDim))
	return out
}

func (b *Backend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	out := b.inner.MeanDim(x, dim, keepDim)
	b.record(ops.NewMeanDim(x, out, dim, keepDim))
	return out
}

// Argmax carries no gradient, so it is executed without recording.
func (b *Backend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Argmax(x, dim)
}
