package ops

import (
	"fmt"

	"github.com/mintml/mint/internal/tensor"
)

// ReLU records max(0, x). The gradient passes through where the input was
// positive and is zero elsewhere.
type ReLU struct{ base }

func NewReLU(x, out *tensor.RawTensor) *ReLU {
	return &ReLU{base{"relu", []*tensor.RawTensor{x}, out}}
}

func (op *ReLU) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	x := op.inputs[0]
	gx := tensor.MustNewRaw(x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		xs, gs, out := x.Float32s(), grad.Float32s(), gx.Float32s()
		for i := range out {
			if xs[i] > 0 {
				out[i] = gs[i]
			}
		}
	case tensor.Float64:
		xs, gs, out := x.Float64s(), grad.Float64s(), gx.Float64s()
		for i := range out {
			if xs[i] > 0 {
				out[i] = gs[i]
			}
		}
	default:
		panic(fmt.Sprintf("relu backward: unsupported dtype %s", x.DType()))
	}
	return []*tensor.RawTensor{gx}
}

// Sigmoid records 1/(1+e^-x); the backward pass uses y(1-y) from the output.
type Sigmoid struct{ base }

func NewSigmoid(x, out *tensor.RawTensor) *Sigmoid {
	return &Sigmoid{base{"sigmoid", []*tensor.RawTensor{x}, out}}
}

func (op *Sigmoid) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	y := op.output
	// g * y * (1 - y)
	oneMinusY := be.AddScalar(be.MulScalar(y, -1), 1)
	return []*tensor.RawTensor{be.Mul(grad, be.Mul(y, oneMinusY))}
}

// Tanh records tanh(x); the backward pass uses 1 - y^2 from the output.
type Tanh struct{ base }

func NewTanh(x, out *tensor.RawTensor) *Tanh {
	return &Tanh{base{"tanh", []*tensor.RawTensor{x}, out}}
}

func (op *Tanh) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	y := op.output
	oneMinusY2 := be.AddScalar(be.MulScalar(be.Mul(y, y), -1), 1)
	return []*tensor.RawTensor{be.Mul(grad, oneMinusY2)}
}

// Softmax records a row-wise softmax over a 2-D tensor.
type Softmax struct{ base }

func NewSoftmax(x, out *tensor.RawTensor) *Softmax {
	return &Softmax{base{"softmax", []*tensor.RawTensor{x}, out}}
}

func (op *Softmax) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	// dx = y * (g - sum_j(g_j * y_j)) per row
	y := op.output
	gy := be.Mul(grad, y)
	rowSum := be.SumDim(gy, 1, true)
	return []*tensor.RawTensor{be.Mul(y, be.Sub(grad, rowSum))}
}
