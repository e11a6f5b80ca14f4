package ops

import (
	"github.com/mintml/mint/internal/tensor"
)

// Add records a + b with broadcasting.
type Add struct{ base }

func NewAdd(a, b, out *tensor.RawTensor) *Add {
	return &Add{base{"add", []*tensor.RawTensor{a, b}, out}}
}

func (op *Add) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceTo(be, grad, a.Shape()),
		reduceTo(be, grad, b.Shape()),
	}
}

// Sub records a - b with broadcasting.
type Sub struct{ base }

func NewSub(a, b, out *tensor.RawTensor) *Sub {
	return &Sub{base{"sub", []*tensor.RawTensor{a, b}, out}}
}

func (op *Sub) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceTo(be, grad, a.Shape()),
		reduceTo(be, be.MulScalar(grad, -1), b.Shape()),
	}
}

// Mul records elementwise a * b with broadcasting.
type Mul struct{ base }

func NewMul(a, b, out *tensor.RawTensor) *Mul {
	return &Mul{base{"mul", []*tensor.RawTensor{a, b}, out}}
}

func (op *Mul) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceTo(be, be.Mul(grad, b), a.Shape()),
		reduceTo(be, be.Mul(grad, a), b.Shape()),
	}
}

// Div records elementwise a / b with broadcasting.
type Div struct{ base }

func NewDiv(a, b, out *tensor.RawTensor) *Div {
	return &Div{base{"div", []*tensor.RawTensor{a, b}, out}}
}

func (op *Div) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	// d/da (a/b) = 1/b,  d/db (a/b) = -a/b^2 = -(a/b)/b
	gradA := be.Div(grad, b)
	gradB := be.MulScalar(be.Div(be.Mul(grad, op.output), b), -1)
	return []*tensor.RawTensor{
		reduceTo(be, gradA, a.Shape()),
		reduceTo(be, gradB, b.Shape()),
	}
}

// AddScalar records x + s.
type AddScalar struct {
	base
	scalar float64
}

func NewAddScalar(x, out *tensor.RawTensor, s float64) *AddScalar {
	return &AddScalar{base{"addscalar", []*tensor.RawTensor{x}, out}, s}
}

func (op *AddScalar) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{grad}
}

// MulScalar records x * s.
type MulScalar struct {
	base
	scalar float64
}

func NewMulScalar(x, out *tensor.RawTensor, s float64) *MulScalar {
	return &MulScalar{base{"mulscalar", []*tensor.RawTensor{x}, out}, s}
}

func (op *MulScalar) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{be.MulScalar(grad, op.scalar)}
}
