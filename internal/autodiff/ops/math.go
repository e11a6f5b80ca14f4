package ops

import (
	"github.com/mintml/mint/internal/tensor"
)

// Exp records e^x. The backward pass reuses the output: d/dx e^x = e^x.
type Exp struct{ base }

func NewExp(x, out *tensor.RawTensor) *Exp {
	return &Exp{base{"exp", []*tensor.RawTensor{x}, out}}
}

func (op *Exp) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{be.Mul(grad, op.output)}
}

// Log records ln(x).
type Log struct{ base }

func NewLog(x, out *tensor.RawTensor) *Log {
	return &Log{base{"log", []*tensor.RawTensor{x}, out}}
}

func (op *Log) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{be.Div(grad, op.inputs[0])}
}

// Sqrt records sqrt(x). d/dx sqrt(x) = 1 / (2 sqrt(x)).
type Sqrt struct{ base }

func NewSqrt(x, out *tensor.RawTensor) *Sqrt {
	return &Sqrt{base{"sqrt", []*tensor.RawTensor{x}, out}}
}

func (op *Sqrt) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{be.Div(be.MulScalar(grad, 0.5), op.output)}
}

// MatMul records a 2-D matrix product.
type MatMul struct{ base }

func NewMatMul(a, b, out *tensor.RawTensor) *MatMul {
	return &MatMul{base{"matmul", []*tensor.RawTensor{a, b}, out}}
}

func (op *MatMul) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	// c = a @ b  =>  dA = g @ b^T,  dB = a^T @ g
	return []*tensor.RawTensor{
		be.MatMul(grad, be.Transpose(b)),
		be.MatMul(be.Transpose(a), grad),
	}
}
