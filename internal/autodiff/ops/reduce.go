package ops

import (
	"github.com/mintml/mint/internal/tensor"
)

// Sum records a full reduction to a [1] scalar. The gradient broadcasts the
// scalar back over the input shape.
type Sum struct{ base }

func NewSum(x, out *tensor.RawTensor) *Sum {
	return &Sum{base{"sum", []*tensor.RawTensor{x}, out}}
}

func (op *Sum) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	x := op.inputs[0]
	return []*tensor.RawTensor{be.Mul(onesLike(x.Shape(), x.DType()), grad)}
}

// Mean records a full mean reduction to a [1] scalar.
type Mean struct{ base }

func NewMean(x, out *tensor.RawTensor) *Mean {
	return &Mean{base{"mean", []*tensor.RawTensor{x}, out}}
}

func (op *Mean) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	x := op.inputs[0]
	g := be.Mul(onesLike(x.Shape(), x.DType()), grad)
	return []*tensor.RawTensor{be.MulScalar(g, 1/float64(x.NumElements()))}
}

// SumDim records a reduction along one dimension.
type SumDim struct {
	base
	dim     int
	keepDim bool
}

func NewSumDim(x, out *tensor.RawTensor, dim int, keepDim bool) *SumDim {
	return &SumDim{base{"sumdim", []*tensor.RawTensor{x}, out}, dim, keepDim}
}

func (op *SumDim) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	x := op.inputs[0]
	g := grad
	if !op.keepDim {
		// Restore the reduced dimension as size 1 so broadcasting lines up.
		kept := make(tensor.Shape, 0, len(x.Shape()))
		kept = append(kept, x.Shape()...)
		kept[op.dim] = 1
		g = be.Reshape(g, kept)
	}
	return []*tensor.RawTensor{be.Mul(onesLike(x.Shape(), x.DType()), g)}
}

// MeanDim records an average along one dimension.
type MeanDim struct {
	base
	dim     int
	keepDim bool
}

func NewMeanDim(x, out *tensor.RawTensor, dim int, keepDim bool) *MeanDim {
	return &MeanDim{base{"meandim", []*tensor.RawTensor{x}, out}, dim, keepDim}
}

func (op *MeanDim) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	x := op.inputs[0]
	g := grad
	if !op.keepDim {
		kept := make(tensor.Shape, 0, len(x.Shape()))
		kept = append(kept, x.Shape()...)
		kept[op.dim] = 1
		g = be.Reshape(g, kept)
	}
	g = be.Mul(onesLike(x.Shape(), x.DType()), g)
	return []*tensor.RawTensor{be.MulScalar(g, 1/float64(x.Shape()[op.dim]))}
}

// Reshape records a shape change. The gradient is reshaped back.
type Reshape struct{ base }

func NewReshape(x, out *tensor.RawTensor) *Reshape {
	return &Reshape{base{"reshape", []*tensor.RawTensor{x}, out}}
}

func (op *Reshape) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{be.Reshape(grad, op.inputs[0].Shape())}
}

// Transpose records an axes permutation. The gradient applies the inverse
// permutation.
type Transpose struct {
	base
	axes []int
}

func NewTranspose(x, out *tensor.RawTensor, axes []int) *Transpose {
	return &Transpose{base{"transpose", []*tensor.RawTensor{x}, out}, axes}
}

func (op *Transpose) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	nd := len(op.inputs[0].Shape())
	axes := op.axes
	if len(axes) == 0 {
		axes = make([]int, nd)
		for i := range axes {
			axes[i] = nd - 1 - i
		}
	}
	inverse := make([]int, nd)
	for i, ax := range axes {
		inverse[ax] = i
	}
	return []*tensor.RawTensor{be.Transpose(grad, inverse...)}
}
