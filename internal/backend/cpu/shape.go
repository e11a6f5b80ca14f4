package cpu

import (
	"fmt"

	"github.com/mintml/mint/internal/tensor"
)

// Reshape returns a tensor with the same data and a new shape. The element
// count must match. The returned tensor shares the input buffer.
func (b *Backend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	if shape.NumElements() != x.Shape().NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			x.Shape(), x.Shape().NumElements(), shape, shape.NumElements()))
	}
	out := x.Clone()
	out.SetShape(shape)
	return out
}

// Transpose permutes the axes of x. With no axes given the order is
// reversed, which for 2-D is the usual matrix transpose.
func (b *Backend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := x.Shape()
	nd := len(shape)
	if len(axes) == 0 {
		axes = make([]int, nd)
		for i := range axes {
			axes[i] = nd - 1 - i
		}
	}
	if len(axes) != nd {
		panic(fmt.Sprintf("transpose: got %d axes for %d-D tensor", len(axes), nd))
	}
	seen := make([]bool, nd)
	outShape := make(tensor.Shape, nd)
	for i, ax := range axes {
		if ax < 0 || ax >= nd || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid axes %v for shape %v", axes, shape))
		}
		seen[ax] = true
		outShape[i] = shape[ax]
	}

	out := tensor.MustNewRaw(outShape, x.DType())
	inStride := shape.Strides()
	n := shape.NumElements()

	switch x.DType() {
	case tensor.Float32:
		transposeCopy(x.Float32s(), out.Float32s(), axes, inStride, outShape, n)
	case tensor.Float64:
		transposeCopy(x.Float64s(), out.Float64s(), axes, inStride, outShape, n)
	case tensor.Int32:
		transposeCopy(x.Int32s(), out.Int32s(), axes, inStride, outShape, n)
	case tensor.Int64:
		transposeCopy(x.Int64s(), out.Int64s(), axes, inStride, outShape, n)
	case tensor.Uint8:
		transposeCopy(x.Uint8s(), out.Uint8s(), axes, inStride, outShape, n)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", x.DType()))
	}
	return out
}

// transposeCopy walks the output in linear order and gathers from the input.
func transposeCopy[T any](in, out []T, axes, inStride []int, outShape tensor.Shape, n int) {
	nd := len(outShape)
	idx := make([]int, nd)
	for i := 0; i < n; i++ {
		src := 0
		for d := 0; d < nd; d++ {
			src += idx[d] * inStride[axes[d]]
		}
		out[i] = in[src]
		for d := nd - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
		}
	}
}
