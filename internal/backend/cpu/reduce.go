package cpu

import (
	"fmt"
	"math"

	"github.com/mintml/mint/internal/parallel"
	"github.com/mintml/mint/internal/tensor"
)

// Sum reduces all elements to a scalar tensor of shape [1].
func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := tensor.MustNewRaw(tensor.Shape{1}, x.DType())
	switch x.DType() {
	case tensor.Float32:
		var acc float64
		for _, v := range x.Float32s() {
			acc += float64(v)
		}
		out.Float32s()[0] = float32(acc)
	case tensor.Float64:
		var acc float64
		for _, v := range x.Float64s() {
			acc += v
		}
		out.Float64s()[0] = acc
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}
	return out
}

// Mean reduces all elements to their arithmetic mean, shape [1].
func (b *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	n := x.NumElements()
	if n == 0 {
		panic("mean: empty tensor")
	}
	return b.MulScalar(b.Sum(x), 1/float64(n))
}

// SumDim sums along one dimension. With keepDim the reduced dimension stays
// in the shape with size 1, which keeps the result broadcastable against the
// input.
func (b *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sumdim: dim %d out of range for shape %v", dim, shape))
	}

	// Collapse the shape to [outer, reduced, inner] around dim.
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	reduced := shape[dim]

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if i == dim {
			if keepDim {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, d)
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}
	out := tensor.MustNewRaw(outShape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		sumDim(x.Float32s(), out.Float32s(), outer, reduced, inner, b.parallel)
	case tensor.Float64:
		sumDim(x.Float64s(), out.Float64s(), outer, reduced, inner, b.parallel)
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s", x.DType()))
	}
	return out
}

func sumDim[T float32 | float64](in, out []T, outer, reduced, inner int, cfg parallel.Config) {
	parallel.ForRange(outer, cfg, func(os, oe int) {
		for o := os; o < oe; o++ {
			dst := out[o*inner : (o+1)*inner]
			for r := 0; r < reduced; r++ {
				src := in[(o*reduced+r)*inner : (o*reduced+r+1)*inner]
				for i := range dst {
					dst[i] += src[i]
				}
			}
		}
	})
}

// MeanDim averages along one dimension.
func (b *Backend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("meandim: dim %d out of range for shape %v", dim, shape))
	}
	return b.MulScalar(b.SumDim(x, dim, keepDim), 1/float64(shape[dim]))
}

// Argmax returns the index of the largest element along dim as an Int32
// tensor. The reduced dimension is dropped from the shape. Ties resolve to
// the lowest index.
func (b *Backend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("argmax: dim %d out of range for shape %v", dim, shape))
	}
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	reduced := shape[dim]

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if i != dim {
			outShape = append(outShape, d)
		}
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}
	out := tensor.MustNewRaw(outShape, tensor.Int32)

	switch x.DType() {
	case tensor.Float32:
		argmaxDim(x.Float32s(), out.Int32s(), outer, reduced, inner)
	case tensor.Float64:
		argmaxDim(x.Float64s(), out.Int32s(), outer, reduced, inner)
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s", x.DType()))
	}
	return out
}

func argmaxDim[T float32 | float64](in []T, out []int32, outer, reduced, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			best := in[o*reduced*inner+i]
			bestIdx := int32(0)
			for r := 1; r < reduced; r++ {
				v := in[(o*reduced+r)*inner+i]
				if v > best {
					best = v
					bestIdx = int32(r)
				}
			}
			out[o*inner+i] = bestIdx
		}
	}
}

// Softmax computes row-wise softmax of a 2-D tensor. Each row is shifted by
// its maximum before exponentiation so large logits cannot overflow.
func (b *Backend) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("softmax: want 2-D tensor, got %v", shape))
	}
	rows, cols := shape[0], shape[1]
	out := tensor.MustNewRaw(shape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		softmaxRows(x.Float32s(), out.Float32s(), rows, cols, b.parallel)
	case tensor.Float64:
		softmaxRows(x.Float64s(), out.Float64s(), rows, cols, b.parallel)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}
	return out
}

func softmaxRows[T float32 | float64](in, out []T, rows, cols int, cfg parallel.Config) {
	parallel.ForRange(rows, cfg, func(rs, re int) {
		for r := rs; r < re; r++ {
			row := in[r*cols : (r+1)*cols]
			dst := out[r*cols : (r+1)*cols]
			maxv := row[0]
			for _, v := range row[1:] {
				if v > maxv {
					maxv = v
				}
			}
			var sum float64
			for i, v := range row {
				e := math.Exp(float64(v - maxv))
				dst[i] = T(e)
				sum += e
			}
			inv := T(1 / sum)
			for i := range dst {
				dst[i] *= inv
			}
		}
	})
}

// CrossEntropy computes the mean negative log-likelihood of int32 class
// targets [batch] under raw logits [batch, classes], shape [1]. The
// per-row log-sum-exp is max-shifted, so it is safe for any logit scale.
func (b *Backend) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	ls := logits.Shape()
	if len(ls) != 2 {
		panic(fmt.Sprintf("crossentropy: want 2-D logits, got %v", ls))
	}
	if len(targets.Shape()) != 1 || targets.Shape()[0] != ls[0] {
		panic(fmt.Sprintf("crossentropy: targets %v do not match logits %v", targets.Shape(), ls))
	}
	if targets.DType() != tensor.Int32 {
		panic(fmt.Sprintf("crossentropy: targets must be int32, got %s", targets.DType()))
	}
	rows, cols := ls[0], ls[1]
	idx := targets.Int32s()

	var total float64
	switch logits.DType() {
	case tensor.Float32:
		total = crossEntropySum(logits.Float32s(), idx, rows, cols)
	case tensor.Float64:
		total = crossEntropySum(logits.Float64s(), idx, rows, cols)
	default:
		panic(fmt.Sprintf("crossentropy: unsupported dtype %s", logits.DType()))
	}

	out := tensor.MustNewRaw(tensor.Shape{1}, logits.DType())
	switch logits.DType() {
	case tensor.Float32:
		out.Float32s()[0] = float32(total / float64(rows))
	case tensor.Float64:
		out.Float64s()[0] = total / float64(rows)
	}
	return out
}

func crossEntropySum[T float32 | float64](logits []T, targets []int32, rows, cols int) float64 {
	var total float64
	for r := 0; r < rows; r++ {
		t := int(targets[r])
		if t < 0 || t >= cols {
			panic(fmt.Sprintf("crossentropy: target %d out of range [0, %d) at row %d", t, cols, r))
		}
		row := logits[r*cols : (r+1)*cols]
		maxv := row[0]
		for _, v := range row[1:] {
			if v > maxv {
				maxv = v
			}
		}
		var sum float64
		for _, v := range row {
			sum += math.Exp(float64(v - maxv))
		}
		// loss = log-sum-exp(row) - row[t]
		total += float64(maxv) + math.Log(sum) - float64(row[t])
	}
	return total
}
