package nn

import (
	"fmt"
	"math/rand"

	"github.com/mintml/mint/internal/tensor"
)

// Linear is a fully connected layer computing y = x @ W^T + b for a batch
// x of shape [batch, in]. The weight is stored [out, in] and the bias [out].
type Linear struct {
	backend tensor.Backend
	Weight  *Parameter
	Bias    *Parameter

	in, out int
}

// NewLinear builds a float32 linear layer with Xavier-initialized weights
// and zero bias.
func NewLinear(b tensor.Backend, in, out int, rng *rand.Rand) *Linear {
	w := tensor.MustNewRaw(tensor.Shape{out, in}, tensor.Float32)
	XavierUniform(w, in, out, rng)
	bias := tensor.MustNewRaw(tensor.Shape{out}, tensor.Float32)
	return &Linear{
		backend: b,
		Weight:  NewParameter("weight", w),
		Bias:    NewParameter("bias", bias),
		in:      in,
		out:     out,
	}
}

// InFeatures returns the expected input width.
func (l *Linear) InFeatures() int { return l.in }

// OutFeatures returns the output width.
func (l *Linear) OutFeatures() int { return l.out }

// Forward computes x @ W^T + b. Panics if the batch width is not in.
func (l *Linear) Forward(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 || shape[1] != l.in {
		panic(fmt.Sprintf("linear: input %v does not match in_features %d", shape, l.in))
	}
	y := l.backend.MatMul(x, l.backend.Transpose(l.Weight.Value))
	return l.backend.Add(y, l.Bias.Value)
}

// Parameters returns the weight and bias.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.Weight, l.Bias}
}

// StateDict returns the live weight and bias tensors.
func (l *Linear) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight": l.Weight.Value,
		"bias":   l.Bias.Value,
	}
}

// LoadStateDict copies weight and bias from state. A missing key returns an
// error wrapping ErrMissingKey; a shape or dtype mismatch wraps
// ErrShapeMismatch and leaves already-copied tensors in place.
func (l *Linear) LoadStateDict(state map[string]*tensor.RawTensor) error {
	for key, dst := range map[string]*tensor.RawTensor{
		"weight": l.Weight.Value,
		"bias":   l.Bias.Value,
	} {
		src, ok := state[key]
		if !ok {
			return fmt.Errorf("linear: %q: %w", key, ErrMissingKey)
		}
		if err := loadInto(key, dst, src); err != nil {
			return fmt.Errorf("linear: %w", err)
		}
	}
	return nil
}
