package nn

import (
	"github.com/mintml/mint/internal/tensor"
)

// Parameter is a learnable tensor with its accumulated gradient. Optimizers
// update Value in place using Grad; the trainer fills Grad after each
// backward pass and clears it before the next step.
type Parameter struct {
	Name  string
	Value *tensor.RawTensor
	Grad  *tensor.RawTensor
}

// NewParameter wraps a tensor as a named parameter with no gradient.
func NewParameter(name string, value *tensor.RawTensor) *Parameter {
	return &Parameter{Name: name, Value: value}
}

// ZeroGrad drops the accumulated gradient.
func (p *Parameter) ZeroGrad() { p.Grad = nil }

// AttachGrads looks up each parameter's gradient in the map produced by a
// backward pass and attaches it. Parameters the loss did not reach keep a
// nil gradient.
func AttachGrads(params []*Parameter, grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range params {
		p.Grad = grads[p.Value]
	}
}
