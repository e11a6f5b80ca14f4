package nn

import (
	"github.com/mintml/mint/internal/tensor"
)

// ReLU applies max(0, x) elementwise. It has no learnable state.
type ReLU struct {
	backend tensor.Backend
}

func NewReLU(b tensor.Backend) *ReLU { return &ReLU{backend: b} }

func (r *ReLU) Forward(x *tensor.RawTensor) *tensor.RawTensor { return r.backend.ReLU(x) }
func (r *ReLU) Parameters() []*Parameter                      { return nil }
func (r *ReLU) StateDict() map[string]*tensor.RawTensor       { return nil }
func (r *ReLU) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}

// Sigmoid applies the logistic function elementwise.
type Sigmoid struct {
	backend tensor.Backend
}

func NewSigmoid(b tensor.Backend) *Sigmoid { return &Sigmoid{backend: b} }

func (s *Sigmoid) Forward(x *tensor.RawTensor) *tensor.RawTensor { return s.backend.Sigmoid(x) }
func (s *Sigmoid) Parameters() []*Parameter                      { return nil }
func (s *Sigmoid) StateDict() map[string]*tensor.RawTensor       { return nil }
func (s *Sigmoid) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}

// Tanh applies the hyperbolic tangent elementwise.
type Tanh struct {
	backend tensor.Backend
}

func NewTanh(b tensor.Backend) *Tanh { return &Tanh{backend: b} }

func (t *Tanh) Forward(x *tensor.RawTensor) *tensor.RawTensor { return t.backend.Tanh(x) }
func (t *Tanh) Parameters() []*Parameter                      { return nil }
func (t *Tanh) StateDict() map[string]*tensor.RawTensor       { return nil }
func (t *Tanh) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}
