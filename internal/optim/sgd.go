package optim

import (
	"fmt"

	"github.com/mintml/mint/internal/nn"
	"github.com/mintml/mint/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum and L2
// weight decay. With momentum > 0 a velocity buffer per parameter carries
// the running update: v = momentum*v + grad; w -= lr*v.
type SGD struct {
	params      []*nn.Parameter
	lr          float64
	momentum    float64
	weightDecay float64
	velocity    []*tensor.RawTensor
}

// NewSGD builds an SGD optimizer over params. Velocity buffers are
// allocated lazily on the first step so a freshly constructed optimizer
// serializes to an empty state.
func NewSGD(params []*nn.Parameter, lr, momentum, weightDecay float64) *SGD {
	return &SGD{
		params:      params,
		lr:          lr,
		momentum:    momentum,
		weightDecay: weightDecay,
	}
}

func (s *SGD) Name() string { return "sgd" }

// LearningRate returns the current learning rate.
func (s *SGD) LearningRate() float64 { return s.lr }

// SetLearningRate replaces the learning rate, for schedules.
func (s *SGD) SetLearningRate(lr float64) { s.lr = lr }

// ZeroGrad clears all parameter gradients.
func (s *SGD) ZeroGrad() { zeroGrads(s.params) }

// Step applies one SGD update in place.
func (s *SGD) Step() error {
	for i, p := range s.params {
		if p.Grad == nil {
			continue
		}
		if err := checkGrad(p); err != nil {
			return fmt.Errorf("sgd: %w", err)
		}
		if s.momentum != 0 {
			s.ensureVelocity(i, p)
		}
		switch p.Value.DType() {
		case tensor.Float32:
			s.stepF32(i, p)
		case tensor.Float64:
			s.stepF64(i, p)
		default:
			return fmt.Errorf("sgd: parameter %q has non-float dtype %s", p.Name, p.Value.DType())
		}
	}
	return nil
}

func (s *SGD) stepF32(i int, p *nn.Parameter) {
	w, g := p.Value.Float32s(), p.Grad.Float32s()
	lr, wd := float32(s.lr), float32(s.weightDecay)
	if s.momentum == 0 {
		for j := range w {
			w[j] -= lr * (g[j] + wd*w[j])
		}
		return
	}
	mu := float32(s.momentum)
	v := s.velocity[i].Float32s()
	for j := range w {
		v[j] = mu*v[j] + g[j] + wd*w[j]
		w[j] -= lr * v[j]
	}
}

func (s *SGD) stepF64(i int, p *nn.Parameter) {
	w, g := p.Value.Float64s(), p.Grad.Float64s()
	lr, wd := s.lr, s.weightDecay
	if s.momentum == 0 {
		for j := range w {
			w[j] -= lr * (g[j] + wd*w[j])
		}
		return
	}
	mu := s.momentum
	v := s.velocity[i].Float64s()
	for j := range w {
		v[j] = mu*v[j] + g[j] + wd*w[j]
		w[j] -= lr * v[j]
	}
}

// ensureVelocity allocates the zero velocity buffer for parameter i if it
// does not exist yet.
func (s *SGD) ensureVelocity(i int, p *nn.Parameter) {
	if s.velocity == nil {
		s.velocity = make([]*tensor.RawTensor, len(s.params))
	}
	if s.velocity[i] == nil {
		s.velocity[i] = tensor.MustNewRaw(p.Value.Shape(), p.Value.DType())
	}
}

// StateDict serializes the velocity buffers as "velocity.{i}".
func (s *SGD) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	for i, v := range s.velocity {
		if v != nil {
			state[fmt.Sprintf("velocity.%d", i)] = v
		}
	}
	return state
}

// LoadStateDict restores velocity buffers. An empty state resets momentum.
func (s *SGD) LoadStateDict(state map[string]*tensor.RawTensor) error {
	s.velocity = nil
	if len(state) == 0 {
		return nil
	}
	s.velocity = make([]*tensor.RawTensor, len(s.params))
	for key, src := range state {
		var i int
		if _, err := fmt.Sscanf(key, "velocity.%d", &i); err != nil {
			return fmt.Errorf("sgd: unexpected state key %q: %w", key, ErrStateMismatch)
		}
		if i < 0 || i >= len(s.params) {
			return fmt.Errorf("sgd: %q indexes past %d parameters: %w", key, len(s.params), ErrStateMismatch)
		}
		dst := tensor.MustNewRaw(s.params[i].Value.Shape(), s.params[i].Value.DType())
		if err := loadBuffer(key, dst, src); err != nil {
			return fmt.Errorf("sgd: %w", err)
		}
		s.velocity[i] = dst
	}
	return nil
}
