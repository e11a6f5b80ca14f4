package optim

import (
	"fmt"
	"math"

	"github.com/mintml/mint/internal/nn"
	"github.com/mintml/mint/internal/tensor"
)

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates (Kingma & Ba, 2015).
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64

	m []*tensor.RawTensor
	v []*tensor.RawTensor
	t int64
}

// NewAdam builds an Adam optimizer with the usual defaults for zero-valued
// hyperparameters: beta1 0.9, beta2 0.999, eps 1e-8.
func NewAdam(params []*nn.Parameter, lr, beta1, beta2, eps float64) *Adam {
	if beta1 == 0 {
		beta1 = 0.9
	}
	if beta2 == 0 {
		beta2 = 0.999
	}
	if eps == 0 {
		eps = 1e-8
	}
	return &Adam{
		params: params,
		lr:     lr,
		beta1:  beta1,
		beta2:  beta2,
		eps:    eps,
		m:      make([]*tensor.RawTensor, len(params)),
		v:      make([]*tensor.RawTensor, len(params)),
	}
}

func (a *Adam) Name() string { return "adam" }

// LearningRate returns the current learning rate.
func (a *Adam) LearningRate() float64 { return a.lr }

// SetLearningRate replaces the learning rate, for schedules.
func (a *Adam) SetLearningRate(lr float64) { a.lr = lr }

// ZeroGrad clears all parameter gradients.
func (a *Adam) ZeroGrad() { zeroGrads(a.params) }

// Step applies one Adam update in place. The shared timestep advances once
// per call, not per parameter.
func (a *Adam) Step() error {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))

	for i, p := range a.params {
		if p.Grad == nil {
			continue
		}
		if err := checkGrad(p); err != nil {
			return fmt.Errorf("adam: %w", err)
		}
		if a.m[i] == nil {
			a.m[i] = tensor.MustNewRaw(p.Value.Shape(), p.Value.DType())
			a.v[i] = tensor.MustNewRaw(p.Value.Shape(), p.Value.DType())
		}
		switch p.Value.DType() {
		case tensor.Float32:
			a.stepF32(i, p, c1, c2)
		case tensor.Float64:
			a.stepF64(i, p, c1, c2)
		default:
			return fmt.Errorf("adam: parameter %q has non-float dtype %s", p.Name, p.Value.DType())
		}
	}
	return nil
}

func (a *Adam) stepF32(i int, p *nn.Parameter, c1, c2 float64) {
	w, g := p.Value.Float32s(), p.Grad.Float32s()
	m, v := a.m[i].Float32s(), a.v[i].Float32s()
	b1, b2 := a.beta1, a.beta2
	for j := range w {
		gj := float64(g[j])
		mj := b1*float64(m[j]) + (1-b1)*gj
		vj := b2*float64(v[j]) + (1-b2)*gj*gj
		m[j], v[j] = float32(mj), float32(vj)
		w[j] -= float32(a.lr * (mj / c1) / (math.Sqrt(vj/c2) + a.eps))
	}
}

func (a *Adam) stepF64(i int, p *nn.Parameter, c1, c2 float64) {
	w, g := p.Value.Float64s(), p.Grad.Float64s()
	m, v := a.m[i].Float64s(), a.v[i].Float64s()
	b1, b2 := a.beta1, a.beta2
	for j := range w {
		gj := g[j]
		m[j] = b1*m[j] + (1-b1)*gj
		v[j] = b2*v[j] + (1-b2)*gj*gj
		w[j] -= a.lr * (m[j] / c1) / (math.Sqrt(v[j]/c2) + a.eps)
	}
}

// StateDict serializes the moment buffers as "m.{i}" / "v.{i}" plus the
// shared timestep as an int64 scalar under "t".
func (a *Adam) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	for i := range a.params {
		if a.m[i] != nil {
			state[fmt.Sprintf("m.%d", i)] = a.m[i]
			state[fmt.Sprintf("v.%d", i)] = a.v[i]
		}
	}
	if a.t > 0 {
		ts := tensor.MustNewRaw(tensor.Shape{1}, tensor.Int64)
		ts.Int64s()[0] = a.t
		state["t"] = ts
	}
	return state
}

// LoadStateDict restores moment buffers and the timestep. An empty state
// resets the optimizer to step zero.
func (a *Adam) LoadStateDict(state map[string]*tensor.RawTensor) error {
	a.m = make([]*tensor.RawTensor, len(a.params))
	a.v = make([]*tensor.RawTensor, len(a.params))
	a.t = 0
	for key, src := range state {
		if key == "t" {
			if src.DType() != tensor.Int64 || src.NumElements() != 1 {
				return fmt.Errorf("adam: %q must be a single int64: %w", key, ErrStateMismatch)
			}
			a.t = src.Int64s()[0]
			continue
		}
		var kind rune
		var i int
		if _, err := fmt.Sscanf(key, "%c.%d", &kind, &i); err != nil || (kind != 'm' && kind != 'v') {
			return fmt.Errorf("adam: unexpected state key %q: %w", key, ErrStateMismatch)
		}
		if i < 0 || i >= len(a.params) {
			return fmt.Errorf("adam: %q indexes past %d parameters: %w", key, len(a.params), ErrStateMismatch)
		}
		dst := tensor.MustNewRaw(a.params[i].Value.Shape(), a.params[i].Value.DType())
		if err := loadBuffer(key, dst, src); err != nil {
			return fmt.Errorf("adam: %w", err)
		}
		if kind == 'm' {
			a.m[i] = dst
		} else {
			a.v[i] = dst
		}
	}
	for i := range a.params {
		if (a.m[i] == nil) != (a.v[i] == nil) {
			return fmt.Errorf("adam: parameter %d has only one moment buffer: %w", i, ErrStateMismatch)
		}
	}
	return nil
}
