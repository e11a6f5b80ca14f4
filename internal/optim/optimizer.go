// Package optim implements gradient-descent optimizers over nn parameters.
// Optimizers mutate parameter values in place, so tensors handed to modules,
// the tape, or a pending checkpoint all observe the update.
package optim

import (
	"errors"
	"fmt"

	"github.com/mintml/mint/internal/nn"
	"github.com/mintml/mint/internal/tensor"
)

// ErrStateMismatch is returned when a loaded optimizer state does not fit
// the parameters the optimizer was built with.
var ErrStateMismatch = errors.New("optimizer state mismatch")

// Optimizer updates parameters from their accumulated gradients.
type Optimizer interface {
	// Step applies one update using each parameter's Grad. Parameters
	// with a nil gradient are skipped.
	Step() error

	// ZeroGrad clears the gradients of all managed parameters.
	ZeroGrad()

	// StateDict returns the optimizer's internal state (momentum and
	// moment buffers, step counters) for checkpointing.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict restores internal state from a checkpoint. The state
	// must match the managed parameters; mismatches return an error
	// wrapping ErrStateMismatch.
	LoadStateDict(state map[string]*tensor.RawTensor) error

	// Name identifies the optimizer family in checkpoint metadata.
	Name() string
}

// zeroGrads clears gradients on a parameter list.
func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// loadBuffer validates a checkpointed buffer against the parameter it
// belongs to and copies it in.
func loadBuffer(key string, dst, src *tensor.RawTensor) error {
	if !dst.Shape().Equal(src.Shape()) || dst.DType() != src.DType() {
		return fmt.Errorf("%q: buffer is %s%v, parameter needs %s%v: %w",
			key, src.DType(), src.Shape(), dst.DType(), dst.Shape(), ErrStateMismatch)
	}
	copy(dst.Bytes(), src.Bytes())
	return nil
}

// checkGrad validates that a gradient matches its parameter before an
// in-place update touches either.
func checkGrad(p *nn.Parameter) error {
	if !p.Grad.Shape().Equal(p.Value.Shape()) || p.Grad.DType() != p.Value.DType() {
		return fmt.Errorf("parameter %q: gradient %s%v does not match value %s%v",
			p.Name, p.Grad.DType(), p.Grad.Shape(), p.Value.DType(), p.Value.Shape())
	}
	return nil
}
