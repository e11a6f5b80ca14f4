// Package nn provides the building blocks for feed-forward neural networks:
// layers, activations, losses, parameter initialization, and checkpointing.
// Modules run on any tensor.Backend; training wraps the backend with
// autodiff to record gradients.
package nn

import (
	"errors"
	"fmt"

	"github.com/mintml/mint/internal/tensor"
)

// ErrShapeMismatch is returned when a loaded state tensor does not match the
// shape the module was constructed with.
var ErrShapeMismatch = errors.New("state tensor shape mismatch")

// ErrMissingKey is returned when a state dict lacks a tensor the module
// needs.
var ErrMissingKey = errors.New("missing state dict key")

// Module is a unit of computation with learnable state.
type Module interface {
	// Forward runs the module on a batch.
	Forward(x *tensor.RawTensor) *tensor.RawTensor

	// Parameters returns the module's learnable parameters.
	Parameters() []*Parameter

	// StateDict returns the module's persistent state keyed by name.
	// Values are the live tensors, not copies.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict replaces the module's state from a state dict. Every
	// tensor must match the shape and dtype the module was built with;
	// a mismatch returns an error wrapping ErrShapeMismatch.
	LoadStateDict(state map[string]*tensor.RawTensor) error
}

// loadInto copies src into dst after checking shape and dtype. Copying in
// place keeps optimizer and tape references to the parameter valid.
func loadInto(key string, dst, src *tensor.RawTensor) error {
	if !dst.Shape().Equal(src.Shape()) {
		return fmt.Errorf("%q: checkpoint tensor has shape %v, module expects %v: %w",
			key, src.Shape(), dst.Shape(), ErrShapeMismatch)
	}
	if dst.DType() != src.DType() {
		return fmt.Errorf("%q: checkpoint tensor has dtype %s, module expects %s: %w",
			key, src.DType(), dst.DType(), ErrShapeMismatch)
	}
	copy(dst.Bytes(), src.Bytes())
	return nil
}
