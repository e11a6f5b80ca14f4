package nn

import (
	"fmt"
	"strings"

	"github.com/mintml/mint/internal/serialization"
	"github.com/mintml/mint/internal/tensor"
)

// OptimizerState is the slice of an optimizer that checkpointing needs.
// Declared here rather than importing optim, which depends on this package.
type OptimizerState interface {
	Name() string
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(state map[string]*tensor.RawTensor) error
}

const (
	modelPrefix = "model."
	optimPrefix = "optim."
)

// SaveCheckpoint writes the model's state dict, and the optimizer's if opt
// is non-nil, to a .mint file at path. Tensor names are prefixed with
// "model." and "optim." so the two state dicts cannot collide.
func SaveCheckpoint(path string, model Module, opt OptimizerState, meta serialization.Meta) error {
	flat := make(map[string]*tensor.RawTensor)
	for key, t := range model.StateDict() {
		flat[modelPrefix+key] = t
	}
	if opt != nil {
		meta.Optimizer = opt.Name()
		for key, t := range opt.StateDict() {
			flat[optimPrefix+key] = t
		}
	}
	return serialization.WriteFile(path, meta, flat)
}

// LoadCheckpoint restores model state, and optimizer state when opt is
// non-nil, from a .mint file. The model must have the architecture the
// checkpoint was saved from: a tensor whose shape differs returns an error
// wrapping ErrShapeMismatch, naming the offending tensor.
func LoadCheckpoint(path string, model Module, opt OptimizerState) (serialization.Meta, error) {
	meta, tensors, err := serialization.ReadFile(path)
	if err != nil {
		return serialization.Meta{}, err
	}

	modelState := make(map[string]*tensor.RawTensor)
	optimState := make(map[string]*tensor.RawTensor)
	for key, t := range tensors {
		switch {
		case strings.HasPrefix(key, modelPrefix):
			modelState[strings.TrimPrefix(key, modelPrefix)] = t
		case strings.HasPrefix(key, optimPrefix):
			optimState[strings.TrimPrefix(key, optimPrefix)] = t
		default:
			return serialization.Meta{}, fmt.Errorf("checkpoint %s: unexpected tensor %q", path, key)
		}
	}

	if err := model.LoadStateDict(modelState); err != nil {
		return serialization.Meta{}, fmt.Errorf("load model from %s: %w", path, err)
	}
	if opt != nil {
		if meta.Optimizer != "" && meta.Optimizer != opt.Name() {
			return serialization.Meta{}, fmt.Errorf(
				"checkpoint %s holds %s state, resuming with %s", path, meta.Optimizer, opt.Name())
		}
		if err := opt.LoadStateDict(optimState); err != nil {
			return serialization.Meta{}, fmt.Errorf("load optimizer from %s: %w", path, err)
		}
	}
	return meta, nil
}
