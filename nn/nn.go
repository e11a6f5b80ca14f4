// Copyright 2025 The Mint Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn is the public neural network API: layers, activations, losses,
// and checkpointing for feed-forward models.
package nn

import (
	"math/rand"

	"github.com/mintml/mint/internal/nn"
	"github.com/mintml/mint/internal/serialization"
	"github.com/mintml/mint/internal/tensor"
)

// Module is a unit of computation with learnable state.
type Module = nn.Module

// Parameter is a learnable tensor with its accumulated gradient.
type Parameter = nn.Parameter

// Linear is a fully connected layer computing y = x W^T + b.
type Linear = nn.Linear

// Sequential chains modules, feeding each output into the next module.
type Sequential = nn.Sequential

// Activation modules.
type (
	ReLU    = nn.ReLU
	Sigmoid = nn.Sigmoid
	Tanh    = nn.Tanh
)

// Sentinel errors returned by LoadStateDict implementations.
var (
	ErrShapeMismatch = nn.ErrShapeMismatch
	ErrMissingKey    = nn.ErrMissingKey
)

// NewLinear builds a float32 linear layer with Xavier-initialized weights
// and zero bias.
func NewLinear(b tensor.Backend, in, out int, rng *rand.Rand) *Linear {
	return nn.NewLinear(b, in, out, rng)
}

// NewSequential builds a chain from the given modules.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// NewReLU returns a ReLU activation module.
func NewReLU(b tensor.Backend) *ReLU { return nn.NewReLU(b) }

// NewSigmoid returns a Sigmoid activation module.
func NewSigmoid(b tensor.Backend) *Sigmoid { return nn.NewSigmoid(b) }

// NewTanh returns a Tanh activation module.
func NewTanh(b tensor.Backend) *Tanh { return nn.NewTanh(b) }

// CrossEntropyLoss computes mean negative log-likelihood from raw logits
// and int32 class indices, as a [1] scalar.
func CrossEntropyLoss(b tensor.Backend, logits, targets *tensor.RawTensor) *tensor.RawTensor {
	return nn.CrossEntropyLoss(b, logits, targets)
}

// MSELoss computes mean squared error, as a [1] scalar.
func MSELoss(b tensor.Backend, pred, target *tensor.RawTensor) *tensor.RawTensor {
	return nn.MSELoss(b, pred, target)
}

// Accuracy returns the fraction of rows where the argmax of logits equals
// the target class.
func Accuracy(b tensor.Backend, logits, targets *tensor.RawTensor) float64 {
	return nn.Accuracy(b, logits, targets)
}

// AttachGrads attaches gradients from a backward pass to parameters.
func AttachGrads(params []*Parameter, grads map[*tensor.RawTensor]*tensor.RawTensor) {
	nn.AttachGrads(params, grads)
}

// CheckpointMeta is the training metadata stored in a checkpoint.
type CheckpointMeta = serialization.Meta

// SaveCheckpoint writes model state, and optimizer state when opt is
// non-nil, to a .mint file.
func SaveCheckpoint(path string, model Module, opt nn.OptimizerState, meta CheckpointMeta) error {
	return nn.SaveCheckpoint(path, model, opt, meta)
}

// LoadCheckpoint restores model state, and optimizer state when opt is
// non-nil, from a .mint file. Loading into a model whose architecture
// differs from the checkpoint returns an error wrapping ErrShapeMismatch.
func LoadCheckpoint(path string, model Module, opt nn.OptimizerState) (CheckpointMeta, error) {
	return nn.LoadCheckpoint(path, model, opt)
}
