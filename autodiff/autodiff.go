// Copyright 2025 The Mint Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff is the public handle to the reverse-mode automatic
// differentiation backend.
//
// Wrap any backend and run a model through it; Backward traverses the
// recorded tape and returns gradients keyed by raw tensor:
//
//	ad := autodiff.New(cpu.New())
//	logits := model.Forward(images)
//	loss := nn.CrossEntropyLoss(ad, logits, labels)
//	grads, err := ad.Backward(loss)
package autodiff

import (
	"github.com/mintml/mint/internal/autodiff"
	"github.com/mintml/mint/internal/tensor"
)

// Backend wraps an inner backend and records differentiable operations on a
// gradient tape.
type Backend = autodiff.Backend

// Tape is the record of a forward computation.
type Tape = autodiff.Tape

// New wraps inner with a fresh gradient tape.
func New(inner tensor.Backend) *Backend {
	return autodiff.New(inner)
}
