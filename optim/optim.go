// Copyright 2025 The Mint Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim is the public optimizer API.
package optim

import (
	"github.com/mintml/mint/internal/nn"
	"github.com/mintml/mint/internal/optim"
)

// Optimizer updates parameters from their accumulated gradients.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum and L2 weight
// decay.
type SGD = optim.SGD

// Adam is the Adam optimizer with bias-corrected moment estimates.
type Adam = optim.Adam

// ErrStateMismatch is returned when loaded optimizer state does not fit the
// managed parameters.
var ErrStateMismatch = optim.ErrStateMismatch

// NewSGD builds an SGD optimizer over params.
func NewSGD(params []*nn.Parameter, lr, momentum, weightDecay float64) *SGD {
	return optim.NewSGD(params, lr, momentum, weightDecay)
}

// NewAdam builds an Adam optimizer over params. Zero-valued
// hyperparameters take the usual defaults: beta1 0.9, beta2 0.999, eps 1e-8.
func NewAdam(params []*nn.Parameter, lr, beta1, beta2, eps float64) *Adam {
	return optim.NewAdam(params, lr, beta1, beta2, eps)
}
