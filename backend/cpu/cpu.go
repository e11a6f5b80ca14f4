// Copyright 2025 The Mint Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu is the public handle to the pure-Go CPU backend.
package cpu

import (
	"github.com/mintml/mint/internal/backend/cpu"
)

// Backend executes tensor operations on the host CPU, parallelized across
// logical cores.
type Backend = cpu.Backend

// New builds a CPU backend tuned to the host: worker count follows the
// logical core count, and the backend name reports the detected SIMD level.
func New() *Backend {
	return cpu.New()
}
