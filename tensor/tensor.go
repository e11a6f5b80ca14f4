// Copyright 2025 The Mint Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public tensor API: typed, backend-bound tensors
// over shared raw storage, with NumPy-style broadcasting.
//
// Basic usage:
//
//	be := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, be)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, be)
//	z := x.Add(y)
package tensor

import (
	"github.com/mintml/mint/internal/tensor"
)

// Shape describes tensor dimensions in row-major order.
type Shape = tensor.Shape

// DataType enumerates supported element types.
type DataType = tensor.DataType

// Supported element types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Uint8   = tensor.Uint8
)

// DType is the constraint on tensor element types.
type DType = tensor.DType

// RawTensor is the untyped tensor representation backends operate on.
type RawTensor = tensor.RawTensor

// Backend executes tensor computation.
type Backend = tensor.Backend

// Tensor is a typed tensor bound to a computation backend.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// New wraps a RawTensor with a typed handle.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// FromSlice builds a tensor by copying data into fresh storage.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// NewRaw allocates a zero-filled RawTensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Scalar creates a single-element tensor holding value.
func Scalar[T DType, B Backend](value T, b B) *Tensor[T, B] {
	return tensor.Scalar[T, B](value, b)
}

// Rand creates a float tensor with uniform values in [0, 1).
func Rand[T interface{ ~float32 | ~float64 }, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Rand[T, B](shape, b)
}

// Randn creates a float tensor with standard normal values.
func Randn[T interface{ ~float32 | ~float64 }, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, b)
}

// Arange creates a 1-D tensor with values [start, end) stepping by one.
func Arange[T DType, B Backend](start, end T, b B) *Tensor[T, B] {
	return tensor.Arange[T, B](start, end, b)
}

// Broadcast computes the broadcast result shape of two shapes, reporting
// whether broadcasting was needed.
func Broadcast(a, b Shape) (Shape, bool, error) {
	return tensor.Broadcast(a, b)
}
