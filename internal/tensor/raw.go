package tensor

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// buffer is a reference-counted backing store shared between tensor views.
// The count lets backends detect when in-place updates are safe.
type buffer struct {
	data []byte
	refs atomic.Int32
}

func newBuffer(size int) *buffer {
	b := &buffer{data: make([]byte, size)}
	b.refs.Store(1)
	return b
}

func (b *buffer) retain()        { b.refs.Add(1) }
func (b *buffer) release()       { b.refs.Add(-1) }
func (b *buffer) isUnique() bool { return b.refs.Load() == 1 }

// RawTensor is the untyped tensor representation: a shaped view over a
// reference-counted byte buffer.
type RawTensor struct {
	buf    *buffer
	shape  Shape
	stride []int
	dtype  DataType
}

// NewRaw allocates a zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape %v: %w", shape, err)
	}
	return &RawTensor{
		buf:    newBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.Strides(),
		dtype:  dtype,
	}, nil
}

// MustNewRaw is NewRaw that panics on invalid shapes. Intended for internal
// call sites where the shape was already validated.
func MustNewRaw(shape Shape, dtype DataType) *RawTensor {
	raw, err := NewRaw(shape, dtype)
	if err != nil {
		panic(err)
	}
	return raw
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape { return r.shape }

// Strides returns the tensor's row-major strides.
func (r *RawTensor) Strides() []int { return r.stride }

// DType returns the element type.
func (r *RawTensor) DType() DataType { return r.dtype }

// NumElements returns the total element count.
func (r *RawTensor) NumElements() int { return r.shape.NumElements() }

// ByteSize returns the size of the data in bytes.
func (r *RawTensor) ByteSize() int { return r.NumElements() * r.dtype.Size() }

// Bytes returns the raw backing bytes.
func (r *RawTensor) Bytes() []byte { return r.buf.data }

// Float32s returns the data as []float32. Panics on dtype mismatch.
func (r *RawTensor) Float32s() []float32 {
	r.mustBe(Float32)
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.buf.data[0])), r.NumElements())
}

// Float64s returns the data as []float64. Panics on dtype mismatch.
func (r *RawTensor) Float64s() []float64 {
	r.mustBe(Float64)
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.buf.data[0])), r.NumElements())
}

// Int32s returns the data as []int32. Panics on dtype mismatch.
func (r *RawTensor) Int32s() []int32 {
	r.mustBe(Int32)
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.buf.data[0])), r.NumElements())
}

// Int64s returns the data as []int64. Panics on dtype mismatch.
func (r *RawTensor) Int64s() []int64 {
	r.mustBe(Int64)
	return unsafe.Slice((*int64)(unsafe.Pointer(&r.buf.data[0])), r.NumElements())
}

// Uint8s returns the data as []uint8. Panics on dtype mismatch.
func (r *RawTensor) Uint8s() []uint8 {
	r.mustBe(Uint8)
	return r.buf.data
}

func (r *RawTensor) mustBe(dt DataType) {
	if r.dtype != dt {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, dt))
	}
}

// Clone returns a view sharing the same buffer. The buffer's reference count
// is bumped so neither view will be modified in place.
func (r *RawTensor) Clone() *RawTensor {
	r.buf.retain()
	return &RawTensor{
		buf:    r.buf,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
	}
}

// Copy returns a deep copy with its own buffer.
func (r *RawTensor) Copy() *RawTensor {
	out := MustNewRaw(r.shape, r.dtype)
	copy(out.buf.data, r.buf.data)
	return out
}

// SetShape replaces the view's shape without touching the data. The element
// count must match; backends use this to implement zero-copy reshape.
func (r *RawTensor) SetShape(shape Shape) {
	if shape.NumElements() != r.shape.NumElements() {
		panic(fmt.Sprintf("SetShape: %v has %d elements, tensor has %d",
			shape, shape.NumElements(), r.shape.NumElements()))
	}
	r.shape = shape.Clone()
	r.stride = shape.Strides()
}

// IsUnique reports whether this tensor is the sole reference to its buffer,
// in which case backends may update it in place.
func (r *RawTensor) IsUnique() bool { return r.buf.isUnique() }

// Pin raises the buffer's reference count so in-place reuse is disabled
// until the returned release function runs. The autodiff backend pins
// operation inputs: the tape needs their original values for the backward
// pass.
func (r *RawTensor) Pin() func() {
	r.buf.retain()
	return r.buf.release
}

// String returns a short description of the tensor.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor[%s]%v", r.dtype, r.shape)
}
