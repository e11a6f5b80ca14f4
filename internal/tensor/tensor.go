package tensor

import "fmt"

// Tensor is a typed tensor bound to a computation backend.
//
// Type parameters:
//   - T: element type (DType constraint)
//   - B: backend used for operations
//
// Example:
//
//	be := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{3, 4}, be)
//	y := x.Add(x)
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
	grad    *Tensor[T, B]
}

// New wraps a RawTensor with a typed handle.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	if raw.DType() != TypeOf[T]() {
		panic(fmt.Sprintf("tensor: raw dtype %s does not match element type %s", raw.DType(), TypeOf[T]()))
	}
	return &Tensor[T, B]{raw: raw, backend: b}
}

// FromSlice builds a tensor by copying data into fresh storage.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, TypeOf[T]())
	if err != nil {
		return nil, err
	}
	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor[T, B]) Shape() Shape { return t.raw.Shape() }

// DType returns the element type.
func (t *Tensor[T, B]) DType() DataType { return t.raw.DType() }

// NumElements returns the total element count.
func (t *Tensor[T, B]) NumElements() int { return t.raw.NumElements() }

// Raw exposes the underlying RawTensor for backend-level code.
func (t *Tensor[T, B]) Raw() *RawTensor { return t.raw }

// Backend returns the computation backend.
func (t *Tensor[T, B]) Backend() B { return t.backend }

// Grad returns the gradient tensor, or nil before a backward pass.
func (t *Tensor[T, B]) Grad() *Tensor[T, B] { return t.grad }

// SetGrad attaches a gradient tensor.
func (t *Tensor[T, B]) SetGrad(g *Tensor[T, B]) { t.grad = g }

// Data returns a typed slice over the tensor's storage. The slice aliases
// the tensor: writes are visible immediately.
func (t *Tensor[T, B]) Data() []T {
	switch TypeOf[T]() {
	case Float32:
		return any(t.raw.Float32s()).([]T)
	case Float64:
		return any(t.raw.Float64s()).([]T)
	case Int32:
		return any(t.raw.Int32s()).([]T)
	case Int64:
		return any(t.raw.Int64s()).([]T)
	case Uint8:
		return any(t.raw.Uint8s()).([]T)
	default:
		panic("tensor: unsupported element type")
	}
}

// Item returns the value of a single-element tensor.
func (t *Tensor[T, B]) Item() T {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item requires a single-element tensor, got shape %v", t.Shape()))
	}
	return t.Data()[0]
}

// At returns the element at the given indices.
func (t *Tensor[T, B]) At(indices ...int) T {
	return t.Data()[t.flatIndex(indices)]
}

// Set writes the element at the given indices.
func (t *Tensor[T, B]) Set(value T, indices ...int) {
	t.Data()[t.flatIndex(indices)] = value
}

func (t *Tensor[T, B]) flatIndex(indices []int) int {
	shape := t.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(fmt.Sprintf("index %d out of range for dimension %d (size %d)", idx, i, shape[i]))
		}
		offset += idx * t.raw.stride[i]
	}
	return offset
}

// Clone returns a deep copy without gradient state.
func (t *Tensor[T, B]) Clone() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.raw.Copy(), backend: t.backend}
}

// Detach returns a view over the same data with no gradient attached.
func (t *Tensor[T, B]) Detach() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.raw, backend: t.backend}
}

// String returns a short description of the tensor.
func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s]%v", t.DType(), t.Shape())
}
