package tensor

import (
	"testing"
)

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Int64, 8},
		{Uint8, 1},
	}
	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestShapeNumElements(t *testing.T) {
	if got := (Shape{2, 3, 4}).NumElements(); got != 24 {
		t.Errorf("NumElements() = %d, want 24", got)
	}
	if got := (Shape{}).NumElements(); got != 1 {
		t.Errorf("empty shape NumElements() = %d, want 1", got)
	}
}

func TestShapeStrides(t *testing.T) {
	got := Shape{2, 3, 4}.Strides()
	want := []int{12, 4, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Strides() = %v, want %v", got, want)
		}
	}
}

func TestBroadcast(t *testing.T) {
	tests := []struct {
		a, b, want Shape
		needed     bool
		wantErr    bool
	}{
		{Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, false, false},
		{Shape{2, 3}, Shape{3}, Shape{2, 3}, true, false},
		{Shape{2, 1}, Shape{1, 3}, Shape{2, 3}, true, false},
		{Shape{4, 1, 5}, Shape{3, 1}, Shape{4, 3, 5}, true, false},
		{Shape{2, 3}, Shape{2, 4}, nil, false, true},
	}
	for _, tt := range tests {
		got, needed, err := Broadcast(tt.a, tt.b)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Broadcast(%v, %v): expected error", tt.a, tt.b)
			}
			continue
		}
		if err != nil {
			t.Errorf("Broadcast(%v, %v): %v", tt.a, tt.b, err)
			continue
		}
		if !got.Equal(tt.want) || needed != tt.needed {
			t.Errorf("Broadcast(%v, %v) = %v, %v; want %v, %v",
				tt.a, tt.b, got, needed, tt.want, tt.needed)
		}
	}
}

func TestRawTensorRefCounting(t *testing.T) {
	r := MustNewRaw(Shape{4}, Float32)
	if !r.IsUnique() {
		t.Fatal("fresh tensor should be unique")
	}

	view := r.Clone()
	if r.IsUnique() || view.IsUnique() {
		t.Fatal("shared buffer must not report unique")
	}

	unpin := r.Pin()
	unpin()

	deep := r.Copy()
	if !deep.IsUnique() {
		t.Fatal("deep copy should own its buffer")
	}
	deep.Float32s()[0] = 7
	if r.Float32s()[0] == 7 {
		t.Fatal("deep copy must not alias the source")
	}
	view.Float32s()[1] = 3
	if r.Float32s()[1] != 3 {
		t.Fatal("clone must alias the source")
	}
}

func TestRawTensorPin(t *testing.T) {
	r := MustNewRaw(Shape{2}, Float32)
	unpin := r.Pin()
	if r.IsUnique() {
		t.Fatal("pinned tensor must not report unique")
	}
	unpin()
	if !r.IsUnique() {
		t.Fatal("unpin should restore uniqueness")
	}
}

func TestSetShape(t *testing.T) {
	r := MustNewRaw(Shape{2, 3}, Float32)
	r.SetShape(Shape{3, 2})
	if !r.Shape().Equal(Shape{3, 2}) {
		t.Fatalf("SetShape: got %v", r.Shape())
	}
	defer func() {
		if recover() == nil {
			t.Fatal("SetShape with wrong element count should panic")
		}
	}()
	r.SetShape(Shape{7})
}

func TestTypedViewDTypeCheck(t *testing.T) {
	r := MustNewRaw(Shape{2}, Float32)
	defer func() {
		if recover() == nil {
			t.Fatal("Int32s on a float32 tensor should panic")
		}
	}()
	r.Int32s()
}

type noopBackend struct{ Backend }

func (noopBackend) Name() string { return "noop" }

func TestFromSliceAndIndexing(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, noopBackend{})
	if err != nil {
		t.Fatal(err)
	}
	if got := x.At(1, 2); got != 6 {
		t.Errorf("At(1, 2) = %v, want 6", got)
	}
	x.Set(9, 0, 1)
	if got := x.At(0, 1); got != 9 {
		t.Errorf("Set then At = %v, want 9", got)
	}
	if _, err := FromSlice([]float32{1, 2}, Shape{3}, noopBackend{}); err == nil {
		t.Error("FromSlice with short data should fail")
	}
}

func TestArange(t *testing.T) {
	x := Arange[int32](2, 6, noopBackend{})
	want := []int32{2, 3, 4, 5}
	data := x.Data()
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("Arange = %v, want %v", data, want)
		}
	}
}

func TestFullAndScalar(t *testing.T) {
	x := Full[float64](Shape{2, 2}, 2.5, noopBackend{})
	for _, v := range x.Data() {
		if v != 2.5 {
			t.Fatalf("Full: got %v", v)
		}
	}
	s := Scalar[float32](3, noopBackend{})
	if s.Item() != 3 {
		t.Fatalf("Scalar Item = %v", s.Item())
	}
}
