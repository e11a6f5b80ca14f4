package serialization

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintml/mint/internal/tensor"
)

func sampleTensors(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()
	w := tensor.MustNewRaw(tensor.Shape{2, 3}, tensor.Float32)
	copy(w.Float32s(), []float32{1, 2, 3, 4, 5, 6})
	b := tensor.MustNewRaw(tensor.Shape{3}, tensor.Float32)
	copy(b.Float32s(), []float32{-1, 0, 1})
	steps := tensor.MustNewRaw(tensor.Shape{1}, tensor.Int64)
	steps.Int64s()[0] = 42
	return map[string]*tensor.RawTensor{
		"model.weight": w,
		"model.bias":   b,
		"optim.t":      steps,
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	meta := Meta{
		RunID:        "abc",
		Epoch:        3,
		Step:         900,
		Loss:         0.5,
		Optimizer:    "sgd",
		LearningRate: 0.1,
		CreatedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, meta, sampleTensors(t)))

	gotMeta, got, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, meta, gotMeta)
	require.Len(t, got, 3)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, got["model.weight"].Float32s())
	assert.True(t, got["model.weight"].Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float32{-1, 0, 1}, got["model.bias"].Float32s())
	assert.Equal(t, int64(42), got["optim.t"].Int64s()[0])
}

func TestWriteIsDeterministic(t *testing.T) {
	meta := Meta{RunID: "x", CreatedAt: time.Unix(0, 0).UTC()}
	var a, b bytes.Buffer
	require.NoError(t, Write(&a, meta, sampleTensors(t)))
	require.NoError(t, Write(&b, meta, sampleTensors(t)))
	assert.Equal(t, a.Bytes(), b.Bytes(), "same state must serialize identically")
}

func TestTensorAlignment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Meta{}, sampleTensors(t)))

	_, infos, err := inspectBytes(t, buf.Bytes())
	require.NoError(t, err)
	for _, info := range infos {
		assert.Zerof(t, info.Offset%Alignment, "tensor %q at offset %d", info.Name, info.Offset)
	}
}

func inspectBytes(t *testing.T, data []byte) (Meta, []TensorInfo, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inspect.mint")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return Inspect(path)
}

func TestReadBadMagic(t *testing.T) {
	data := make([]byte, 128)
	copy(data, "JUNK")
	_, _, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Meta{}, sampleTensors(t)))

	data := buf.Bytes()
	_, _, err := Read(bytes.NewReader(data[:len(data)-10]))
	assert.ErrorIs(t, err, ErrTruncated)

	_, _, err = Read(bytes.NewReader(data[:20]))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadDetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Meta{}, sampleTensors(t)))

	data := buf.Bytes()
	data[len(data)-1] ^= 0xff
	_, _, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestValidateHeaderRejects(t *testing.T) {
	valid := func() *header {
		return &header{Tensors: []TensorInfo{
			{Name: "a", DType: "float32", Shape: []int{4}, Offset: 0, Size: 16},
			{Name: "b", DType: "float32", Shape: []int{4}, Offset: 64, Size: 16},
		}}
	}

	h := valid()
	require.NoError(t, validateHeader(h, 80))

	h = valid()
	h.Tensors[1].Name = "a"
	assert.Error(t, validateHeader(h, 80), "duplicate name")

	h = valid()
	h.Tensors[1].Offset = 8
	assert.Error(t, validateHeader(h, 80), "unaligned offset")

	h = valid()
	h.Tensors[1].Offset = 0
	assert.Error(t, validateHeader(h, 80), "overlapping payloads")

	h = valid()
	h.Tensors[1].Size = 999
	assert.Error(t, validateHeader(h, 80), "size/shape mismatch")

	h = valid()
	h.Tensors[1].Offset = 1 << 40
	assert.Error(t, validateHeader(h, 80), "out of bounds")

	h = valid()
	h.Tensors[0].DType = "complex128"
	assert.Error(t, validateHeader(h, 80), "unknown dtype")

	h = valid()
	h.Tensors[0].Name = "../escape"
	assert.Error(t, validateHeader(h, 80), "path characters in name")

	h = valid()
	h.Tensors[0].Name = ""
	assert.Error(t, validateHeader(h, 80), "empty name")

	h = valid()
	h.Tensors[0].Shape = []int{-1}
	assert.Error(t, validateHeader(h, 80), "negative dimension")
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ckpt.mint")

	require.NoError(t, WriteFile(path, Meta{Epoch: 1}, sampleTensors(t)))
	require.NoError(t, WriteFile(path, Meta{Epoch: 2}, sampleTensors(t)))

	meta, _, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Epoch)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.mint")
	require.NoError(t, WriteFile(path, Meta{RunID: "r", Epoch: 4}, sampleTensors(t)))

	meta, infos, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "r", meta.RunID)
	assert.Equal(t, 4, meta.Epoch)
	require.Len(t, infos, 3)

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	assert.ElementsMatch(t, []string{"model.weight", "model.bias", "optim.t"}, names)
}

func TestEmptyTensorSet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Meta{Epoch: 1}, nil))
	meta, got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Epoch)
	assert.Empty(t, got)
}
