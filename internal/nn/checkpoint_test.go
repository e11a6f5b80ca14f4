package nn

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintml/mint/internal/backend/cpu"
	"github.com/mintml/mint/internal/serialization"
	"github.com/mintml/mint/internal/tensor"
)

// fakeOptimizer records whether its state survived a round trip.
type fakeOptimizer struct {
	state map[string]*tensor.RawTensor
}

func (f *fakeOptimizer) Name() string { return "fake" }
func (f *fakeOptimizer) StateDict() map[string]*tensor.RawTensor {
	return f.state
}
func (f *fakeOptimizer) LoadStateDict(state map[string]*tensor.RawTensor) error {
	f.state = state
	return nil
}

func buildTestModel(t *testing.T, seed int64, hidden int) *Sequential {
	t.Helper()
	b := cpu.New()
	rng := rand.New(rand.NewSource(seed))
	return NewSequential(
		NewLinear(b, 6, hidden, rng),
		NewReLU(b),
		NewLinear(b, hidden, 3, rng),
	)
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.mint")

	src := buildTestModel(t, 1, 5)
	velocity := tensor.MustNewRaw(tensor.Shape{5, 6}, tensor.Float32)
	velocity.Float32s()[0] = 0.25
	opt := &fakeOptimizer{state: map[string]*tensor.RawTensor{"velocity.0": velocity}}

	meta := serialization.Meta{
		RunID:     "run-1",
		Epoch:     7,
		Step:      1400,
		Loss:      0.123,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, SaveCheckpoint(path, src, opt, meta))

	dst := buildTestModel(t, 99, 5)
	restoredOpt := &fakeOptimizer{}
	got, err := LoadCheckpoint(path, dst, restoredOpt)
	require.NoError(t, err)

	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 7, got.Epoch)
	assert.Equal(t, int64(1400), got.Step)
	assert.InDelta(t, 0.123, got.Loss, 1e-9)
	assert.Equal(t, "fake", got.Optimizer)

	for key, want := range src.StateDict() {
		assert.Equal(t, want.Float32s(), dst.StateDict()[key].Float32s(), key)
	}
	require.Contains(t, restoredOpt.state, "velocity.0")
	assert.InDelta(t, 0.25, restoredOpt.state["velocity.0"].Float32s()[0], 1e-9)
}

func TestCheckpointModelOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.mint")
	src := buildTestModel(t, 1, 4)
	require.NoError(t, SaveCheckpoint(path, src, nil, serialization.Meta{Epoch: 1}))

	dst := buildTestModel(t, 2, 4)
	_, err := LoadCheckpoint(path, dst, nil)
	require.NoError(t, err)

	x := tensor.MustNewRaw(tensor.Shape{1, 6}, tensor.Float32)
	for i := range x.Float32s() {
		x.Float32s()[i] = float32(i) * 0.1
	}
	assert.Equal(t, src.Forward(x.Copy()).Float32s(), dst.Forward(x.Copy()).Float32s(),
		"restored model must produce identical output")
}

func TestCheckpointArchitectureMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.mint")
	require.NoError(t, SaveCheckpoint(path, buildTestModel(t, 1, 5), nil, serialization.Meta{}))

	wrong := buildTestModel(t, 1, 9)
	_, err := LoadCheckpoint(path, wrong, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "weight", "error should name the offending tensor")
}

func TestCheckpointOptimizerFamilyMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.mint")
	model := buildTestModel(t, 1, 4)
	opt := &fakeOptimizer{state: map[string]*tensor.RawTensor{}}
	require.NoError(t, SaveCheckpoint(path, model, opt, serialization.Meta{}))

	other := &otherOptimizer{}
	_, err := LoadCheckpoint(path, buildTestModel(t, 1, 4), other)
	assert.Error(t, err)
}

type otherOptimizer struct{ fakeOptimizer }

func (o *otherOptimizer) Name() string { return "other" }
