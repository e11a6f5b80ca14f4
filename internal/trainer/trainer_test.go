package trainer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintml/mint/internal/config"
	"github.com/mintml/mint/internal/serialization"
)

// testConfig returns a configuration small enough for a fast synthetic run.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.SyntheticCount = 256
	cfg.Model.Hidden = []int{16}
	cfg.Train.Epochs = 2
	cfg.Train.BatchSize = 32
	cfg.Train.LogEvery = 0
	cfg.Checkpoint.Dir = t.TempDir()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRunReducesLoss(t *testing.T) {
	cfg := testConfig(t)
	tr, err := New(cfg)
	require.NoError(t, err)

	before, _ := tr.Evaluate(tr.val)
	require.NoError(t, tr.Run(context.Background()))
	after, acc := tr.Evaluate(tr.val)

	assert.Less(t, after, before, "validation loss should drop from %.4f", before)
	assert.Greater(t, acc, 0.0)
	assert.Equal(t, cfg.Train.Epochs, tr.epoch)
}

func TestRunWritesCheckpoints(t *testing.T) {
	cfg := testConfig(t)
	tr, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, tr.Run(context.Background()))

	for _, name := range []string{"epoch_001.mint", "epoch_002.mint", "latest.mint"} {
		_, err := os.Stat(filepath.Join(cfg.Checkpoint.Dir, name))
		assert.NoError(t, err, "missing %s", name)
	}

	meta, infos, err := serialization.Inspect(filepath.Join(cfg.Checkpoint.Dir, "latest.mint"))
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Epoch)
	assert.Equal(t, tr.runID, meta.RunID)
	assert.NotEmpty(t, infos)
}

func TestResumeContinuesRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Train.Epochs = 1
	first, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Run(context.Background()))

	cfg.Train.Epochs = 2
	cfg.Checkpoint.Resume = filepath.Join(cfg.Checkpoint.Dir, "latest.mint")
	second, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, first.runID, second.runID, "resume keeps the run identity")
	assert.Equal(t, 1, second.epoch)
	assert.Equal(t, first.step, second.step)

	// Resumed weights match the checkpointed ones.
	want := first.model.StateDict()
	got := second.model.StateDict()
	require.Len(t, got, len(want))
	for name, w := range want {
		assert.Equal(t, w.Float32s(), got[name].Float32s(), "tensor %s", name)
	}

	require.NoError(t, second.Run(context.Background()))
	assert.Equal(t, 2, second.epoch)
}

func TestResumeMissingCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Checkpoint.Resume = filepath.Join(cfg.Checkpoint.Dir, "absent.mint")
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestRunHonorsCancellation(t *testing.T) {
	cfg := testConfig(t)
	tr, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = tr.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// A final checkpoint is still written on the way out.
	_, err = os.Stat(filepath.Join(cfg.Checkpoint.Dir, "latest.mint"))
	assert.NoError(t, err)
}

func TestEvalFromCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Train.Epochs = 1
	tr, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, tr.Run(context.Background()))

	err = Eval(cfg, filepath.Join(cfg.Checkpoint.Dir, "latest.mint"))
	assert.NoError(t, err)
}

func TestBuildModelShape(t *testing.T) {
	cfg := testConfig(t)
	tr, err := New(cfg)
	require.NoError(t, err)

	state := tr.model.StateDict()
	// One hidden layer of 16 plus the output layer.
	require.Contains(t, state, "0.weight")
	require.Contains(t, state, "0.bias")
	require.Contains(t, state, "2.weight")
	require.Contains(t, state, "2.bias")

	assert.Equal(t, 16*28*28, state["0.weight"].NumElements())
	assert.Equal(t, 10*16, state["2.weight"].NumElements())
	assert.Equal(t, 16*28*28+16+10*16+10, countParams(tr.model))
}
