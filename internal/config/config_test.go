package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverDefaults(t *testing.T) {
	path := writeConfig(t, `
model:
  hidden: [32]
  activation: tanh
train:
  epochs: 2
  learning_rate: 0.01
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []int{32}, cfg.Model.Hidden)
	assert.Equal(t, "tanh", cfg.Model.Activation)
	assert.Equal(t, 2, cfg.Train.Epochs)
	assert.Equal(t, 0.01, cfg.Train.LearningRate)

	// Untouched keys keep their defaults.
	assert.Equal(t, 64, cfg.Train.BatchSize)
	assert.Equal(t, "sgd", cfg.Train.Optimizer)
	assert.True(t, cfg.Data.Synthetic)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
train:
  epochs: 2
  learing_rate: 0.01
`)
	_, err := Load(path)
	assert.Error(t, err, "typo should not be silently ignored")
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
train:
  optimizer: rmsprop
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "optimizer")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no data paths", func(c *Config) { c.Data.Synthetic = false }},
		{"bad synthetic count", func(c *Config) { c.Data.SyntheticCount = 0 }},
		{"val fraction too high", func(c *Config) { c.Data.ValFraction = 1.0 }},
		{"one class", func(c *Config) { c.Model.Classes = 1 }},
		{"zero hidden width", func(c *Config) { c.Model.Hidden = []int{64, 0} }},
		{"bad activation", func(c *Config) { c.Model.Activation = "swish" }},
		{"zero epochs", func(c *Config) { c.Train.Epochs = 0 }},
		{"zero batch size", func(c *Config) { c.Train.BatchSize = 0 }},
		{"negative learning rate", func(c *Config) { c.Train.LearningRate = -0.1 }},
		{"bad optimizer", func(c *Config) { c.Train.Optimizer = "lbfgs" }},
		{"negative checkpoint every", func(c *Config) { c.Checkpoint.Every = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	epochs := 20
	lr := 0.005
	dir := "out"
	synthetic := false

	cfg.Apply(Overrides{
		Epochs:       &epochs,
		LearningRate: &lr,
		Dir:          &dir,
		Synthetic:    &synthetic,
	})

	assert.Equal(t, 20, cfg.Train.Epochs)
	assert.Equal(t, 0.005, cfg.Train.LearningRate)
	assert.Equal(t, "out", cfg.Checkpoint.Dir)
	assert.False(t, cfg.Data.Synthetic)

	// Nil overrides leave values alone.
	assert.Equal(t, 64, cfg.Train.BatchSize)
	assert.Equal(t, "sgd", cfg.Train.Optimizer)
}

func TestApplyCanBreakValidation(t *testing.T) {
	cfg := Default()
	zero := 0
	cfg.Apply(Overrides{Epochs: &zero})
	assert.Error(t, cfg.Validate())
}
