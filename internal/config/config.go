// Package config defines the training configuration, loaded from YAML with
// flag overrides applied on top.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full training configuration.
type Config struct {
	Data       Data       `yaml:"data"`
	Model      Model      `yaml:"model"`
	Train      Train      `yaml:"train"`
	Checkpoint Checkpoint `yaml:"checkpoint"`
}

// Data selects the training data source. With Synthetic true the IDX paths
// are ignored and a generated dataset of the given size is used instead.
type Data struct {
	Images      string  `yaml:"images"`
	Labels      string  `yaml:"labels"`
	TestImages  string  `yaml:"test_images"`
	TestLabels  string  `yaml:"test_labels"`
	ValFraction float64 `yaml:"val_fraction"`

	Synthetic      bool `yaml:"synthetic"`
	SyntheticCount int  `yaml:"synthetic_count"`
}

// Model describes the network architecture: a stack of fully connected
// layers with the given hidden widths and activation between them.
type Model struct {
	Hidden     []int  `yaml:"hidden"`
	Activation string `yaml:"activation"`
	Classes    int    `yaml:"classes"`
}

// Train holds the optimization hyperparameters.
type Train struct {
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	Optimizer    string  `yaml:"optimizer"`
	LearningRate float64 `yaml:"learning_rate"`
	Momentum     float64 `yaml:"momentum"`
	WeightDecay  float64 `yaml:"weight_decay"`
	Seed         int64   `yaml:"seed"`
	LogEvery     int     `yaml:"log_every"`
}

// Checkpoint controls checkpoint output.
type Checkpoint struct {
	Dir    string `yaml:"dir"`
	Every  int    `yaml:"every"`
	Resume string `yaml:"resume"`
}

// Default returns a configuration that trains a small MLP on synthetic
// data, so `mint train` works out of the box.
func Default() Config {
	return Config{
		Data: Data{
			ValFraction:    0.1,
			Synthetic:      true,
			SyntheticCount: 4096,
		},
		Model: Model{
			Hidden:     []int{128, 64},
			Activation: "relu",
			Classes:    10,
		},
		Train: Train{
			Epochs:       5,
			BatchSize:    64,
			Optimizer:    "sgd",
			LearningRate: 0.1,
			Momentum:     0.9,
			Seed:         42,
			LogEvery:     50,
		},
		Checkpoint: Checkpoint{
			Dir:   "checkpoints",
			Every: 1,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected so a
// typo in a config file fails loudly instead of silently using a default.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks invariants the rest of the program assumes.
func (c *Config) Validate() error {
	if !c.Data.Synthetic {
		if c.Data.Images == "" || c.Data.Labels == "" {
			return fmt.Errorf("data: images and labels paths are required unless synthetic is set")
		}
	} else if c.Data.SyntheticCount <= 0 {
		return fmt.Errorf("data: synthetic_count must be positive, got %d", c.Data.SyntheticCount)
	}
	if c.Data.ValFraction < 0 || c.Data.ValFraction >= 1 {
		return fmt.Errorf("data: val_fraction %g outside [0, 1)", c.Data.ValFraction)
	}
	if c.Model.Classes < 2 {
		return fmt.Errorf("model: need at least 2 classes, got %d", c.Model.Classes)
	}
	for _, h := range c.Model.Hidden {
		if h <= 0 {
			return fmt.Errorf("model: hidden width %d must be positive", h)
		}
	}
	switch c.Model.Activation {
	case "relu", "sigmoid", "tanh":
	default:
		return fmt.Errorf("model: unknown activation %q", c.Model.Activation)
	}
	if c.Train.Epochs <= 0 {
		return fmt.Errorf("train: epochs must be positive, got %d", c.Train.Epochs)
	}
	if c.Train.BatchSize <= 0 {
		return fmt.Errorf("train: batch_size must be positive, got %d", c.Train.BatchSize)
	}
	if c.Train.LearningRate <= 0 {
		return fmt.Errorf("train: learning_rate must be positive, got %g", c.Train.LearningRate)
	}
	switch c.Train.Optimizer {
	case "sgd", "adam":
	default:
		return fmt.Errorf("train: unknown optimizer %q", c.Train.Optimizer)
	}
	if c.Checkpoint.Every < 0 {
		return fmt.Errorf("checkpoint: every must be non-negative, got %d", c.Checkpoint.Every)
	}
	return nil
}
