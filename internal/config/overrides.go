package config

// Overrides carries optional command-line values layered over the loaded
// configuration. Nil fields leave the configured value alone.
type Overrides struct {
	Epochs       *int
	BatchSize    *int
	Optimizer    *string
	LearningRate *float64
	Seed         *int64
	Dir          *string
	Resume       *string
	Synthetic    *bool
}

// Apply copies the set overrides into the configuration. Validate again
// afterwards; an override can break an invariant the file satisfied.
func (c *Config) Apply(o Overrides) {
	if o.Epochs != nil {
		c.Train.Epochs = *o.Epochs
	}
	if o.BatchSize != nil {
		c.Train.BatchSize = *o.BatchSize
	}
	if o.Optimizer != nil {
		c.Train.Optimizer = *o.Optimizer
	}
	if o.LearningRate != nil {
		c.Train.LearningRate = *o.LearningRate
	}
	if o.Seed != nil {
		c.Train.Seed = *o.Seed
	}
	if o.Dir != nil {
		c.Checkpoint.Dir = *o.Dir
	}
	if o.Resume != nil {
		c.Checkpoint.Resume = *o.Resume
	}
	if o.Synthetic != nil {
		c.Data.Synthetic = *o.Synthetic
	}
}
