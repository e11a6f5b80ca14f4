package trainer

import (
	"fmt"
	"math/rand"

	"github.com/mintml/mint/internal/config"
	"github.com/mintml/mint/internal/nn"
	"github.com/mintml/mint/internal/tensor"
)

// BuildModel constructs the MLP the configuration describes: a linear layer
// per hidden width with the chosen activation after it, then a final linear
// layer projecting to the class count.
func BuildModel(b tensor.Backend, in int, cfg config.Model, rng *rand.Rand) *nn.Sequential {
	var modules []nn.Module
	width := in
	for _, h := range cfg.Hidden {
		modules = append(modules, nn.NewLinear(b, width, h, rng), activation(b, cfg.Activation))
		width = h
	}
	modules = append(modules, nn.NewLinear(b, width, cfg.Classes, rng))
	return nn.NewSequential(modules...)
}

func activation(b tensor.Backend, name string) nn.Module {
	switch name {
	case "relu":
		return nn.NewReLU(b)
	case "sigmoid":
		return nn.NewSigmoid(b)
	case "tanh":
		return nn.NewTanh(b)
	}
	panic(fmt.Sprintf("trainer: unknown activation %q", name))
}
