package nn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mintml/mint/internal/tensor"
)

// Sequential chains modules, feeding each one's output into the next. State
// dict keys are prefixed with the module index, "0.weight", "1.bias", so
// checkpoints survive as long as the architecture is unchanged.
type Sequential struct {
	modules []Module
}

// NewSequential builds a chain from the given modules.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Modules returns the chained modules in order.
func (s *Sequential) Modules() []Module { return s.modules }

// Forward runs x through every module in order.
func (s *Sequential) Forward(x *tensor.RawTensor) *tensor.RawTensor {
	for _, m := range s.modules {
		x = m.Forward(x)
	}
	return x
}

// Parameters concatenates the parameters of all modules in order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// StateDict merges the modules' state dicts under index prefixes.
func (s *Sequential) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	for i, m := range s.modules {
		for key, t := range m.StateDict() {
			state[strconv.Itoa(i)+"."+key] = t
		}
	}
	return state
}

// LoadStateDict splits the state by index prefix and loads each module.
func (s *Sequential) LoadStateDict(state map[string]*tensor.RawTensor) error {
	split := make([]map[string]*tensor.RawTensor, len(s.modules))
	for i := range split {
		split[i] = make(map[string]*tensor.RawTensor)
	}
	for key, t := range state {
		prefix, rest, ok := strings.Cut(key, ".")
		if !ok {
			return fmt.Errorf("sequential: key %q has no module index", key)
		}
		i, err := strconv.Atoi(prefix)
		if err != nil || i < 0 || i >= len(s.modules) {
			return fmt.Errorf("sequential: key %q does not address a module (have %d)",
				key, len(s.modules))
		}
		split[i][rest] = t
	}
	for i, m := range s.modules {
		if err := m.LoadStateDict(split[i]); err != nil {
			return fmt.Errorf("module %d: %w", i, err)
		}
	}
	return nil
}
