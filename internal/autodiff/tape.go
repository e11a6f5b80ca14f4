package autodiff

import (
	"fmt"
	"sync"

	"github.com/mintml/mint/internal/autodiff/ops"
	"github.com/mintml/mint/internal/tensor"
)

// Tape records operations during the forward pass and replays them in
// reverse to compute gradients. A tape is safe for concurrent recording,
// though a typical training step records from a single goroutine.
type Tape struct {
	mu     sync.Mutex
	ops    []ops.Operation
	unpins []func()
}

// NewTape returns an empty tape.
func NewTape() *Tape {
	return &Tape{}
}

// Record appends an operation. The unpin callbacks release input buffers
// pinned for the backward pass; they run when the tape is reset.
func (t *Tape) Record(op ops.Operation, unpins ...func()) {
	t.mu.Lock()
	t.ops = append(t.ops, op)
	t.unpins = append(t.unpins, unpins...)
	t.mu.Unlock()
}

// Len returns the number of recorded operations.
func (t *Tape) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ops)
}

// Reset discards all recorded operations and releases pinned inputs. Call it
// after each optimizer step; gradients from a stale tape are meaningless.
func (t *Tape) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, unpin := range t.unpins {
		unpin()
	}
	t.ops = nil
	t.unpins = nil
}

// Backward walks the tape in reverse from loss, accumulating gradients. The
// loss must be a [1] scalar produced by a recorded operation. The returned
// map is keyed by the raw tensors that appeared as operation inputs or
// outputs; look up parameter gradients by their raw tensor.
//
// The backend must be a non-recording backend: gradient computation itself
// is not taped.
func (t *Tape) Backward(b tensor.Backend, loss *tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.ops) == 0 {
		return nil, fmt.Errorf("backward: tape is empty")
	}
	if loss.NumElements() != 1 {
		return nil, fmt.Errorf("backward: loss must be a scalar, got shape %v", loss.Shape())
	}

	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	grads[loss] = onesScalar(loss.DType())

	seeded := false
	for i := len(t.ops) - 1; i >= 0; i-- {
		op := t.ops[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			// This branch of the graph does not feed the loss.
			continue
		}
		seeded = true
		// Backward implementations feed outGrad through backend ops, whose
		// in-place fast path would otherwise overwrite it between reads.
		unpin := outGrad.Pin()
		inGrads := op.Backward(b, outGrad)
		unpin()
		inputs := op.Inputs()
		if len(inGrads) != len(inputs) {
			return nil, fmt.Errorf("backward: %s returned %d gradients for %d inputs",
				op.Name(), len(inGrads), len(inputs))
		}
		for j, g := range inGrads {
			if g == nil {
				continue
			}
			if g == outGrad {
				// Identity backward paths hand outGrad straight through.
				// Each map entry must own its tensor: accumulation mutates
				// entries in place once they are unique.
				g = g.Copy()
			}
			in := inputs[j]
			if !g.Shape().Equal(in.Shape()) {
				return nil, fmt.Errorf("backward: %s produced gradient %v for input %v",
					op.Name(), g.Shape(), in.Shape())
			}
			if existing, ok := grads[in]; ok {
				grads[in] = b.Add(existing, g)
			} else {
				grads[in] = g
			}
		}
	}
	if !seeded {
		return nil, fmt.Errorf("backward: loss was not produced by a recorded operation")
	}
	return grads, nil
}

func onesScalar(dtype tensor.DataType) *tensor.RawTensor {
	out := tensor.MustNewRaw(tensor.Shape{1}, dtype)
	switch dtype {
	case tensor.Float32:
		out.Float32s()[0] = 1
	case tensor.Float64:
		out.Float64s()[0] = 1
	}
	return out
}
