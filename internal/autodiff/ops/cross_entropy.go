package ops

import (
	"github.com/mintml/mint/internal/tensor"
)

// CrossEntropy records mean negative log-likelihood loss from raw logits and
// int32 class targets. Inputs are [logits, targets]; targets carry no
// gradient.
type CrossEntropy struct{ base }

func NewCrossEntropy(logits, targets, out *tensor.RawTensor) *CrossEntropy {
	return &CrossEntropy{base{"crossentropy", []*tensor.RawTensor{logits, targets}, out}}
}

// Backward computes dL/dlogits = (softmax(logits) - onehot(targets)) / batch,
// scaled by the incoming scalar gradient. Fusing softmax into the gradient
// this way avoids the ill-conditioned softmax Jacobian.
func (op *CrossEntropy) Backward(be tensor.Backend, grad *tensor.RawTensor) []*tensor.RawTensor {
	logits, targets := op.inputs[0], op.inputs[1]
	rows := logits.Shape()[0]
	cols := logits.Shape()[1]
	scale := scalarValue(grad) / float64(rows)

	sm := be.Softmax(logits)
	idx := targets.Int32s()

	switch logits.DType() {
	case tensor.Float32:
		data := sm.Float32s()
		for r := 0; r < rows; r++ {
			data[r*cols+int(idx[r])] -= 1
		}
	case tensor.Float64:
		data := sm.Float64s()
		for r := 0; r < rows; r++ {
			data[r*cols+int(idx[r])] -= 1
		}
	}
	return []*tensor.RawTensor{be.MulScalar(sm, scale), nil}
}
