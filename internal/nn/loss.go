package nn

import (
	"fmt"

	"github.com/mintml/mint/internal/tensor"
)

// MSELoss computes mean squared error between prediction and target, as a
// [1] scalar. Gradients flow to pred only when b records a tape; target is
// treated the same way by the tape but normally holds constants.
func MSELoss(b tensor.Backend, pred, target *tensor.RawTensor) *tensor.RawTensor {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("mse: prediction %v and target %v differ", pred.Shape(), target.Shape()))
	}
	diff := b.Sub(pred, target)
	return b.Mean(b.Mul(diff, diff))
}

// CrossEntropyLoss computes mean negative log-likelihood from raw logits
// [batch, classes] and int32 class indices [batch], as a [1] scalar.
func CrossEntropyLoss(b tensor.Backend, logits, targets *tensor.RawTensor) *tensor.RawTensor {
	return b.CrossEntropy(logits, targets)
}

// Accuracy returns the fraction of rows where the argmax of logits equals
// the int32 target class.
func Accuracy(b tensor.Backend, logits, targets *tensor.RawTensor) float64 {
	pred := b.Argmax(logits, 1)
	ps, ts := pred.Int32s(), targets.Int32s()
	if len(ps) != len(ts) {
		panic(fmt.Sprintf("accuracy: %d predictions vs %d targets", len(ps), len(ts)))
	}
	correct := 0
	for i := range ps {
		if ps[i] == ts[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(ps))
}
