package tensor

// Backend executes tensor computation. The interface covers the operations a
// feed-forward network needs; anything shape-preserving and elementwise
// supports broadcasting per Broadcast.
//
// Implementations:
//   - cpu.Backend: pure Go reference implementation
//   - autodiff.Backend: decorator that records operations for backprop
type Backend interface {
	// Elementwise binary operations with broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul multiplies two 2-D tensors: [m, k] @ [k, n] -> [m, n].
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, shape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Elementwise scalar operations.
	AddScalar(x *RawTensor, s float64) *RawTensor
	MulScalar(x *RawTensor, s float64) *RawTensor

	// Elementwise math.
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor

	// Activations.
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor

	// Softmax along the last dimension of a 2-D tensor.
	Softmax(x *RawTensor) *RawTensor

	// CrossEntropy computes mean negative log-likelihood loss from raw
	// logits [batch, classes] and int32 class indices [batch]. Returns a
	// scalar tensor of shape [1].
	CrossEntropy(logits, targets *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor
	Mean(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	Argmax(x *RawTensor, dim int) *RawTensor

	// Name identifies the backend in logs and error messages.
	Name() string
}
