package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintml/mint/internal/nn"
	"github.com/mintml/mint/internal/tensor"
)

func param(t *testing.T, name string, values []float32) *nn.Parameter {
	t.Helper()
	raw := tensor.MustNewRaw(tensor.Shape{len(values)}, tensor.Float32)
	copy(raw.Float32s(), values)
	return nn.NewParameter(name, raw)
}

func setGrad(p *nn.Parameter, values []float32) {
	g := tensor.MustNewRaw(p.Value.Shape(), tensor.Float32)
	copy(g.Float32s(), values)
	p.Grad = g
}

func TestSGDVanillaStep(t *testing.T) {
	p := param(t, "w", []float32{1, 2})
	setGrad(p, []float32{0.5, -0.5})

	s := NewSGD([]*nn.Parameter{p}, 0.1, 0, 0)
	require.NoError(t, s.Step())

	assert.InDelta(t, 0.95, p.Value.Float32s()[0], 1e-6)
	assert.InDelta(t, 2.05, p.Value.Float32s()[1], 1e-6)
	assert.Empty(t, s.StateDict(), "no momentum, no state")
}

func TestSGDMomentum(t *testing.T) {
	p := param(t, "w", []float32{0})
	s := NewSGD([]*nn.Parameter{p}, 1, 0.5, 0)

	// Constant gradient 1: updates are 1, 1.5, 1.75, ...
	setGrad(p, []float32{1})
	require.NoError(t, s.Step())
	assert.InDelta(t, -1, p.Value.Float32s()[0], 1e-6)

	setGrad(p, []float32{1})
	require.NoError(t, s.Step())
	assert.InDelta(t, -2.5, p.Value.Float32s()[0], 1e-6)

	state := s.StateDict()
	require.Contains(t, state, "velocity.0")
	assert.InDelta(t, 1.5, state["velocity.0"].Float32s()[0], 1e-6)
}

func TestSGDWeightDecay(t *testing.T) {
	p := param(t, "w", []float32{2})
	setGrad(p, []float32{0})
	s := NewSGD([]*nn.Parameter{p}, 0.1, 0, 0.5)
	require.NoError(t, s.Step())
	// w -= lr * wd * w = 2 - 0.1*0.5*2
	assert.InDelta(t, 1.9, p.Value.Float32s()[0], 1e-6)
}

func TestSGDSkipsNilGrads(t *testing.T) {
	p := param(t, "w", []float32{1})
	s := NewSGD([]*nn.Parameter{p}, 0.1, 0, 0)
	require.NoError(t, s.Step())
	assert.Equal(t, float32(1), p.Value.Float32s()[0])
}

func TestSGDStateRoundTrip(t *testing.T) {
	p1 := param(t, "a", []float32{0, 0})
	p2 := param(t, "b", []float32{0})
	src := NewSGD([]*nn.Parameter{p1, p2}, 0.1, 0.9, 0)
	setGrad(p1, []float32{1, 2})
	setGrad(p2, []float32{3})
	require.NoError(t, src.Step())

	dst := NewSGD([]*nn.Parameter{p1, p2}, 0.1, 0.9, 0)
	require.NoError(t, dst.LoadStateDict(src.StateDict()))
	assert.InDelta(t, 1.0, dst.StateDict()["velocity.0"].Float32s()[0], 1e-6)
	assert.InDelta(t, 3.0, dst.StateDict()["velocity.1"].Float32s()[0], 1e-6)

	bad := map[string]*tensor.RawTensor{
		"velocity.9": tensor.MustNewRaw(tensor.Shape{1}, tensor.Float32),
	}
	assert.ErrorIs(t, dst.LoadStateDict(bad), ErrStateMismatch)
}

func TestAdamFirstStep(t *testing.T) {
	p := param(t, "w", []float32{1})
	setGrad(p, []float32{0.5})
	a := NewAdam([]*nn.Parameter{p}, 0.001, 0, 0, 0)
	require.NoError(t, a.Step())

	// On the first step the bias corrections cancel: the update is
	// lr * g / (|g| + eps) = lr, independent of gradient scale.
	got := float64(p.Value.Float32s()[0])
	assert.InDelta(t, 1-0.001, got, 1e-6)
}

func TestAdamGradientScaleInvariantFirstStep(t *testing.T) {
	small := param(t, "s", []float32{1})
	big := param(t, "b", []float32{1})
	setGrad(small, []float32{1e-4})
	setGrad(big, []float32{1e4})

	a := NewAdam([]*nn.Parameter{small, big}, 0.01, 0, 0, 0)
	require.NoError(t, a.Step())
	assert.InDelta(t, small.Value.Float32s()[0], big.Value.Float32s()[0], 1e-5)
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	// Minimize f(w) = (w - 3)^2 from w = 0.
	p := param(t, "w", []float32{0})
	a := NewAdam([]*nn.Parameter{p}, 0.1, 0, 0, 0)

	for i := 0; i < 300; i++ {
		w := p.Value.Float32s()[0]
		setGrad(p, []float32{2 * (w - 3)})
		require.NoError(t, a.Step())
	}
	assert.InDelta(t, 3, p.Value.Float32s()[0], 0.05)
}

func TestAdamStateRoundTrip(t *testing.T) {
	p := param(t, "w", []float32{1, 2})
	src := NewAdam([]*nn.Parameter{p}, 0.001, 0, 0, 0)
	setGrad(p, []float32{0.1, -0.1})
	require.NoError(t, src.Step())
	require.NoError(t, src.Step())

	state := src.StateDict()
	require.Contains(t, state, "m.0")
	require.Contains(t, state, "v.0")
	require.Contains(t, state, "t")
	assert.Equal(t, int64(2), state["t"].Int64s()[0])

	q := param(t, "w", []float32{1, 2})
	dst := NewAdam([]*nn.Parameter{q}, 0.001, 0, 0, 0)
	require.NoError(t, dst.LoadStateDict(state))
	got := dst.StateDict()
	assert.Equal(t, state["m.0"].Float32s(), got["m.0"].Float32s())
	assert.Equal(t, state["v.0"].Float32s(), got["v.0"].Float32s())
	assert.Equal(t, int64(2), got["t"].Int64s()[0])
}

func TestAdamLoadRejectsLoneMoment(t *testing.T) {
	p := param(t, "w", []float32{1})
	a := NewAdam([]*nn.Parameter{p}, 0.001, 0, 0, 0)
	bad := map[string]*tensor.RawTensor{
		"m.0": tensor.MustNewRaw(tensor.Shape{1}, tensor.Float32),
	}
	assert.ErrorIs(t, a.LoadStateDict(bad), ErrStateMismatch)
}

func TestStepRejectsMismatchedGrad(t *testing.T) {
	p := param(t, "w", []float32{1, 2})
	p.Grad = tensor.MustNewRaw(tensor.Shape{3}, tensor.Float32)
	s := NewSGD([]*nn.Parameter{p}, 0.1, 0, 0)
	assert.Error(t, s.Step())
}

func TestZeroGrad(t *testing.T) {
	p := param(t, "w", []float32{1})
	setGrad(p, []float32{1})
	s := NewSGD([]*nn.Parameter{p}, 0.1, 0, 0)
	s.ZeroGrad()
	assert.Nil(t, p.Grad)
}
