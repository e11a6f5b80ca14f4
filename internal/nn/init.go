package nn

import (
	"math"
	"math/rand"

	"github.com/mintml/mint/internal/tensor"
)

// XavierUniform fills t in place with values drawn uniformly from
// [-limit, limit] where limit = sqrt(6 / (fanIn + fanOut)). Keeping the
// variance of activations roughly constant across layers lets deeper
// networks start training without vanishing or exploding signals.
func XavierUniform(t *tensor.RawTensor, fanIn, fanOut int, rng *rand.Rand) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	fillUniform(t, -limit, limit, rng)
}

// RandomNormal fills t in place with draws from N(mean, std^2).
func RandomNormal(t *tensor.RawTensor, mean, std float64, rng *rand.Rand) {
	switch t.DType() {
	case tensor.Float32:
		data := t.Float32s()
		for i := range data {
			data[i] = float32(rng.NormFloat64()*std + mean)
		}
	case tensor.Float64:
		data := t.Float64s()
		for i := range data {
			data[i] = rng.NormFloat64()*std + mean
		}
	}
}

// Zero fills t in place with zeros.
func Zero(t *tensor.RawTensor) {
	b := t.Bytes()
	for i := range b {
		b[i] = 0
	}
}

func fillUniform(t *tensor.RawTensor, lo, hi float64, rng *rand.Rand) {
	span := hi - lo
	switch t.DType() {
	case tensor.Float32:
		data := t.Float32s()
		for i := range data {
			data[i] = float32(lo + rng.Float64()*span)
		}
	case tensor.Float64:
		data := t.Float64s()
		for i := range data {
			data[i] = lo + rng.Float64()*span
		}
	}
}
