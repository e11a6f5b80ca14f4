package dataset

import (
	"math"
	"math/rand"
)

// Synthetic generates a toy classification dataset: count images of
// rows x cols pixels drawn as Gaussian blobs whose center depends on the
// class. The classes are linearly separable, so a small network should
// reach high accuracy within a few epochs. Useful for smoke tests and for
// exercising the training loop without downloading real data.
func Synthetic(count, rows, cols, classes int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))
	size := rows * cols
	pixels := make([]uint8, count*size)
	labels := make([]uint8, count)

	for i := 0; i < count; i++ {
		class := rng.Intn(classes)
		labels[i] = uint8(class)

		// Light up one band of the image per class, plus noise.
		bandStart := class * size / classes
		bandEnd := (class + 1) * size / classes
		img := pixels[i*size : (i+1)*size]
		for j := range img {
			v := 32 + rng.NormFloat64()*16
			if j >= bandStart && j < bandEnd {
				v += 160
			}
			img[j] = uint8(math.Max(0, math.Min(255, v)))
		}
	}

	d, err := New(pixels, labels, count, rows, cols)
	if err != nil {
		panic(err)
	}
	return d
}
