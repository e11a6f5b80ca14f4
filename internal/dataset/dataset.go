package dataset

import (
	"fmt"
	"math/rand"

	"github.com/mintml/mint/internal/tensor"
)

// Dataset holds labeled images in memory: uint8 pixels in row-major order
// and one uint8 class label per image. Batches are materialized on demand
// as normalized float32 tensors.
type Dataset struct {
	pixels []uint8
	labels []uint8

	count      int
	rows, cols int
}

// Load reads an IDX image file and its matching label file. Paths ending in
// .gz are decompressed on the fly.
func Load(imagesPath, labelsPath string) (*Dataset, error) {
	ir, iclose, err := openIDX(imagesPath)
	if err != nil {
		return nil, fmt.Errorf("open images %s: %w", imagesPath, err)
	}
	pixels, count, rows, cols, err := ReadIDXImages(ir)
	if cerr := iclose(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("load images %s: %w", imagesPath, err)
	}

	lr, lclose, err := openIDX(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("open labels %s: %w", labelsPath, err)
	}
	labels, err := ReadIDXLabels(lr)
	if cerr := lclose(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("load labels %s: %w", labelsPath, err)
	}

	if len(labels) != count {
		return nil, fmt.Errorf("%d images but %d labels", count, len(labels))
	}
	return &Dataset{pixels: pixels, labels: labels, count: count, rows: rows, cols: cols}, nil
}

// New builds a dataset from raw pixel and label slices. len(pixels) must be
// count*rows*cols and len(labels) must be count.
func New(pixels, labels []uint8, count, rows, cols int) (*Dataset, error) {
	if len(pixels) != count*rows*cols {
		return nil, fmt.Errorf("%d pixels for %d images of %dx%d", len(pixels), count, rows, cols)
	}
	if len(labels) != count {
		return nil, fmt.Errorf("%d labels for %d images", len(labels), count)
	}
	return &Dataset{pixels: pixels, labels: labels, count: count, rows: rows, cols: cols}, nil
}

// Len returns the number of examples.
func (d *Dataset) Len() int { return d.count }

// ImageSize returns the flattened feature count per image.
func (d *Dataset) ImageSize() int { return d.rows * d.cols }

// Dims returns the image height and width.
func (d *Dataset) Dims() (rows, cols int) { return d.rows, d.cols }

// Label returns the class of example i.
func (d *Dataset) Label(i int) uint8 { return d.labels[i] }

// Shuffle permutes the examples in place with Fisher-Yates.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	size := d.ImageSize()
	tmp := make([]uint8, size)
	rng.Shuffle(d.count, func(i, j int) {
		d.labels[i], d.labels[j] = d.labels[j], d.labels[i]
		pi := d.pixels[i*size : (i+1)*size]
		pj := d.pixels[j*size : (j+1)*size]
		copy(tmp, pi)
		copy(pi, pj)
		copy(pj, tmp)
	})
}

// Split cuts the dataset into a head of n examples and the remaining tail.
// Both halves share the underlying storage.
func (d *Dataset) Split(n int) (head, tail *Dataset) {
	if n < 0 || n > d.count {
		panic(fmt.Sprintf("dataset: split at %d of %d examples", n, d.count))
	}
	size := d.ImageSize()
	head = &Dataset{pixels: d.pixels[:n*size], labels: d.labels[:n], count: n, rows: d.rows, cols: d.cols}
	tail = &Dataset{pixels: d.pixels[n*size:], labels: d.labels[n:], count: d.count - n, rows: d.rows, cols: d.cols}
	return head, tail
}

// NumBatches returns how many batches of the given size the dataset yields.
// A final short batch counts.
func (d *Dataset) NumBatches(batchSize int) int {
	return (d.count + batchSize - 1) / batchSize
}

// Batch materializes batch i as tensors: images as float32 [n, rows*cols]
// scaled to [0, 1], labels as int32 [n]. The final batch may be short.
func (d *Dataset) Batch(i, batchSize int) (images, labels *tensor.RawTensor) {
	start := i * batchSize
	if start < 0 || start >= d.count {
		panic(fmt.Sprintf("dataset: batch %d of %d", i, d.NumBatches(batchSize)))
	}
	end := min(start+batchSize, d.count)
	n := end - start
	size := d.ImageSize()

	images = tensor.MustNewRaw(tensor.Shape{n, size}, tensor.Float32)
	dst := images.Float32s()
	src := d.pixels[start*size : end*size]
	for j, p := range src {
		dst[j] = float32(p) / 255
	}

	labels = tensor.MustNewRaw(tensor.Shape{n}, tensor.Int32)
	ls := labels.Int32s()
	for j, l := range d.labels[start:end] {
		ls[j] = int32(l)
	}
	return images, labels
}
