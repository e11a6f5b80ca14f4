// Package dataset loads image classification data in the IDX binary format
// used by MNIST and its drop-in variants, and prepares tensor batches for
// training.
package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDX magic numbers: 0x0803 is a rank-3 uint8 array (images), 0x0801 a
// rank-1 uint8 array (labels).
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// ErrBadIDX is returned when a file is not valid IDX data.
var ErrBadIDX = errors.New("malformed IDX data")

// maxIDXElements bounds the element count a header may declare, so a
// corrupt header cannot trigger a huge allocation.
const maxIDXElements = 1 << 30

// ReadIDXImages parses an IDX image file: count, rows and cols from the
// header, then count*rows*cols uint8 pixels in row-major order.
func ReadIDXImages(r io.Reader) (pixels []uint8, count, rows, cols int, err error) {
	var head [16]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, 0, 0, 0, fmt.Errorf("read image header: %w (%v)", ErrBadIDX, err)
	}
	if magic := binary.BigEndian.Uint32(head[0:4]); magic != idxImagesMagic {
		return nil, 0, 0, 0, fmt.Errorf("image magic %d, want %d: %w", magic, idxImagesMagic, ErrBadIDX)
	}
	count = int(binary.BigEndian.Uint32(head[4:8]))
	rows = int(binary.BigEndian.Uint32(head[8:12]))
	cols = int(binary.BigEndian.Uint32(head[12:16]))
	// Each dimension is bounded before multiplying: three uint32 fields
	// multiplied as int can wrap past a single combined bound.
	if count <= 0 || rows <= 0 || cols <= 0 || rows > maxIDXElements || cols > maxIDXElements ||
		count > maxIDXElements/(rows*cols) {
		return nil, 0, 0, 0, fmt.Errorf("image dimensions %dx%dx%d: %w", count, rows, cols, ErrBadIDX)
	}
	pixels = make([]uint8, count*rows*cols)
	if _, err := io.ReadFull(r, pixels); err != nil {
		return nil, 0, 0, 0, fmt.Errorf("read %d pixels: %w (%v)", len(pixels), ErrBadIDX, err)
	}
	return pixels, count, rows, cols, nil
}

// ReadIDXLabels parses an IDX label file: count from the header, then count
// uint8 class labels.
func ReadIDXLabels(r io.Reader) ([]uint8, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("read label header: %w (%v)", ErrBadIDX, err)
	}
	if magic := binary.BigEndian.Uint32(head[0:4]); magic != idxLabelsMagic {
		return nil, fmt.Errorf("label magic %d, want %d: %w", magic, idxLabelsMagic, ErrBadIDX)
	}
	count := int(binary.BigEndian.Uint32(head[4:8]))
	if count <= 0 || count > maxIDXElements {
		return nil, fmt.Errorf("label count %d: %w", count, ErrBadIDX)
	}
	labels := make([]uint8, count)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("read %d labels: %w (%v)", count, ErrBadIDX, err)
	}
	return labels, nil
}

// openIDX opens path, transparently decompressing .gz files. The returned
// closer must be called when reading is done.
func openIDX(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, f.Close, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("gunzip %s: %w", path, err)
	}
	closer := func() error {
		gerr := gz.Close()
		if ferr := f.Close(); gerr == nil {
			gerr = ferr
		}
		return gerr
	}
	return gz, closer, nil
}
