package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mintml/mint/internal/tensor"
)

// Write serializes tensors and metadata to w in the .mint container format.
// Tensors are laid out in sorted name order so identical state produces
// byte-identical files.
func Write(w io.Writer, meta Meta, tensors map[string]*tensor.RawTensor) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	h := header{Meta: meta, Tensors: make([]TensorInfo, 0, len(names))}
	var offset uint64
	for _, name := range names {
		t := tensors[name]
		dtName, ok := dtypeNames[t.DType()]
		if !ok {
			return fmt.Errorf("tensor %q: unsupported dtype %s", name, t.DType())
		}
		size := uint64(t.ByteSize())
		h.Tensors = append(h.Tensors, TensorInfo{
			Name:   name,
			DType:  dtName,
			Shape:  append([]int(nil), t.Shape()...),
			Offset: offset,
			Size:   size,
		})
		offset = align(offset + size)
	}
	dataLen := offset
	if n := len(h.Tensors); n > 0 {
		// No padding after the final tensor.
		last := h.Tensors[n-1]
		dataLen = last.Offset + last.Size
	}

	headerJSON, err := json.Marshal(&h)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if err := validateHeader(&h, dataLen); err != nil {
		return err
	}

	// The checksum covers the JSON header, its padding, and the data
	// section, so it is computed before the fixed header is written.
	sum := sha256.New()
	sum.Write(headerJSON)
	headerPad := makePad(uint64(fixedHeaderSize)+uint64(len(headerJSON)), sum)

	var cursor uint64
	for _, info := range h.Tensors {
		if info.Offset > cursor {
			sum.Write(make([]byte, info.Offset-cursor))
			cursor = info.Offset
		}
		sum.Write(tensors[info.Name].Bytes())
		cursor += info.Size
	}

	fixed := make([]byte, fixedHeaderSize)
	copy(fixed[0:4], Magic)
	binary.LittleEndian.PutUint16(fixed[4:6], Version)
	binary.LittleEndian.PutUint64(fixed[8:16], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[16:24], dataLen)
	binary.LittleEndian.PutUint32(fixed[24:28], uint32(len(h.Tensors)))
	copy(fixed[checksumOffset:checksumOffset+sha256.Size], sum.Sum(nil))

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(headerPad); err != nil {
		return fmt.Errorf("write header padding: %w", err)
	}
	cursor = 0
	for _, info := range h.Tensors {
		if info.Offset > cursor {
			if _, err := w.Write(make([]byte, info.Offset-cursor)); err != nil {
				return fmt.Errorf("write padding: %w", err)
			}
			cursor = info.Offset
		}
		if _, err := w.Write(tensors[info.Name].Bytes()); err != nil {
			return fmt.Errorf("write tensor %q: %w", info.Name, err)
		}
		cursor += info.Size
	}
	return nil
}

// WriteFile writes a checkpoint through a temp file and renames it into
// place, so a crash mid-write never leaves a half-written checkpoint at the
// target path.
func WriteFile(path string, meta Meta, tensors map[string]*tensor.RawTensor) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	defer os.Remove(tmp.Name())

	err = Write(tmp, meta, tensors)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write checkpoint %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace checkpoint %s: %w", path, err)
	}
	return nil
}

// makePad returns the zero padding needed to push pos to the next alignment
// boundary, feeding it to the running checksum.
func makePad(pos uint64, sum io.Writer) []byte {
	pad := make([]byte, align(pos)-pos)
	if len(pad) > 0 {
		sum.Write(pad)
	}
	return pad
}
