package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mintml/mint/internal/tensor"
)

// Read parses a .mint container from r, verifying the checksum before any
// tensor is materialized.
func Read(r io.Reader) (Meta, map[string]*tensor.RawTensor, error) {
	fixed := make([]byte, fixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return Meta{}, nil, fmt.Errorf("read fixed header: %w", wrapEOF(err))
	}
	if string(fixed[0:4]) != Magic {
		return Meta{}, nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(fixed[4:6]); v != Version {
		return Meta{}, nil, fmt.Errorf("version %d: %w", v, ErrUnsupportedVersion)
	}
	headerLen := binary.LittleEndian.Uint64(fixed[8:16])
	dataLen := binary.LittleEndian.Uint64(fixed[16:24])
	count := binary.LittleEndian.Uint32(fixed[24:28])
	stored := fixed[checksumOffset : checksumOffset+sha256.Size]

	if headerLen > MaxHeaderSize {
		return Meta{}, nil, &ValidationError{Reason: fmt.Sprintf("header of %d bytes exceeds limit", headerLen)}
	}
	if count > MaxTensors {
		return Meta{}, nil, &ValidationError{Reason: fmt.Sprintf("%d tensors exceeds limit %d", count, MaxTensors)}
	}

	// Remaining bytes: JSON header, padding to the data section, data.
	padLen := align(fixedHeaderSize+headerLen) - (fixedHeaderSize + headerLen)
	body := make([]byte, headerLen+padLen+dataLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Meta{}, nil, fmt.Errorf("read body: %w", wrapEOF(err))
	}
	if sum := sha256.Sum256(body); !bytes.Equal(sum[:], stored) {
		return Meta{}, nil, ErrChecksum
	}

	var h header
	if err := json.Unmarshal(body[:headerLen], &h); err != nil {
		return Meta{}, nil, fmt.Errorf("decode header: %w", err)
	}
	if uint32(len(h.Tensors)) != count {
		return Meta{}, nil, &ValidationError{
			Reason: fmt.Sprintf("fixed header declares %d tensors, JSON header has %d", count, len(h.Tensors))}
	}
	if err := validateHeader(&h, dataLen); err != nil {
		return Meta{}, nil, err
	}

	data := body[headerLen+padLen:]
	tensors := make(map[string]*tensor.RawTensor, len(h.Tensors))
	for _, info := range h.Tensors {
		dt, _ := dtypeFromName(info.DType)
		t, err := tensor.NewRaw(tensor.Shape(info.Shape), dt)
		if err != nil {
			return Meta{}, nil, fmt.Errorf("tensor %q: %w", info.Name, err)
		}
		copy(t.Bytes(), data[info.Offset:info.Offset+info.Size])
		tensors[info.Name] = t
	}
	return h.Meta, tensors, nil
}

// ReadFile loads a checkpoint from disk.
func ReadFile(path string) (Meta, map[string]*tensor.RawTensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()
	meta, tensors, err := Read(f)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("read checkpoint %s: %w", path, err)
	}
	return meta, tensors, nil
}

// Inspect reads only the metadata and tensor directory of a checkpoint,
// without materializing or checksumming the data section. Intended for
// listing tools; use Read to load tensors with integrity checks.
func Inspect(path string) (Meta, []TensorInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()

	fixed := make([]byte, fixedHeaderSize)
	if _, err := io.ReadFull(f, fixed); err != nil {
		return Meta{}, nil, fmt.Errorf("read fixed header: %w", wrapEOF(err))
	}
	if string(fixed[0:4]) != Magic {
		return Meta{}, nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(fixed[4:6]); v != Version {
		return Meta{}, nil, fmt.Errorf("version %d: %w", v, ErrUnsupportedVersion)
	}
	headerLen := binary.LittleEndian.Uint64(fixed[8:16])
	dataLen := binary.LittleEndian.Uint64(fixed[16:24])
	if headerLen > MaxHeaderSize {
		return Meta{}, nil, &ValidationError{Reason: fmt.Sprintf("header of %d bytes exceeds limit", headerLen)}
	}
	headerJSON := make([]byte, headerLen)
	if _, err := io.ReadFull(f, headerJSON); err != nil {
		return Meta{}, nil, fmt.Errorf("read header: %w", wrapEOF(err))
	}
	var h header
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return Meta{}, nil, fmt.Errorf("decode header: %w", err)
	}
	if err := validateHeader(&h, dataLen); err != nil {
		return Meta{}, nil, err
	}
	return h.Meta, h.Tensors, nil
}

func wrapEOF(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}
