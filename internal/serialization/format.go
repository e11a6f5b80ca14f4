// Package serialization reads and writes the .mint checkpoint container.
//
// A file is laid out as:
//
//	[0x00] fixed header, 64 bytes:
//	        magic "MINT" | version u16 | flags u16 |
//	        header length u64 | data length u64 |
//	        tensor count u32 | reserved u32 |
//	        SHA-256 of JSON header and data section, 32 bytes
//	[0x40] JSON header: metadata plus one entry per tensor
//	[...]  data section, starting at the next 64-byte boundary; every
//	       tensor's payload is 64-byte aligned within it
//
// Offsets in tensor entries are relative to the start of the data section.
// The checksum covers the JSON header and the data section, so any
// truncation or bit flip after the fixed header is detected on load.
package serialization

import (
	"fmt"
	"time"

	"github.com/mintml/mint/internal/tensor"
)

const (
	// Magic identifies a .mint checkpoint file.
	Magic = "MINT"

	// Version is the current container version.
	Version uint16 = 1

	// Alignment is the byte alignment of the data section and of every
	// tensor payload within it.
	Alignment = 64

	fixedHeaderSize = 64
	checksumOffset  = 0x20

	// MaxTensors bounds the tensor count a reader will accept.
	MaxTensors = 65536

	// MaxHeaderSize bounds the JSON header a reader will accept.
	MaxHeaderSize = 16 << 20

	// MaxNameLen bounds a single tensor name.
	MaxNameLen = 256
)

// TensorInfo describes one tensor payload in the data section.
type TensorInfo struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset uint64 `json:"offset"`
	Size   uint64 `json:"size"`
}

// Meta is the training metadata stored alongside the tensors.
type Meta struct {
	RunID        string            `json:"run_id,omitempty"`
	Epoch        int               `json:"epoch"`
	Step         int64             `json:"step"`
	Loss         float64           `json:"loss"`
	Optimizer    string            `json:"optimizer,omitempty"`
	LearningRate float64           `json:"learning_rate,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// header is the JSON blob between the fixed header and the data section.
type header struct {
	Meta    Meta         `json:"meta"`
	Tensors []TensorInfo `json:"tensors"`
}

// dtypeNames maps tensor dtypes to their stable on-disk names.
var dtypeNames = map[tensor.DataType]string{
	tensor.Float32: "float32",
	tensor.Float64: "float64",
	tensor.Int32:   "int32",
	tensor.Int64:   "int64",
	tensor.Uint8:   "uint8",
}

func dtypeFromName(name string) (tensor.DataType, error) {
	for dt, n := range dtypeNames {
		if n == name {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("unknown dtype %q", name)
}

// align rounds n up to the next multiple of Alignment.
func align(n uint64) uint64 {
	return (n + Alignment - 1) &^ (Alignment - 1)
}
