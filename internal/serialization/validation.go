package serialization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mintml/mint/internal/tensor"
)

// validateHeader checks a decoded header against the declared data section
// length before anything is allocated from it. Checkpoint files cross trust
// boundaries, so every field an attacker controls is bounded here.
func validateHeader(h *header, dataLen uint64) error {
	if len(h.Tensors) > MaxTensors {
		return &ValidationError{Reason: fmt.Sprintf("%d tensors exceeds limit %d", len(h.Tensors), MaxTensors)}
	}
	seen := make(map[string]struct{}, len(h.Tensors))

	type span struct {
		name       string
		start, end uint64
	}
	spans := make([]span, 0, len(h.Tensors))

	for i := range h.Tensors {
		t := &h.Tensors[i]
		if err := validateName(t.Name); err != nil {
			return err
		}
		if _, dup := seen[t.Name]; dup {
			return &ValidationError{Tensor: t.Name, Reason: "duplicate name"}
		}
		seen[t.Name] = struct{}{}

		dt, err := dtypeFromName(t.DType)
		if err != nil {
			return &ValidationError{Tensor: t.Name, Reason: err.Error()}
		}
		shape := tensor.Shape(t.Shape)
		if err := shape.Validate(); err != nil {
			return &ValidationError{Tensor: t.Name, Reason: err.Error()}
		}
		want := uint64(shape.NumElements()) * uint64(dt.Size())
		if t.Size != want {
			return &ValidationError{Tensor: t.Name,
				Reason: fmt.Sprintf("size %d does not match %s%v (%d bytes)", t.Size, t.DType, t.Shape, want)}
		}
		if t.Offset%Alignment != 0 {
			return &ValidationError{Tensor: t.Name,
				Reason: fmt.Sprintf("offset %d is not %d-byte aligned", t.Offset, Alignment)}
		}
		end := t.Offset + t.Size
		if end < t.Offset || end > dataLen {
			return &ValidationError{Tensor: t.Name,
				Reason: fmt.Sprintf("payload [%d, %d) exceeds data section of %d bytes", t.Offset, end, dataLen)}
		}
		spans = append(spans, span{t.Name, t.Offset, end})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return &ValidationError{Tensor: spans[i].name,
				Reason: fmt.Sprintf("payload overlaps tensor %q", spans[i-1].name)}
		}
	}
	return nil
}

// validateName rejects names that are empty, oversized, or contain control
// or path characters. Names end up in logs and error messages verbatim.
func validateName(name string) error {
	if name == "" {
		return &ValidationError{Reason: "empty tensor name"}
	}
	if len(name) > MaxNameLen {
		return &ValidationError{Tensor: name[:16] + "...",
			Reason: fmt.Sprintf("name longer than %d bytes", MaxNameLen)}
	}
	if strings.ContainsAny(name, "/\\\x00\n\r") {
		return &ValidationError{Tensor: name, Reason: "name contains forbidden characters"}
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return &ValidationError{Tensor: name, Reason: "name contains control characters"}
		}
	}
	return nil
}
