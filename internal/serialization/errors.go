package serialization

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic means the file does not start with the MINT magic.
	ErrBadMagic = errors.New("not a mint checkpoint file")

	// ErrUnsupportedVersion means the container version is newer than
	// this reader.
	ErrUnsupportedVersion = errors.New("unsupported checkpoint version")

	// ErrChecksum means the stored SHA-256 does not match the content.
	ErrChecksum = errors.New("checkpoint checksum mismatch")

	// ErrTruncated means the file ended before the declared sections.
	ErrTruncated = errors.New("checkpoint file truncated")
)

// ValidationError reports a structurally invalid header. It names the
// offending tensor entry when one is involved.
type ValidationError struct {
	Tensor string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Tensor == "" {
		return "invalid checkpoint header: " + e.Reason
	}
	return fmt.Sprintf("invalid checkpoint header: tensor %q: %s", e.Tensor, e.Reason)
}
