package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/constraints"
)

// Order is the byte order of every multi-byte value on the wire.
var Order = binary.LittleEndian

const defaultBufferSize = 4096

func Ptr[T any](v T) *T { return &v } // Ptr is a helper function to create a pointer to a value, making test setup cleaner.

// toCount converts a Go length into the int32 count written on the wire.
func toCount[T constraints.Integer](n T) (int32, error) {
	if n < 0 || uint64(n) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: length %d does not fit a 32-bit count", ErrInvalidArgument, n)
	}
	return int32(n), nil
}

// MAX_PADDING defines the maximum number of trailing bytes to check.
// This prevents an Out-Of-Memory error if a parsing bug leaves a large
// amount of data in the reader. Anything larger is considered a protocol error.
const MAX_PADDING = 1024 // 1KB

// CheckTrailingNotZeros verifies that any remaining bytes in a reader are all zero.
// This is critical for parsers to ensure the entire expected payload was consumed
// and no garbage data follows, which could indicate a bug or a malicious payload.
func CheckTrailingNotZeros(r io.Reader) error {
	// Fast path for a common reader type to avoid any allocations.
	if reader, ok := r.(*BytesReader); ok && reader.Available() == 0 {
		return nil
	}

	// Use a LimitedReader to enforce our heuristic limit. We read up to
	// `maxExpectedPadding + 1` bytes; if the read succeeds, we know there was
	// too much data.
	lr := &io.LimitedReader{R: r, N: MAX_PADDING + 1}

	trailingData, err := io.ReadAll(lr)
	if err != nil {
		return err
	}

	// Heuristic check: Did we read more than the allowed padding size?
	if len(trailingData) > MAX_PADDING {
		return fmt.Errorf("%w: exceeds maximum expected size of %d bytes", ErrTrailingData, MAX_PADDING)
	}

	// Check if the data we did read contains non-zero bytes.
	for i, b := range trailingData {
		if b != 0 {
			return fmt.Errorf("%w: found non-zero byte 0x%02x at offset %d", ErrTrailingData, b, i)
		}
	}

	return nil
}
