package codec

import "errors"

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with an nil interface
	ErrNilIO = errors.New("codec: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrSizeTooSmall indicates a size conflict with bufio
	ErrSizeTooSmall = errors.New("codec: NewReaderSize with a size smaller than 16 conflict with bufio")

	// ErrAlreadyBuffered indicates that NewReader/NewWriter was called with an already-buffered
	// reader/writer whose buffer is smaller than requested.
	ErrAlreadyBuffered = errors.New("codec: reader or writer is already buffered")

	// ErrTrailingData is returned by Unmarshal when non-zero bytes are found
	// after the expected end of the value, indicating a parsing error or malformed data.
	ErrTrailingData = errors.New("codec: non-zero trailing data found after decoding")

	// ErrInvalidArgument indicates a missing or empty input where a value is required,
	// such as a nil pointer, a nil Value or an empty string.
	ErrInvalidArgument = errors.New("codec: invalid argument")

	// ErrUnsupportedType indicates that no encoding exists for a type.
	ErrUnsupportedType = errors.New("codec: unsupported type")

	// ErrTruncatedInput indicates that the input ended before a fixed-width read completed.
	ErrTruncatedInput = errors.New("codec: truncated input")

	// ErrUnknownFieldID indicates that a record field identifier read from the stream
	// matches no field declared on the target record type.
	ErrUnknownFieldID = errors.New("codec: unknown field identifier")

	// ErrCountMismatch indicates a declared element, entry or character count that is
	// negative, too large, or not backed by enough input.
	ErrCountMismatch = errors.New("codec: count mismatch")

	// ErrTypeMismatch indicates that a Value does not have the shape its Type requires,
	// or that a dictionary header disagrees with the expected key/value types.
	ErrTypeMismatch = errors.New("codec: type mismatch")

	// ErrUnknownEncoding indicates a string whose encoding selector byte is not recognised.
	ErrUnknownEncoding = errors.New("codec: unknown text encoding")
)
