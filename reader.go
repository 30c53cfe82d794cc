package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"slices"
)

// source is what the Reader consumes: byte-at-a-time and bulk reads.
type source interface {
	io.Reader
	io.ByteReader
}

// Reader is the decode-side stream cursor. It reads fixed-order binary data
// and tracks the first error; subsequent reads become no-ops.
//
// A Reader belongs to one decode pass and must not be shared between goroutines.
type Reader struct {
	r     source
	count int64 // total bytes read
	err   error // first error encountered.
}

var _ io.ByteReader = (*Reader)(nil)

// NewReaderSize creates a new Reader with a specified buffer size.
// In-memory sources are read directly without additional buffering.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}

	switch reader := r.(type) {
	// Share the underlying source of an existing cursor.
	case *Reader:
		return &Reader{r: reader.r, count: reader.count, err: reader.err}, nil

	// prevent unpredictable double-buffering.
	case *bufio.Reader:
		if reader.Size() >= size {
			return &Reader{r: reader}, nil
		}
		return nil, ErrAlreadyBuffered

	// underlying is a buf so we don't need buffering
	case *BytesReader:
		return &Reader{r: reader}, nil
	case *bytes.Reader:
		return &Reader{r: reader}, nil
	case *bytes.Buffer:
		return &Reader{r: reader}, nil
	}

	if size < 16 {
		return nil, ErrSizeTooSmall
	}

	// default use bufio
	return &Reader{r: bufio.NewReaderSize(r, size)}, nil
}

// NewReader creates a new Reader with a default buffer size.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, defaultBufferSize)
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }
func (r *Reader) IsEOF() bool  { return r.err == io.EOF }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Result returns the total bytes read and the final error state.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}

// truncated converts a premature end of input into ErrTruncatedInput.
// want is the size of the read that failed and got how much of it arrived.
func (r *Reader) truncated(err error, want, got int) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d: %w",
			ErrTruncatedInput, want, r.count-int64(got), got, io.ErrUnexpectedEOF)
	}
	return err
}

// fill reads exactly len(p) bytes into p.
func (r *Reader) fill(p []byte) bool {
	if r.err != nil {
		return false
	}
	n, err := io.ReadFull(r.r, p)
	r.count += int64(n)
	if err != nil {
		r.err = r.truncated(err, len(p), n)
		return false
	}
	return true
}

// readChunk bounds the memory committed to a length read from the stream
// before the bytes behind it have arrived.
const readChunk = 64 << 10

// ReadBytes reads n bytes and returns a new byte slice. Reads longer than
// readChunk grow the slice only as input arrives.
func (r *Reader) ReadBytes(n int) []byte {
	if n <= 0 || r.err != nil {
		return nil
	}
	if n <= readChunk {
		buf := make([]byte, n)
		if !r.fill(buf) {
			return nil
		}
		return buf
	}

	buf := make([]byte, 0, readChunk)
	for len(buf) < n {
		step := min(n-len(buf), readChunk)
		buf = slices.Grow(buf, step)
		start := len(buf)
		buf = buf[:start+step]
		if !r.fill(buf[start:]) {
			return nil
		}
	}
	return buf
}

// --- Primitive Read Operations ---

func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadByte()
	if err == nil {
		r.count++
	} else {
		r.err = r.truncated(err, 1, 0)
	}
	return b, r.err
}

func (r *Reader) ReadBool(dest *bool) {
	if b, err := r.ReadByte(); err == nil {
		*dest = b != 0
	}
}

func (r *Reader) ReadUint16(dest *uint16) {
	var buf [2]byte
	if r.fill(buf[:]) {
		*dest = Order.Uint16(buf[:])
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	var buf [4]byte
	if r.fill(buf[:]) {
		*dest = Order.Uint32(buf[:])
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	var buf [8]byte
	if r.fill(buf[:]) {
		*dest = Order.Uint64(buf[:])
	}
}

func (r *Reader) ReadInt16(dest *int16) {
	var buf [2]byte
	if r.fill(buf[:]) {
		*dest = int16(Order.Uint16(buf[:]))
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	var buf [4]byte
	if r.fill(buf[:]) {
		*dest = int32(Order.Uint32(buf[:]))
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	var buf [8]byte
	if r.fill(buf[:]) {
		*dest = int64(Order.Uint64(buf[:]))
	}
}
