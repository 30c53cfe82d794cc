package codec

import (
	"bufio"
	"bytes"
	"io"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// mockFlushingWriter helps verify that a writer's Flush method is called.
type mockFlushingWriter struct {
	bytes.Buffer
	flushed bool
}

func (m *mockFlushingWriter) Flush() error {
	m.flushed = true
	return nil
}

// --- Writer Test Suite ---

type WriterTestSuite struct {
	suite.Suite
	buf    *bytes.Buffer
	writer *Writer
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *WriterTestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.writer, _ = NewWriter(s.buf)
}

func (s *WriterTestSuite) TestConstructors() {
	s.T().Run("NilWriter", func(t *testing.T) {
		_, err := NewWriter(nil)
		assert.ErrorIs(t, err, ErrNilIO)
	})

	s.T().Run("SmallBufioWriter", func(t *testing.T) {
		_, err := NewWriterSize(bufio.NewWriterSize(io.Discard, 16), 4096)
		assert.ErrorIs(t, err, ErrAlreadyBuffered)
	})
}

func (s *WriterTestSuite) TestBasicWrites() {
	_ = s.writer.WriteByte(0xAA)
	s.writer.WriteBool(true)
	s.writer.WriteUint16(0xBBCC)
	s.writer.WriteInt16(-2)
	s.writer.WriteUint32(0xDDEEFF00)
	s.writer.WriteUint64(0x0102030405060708)
	s.writer.WriteBytes([]byte{5, 6, 7})

	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(1+1+2+2+4+8+3, n)
	s.Assert().EqualValues(s.buf.Len(), s.writer.Count())

	expected := []byte{
		0xAA,       // WriteByte
		0x01,       // WriteBool
		0xCC, 0xBB, // WriteUint16 (Little Endian)
		0xFE, 0xFF, // WriteInt16
		0x00, 0xFF, 0xEE, 0xDD, // WriteUint32 (Little Endian)
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // WriteUint64 (Little Endian)
		5, 6, 7, // WriteBytes
	}
	s.Assert().Equal(expected, s.buf.Bytes())
}

func (s *WriterTestSuite) TestErrorHandling() {
	s.T().Run("ShortBufferError", func(t *testing.T) {
		fixedBuf := make([]byte, 5)
		writer, _ := NewWriter(NewBytesWriter(fixedBuf))

		writer.WriteUint32(0x11223344)
		writer.WriteUint32(0xAABBCCDD)

		_, err := writer.Result()
		require.Error(t, err)
		assert.ErrorIs(t, err, io.ErrShortWrite)
	})

	s.T().Run("WriteAfterErrorIsNoOp", func(t *testing.T) {
		fixedBuf := make([]byte, 5)
		writer, _ := NewWriter(NewBytesWriter(fixedBuf))

		writer.WriteUint32(0x11223344)
		writer.WriteUint32(0xAABBCCDD) // only one byte fits

		firstErr := writer.Err()
		require.ErrorIs(t, firstErr, io.ErrShortWrite)

		_ = writer.WriteByte(0xFF)
		writer.Flush()
		assert.Equal(t, firstErr, writer.Err(), "The latched error should not change")

		expected := []byte{0x44, 0x33, 0x22, 0x11, 0xDD}
		assert.Equal(t, expected, fixedBuf)
		assert.EqualValues(t, 5, writer.Count())
	})
}

func (s *WriterTestSuite) TestFlush() {
	mock := &mockFlushingWriter{}
	writer, _ := NewWriterSize(mock, 128)
	_ = writer.WriteByte(0xAA)

	// Before flush, data is in the buffer, but not in the underlying writer.
	s.Assert().Positive(writer.w.(*bufio.Writer).Buffered())
	s.Assert().Zero(mock.Len())

	s.Require().NoError(writer.Flush())

	s.Assert().False(mock.flushed, "bufio does not forward Flush")
	s.Assert().Zero(writer.w.(*bufio.Writer).Buffered())
	s.Assert().Equal(1, mock.Buffer.Len())
}

func (s *WriterTestSuite) TestNestedWriterDoesNotFlush() {
	mock := &mockFlushingWriter{}
	outer, _ := NewWriterSize(mock, 128)
	inner, err := NewWriter(outer)
	s.Require().NoError(err)

	inner.WriteUint16(0x0102)
	s.Require().NoError(inner.Flush())
	s.Assert().Zero(mock.Len(), "only the outermost writer flushes")

	s.Require().NoError(outer.Flush())
	s.Assert().Equal([]byte{0x02, 0x01}, mock.Bytes())
}

// TestWriter runs the WriterTestSuite.
func TestWriter(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

// --- Reader Test Suite ---

type ReaderTestSuite struct {
	suite.Suite
}

func (s *ReaderTestSuite) TestConstructors() {
	s.T().Run("NilReader", func(t *testing.T) {
		_, err := NewReader(nil)
		assert.ErrorIs(t, err, ErrNilIO)
	})

	s.T().Run("SizeTooSmall", func(t *testing.T) {
		_, err := NewReaderSize(io.LimitReader(bytes.NewReader(nil), 1), 8)
		assert.ErrorIs(t, err, ErrSizeTooSmall)
	})

	s.T().Run("SmallBufioReader", func(t *testing.T) {
		_, err := NewReaderSize(bufio.NewReaderSize(bytes.NewReader(nil), 16), 4096)
		assert.ErrorIs(t, err, ErrAlreadyBuffered)
	})

	s.T().Run("InMemorySourcesAreNotBuffered", func(t *testing.T) {
		br := NewBytesReader([]byte{1, 2})
		r, err := NewReader(br)
		require.NoError(t, err)
		_, _ = r.ReadByte()
		assert.Equal(t, 1, br.Len())
	})
}

func (s *ReaderTestSuite) TestSuccessfulReads() {
	data := []byte{
		0xAA,       // byte
		0x01,       // bool
		0xCC, 0xBB, // uint16
		0xFE, 0xFF, // int16
		0x00, 0xFF, 0xEE, 0xDD, // uint32
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // uint64
		0x11, 0x22, 0x33, // raw bytes
	}
	r, _ := NewReader(bytes.NewReader(data))

	var (
		ok  bool
		v16 uint16
		i16 int16
		v32 uint32
		v64 uint64
	)
	v8, _ := r.ReadByte()
	r.ReadBool(&ok)
	r.ReadUint16(&v16)
	r.ReadInt16(&i16)
	r.ReadUint32(&v32)
	r.ReadUint64(&v64)
	read := r.ReadBytes(3)

	s.Require().NoError(r.Err())
	s.Assert().Equal(uint8(0xAA), v8)
	s.Assert().True(ok)
	s.Assert().Equal(uint16(0xBBCC), v16)
	s.Assert().Equal(int16(-2), i16)
	s.Assert().Equal(uint32(0xDDEEFF00), v32)
	s.Assert().Equal(uint64(0x0102030405060708), v64)
	s.Assert().Equal([]byte{0x11, 0x22, 0x33}, read)
	s.Assert().EqualValues(len(data), r.Count())

	// The next read should result in a clean EOF.
	_, _ = r.Read(make([]byte, 1))
	s.Assert().ErrorIs(r.Err(), io.EOF)
	s.Assert().True(r.IsEOF())
}

func (s *ReaderTestSuite) TestErrorHandling() {
	s.T().Run("ReadPastEOF", func(t *testing.T) {
		r, _ := NewReader(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
		var v32 uint32
		r.ReadUint32(&v32)

		require.Error(t, r.Err())
		assert.ErrorIs(t, r.Err(), ErrTruncatedInput)
		assert.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF)
		assert.False(t, r.IsEOF(), "a truncated read is not a clean EOF")
		assert.Contains(t, r.Err().Error(), "offset 0")
	})

	s.T().Run("ReadByteAtEnd", func(t *testing.T) {
		r, _ := NewReader(bytes.NewReader(nil))
		_, err := r.ReadByte()
		assert.ErrorIs(t, err, ErrTruncatedInput)
	})

	s.T().Run("LargeReadPastEOF", func(t *testing.T) {
		r, _ := NewReader(bytes.NewReader(make([]byte, 5)))

		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		b := r.ReadBytes(1 << 25)
		runtime.ReadMemStats(&after)

		assert.Nil(t, b)
		assert.ErrorIs(t, r.Err(), ErrTruncatedInput)
		assert.EqualValues(t, 5, r.Count())
		assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20),
			"allocation should follow the input, not the requested length")
	})

	s.T().Run("LargeReadAcrossChunks", func(t *testing.T) {
		data := make([]byte, 3*readChunk+7)
		for i := range data {
			data[i] = byte(i)
		}
		r, _ := NewReader(bytes.NewReader(data))
		assert.Equal(t, data, r.ReadBytes(len(data)))
		assert.NoError(t, r.Err())
	})

	s.T().Run("ReadAfterErrorIsNoOp", func(t *testing.T) {
		r, _ := NewReader(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
		var v32 uint32
		var v16 uint16

		r.ReadUint32(&v32)
		firstErr := r.Err()
		require.Error(t, firstErr)

		r.ReadUint16(&v16)
		assert.Equal(t, firstErr, r.Err(), "The latched error should not change")
		assert.Zero(t, v16, "Destination variable should be unchanged after an error")
	})
}

// TestReader runs the ReaderTestSuite.
func TestReader(t *testing.T) {
	suite.Run(t, new(ReaderTestSuite))
}

func TestCheckTrailingNotZeros(t *testing.T) {
	t.Run("Consumed", func(t *testing.T) {
		br := NewBytesReader([]byte{1})
		_, _ = br.ReadByte()
		assert.NoError(t, CheckTrailingNotZeros(br))
	})

	t.Run("ZeroPadding", func(t *testing.T) {
		assert.NoError(t, CheckTrailingNotZeros(bytes.NewReader(make([]byte, 16))))
	})

	t.Run("NonZero", func(t *testing.T) {
		err := CheckTrailingNotZeros(bytes.NewReader([]byte{0, 0, 7}))
		require.ErrorIs(t, err, ErrTrailingData)
		assert.Contains(t, err.Error(), "non-zero byte 0x07 at offset 2")
	})

	t.Run("TooMuchPadding", func(t *testing.T) {
		err := CheckTrailingNotZeros(bytes.NewReader(make([]byte, MAX_PADDING+1)))
		assert.ErrorIs(t, err, ErrTrailingData)
	})
}
