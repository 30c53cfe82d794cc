package codec

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StreamTestSuite struct {
	suite.Suite
	buf *bytes.Buffer
	enc *Encoder
}

func (s *StreamTestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	var err error
	s.enc, err = NewEncoder(s.buf)
	s.Require().NoError(err)
}

func (s *StreamTestSuite) TestSequentialValues() {
	s.Require().NoError(s.enc.Encode(newStructure()))
	s.Require().NoError(s.enc.Encode(child{Integer: 5}))

	dec, err := NewDecoder(s.buf)
	s.Require().NoError(err)

	var first structure
	s.Require().NoError(dec.Decode(&first))
	s.Assert().Equal(newStructure(), first)
	s.Assert().EqualValues(len(structureBytes), dec.InputOffset())

	var second child
	s.Require().NoError(dec.Decode(&second))
	s.Assert().Equal(int32(5), second.Integer)
	s.Assert().Empty(second.Array)

	var third child
	s.Assert().ErrorIs(dec.Decode(&third), io.EOF)
}

func (s *StreamTestSuite) TestValues() {
	rt := childType(s.T())
	rec, err := rt.Make(Int32(9), Array{Elem: Int32Type, Items: int32s(1)})
	s.Require().NoError(err)

	s.Require().NoError(s.enc.EncodeValue(rec))
	s.Require().NoError(s.enc.EncodeAs(StringOf(EncodingASCII), String("done")))

	dec, err := NewDecoder(bytes.NewReader(s.buf.Bytes()))
	s.Require().NoError(err)

	got, err := dec.DecodeValue(RecordOf(rt))
	s.Require().NoError(err)
	v, _ := got.(Record).Get(0)
	s.Assert().Equal(Int32(9), v)

	str, err := dec.DecodeValue(StringType)
	s.Require().NoError(err)
	s.Assert().Equal(String("done"), str)

	_, err = dec.DecodeValue(StringType)
	s.Assert().ErrorIs(err, io.EOF)
}

func (s *StreamTestSuite) TestTruncatedValueIsNotEOF() {
	s.buf.Write(structureBytes[:10])
	dec, err := NewDecoder(s.buf)
	s.Require().NoError(err)

	var out structure
	err = dec.Decode(&out)
	s.Assert().ErrorIs(err, ErrTruncatedInput)
	s.Assert().NotErrorIs(err, io.EOF)
	s.Assert().Zero(out)
}

type single struct {
	A int32 `bin:"0"`
}

func (s *StreamTestSuite) TestDecoderStaysFailed() {
	// field 9 is unknown; the bytes after it look like a valid field 0
	s.buf.Write([]byte{0x09, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00})
	dec, err := NewDecoder(s.buf)
	s.Require().NoError(err)

	var out single
	first := dec.Decode(&out)
	s.Require().ErrorIs(first, ErrUnknownFieldID)

	second := dec.Decode(&out)
	s.Assert().Equal(first, second)
	s.Assert().Zero(out)

	_, err = dec.DecodeValue(Int32Type)
	s.Assert().Equal(first, err)
}

func (s *StreamTestSuite) TestDecoderStaysAtEOF() {
	dec, err := NewDecoder(bytes.NewReader(nil))
	s.Require().NoError(err)

	var out single
	s.Assert().ErrorIs(dec.Decode(&out), io.EOF)
	s.Assert().ErrorIs(dec.Decode(&out), io.EOF)
}

func (s *StreamTestSuite) TestDecoderStaysFailedAfterConversion() {
	data, err := Marshal(child{Integer: 1, Array: []int32{1, 2}})
	s.Require().NoError(err)
	s.buf.Write(data)
	s.buf.Write(data)

	dec, err := NewDecoder(s.buf)
	s.Require().NoError(err)

	var fixed fixedThree
	first := dec.Decode(&fixed)
	s.Require().ErrorIs(first, ErrCountMismatch)

	var c child
	s.Assert().Equal(first, dec.Decode(&c))
}

type labeled struct {
	A int32  `bin:"0"`
	S string `bin:"1"`
}

func (s *StreamTestSuite) TestFailedEncodeWritesNothing() {
	err := s.enc.Encode(labeled{A: 1, S: ""})
	s.Require().ErrorIs(err, ErrInvalidArgument)
	s.Assert().Zero(s.buf.Len())

	s.Require().NoError(s.enc.Encode(labeled{A: 2, S: "ok"}))

	dec, err := NewDecoder(s.buf)
	s.Require().NoError(err)
	var out labeled
	s.Require().NoError(dec.Decode(&out))
	s.Assert().Equal(labeled{A: 2, S: "ok"}, out)
	s.Assert().ErrorIs(dec.Decode(&out), io.EOF)
}

func (s *StreamTestSuite) TestFailedEncodeOverBufferedSink() {
	rec := &flushRecorder{}
	enc, err := NewEncoder(rec)
	s.Require().NoError(err)

	s.Require().Error(enc.Encode(labeled{A: 1, S: " "}))
	s.Require().NoError(enc.Encode(int32(3)))
	s.Assert().Equal([][]byte{{3, 0, 0, 0}}, rec.chunks)
}

func (s *StreamTestSuite) TestEncodeGoValueAsValue() {
	s.Require().NoError(s.enc.Encode(Int32(1337)))
	s.Assert().Equal([]byte{0x39, 0x05, 0x00, 0x00}, s.buf.Bytes())
}

func (s *StreamTestSuite) TestInvalidArguments() {
	s.Assert().ErrorIs(s.enc.Encode(nil), ErrInvalidArgument)

	dec, err := NewDecoder(s.buf)
	s.Require().NoError(err)
	var out child
	s.Assert().ErrorIs(dec.Decode(out), ErrInvalidArgument)
	s.Assert().ErrorIs(dec.Decode((*child)(nil)), ErrInvalidArgument)

	_, err = NewEncoder(nil)
	s.Assert().ErrorIs(err, ErrNilIO)
	_, err = NewDecoder(nil)
	s.Assert().ErrorIs(err, ErrNilIO)
}

func TestStream(t *testing.T) {
	suite.Run(t, new(StreamTestSuite))
}

// flushRecorder is an unbuffered destination; the Encoder must flush its own buffer.
type flushRecorder struct {
	chunks [][]byte
}

func (f *flushRecorder) Write(p []byte) (int, error) {
	f.chunks = append(f.chunks, bytes.Clone(p))
	return len(p), nil
}

func TestEncoderFlushesEachValue(t *testing.T) {
	rec := &flushRecorder{}
	enc, err := NewEncoder(rec)
	require.NoError(t, err)

	require.NoError(t, enc.Encode(int32(1)))
	require.NoError(t, enc.Encode(int32(2)))
	assert.Equal(t, [][]byte{{1, 0, 0, 0}, {2, 0, 0, 0}}, rec.chunks)
}

func TestDeserializeFrom(t *testing.T) {
	data := append(append([]byte(nil), structureBytes...), 0xFF)
	r := bufio.NewReader(bytes.NewReader(data))

	out, err := DeserializeFrom[structure](r)
	require.NoError(t, err)
	assert.Equal(t, newStructure(), out)

	rest, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), rest)
}
