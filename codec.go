// Package codec serializes typed values to a compact little-endian binary
// format. Records are written as (identifier, value) pairs so a reader
// matches fields by identifier rather than position; primitives, strings,
// sequences, dictionaries and pairs have fixed layouts.
//
// Values can be described dynamically with Type and Value, or taken from Go
// structs whose fields carry `bin:"<id>"` tags.
package codec

import (
	"errors"
	"fmt"
	"io"
	"reflect"
)

// Encoder writes values to an output stream.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	w    *Writer
	opts options
}

// NewEncoder returns an Encoder writing to w. Each Encode call flushes.
func NewEncoder(w io.Writer, opts ...Option) (*Encoder, error) {
	cw, err := NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &Encoder{w: cw, opts: newOptions(opts)}, nil
}

// Encode writes the Go value v. v must be, or point to, a type supported by
// TypeFor: a tagged struct, a scalar, a string, a slice, an array, a map or a
// KeyValue.
func (enc *Encoder) Encode(v any) error {
	val, t, err := valueOf(v)
	if err != nil {
		return err
	}
	return enc.EncodeAs(t, val)
}

// EncodeValue writes v with the Type inferred by TypeOfValue.
func (enc *Encoder) EncodeValue(v Value) error {
	t, err := TypeOfValue(v)
	if err != nil {
		return err
	}
	return enc.EncodeAs(t, v)
}

// EncodeAs writes v laid out as t. The value is staged in memory and only
// reaches the stream once it has encoded completely, so a failed call leaves
// the stream as it was.
func (enc *Encoder) EncodeAs(t *Type, v Value) error {
	if err := enc.w.Err(); err != nil {
		return err
	}
	buf := getBuffer()
	defer putBuffer(buf)

	staged, err := NewWriter(buf)
	if err != nil {
		return err
	}
	e := encodeState{w: staged, opts: enc.opts}
	if err := e.encodeAny(t, v); err != nil {
		return err
	}
	enc.w.WriteBytes(buf.Bytes())
	return enc.w.Flush()
}

// Decoder reads values from an input stream.
//
// A Decoder may buffer input beyond the value it returns. Once a call fails
// the stream position is unknown and every later call returns the same error.
type Decoder struct {
	r    *Reader
	opts options
	err  error // first failure, including the clean end of input
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) (*Decoder, error) {
	cr, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	return &Decoder{r: cr, opts: newOptions(opts)}, nil
}

// Decode reads the next value into the Go value ptr points to. The target is
// only modified when the whole value decoded successfully. At a clean end of
// input Decode returns io.EOF.
func (dec *Decoder) Decode(ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: Decode needs a non-nil pointer, got %T", ErrInvalidArgument, ptr)
	}
	out, err := dec.decodeGo(rv.Type().Elem())
	if err != nil {
		return err
	}
	rv.Elem().Set(out)
	return nil
}

// DecodeValue reads the next value laid out as t.
func (dec *Decoder) DecodeValue(t *Type) (Value, error) {
	if dec.err != nil {
		return nil, dec.err
	}
	start := dec.r.Count()
	d := decodeState{r: dec.r, opts: dec.opts}
	v, err := d.decodeAny(t)
	if err != nil {
		if dec.r.Count() == start && errors.Is(err, ErrTruncatedInput) {
			err = io.EOF
		}
		return nil, dec.fail(err)
	}
	return v, nil
}

// InputOffset returns the number of bytes consumed so far.
func (dec *Decoder) InputOffset() int64 { return dec.r.Count() }

func (dec *Decoder) fail(err error) error {
	if dec.err == nil {
		dec.err = err
	}
	return dec.err
}

func (dec *Decoder) decodeGo(rt reflect.Type) (reflect.Value, error) {
	if dec.err != nil {
		return reflect.Value{}, dec.err
	}
	t, err := typeOf(rt)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := dec.DecodeValue(t)
	if err != nil {
		return reflect.Value{}, err
	}
	out, err := fromValue(v, rt)
	if err != nil {
		return reflect.Value{}, dec.fail(err)
	}
	return out, nil
}

// valueOf converts a Go value to its Value and Type.
func valueOf(v any) (Value, *Type, error) {
	if v == nil {
		return nil, nil, fmt.Errorf("%w: nil value", ErrInvalidArgument)
	}
	if val, ok := v.(Value); ok {
		t, err := TypeOfValue(val)
		return val, t, err
	}
	rv := reflect.ValueOf(v)
	t, err := typeOf(rv.Type())
	if err != nil {
		return nil, nil, err
	}
	val, err := toValue(rv, t)
	if err != nil {
		return nil, nil, err
	}
	return val, t, nil
}
