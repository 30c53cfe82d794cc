package codec

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// Marshal returns the encoding of the Go value v.
func Marshal(v any, opts ...Option) ([]byte, error) {
	val, t, err := valueOf(v)
	if err != nil {
		return nil, err
	}
	return encodeBytes(t, val, opts)
}

// MarshalTo encodes v into p and returns the number of bytes written.
// It fails with io.ErrShortWrite when p is too small.
func MarshalTo(v any, p []byte, opts ...Option) (int, error) {
	val, t, err := valueOf(v)
	if err != nil {
		return 0, err
	}
	bw := NewBytesWriter(p)
	w, err := NewWriter(bw)
	if err != nil {
		return 0, err
	}
	e := encodeState{w: w, opts: newOptions(opts)}
	if err := e.encodeAny(t, val); err != nil {
		return bw.Len(), err
	}
	return bw.Len(), nil
}

// EncodeValue returns the encoding of v, with its Type inferred by TypeOfValue.
func EncodeValue(v Value, opts ...Option) ([]byte, error) {
	t, err := TypeOfValue(v)
	if err != nil {
		return nil, err
	}
	return encodeBytes(t, v, opts)
}

// EncodeAs returns the encoding of v laid out as t.
func EncodeAs(t *Type, v Value, opts ...Option) ([]byte, error) {
	return encodeBytes(t, v, opts)
}

func encodeBytes(t *Type, v Value, opts []Option) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	w, err := NewWriter(buf)
	if err != nil {
		return nil, err
	}
	e := encodeState{w: w, opts: newOptions(opts)}
	if err := e.encodeAny(t, v); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// Unmarshal decodes data into the Go value ptr points to. Trailing bytes
// must be zero padding; anything else is ErrTrailingData. The target is only
// modified when decoding succeeds.
func Unmarshal(data []byte, ptr any, opts ...Option) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: Unmarshal needs a non-nil pointer, got %T", ErrInvalidArgument, ptr)
	}
	out, err := unmarshalType(data, rv.Type().Elem(), opts)
	if err != nil {
		return err
	}
	rv.Elem().Set(out)
	return nil
}

// Deserialize decodes data as a T.
func Deserialize[T any](data []byte, opts ...Option) (T, error) {
	var zero T
	out, err := unmarshalType(data, reflect.TypeFor[T](), opts)
	if err != nil {
		return zero, err
	}
	return out.Interface().(T), nil
}

// DeserializeFrom reads one T from r. Input after the value is left unread
// only when r is an in-memory reader or a bufio.Reader; other readers are
// buffered and may be read ahead.
func DeserializeFrom[T any](r io.Reader, opts ...Option) (T, error) {
	var zero T
	dec, err := NewDecoder(r, opts...)
	if err != nil {
		return zero, err
	}
	out, err := dec.decodeGo(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return out.Interface().(T), nil
}

// DecodeValue decodes data laid out as t, with the same trailing data rule
// as Unmarshal.
func DecodeValue(data []byte, t *Type, opts ...Option) (Value, error) {
	return decodeBytes(data, t, opts)
}

func unmarshalType(data []byte, rt reflect.Type, opts []Option) (reflect.Value, error) {
	t, err := typeOf(rt)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := decodeBytes(data, t, opts)
	if err != nil {
		return reflect.Value{}, err
	}
	return fromValue(v, rt)
}

func decodeBytes(data []byte, t *Type, opts []Option) (Value, error) {
	br := NewBytesReader(data)
	r, err := NewReader(br)
	if err != nil {
		return nil, err
	}
	d := decodeState{r: r, opts: newOptions(opts)}
	v, err := d.decodeAny(t)
	if err != nil {
		return nil, err
	}
	if err := CheckTrailingNotZeros(br); err != nil {
		return nil, fmt.Errorf("%w (at offset %d)", err, r.Count())
	}
	return v, nil
}
