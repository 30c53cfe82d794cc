package codec

import "fmt"

// encodeState is one encode pass over a Writer.
type encodeState struct {
	w    *Writer
	opts options
}

// decodeState is one decode pass over a Reader.
type decodeState struct {
	r    *Reader
	opts options
}

// encodeAny writes v laid out as t. The branches are checked in a fixed
// order: primitive, string, sequence, dictionary or pair, record.
func (e *encodeState) encodeAny(t *Type, v Value) error {
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrInvalidArgument)
	}
	if v == nil {
		return fmt.Errorf("%w: nil value for %s", ErrInvalidArgument, t)
	}
	switch {
	case t.Kind.IsPrimitive():
		return e.encodePrimitive(t, v)
	case t.Kind == KindString:
		return e.encodeString(t, v)
	case t.Kind.IsSequence():
		return e.encodeSequence(t, v)
	case t.Kind == KindDictionary:
		return e.encodeDictionary(t, v)
	case t.Kind == KindPair:
		return e.encodePair(t, v)
	case isRecord(t):
		return e.encodeRecord(t, v)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

// decodeAny reads one value laid out as t, mirroring encodeAny.
func (d *decodeState) decodeAny(t *Type) (Value, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrInvalidArgument)
	}
	switch {
	case t.Kind.IsPrimitive():
		return d.decodePrimitive(t.Kind)
	case t.Kind == KindString:
		return d.decodeString()
	case t.Kind.IsSequence():
		return d.decodeSequence(t)
	case t.Kind == KindDictionary:
		return d.decodeDictionary(t)
	case t.Kind == KindPair:
		return d.decodePair(t)
	case isRecord(t):
		return d.decodeRecord(t.Record)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

// isRecord reports whether t is a record with at least one field.
func isRecord(t *Type) bool {
	return t.Kind == KindRecord && t.Record != nil && t.Record.NumField() > 0
}

func mismatch(t *Type, v Value) error {
	return fmt.Errorf("%w: cannot encode %T as %s", ErrTypeMismatch, v, t)
}

// valueAs asserts that v has the Go type T expected by t.
func valueAs[T Value](t *Type, v Value) (T, error) {
	x, ok := v.(T)
	if !ok {
		var zero T
		return zero, mismatch(t, v)
	}
	return x, nil
}
