package codec

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// encodeSequence writes <int32 count><elements>.
func (e *encodeState) encodeSequence(t *Type, v Value) error {
	var items []Value
	switch t.Kind {
	case KindArray:
		a, err := valueAs[Array](t, v)
		if err != nil {
			return err
		}
		items = a.Items
	case KindList:
		l, err := valueAs[List](t, v)
		if err != nil {
			return err
		}
		items = l.Items
	}
	if t.Elem == nil {
		return fmt.Errorf("%w: %s has no element type", ErrInvalidArgument, t)
	}

	count, err := toCount(len(items))
	if err != nil {
		return err
	}
	e.w.WriteInt32(count)
	for i, item := range items {
		if err := e.encodeAny(t.Elem, item); err != nil {
			return fmt.Errorf("%s[%d]: %w", t, i, err)
		}
	}
	return e.w.Err()
}

// decodeSequence reads exactly count elements of t.Elem.
func (d *decodeState) decodeSequence(t *Type) (Value, error) {
	if t.Elem == nil {
		return nil, fmt.Errorf("%w: %s has no element type", ErrInvalidArgument, t)
	}
	count, err := d.readCount(t)
	if err != nil {
		return nil, err
	}

	items := make([]Value, 0, min(count, 1024))
	for i := range count {
		item, err := d.decodeAny(t.Elem)
		if err != nil {
			return nil, d.short(t, count, i, err)
		}
		items = append(items, item)
	}

	if t.Kind == KindList {
		return List{Elem: t.Elem, Items: items}, nil
	}
	return Array{Elem: t.Elem, Items: items}, nil
}

// encodeDictionary writes <key kind><value kind><int32 count><key value>...
// The two kind bytes make the dictionary self-describing for scalar and
// string element types.
func (e *encodeState) encodeDictionary(t *Type, v Value) error {
	dict, err := valueAs[Dictionary](t, v)
	if err != nil {
		return err
	}
	if t.Key == nil || t.Elem == nil {
		return fmt.Errorf("%w: %s needs key and value types", ErrInvalidArgument, t)
	}

	count, err := toCount(len(dict.Entries))
	if err != nil {
		return err
	}
	_ = e.w.WriteByte(byte(t.Key.Kind))
	_ = e.w.WriteByte(byte(t.Elem.Kind))
	e.w.WriteInt32(count)
	for i, entry := range dict.Entries {
		if err := e.encodeAny(t.Key, entry.Key); err != nil {
			return fmt.Errorf("%s key #%d: %w", t, i, err)
		}
		if err := e.encodeAny(t.Elem, entry.Value); err != nil {
			return fmt.Errorf("%s value #%d: %w", t, i, err)
		}
	}
	return e.w.Err()
}

// decodeDictionary reads a dictionary header, checks it against t and reads
// the entries. A nil t.Key or t.Elem is resolved from the header.
func (d *decodeState) decodeDictionary(t *Type) (Value, error) {
	kb, _ := d.r.ReadByte()
	vb, _ := d.r.ReadByte()
	if err := d.r.Err(); err != nil {
		return nil, err
	}
	key, err := resolveHeader(Kind(kb), t.Key)
	if err != nil {
		return nil, fmt.Errorf("%s key: %w", t, err)
	}
	elem, err := resolveHeader(Kind(vb), t.Elem)
	if err != nil {
		return nil, fmt.Errorf("%s value: %w", t, err)
	}

	count, err := d.readCount(t)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, min(count, 1024))
	for i := range count {
		k, err := d.decodeAny(key)
		if err != nil {
			return nil, d.short(t, count, i, err)
		}
		v, err := d.decodeAny(elem)
		if err != nil {
			return nil, d.short(t, count, i, err)
		}
		entries = append(entries, Entry{Key: k, Value: v})
	}
	return Dictionary{Key: key, Elem: elem, Entries: entries}, nil
}

// resolveHeader matches a kind read from a dictionary header against the
// expected type, or derives the type from the kind when none is expected.
func resolveHeader(tag Kind, want *Type) (*Type, error) {
	if want != nil {
		if want.Kind != tag {
			return nil, fmt.Errorf("%w: header declares %s, expected %s", ErrTypeMismatch, tag, want)
		}
		return want, nil
	}
	if t := scalarType(tag); t != nil {
		return t, nil
	}
	if tag.Valid() {
		return nil, fmt.Errorf("%w: %s elements need a declared type", ErrUnsupportedType, tag)
	}
	return nil, fmt.Errorf("%w: unknown kind 0x%02x in header", ErrUnsupportedType, uint8(tag))
}

// encodePair writes <key><value> with no header.
func (e *encodeState) encodePair(t *Type, v Value) error {
	p, err := valueAs[Pair](t, v)
	if err != nil {
		return err
	}
	if t.Key == nil || t.Elem == nil {
		return fmt.Errorf("%w: %s needs key and value types", ErrInvalidArgument, t)
	}
	if err := e.encodeAny(t.Key, p.Key); err != nil {
		return fmt.Errorf("%s key: %w", t, err)
	}
	if err := e.encodeAny(t.Elem, p.Value); err != nil {
		return fmt.Errorf("%s value: %w", t, err)
	}
	return nil
}

// decodePair reads a bare pair; both types must be known statically.
func (d *decodeState) decodePair(t *Type) (Value, error) {
	if t.Key == nil || t.Elem == nil {
		return nil, fmt.Errorf("%w: %s needs key and value types", ErrUnsupportedType, t)
	}
	k, err := d.decodeAny(t.Key)
	if err != nil {
		return nil, fmt.Errorf("%s key: %w", t, err)
	}
	v, err := d.decodeAny(t.Elem)
	if err != nil {
		return nil, fmt.Errorf("%s value: %w", t, err)
	}
	return Pair{Key: k, Value: v}, nil
}

// readCount reads an int32 count and bounds it by the configured maximum.
func (d *decodeState) readCount(t *Type) (int, error) {
	var n int32
	d.r.ReadInt32(&n)
	if err := d.r.Err(); err != nil {
		return 0, err
	}
	if n < 0 || int(n) > d.opts.maxCount {
		return 0, fmt.Errorf("%w: %s declares %d items at offset %d (limit %d)",
			ErrCountMismatch, t, n, d.r.Count()-4, d.opts.maxCount)
	}
	return int(n), nil
}

// short reports a container whose input ran out before its declared count.
func (d *decodeState) short(t *Type, count, got int, err error) error {
	if errors.Is(err, ErrTruncatedInput) {
		return fmt.Errorf("%w: %s declared %d items, input ended after %d: %w", ErrCountMismatch, t, count, got, err)
	}
	return fmt.Errorf("%s[%d]: %w", t, got, err)
}

// sortEntries orders entries by key so that maps, whose iteration order is
// random, always encode to the same bytes.
func sortEntries(key *Type, entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return compareValues(key, a.Key, b.Key)
	})
}

func compareValues(t *Type, a, b Value) int {
	switch x := a.(type) {
	case Bool:
		if y, ok := b.(Bool); ok {
			return cmp.Compare(boolRank(x), boolRank(y))
		}
	case Char:
		return compareOrdered(x, b)
	case Int16:
		return compareOrdered(x, b)
	case Uint16:
		return compareOrdered(x, b)
	case Int32:
		return compareOrdered(x, b)
	case Uint32:
		return compareOrdered(x, b)
	case Int64:
		return compareOrdered(x, b)
	case Uint64:
		return compareOrdered(x, b)
	case Float32:
		return compareOrdered(x, b)
	case Float64:
		return compareOrdered(x, b)
	case String:
		return compareOrdered(x, b)
	}
	// Composite keys order by their encoding.
	return bytes.Compare(encodedKey(t, a), encodedKey(t, b))
}

func compareOrdered[T interface {
	Value
	cmp.Ordered
}](x T, b Value) int {
	if y, ok := b.(T); ok {
		return cmp.Compare(x, y)
	}
	if b == nil {
		return 1
	}
	return cmp.Compare(x.Kind(), b.Kind())
}

func boolRank(b Bool) int {
	if b {
		return 1
	}
	return 0
}

// encodedKey is best effort: a key that fails to encode sorts first and the
// real encode reports the error.
func encodedKey(t *Type, v Value) []byte {
	buf := getBuffer()
	defer putBuffer(buf)
	w, _ := NewWriter(buf)
	e := &encodeState{w: w, opts: newOptions(nil)}
	if err := e.encodeAny(t, v); err != nil {
		return nil
	}
	return bytes.Clone(buf.Bytes())
}
