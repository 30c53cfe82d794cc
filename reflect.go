package codec

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

// tagKey is the struct tag that assigns a field its identifier:
//
//	type Child struct {
//		Integer int32   `bin:"0"`
//		Array   []int32 `bin:"1"`
//		Name    string  `bin:"2,ascii"`
//		Tags    []string `bin:"3,list"`
//	}
//
// Options after the identifier: "ascii" or "unicode" fix the encoding of
// strings in the field, "list" encodes a slice or array as a List.
// Untagged fields and fields tagged "-" are not serialized.
const tagKey = "bin"

// typeCache holds derived wire types. Two goroutines may derive the same
// type at once; the first stored result wins.
var typeCache = xsync.NewMap[reflect.Type, *Type]()

var (
	charType     = reflect.TypeFor[Char]()
	keyValueType = reflect.TypeFor[interface{ keyValue() }]()
)

// KeyValue is encoded as a bare Pair.
type KeyValue[K, V any] struct {
	Key   K
	Value V
}

func (KeyValue[K, V]) keyValue() {}

// TypeFor returns the wire type of the Go type T.
func TypeFor[T any]() (*Type, error) {
	return typeOf(reflect.TypeFor[T]())
}

func typeOf(rt reflect.Type) (*Type, error) {
	if t, ok := typeCache.Load(rt); ok {
		return t, nil
	}
	b := typeBuilder{pending: make(map[reflect.Type]*Type)}
	t, err := b.build(rt)
	if err != nil {
		return nil, err
	}
	for st, rec := range b.pending {
		typeCache.LoadOrStore(st, rec)
	}
	t, _ = typeCache.LoadOrStore(rt, t)
	return t, nil
}

// typeBuilder derives one Type graph. Struct types are registered in pending
// before their fields are derived, so recursive types terminate.
type typeBuilder struct {
	pending map[reflect.Type]*Type
}

func (b *typeBuilder) build(rt reflect.Type) (*Type, error) {
	if t, ok := b.pending[rt]; ok {
		return t, nil
	}
	if t, ok := typeCache.Load(rt); ok {
		return t, nil
	}
	if rt == charType {
		return CharType, nil
	}

	switch rt.Kind() {
	case reflect.Bool:
		return BoolType, nil
	case reflect.Int16:
		return Int16Type, nil
	case reflect.Int32:
		return Int32Type, nil
	case reflect.Int, reflect.Int64:
		return Int64Type, nil
	case reflect.Uint16:
		return Uint16Type, nil
	case reflect.Uint32:
		return Uint32Type, nil
	case reflect.Uint, reflect.Uint64:
		return Uint64Type, nil
	case reflect.Float32:
		return Float32Type, nil
	case reflect.Float64:
		return Float64Type, nil
	case reflect.String:
		return StringType, nil
	case reflect.Pointer:
		return b.build(rt.Elem())
	case reflect.Slice, reflect.Array:
		elem, err := b.build(rt.Elem())
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case reflect.Map:
		key, err := b.build(rt.Key())
		if err != nil {
			return nil, err
		}
		elem, err := b.build(rt.Elem())
		if err != nil {
			return nil, err
		}
		return DictionaryOf(key, elem), nil
	case reflect.Struct:
		if rt.Implements(keyValueType) {
			key, err := b.build(rt.Field(0).Type)
			if err != nil {
				return nil, err
			}
			elem, err := b.build(rt.Field(1).Type)
			if err != nil {
				return nil, err
			}
			return PairOf(key, elem), nil
		}
		return b.buildRecord(rt)
	}
	return nil, fmt.Errorf("%w: Go type %s", ErrUnsupportedType, rt)
}

func (b *typeBuilder) buildRecord(rt reflect.Type) (*Type, error) {
	name := rt.Name()
	if name == "" {
		name = rt.String()
	}
	rec := &RecordType{name: name}
	t := RecordOf(rec)
	b.pending[rt] = t

	for i := range rt.NumField() {
		sf := rt.Field(i)
		tag, ok := sf.Tag.Lookup(tagKey)
		if !ok || tag == "-" {
			continue
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("%w: %s.%s is tagged but unexported", ErrUnsupportedType, name, sf.Name)
		}
		id, opts, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, sf.Name, err)
		}
		ft, err := b.build(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, sf.Name, err)
		}
		if ft, err = opts.apply(ft); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, sf.Name, err)
		}
		rec.fields = append(rec.fields, FieldDescriptor{ID: id, Name: sf.Name, Type: ft, index: sf.Index})
	}
	if len(rec.fields) == 0 {
		return nil, fmt.Errorf("%w: %s has no %q tagged fields", ErrUnsupportedType, name, tagKey)
	}
	rec.seal()
	return t, nil
}

type fieldOptions struct {
	list        bool
	encoding    TextEncoding
	hasEncoding bool
}

func parseTag(tag string) (int16, fieldOptions, error) {
	var opts fieldOptions
	idText, rest, _ := strings.Cut(tag, ",")
	id, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 16)
	if err != nil {
		return 0, opts, fmt.Errorf("%w: field identifier %q: %w", ErrInvalidArgument, idText, err)
	}
	for rest != "" {
		var opt string
		opt, rest, _ = strings.Cut(rest, ",")
		switch strings.TrimSpace(opt) {
		case "":
		case "list":
			opts.list = true
		case "ascii":
			opts.encoding, opts.hasEncoding = EncodingASCII, true
		case "unicode":
			opts.encoding, opts.hasEncoding = EncodingUnicode, true
		default:
			return 0, opts, fmt.Errorf("%w: unknown tag option %q", ErrInvalidArgument, opt)
		}
	}
	return int16(id), opts, nil
}

func (o fieldOptions) apply(t *Type) (*Type, error) {
	if o.list {
		if t.Kind != KindArray {
			return nil, fmt.Errorf("%w: list option on %s", ErrInvalidArgument, t)
		}
		t = ListOf(t.Elem)
	}
	if o.hasEncoding {
		t = withEncoding(t, o.encoding)
	}
	return t, nil
}

// withEncoding copies t with every string reachable through containers
// switched to enc. Records keep their own field encodings.
func withEncoding(t *Type, enc TextEncoding) *Type {
	switch {
	case t.Kind == KindString:
		return StringOf(enc)
	case t.Kind.IsSequence():
		c := *t
		c.Elem = withEncoding(t.Elem, enc)
		return &c
	case t.Kind.IsKeyed():
		c := *t
		c.Key = withEncoding(t.Key, enc)
		c.Elem = withEncoding(t.Elem, enc)
		return &c
	}
	return t
}

// toValue converts a Go value into the Value that t describes.
func toValue(rv reflect.Value, t *Type) (Value, error) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %s", ErrInvalidArgument, rv.Type())
		}
		rv = rv.Elem()
	}

	switch t.Kind {
	case KindBool:
		return Bool(rv.Bool()), nil
	case KindChar:
		return Char(rv.Uint()), nil
	case KindInt16:
		return Int16(rv.Int()), nil
	case KindInt32:
		return Int32(rv.Int()), nil
	case KindInt64:
		return Int64(rv.Int()), nil
	case KindUint16:
		return Uint16(rv.Uint()), nil
	case KindUint32:
		return Uint32(rv.Uint()), nil
	case KindUint64:
		return Uint64(rv.Uint()), nil
	case KindFloat32:
		return Float32(rv.Float()), nil
	case KindFloat64:
		return Float64(rv.Float()), nil
	case KindString:
		return String(rv.String()), nil

	case KindArray, KindList:
		items := make([]Value, rv.Len())
		for i := range items {
			v, err := toValue(rv.Index(i), t.Elem)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", t, i, err)
			}
			items[i] = v
		}
		if t.Kind == KindList {
			return List{Elem: t.Elem, Items: items}, nil
		}
		return Array{Elem: t.Elem, Items: items}, nil

	case KindDictionary:
		entries := make([]Entry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := toValue(iter.Key(), t.Key)
			if err != nil {
				return nil, fmt.Errorf("%s key: %w", t, err)
			}
			v, err := toValue(iter.Value(), t.Elem)
			if err != nil {
				return nil, fmt.Errorf("%s value: %w", t, err)
			}
			entries = append(entries, Entry{Key: k, Value: v})
		}
		sortEntries(t.Key, entries)
		return Dictionary{Key: t.Key, Elem: t.Elem, Entries: entries}, nil

	case KindPair:
		k, err := toValue(rv.Field(0), t.Key)
		if err != nil {
			return nil, fmt.Errorf("%s key: %w", t, err)
		}
		v, err := toValue(rv.Field(1), t.Elem)
		if err != nil {
			return nil, fmt.Errorf("%s value: %w", t, err)
		}
		return Pair{Key: k, Value: v}, nil

	case KindRecord:
		rec := t.Record
		fields := make([]Value, rec.NumField())
		for i, f := range rec.fields {
			v, err := toValue(rv.FieldByIndex(f.index), f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", rec.Name(), f.Name, err)
			}
			fields[i] = v
		}
		return Record{Type: rec, Fields: fields}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

// fromValue builds a new Go value of type rt from v. v must have been
// decoded with the Type derived from rt.
func fromValue(v Value, rt reflect.Type) (reflect.Value, error) {
	if rt.Kind() == reflect.Pointer {
		inner, err := fromValue(v, rt.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(rt.Elem())
		p.Elem().Set(inner)
		return p, nil
	}

	out := reflect.New(rt).Elem()
	switch x := v.(type) {
	case Bool:
		out.SetBool(bool(x))
	case Char:
		out.SetUint(uint64(x))
	case Int16:
		out.SetInt(int64(x))
	case Int32:
		out.SetInt(int64(x))
	case Int64:
		out.SetInt(int64(x))
	case Uint16:
		out.SetUint(uint64(x))
	case Uint32:
		out.SetUint(uint64(x))
	case Uint64:
		out.SetUint(uint64(x))
	case Float32:
		out.SetFloat(float64(x))
	case Float64:
		out.SetFloat(float64(x))
	case String:
		out.SetString(string(x))
	case Array:
		return fromItems(x.Items, rt)
	case List:
		return fromItems(x.Items, rt)

	case Dictionary:
		m := reflect.MakeMapWithSize(rt, len(x.Entries))
		for _, e := range x.Entries {
			k, err := fromValue(e.Key, rt.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			val, err := fromValue(e.Value, rt.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			m.SetMapIndex(k, val)
		}
		return m, nil

	case Pair:
		k, err := fromValue(x.Key, rt.Field(0).Type)
		if err != nil {
			return reflect.Value{}, err
		}
		val, err := fromValue(x.Value, rt.Field(1).Type)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(0).Set(k)
		out.Field(1).Set(val)

	case Record:
		for i, f := range x.Type.fields {
			if x.Fields[i] == nil {
				continue // identifier repeated in the stream; field left zero
			}
			fv := out.FieldByIndex(f.index)
			val, err := fromValue(x.Fields[i], fv.Type())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%s.%s: %w", x.Type.Name(), f.Name, err)
			}
			fv.Set(val)
		}

	default:
		return reflect.Value{}, fmt.Errorf("%w: cannot store %T in %s", ErrTypeMismatch, v, rt)
	}
	return out, nil
}

func fromItems(items []Value, rt reflect.Type) (reflect.Value, error) {
	var out reflect.Value
	switch rt.Kind() {
	case reflect.Slice:
		out = reflect.MakeSlice(rt, len(items), len(items))
	case reflect.Array:
		if rt.Len() != len(items) {
			return reflect.Value{}, fmt.Errorf("%w: %s holds %d elements, input has %d",
				ErrCountMismatch, rt, rt.Len(), len(items))
		}
		out = reflect.New(rt).Elem()
	default:
		return reflect.Value{}, fmt.Errorf("%w: cannot store a sequence in %s", ErrTypeMismatch, rt)
	}
	for i, item := range items {
		v, err := fromValue(item, rt.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(v)
	}
	return out, nil
}
