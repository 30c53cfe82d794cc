package codec

import "fmt"

// Value is a decoded or to-be-encoded value. The set of implementations is
// closed: the scalar types below, Array, List, Dictionary, Pair and Record.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	Bool    bool
	Int16   int16
	Int32   int32
	Int64   int64
	Uint16  uint16
	Uint32  uint32
	Uint64  uint64
	Float32 float32
	Float64 float64

	// Char is a single UTF-16 code unit. Go struct fields of type Char
	// are encoded with KindChar.
	Char uint16

	String string
)

// Array is an ordered sequence of values of type Elem.
type Array struct {
	Elem  *Type
	Items []Value
}

// List has the same wire form as Array; the kind only differs in dictionary headers.
type List struct {
	Elem  *Type
	Items []Value
}

// Entry is one key-value association of a Dictionary.
type Entry struct {
	Key   Value
	Value Value
}

// Dictionary is a keyed collection. Entries are written in slice order.
type Dictionary struct {
	Key     *Type
	Elem    *Type
	Entries []Entry
}

// Pair is a bare key-value pair.
type Pair struct {
	Key   Value
	Value Value
}

// Record holds one value per field of Type, indexed like Type's fields.
type Record struct {
	Type   *RecordType
	Fields []Value
}

func (Bool) Kind() Kind       { return KindBool }
func (Int16) Kind() Kind      { return KindInt16 }
func (Int32) Kind() Kind      { return KindInt32 }
func (Int64) Kind() Kind      { return KindInt64 }
func (Uint16) Kind() Kind     { return KindUint16 }
func (Uint32) Kind() Kind     { return KindUint32 }
func (Uint64) Kind() Kind     { return KindUint64 }
func (Float32) Kind() Kind    { return KindFloat32 }
func (Float64) Kind() Kind    { return KindFloat64 }
func (Char) Kind() Kind       { return KindChar }
func (String) Kind() Kind     { return KindString }
func (Array) Kind() Kind      { return KindArray }
func (List) Kind() Kind       { return KindList }
func (Dictionary) Kind() Kind { return KindDictionary }
func (Pair) Kind() Kind       { return KindPair }
func (Record) Kind() Kind     { return KindRecord }

func (Bool) isValue()       {}
func (Int16) isValue()      {}
func (Int32) isValue()      {}
func (Int64) isValue()      {}
func (Uint16) isValue()     {}
func (Uint32) isValue()     {}
func (Uint64) isValue()     {}
func (Float32) isValue()    {}
func (Float64) isValue()    {}
func (Char) isValue()       {}
func (String) isValue()     {}
func (Array) isValue()      {}
func (List) isValue()       {}
func (Dictionary) isValue() {}
func (Pair) isValue()       {}
func (Record) isValue()     {}

// Get returns the value of the field with the given identifier.
func (r Record) Get(id int16) (Value, bool) {
	if r.Type == nil {
		return nil, false
	}
	i, ok := r.Type.index(id)
	if !ok || i >= len(r.Fields) || r.Fields[i] == nil {
		return nil, false
	}
	return r.Fields[i], true
}

// TypeOfValue infers the complete Type of v. Container element types left nil
// are taken from the first item; an empty container needs them set explicitly.
func TypeOfValue(v Value) (*Type, error) {
	switch v := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil value", ErrInvalidArgument)
	case Array:
		elem, err := elemType(v.Elem, v.Items)
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case List:
		elem, err := elemType(v.Elem, v.Items)
		if err != nil {
			return nil, err
		}
		return ListOf(elem), nil
	case Dictionary:
		key, elem := v.Key, v.Elem
		if (key == nil || elem == nil) && len(v.Entries) == 0 {
			return nil, fmt.Errorf("%w: empty dictionary without key and value types", ErrInvalidArgument)
		}
		var err error
		if key == nil {
			if key, err = TypeOfValue(v.Entries[0].Key); err != nil {
				return nil, err
			}
		}
		if elem == nil {
			if elem, err = TypeOfValue(v.Entries[0].Value); err != nil {
				return nil, err
			}
		}
		return DictionaryOf(key, elem), nil
	case Pair:
		key, err := TypeOfValue(v.Key)
		if err != nil {
			return nil, err
		}
		elem, err := TypeOfValue(v.Value)
		if err != nil {
			return nil, err
		}
		return PairOf(key, elem), nil
	case Record:
		if v.Type == nil {
			return nil, fmt.Errorf("%w: record without a record type", ErrInvalidArgument)
		}
		return RecordOf(v.Type), nil
	}
	if t := scalarType(v.Kind()); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func elemType(elem *Type, items []Value) (*Type, error) {
	if elem != nil {
		return elem, nil
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty sequence without an element type", ErrInvalidArgument)
	}
	return TypeOfValue(items[0])
}
