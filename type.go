package codec

import "strings"

// Type describes how a value is laid out on the wire. Which fields are set
// depends on Kind:
//
//	Array, List        Elem
//	Dictionary, Pair   Key, Elem
//	Record             Record
//	String             Encoding (optional)
//
// Types are immutable once handed to the codec and may be shared freely.
type Type struct {
	Kind     Kind
	Key      *Type
	Elem     *Type
	Record   *RecordType
	Encoding TextEncoding
}

// Predefined scalar types. Treat them as read-only.
var (
	BoolType    = &Type{Kind: KindBool}
	CharType    = &Type{Kind: KindChar}
	Int16Type   = &Type{Kind: KindInt16}
	Uint16Type  = &Type{Kind: KindUint16}
	Int32Type   = &Type{Kind: KindInt32}
	Uint32Type  = &Type{Kind: KindUint32}
	Int64Type   = &Type{Kind: KindInt64}
	Uint64Type  = &Type{Kind: KindUint64}
	Float32Type = &Type{Kind: KindFloat32}
	Float64Type = &Type{Kind: KindFloat64}
	StringType  = &Type{Kind: KindString}
)

// scalarType returns the predefined type for a primitive or string kind.
func scalarType(k Kind) *Type {
	switch k {
	case KindBool:
		return BoolType
	case KindChar:
		return CharType
	case KindInt16:
		return Int16Type
	case KindUint16:
		return Uint16Type
	case KindInt32:
		return Int32Type
	case KindUint32:
		return Uint32Type
	case KindInt64:
		return Int64Type
	case KindUint64:
		return Uint64Type
	case KindFloat32:
		return Float32Type
	case KindFloat64:
		return Float64Type
	case KindString:
		return StringType
	}
	return nil
}

func ArrayOf(elem *Type) *Type { return &Type{Kind: KindArray, Elem: elem} }
func ListOf(elem *Type) *Type  { return &Type{Kind: KindList, Elem: elem} }

// DictionaryOf returns a dictionary type. Either side may be nil when decoding,
// in which case the dictionary header decides it.
func DictionaryOf(key, elem *Type) *Type { return &Type{Kind: KindDictionary, Key: key, Elem: elem} }

func PairOf(key, elem *Type) *Type { return &Type{Kind: KindPair, Key: key, Elem: elem} }

// StringOf returns a string type that is always written with enc.
func StringOf(enc TextEncoding) *Type { return &Type{Kind: KindString, Encoding: enc} }

func RecordOf(rt *RecordType) *Type { return &Type{Kind: KindRecord, Record: rt} }

// String renders t the way error messages show it, e.g. Dictionary<Int32,Array<String>>.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var sb strings.Builder
	t.format(&sb)
	return sb.String()
}

func (t *Type) format(sb *strings.Builder) {
	if t == nil {
		sb.WriteString("?")
		return
	}
	sb.WriteString(t.Kind.String())
	switch {
	case t.Kind.IsSequence():
		sb.WriteByte('<')
		t.Elem.format(sb)
		sb.WriteByte('>')
	case t.Kind.IsKeyed():
		sb.WriteByte('<')
		t.Key.format(sb)
		sb.WriteByte(',')
		t.Elem.format(sb)
		sb.WriteByte('>')
	case t.Kind == KindRecord && t.Record != nil:
		sb.WriteByte('(')
		sb.WriteString(t.Record.Name())
		sb.WriteByte(')')
	}
}
