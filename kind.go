package codec

import "fmt"

// Kind is the closed set of shapes the codec can encode. The numeric values
// are written as-is in dictionary headers and must never change.
type Kind uint8

const (
	KindInvalid    Kind = 0
	KindRecord     Kind = 1
	KindBool       Kind = 3
	KindChar       Kind = 4
	KindInt16      Kind = 7
	KindUint16     Kind = 8
	KindInt32      Kind = 9
	KindUint32     Kind = 10
	KindInt64      Kind = 11
	KindUint64     Kind = 12
	KindFloat32    Kind = 13
	KindFloat64    Kind = 14
	KindString     Kind = 18
	KindArray      Kind = 0x20
	KindList       Kind = 0x21
	KindDictionary Kind = 0x22
	KindPair       Kind = 0x23
)

// Width returns the number of bytes a primitive kind occupies on the wire,
// or 0 for kinds without a fixed width.
func (k Kind) Width() int {
	switch k {
	case KindBool:
		return 1
	case KindInt16, KindUint16, KindChar:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	}
	return 0
}

// IsPrimitive reports whether k is a fixed-width scalar.
func (k Kind) IsPrimitive() bool { return k.Width() > 0 }

// IsSequence reports whether k is an array or a list.
func (k Kind) IsSequence() bool { return k == KindArray || k == KindList }

// IsKeyed reports whether k is a dictionary or a pair.
func (k Kind) IsKeyed() bool { return k == KindDictionary || k == KindPair }

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k.IsPrimitive() || k.IsSequence() || k.IsKeyed() || k == KindString || k == KindRecord
}

var kindNames = map[Kind]string{
	KindRecord:     "Record",
	KindBool:       "Bool",
	KindChar:       "Char",
	KindInt16:      "Int16",
	KindUint16:     "Uint16",
	KindInt32:      "Int32",
	KindUint32:     "Uint32",
	KindInt64:      "Int64",
	KindUint64:     "Uint64",
	KindFloat32:    "Float32",
	KindFloat64:    "Float64",
	KindString:     "String",
	KindArray:      "Array",
	KindList:       "List",
	KindDictionary: "Dictionary",
	KindPair:       "Pair",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(0x%02x)", uint8(k))
}
