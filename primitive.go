package codec

import (
	"fmt"
	"math"
)

// encodePrimitive writes exactly t.Kind.Width() bytes, with no prefix.
func (e *encodeState) encodePrimitive(t *Type, v Value) error {
	if v.Kind() != t.Kind {
		return mismatch(t, v)
	}
	w := e.w
	switch x := v.(type) {
	case Bool:
		w.WriteBool(bool(x))
	case Char:
		w.WriteUint16(uint16(x))
	case Int16:
		w.WriteInt16(int16(x))
	case Uint16:
		w.WriteUint16(uint16(x))
	case Int32:
		w.WriteInt32(int32(x))
	case Uint32:
		w.WriteUint32(uint32(x))
	case Int64:
		w.WriteInt64(int64(x))
	case Uint64:
		w.WriteUint64(uint64(x))
	case Float32:
		w.WriteUint32(math.Float32bits(float32(x)))
	case Float64:
		w.WriteUint64(math.Float64bits(float64(x)))
	default:
		return mismatch(t, v)
	}
	return w.Err()
}

// decodePrimitive reads one fixed-width scalar of kind k.
func (d *decodeState) decodePrimitive(k Kind) (Value, error) {
	r := d.r
	var v Value
	switch k {
	case KindBool:
		var x bool
		r.ReadBool(&x)
		v = Bool(x)
	case KindChar:
		var x uint16
		r.ReadUint16(&x)
		v = Char(x)
	case KindInt16:
		var x int16
		r.ReadInt16(&x)
		v = Int16(x)
	case KindUint16:
		var x uint16
		r.ReadUint16(&x)
		v = Uint16(x)
	case KindInt32:
		var x int32
		r.ReadInt32(&x)
		v = Int32(x)
	case KindUint32:
		var x uint32
		r.ReadUint32(&x)
		v = Uint32(x)
	case KindInt64:
		var x int64
		r.ReadInt64(&x)
		v = Int64(x)
	case KindUint64:
		var x uint64
		r.ReadUint64(&x)
		v = Uint64(x)
	case KindFloat32:
		var x uint32
		r.ReadUint32(&x)
		v = Float32(math.Float32frombits(x))
	case KindFloat64:
		var x uint64
		r.ReadUint64(&x)
		v = Float64(math.Float64frombits(x))
	default:
		return nil, fmt.Errorf("%w: %s is not a primitive", ErrUnsupportedType, k)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return v, nil
}
