package codec

import (
	"errors"
	"fmt"
)

// FieldDescriptor describes one serialized field of a record type.
type FieldDescriptor struct {
	ID   int16
	Name string
	Type *Type

	index []int // struct field index for types derived from Go structs
}

// RecordType is the immutable field table of a record. Fields are kept in
// declaration order, which is the order they are written in; reading matches
// them by identifier.
//
// Identifiers are expected to be unique. This is not enforced: with duplicates,
// Lookup resolves to the first declared field.
type RecordType struct {
	name   string
	fields []FieldDescriptor
	byID   map[int16]int
}

func (rt *RecordType) Name() string  { return rt.name }
func (rt *RecordType) NumField() int { return len(rt.fields) }

// Field returns the i'th field in declaration order.
func (rt *RecordType) Field(i int) FieldDescriptor { return rt.fields[i] }

// Fields returns a copy of the field table.
func (rt *RecordType) Fields() []FieldDescriptor {
	return append([]FieldDescriptor(nil), rt.fields...)
}

// Lookup finds the field with the given identifier.
func (rt *RecordType) Lookup(id int16) (FieldDescriptor, bool) {
	i, ok := rt.index(id)
	if !ok {
		return FieldDescriptor{}, false
	}
	return rt.fields[i], true
}

func (rt *RecordType) index(id int16) (int, bool) {
	i, ok := rt.byID[id]
	return i, ok
}

// Make builds a Record of this type from field values given in declaration order.
func (rt *RecordType) Make(fields ...Value) (Record, error) {
	if len(fields) != len(rt.fields) {
		return Record{}, fmt.Errorf("%w: %s has %d fields, got %d values",
			ErrInvalidArgument, rt.name, len(rt.fields), len(fields))
	}
	return Record{Type: rt, Fields: fields}, nil
}

// seal builds the identifier index. Called exactly once per RecordType.
func (rt *RecordType) seal() {
	rt.byID = make(map[int16]int, len(rt.fields))
	for i, f := range rt.fields {
		if _, dup := rt.byID[f.ID]; !dup {
			rt.byID[f.ID] = i
		}
	}
}

// RecordBuilder declares a RecordType field by field. Errors are sticky and
// reported by Build.
type RecordBuilder struct {
	rt   *RecordType
	ref  *Type
	err  error
	done bool
}

// NewRecordType starts the declaration of a record type.
func NewRecordType(name string) *RecordBuilder {
	rt := &RecordType{name: name}
	return &RecordBuilder{rt: rt, ref: RecordOf(rt)}
}

// Field appends a field. Fields are written in the order they are declared.
func (b *RecordBuilder) Field(id int16, name string, t *Type) *RecordBuilder {
	switch {
	case b.err != nil:
	case b.done:
		b.err = errors.New("codec: field added to an already built record type")
	case t == nil:
		b.err = fmt.Errorf("%w: field %d (%s) of %s has no type", ErrInvalidArgument, id, name, b.rt.name)
	default:
		b.rt.fields = append(b.rt.fields, FieldDescriptor{ID: id, Name: name, Type: t})
	}
	return b
}

// Ref returns the Type of the record being built, for self-referencing fields.
func (b *RecordBuilder) Ref() *Type { return b.ref }

// Build finalizes the record type.
func (b *RecordBuilder) Build() (*RecordType, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.done {
		b.rt.seal()
		b.done = true
	}
	return b.rt, nil
}

// MustBuild is like Build but panics on error.
func (b *RecordBuilder) MustBuild() *RecordType {
	rt, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rt
}
