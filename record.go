package codec

import "fmt"

// encodeRecord writes each field as <int16 id><value>, in declaration order.
// Nothing else is written: the reader takes the field count from its own type.
func (e *encodeState) encodeRecord(t *Type, v Value) error {
	rec, err := valueAs[Record](t, v)
	if err != nil {
		return err
	}
	rt := t.Record
	if rec.Type != rt {
		return fmt.Errorf("%w: record of type %s encoded as %s", ErrTypeMismatch, recordName(rec.Type), rt.Name())
	}
	if len(rec.Fields) != rt.NumField() {
		return fmt.Errorf("%w: %s has %d fields, record holds %d values",
			ErrInvalidArgument, rt.Name(), rt.NumField(), len(rec.Fields))
	}

	for i, f := range rt.fields {
		e.w.WriteInt16(f.ID)
		if err := e.encodeAny(f.Type, rec.Fields[i]); err != nil {
			return fmt.Errorf("%s.%s: %w", rt.Name(), f.Name, err)
		}
	}
	return e.w.Err()
}

// decodeRecord reads as many fields as rt declares and matches each to a
// field by identifier, so the writer's field order does not matter. An
// identifier rt does not declare is fatal: the stream cannot be resynchronized.
func (d *decodeState) decodeRecord(rt *RecordType) (Value, error) {
	fields := make([]Value, rt.NumField())
	for range rt.NumField() {
		var id int16
		d.r.ReadInt16(&id)
		if err := d.r.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", rt.Name(), err)
		}

		i, ok := rt.index(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no field %d (offset %d)", ErrUnknownFieldID, rt.Name(), id, d.r.Count()-2)
		}
		f := rt.fields[i]
		v, err := d.decodeAny(f.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", rt.Name(), f.Name, err)
		}
		fields[i] = v
	}
	return Record{Type: rt, Fields: fields}, nil
}

func recordName(rt *RecordType) string {
	if rt == nil {
		return "<nil>"
	}
	return rt.Name()
}
