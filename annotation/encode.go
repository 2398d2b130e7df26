package annotation

import (
	"fmt"
	"math"

	"github.com/wippyai/annometa/annotation/internal/binary"
	"github.com/wippyai/annometa/errors"
)

// ConstantBuilder hands out constant indexes for the names, descriptors and
// numeric payloads the encoder emits. Implementations intern: equal inputs
// yield equal indexes. constpool.Builder is the standard implementation.
type ConstantBuilder interface {
	// StringIndex returns the index of a UTF-8 entry holding s.
	StringIndex(s string) (int, error)
	// TypeIndex returns the index of an entry holding the field descriptor
	// desc.
	TypeIndex(desc string) (int, error)
	// IntIndex returns the index of an int constant. Boolean, byte, short
	// and char payloads are pooled through it widened to int.
	IntIndex(v int32) (int, error)
	// LongIndex returns the index of a long constant.
	LongIndex(v int64) (int, error)
	// FloatIndex returns the index of a float constant.
	FloatIndex(v float32) (int, error)
	// DoubleIndex returns the index of a double constant.
	DoubleIndex(v float64) (int, error)
}

// Encode serializes a value tree back to the class-file annotation form,
// interning names, descriptors and constants through cb. Extracting the
// result over the built pool reproduces a tree structurally equal to v.
// Error placeholders have no encoded form and fail the encode.
func Encode(v *Value, cb ConstantBuilder) ([]byte, error) {
	w := binary.NewWriter()
	if err := encodeAnnotation(w, v, cb); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeAll serializes values as a full attribute body: a u2 count followed
// by each annotation structure.
func EncodeAll(values []*Value, cb ConstantBuilder) ([]byte, error) {
	if len(values) > math.MaxUint16 {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Detail("%d annotations exceed the u2 count", len(values)).
			Build()
	}
	w := binary.NewWriter()
	w.U16(uint16(len(values)))
	for _, v := range values {
		if err := encodeAnnotation(w, v, cb); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func encodeAnnotation(w *binary.Writer, v *Value, cb ConstantBuilder) error {
	if v == nil {
		return errors.InvalidData(errors.PhaseEncode, "nil annotation value")
	}
	if len(v.names) > math.MaxUint16 {
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Type(v.typ.name).
			Detail("%d members exceed the u2 count", len(v.names)).
			Build()
	}
	ti, err := cb.TypeIndex(nameToDescriptor(v.typ.name))
	if err != nil {
		return err
	}
	w.U16(uint16(ti))
	w.U16(uint16(len(v.names)))
	for _, name := range v.names {
		ni, err := cb.StringIndex(name)
		if err != nil {
			return err
		}
		w.U16(uint16(ni))
		if err := encodeMember(w, v.members[name], cb); err != nil {
			return errors.Describe(err, v.typ.name, name)
		}
	}
	return nil
}

func encodeMember(w *binary.Writer, m MemberValue, cb ConstantBuilder) error {
	switch mv := m.(type) {
	case *PrimitiveValue:
		w.Byte(mv.Tag())
		var idx int
		var err error
		switch mv.kind {
		case KindLong:
			idx, err = cb.LongIndex(mv.Long())
		case KindFloat:
			idx, err = cb.FloatIndex(mv.Float())
		case KindDouble:
			idx, err = cb.DoubleIndex(mv.Double())
		default:
			idx, err = cb.IntIndex(mv.asInt32())
		}
		if err != nil {
			return err
		}
		w.U16(uint16(idx))
	case *StringValue:
		w.Byte(TagString)
		idx, err := cb.StringIndex(mv.value)
		if err != nil {
			return err
		}
		w.U16(uint16(idx))
	case *EnumValue:
		w.Byte(TagEnum)
		ti, err := cb.TypeIndex(nameToDescriptor(mv.typ.name))
		if err != nil {
			return err
		}
		ci, err := cb.StringIndex(mv.constant)
		if err != nil {
			return err
		}
		w.U16(uint16(ti))
		w.U16(uint16(ci))
	case *ClassValue:
		w.Byte(TagClass)
		ti, err := cb.TypeIndex(nameToDescriptor(mv.ref.TypeName()))
		if err != nil {
			return err
		}
		w.U16(uint16(ti))
	case *Value:
		w.Byte(TagAnnotation)
		return encodeAnnotation(w, mv, cb)
	case *ArrayValue:
		w.Byte(TagArray)
		if len(mv.elems) > math.MaxUint16 {
			return errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Detail("%d array elements exceed the u2 length", len(mv.elems)).
				Build()
		}
		w.U16(uint16(len(mv.elems)))
		for _, e := range mv.elems {
			if err := encodeMember(w, e, cb); err != nil {
				return err
			}
		}
	case *ErrorValue:
		return errors.New(errors.PhaseEncode, errors.KindUnsupported).
			Type(mv.TypeName()).
			Detail("error placeholders have no encoded form").
			Build()
	default:
		return errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("cannot encode %T", m))
	}
	return nil
}
