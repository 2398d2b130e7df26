package annotation

import (
	"fmt"
	"reflect"

	"github.com/wippyai/annometa/errors"
)

// FromAnnotation builds the value tree a live Go instance would have been
// decoded from: the registered annotation type of the instance's struct
// type, with every member mirrored from its field and default-equal members
// dropped. The result is structurally equal to extracting the instance's
// encoded form, so it hits the same resolution cache entry.
func FromAnnotation(instance any, reg *Registry) (*Value, error) {
	if instance == nil {
		return nil, errors.InvalidData(errors.PhaseMirror, "nil annotation instance")
	}
	rv := reflect.ValueOf(instance)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.InvalidData(errors.PhaseMirror, "nil annotation instance")
		}
		rv = rv.Elem()
	}
	t, ok := reg.annotationFor(rv.Type())
	if !ok {
		return nil, errors.New(errors.PhaseMirror, errors.KindNotFound).
			GoType(rv.Type().String()).
			Detail("struct type is not a registered annotation").
			Build()
	}
	return mirrorValue(t, rv)
}

// mirrorValue converts one struct value into its annotation value form.
func mirrorValue(t *Type, rv reflect.Value) (*Value, error) {
	names := make([]string, 0, len(t.members))
	members := make(map[string]MemberValue, len(t.members))
	for _, decl := range t.members {
		mv, err := valueFromGo(decl.Kind, decl.Elem, decl.Ref, rv.Field(decl.Field))
		if err != nil {
			return nil, errors.Describe(err, t.name, decl.Name)
		}
		if decl.Default != nil && decl.Default.Equal(mv) {
			continue
		}
		names = append(names, decl.Name)
		members[decl.Name] = mv
	}
	return newValue(t, names, members), nil
}

// valueFromGo converts one Go field value to its member value form. It is
// shared between mirroring and default extraction at registration.
func valueFromGo(kind Kind, elem Kind, ref TypeRef, v reflect.Value) (MemberValue, error) {
	switch kind {
	case KindBool:
		return NewBool(v.Bool()), nil
	case KindByte:
		return NewByte(int8(v.Int())), nil
	case KindShort:
		return NewShort(int16(v.Int())), nil
	case KindChar:
		return NewChar(uint16(v.Uint())), nil
	case KindInt:
		return NewInt(int32(v.Int())), nil
	case KindLong:
		return NewLong(v.Int()), nil
	case KindFloat:
		return NewFloat(float32(v.Float())), nil
	case KindDouble:
		return NewDouble(v.Float()), nil
	case KindString:
		return NewString(v.String()), nil
	case KindClass:
		if v.IsNil() {
			return nil, errors.New(errors.PhaseMirror, errors.KindInvalidData).
				Detail("nil class literal").
				Build()
		}
		return NewClass(v.Interface().(TypeRef)), nil
	case KindEnum:
		et := ref.(*EnumType)
		name, ok := et.NameOf(v.Interface())
		if !ok {
			return nil, errors.New(errors.PhaseMirror, errors.KindInvalidEnum).
				Type(et.name).
				Value(v.Interface()).
				Detail("value %v is not a registered constant", v.Interface()).
				Build()
		}
		return NewEnum(et, name), nil
	case KindAnnotation:
		if v.IsNil() {
			return nil, errors.New(errors.PhaseMirror, errors.KindInvalidData).
				Detail("nil nested annotation").
				Build()
		}
		return mirrorValue(ref.(*Type), v.Elem())
	case KindArray:
		n := v.Len()
		elems := make([]MemberValue, 0, n)
		for i := 0; i < n; i++ {
			ev, err := valueFromGo(elem, 0, ref, v.Index(i))
			if err != nil {
				return nil, err
			}
			elems = append(elems, ev)
		}
		return &ArrayValue{elems: elems}, nil
	}
	return nil, errors.Unsupported(errors.PhaseMirror, fmt.Sprintf("member kind %s", kind))
}
