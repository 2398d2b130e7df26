package resolve

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/annometa/annotation"
	"github.com/wippyai/annometa/errors"
)

// build constructs the Go instance for one value tree. It runs outside the
// cache lock, so distinct keys materialize in parallel. A member absent from
// the tree falls back to the type's declared default; a declared member with
// neither a value nor a default fails.
func (c *Cache) build(v *annotation.Value) (any, error) {
	t := v.Type()
	inst := reflect.New(t.GoType())
	fields := inst.Elem()
	for _, decl := range t.Members() {
		mv, ok := v.Member(decl.Name)
		if !ok {
			if decl.Default == nil {
				return nil, errors.MemberMissing(errors.PhaseResolve, t.TypeName(), decl.Name)
			}
			mv = decl.Default
		}
		if err := c.assign(fields.Field(decl.Field), decl.Kind, decl.Elem, decl.Ref, mv); err != nil {
			return nil, errors.Describe(err, t.TypeName(), decl.Name)
		}
	}
	Logger().Debug("materialized annotation",
		zap.String("type", t.TypeName()),
		zap.String("goType", t.GoType().String()))
	return inst.Interface(), nil
}

// assign writes one member value into its struct field. A value whose kind
// does not match the declaration fails, never coerces. Error placeholders
// reproduce their deferred type-not-present failure here, at the point the
// value is actually consumed.
func (c *Cache) assign(field reflect.Value, kind, elem annotation.Kind, ref annotation.TypeRef, mv annotation.MemberValue) error {
	if ev, ok := mv.(*annotation.ErrorValue); ok {
		return ev.Err()
	}
	switch kind {
	case annotation.KindBool, annotation.KindByte, annotation.KindShort, annotation.KindChar,
		annotation.KindInt, annotation.KindLong, annotation.KindFloat, annotation.KindDouble:
		pv, ok := mv.(*annotation.PrimitiveValue)
		if !ok || pv.Kind() != kind {
			return valueMismatch(kind, mv)
		}
		assignPrimitive(field, pv)
	case annotation.KindString:
		sv, ok := mv.(*annotation.StringValue)
		if !ok {
			return valueMismatch(kind, mv)
		}
		field.SetString(sv.Value())
	case annotation.KindClass:
		cv, ok := mv.(*annotation.ClassValue)
		if !ok {
			return valueMismatch(kind, mv)
		}
		rv := reflect.ValueOf(cv.Ref())
		if !rv.Type().AssignableTo(field.Type()) {
			return errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
				Detail("class literal %s does not fit field type %s", cv.Ref().TypeName(), field.Type()).
				Build()
		}
		field.Set(rv)
	case annotation.KindEnum:
		ev, ok := mv.(*annotation.EnumValue)
		if !ok {
			return valueMismatch(kind, mv)
		}
		et := ref.(*annotation.EnumType)
		if ev.EnumType().TypeName() != et.TypeName() {
			return errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
				Detail("enum value of %s where %s is declared", ev.EnumType().TypeName(), et.TypeName()).
				Build()
		}
		rv, ok := et.Constant(ev.Constant())
		if !ok {
			return errors.InvalidEnum(errors.PhaseResolve, et.TypeName(), ev.Constant())
		}
		field.Set(rv)
	case annotation.KindAnnotation:
		nested, ok := mv.(*annotation.Value)
		if !ok {
			return valueMismatch(kind, mv)
		}
		declared := ref.(*annotation.Type)
		if nested.TypeName() != declared.TypeName() {
			return errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
				Detail("nested annotation of %s where %s is declared", nested.TypeName(), declared.TypeName()).
				Build()
		}
		inst, err := c.Materialize(nested)
		if err != nil {
			return err
		}
		rv := reflect.ValueOf(inst)
		if !rv.Type().AssignableTo(field.Type()) {
			return errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
				Detail("materialized %s does not fit field type %s", rv.Type(), field.Type()).
				Build()
		}
		field.Set(rv)
	case annotation.KindArray:
		av, ok := mv.(*annotation.ArrayValue)
		if !ok {
			return valueMismatch(kind, mv)
		}
		slice := reflect.MakeSlice(field.Type(), av.Len(), av.Len())
		for i := 0; i < av.Len(); i++ {
			if err := c.assign(slice.Index(i), elem, 0, ref, av.Element(i)); err != nil {
				return err
			}
		}
		field.Set(slice)
	default:
		return errors.Unsupported(errors.PhaseResolve, fmt.Sprintf("member kind %s", kind))
	}
	return nil
}

func assignPrimitive(field reflect.Value, pv *annotation.PrimitiveValue) {
	switch pv.Kind() {
	case annotation.KindBool:
		field.SetBool(pv.Bool())
	case annotation.KindByte:
		field.SetInt(int64(pv.Byte()))
	case annotation.KindShort:
		field.SetInt(int64(pv.Short()))
	case annotation.KindChar:
		field.SetUint(uint64(pv.Char()))
	case annotation.KindInt:
		field.SetInt(int64(pv.Int()))
	case annotation.KindLong:
		field.SetInt(pv.Long())
	case annotation.KindFloat:
		field.SetFloat(float64(pv.Float()))
	case annotation.KindDouble:
		field.SetFloat(pv.Double())
	}
}

func valueMismatch(want annotation.Kind, got annotation.MemberValue) error {
	return errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
		Detail("cannot use %s value where %s is declared", got.Kind(), want).
		Build()
}
