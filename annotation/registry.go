package annotation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/wippyai/annometa/errors"
)

var typeRefType = reflect.TypeOf((*TypeRef)(nil)).Elem()

// Registry maps binary type names to registered types and Go types back to
// their registrations. It implements Resolver.
//
// Registration normally happens once at startup; all methods are
// nevertheless safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	names     map[string]TypeRef
	annoTypes map[reflect.Type]*Type
	enumTypes map[reflect.Type]*EnumType
}

// NewRegistry returns a registry with the primitive type names and void
// pre-registered as plain classes, so primitive class literals resolve out
// of the box.
func NewRegistry() *Registry {
	r := &Registry{
		names:     make(map[string]TypeRef),
		annoTypes: make(map[reflect.Type]*Type),
		enumTypes: make(map[reflect.Type]*EnumType),
	}
	for _, name := range []string{
		"boolean", "byte", "short", "char", "int", "long", "float", "double", "void",
	} {
		r.names[name] = &Class{name: name}
	}
	return r
}

// Resolve implements Resolver.
func (r *Registry) Resolve(name string) (TypeRef, error) {
	r.mu.RLock()
	ref, ok := r.names[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &errors.TypeNotPresentError{TypeName: name}
	}
	return ref, nil
}

// Lookup returns the reference registered under name without the error
// contract of Resolve.
func (r *Registry) Lookup(name string) (TypeRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.names[name]
	return ref, ok
}

// Names returns every registered binary name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// annotationFor returns the annotation type registered for a Go struct type.
func (r *Registry) annotationFor(rt reflect.Type) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.annoTypes[rt]
	return t, ok
}

// RegisterClass registers a plain class reference under its binary name so
// class literals can resolve to it. Array classes use descriptor form with
// dots, e.g. "[Lcom.example.Task;".
func (r *Registry) RegisterClass(name string) (*Class, error) {
	if name == "" {
		return nil, errors.InvalidData(errors.PhaseRegister, "empty class name")
	}
	c := &Class{name: name}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[name]; exists {
		return nil, errors.Duplicate(errors.PhaseRegister, "type", name)
	}
	r.names[name] = c
	return c, nil
}

// MustRegisterClass is RegisterClass, panicking on error. Intended for
// package init of fixed type sets.
func (r *Registry) MustRegisterClass(name string) *Class {
	c, err := r.RegisterClass(name)
	if err != nil {
		panic(err)
	}
	return c
}

// RegisterEnum registers an enum type. constants maps every constant name to
// its Go value; the values must share one named, comparable Go type, which
// becomes the type enum members materialize into.
func (r *Registry) RegisterEnum(name string, constants any) (*EnumType, error) {
	if name == "" {
		return nil, errors.InvalidData(errors.PhaseRegister, "empty enum type name")
	}
	rv := reflect.ValueOf(constants)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, errors.New(errors.PhaseRegister, errors.KindUnsupported).
			Type(name).
			GoType(fmt.Sprintf("%T", constants)).
			Detail("enum constants must be a map from string to one named Go type").
			Build()
	}
	et := rv.Type().Elem()
	if et.PkgPath() == "" || !et.Comparable() {
		return nil, errors.New(errors.PhaseRegister, errors.KindUnsupported).
			Type(name).
			GoType(et.String()).
			Detail("enum constants must use a named comparable Go type").
			Build()
	}
	if rv.Len() == 0 {
		return nil, errors.New(errors.PhaseRegister, errors.KindInvalidData).
			Type(name).
			Detail("enum with no constants").
			Build()
	}

	consts := make(map[string]reflect.Value, rv.Len())
	valNames := make(map[any]string, rv.Len())
	sorted := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		cname := iter.Key().String()
		cval := iter.Value()
		if cname == "" {
			return nil, errors.New(errors.PhaseRegister, errors.KindInvalidData).
				Type(name).
				Detail("empty enum constant name").
				Build()
		}
		boxed := cval.Interface()
		if prev, dup := valNames[boxed]; dup {
			return nil, errors.New(errors.PhaseRegister, errors.KindDuplicate).
				Type(name).
				Value(boxed).
				Detail("value %v registered under both %q and %q", boxed, prev, cname).
				Build()
		}
		consts[cname] = cval
		valNames[boxed] = cname
		sorted = append(sorted, cname)
	}
	sort.Strings(sorted)

	e := &EnumType{name: name, goType: et, consts: consts, names: valNames, sorted: sorted}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[name]; exists {
		return nil, errors.Duplicate(errors.PhaseRegister, "type", name)
	}
	if prev, exists := r.enumTypes[et]; exists {
		return nil, errors.New(errors.PhaseRegister, errors.KindDuplicate).
			Type(name).
			GoType(et.String()).
			Detail("Go type already registered as enum %s", prev.name).
			Build()
	}
	r.names[name] = e
	r.enumTypes[et] = e
	return e, nil
}

// MustRegisterEnum is RegisterEnum, panicking on error.
func (r *Registry) MustRegisterEnum(name string, constants any) *EnumType {
	e, err := r.RegisterEnum(name, constants)
	if err != nil {
		panic(err)
	}
	return e
}

// RegisterAnnotation registers an annotation type backed by a Go struct.
// Exported struct fields become declared members; the anno field tag
// controls the member name and defaults:
//
//	type Timed struct {
//		Value   int64    `anno:"value"`
//		Unit    TimeUnit `anno:"unit,default"`
//		Targets []string `anno:"targets,default"`
//	}
//
// The tag's first element names the member, defaulting to the field name
// with its first rune lowered. The "default" flag declares the prototype
// field's value as the member default; members without it are required.
// Fields tagged "-" and unexported fields are ignored. prototype supplies
// both the struct type and the default values.
//
// Member Go types map as: bool, int8, int16, uint16 (char), int32, int64,
// float32, float64, string, TypeRef for class literals, a registered enum
// type, a pointer to a registered annotation struct, and slices of any of
// those. Enum and nested annotation types must be registered before the
// annotations that use them.
func (r *Registry) RegisterAnnotation(name string, prototype any) (*Type, error) {
	if name == "" {
		return nil, errors.InvalidData(errors.PhaseRegister, "empty annotation type name")
	}
	pv := reflect.ValueOf(prototype)
	if pv.Kind() == reflect.Pointer {
		if pv.IsNil() {
			return nil, errors.New(errors.PhaseRegister, errors.KindInvalidData).
				Type(name).
				Detail("nil prototype").
				Build()
		}
		pv = pv.Elem()
	}
	if !pv.IsValid() || pv.Kind() != reflect.Struct {
		return nil, errors.New(errors.PhaseRegister, errors.KindUnsupported).
			Type(name).
			GoType(fmt.Sprintf("%T", prototype)).
			Detail("prototype must be a struct or pointer to struct").
			Build()
	}
	pt := pv.Type()

	t := &Type{name: name, goType: pt, byName: make(map[string]*MemberDecl)}
	for i := 0; i < pt.NumField(); i++ {
		f := pt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("anno")
		if tag == "-" {
			continue
		}
		memberName, flags := parseTag(tag)
		if memberName == "" {
			memberName = lowerFirst(f.Name)
		}
		hasDefault := false
		for _, fl := range flags {
			if fl != "default" {
				return nil, errors.New(errors.PhaseRegister, errors.KindUnsupported).
					Type(name).
					Member(memberName).
					Detail("unknown anno tag flag %q", fl).
					Build()
			}
			hasDefault = true
		}
		if _, dup := t.byName[memberName]; dup {
			return nil, errors.Duplicate(errors.PhaseRegister, "member", memberName)
		}

		kind, elem, ref, err := r.memberKind(f.Type)
		if err != nil {
			return nil, errors.Describe(err, name, memberName)
		}
		decl := &MemberDecl{Name: memberName, Kind: kind, Elem: elem, Ref: ref, Field: i}
		if hasDefault {
			dv, err := valueFromGo(kind, elem, ref, pv.Field(i))
			if err != nil {
				return nil, errors.Describe(err, name, memberName)
			}
			decl.Default = dv
		}
		t.members = append(t.members, decl)
		t.byName[memberName] = decl
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[name]; exists {
		return nil, errors.Duplicate(errors.PhaseRegister, "type", name)
	}
	if prev, exists := r.annoTypes[pt]; exists {
		return nil, errors.New(errors.PhaseRegister, errors.KindDuplicate).
			Type(name).
			GoType(pt.String()).
			Detail("Go type already registered as annotation %s", prev.name).
			Build()
	}
	r.names[name] = t
	r.annoTypes[pt] = t
	return t, nil
}

// MustRegisterAnnotation is RegisterAnnotation, panicking on error.
func (r *Registry) MustRegisterAnnotation(name string, prototype any) *Type {
	t, err := r.RegisterAnnotation(name, prototype)
	if err != nil {
		panic(err)
	}
	return t
}

// memberKind maps a Go field type to its declared kind, array element kind,
// and referenced registration.
func (r *Registry) memberKind(ft reflect.Type) (Kind, Kind, TypeRef, error) {
	if ft == typeRefType {
		return KindClass, 0, nil, nil
	}
	r.mu.RLock()
	e, isEnum := r.enumTypes[ft]
	r.mu.RUnlock()
	if isEnum {
		return KindEnum, 0, e, nil
	}

	switch ft.Kind() {
	case reflect.Pointer:
		if ft.Elem().Kind() != reflect.Struct {
			break
		}
		r.mu.RLock()
		t, ok := r.annoTypes[ft.Elem()]
		r.mu.RUnlock()
		if !ok {
			return 0, 0, nil, errors.New(errors.PhaseRegister, errors.KindNotFound).
				GoType(ft.String()).
				Detail("nested annotation struct not registered; register it first").
				Build()
		}
		return KindAnnotation, 0, t, nil
	case reflect.Slice:
		ek, _, ref, err := r.memberKind(ft.Elem())
		if err != nil {
			return 0, 0, nil, err
		}
		if ek == KindArray {
			return 0, 0, nil, errors.New(errors.PhaseRegister, errors.KindUnsupported).
				GoType(ft.String()).
				Detail("nested array members are not representable").
				Build()
		}
		return KindArray, ek, ref, nil
	}

	if ft.PkgPath() == "" {
		switch ft.Kind() {
		case reflect.Bool:
			return KindBool, 0, nil, nil
		case reflect.Int8:
			return KindByte, 0, nil, nil
		case reflect.Int16:
			return KindShort, 0, nil, nil
		case reflect.Uint16:
			return KindChar, 0, nil, nil
		case reflect.Int32:
			return KindInt, 0, nil, nil
		case reflect.Int64:
			return KindLong, 0, nil, nil
		case reflect.Float32:
			return KindFloat, 0, nil, nil
		case reflect.Float64:
			return KindDouble, 0, nil, nil
		case reflect.String:
			return KindString, 0, nil, nil
		}
	}
	return 0, 0, nil, errors.New(errors.PhaseRegister, errors.KindUnsupported).
		GoType(ft.String()).
		Detail("type is not a supported annotation member type").
		Build()
}

func parseTag(tag string) (string, []string) {
	parts := strings.Split(tag, ",")
	return parts[0], parts[1:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
