package annotation

import "reflect"

// TypeRef is a resolved reference to a registered type: an annotation type,
// an enum type, or a plain class. The concrete type distinguishes them.
type TypeRef interface {
	// TypeName returns the type's binary name, e.g. "com.example.Marker",
	// "int", or "[Lcom.example.Task;" for array classes.
	TypeName() string

	isTypeRef()
}

// Type is a registered annotation type: its binary name, the Go struct
// materialized instances take, and the declared members with their defaults.
type Type struct {
	name    string
	goType  reflect.Type
	members []*MemberDecl
	byName  map[string]*MemberDecl
}

// TypeName returns the annotation type's binary name.
func (t *Type) TypeName() string {
	return t.name
}

// GoType returns the Go struct type instances materialize into.
func (t *Type) GoType() reflect.Type {
	return t.goType
}

// Members returns the declared members in declaration order. The slice is
// shared; callers must not modify it.
func (t *Type) Members() []*MemberDecl {
	return t.members
}

// Member returns the declaration for name, or nil when the type does not
// declare it.
func (t *Type) Member(name string) *MemberDecl {
	return t.byName[name]
}

func (t *Type) isTypeRef() {}

// MemberDecl describes one declared annotation member.
type MemberDecl struct {
	// Name is the member name as it appears in the encoded form.
	Name string

	// Kind is the declared kind. Elem is the element kind when Kind is
	// KindArray and meaningless otherwise.
	Kind Kind
	Elem Kind

	// Ref is the registered enum or annotation type for enum, annotation
	// and corresponding array members; nil for every other kind.
	Ref TypeRef

	// Default is the declared default value, nil when the member is
	// required.
	Default MemberValue

	// Field is the index of the backing struct field.
	Field int
}

// EnumType is a registered enum type: its binary name, the named Go type of
// its constants, and the two-way mapping between constant names and Go
// values.
type EnumType struct {
	name   string
	goType reflect.Type
	consts map[string]reflect.Value
	names  map[any]string
	sorted []string
}

// TypeName returns the enum type's binary name.
func (e *EnumType) TypeName() string {
	return e.name
}

// GoType returns the Go type enum constants materialize into.
func (e *EnumType) GoType() reflect.Type {
	return e.goType
}

// Constant returns the Go value registered under a constant name.
func (e *EnumType) Constant(name string) (reflect.Value, bool) {
	v, ok := e.consts[name]
	return v, ok
}

// NameOf returns the constant name registered for a Go value.
func (e *EnumType) NameOf(v any) (string, bool) {
	name, ok := e.names[v]
	return name, ok
}

// Constants returns the constant names in sorted order.
func (e *EnumType) Constants() []string {
	return append([]string(nil), e.sorted...)
}

func (e *EnumType) isTypeRef() {}

// Class is a registered plain class reference, usable as a class literal
// member value. The primitive type names and void are pre-registered by
// NewRegistry.
type Class struct {
	name string
}

// TypeName returns the class's binary name.
func (c *Class) TypeName() string {
	return c.name
}

func (c *Class) isTypeRef() {}
