package annotation

import (
	"strconv"
	"strings"
)

// StringValue holds a string member.
type StringValue struct {
	value string
}

// NewString builds a string value.
func NewString(v string) *StringValue {
	return &StringValue{value: v}
}

// Value returns the string payload.
func (s *StringValue) Value() string {
	return s.value
}

// Kind returns KindString.
func (s *StringValue) Kind() Kind {
	return KindString
}

// Tag returns the element_value tag byte.
func (s *StringValue) Tag() byte {
	return TagString
}

// Equal reports whether other is a string value with the same payload.
func (s *StringValue) Equal(other MemberValue) bool {
	o, ok := other.(*StringValue)
	return ok && s.value == o.value
}

// Hash returns the structural hash.
func (s *StringValue) Hash() uint64 {
	return hashString(hashByte(hashInit(), TagString), s.value)
}

// Types returns nil; string values reference no types.
func (s *StringValue) Types() []TypeRef {
	return nil
}

// Strings returns the payload.
func (s *StringValue) Strings() []string {
	return []string{s.value}
}

// ErrorProxies returns nil; string values always resolve.
func (s *StringValue) ErrorProxies() []*ErrorValue {
	return nil
}

// String renders the payload as a quoted literal.
func (s *StringValue) String() string {
	return strconv.Quote(s.value)
}

func (s *StringValue) isMemberValue() {}

// ClassValue holds a class literal member referencing a resolved type.
type ClassValue struct {
	ref TypeRef
}

// NewClass builds a class literal value. ref must be non-nil.
func NewClass(ref TypeRef) *ClassValue {
	if ref == nil {
		panic("annotation: nil type reference")
	}
	return &ClassValue{ref: ref}
}

// Ref returns the referenced type.
func (c *ClassValue) Ref() TypeRef {
	return c.ref
}

// Kind returns KindClass.
func (c *ClassValue) Kind() Kind {
	return KindClass
}

// Tag returns the element_value tag byte.
func (c *ClassValue) Tag() byte {
	return TagClass
}

// Equal reports whether other is a class literal naming the same type.
func (c *ClassValue) Equal(other MemberValue) bool {
	o, ok := other.(*ClassValue)
	return ok && c.ref.TypeName() == o.ref.TypeName()
}

// Hash returns the structural hash.
func (c *ClassValue) Hash() uint64 {
	return hashString(hashByte(hashInit(), TagClass), c.ref.TypeName())
}

// Types returns the referenced type.
func (c *ClassValue) Types() []TypeRef {
	return []TypeRef{c.ref}
}

// Strings returns nil; the type name travels with the reference.
func (c *ClassValue) Strings() []string {
	return nil
}

// ErrorProxies returns nil; resolved class literals carry no placeholders.
func (c *ClassValue) ErrorProxies() []*ErrorValue {
	return nil
}

// String renders the literal in source form.
func (c *ClassValue) String() string {
	return c.ref.TypeName() + ".class"
}

func (c *ClassValue) isMemberValue() {}

// EnumValue holds an enum constant member: a resolved enum type plus the
// constant's name. The name is not checked against the type's constants at
// construction; a stale name surfaces when the value is materialized.
type EnumValue struct {
	typ      *EnumType
	constant string
}

// NewEnum builds an enum constant value. typ must be non-nil and constant
// non-empty.
func NewEnum(typ *EnumType, constant string) *EnumValue {
	if typ == nil {
		panic("annotation: nil enum type")
	}
	if constant == "" {
		panic("annotation: empty enum constant name")
	}
	return &EnumValue{typ: typ, constant: constant}
}

// EnumType returns the resolved enum type.
func (e *EnumValue) EnumType() *EnumType {
	return e.typ
}

// Constant returns the constant's name.
func (e *EnumValue) Constant() string {
	return e.constant
}

// Kind returns KindEnum.
func (e *EnumValue) Kind() Kind {
	return KindEnum
}

// Tag returns the element_value tag byte.
func (e *EnumValue) Tag() byte {
	return TagEnum
}

// Equal reports whether other names the same constant of the same enum type.
func (e *EnumValue) Equal(other MemberValue) bool {
	o, ok := other.(*EnumValue)
	return ok && e.typ.name == o.typ.name && e.constant == o.constant
}

// Hash returns the structural hash.
func (e *EnumValue) Hash() uint64 {
	h := hashString(hashByte(hashInit(), TagEnum), e.typ.name)
	return hashString(h, e.constant)
}

// Types returns the enum type.
func (e *EnumValue) Types() []TypeRef {
	return []TypeRef{e.typ}
}

// Strings returns the constant name.
func (e *EnumValue) Strings() []string {
	return []string{e.constant}
}

// ErrorProxies returns nil; resolved enum values carry no placeholders.
func (e *EnumValue) ErrorProxies() []*ErrorValue {
	return nil
}

// String renders the constant in source form.
func (e *EnumValue) String() string {
	return e.typ.name + "." + e.constant
}

func (e *EnumValue) isMemberValue() {}

// ArrayValue holds an array member. Elements are homogeneous by construction
// of the encoded form and ordered; order is significant for equality.
type ArrayValue struct {
	elems []MemberValue
}

// NewArray builds an array value from its elements. Elements must be
// non-nil; the slice is copied.
func NewArray(elems ...MemberValue) *ArrayValue {
	out := make([]MemberValue, len(elems))
	for i, e := range elems {
		if e == nil {
			panic("annotation: nil array element")
		}
		out[i] = e
	}
	return &ArrayValue{elems: out}
}

// Len returns the element count.
func (a *ArrayValue) Len() int {
	return len(a.elems)
}

// Element returns the element at index i.
func (a *ArrayValue) Element(i int) MemberValue {
	return a.elems[i]
}

// Elements returns a copy of the element slice.
func (a *ArrayValue) Elements() []MemberValue {
	return append([]MemberValue(nil), a.elems...)
}

// Kind returns KindArray.
func (a *ArrayValue) Kind() Kind {
	return KindArray
}

// Tag returns the element_value tag byte.
func (a *ArrayValue) Tag() byte {
	return TagArray
}

// Equal reports elementwise structural equality in order.
func (a *ArrayValue) Equal(other MemberValue) bool {
	o, ok := other.(*ArrayValue)
	if !ok || len(a.elems) != len(o.elems) {
		return false
	}
	for i, e := range a.elems {
		if !e.Equal(o.elems[i]) {
			return false
		}
	}
	return true
}

// Hash returns the structural hash.
func (a *ArrayValue) Hash() uint64 {
	h := hashByte(hashInit(), TagArray)
	h = hashUint64(h, uint64(len(a.elems)))
	for _, e := range a.elems {
		h = hashUint64(h, e.Hash())
	}
	return h
}

// Types returns the types referenced by all elements.
func (a *ArrayValue) Types() []TypeRef {
	var types []TypeRef
	for _, e := range a.elems {
		types = append(types, e.Types()...)
	}
	return types
}

// Strings returns the strings reachable from all elements.
func (a *ArrayValue) Strings() []string {
	var strs []string
	for _, e := range a.elems {
		strs = append(strs, e.Strings()...)
	}
	return strs
}

// ErrorProxies returns the placeholders reachable from all elements.
func (a *ArrayValue) ErrorProxies() []*ErrorValue {
	var proxies []*ErrorValue
	for _, e := range a.elems {
		proxies = append(proxies, e.ErrorProxies()...)
	}
	return proxies
}

// String renders the elements in brace form.
func (a *ArrayValue) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range a.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte('}')
	return b.String()
}

func (a *ArrayValue) isMemberValue() {}
