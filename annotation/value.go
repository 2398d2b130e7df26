package annotation

import (
	"strings"

	"github.com/wippyai/annometa/errors"
)

// MemberValue is the closed set of shapes an annotation member can take:
// primitives, strings, class literals, enum constants, nested annotations,
// arrays of those, and error placeholders for references that failed to
// resolve. Every implementation is immutable once constructed and safe to
// share across goroutines.
type MemberValue interface {
	// Kind identifies the variant.
	Kind() Kind

	// Tag returns the element_value tag byte for the variant.
	Tag() byte

	// Equal reports deep structural equality with another value. Annotation
	// members compare as unordered name/value sets, array elements compare
	// in order, and floating point payloads compare by canonical bit
	// pattern.
	Equal(other MemberValue) bool

	// Hash returns a structural hash consistent with Equal.
	Hash() uint64

	// Types returns every resolved type reference reachable from the value.
	Types() []TypeRef

	// Strings returns every string reachable from the value, including
	// member names and enum constant names.
	Strings() []string

	// ErrorProxies returns every error placeholder reachable from the
	// value.
	ErrorProxies() []*ErrorValue

	// String renders the value in annotation source form.
	String() string

	isMemberValue()
}

// Member pairs a member name with its value; it is the construction unit for
// NewValue.
type Member struct {
	Name  string
	Value MemberValue
}

// Value is a decoded annotation: a resolved annotation type plus the member
// values that differ from their declared defaults, keyed by name. Members
// structurally equal to a declared default are dropped at construction, so
// two values built from different encodings of the same logical annotation
// compare equal and hash alike.
//
// Values are immutable and safe for concurrent use. Member encounter order
// is preserved for rendering and re-encoding but does not affect equality.
type Value struct {
	typ     *Type
	names   []string
	members map[string]MemberValue
	hash    uint64
}

// NewValue constructs an annotation value of the given type from explicit
// members. Names must be non-empty and unique, values non-nil. Members that
// equal their declared default are dropped. Names the type does not declare
// are kept; the encoded form may predate or postdate the registered
// declaration.
func NewValue(typ *Type, members ...Member) (*Value, error) {
	if typ == nil {
		return nil, errors.InvalidData(errors.PhaseExtract, "nil annotation type")
	}
	names := make([]string, 0, len(members))
	byName := make(map[string]MemberValue, len(members))
	for _, m := range members {
		if m.Name == "" {
			return nil, errors.New(errors.PhaseExtract, errors.KindInvalidData).
				Type(typ.name).
				Detail("empty member name").
				Build()
		}
		if m.Value == nil {
			return nil, errors.New(errors.PhaseExtract, errors.KindInvalidData).
				Type(typ.name).
				Member(m.Name).
				Detail("nil member value").
				Build()
		}
		if _, dup := byName[m.Name]; dup {
			return nil, errors.Duplicate(errors.PhaseExtract, "member", m.Name)
		}
		if decl := typ.Member(m.Name); decl != nil && decl.Default != nil && decl.Default.Equal(m.Value) {
			continue
		}
		names = append(names, m.Name)
		byName[m.Name] = m.Value
	}
	return newValue(typ, names, byName), nil
}

// newValue wires an already validated member set. The hash is computed once;
// the value never changes afterwards.
func newValue(typ *Type, names []string, members map[string]MemberValue) *Value {
	v := &Value{typ: typ, names: names, members: members}
	v.hash = v.computeHash()
	return v
}

// Type returns the resolved annotation type. It is never nil.
func (v *Value) Type() *Type {
	return v.typ
}

// TypeName returns the annotation type's binary name.
func (v *Value) TypeName() string {
	return v.typ.name
}

// MemberCount returns the number of explicit members.
func (v *Value) MemberCount() int {
	return len(v.names)
}

// Member returns the explicit value for name. Compacted and unset members
// report false; their defaults live on the type declaration.
func (v *Value) Member(name string) (MemberValue, bool) {
	m, ok := v.members[name]
	return m, ok
}

// MemberNames returns the explicit member names in encounter order.
func (v *Value) MemberNames() []string {
	return append([]string(nil), v.names...)
}

// ForEachMember calls fn for every explicit member in encounter order.
func (v *Value) ForEachMember(fn func(name string, value MemberValue)) {
	for _, name := range v.names {
		fn(name, v.members[name])
	}
}

// Kind returns KindAnnotation.
func (v *Value) Kind() Kind {
	return KindAnnotation
}

// Tag returns the element_value tag byte.
func (v *Value) Tag() byte {
	return TagAnnotation
}

// Equal reports whether other is an annotation of the same type with the
// same member set. Member order does not matter.
func (v *Value) Equal(other MemberValue) bool {
	o, ok := other.(*Value)
	if !ok {
		return false
	}
	if v == o {
		return true
	}
	if v.typ.name != o.typ.name || len(v.members) != len(o.members) {
		return false
	}
	for name, m := range v.members {
		om, ok := o.members[name]
		if !ok || !m.Equal(om) {
			return false
		}
	}
	return true
}

// Hash returns the structural hash computed at construction.
func (v *Value) Hash() uint64 {
	return v.hash
}

// computeHash folds the type name and the member set. Member entries combine
// commutatively so the hash is independent of encounter order, matching
// Equal.
func (v *Value) computeHash() uint64 {
	h := hashByte(hashInit(), TagAnnotation)
	h = hashString(h, v.typ.name)
	var sum uint64
	for name, m := range v.members {
		eh := hashString(hashInit(), name)
		eh = hashUint64(eh, m.Hash())
		sum += eh
	}
	return hashUint64(h, sum)
}

// Types returns the annotation type followed by every type reachable from
// member values, in encounter order.
func (v *Value) Types() []TypeRef {
	types := []TypeRef{v.typ}
	for _, name := range v.names {
		types = append(types, v.members[name].Types()...)
	}
	return types
}

// Strings returns, per member in encounter order, the member name followed
// by the strings reachable from its value.
func (v *Value) Strings() []string {
	strs := make([]string, 0, len(v.names))
	for _, name := range v.names {
		strs = append(strs, name)
		strs = append(strs, v.members[name].Strings()...)
	}
	return strs
}

// ErrorProxies returns every placeholder reachable from member values.
func (v *Value) ErrorProxies() []*ErrorValue {
	var proxies []*ErrorValue
	for _, name := range v.names {
		proxies = append(proxies, v.members[name].ErrorProxies()...)
	}
	return proxies
}

// String renders the annotation in source form.
func (v *Value) String() string {
	var b strings.Builder
	b.WriteByte('@')
	b.WriteString(v.typ.name)
	if len(v.names) == 0 {
		return b.String()
	}
	b.WriteByte('(')
	for i, name := range v.names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(v.members[name].String())
	}
	b.WriteByte(')')
	return b.String()
}

func (v *Value) isMemberValue() {}
