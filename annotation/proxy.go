package annotation

import (
	"fmt"

	"github.com/wippyai/annometa/errors"
)

// ErrorValue stands in for a member whose type reference could not be
// resolved during extraction. The failure is deferred: the tree still
// decodes, compares and hashes like any other, and the resolution error is
// reproduced only when the placeholder is actually consumed.
//
// Two placeholders are equal when they name the same missing type. A
// placeholder never equals a resolved value, so a member carrying one is
// never mistaken for its declared default.
type ErrorValue struct {
	err *errors.TypeNotPresentError
}

// NewError builds a placeholder for typeName. cause, if non-nil, records the
// underlying lookup failure.
func NewError(typeName string, cause error) *ErrorValue {
	return &ErrorValue{err: &errors.TypeNotPresentError{TypeName: typeName, Cause: cause}}
}

// TypeName returns the name of the unresolvable type.
func (e *ErrorValue) TypeName() string {
	return e.err.TypeName
}

// Err returns the deferred resolution failure.
func (e *ErrorValue) Err() error {
	return e.err
}

// Kind returns KindError.
func (e *ErrorValue) Kind() Kind {
	return KindError
}

// Tag returns TagError; placeholders have no wire form.
func (e *ErrorValue) Tag() byte {
	return TagError
}

// Equal reports whether other is a placeholder for the same type name.
func (e *ErrorValue) Equal(other MemberValue) bool {
	o, ok := other.(*ErrorValue)
	return ok && e.err.TypeName == o.err.TypeName
}

// Hash returns the structural hash.
func (e *ErrorValue) Hash() uint64 {
	return hashString(hashByte(hashInit(), TagError), e.err.TypeName)
}

// Types returns nil; the reference never resolved.
func (e *ErrorValue) Types() []TypeRef {
	return nil
}

// Strings returns nil; the missing name travels with the placeholder.
func (e *ErrorValue) Strings() []string {
	return nil
}

// ErrorProxies returns the placeholder itself.
func (e *ErrorValue) ErrorProxies() []*ErrorValue {
	return []*ErrorValue{e}
}

// String renders the placeholder for diagnostics.
func (e *ErrorValue) String() string {
	return fmt.Sprintf("<type %s not present>", e.err.TypeName)
}

func (e *ErrorValue) isMemberValue() {}
