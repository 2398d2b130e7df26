package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // annotation type registration
	PhaseExtract  Phase = "extract"  // bytes to value tree
	PhaseEncode   Phase = "encode"   // value tree to bytes
	PhaseMirror   Phase = "mirror"   // live instance to value tree
	PhaseResolve  Phase = "resolve"  // value tree to materialized instance
	PhaseSnapshot Phase = "snapshot" // persistence of extraction results
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData    Kind = "invalid_data"
	KindInvalidTag     Kind = "invalid_tag"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindTypeNotPresent Kind = "type_not_present"
	KindTypeMismatch   Kind = "type_mismatch"
	KindMemberMissing  Kind = "member_missing"
	KindInvalidEnum    Kind = "invalid_enum"
	KindNotFound       Kind = "not_found"
	KindDuplicate      Kind = "duplicate"
	KindUnsupported    Kind = "unsupported"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Type      string // JVM type name involved, if any
	Member    string // annotation member name, if any
	GoType    string // Go-side type, if any
	Container string // enclosing class context, if known
	Detail    string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
		if e.Member != "" {
			b.WriteString(" member ")
			b.WriteString(e.Member)
		}
	} else if e.Member != "" {
		b.WriteString(": member ")
		b.WriteString(e.Member)
	}

	if e.GoType != "" {
		if e.Type != "" || e.Member != "" {
			b.WriteString(", ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString("Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.Type != "" || e.Member != "" || e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Container != "" {
		b.WriteString(" (in ")
		b.WriteString(e.Container)
		b.WriteByte(')')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Type sets the JVM type name
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Member sets the annotation member name
func (b *Builder) Member(name string) *Builder {
	b.err.Member = name
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Container sets the enclosing class context
func (b *Builder) Container(name string) *Builder {
	b.err.Container = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, typeName, member, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Type:   typeName,
		Member: member,
		Detail: detail,
	}
}

// InvalidTag creates an invalid tag byte error
func InvalidTag(phase Phase, tag byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidTag,
		Detail: fmt.Sprintf("unknown element tag 0x%02x (%q)", tag, tag),
		Value:  tag,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Duplicate creates a duplicate registration error
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("%s %q already registered", what, name),
	}
}

// MemberMissing creates an error for a member with no value and no default
func MemberMissing(phase Phase, typeName, member string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMemberMissing,
		Type:   typeName,
		Member: member,
		Detail: "no value and no declared default",
	}
}

// InvalidEnum creates an invalid enum constant error
func InvalidEnum(phase Phase, enumType, constant string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Type:   enumType,
		Detail: fmt.Sprintf("no enum constant %q", constant),
		Value:  constant,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Describe stamps the type and member context onto a structured error when
// the inner failure has not already named them. Other error types pass
// through unchanged.
func Describe(err error, typeName, member string) error {
	if e, ok := err.(*Error); ok {
		if e.Type == "" {
			e.Type = typeName
		}
		if e.Member == "" {
			e.Member = member
		}
	}
	return err
}

// TypeNotPresentError reports a type reference that could not be resolved.
// It carries enough identity to reproduce the failure when the referencing
// value is actually consumed rather than when it is decoded.
type TypeNotPresentError struct {
	TypeName string
	Cause    error
}

func (e *TypeNotPresentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("type %s not present: %v", e.TypeName, e.Cause)
	}
	return fmt.Sprintf("type %s not present", e.TypeName)
}

// Unwrap returns the underlying lookup failure
func (e *TypeNotPresentError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type
func (e *TypeNotPresentError) Is(target error) bool {
	if t, ok := target.(*TypeNotPresentError); ok {
		return t.TypeName == "" || t.TypeName == e.TypeName
	}
	return false
}

// AsTypeNotPresent unwraps err looking for a deferred type resolution
// failure.
func AsTypeNotPresent(err error) (*TypeNotPresentError, bool) {
	var t *TypeNotPresentError
	if stderrors.As(err, &t) {
		return t, true
	}
	return nil, false
}
