// Package errors provides structured error types for the annometa library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: JVM type and member names, Go type names,
// the enclosing container class, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
//		Type("com.example.Timed").
//		Member("unit").
//		GoType("string").
//		Detail("member decodes as enum, field wants string").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseExtract, "com.example.Suit", "", "not an enum type")
//	err := errors.OutOfBounds(errors.PhaseExtract, 10, 5)
//
// TypeNotPresentError is separate: it identifies a type reference that could
// not be resolved and is carried inside error placeholders so the failure can
// be reproduced when the value is consumed rather than when it is decoded.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
