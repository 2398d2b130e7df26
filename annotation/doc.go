// Package annotation decodes, models and re-encodes class-file annotation
// metadata.
//
// The package covers three concerns: a recursive binary codec for the
// annotation attribute format, an immutable variant-typed value model with
// structural equality, and a registry that binds binary type names to the Go
// types annotations materialize into.
//
// # Encoded Form
//
// An annotation attribute body is a u2 count followed by annotation
// structures. Each structure is a type index, a member count, and
// name-indexed element values. Every element value starts with a tag byte
// selecting its payload:
//
//	Tag   Payload                    Decoded As
//	─────────────────────────────────────────────────────
//	B C D F I J S Z   u2 const index    PrimitiveValue
//	s     u2 utf8 index              StringValue
//	e     u2 type + u2 const index   EnumValue
//	c     u2 type index              ClassValue
//	@     nested annotation          *Value
//	[     u2 length + elements       ArrayValue
//
// All multi-byte fields are big-endian. Indexes resolve through an
// annometa.ConstantTable supplied by the caller.
//
// # Decode Modes
//
// Extraction runs in one of two interpretations of the same grammar. The
// value mode builds the tree. The skip mode walks a structure's exact byte
// span without resolving anything, so an annotation of an unknown type can
// be dropped while leaving the cursor on the next sibling. The two modes
// consume identical byte counts by construction.
//
// Unknown types fail extraction only when ExtractOptions.StrictMissingTypes
// is set, and only for annotation type frames. Enum and class member
// references to unknown types always decode to ErrorValue placeholders that
// defer the failure until the value is consumed.
//
// # Value Identity
//
// Values compare by structure, not identity: member sets are unordered,
// array elements ordered, floating point payloads compared by canonical bit
// pattern. Members equal to their declared default are dropped at
// construction, so the same logical annotation always has one
// representation. Hash is consistent with Equal; the resolution cache in
// package resolve keys on both.
package annotation
