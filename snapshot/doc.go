// Package snapshot persists extraction results and loads them back without
// re-decoding class bytes.
//
// A snapshot stores annotation value trees in CBOR, keyed by the container
// they were extracted from. Serialization is deterministic: containers are
// ordered by name, annotations by type name and structural hash, members by
// name. Two sets holding structurally equal annotations write identical
// bytes. Array elements keep their order; it is significant for equality.
//
// Reading re-resolves every type name against the caller's resolver with the
// tolerance rules extraction has: an unknown annotation type drops the
// annotation (or fails under Options.StrictMissingTypes), and an unknown
// enum or class type inside a member becomes an error placeholder. A
// persisted placeholder stays a placeholder on read; its encoded form does
// not retain what the unresolved member looked like. Members equal to a
// default declared by the current registration are compacted away again, so
// loaded values compare and hash exactly like freshly extracted ones.
package snapshot
