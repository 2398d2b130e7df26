// Package annometa extracts annotation metadata from compiled class files
// and materializes annotation instances from it on demand.
//
// The module decodes the compact binary encoding of annotations stored in
// class-file attributes (the element_value grammar) into immutable value
// trees, and later turns those trees into live Go values through a
// memoizing resolution cache keyed by structural equality.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	annometa/            Root package with the ConstantTable interface
//	├── annotation/      Value model, binary decoder/encoder, mirror path,
//	│                    type registry and descriptor handling
//	├── constpool/       In-memory constant table and interning builder
//	├── resolve/         Materialization cache (one instance per distinct tree)
//	├── snapshot/        Persistence of extraction results between build stages
//	├── pipeline/        Session facade tying registry, cache and logging
//	│                    to one build or run
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Register the annotation types the build knows about, then extract and
// materialize:
//
//	reg := annotation.NewRegistry()
//	reg.MustRegisterEnum("com.example.Suit", map[string]Suit{"HEARTS": Hearts})
//	reg.MustRegisterAnnotation("com.example.Marker", Marker{Count: 1})
//
//	values, err := annotation.ExtractAll(attr, pool, reg, annotation.ExtractOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cache := resolve.NewCache()
//	marker, err := resolve.As[Marker](cache, values[0])
//
// # Decode Modes
//
// Extraction is strict or tolerant about annotation classes missing from the
// registry. Tolerant mode walks the exact byte span of a skipped annotation
// so sibling entries stay aligned, and omits it from the result; strict mode
// fails with the unresolved type name. Missing classes referenced by member
// values (class literals, enum types) never abort extraction: they decode to
// error placeholders that reproduce the failure only when the member is
// actually consumed.
//
// # Thread Safety
//
// Registry lookups, decoded value trees and the resolution cache are safe
// for concurrent use. Extraction itself holds no shared state; run one
// extraction per goroutine. The cache guarantees at-most-once
// materialization per distinct tree, including under concurrent first
// access.
package annometa
