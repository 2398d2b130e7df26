// Package pipeline provides the high-level API for extracting, resolving
// and persisting annotation metadata.
//
// # Quick Start
//
//	reg := annotation.NewRegistry()
//	reg.MustRegisterAnnotation("com.example.Timed", Timed{Unit: "ms"})
//
//	s := pipeline.NewWithDefaults(reg)
//
//	// Decode the annotation attribute of one class
//	values, err := s.ExtractClass("com.example.Service", attr, pool)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Materialize typed instances through the session cache
//	timed, err := resolve.As[Timed](s.Cache(), values[0])
//
// # Sessions
//
// A Session owns one resolution cache and one result set. Every annotation
// extracted through it is recorded per container and deduplicated by
// structural equality; materialized instances are shared within the session
// and never across sessions.
//
// # Snapshots
//
// WriteSnapshot persists everything the session has extracted;
// ReadSnapshot merges a persisted set back in, re-resolving type names
// against the session's registry. A build stage can extract once, write a
// snapshot, and hand resolution to a later stage with a different
// registry state.
package pipeline
