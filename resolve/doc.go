// Package resolve materializes decoded annotation value trees into live Go
// instances, memoized by structural identity.
//
// # Materialization
//
// A value tree maps onto the Go struct registered for its annotation type.
// Members absent from the tree take the type's declared default, nested
// annotations materialize through the same cache, and error placeholders
// surface their recorded type-not-present failure at this point, when the
// value is finally consumed:
//
//	cache := resolve.NewCache()
//	timed, err := resolve.As[Timed](cache, value)
//	if err != nil { ... }
//
// Two independently decoded trees that compare structurally equal share one
// instance, so pointer comparison of materialized annotations is meaningful
// within a session.
//
// # Concurrency
//
// Any number of goroutines may call Materialize concurrently. The first
// request for a distinct structural value constructs the instance; requests
// arriving during construction block until it settles and then share the
// result. A failed construction propagates its error to every blocked
// caller and leaves no cache entry behind, so a later request retries from
// scratch.
package resolve
