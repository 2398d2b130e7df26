package annotation

// Resolver resolves binary type names seen during extraction to registered
// type references. *Registry is the standard implementation; tests may
// substitute a narrower one.
type Resolver interface {
	// Resolve returns the reference registered under name. An unknown name
	// fails with *errors.TypeNotPresentError; extraction treats that error
	// class as skippable and every other failure as fatal.
	Resolve(name string) (TypeRef, error)
}
