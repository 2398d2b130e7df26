package testbed

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/wippyai/annometa/pipeline"
)

// Sixteen classes carrying byte-identical attributes extracted and
// materialized in parallel must converge on one instance per distinct tree.
func TestConcurrentExtractMaterialize(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newEnv(t)
	data, pool := encode(t, e.routeValue(t))
	s := pipeline.NewWithDefaults(e.reg)

	const workers = 16
	var wg sync.WaitGroup
	instances := make([]any, workers)
	errs := make([]error, workers)
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go func(n int) {
			defer wg.Done()
			container := fmt.Sprintf("com.example.api.Service%d", n)
			values, err := s.ExtractClass(container, data, pool)
			if err != nil {
				errs[n] = err
				return
			}
			if len(values) != 1 {
				errs[n] = fmt.Errorf("extracted %d annotations", len(values))
				return
			}
			instances[n], errs[n] = s.Materialize(values[0])
		}(n)
	}
	wg.Wait()

	for n, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", n, err)
		}
	}
	for n, inst := range instances {
		if inst != instances[0] {
			t.Fatalf("worker %d materialized a different instance", n)
		}
	}
	// one construction for the route tree, one for the nested retry tree
	if misses := s.Stats().Misses; misses != 2 {
		t.Errorf("Stats().Misses = %d, want 2", misses)
	}
	if n := s.Set().Len(); n != workers {
		t.Errorf("Set().Len() = %d, want one annotation per container", n)
	}
}
