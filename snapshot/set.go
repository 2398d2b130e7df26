package snapshot

import (
	"sort"
	"sync"

	"github.com/wippyai/annometa/annotation"
)

// Set accumulates extraction results per container. Structurally equal
// annotations collapse: adding a value that equals one already recorded for
// the container is a no-op. All methods are safe for concurrent use.
type Set struct {
	mu         sync.RWMutex
	containers map[string][]*annotation.Value
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{containers: make(map[string][]*annotation.Value)}
}

// Add records values for container. Nil values and values structurally equal
// to one already recorded for the container are skipped.
func (s *Set) Add(container string, values ...*annotation.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range values {
		if v == nil || containsValue(s.containers[container], v) {
			continue
		}
		s.containers[container] = append(s.containers[container], v)
	}
}

// Annotations returns the values recorded for container in insertion order.
// The slice is a copy.
func (s *Set) Annotations(container string) []*annotation.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*annotation.Value(nil), s.containers[container]...)
}

// Containers returns the container names in sorted order.
func (s *Set) Containers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.containers))
	for name := range s.containers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total annotation count across all containers.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, values := range s.containers {
		n += len(values)
	}
	return n
}

func containsValue(values []*annotation.Value, v *annotation.Value) bool {
	for _, have := range values {
		if have.Equal(v) {
			return true
		}
	}
	return false
}
