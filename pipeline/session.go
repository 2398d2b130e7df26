package pipeline

import (
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/annometa"
	"github.com/wippyai/annometa/annotation"
	"github.com/wippyai/annometa/errors"
	"github.com/wippyai/annometa/resolve"
	"github.com/wippyai/annometa/snapshot"
)

// Options configures session behavior.
type Options struct {
	// StrictMissingTypes escalates unresolvable annotation type names to
	// errors during extraction and snapshot loading. Off by default:
	// annotations of unknown types are dropped.
	StrictMissingTypes bool

	// Logger receives the session's debug output. Nil means no logging.
	Logger *zap.Logger
}

// DefaultOptions returns default session configuration.
func DefaultOptions() Options {
	return Options{}
}

// Session ties one registry, one resolution cache and one result set
// together for the lifetime of a build or run. Independent sessions never
// share materialized instances; two sessions given equal trees each build
// their own.
//
// All methods are safe for concurrent use.
type Session struct {
	registry *annotation.Registry
	cache    *resolve.Cache
	set      *snapshot.Set
	options  Options
	logger   *zap.Logger
}

// New creates a session over the given registry and options.
func New(reg *annotation.Registry, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		registry: reg,
		cache:    resolve.NewCache(),
		set:      snapshot.NewSet(),
		options:  opts,
		logger:   logger,
	}
}

// NewWithDefaults creates a session with default options.
func NewWithDefaults(reg *annotation.Registry) *Session {
	return New(reg, DefaultOptions())
}

// Registry returns the session's type registry.
func (s *Session) Registry() *annotation.Registry {
	return s.registry
}

// Cache returns the session's resolution cache, for use with resolve.As.
func (s *Session) Cache() *resolve.Cache {
	return s.cache
}

// Set returns the session's accumulated extraction results.
func (s *Session) Set() *snapshot.Set {
	return s.set
}

// Options returns the configuration.
func (s *Session) Options() Options {
	return s.options
}

// ExtractClass decodes one annotation attribute body read from container's
// class bytes and records the results. Repeated extraction of the same
// container merges; structurally equal annotations collapse. The returned
// values are the ones this call decoded, dropped entries excluded.
func (s *Session) ExtractClass(container string, data []byte, table annometa.ConstantTable) ([]*annotation.Value, error) {
	values, err := annotation.ExtractAll(data, table, s.registry, annotation.ExtractOptions{
		StrictMissingTypes: s.options.StrictMissingTypes,
		Container:          container,
	})
	if err != nil {
		return nil, err
	}
	s.set.Add(container, values...)
	s.logger.Debug("extracted class annotations",
		zap.String("container", container),
		zap.Int("annotations", len(values)))
	return values, nil
}

// Annotations returns the values recorded for container.
func (s *Session) Annotations(container string) []*annotation.Value {
	return s.set.Annotations(container)
}

// Containers returns every container with recorded annotations, sorted.
func (s *Session) Containers() []string {
	return s.set.Containers()
}

// Materialize returns the instance for v through the session cache.
func (s *Session) Materialize(v *annotation.Value) (any, error) {
	return s.cache.Materialize(v)
}

// MaterializeAll materializes every annotation recorded for container. The
// returned slice is parallel to Annotations(container); entries that failed
// are nil and their failures are combined into the returned error.
func (s *Session) MaterializeAll(container string) ([]any, error) {
	values := s.set.Annotations(container)
	instances := make([]any, len(values))
	var err error
	for i, v := range values {
		inst, merr := s.cache.Materialize(v)
		if merr != nil {
			err = multierr.Append(err, errors.Describe(merr, v.TypeName(), ""))
			continue
		}
		instances[i] = inst
	}
	return instances, err
}

// Stats returns resolution cache usage.
func (s *Session) Stats() resolve.Stats {
	return s.cache.Stats()
}

// WriteSnapshot serializes the session's recorded annotations to w.
func (s *Session) WriteSnapshot(w io.Writer) error {
	return snapshot.Write(w, s.set)
}

// ReadSnapshot loads a snapshot and merges its annotations into the
// session, re-resolving type names against the session registry under the
// session's strictness.
func (s *Session) ReadSnapshot(r io.Reader) error {
	loaded, err := snapshot.Read(r, s.registry, snapshot.Options{
		StrictMissingTypes: s.options.StrictMissingTypes,
	})
	if err != nil {
		return err
	}
	for _, container := range loaded.Containers() {
		s.set.Add(container, loaded.Annotations(container)...)
	}
	s.logger.Debug("merged snapshot",
		zap.Int("containers", len(loaded.Containers())),
		zap.Int("annotations", loaded.Len()))
	return nil
}
