package snapshot

import (
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"

	"github.com/wippyai/annometa/annotation"
	"github.com/wippyai/annometa/errors"
)

// Options control how a snapshot is read back.
type Options struct {
	// StrictMissingTypes escalates an unresolvable annotation type name to a
	// read error. When false the annotation is dropped from the result, the
	// same way tolerant extraction drops it.
	StrictMissingTypes bool
}

var (
	cachedDecMode     cbor.DecMode
	cachedDecModeErr  error
	cachedDecModeOnce sync.Once
)

func decodeMode() (cbor.DecMode, error) {
	cachedDecModeOnce.Do(func() {
		cachedDecMode, cachedDecModeErr = cbor.DecOptions{}.DecMode()
	})
	return cachedDecMode, cachedDecModeErr
}

// Read loads a snapshot, re-resolving every type name through res. Enum and
// class types that no longer resolve become error placeholders; a persisted
// placeholder stays one. Members equal to a default declared by the current
// registration are compacted away.
func Read(r io.Reader, res annotation.Resolver, opts Options) (*Set, error) {
	dm, err := decodeMode()
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := dm.NewDecoder(r).Decode(&env); err != nil {
		return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "malformed snapshot")
	}
	if env.Version != Version {
		return nil, errors.New(errors.PhaseSnapshot, errors.KindUnsupported).
			Detail("snapshot version %d is not supported", env.Version).
			Build()
	}
	rd := &reader{res: res, opts: opts}
	set := NewSet()
	for _, wc := range env.Containers {
		for _, wv := range wc.Values {
			v, err := rd.value(wc.Name, wv)
			if err != nil {
				return nil, describeContainer(err, wc.Name)
			}
			if v != nil {
				set.Add(wc.Name, v)
			}
		}
	}
	Logger().Debug("read snapshot",
		zap.Int("containers", len(env.Containers)),
		zap.Int("annotations", set.Len()))
	return set, nil
}

// describeContainer attaches the container name to structured errors that do
// not already carry one.
func describeContainer(err error, container string) error {
	if e, ok := err.(*errors.Error); ok && e.Container == "" {
		e.Container = container
	}
	return err
}

// reader rebuilds value trees from their wire form against one resolver.
type reader struct {
	res  annotation.Resolver
	opts Options
}

// value rebuilds one annotation. A nil result with a nil error means the
// annotation's type is unknown and the annotation was dropped.
func (r *reader) value(container string, wv wireValue) (*annotation.Value, error) {
	if wv.Type == "" {
		return nil, errors.InvalidData(errors.PhaseSnapshot, "annotation without a type name")
	}
	ref, err := r.res.Resolve(wv.Type)
	if err != nil {
		tnp, ok := errors.AsTypeNotPresent(err)
		if !ok {
			return nil, err
		}
		if r.opts.StrictMissingTypes {
			return nil, errors.New(errors.PhaseSnapshot, errors.KindTypeNotPresent).
				Type(tnp.TypeName).
				Cause(tnp).
				Detail("annotation type not present").
				Build()
		}
		Logger().Debug("dropping annotation, type not present",
			zap.String("type", wv.Type),
			zap.String("container", container))
		return nil, nil
	}
	t, ok := ref.(*annotation.Type)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseSnapshot, wv.Type, "",
			"resolved reference is not an annotation type")
	}
	members := make([]annotation.Member, 0, len(wv.Members))
	seen := make(map[string]struct{}, len(wv.Members))
	for _, wm := range wv.Members {
		if wm.Name == "" {
			return nil, errors.New(errors.PhaseSnapshot, errors.KindInvalidData).
				Type(wv.Type).
				Detail("empty member name").
				Build()
		}
		if _, dup := seen[wm.Name]; dup {
			return nil, errors.Duplicate(errors.PhaseSnapshot, "member", wm.Name)
		}
		seen[wm.Name] = struct{}{}
		mv, err := r.member(container, wm.Value)
		if err != nil {
			return nil, errors.Describe(err, wv.Type, wm.Name)
		}
		if mv == nil {
			continue
		}
		members = append(members, annotation.Member{Name: wm.Name, Value: mv})
	}
	return annotation.NewValue(t, members...)
}

// member rebuilds one element. A nil result means a nested annotation was
// dropped for an unknown type; the enclosing value or array omits it.
func (r *reader) member(container string, we wireElement) (annotation.MemberValue, error) {
	kind, ok := annotation.KindForTag(we.Tag)
	if !ok {
		return nil, errors.InvalidTag(errors.PhaseSnapshot, we.Tag)
	}
	if kind.IsPrimitive() {
		return annotation.NewPrimitive(kind, we.Bits)
	}
	switch kind {
	case annotation.KindString:
		return annotation.NewString(we.Str), nil
	case annotation.KindEnum:
		return r.enum(container, we)
	case annotation.KindClass:
		return r.class(container, we)
	case annotation.KindAnnotation:
		v, err := r.value(container, wireValue{Type: we.Type, Members: we.Members})
		if err != nil || v == nil {
			return nil, err
		}
		return v, nil
	case annotation.KindArray:
		return r.array(container, we)
	case annotation.KindError:
		if we.Type == "" {
			return nil, errors.InvalidData(errors.PhaseSnapshot, "placeholder without a type name")
		}
		return annotation.NewError(we.Type, nil), nil
	}
	return nil, errors.InvalidTag(errors.PhaseSnapshot, we.Tag)
}

// enum rebuilds an enum constant. An unresolvable enum type becomes an error
// placeholder, never a failure; the constant name is not validated against
// the type here.
func (r *reader) enum(container string, we wireElement) (annotation.MemberValue, error) {
	if we.Type == "" || we.Str == "" {
		return nil, errors.InvalidData(errors.PhaseSnapshot, "enum value without a type or constant name")
	}
	ref, err := r.res.Resolve(we.Type)
	if err != nil {
		if tnp, ok := errors.AsTypeNotPresent(err); ok {
			return r.missing(container, we.Type, tnp)
		}
		return nil, err
	}
	et, ok := ref.(*annotation.EnumType)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseSnapshot, we.Type, "",
			"resolved reference is not an enum type")
	}
	return annotation.NewEnum(et, we.Str), nil
}

// class rebuilds a class literal. An unresolvable type becomes an error
// placeholder, never a failure.
func (r *reader) class(container string, we wireElement) (annotation.MemberValue, error) {
	if we.Type == "" {
		return nil, errors.InvalidData(errors.PhaseSnapshot, "class literal without a type name")
	}
	ref, err := r.res.Resolve(we.Type)
	if err != nil {
		if tnp, ok := errors.AsTypeNotPresent(err); ok {
			return r.missing(container, we.Type, tnp)
		}
		return nil, err
	}
	return annotation.NewClass(ref), nil
}

func (r *reader) array(container string, we wireElement) (annotation.MemberValue, error) {
	elems := make([]annotation.MemberValue, 0, len(we.Elems))
	for _, ew := range we.Elems {
		e, err := r.member(container, ew)
		if err != nil {
			return nil, err
		}
		if e == nil {
			continue
		}
		elems = append(elems, e)
	}
	return annotation.NewArray(elems...), nil
}

// missing records a member-level unresolvable type as an error placeholder.
func (r *reader) missing(container, name string, cause *errors.TypeNotPresentError) (annotation.MemberValue, error) {
	Logger().Debug("recording error placeholder, type not present",
		zap.String("type", name),
		zap.String("container", container))
	return annotation.NewError(name, cause.Cause), nil
}
