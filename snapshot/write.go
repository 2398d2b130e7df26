package snapshot

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"

	"github.com/wippyai/annometa/annotation"
	"github.com/wippyai/annometa/errors"
)

// Version is the format version emitted by Write. Read rejects envelopes
// carrying any other version.
const Version = 1

// envelope is the top-level CBOR document.
type envelope struct {
	Version    int             `cbor:"version"`
	Containers []wireContainer `cbor:"containers"`
}

type wireContainer struct {
	Name   string      `cbor:"name"`
	Values []wireValue `cbor:"values,omitempty"`
}

type wireValue struct {
	Type    string       `cbor:"type"`
	Members []wireMember `cbor:"members,omitempty"`
}

type wireMember struct {
	Name  string      `cbor:"name"`
	Value wireElement `cbor:"value"`
}

// wireElement is the serialized form of one member value. The tag selects
// which of the remaining fields carry the payload, the same way it selects
// the layout in the class-file encoding.
type wireElement struct {
	Tag     byte          `cbor:"tag"`
	Bits    uint64        `cbor:"bits,omitempty"`
	Str     string        `cbor:"str,omitempty"`
	Type    string        `cbor:"type,omitempty"`
	Members []wireMember  `cbor:"members,omitempty"`
	Elems   []wireElement `cbor:"elems,omitempty"`
}

var (
	cachedEncMode     cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

// encodeMode returns a cached EncMode, initializing it on first use. Map
// keys encode in deterministic order so equal documents produce equal bytes.
func encodeMode() (cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := cbor.EncOptions{
			Sort: cbor.SortCoreDeterministic,
		}
		cachedEncMode, cachedEncModeErr = opts.EncMode()
	})
	return cachedEncMode, cachedEncModeErr
}

// Write serializes the set to w. Unlike the class-file encoder, Write
// accepts error placeholders; they persist as the name of their missing
// type.
func Write(w io.Writer, s *Set) error {
	if s == nil {
		return errors.InvalidData(errors.PhaseSnapshot, "nil snapshot set")
	}
	em, err := encodeMode()
	if err != nil {
		return err
	}
	env := envelope{Version: Version}
	for _, name := range s.Containers() {
		values := s.Annotations(name)
		sort.Slice(values, func(i, j int) bool {
			if values[i].TypeName() != values[j].TypeName() {
				return values[i].TypeName() < values[j].TypeName()
			}
			return values[i].Hash() < values[j].Hash()
		})
		wc := wireContainer{Name: name, Values: make([]wireValue, 0, len(values))}
		for _, v := range values {
			wv, err := wireFromValue(v)
			if err != nil {
				return describeContainer(err, name)
			}
			wc.Values = append(wc.Values, wv)
		}
		env.Containers = append(env.Containers, wc)
	}
	if err := em.NewEncoder(w).Encode(&env); err != nil {
		return err
	}
	Logger().Debug("wrote snapshot",
		zap.Int("containers", len(env.Containers)),
		zap.Int("annotations", s.Len()))
	return nil
}

// wireFromValue converts one annotation with its members in name order;
// structural equality ignores member order, so the sorted form is the
// canonical one.
func wireFromValue(v *annotation.Value) (wireValue, error) {
	names := v.MemberNames()
	sort.Strings(names)
	wv := wireValue{Type: v.TypeName(), Members: make([]wireMember, 0, len(names))}
	for _, name := range names {
		m, _ := v.Member(name)
		we, err := wireFromMember(m)
		if err != nil {
			return wireValue{}, errors.Describe(err, v.TypeName(), name)
		}
		wv.Members = append(wv.Members, wireMember{Name: name, Value: we})
	}
	return wv, nil
}

func wireFromMember(m annotation.MemberValue) (wireElement, error) {
	switch mv := m.(type) {
	case *annotation.PrimitiveValue:
		return wireElement{Tag: mv.Tag(), Bits: mv.Bits()}, nil
	case *annotation.StringValue:
		return wireElement{Tag: annotation.TagString, Str: mv.Value()}, nil
	case *annotation.EnumValue:
		return wireElement{Tag: annotation.TagEnum, Type: mv.EnumType().TypeName(), Str: mv.Constant()}, nil
	case *annotation.ClassValue:
		return wireElement{Tag: annotation.TagClass, Type: mv.Ref().TypeName()}, nil
	case *annotation.Value:
		wv, err := wireFromValue(mv)
		if err != nil {
			return wireElement{}, err
		}
		return wireElement{Tag: annotation.TagAnnotation, Type: wv.Type, Members: wv.Members}, nil
	case *annotation.ArrayValue:
		elems := make([]wireElement, mv.Len())
		for i := range elems {
			we, err := wireFromMember(mv.Element(i))
			if err != nil {
				return wireElement{}, err
			}
			elems[i] = we
		}
		return wireElement{Tag: annotation.TagArray, Elems: elems}, nil
	case *annotation.ErrorValue:
		// the cause is session state; only the missing name survives a round trip
		return wireElement{Tag: annotation.TagError, Type: mv.TypeName()}, nil
	}
	return wireElement{}, errors.Unsupported(errors.PhaseSnapshot, fmt.Sprintf("cannot serialize %T", m))
}
