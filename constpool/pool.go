package constpool

import (
	"github.com/wippyai/annometa"
	"github.com/wippyai/annometa/errors"
)

// MaxEntries is the largest usable constant pool index. The class-file pool
// count is a u2 and index 0 is reserved, so indexes run 1..65534.
const MaxEntries = 65534

type entryKind uint8

const (
	// entryUnused marks the phantom slot after a long or double constant.
	entryUnused entryKind = iota
	entryUtf8
	entryConst
)

type entry struct {
	utf8 string
	c    annometa.Constant
	kind entryKind
}

// Pool is an immutable constant table in class-file layout: indexes are
// 1-based and long or double constants occupy two slots. A Pool is built
// through a Builder and is safe for concurrent readers.
type Pool struct {
	entries []entry
}

// Size returns the number of occupied slots, phantom slots included.
func (p *Pool) Size() int {
	return len(p.entries)
}

func (p *Pool) at(index int) (entry, error) {
	if index < 1 || index > len(p.entries) {
		return entry{}, errors.OutOfBounds(errors.PhaseExtract, index, len(p.entries)+1)
	}
	e := p.entries[index-1]
	if e.kind == entryUnused {
		return entry{}, errors.New(errors.PhaseExtract, errors.KindInvalidData).
			Value(index).
			Detail("index %d is the second slot of a long or double constant", index).
			Build()
	}
	return e, nil
}

// StringAt returns the UTF-8 entry at index.
func (p *Pool) StringAt(index int) (string, error) {
	e, err := p.at(index)
	if err != nil {
		return "", err
	}
	if e.kind != entryUtf8 {
		return "", errors.New(errors.PhaseExtract, errors.KindTypeMismatch).
			Value(index).
			Detail("constant %d is %s, not utf8", index, e.c.Kind).
			Build()
	}
	return e.utf8, nil
}

// TypeAt returns the type descriptor at index. Descriptors share the UTF-8
// entry space; syntax is checked by the annotation decoder, not here.
func (p *Pool) TypeAt(index int) (string, error) {
	return p.StringAt(index)
}

// ConstantAt returns the numeric constant at index.
func (p *Pool) ConstantAt(index int) (annometa.Constant, error) {
	e, err := p.at(index)
	if err != nil {
		return annometa.Constant{}, err
	}
	if e.kind != entryConst {
		return annometa.Constant{}, errors.New(errors.PhaseExtract, errors.KindTypeMismatch).
			Value(index).
			Detail("constant %d is utf8, not numeric", index).
			Build()
	}
	return e.c, nil
}
