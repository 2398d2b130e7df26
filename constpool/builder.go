package constpool

import (
	"sync"

	"github.com/wippyai/annometa"
	"github.com/wippyai/annometa/errors"
)

// Builder interns constants into a growing pool. Equal inputs return equal
// indexes, so encoding the same annotation twice produces identical bytes.
// A Builder is safe for concurrent use.
type Builder struct {
	mu      sync.Mutex
	entries []entry
	index   map[poolKey]int
}

// poolKey identifies an interned entry. Numeric constants of different kinds
// never collide even when their bit patterns match.
type poolKey struct {
	utf8 string
	c    annometa.Constant
	kind entryKind
}

// NewBuilder creates an empty pool builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[poolKey]int)}
}

// Size returns the number of occupied slots, phantom slots included.
func (b *Builder) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Pool returns an immutable snapshot of the entries interned so far.
func (b *Builder) Pool() *Pool {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := make([]entry, len(b.entries))
	copy(entries, b.entries)
	return &Pool{entries: entries}
}

// intern returns the index of an existing equal entry or appends a new one.
// Long and double constants reserve a phantom second slot.
func (b *Builder) intern(k poolKey, e entry) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i, ok := b.index[k]; ok {
		return i, nil
	}
	slots := 1
	if e.kind == entryConst && (e.c.Kind == annometa.ConstLong || e.c.Kind == annometa.ConstDouble) {
		slots = 2
	}
	if len(b.entries)+slots > MaxEntries {
		return 0, errors.New(errors.PhaseEncode, errors.KindOutOfBounds).
			Detail("constant pool is full at %d slots", len(b.entries)).
			Build()
	}
	b.entries = append(b.entries, e)
	i := len(b.entries)
	if slots == 2 {
		b.entries = append(b.entries, entry{kind: entryUnused})
	}
	b.index[k] = i
	return i, nil
}

// StringIndex interns a UTF-8 entry.
func (b *Builder) StringIndex(s string) (int, error) {
	return b.intern(poolKey{kind: entryUtf8, utf8: s}, entry{kind: entryUtf8, utf8: s})
}

// TypeIndex interns a type descriptor. Descriptors share the UTF-8 entry
// space, as in the class-file format.
func (b *Builder) TypeIndex(desc string) (int, error) {
	return b.StringIndex(desc)
}

func (b *Builder) constIndex(c annometa.Constant) (int, error) {
	return b.intern(poolKey{kind: entryConst, c: c}, entry{kind: entryConst, c: c})
}

// IntIndex interns an int constant. Boolean, byte, short and char payloads
// are pooled through it widened to int.
func (b *Builder) IntIndex(v int32) (int, error) {
	return b.constIndex(annometa.IntConstant(v))
}

// LongIndex interns a long constant. It occupies two slots.
func (b *Builder) LongIndex(v int64) (int, error) {
	return b.constIndex(annometa.LongConstant(v))
}

// FloatIndex interns a float constant.
func (b *Builder) FloatIndex(v float32) (int, error) {
	return b.constIndex(annometa.FloatConstant(v))
}

// DoubleIndex interns a double constant. It occupies two slots.
func (b *Builder) DoubleIndex(v float64) (int, error) {
	return b.constIndex(annometa.DoubleConstant(v))
}
