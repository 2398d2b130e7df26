package constpool

import (
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/wippyai/annometa"
	"github.com/wippyai/annometa/errors"
)

func TestBuilderInterns(t *testing.T) {
	b := NewBuilder()

	i1, err := b.StringIndex("hello")
	if err != nil {
		t.Fatalf("StringIndex: %v", err)
	}
	if i1 != 1 {
		t.Errorf("first index = %d, want 1", i1)
	}
	i2, err := b.StringIndex("hello")
	if err != nil {
		t.Fatalf("StringIndex: %v", err)
	}
	if i2 != i1 {
		t.Errorf("re-interned string got index %d, want %d", i2, i1)
	}

	i3, err := b.TypeIndex("Lcom/example/Task;")
	if err != nil {
		t.Fatalf("TypeIndex: %v", err)
	}
	if i3 != 2 {
		t.Errorf("second entry index = %d, want 2", i3)
	}

	// a descriptor and an equal plain string share the entry
	i4, err := b.StringIndex("Lcom/example/Task;")
	if err != nil {
		t.Fatalf("StringIndex: %v", err)
	}
	if i4 != i3 {
		t.Errorf("descriptor re-interned at %d, want %d", i4, i3)
	}
}

func TestBuilderLongDoubleTakeTwoSlots(t *testing.T) {
	b := NewBuilder()

	li, err := b.LongIndex(1 << 40)
	if err != nil {
		t.Fatalf("LongIndex: %v", err)
	}
	if li != 1 {
		t.Errorf("long index = %d, want 1", li)
	}
	si, err := b.StringIndex("next")
	if err != nil {
		t.Fatalf("StringIndex: %v", err)
	}
	if si != 3 {
		t.Errorf("index after long = %d, want 3", si)
	}
	di, err := b.DoubleIndex(2.5)
	if err != nil {
		t.Fatalf("DoubleIndex: %v", err)
	}
	if di != 4 {
		t.Errorf("double index = %d, want 4", di)
	}
	if b.Size() != 5 {
		t.Errorf("Size() = %d, want 5", b.Size())
	}
}

func TestBuilderSeparatesConstantKinds(t *testing.T) {
	b := NewBuilder()

	ii, _ := b.IntIndex(1)
	fi, _ := b.FloatIndex(1.5)
	li, _ := b.LongIndex(1)
	di, _ := b.DoubleIndex(1.5)

	seen := map[int]bool{ii: true}
	for _, i := range []int{fi, li, di} {
		if seen[i] {
			t.Fatalf("index %d reused across constant kinds", i)
		}
		seen[i] = true
	}

	// equal bit patterns of different kinds stay distinct
	zi, _ := b.IntIndex(0)
	zl, _ := b.LongIndex(0)
	if zi == zl {
		t.Error("int 0 and long 0 should not share an entry")
	}
}

func TestPoolLookups(t *testing.T) {
	b := NewBuilder()
	si, _ := b.StringIndex("hello")
	li, _ := b.LongIndex(42)
	fi, _ := b.FloatIndex(1.5)
	p := b.Pool()

	s, err := p.StringAt(si)
	if err != nil || s != "hello" {
		t.Errorf("StringAt(%d) = %q, %v, want hello", si, s, err)
	}
	d, err := p.TypeAt(si)
	if err != nil || d != "hello" {
		t.Errorf("TypeAt(%d) = %q, %v", si, d, err)
	}
	c, err := p.ConstantAt(li)
	if err != nil || c.Kind != annometa.ConstLong || c.Long() != 42 {
		t.Errorf("ConstantAt(%d) = %+v, %v, want long 42", li, c, err)
	}
	c, err = p.ConstantAt(fi)
	if err != nil || c.Kind != annometa.ConstFloat || c.Float() != 1.5 {
		t.Errorf("ConstantAt(%d) = %+v, %v, want float 1.5", fi, c, err)
	}
}

func TestPoolLookupErrors(t *testing.T) {
	b := NewBuilder()
	si, _ := b.StringIndex("hello")
	li, _ := b.LongIndex(42)
	p := b.Pool()

	tests := []struct {
		name string
		call func() error
		kind errors.Kind
	}{
		{"index zero", func() error { _, err := p.StringAt(0); return err }, errors.KindOutOfBounds},
		{"index past end", func() error { _, err := p.ConstantAt(99); return err }, errors.KindOutOfBounds},
		{"negative index", func() error { _, err := p.StringAt(-1); return err }, errors.KindOutOfBounds},
		{"phantom slot", func() error { _, err := p.StringAt(li + 1); return err }, errors.KindInvalidData},
		{"utf8 as constant", func() error { _, err := p.ConstantAt(si); return err }, errors.KindTypeMismatch},
		{"constant as utf8", func() error { _, err := p.StringAt(li); return err }, errors.KindTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("lookup should fail")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %T is not structured", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("error kind = %s, want %s (%v)", e.Kind, tt.kind, err)
			}
		})
	}
}

func TestPoolSnapshotIsolation(t *testing.T) {
	b := NewBuilder()
	b.StringIndex("only")
	p := b.Pool()

	if _, err := b.StringIndex("later"); err != nil {
		t.Fatalf("StringIndex: %v", err)
	}
	if p.Size() != 1 {
		t.Errorf("snapshot grew to %d entries after builder append", p.Size())
	}
	if _, err := p.StringAt(2); err == nil {
		t.Error("snapshot should not see entries interned after it was taken")
	}
}

func TestBuilderFull(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < MaxEntries; i++ {
		if _, err := b.StringIndex(fmt.Sprintf("s%d", i)); err != nil {
			t.Fatalf("StringIndex %d: %v", i, err)
		}
	}
	_, err := b.StringIndex("one too many")
	if err == nil {
		t.Fatal("interning past capacity should fail")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindOutOfBounds {
		t.Errorf("error = %v, want out of bounds", err)
	}

	// a long needs two free slots
	b2 := NewBuilder()
	for i := 0; i < MaxEntries-1; i++ {
		b2.StringIndex(fmt.Sprintf("s%d", i))
	}
	if _, err := b2.LongIndex(7); err == nil {
		t.Error("long constant should not fit in a single remaining slot")
	}
	if _, err := b2.IntIndex(7); err != nil {
		t.Errorf("int constant should fit in the last slot: %v", err)
	}
}

func TestBuilderConcurrent(t *testing.T) {
	b := NewBuilder()
	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	indexes := make([][]int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			indexes[w] = make([]int, perWorker)
			for i := 0; i < perWorker; i++ {
				idx, err := b.StringIndex(fmt.Sprintf("shared%d", i))
				if err != nil {
					t.Errorf("worker %d: %v", w, err)
					return
				}
				indexes[w][i] = idx
			}
		}(w)
	}
	wg.Wait()

	// every worker must observe the same index per string
	for w := 1; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			if indexes[w][i] != indexes[0][i] {
				t.Fatalf("worker %d saw index %d for string %d, worker 0 saw %d",
					w, indexes[w][i], i, indexes[0][i])
			}
		}
	}
	if b.Size() != perWorker {
		t.Errorf("Size() = %d, want %d", b.Size(), perWorker)
	}
}
