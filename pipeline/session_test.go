package pipeline

import (
	"bytes"
	stderrors "errors"
	"testing"

	"go.uber.org/multierr"

	"github.com/wippyai/annometa/annotation"
	"github.com/wippyai/annometa/constpool"
	"github.com/wippyai/annometa/errors"
	"github.com/wippyai/annometa/resolve"
)

type suit string

const (
	hearts suit = "HEARTS"
	spades suit = "SPADES"
)

type timedAnno struct {
	Value int64  `anno:"value"`
	Unit  string `anno:"unit,default"`
}

type taggedAnno struct {
	Su suit `anno:"su"`
}

type fixture struct {
	reg    *annotation.Registry
	suit   *annotation.EnumType
	timed  *annotation.Type
	tagged *annotation.Type
}

func newFixture(tb testing.TB) *fixture {
	tb.Helper()
	f := &fixture{reg: annotation.NewRegistry()}
	f.suit = f.reg.MustRegisterEnum("com.example.Suit", map[string]suit{"HEARTS": hearts, "SPADES": spades})
	f.timed = f.reg.MustRegisterAnnotation("com.example.Timed", timedAnno{Unit: "ms"})
	f.tagged = f.reg.MustRegisterAnnotation("com.example.Tagged", taggedAnno{})
	return f
}

func mustValue(tb testing.TB, t *annotation.Type, members ...annotation.Member) *annotation.Value {
	tb.Helper()
	v, err := annotation.NewValue(t, members...)
	if err != nil {
		tb.Fatalf("NewValue: %v", err)
	}
	return v
}

// encodeAttr serializes values as one attribute body over a fresh pool.
func encodeAttr(tb testing.TB, b *constpool.Builder, values ...*annotation.Value) []byte {
	tb.Helper()
	data, err := annotation.EncodeAll(values, b)
	if err != nil {
		tb.Fatalf("EncodeAll: %v", err)
	}
	return data
}

func TestSessionExtractClass(t *testing.T) {
	f := newFixture(t)
	want := mustValue(t, f.timed, annotation.Member{Name: "value", Value: annotation.NewLong(42)})
	b := constpool.NewBuilder()
	attr := encodeAttr(t, b, want)
	s := NewWithDefaults(f.reg)

	values, err := s.ExtractClass("com.example.Service", attr, b.Pool())
	if err != nil {
		t.Fatalf("ExtractClass: %v", err)
	}
	if len(values) != 1 || !values[0].Equal(want) {
		t.Fatalf("extracted %v, want %s", values, want)
	}
	recorded := s.Annotations("com.example.Service")
	if len(recorded) != 1 || !recorded[0].Equal(want) {
		t.Fatalf("recorded %v, want %s", recorded, want)
	}
	if got := s.Containers(); len(got) != 1 || got[0] != "com.example.Service" {
		t.Fatalf("Containers() = %v", got)
	}

	// re-extracting the same attribute collapses into the existing record
	if _, err := s.ExtractClass("com.example.Service", attr, b.Pool()); err != nil {
		t.Fatalf("ExtractClass again: %v", err)
	}
	if n := s.Set().Len(); n != 1 {
		t.Fatalf("Len() = %d, want 1", n)
	}
}

func TestSessionMaterializeSharesInstances(t *testing.T) {
	f := newFixture(t)
	v := mustValue(t, f.timed, annotation.Member{Name: "value", Value: annotation.NewLong(7)})
	b := constpool.NewBuilder()
	attr := encodeAttr(t, b, v)
	s := NewWithDefaults(f.reg)

	first, err := s.ExtractClass("com.example.A", attr, b.Pool())
	if err != nil {
		t.Fatalf("ExtractClass: %v", err)
	}
	second, err := s.ExtractClass("com.example.B", attr, b.Pool())
	if err != nil {
		t.Fatalf("ExtractClass: %v", err)
	}

	instA, err := s.Materialize(first[0])
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	instB, err := s.Materialize(second[0])
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if instA != instB {
		t.Fatal("equal trees materialized to different instances")
	}
	timed := instA.(*timedAnno)
	if timed.Value != 7 || timed.Unit != "ms" {
		t.Fatalf("materialized %+v, want Value 7 with defaulted Unit", timed)
	}
	stats := s.Stats()
	if stats.Misses != 1 || stats.Hits != 1 {
		t.Fatalf("Stats() = %+v, want one miss and one hit", stats)
	}

	viaAs, err := resolve.As[timedAnno](s.Cache(), first[0])
	if err != nil {
		t.Fatalf("As: %v", err)
	}
	if viaAs != timed {
		t.Fatal("As bypassed the session cache")
	}
}

func TestSessionMaterializeAll(t *testing.T) {
	f := newFixture(t)
	good := mustValue(t, f.tagged, annotation.Member{Name: "su", Value: annotation.NewEnum(f.suit, "SPADES")})
	bad := mustValue(t, f.tagged, annotation.Member{Name: "su", Value: annotation.NewEnum(f.suit, "BOGUS")})
	s := NewWithDefaults(f.reg)
	s.Set().Add("com.example.Service", good, bad)

	instances, err := s.MaterializeAll("com.example.Service")
	if len(instances) != 2 {
		t.Fatalf("got %d instances, want 2", len(instances))
	}
	if instances[0] == nil {
		t.Fatal("healthy annotation did not materialize")
	}
	if got := instances[0].(*taggedAnno).Su; got != spades {
		t.Fatalf("Su = %q, want %q", got, spades)
	}
	if instances[1] != nil {
		t.Fatalf("failed annotation produced %v", instances[1])
	}
	errs := multierr.Errors(err)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), err)
	}
	var e *errors.Error
	if !stderrors.As(errs[0], &e) || e.Kind != errors.KindInvalidEnum {
		t.Fatalf("error = %v, want invalid_enum", errs[0])
	}
}

func TestSessionSnapshotRoundTrip(t *testing.T) {
	f := newFixture(t)
	v := mustValue(t, f.timed,
		annotation.Member{Name: "value", Value: annotation.NewLong(9)},
		annotation.Member{Name: "unit", Value: annotation.NewString("s")},
	)
	writer := NewWithDefaults(f.reg)
	writer.Set().Add("com.example.Service", v)

	var buf bytes.Buffer
	if err := writer.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	loader := NewWithDefaults(f.reg)
	if err := loader.ReadSnapshot(&buf); err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	values := loader.Annotations("com.example.Service")
	if len(values) != 1 || !values[0].Equal(v) {
		t.Fatalf("loaded %v, want %s", values, v)
	}
	inst, err := loader.Materialize(values[0])
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	timed := inst.(*timedAnno)
	if timed.Value != 9 || timed.Unit != "s" {
		t.Fatalf("materialized %+v", timed)
	}
}

func TestSessionMissingTypes(t *testing.T) {
	f := newFixture(t)
	v := mustValue(t, f.timed, annotation.Member{Name: "value", Value: annotation.NewLong(1)})
	b := constpool.NewBuilder()
	attr := encodeAttr(t, b, v)
	bare := annotation.NewRegistry()

	tolerant := NewWithDefaults(bare)
	values, err := tolerant.ExtractClass("com.example.Service", attr, b.Pool())
	if err != nil {
		t.Fatalf("tolerant ExtractClass: %v", err)
	}
	if len(values) != 0 || tolerant.Set().Len() != 0 {
		t.Fatalf("tolerant session recorded %v", values)
	}

	strict := New(bare, Options{StrictMissingTypes: true})
	_, err = strict.ExtractClass("com.example.Service", attr, b.Pool())
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindTypeNotPresent {
		t.Fatalf("strict ExtractClass error = %v, want type_not_present", err)
	}
	if e.Container != "com.example.Service" {
		t.Fatalf("error carries container %q, want com.example.Service", e.Container)
	}
}

func TestSessionsDoNotShareInstances(t *testing.T) {
	f := newFixture(t)
	v := mustValue(t, f.timed, annotation.Member{Name: "value", Value: annotation.NewLong(5)})

	one := NewWithDefaults(f.reg)
	two := NewWithDefaults(f.reg)
	instOne, err := one.Materialize(v)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	instTwo, err := two.Materialize(v)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if instOne == instTwo {
		t.Fatal("independent sessions shared a materialized instance")
	}
}
