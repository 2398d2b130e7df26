package annotation

import (
	"errors"
	"testing"

	annoerrors "github.com/wippyai/annometa/errors"
)

type testUnit int32

const (
	unitMillis testUnit = iota
	unitNanos
)

func TestRegisterAnnotationCompilesDecls(t *testing.T) {
	reg := NewRegistry()
	unit := reg.MustRegisterEnum("com.example.TimeUnit", map[string]testUnit{
		"MILLIS": unitMillis,
		"NANOS":  unitNanos,
	})

	type inner struct {
		Name string `anno:"name"`
	}
	innerType := reg.MustRegisterAnnotation("com.example.Inner", inner{})

	type timed struct {
		Value    int64    `anno:"value"`
		Unit     testUnit `anno:"unit,default"`
		Flag     bool     `anno:"flag,default"`
		Targets  []string `anno:"targets,default"`
		Work     TypeRef  `anno:"work"`
		Nested   *inner   `anno:"nested"`
		Severity int8
		skipped  string `anno:"invisible"`
		Ignored  string `anno:"-"`
	}

	typ, err := reg.RegisterAnnotation("com.example.Timed", timed{
		Unit:    unitMillis,
		Flag:    true,
		Targets: []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("RegisterAnnotation failed: %v", err)
	}

	decls := typ.Members()
	want := []struct {
		name    string
		kind    Kind
		elem    Kind
		refName string
		hasDef  bool
	}{
		{"value", KindLong, 0, "", false},
		{"unit", KindEnum, 0, "com.example.TimeUnit", true},
		{"flag", KindBool, 0, "", true},
		{"targets", KindArray, KindString, "", true},
		{"work", KindClass, 0, "", false},
		{"nested", KindAnnotation, 0, "com.example.Inner", false},
		{"severity", KindByte, 0, "", false},
	}
	if len(decls) != len(want) {
		t.Fatalf("compiled %d members, want %d", len(decls), len(want))
	}
	for i, w := range want {
		d := decls[i]
		if d.Name != w.name {
			t.Errorf("member %d name = %s, want %s", i, d.Name, w.name)
		}
		if d.Kind != w.kind {
			t.Errorf("member %s kind = %s, want %s", w.name, d.Kind, w.kind)
		}
		if w.kind == KindArray && d.Elem != w.elem {
			t.Errorf("member %s elem = %s, want %s", w.name, d.Elem, w.elem)
		}
		if w.refName != "" && (d.Ref == nil || d.Ref.TypeName() != w.refName) {
			t.Errorf("member %s ref = %v, want %s", w.name, d.Ref, w.refName)
		}
		if (d.Default != nil) != w.hasDef {
			t.Errorf("member %s default presence = %v, want %v", w.name, d.Default != nil, w.hasDef)
		}
	}

	// defaults carry the prototype's values
	if d := typ.Member("unit"); !d.Default.Equal(NewEnum(unit, "MILLIS")) {
		t.Errorf("unit default = %v, want MILLIS", d.Default)
	}
	if d := typ.Member("flag"); !d.Default.Equal(NewBool(true)) {
		t.Errorf("flag default = %v, want true", d.Default)
	}
	if d := typ.Member("targets"); !d.Default.Equal(NewArray(NewString("a"), NewString("b"))) {
		t.Errorf("targets default = %v", d.Default)
	}
	if typ.Member("nested").Ref.(*Type) != innerType {
		t.Error("nested member should reference the registered inner type")
	}
	if typ.Member("ignored") != nil || typ.Member("Ignored") != nil {
		t.Error("fields tagged - should not become members")
	}
}

func TestRegisterAnnotationErrors(t *testing.T) {
	type inner struct {
		Name string `anno:"name"`
	}
	type unregisteredNested struct {
		Nested *inner `anno:"nested"`
	}
	type unknownFlag struct {
		A int32 `anno:"a,sticky"`
	}
	type dupMember struct {
		A int32 `anno:"same"`
		B int32 `anno:"same"`
	}
	type badField struct {
		M map[string]int `anno:"m"`
	}
	type nestedArray struct {
		Grid [][]int32 `anno:"grid"`
	}
	type unsignedByte struct {
		B uint8 `anno:"b"`
	}

	tests := []struct {
		name      string
		prototype any
		kind      annoerrors.Kind
	}{
		{"non-struct prototype", 42, annoerrors.KindUnsupported},
		{"unregistered nested annotation", unregisteredNested{}, annoerrors.KindNotFound},
		{"unknown tag flag", unknownFlag{}, annoerrors.KindUnsupported},
		{"duplicate member name", dupMember{}, annoerrors.KindDuplicate},
		{"unsupported field type", badField{}, annoerrors.KindUnsupported},
		{"nested array", nestedArray{}, annoerrors.KindUnsupported},
		{"uint8 is not a JVM byte", unsignedByte{}, annoerrors.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			_, err := reg.RegisterAnnotation("com.example.Bad", tt.prototype)
			if err == nil {
				t.Fatal("RegisterAnnotation should fail")
			}
			var e *annoerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not structured", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("error kind = %s, want %s", e.Kind, tt.kind)
			}
			if e.Phase != annoerrors.PhaseRegister {
				t.Errorf("error phase = %s, want %s", e.Phase, annoerrors.PhaseRegister)
			}
		})
	}

	t.Run("duplicate type name", func(t *testing.T) {
		type a struct{}
		type b struct{}
		reg := NewRegistry()
		reg.MustRegisterAnnotation("com.example.Same", a{})
		if _, err := reg.RegisterAnnotation("com.example.Same", b{}); err == nil {
			t.Error("duplicate name should fail")
		}
	})

	t.Run("duplicate Go type", func(t *testing.T) {
		type a struct{}
		reg := NewRegistry()
		reg.MustRegisterAnnotation("com.example.First", a{})
		if _, err := reg.RegisterAnnotation("com.example.Second", a{}); err == nil {
			t.Error("reusing a struct type should fail")
		}
	})
}

func TestRegisterAnnotationDerivedNames(t *testing.T) {
	type marker struct {
		Value     int32
		LongLabel string
	}
	reg := NewRegistry()
	typ := reg.MustRegisterAnnotation("com.example.Marker", marker{})

	if typ.Member("value") == nil {
		t.Error("untagged field Value should become member value")
	}
	if typ.Member("longLabel") == nil {
		t.Error("untagged field LongLabel should become member longLabel")
	}
}

func TestRegisterEnum(t *testing.T) {
	reg := NewRegistry()

	e, err := reg.RegisterEnum("com.example.Suit", map[string]testSuit{
		"HEARTS": suitHearts,
		"SPADES": suitSpades,
	})
	if err != nil {
		t.Fatalf("RegisterEnum failed: %v", err)
	}
	if got := e.Constants(); len(got) != 2 || got[0] != "HEARTS" || got[1] != "SPADES" {
		t.Errorf("Constants() = %v, want [HEARTS SPADES]", got)
	}
	if v, ok := e.Constant("SPADES"); !ok || v.Interface().(testSuit) != suitSpades {
		t.Errorf("Constant(SPADES) = %v, %v", v, ok)
	}
	if name, ok := e.NameOf(suitHearts); !ok || name != "HEARTS" {
		t.Errorf("NameOf(hearts) = %q, %v", name, ok)
	}
	if _, ok := e.Constant("JOKERS"); ok {
		t.Error("unknown constant should not resolve")
	}

	tests := []struct {
		name      string
		constants any
	}{
		{"not a map", []string{"A"}},
		{"empty map", map[string]testSuit{}},
		{"unnamed value type", map[string]int{"A": 1}},
		{"duplicate value", map[string]testSuit{"A": suitHearts, "B": suitHearts}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reg.RegisterEnum("com.example.Bad", tt.constants); err == nil {
				t.Error("RegisterEnum should fail")
			}
		})
	}
}

func TestRegisterClass(t *testing.T) {
	reg := NewRegistry()
	c, err := reg.RegisterClass("com.example.Task")
	if err != nil {
		t.Fatalf("RegisterClass failed: %v", err)
	}
	if c.TypeName() != "com.example.Task" {
		t.Errorf("TypeName() = %s", c.TypeName())
	}
	if _, err := reg.RegisterClass("com.example.Task"); err == nil {
		t.Error("duplicate class should fail")
	}
	if _, err := reg.RegisterClass(""); err == nil {
		t.Error("empty name should fail")
	}

	// array class names register in descriptor form
	if _, err := reg.RegisterClass("[Lcom.example.Task;"); err != nil {
		t.Errorf("array class registration failed: %v", err)
	}
}

func TestResolve(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegisterClass("com.example.Task")

	ref, err := reg.Resolve("com.example.Task")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, ok := ref.(*Class); !ok {
		t.Errorf("Resolve returned %T, want *Class", ref)
	}

	// primitive class names resolve out of the box
	for _, name := range []string{"boolean", "byte", "short", "char", "int", "long", "float", "double", "void"} {
		if _, err := reg.Resolve(name); err != nil {
			t.Errorf("Resolve(%s) failed: %v", name, err)
		}
	}

	_, err = reg.Resolve("com.example.Gone")
	if err == nil {
		t.Fatal("Resolve of unknown name should fail")
	}
	tnp, ok := annoerrors.AsTypeNotPresent(err)
	if !ok {
		t.Fatalf("error %T is not TypeNotPresentError", err)
	}
	if tnp.TypeName != "com.example.Gone" {
		t.Errorf("TypeName = %s, want com.example.Gone", tnp.TypeName)
	}
}

func TestRegistryNames(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegisterClass("com.example.Task")
	reg.MustRegisterEnum("com.example.Suit", map[string]testSuit{"HEARTS": suitHearts})

	names := reg.Names()
	// 9 pre-registered primitives plus the two registrations
	if len(names) != 11 {
		t.Fatalf("Names() returned %d entries, want 11", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Names() not sorted: %q before %q", names[i-1], names[i])
		}
	}

	if _, ok := reg.Lookup("com.example.Task"); !ok {
		t.Error("Lookup should find registered names")
	}
	if _, ok := reg.Lookup("com.example.Gone"); ok {
		t.Error("Lookup should miss unknown names")
	}
}
