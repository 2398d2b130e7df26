package snapshot

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/annometa/annotation"
	"github.com/wippyai/annometa/errors"
)

func TestInspectRendersWireContents(t *testing.T) {
	f := newFixture(t)
	s := NewSet()
	s.Add("com.example.Service", f.auditValue(t))

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rep, err := Inspect(&buf)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if rep.Version != Version || rep.Len() != 1 {
		t.Fatalf("Version = %d, Len = %d", rep.Version, rep.Len())
	}
	if len(rep.Containers) != 1 || rep.Containers[0].Name != "com.example.Service" {
		t.Fatalf("Containers = %v", rep.Containers)
	}
	vr := rep.Containers[0].Values[0]
	if vr.Type != "com.example.Audit" {
		t.Fatalf("Type = %q", vr.Type)
	}
	want := `@com.example.Audit(cl=com.example.Task.class, level=3, ` +
		`ne=@com.example.Inner(name="nested"), su=com.example.Suit.SPADES, tags={"a", "b"})`
	if got := vr.String(); got != want {
		t.Fatalf("String() =\n %s\nwant\n %s", got, want)
	}
}

func TestInspectShowsPlaceholders(t *testing.T) {
	f := newFixture(t)
	v := mustValue(t, f.inner,
		annotation.Member{Name: "name", Value: annotation.NewString("x")},
		annotation.Member{Name: "zz", Value: annotation.NewError("com.example.Gone", nil)},
	)
	s := NewSet()
	s.Add("com.example.Host", v)

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rep, err := Inspect(&buf)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	members := rep.Containers[0].Values[0].Members
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if members[1].Name != "zz" || members[1].Value != "<type com.example.Gone not present>" {
		t.Fatalf("placeholder rendered as %q", members[1].Value)
	}
}

func TestInspectMalformedData(t *testing.T) {
	if _, err := Inspect(bytes.NewReader([]byte{0x01})); err == nil {
		t.Fatal("Inspect accepted garbage")
	} else {
		var e *errors.Error
		if !stderrors.As(err, &e) || e.Kind != errors.KindInvalidData {
			t.Fatalf("error = %v, want invalid_data", err)
		}
	}
}

func TestInspectVersionMismatch(t *testing.T) {
	data, err := cbor.Marshal(map[string]any{"version": 99})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	_, err = Inspect(bytes.NewReader(data))
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindUnsupported {
		t.Fatalf("error = %v, want unsupported", err)
	}
}
