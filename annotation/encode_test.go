package annotation

import (
	"bytes"
	"errors"
	"testing"

	annoerrors "github.com/wippyai/annometa/errors"
)

func TestEncodeRoundTrip(t *testing.T) {
	f := newDecodeFixture(t)
	want := f.everythingValue(t)

	encoded, err := Encode(want, f.pool)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, n, err := Extract(encoded, f.pool, f.reg, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract of encoded bytes failed: %v", err)
	}
	if n != len(encoded) {
		t.Errorf("Extract consumed %d of %d bytes", n, len(encoded))
	}
	if !got.Equal(want) {
		t.Errorf("round trip differs:\n got %v\nwant %v", got, want)
	}
	if got.Hash() != want.Hash() {
		t.Errorf("round trip hash differs: %#x vs %#x", got.Hash(), want.Hash())
	}
}

func TestEncodeAllRoundTrip(t *testing.T) {
	f := newDecodeFixture(t)
	timed := mustValue(t, f.timed, Member{"value", NewLong(9)})
	values := []*Value{timed, f.everythingValue(t)}

	encoded, err := EncodeAll(values, f.pool)
	if err != nil {
		t.Fatalf("EncodeAll failed: %v", err)
	}
	got, err := ExtractAll(encoded, f.pool, f.reg, ExtractOptions{})
	if err != nil {
		t.Fatalf("ExtractAll of encoded bytes failed: %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("round trip kept %d values, want %d", len(got), len(values))
	}
	for i := range values {
		if !got[i].Equal(values[i]) {
			t.Errorf("value %d differs after round trip:\n got %v\nwant %v", i, got[i], values[i])
		}
	}
}

func TestEncodeInternsConstants(t *testing.T) {
	f := newDecodeFixture(t)
	v := f.everythingValue(t)

	first, err := Encode(v, f.pool)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	entries := len(f.pool.entries)

	second, err := Encode(v, f.pool)
	if err != nil {
		t.Fatalf("second Encode failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("re-encoding the same value should produce identical bytes")
	}
	if len(f.pool.entries) != entries {
		t.Errorf("second encode grew the pool from %d to %d entries", entries, len(f.pool.entries))
	}
}

func TestEncodeErrorPlaceholderFails(t *testing.T) {
	f := newDecodeFixture(t)
	v := mustValue(t, f.every, Member{"su", NewError("com.example.GoneEnum", nil)})

	_, err := Encode(v, f.pool)
	if err == nil {
		t.Fatal("encoding an error placeholder should fail")
	}
	var e *annoerrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("error %T is not structured", err)
	}
	if e.Kind != annoerrors.KindUnsupported {
		t.Errorf("error kind = %s, want %s", e.Kind, annoerrors.KindUnsupported)
	}
	if e.Type != "com.example.GoneEnum" {
		t.Errorf("error type = %q, want the missing type name", e.Type)
	}
	if e.Member != "su" {
		t.Errorf("error member = %q, want su", e.Member)
	}
}

func TestEncodeNilValue(t *testing.T) {
	f := newDecodeFixture(t)

	_, err := Encode(nil, f.pool)
	if err == nil {
		t.Fatal("encoding nil should fail")
	}
	var e *annoerrors.Error
	if !errors.As(err, &e) || e.Kind != annoerrors.KindInvalidData {
		t.Errorf("error = %v, want invalid data", err)
	}
}
