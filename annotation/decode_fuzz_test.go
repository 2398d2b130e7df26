package annotation

import (
	"testing"

	"github.com/wippyai/annometa/annotation/internal/binary"
)

func FuzzExtractAll(f *testing.F) {
	fixture := newDecodeFixture(f)

	// Add a valid single-annotation attribute as seed
	w := binary.NewWriter()
	w.U16(1)
	w.WriteBytes(fixture.everythingBytes())
	f.Add(w.Bytes())

	// Add an empty attribute
	empty := binary.NewWriter()
	empty.U16(0)
	f.Add(empty.Bytes())

	// Add truncated data
	f.Add(w.Bytes()[:7])

	// Add random bytes
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Fuzzing should not panic; malformed input fails with an error.
		values, err := ExtractAll(data, fixture.pool, fixture.reg, ExtractOptions{})
		if err != nil {
			return
		}

		// Whatever decoded cleanly must survive a re-encode round trip,
		// except trees holding error placeholders, which have no encoded
		// form.
		for _, v := range values {
			if len(v.ErrorProxies()) > 0 {
				return
			}
		}
		encoded, err := EncodeAll(values, fixture.pool)
		if err != nil {
			t.Fatalf("re-encoding decoded values failed: %v", err)
		}
		again, err := ExtractAll(encoded, fixture.pool, fixture.reg, ExtractOptions{})
		if err != nil {
			t.Fatalf("decoding re-encoded values failed: %v", err)
		}
		if len(again) != len(values) {
			t.Fatalf("round trip kept %d values, want %d", len(again), len(values))
		}
		for i := range values {
			if !values[i].Equal(again[i]) {
				t.Errorf("value %d differs after round trip:\n got %v\nwant %v", i, again[i], values[i])
			}
			if values[i].Hash() != again[i].Hash() {
				t.Errorf("value %d hash differs after round trip", i)
			}
		}
	})
}
