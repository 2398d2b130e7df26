package annotation

// Structural hashing uses FNV-1a folding over a running 64-bit state. The
// helpers take and return the state so variants can fold nested structure
// without allocating a hasher per value.
const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

func hashInit() uint64 {
	return fnvOffset
}

func hashByte(h uint64, b byte) uint64 {
	return (h ^ uint64(b)) * fnvPrime
}

func hashUint64(h uint64, v uint64) uint64 {
	for i := 0; i < 64; i += 8 {
		h = hashByte(h, byte(v>>i))
	}
	return h
}

func hashString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h = hashByte(h, s[i])
	}
	// terminator keeps adjacent strings from folding ambiguously
	return hashByte(h, 0)
}
