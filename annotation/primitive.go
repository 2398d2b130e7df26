package annotation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/wippyai/annometa/errors"
)

// Canonical quiet NaN bit patterns. All NaN payloads collapse to these at
// construction so NaN-valued members hash and compare consistently.
const (
	canonicalNaN32 uint32 = 0x7fc00000
	canonicalNaN64 uint64 = 0x7ff8000000000000
)

// PrimitiveValue holds a member of one of the eight primitive kinds. The
// payload is stored as the raw bit pattern at its declared width, so floating
// point comparison follows bit equality: every NaN equals every other NaN and
// negative zero differs from zero.
type PrimitiveValue struct {
	bits uint64
	kind Kind
}

// NewBool builds a boolean value.
func NewBool(v bool) *PrimitiveValue {
	var bits uint64
	if v {
		bits = 1
	}
	return &PrimitiveValue{bits: bits, kind: KindBool}
}

// NewByte builds a byte value.
func NewByte(v int8) *PrimitiveValue {
	return &PrimitiveValue{bits: uint64(uint8(v)), kind: KindByte}
}

// NewShort builds a short value.
func NewShort(v int16) *PrimitiveValue {
	return &PrimitiveValue{bits: uint64(uint16(v)), kind: KindShort}
}

// NewChar builds a char value.
func NewChar(v uint16) *PrimitiveValue {
	return &PrimitiveValue{bits: uint64(v), kind: KindChar}
}

// NewInt builds an int value.
func NewInt(v int32) *PrimitiveValue {
	return &PrimitiveValue{bits: uint64(uint32(v)), kind: KindInt}
}

// NewLong builds a long value.
func NewLong(v int64) *PrimitiveValue {
	return &PrimitiveValue{bits: uint64(v), kind: KindLong}
}

// NewFloat builds a float value. NaN payloads are canonicalized.
func NewFloat(v float32) *PrimitiveValue {
	bits := math.Float32bits(v)
	if v != v {
		bits = canonicalNaN32
	}
	return &PrimitiveValue{bits: uint64(bits), kind: KindFloat}
}

// NewDouble builds a double value. NaN payloads are canonicalized.
func NewDouble(v float64) *PrimitiveValue {
	bits := math.Float64bits(v)
	if v != v {
		bits = canonicalNaN64
	}
	return &PrimitiveValue{bits: bits, kind: KindDouble}
}

// NewPrimitive builds a primitive value from its kind and raw bit pattern.
// Float and double bits are NaN-canonicalized. Non-primitive kinds fail.
func NewPrimitive(kind Kind, bits uint64) (*PrimitiveValue, error) {
	switch kind {
	case KindBool:
		if bits != 0 {
			bits = 1
		}
	case KindByte:
		bits &= 0xff
	case KindShort, KindChar:
		bits &= 0xffff
	case KindInt:
		bits &= 0xffffffff
	case KindFloat:
		f := math.Float32frombits(uint32(bits))
		if f != f {
			bits = uint64(canonicalNaN32)
		} else {
			bits &= 0xffffffff
		}
	case KindDouble:
		f := math.Float64frombits(bits)
		if f != f {
			bits = canonicalNaN64
		}
	case KindLong:
	default:
		return nil, errors.New(errors.PhaseExtract, errors.KindInvalidData).
			Detail("kind %s is not primitive", kind).
			Build()
	}
	return &PrimitiveValue{bits: bits, kind: kind}, nil
}

// Kind returns the primitive kind.
func (p *PrimitiveValue) Kind() Kind {
	return p.kind
}

// Tag returns the element_value tag byte for the kind.
func (p *PrimitiveValue) Tag() byte {
	return tagFor(p.kind)
}

// Bits returns the raw payload at the value's declared width.
func (p *PrimitiveValue) Bits() uint64 {
	return p.bits
}

// Bool returns the boolean payload. It panics on any other kind.
func (p *PrimitiveValue) Bool() bool {
	p.mustKind(KindBool)
	return p.bits != 0
}

// Byte returns the byte payload. It panics on any other kind.
func (p *PrimitiveValue) Byte() int8 {
	p.mustKind(KindByte)
	return int8(uint8(p.bits))
}

// Short returns the short payload. It panics on any other kind.
func (p *PrimitiveValue) Short() int16 {
	p.mustKind(KindShort)
	return int16(uint16(p.bits))
}

// Char returns the char payload. It panics on any other kind.
func (p *PrimitiveValue) Char() uint16 {
	p.mustKind(KindChar)
	return uint16(p.bits)
}

// Int returns the int payload. It panics on any other kind.
func (p *PrimitiveValue) Int() int32 {
	p.mustKind(KindInt)
	return int32(uint32(p.bits))
}

// Long returns the long payload. It panics on any other kind.
func (p *PrimitiveValue) Long() int64 {
	p.mustKind(KindLong)
	return int64(p.bits)
}

// Float returns the float payload. It panics on any other kind.
func (p *PrimitiveValue) Float() float32 {
	p.mustKind(KindFloat)
	return math.Float32frombits(uint32(p.bits))
}

// Double returns the double payload. It panics on any other kind.
func (p *PrimitiveValue) Double() float64 {
	p.mustKind(KindDouble)
	return math.Float64frombits(p.bits)
}

// Interface returns the payload boxed as its Go type: bool, int8, int16,
// uint16, int32, int64, float32 or float64.
func (p *PrimitiveValue) Interface() any {
	switch p.kind {
	case KindBool:
		return p.bits != 0
	case KindByte:
		return int8(uint8(p.bits))
	case KindShort:
		return int16(uint16(p.bits))
	case KindChar:
		return uint16(p.bits)
	case KindInt:
		return int32(uint32(p.bits))
	case KindLong:
		return int64(p.bits)
	case KindFloat:
		return math.Float32frombits(uint32(p.bits))
	default:
		return math.Float64frombits(p.bits)
	}
}

// asInt32 widens sub-int payloads to the int32 the constant pool stores them
// as.
func (p *PrimitiveValue) asInt32() int32 {
	switch p.kind {
	case KindByte:
		return int32(int8(uint8(p.bits)))
	case KindShort:
		return int32(int16(uint16(p.bits)))
	default: // bool, char, int payloads widen without sign extension
		return int32(uint32(p.bits))
	}
}

func (p *PrimitiveValue) mustKind(k Kind) {
	if p.kind != k {
		panic(fmt.Sprintf("annotation: %s value accessed as %s", p.kind, k))
	}
}

// Equal reports whether other is a primitive of the same kind and bit
// pattern.
func (p *PrimitiveValue) Equal(other MemberValue) bool {
	o, ok := other.(*PrimitiveValue)
	return ok && p.kind == o.kind && p.bits == o.bits
}

// Hash returns the structural hash.
func (p *PrimitiveValue) Hash() uint64 {
	return hashUint64(hashByte(hashInit(), p.Tag()), p.bits)
}

// Types returns nil; primitives reference no types.
func (p *PrimitiveValue) Types() []TypeRef {
	return nil
}

// Strings returns nil; primitives carry no strings.
func (p *PrimitiveValue) Strings() []string {
	return nil
}

// ErrorProxies returns nil; primitives always resolve.
func (p *PrimitiveValue) ErrorProxies() []*ErrorValue {
	return nil
}

// String renders the payload as a literal.
func (p *PrimitiveValue) String() string {
	switch p.kind {
	case KindBool:
		return strconv.FormatBool(p.bits != 0)
	case KindByte:
		return strconv.FormatInt(int64(int8(uint8(p.bits))), 10)
	case KindShort:
		return strconv.FormatInt(int64(int16(uint16(p.bits))), 10)
	case KindChar:
		return strconv.QuoteRune(rune(uint16(p.bits)))
	case KindInt:
		return strconv.FormatInt(int64(int32(uint32(p.bits))), 10)
	case KindLong:
		return strconv.FormatInt(int64(p.bits), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(p.bits))), 'g', -1, 32)
	default:
		return strconv.FormatFloat(math.Float64frombits(p.bits), 'g', -1, 64)
	}
}

func (p *PrimitiveValue) isMemberValue() {}
