package annometa

import "math"

// ConstKind identifies the primitive kind of a pooled numeric constant.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstLong
	ConstFloat
	ConstDouble
)

// String returns the kind name.
func (k ConstKind) String() string {
	switch k {
	case ConstInt:
		return "int"
	case ConstLong:
		return "long"
	case ConstFloat:
		return "float"
	case ConstDouble:
		return "double"
	}
	return "unknown"
}

// Constant is a numeric literal resolved from a constant table. The value is
// stored as raw 64-bit representation; Kind selects the interpretation.
type Constant struct {
	Bits uint64
	Kind ConstKind
}

// IntConstant builds an int constant. Booleans, bytes, shorts and chars are
// pooled as ints in the class-file format.
func IntConstant(v int32) Constant {
	return Constant{Kind: ConstInt, Bits: uint64(uint32(v))}
}

// LongConstant builds a long constant.
func LongConstant(v int64) Constant {
	return Constant{Kind: ConstLong, Bits: uint64(v)}
}

// FloatConstant builds a float constant.
func FloatConstant(v float32) Constant {
	return Constant{Kind: ConstFloat, Bits: uint64(math.Float32bits(v))}
}

// DoubleConstant builds a double constant.
func DoubleConstant(v float64) Constant {
	return Constant{Kind: ConstDouble, Bits: math.Float64bits(v)}
}

// Int returns the constant as an int32.
func (c Constant) Int() int32 {
	return int32(uint32(c.Bits))
}

// Long returns the constant as an int64.
func (c Constant) Long() int64 {
	return int64(c.Bits)
}

// Float returns the constant as a float32.
func (c Constant) Float() float32 {
	return math.Float32frombits(uint32(c.Bits))
}

// Double returns the constant as a float64.
func (c Constant) Double() float64 {
	return math.Float64frombits(c.Bits)
}

// ConstantTable resolves integer indices embedded in an encoded annotation
// attribute into typed constants. Implementations signal absent or
// wrong-kind indices with an error; they never guess.
type ConstantTable interface {
	// StringAt returns the UTF-8 string constant at index.
	StringAt(index int) (string, error)
	// TypeAt returns the type descriptor at index, e.g. "Lcom/example/Marker;".
	TypeAt(index int) (string, error)
	// ConstantAt returns the numeric constant at index.
	ConstantAt(index int) (Constant, error)
}
