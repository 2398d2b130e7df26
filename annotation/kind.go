package annotation

import "fmt"

// Tag bytes of the class-file element_value encoding. Every serialized member
// value starts with one of these; the tag selects the payload layout that
// follows it.
const (
	TagByte       byte = 'B'
	TagChar       byte = 'C'
	TagDouble     byte = 'D'
	TagFloat      byte = 'F'
	TagInt        byte = 'I'
	TagLong       byte = 'J'
	TagShort      byte = 'S'
	TagBoolean    byte = 'Z'
	TagString     byte = 's'
	TagEnum       byte = 'e'
	TagClass      byte = 'c'
	TagAnnotation byte = '@'
	TagArray      byte = '['

	// TagError never appears on the wire. It stands in for values whose type
	// reference failed to resolve, so placeholders can participate in
	// hashing and diagnostics like every other variant.
	TagError byte = 'E'
)

// Kind identifies the shape of a member value or declaration.
type Kind uint8

const (
	KindBool Kind = iota
	KindByte
	KindShort
	KindChar
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindClass
	KindEnum
	KindAnnotation
	KindArray
	KindError
)

var kindNames = [...]string{
	KindBool:       "boolean",
	KindByte:       "byte",
	KindShort:      "short",
	KindChar:       "char",
	KindInt:        "int",
	KindLong:       "long",
	KindFloat:      "float",
	KindDouble:     "double",
	KindString:     "string",
	KindClass:      "class",
	KindEnum:       "enum",
	KindAnnotation: "annotation",
	KindArray:      "array",
	KindError:      "error",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsPrimitive reports whether k is one of the eight primitive kinds.
func (k Kind) IsPrimitive() bool {
	return k <= KindDouble
}

var kindTags = [...]byte{
	KindBool:       TagBoolean,
	KindByte:       TagByte,
	KindShort:      TagShort,
	KindChar:       TagChar,
	KindInt:        TagInt,
	KindLong:       TagLong,
	KindFloat:      TagFloat,
	KindDouble:     TagDouble,
	KindString:     TagString,
	KindClass:      TagClass,
	KindEnum:       TagEnum,
	KindAnnotation: TagAnnotation,
	KindArray:      TagArray,
	KindError:      TagError,
}

// tagFor maps a kind to its element_value tag byte.
func tagFor(k Kind) byte {
	return kindTags[k]
}

// KindForTag maps an element_value tag byte to its kind. It reports false
// for bytes that are not tags.
func KindForTag(tag byte) (Kind, bool) {
	for k, t := range kindTags {
		if t == tag {
			return Kind(k), true
		}
	}
	return 0, false
}
