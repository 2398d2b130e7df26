package annotation

import (
	"strings"

	"github.com/wippyai/annometa/errors"
)

var primitiveNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// descriptorToName converts a field descriptor to the binary type name used
// for registry lookups: "Lcom/example/Marker;" becomes "com.example.Marker",
// "I" becomes "int", and array descriptors keep their bracket form with
// dots, "[Lcom/example/Task;" becoming "[Lcom.example.Task;".
func descriptorToName(desc string) (string, error) {
	if desc == "" {
		return "", errors.InvalidData(errors.PhaseExtract, "empty type descriptor")
	}
	switch desc[0] {
	case 'L':
		if len(desc) < 3 || desc[len(desc)-1] != ';' || strings.ContainsRune(desc, '.') {
			break
		}
		return strings.ReplaceAll(desc[1:len(desc)-1], "/", "."), nil
	case '[':
		if _, err := descriptorToName(desc[1:]); err != nil {
			break
		}
		return strings.ReplaceAll(desc, "/", "."), nil
	default:
		if len(desc) == 1 {
			if name, ok := primitiveNames[desc[0]]; ok {
				return name, nil
			}
		}
	}
	return "", errors.New(errors.PhaseExtract, errors.KindInvalidData).
		Detail("malformed type descriptor %q", desc).
		Build()
}

// nameToDescriptor is the inverse of descriptorToName.
func nameToDescriptor(name string) string {
	switch name {
	case "byte":
		return "B"
	case "char":
		return "C"
	case "double":
		return "D"
	case "float":
		return "F"
	case "int":
		return "I"
	case "long":
		return "J"
	case "short":
		return "S"
	case "boolean":
		return "Z"
	case "void":
		return "V"
	}
	if strings.HasPrefix(name, "[") {
		return strings.ReplaceAll(name, ".", "/")
	}
	return "L" + strings.ReplaceAll(name, ".", "/") + ";"
}
