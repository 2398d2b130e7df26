package annotation

import (
	"go.uber.org/zap"

	"github.com/wippyai/annometa"
	"github.com/wippyai/annometa/annotation/internal/binary"
	"github.com/wippyai/annometa/errors"
)

// ExtractOptions control how encoded annotations are decoded.
type ExtractOptions struct {
	// StrictMissingTypes escalates an unresolvable annotation type name to
	// an extraction error. When false the annotation's bytes are still
	// walked for their exact width and the annotation is dropped from the
	// result.
	StrictMissingTypes bool

	// Container names the class whose attribute is being decoded. It
	// appears in errors and log lines.
	Container string
}

// Extract decodes a single annotation structure from the start of data. It
// returns the decoded value, the number of bytes consumed, and any fatal
// decoding error. The value is nil when the annotation's type is unknown
// and StrictMissingTypes is off; the byte count is exact in that case too,
// so callers can continue with a following sibling.
func Extract(data []byte, table annometa.ConstantTable, res Resolver, opts ExtractOptions) (*Value, int, error) {
	x := &extractor{r: binary.NewReader(data), table: table, res: res, opts: opts}
	v, err := x.annotation(false)
	if err != nil {
		return nil, x.r.Position(), wrapExtract(err, opts.Container)
	}
	return v, x.r.Position(), nil
}

// ExtractAll decodes a full annotation attribute body: a u2 annotation count
// followed by that many annotation structures. Annotations whose type cannot
// be resolved are dropped unless StrictMissingTypes is set. The payload must
// be consumed exactly; trailing bytes are an error.
func ExtractAll(data []byte, table annometa.ConstantTable, res Resolver, opts ExtractOptions) ([]*Value, error) {
	x := &extractor{r: binary.NewReader(data), table: table, res: res, opts: opts}
	count, err := x.r.ReadU16()
	if err != nil {
		return nil, wrapExtract(x.r.WrapError("annotation count", err), opts.Container)
	}
	values := make([]*Value, 0, count)
	for i := 0; i < int(count); i++ {
		v, err := x.annotation(false)
		if err != nil {
			return nil, wrapExtract(err, opts.Container)
		}
		if v != nil {
			values = append(values, v)
		}
	}
	if x.r.Remaining() > 0 {
		err := errors.New(errors.PhaseExtract, errors.KindInvalidData).
			Detail("%d trailing bytes after %d annotations", x.r.Remaining(), count).
			Build()
		return nil, wrapExtract(err, opts.Container)
	}
	return values, nil
}

// wrapExtract normalizes decode failures into structured extract errors and
// attaches the container context.
func wrapExtract(err error, container string) error {
	if err == nil {
		return nil
	}
	e, ok := err.(*errors.Error)
	if !ok {
		e = errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "malformed annotation data")
	}
	if e.Container == "" {
		e.Container = container
	}
	return e
}

// extractor holds the state of one decoding pass over an attribute body.
type extractor struct {
	r     *binary.Reader
	table annometa.ConstantTable
	res   Resolver
	opts  ExtractOptions
}

// annotation decodes one annotation structure. In skip mode it walks the
// exact byte span of the structure and returns nil. Outside skip mode a nil
// result with a nil error means the annotation's type is unknown and the
// annotation was dropped.
func (x *extractor) annotation(skip bool) (*Value, error) {
	typ, err := x.annotationType(skip)
	if err != nil {
		return nil, err
	}
	if typ == nil {
		skip = true
	}
	count, err := x.r.ReadU16()
	if err != nil {
		return nil, x.r.WrapError("member count", err)
	}

	var names []string
	var members map[string]MemberValue
	if !skip {
		names = make([]string, 0, count)
		members = make(map[string]MemberValue, count)
	}
	for i := 0; i < int(count); i++ {
		name, err := x.memberName(skip)
		if err != nil {
			return nil, err
		}
		value, err := x.member(skip)
		if err != nil {
			return nil, err
		}
		if skip || value == nil {
			continue
		}
		// a repeated name keeps its first position, last value wins
		if _, dup := members[name]; !dup {
			names = append(names, name)
		}
		members[name] = value
	}
	if skip {
		return nil, nil
	}

	// compact members that equal their declared default
	kept := names[:0]
	for _, name := range names {
		if decl := typ.Member(name); decl != nil && decl.Default != nil && decl.Default.Equal(members[name]) {
			delete(members, name)
			continue
		}
		kept = append(kept, name)
	}
	return newValue(typ, kept, members), nil
}

// annotationType reads the u2 type index and resolves it to a registered
// annotation type. It returns nil in skip mode. An unknown type name either
// fails or, tolerantly, switches the caller to skip mode via a nil result.
func (x *extractor) annotationType(skip bool) (*Type, error) {
	idx, err := x.r.ReadU16()
	if err != nil {
		return nil, x.r.WrapError("annotation type index", err)
	}
	if skip {
		return nil, nil
	}
	desc, err := x.table.TypeAt(int(idx))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "annotation type index")
	}
	name, err := descriptorToName(desc)
	if err != nil {
		return nil, err
	}
	ref, err := x.res.Resolve(name)
	if err != nil {
		tnp, ok := errors.AsTypeNotPresent(err)
		if !ok {
			return nil, err
		}
		if x.opts.StrictMissingTypes {
			return nil, errors.New(errors.PhaseExtract, errors.KindTypeNotPresent).
				Type(tnp.TypeName).
				Cause(tnp).
				Detail("annotation type not present").
				Build()
		}
		Logger().Debug("dropping annotation, type not present",
			zap.String("type", name),
			zap.String("container", x.opts.Container))
		return nil, nil
	}
	t, ok := ref.(*Type)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseExtract, name, "",
			"resolved reference is not an annotation type")
	}
	return t, nil
}

// memberName reads the u2 name index, resolving it outside skip mode.
func (x *extractor) memberName(skip bool) (string, error) {
	idx, err := x.r.ReadU16()
	if err != nil {
		return "", x.r.WrapError("member name index", err)
	}
	if skip {
		return "", nil
	}
	name, err := x.table.StringAt(int(idx))
	if err != nil {
		return "", errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "member name index")
	}
	return name, nil
}

// member decodes one element_value. In skip mode the exact span is consumed
// and nil is returned. Outside skip mode a nil result means a nested
// annotation was dropped for an unknown type; the caller omits the member
// or element.
func (x *extractor) member(skip bool) (MemberValue, error) {
	tag, err := x.r.ReadU8()
	if err != nil {
		return nil, x.r.WrapError("member tag", err)
	}
	switch tag {
	case TagBoolean, TagByte, TagShort, TagChar, TagInt, TagLong, TagFloat, TagDouble:
		return x.primitive(tag, skip)
	case TagString:
		return x.stringValue(skip)
	case TagEnum:
		return x.enumValue(skip)
	case TagClass:
		return x.classValue(skip)
	case TagAnnotation:
		v, err := x.annotation(skip)
		if err != nil || v == nil {
			return nil, err
		}
		return v, nil
	case TagArray:
		return x.array(skip)
	}
	return nil, errors.InvalidTag(errors.PhaseExtract, tag)
}

// primitive decodes a constant-pool backed payload for one of the eight
// primitive tags.
func (x *extractor) primitive(tag byte, skip bool) (MemberValue, error) {
	idx, err := x.r.ReadU16()
	if err != nil {
		return nil, x.r.WrapError("constant index", err)
	}
	if skip {
		return nil, nil
	}
	c, err := x.table.ConstantAt(int(idx))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "constant index")
	}
	if want := constKindForTag(tag); c.Kind != want {
		return nil, errors.New(errors.PhaseExtract, errors.KindTypeMismatch).
			Value(idx).
			Detail("constant %d holds %s, tag %q needs %s", idx, c.Kind, tag, want).
			Build()
	}
	switch tag {
	case TagBoolean:
		return NewBool(c.Int() != 0), nil
	case TagByte:
		return NewByte(int8(c.Int())), nil
	case TagShort:
		return NewShort(int16(c.Int())), nil
	case TagChar:
		return NewChar(uint16(c.Int())), nil
	case TagInt:
		return NewInt(c.Int()), nil
	case TagLong:
		return NewLong(c.Long()), nil
	case TagFloat:
		return NewFloat(c.Float()), nil
	default:
		return NewDouble(c.Double()), nil
	}
}

func (x *extractor) stringValue(skip bool) (MemberValue, error) {
	idx, err := x.r.ReadU16()
	if err != nil {
		return nil, x.r.WrapError("string index", err)
	}
	if skip {
		return nil, nil
	}
	s, err := x.table.StringAt(int(idx))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "string index")
	}
	return NewString(s), nil
}

// enumValue decodes a type descriptor index plus constant name index. An
// unresolvable enum type becomes an error placeholder, never a failure; the
// constant name is not validated against the type here.
func (x *extractor) enumValue(skip bool) (MemberValue, error) {
	typeIdx, err := x.r.ReadU16()
	if err != nil {
		return nil, x.r.WrapError("enum type index", err)
	}
	constIdx, err := x.r.ReadU16()
	if err != nil {
		return nil, x.r.WrapError("enum constant index", err)
	}
	if skip {
		return nil, nil
	}
	desc, err := x.table.TypeAt(int(typeIdx))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "enum type index")
	}
	name, err := descriptorToName(desc)
	if err != nil {
		return nil, err
	}
	constant, err := x.table.StringAt(int(constIdx))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "enum constant index")
	}
	ref, err := x.res.Resolve(name)
	if err != nil {
		if tnp, ok := errors.AsTypeNotPresent(err); ok {
			return x.missing(name, tnp)
		}
		return nil, err
	}
	et, ok := ref.(*EnumType)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseExtract, name, "",
			"resolved reference is not an enum type")
	}
	return NewEnum(et, constant), nil
}

// classValue decodes a class literal. An unresolvable type becomes an error
// placeholder, never a failure.
func (x *extractor) classValue(skip bool) (MemberValue, error) {
	idx, err := x.r.ReadU16()
	if err != nil {
		return nil, x.r.WrapError("class index", err)
	}
	if skip {
		return nil, nil
	}
	desc, err := x.table.TypeAt(int(idx))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "class index")
	}
	name, err := descriptorToName(desc)
	if err != nil {
		return nil, err
	}
	ref, err := x.res.Resolve(name)
	if err != nil {
		if tnp, ok := errors.AsTypeNotPresent(err); ok {
			return x.missing(name, tnp)
		}
		return nil, err
	}
	return NewClass(ref), nil
}

func (x *extractor) array(skip bool) (MemberValue, error) {
	count, err := x.r.ReadU16()
	if err != nil {
		return nil, x.r.WrapError("array length", err)
	}
	var elems []MemberValue
	if !skip {
		elems = make([]MemberValue, 0, count)
	}
	for i := 0; i < int(count); i++ {
		e, err := x.member(skip)
		if err != nil {
			return nil, err
		}
		if skip || e == nil {
			continue
		}
		elems = append(elems, e)
	}
	if skip {
		return nil, nil
	}
	return &ArrayValue{elems: elems}, nil
}

// missing records a member-level unresolvable type as an error placeholder.
func (x *extractor) missing(name string, cause *errors.TypeNotPresentError) (MemberValue, error) {
	Logger().Debug("recording error placeholder, type not present",
		zap.String("type", name),
		zap.String("container", x.opts.Container))
	return NewError(name, cause.Cause), nil
}

// constKindForTag maps a primitive tag to the constant kind its index must
// reference.
func constKindForTag(tag byte) annometa.ConstKind {
	switch tag {
	case TagLong:
		return annometa.ConstLong
	case TagFloat:
		return annometa.ConstFloat
	case TagDouble:
		return annometa.ConstDouble
	default:
		return annometa.ConstInt
	}
}
