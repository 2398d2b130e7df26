package snapshot

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/annometa/annotation"
	"github.com/wippyai/annometa/errors"
)

// Report is a structural view of a snapshot produced without resolving any
// type name. Inspection shows exactly what the wire carries, including
// annotations whose types no current registry knows, so tooling can examine
// a snapshot without the Go bindings that produced it.
type Report struct {
	Version    int
	Containers []ContainerReport
}

// Len returns the total number of annotations across all containers.
func (r *Report) Len() int {
	n := 0
	for _, c := range r.Containers {
		n += len(c.Values)
	}
	return n
}

// ContainerReport lists one container's annotations in stored order.
type ContainerReport struct {
	Name   string
	Values []ValueReport
}

// ValueReport describes one annotation with its members rendered as
// source-form literals.
type ValueReport struct {
	Type    string
	Members []MemberReport
}

// MemberReport is one rendered name=value pair.
type MemberReport struct {
	Name  string
	Value string
}

// String renders the annotation in source form.
func (v ValueReport) String() string {
	var b strings.Builder
	b.WriteByte('@')
	b.WriteString(v.Type)
	if len(v.Members) == 0 {
		return b.String()
	}
	b.WriteByte('(')
	for i, m := range v.Members {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(m.Name)
		b.WriteByte('=')
		b.WriteString(m.Value)
	}
	b.WriteByte(')')
	return b.String()
}

// Inspect decodes a snapshot into a Report. Unlike Read it needs no
// resolver and drops nothing.
func Inspect(r io.Reader) (*Report, error) {
	dm, err := decodeMode()
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := dm.NewDecoder(r).Decode(&env); err != nil {
		return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "malformed snapshot")
	}
	if env.Version != Version {
		return nil, errors.New(errors.PhaseSnapshot, errors.KindUnsupported).
			Detail("snapshot version %d is not supported", env.Version).
			Build()
	}
	rep := &Report{Version: env.Version}
	for _, wc := range env.Containers {
		cr := ContainerReport{Name: wc.Name}
		for _, wv := range wc.Values {
			cr.Values = append(cr.Values, reportValue(wv))
		}
		rep.Containers = append(rep.Containers, cr)
	}
	return rep, nil
}

func reportValue(wv wireValue) ValueReport {
	vr := ValueReport{Type: wv.Type}
	for _, wm := range wv.Members {
		vr.Members = append(vr.Members, MemberReport{Name: wm.Name, Value: renderElement(wm.Value)})
	}
	return vr
}

func renderElement(we wireElement) string {
	if kind, ok := annotation.KindForTag(we.Tag); ok && kind.IsPrimitive() {
		if p, err := annotation.NewPrimitive(kind, we.Bits); err == nil {
			return p.String()
		}
	}
	switch we.Tag {
	case annotation.TagString:
		return strconv.Quote(we.Str)
	case annotation.TagEnum:
		return we.Type + "." + we.Str
	case annotation.TagClass:
		return we.Type + ".class"
	case annotation.TagAnnotation:
		return reportValue(wireValue{Type: we.Type, Members: we.Members}).String()
	case annotation.TagArray:
		var b strings.Builder
		b.WriteByte('{')
		for i, e := range we.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(renderElement(e))
		}
		b.WriteByte('}')
		return b.String()
	case annotation.TagError:
		return fmt.Sprintf("<type %s not present>", we.Type)
	}
	return fmt.Sprintf("<unknown tag %q>", we.Tag)
}
