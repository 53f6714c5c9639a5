// Package plan models one concatenation directive as an ordered list of
// folded segments. The scanner produces plans, the generator renders them;
// the fold itself (length computation and buffer assembly) is shared with
// the public library.
package plan

import (
	"go/token"

	"constgen/pkg/concat"
)

// Kind is the target shape of a directive.
type Kind int

const (
	KindString Kind = iota // const Name = "..."
	KindBytes              // var Name = []byte("...")
	KindSlice              // var Name = []Elem{...}
)

// String returns the directive keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindSlice:
		return "slice"
	}
	return "unknown"
}

// Segment is one input to a concatenation: a literal or a named constant
// expression, already folded to its value.
type Segment struct {
	Expr    string         // source text of the segment expression
	Pos     token.Position // where the segment appears
	Literal bool           // true for plain literals, false for named/compound expressions

	// Folded value. Str holds the byte content for string and bytes
	// targets; Elems holds the rendered element expressions for slice
	// targets.
	Str   string
	Elems []string
}

// Len returns the segment's contribution to the output length: bytes for
// string/bytes targets, elements for slice targets.
func (s Segment) Len(kind Kind) int {
	if kind == KindSlice {
		return len(s.Elems)
	}
	return len(s.Str)
}

// Plan is the ordered segment list for one directive.
type Plan struct {
	Name     string
	Kind     Kind
	ElemType string // slice targets only, e.g. "float64" or "Color"
	Init     string // optional rendered fill expression, slice targets only
	Segments []Segment
	Pos      token.Position
}

// TotalLen sums the segment lengths. This is computed before any output
// buffer exists; assembly asserts against it afterwards.
func (p *Plan) TotalLen() int {
	total := 0
	for _, s := range p.Segments {
		total += s.Len(p.Kind)
	}
	return total
}

// FoldString assembles the folded byte content for string and bytes plans.
// Zero segments yield the empty string.
func (p *Plan) FoldString() string {
	segs := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		segs[i] = s.Str
	}
	return concat.Strings(segs...)
}

// FoldElems assembles the rendered element expressions for slice plans in
// segment order. When an explicit initializer is present it pre-fills the
// buffer and is fully overwritten, matching the generated value's contract
// that the fill never appears in the output.
func (p *Plan) FoldElems() []string {
	segs := make([][]string, len(p.Segments))
	for i, s := range p.Segments {
		segs[i] = s.Elems
	}
	if p.Init != "" {
		return concat.SlicesInit(p.Init, segs...)
	}
	return concat.Slices(segs...)
}
