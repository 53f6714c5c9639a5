package scan

import (
	"fmt"
	"go/token"
	"strings"

	"constgen/internal/plan"
)

// Prefix marks a directive comment, in the same style as //go:generate.
const Prefix = "constgen:"

// Directive is one parsed //constgen: comment, before constant folding.
//
//	//constgen:string Name = seg, seg, ...
//	//constgen:bytes  Name = seg, ...
//	//constgen:slice  Name []Elem = seg, ...
//	//constgen:slice  Name []Elem init=expr = seg, ...
type Directive struct {
	Kind     plan.Kind
	Name     string
	ElemType string // slice directives only, e.g. "[]float64"
	Init     string // optional fill expression, slice directives only
	Segs     []string
	Pos      token.Position
	TokenPos token.Pos // scope anchor for expression checking
}

// parseDirective parses the text of a directive comment. text is the
// comment content without the leading "//".
func parseDirective(text string, pos token.Position, tpos token.Pos) (*Directive, error) {
	rest := strings.TrimPrefix(text, Prefix)

	head, body, found := strings.Cut(rest, " = ")
	if !found {
		// A directive with zero segments ends in " =".
		if trimmed := strings.TrimSuffix(rest, " ="); trimmed != rest {
			head, body, found = trimmed, "", true
		}
	}
	if !found {
		return nil, fmt.Errorf("%s: directive missing ' = ' separator", pos)
	}

	d := &Directive{Pos: pos, TokenPos: tpos}

	// An init= clause may contain spaces, so it is cut off before the
	// whitespace split.
	if idx := strings.Index(head, "init="); idx >= 0 {
		d.Init = strings.TrimSpace(head[idx+len("init="):])
		if d.Init == "" {
			return nil, fmt.Errorf("%s: empty init= expression", pos)
		}
		head = head[:idx]
	}

	fields := strings.Fields(head)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%s: directive needs a kind and a name", pos)
	}

	switch fields[0] {
	case "string":
		d.Kind = plan.KindString
	case "bytes":
		d.Kind = plan.KindBytes
	case "slice":
		d.Kind = plan.KindSlice
	default:
		return nil, fmt.Errorf("%s: unknown directive kind %q (want string, bytes, or slice)", pos, fields[0])
	}

	d.Name = fields[1]
	if !token.IsIdentifier(d.Name) {
		return nil, fmt.Errorf("%s: %q is not a valid identifier", pos, d.Name)
	}

	switch d.Kind {
	case plan.KindSlice:
		if len(fields) != 3 {
			return nil, fmt.Errorf("%s: slice directive needs an element type, e.g. []float64", pos)
		}
		d.ElemType = fields[2]
		if !strings.HasPrefix(d.ElemType, "[]") {
			return nil, fmt.Errorf("%s: slice element type %q must be a slice type", pos, d.ElemType)
		}
	default:
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s: unexpected %q in %s directive", pos, fields[2], d.Kind)
		}
		if d.Init != "" {
			return nil, fmt.Errorf("%s: init= is only valid on slice directives", pos)
		}
	}

	segs, err := splitSegments(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pos, err)
	}
	d.Segs = segs

	return d, nil
}

// splitSegments splits the segment list on top-level commas, respecting
// nested brackets and string, rune, and backquote literals. A single
// trailing comma is allowed.
func splitSegments(body string) ([]string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}

	var (
		segs    []string
		depth   int
		start   int
		quote   byte // active quote character, 0 when outside a literal
		escaped bool
	)

	for i := 0; i < len(body); i++ {
		c := body[i]

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\' && quote != '`':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets in segment list")
			}
		case ',':
			if depth == 0 {
				segs = append(segs, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %q literal in segment list", quote)
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in segment list")
	}

	segs = append(segs, strings.TrimSpace(body[start:]))

	// Trailing comma leaves one empty tail segment.
	if n := len(segs); segs[n-1] == "" {
		segs = segs[:n-1]
	}
	for i, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("empty segment at position %d", i+1)
		}
	}

	return segs, nil
}
