package plan

import (
	"fmt"
	"go/constant"
	"go/types"
	"strconv"
	"unicode/utf8"
)

// FormatConst renders a folded constant as the text that joins a string
// concatenation: strings pass through, booleans become "true"/"false",
// integers and floats use their shortest decimal form, and untyped rune
// literals render as the character itself.
func FormatConst(v constant.Value, t types.Type) (string, error) {
	switch v.Kind() {
	case constant.String:
		return constant.StringVal(v), nil

	case constant.Bool:
		return strconv.FormatBool(constant.BoolVal(v)), nil

	case constant.Int:
		if isRuneType(t) {
			r, ok := constant.Int64Val(v)
			if !ok || !utf8.ValidRune(rune(r)) {
				return "", fmt.Errorf("invalid rune constant %s", v.ExactString())
			}
			return string(rune(r)), nil
		}
		return v.ExactString(), nil

	case constant.Float:
		f, _ := constant.Float64Val(v)
		return strconv.FormatFloat(f, 'g', -1, 64), nil

	default:
		return "", fmt.Errorf("cannot stringify constant of kind %v", v.Kind())
	}
}

// FormatElem renders a folded constant as a Go expression usable inside a
// composite literal of the target element type. String elements are quoted;
// everything else uses its exact decimal form, which is assignable to any
// named type with a matching underlying kind.
func FormatElem(v constant.Value, t types.Type) (string, error) {
	switch v.Kind() {
	case constant.String:
		return strconv.Quote(constant.StringVal(v)), nil

	case constant.Bool:
		return strconv.FormatBool(constant.BoolVal(v)), nil

	case constant.Int:
		if isRuneType(t) {
			r, ok := constant.Int64Val(v)
			if ok && utf8.ValidRune(rune(r)) {
				return strconv.QuoteRune(rune(r)), nil
			}
		}
		return v.ExactString(), nil

	case constant.Float:
		f, _ := constant.Float64Val(v)
		s := strconv.FormatFloat(f, 'g', -1, 64)
		return s, nil

	default:
		return "", fmt.Errorf("cannot render constant of kind %v", v.Kind())
	}
}

// isRuneType reports whether t is an untyped rune constant or the rune
// alias. Inside composite literals the checker records the final element
// type, so both spellings occur.
func isRuneType(t types.Type) bool {
	b, ok := t.(*types.Basic)
	if !ok {
		return false
	}
	return b.Kind() == types.UntypedRune || (b.Kind() == types.Int32 && b.Name() == "rune")
}
