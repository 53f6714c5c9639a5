package concat

import (
	"fmt"
	"strconv"
)

// Value renders a literal the way the constgen generator stringifies
// directive segments: strings and byte slices pass through, booleans become
// "true"/"false", integers and floats use their shortest decimal form, and
// int32 is treated as a rune (an untyped character literal passed through
// an any parameter arrives as int32).
func Value(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int32: // rune
		return string(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Args stringifies each value with Value and concatenates the results.
// Args("test", 10, 'b', true) == "test10btrue".
func Args(vals ...any) string {
	segs := make([]string, len(vals))
	for i, v := range vals {
		segs[i] = Value(v)
	}
	return Strings(segs...)
}
