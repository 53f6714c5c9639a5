// Package concat joins ordered segments of strings, bytes, or arbitrary
// element types into one exact-size result. The total length is summed
// before the output buffer is allocated; the buffer is never resized, and
// each segment is copied once at a strictly increasing offset. A final
// offset/length mismatch indicates a defect in the length computation and
// panics rather than returning an error.
//
// This is the runtime counterpart of the constgen code generator, which
// performs the same fold at build time and embeds the finished value in
// the generated source.
package concat

// Strings returns the left-to-right concatenation of segs.
// Zero segments yield "".
func Strings(segs ...string) string {
	total := 0
	for _, s := range segs {
		total += len(s)
	}
	if total == 0 {
		return ""
	}
	buf := make([]byte, total)
	off := 0
	for _, s := range segs {
		off += copy(buf[off:], s)
	}
	if off != total {
		panic("concat: written length does not match computed length")
	}
	return string(buf)
}

// Bytes returns the left-to-right concatenation of segs as a fresh slice.
// Bytes are copied unchanged, with no transcoding or reinterpretation.
// Zero segments yield an empty, non-nil slice.
func Bytes(segs ...[]byte) []byte {
	total := 0
	for _, s := range segs {
		total += len(s)
	}
	buf := make([]byte, total)
	off := 0
	for _, s := range segs {
		off += copy(buf[off:], s)
	}
	if off != total {
		panic("concat: written length does not match computed length")
	}
	return buf
}

// Slices returns the left-to-right concatenation of segs. The output is
// zero-initialized before copying, which suits element types whose zero
// value is a valid placeholder (numbers, runes, bools, strings).
func Slices[T any](segs ...[]T) []T {
	total := 0
	for _, s := range segs {
		total += len(s)
	}
	out := make([]T, total)
	off := 0
	for _, s := range segs {
		off += copy(out[off:], s)
	}
	if off != total {
		panic("concat: written length does not match computed length")
	}
	return out
}

// SlicesInit is Slices with an explicit fill value written to every slot
// before the segments are copied in. Because the output length is exactly
// the sum of the segment lengths, every slot is overwritten and fill never
// appears in the result. It exists for element types whose zero value
// violates an invariant the caller cares about.
func SlicesInit[T any](fill T, segs ...[]T) []T {
	total := 0
	for _, s := range segs {
		total += len(s)
	}
	out := make([]T, total)
	for i := range out {
		out[i] = fill
	}
	off := 0
	for _, s := range segs {
		off += copy(out[off:], s)
	}
	if off != total {
		panic("concat: written length does not match computed length")
	}
	return out
}
