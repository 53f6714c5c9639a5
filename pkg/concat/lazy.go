package concat

import "sync"

// LazyStrings returns a function that performs the concatenation on first
// call and returns the cached result thereafter. This trades the build-time
// fold for a one-time initialization cost; the cached value is never
// mutated after it is produced.
func LazyStrings(segs ...string) func() string {
	return sync.OnceValue(func() string {
		return Strings(segs...)
	})
}

// LazyBytes is LazyStrings for byte segments. Callers must not mutate the
// returned slice.
func LazyBytes(segs ...[]byte) func() []byte {
	return sync.OnceValue(func() []byte {
		return Bytes(segs...)
	})
}
