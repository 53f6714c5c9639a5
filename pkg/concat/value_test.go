package concat

import "testing"

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "test", "test"},
		{"bytes", []byte("raw"), "raw"},
		{"int", 10, "10"},
		{"negative int", -7, "-7"},
		{"int64", int64(1 << 40), "1099511627776"},
		{"uint8", uint8(255), "255"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"rune", 'b', "b"},
		{"multibyte rune", '🎉', "🎉"},
		{"float", 3.14, "3.14"},
		{"float32", float32(0.5), "0.5"},
		{"whole float", 2.0, "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Value(tt.in); got != tt.want {
				t.Errorf("Value(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	if got := Args("test", 10, 'b', true); got != "test10btrue" {
		t.Errorf("Args = %q, want %q", got, "test10btrue")
	}
	if got := Args(); got != "" {
		t.Errorf("Args() = %q, want empty", got)
	}
}

func TestLazyStrings(t *testing.T) {
	f := LazyStrings("a", "b", "c")

	first := f()
	if first != "abc" {
		t.Fatalf("first call = %q, want %q", first, "abc")
	}
	if second := f(); second != first {
		t.Errorf("second call = %q, want cached %q", second, first)
	}
}

func TestLazyBytes(t *testing.T) {
	f := LazyBytes([]byte{1}, []byte{2, 3})

	got := f()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("LazyBytes() = %v, want [1 2 3]", got)
	}
	// Same backing array on every call.
	if &f()[0] != &got[0] {
		t.Error("expected cached slice to be returned on subsequent calls")
	}
}
