package concat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		segs []string
		want string
	}{
		{"empty", nil, ""},
		{"empty segments", []string{"", "", ""}, ""},
		{"identity", []string{"one"}, "one"},
		{"two", []string{"one", "2"}, "one2"},
		{"mixed constant and literal", []string{"before ", "one2", " after"}, "before one2 after"},
		{"multibyte", []string{"über", "maß", "🎉"}, "übermaß🎉"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Strings(tt.segs...)
			if got != tt.want {
				t.Errorf("Strings(%q) = %q, want %q", tt.segs, got, tt.want)
			}
		})
	}
}

func TestStrings_LengthLaw(t *testing.T) {
	segLists := [][]string{
		nil,
		{""},
		{"a"},
		{"abc", "", "defg", "h"},
		{"🎉", "x", "日本語"},
	}

	for _, segs := range segLists {
		want := 0
		for _, s := range segs {
			want += len(s)
		}
		if got := len(Strings(segs...)); got != want {
			t.Errorf("len(Strings(%q)) = %d, want %d", segs, got, want)
		}
	}
}

func TestStrings_Associativity(t *testing.T) {
	a, b, c := "ab", "cd", "ef"

	flat := Strings(a, b, c)
	left := Strings(Strings(a, b), c)
	right := Strings(a, Strings(b, c))

	if flat != left || flat != right {
		t.Errorf("associativity violated: flat=%q left=%q right=%q", flat, left, right)
	}
}

func TestBytes(t *testing.T) {
	tests := []struct {
		name string
		segs [][]byte
		want []byte
	}{
		{"empty", nil, []byte{}},
		{"identity", [][]byte{{1, 2, 3}}, []byte{1, 2, 3}},
		{"order preserved", [][]byte{{1, 2}, {3}, {4, 5, 6}}, []byte{1, 2, 3, 4, 5, 6}},
		{"raw bytes unchanged", [][]byte{{0xff, 0x00}, {0x7f}}, []byte{0xff, 0x00, 0x7f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bytes(tt.segs...)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Bytes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBytes_EmptyIsNotNil(t *testing.T) {
	if got := Bytes(); got == nil || len(got) != 0 {
		t.Errorf("Bytes() = %v, want empty non-nil slice", got)
	}
}

func TestSlices_DefaultInitializer(t *testing.T) {
	floats := Slices([]float64{1.5, 2.5}, []float64{3.5})
	wantFloats := []float64{1.5, 2.5, 3.5}
	if diff := cmp.Diff(wantFloats, floats); diff != "" {
		t.Errorf("float concat mismatch (-want +got):\n%s", diff)
	}

	runes := Slices([]rune("ab"), []rune("cd"))
	if string(runes) != "abcd" {
		t.Errorf("rune concat = %q, want %q", string(runes), "abcd")
	}
}

func TestSlicesInit_FillNeverObservable(t *testing.T) {
	type point struct{ X, Y int }
	fill := point{X: -1, Y: -1}

	got := SlicesInit(fill,
		[]point{{1, 1}, {2, 2}, {3, 3}},
		[]point{{4, 4}, {5, 5}, {6, 6}},
	)

	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}
	for i, p := range got {
		if p == fill {
			t.Errorf("element %d equals the fill value %v", i, p)
		}
	}
	want := []point{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}, {6, 6}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SlicesInit mismatch (-want +got):\n%s", diff)
	}
}

func TestSlices_OrderPreservation(t *testing.T) {
	segs := [][]int{{10, 11}, {20}, {30, 31, 32}}
	got := Slices(segs...)

	off := 0
	for i, seg := range segs {
		for j, v := range seg {
			if got[off] != v {
				t.Errorf("result[%d] = %d, want segment %d element %d (%d)", off, got[off], i, j, v)
			}
			off++
		}
	}
	if off != len(got) {
		t.Errorf("final offset %d != result length %d", off, len(got))
	}
}
