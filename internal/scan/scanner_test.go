package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"constgen/internal/plan"
)

// writePackage writes src as a single-file package in a temp dir.
func writePackage(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fixture.go"), []byte(src), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return dir
}

func scanOne(t *testing.T, src string) *Package {
	t.Helper()
	pkg, err := New(nil).ScanPackage(writePackage(t, src))
	if err != nil {
		t.Fatalf("ScanPackage error: %v", err)
	}
	return pkg
}

func findPlan(t *testing.T, pkg *Package, name string) *plan.Plan {
	t.Helper()
	for _, p := range pkg.Plans {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("plan %q not found (have %d plans)", name, len(pkg.Plans))
	return nil
}

func TestScanPackage_StringLiterals(t *testing.T) {
	pkg := scanOne(t, `package fixture

//constgen:string Test0 = "test", 10, 'b', true
`)

	p := findPlan(t, pkg, "Test0")
	if got := p.FoldString(); got != "test10btrue" {
		t.Errorf("FoldString = %q, want %q", got, "test10btrue")
	}
	if !p.Segments[0].Literal || !p.Segments[1].Literal {
		t.Error("literal segments should be classified as literals")
	}
}

func TestScanPackage_EmptyDirective(t *testing.T) {
	pkg := scanOne(t, `package fixture

//constgen:string Empty =
`)

	p := findPlan(t, pkg, "Empty")
	if len(p.Segments) != 0 {
		t.Fatalf("expected zero segments, got %d", len(p.Segments))
	}
	if got := p.FoldString(); got != "" {
		t.Errorf("FoldString = %q, want empty", got)
	}
}

func TestScanPackage_NamedConstant(t *testing.T) {
	pkg := scanOne(t, `package fixture

const one2 = "one2"

//constgen:string Test4 = "before ", one2, " after"
`)

	p := findPlan(t, pkg, "Test4")
	if got := p.FoldString(); got != "before one2 after" {
		t.Errorf("FoldString = %q, want %q", got, "before one2 after")
	}
	if p.Segments[1].Literal {
		t.Error("named constant segment should not be classified as a literal")
	}
}

func TestScanPackage_ConstExpression(t *testing.T) {
	pkg := scanOne(t, `package fixture

const base = "data"

//constgen:string Joined = base + "cat", len(base)
`)

	p := findPlan(t, pkg, "Joined")
	if got := p.FoldString(); got != "datacat4" {
		t.Errorf("FoldString = %q, want %q", got, "datacat4")
	}
}

func TestScanPackage_DirectiveChaining(t *testing.T) {
	pkg := scanOne(t, `package fixture

//constgen:string Test3 = "one", 2
//constgen:string Test4 = "before ", Test3, " after"
`)

	if got := findPlan(t, pkg, "Test3").FoldString(); got != "one2" {
		t.Errorf("Test3 = %q, want %q", got, "one2")
	}
	if got := findPlan(t, pkg, "Test4").FoldString(); got != "before one2 after" {
		t.Errorf("Test4 = %q, want %q", got, "before one2 after")
	}
}

func TestScanPackage_Bytes(t *testing.T) {
	pkg := scanOne(t, `package fixture

//constgen:bytes Magic = "\x7fELF", 0x01
`)

	p := findPlan(t, pkg, "Magic")
	want := string([]byte{0x7f, 'E', 'L', 'F', 0x01})
	if got := p.FoldString(); got != want {
		t.Errorf("FoldString = %q, want %q", got, want)
	}
	if p.TotalLen() != 5 {
		t.Errorf("TotalLen = %d, want 5", p.TotalLen())
	}
}

func TestScanPackage_SliceFloats(t *testing.T) {
	pkg := scanOne(t, `package fixture

//constgen:slice Floats []float64 = []float64{1.5, 2.5}, []float64{3.5}
`)

	p := findPlan(t, pkg, "Floats")
	if p.ElemType != "float64" {
		t.Errorf("ElemType = %q, want float64", p.ElemType)
	}
	want := []string{"1.5", "2.5", "3.5"}
	if diff := cmp.Diff(want, p.FoldElems()); diff != "" {
		t.Errorf("FoldElems mismatch (-want +got):\n%s", diff)
	}
}

func TestScanPackage_SliceRunes(t *testing.T) {
	pkg := scanOne(t, `package fixture

//constgen:slice Runes []rune = []rune{'a', 'b'}, []rune{'c'}
`)

	p := findPlan(t, pkg, "Runes")
	want := []string{"'a'", "'b'", "'c'"}
	if diff := cmp.Diff(want, p.FoldElems()); diff != "" {
		t.Errorf("FoldElems mismatch (-want +got):\n%s", diff)
	}
}

func TestScanPackage_SliceNamedVarsWithInit(t *testing.T) {
	pkg := scanOne(t, `package fixture

type point struct{ X, Y int }

var left = []point{{1, 1}, {2, 2}, {3, 3}}
var right = []point{{4, 4}, {5, 5}, {6, 6}}

//constgen:slice Points []point init=point{-1, -1} = left, right
`)

	p := findPlan(t, pkg, "Points")
	if p.Init != "point{-1, -1}" {
		t.Errorf("Init = %q", p.Init)
	}
	elems := p.FoldElems()
	if len(elems) != 6 {
		t.Fatalf("len(elems) = %d, want 6", len(elems))
	}
	for i, e := range elems {
		if e == p.Init {
			t.Errorf("element %d equals the fill expression", i)
		}
	}
	if elems[0] != "{1, 1}" || elems[5] != "{6, 6}" {
		t.Errorf("unexpected rendering: %v", elems)
	}
}

func TestScanPackage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name: "non-constant segment",
			src: `package fixture

var who = "world"

//constgen:string Greeting = "hello ", who
`,
			wantErr: "not a constant",
		},
		{
			name: "undefined segment",
			src: `package fixture

//constgen:string Greeting = "hello ", nobody
`,
			wantErr: "nobody",
		},
		{
			name: "slice element type mismatch",
			src: `package fixture

//constgen:slice Floats []float64 = []int{1}
`,
			wantErr: "does not match declared",
		},
		{
			name: "init type mismatch",
			src: `package fixture

//constgen:slice Floats []float64 init="x" = []float64{1}
`,
			wantErr: "not assignable",
		},
		{
			name: "bytes segment out of range",
			src: `package fixture

//constgen:bytes B = 256
`,
			wantErr: "does not fit in a byte",
		},
		{
			name: "invalid utf-8 in string directive",
			src: `package fixture

//constgen:string S = "\xff"
`,
			wantErr: "not valid UTF-8",
		},
		{
			name: "duplicate directive",
			src: `package fixture

//constgen:string Dup = "a"
//constgen:string Dup = "b"
`,
			wantErr: "duplicate directive",
		},
		{
			name: "slice segment not a slice",
			src: `package fixture

//constgen:slice Floats []float64 = 3.5
`,
			wantErr: "composite literals or named slice variables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil).ScanPackage(writePackage(t, tt.src))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestScanPackage_SkipsFiles(t *testing.T) {
	dir := t.TempDir()

	main := `package fixture

//constgen:string Keep = "keep"
`
	generated := `package fixture

//constgen:string Ignore = "ignore"
`
	for name, src := range map[string]string{
		"fixture.go":         main,
		"constgen_gen.go":    generated,
		"fixture_test.go":    "package fixture\n",
		"unrelated_test.txt": "not go",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	pkg, err := New(nil).ScanPackage(dir, "constgen_gen.go")
	if err != nil {
		t.Fatalf("ScanPackage error: %v", err)
	}
	if len(pkg.Plans) != 1 || pkg.Plans[0].Name != "Keep" {
		t.Errorf("expected only the Keep plan, got %d plans", len(pkg.Plans))
	}
	if pkg.Name != "fixture" {
		t.Errorf("package name = %q, want fixture", pkg.Name)
	}
}

func TestScanPackage_OrderIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.go": "package fixture\n\n//constgen:string Second = \"2\"\n",
		"a.go": "package fixture\n\n//constgen:string First = \"1\"\n",
	}
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	pkg, err := New(nil).ScanPackage(dir)
	if err != nil {
		t.Fatalf("ScanPackage error: %v", err)
	}
	if len(pkg.Plans) != 2 || pkg.Plans[0].Name != "First" || pkg.Plans[1].Name != "Second" {
		names := make([]string, len(pkg.Plans))
		for i, p := range pkg.Plans {
			names[i] = p.Name
		}
		t.Errorf("plan order = %v, want [First Second]", names)
	}
}
