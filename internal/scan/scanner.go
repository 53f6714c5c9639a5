// Package scan discovers //constgen: directives in a Go package and
// constant-folds their segment expressions into concatenation plans.
// Segments are resolved against the type-checked package, so named
// constants and expressions over them fold exactly as the compiler would
// evaluate them. Everything that can go wrong goes wrong here, before any
// code is generated; nothing is deferred to runtime.
package scan

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/constant"
	"go/importer"
	"go/parser"
	"go/printer"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"constgen/internal/plan"
)

// Scanner parses and type-checks packages and folds their directives.
type Scanner struct {
	log  *zap.Logger
	fset *token.FileSet
}

// Package is the result of scanning one directory.
type Package struct {
	Name  string
	Dir   string
	Plans []*plan.Plan
}

// New creates a Scanner. log may be nil.
func New(log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		log:  log,
		fset: token.NewFileSet(),
	}
}

// ScanPackage parses the Go files in dir, type-checks them, and folds all
// directives into plans. Test files and any file named in skip are
// ignored. A package with no directives yields a Package with nil Plans.
func (s *Scanner) ScanPackage(dir string, skip ...string) (*Package, error) {
	files, pkgName, err := s.parseDir(dir, skip)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Go files in %s", dir)
	}

	pkg, info := s.check(dir, pkgName, files)

	directives, err := s.collectDirectives(files)
	if err != nil {
		return nil, err
	}
	s.log.Debug("scanned package",
		zap.String("dir", dir),
		zap.String("package", pkgName),
		zap.Int("directives", len(directives)))

	result := &Package{Name: pkgName, Dir: dir}
	seen := make(map[string]token.Position)
	for _, d := range directives {
		if prev, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate directive %q (previous at %s)", d.Pos, d.Name, prev)
		}
		seen[d.Name] = d.Pos

		p, err := s.fold(pkg, info, files, d)
		if err != nil {
			return nil, err
		}
		result.Plans = append(result.Plans, p)

		// Later directives may reference earlier string results, the
		// same way user code references the generated constants.
		if p.Kind == plan.KindString && pkg.Scope().Lookup(p.Name) == nil {
			pkg.Scope().Insert(types.NewConst(token.NoPos, pkg, p.Name,
				types.Typ[types.UntypedString], constant.MakeString(p.FoldString())))
		}
	}

	return result, nil
}

// parseDir parses the non-test Go files in dir in name order.
func (s *Scanner) parseDir(dir string, skip []string) ([]*ast.File, string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, "_test.go") || skipped[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		files   []*ast.File
		pkgName string
	)
	for _, name := range names {
		file, err := parser.ParseFile(s.fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, "", fmt.Errorf("parse failed: %w", err)
		}
		if pkgName == "" {
			pkgName = file.Name.Name
		}
		if file.Name.Name != pkgName {
			s.log.Warn("skipping file from different package",
				zap.String("file", name),
				zap.String("package", file.Name.Name))
			continue
		}
		files = append(files, file)
	}

	return files, pkgName, nil
}

// check type-checks the package. Type errors are logged but not fatal:
// user code may reference generated constants that do not exist yet, so
// individual segment folding decides what is actually broken.
func (s *Scanner) check(dir, pkgName string, files []*ast.File) (*types.Package, *types.Info) {
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{
		Importer: importer.ForCompiler(s.fset, "source", nil),
		Error: func(err error) {
			s.log.Debug("type check", zap.Error(err))
		},
	}

	pkg, err := conf.Check(pkgName, s.fset, files, info)
	if err != nil {
		s.log.Debug("package has type errors; folding continues", zap.String("dir", dir), zap.Error(err))
	}
	return pkg, info
}

// collectDirectives extracts directives from all comments, in position
// order across files.
func (s *Scanner) collectDirectives(files []*ast.File) ([]*Directive, error) {
	var directives []*Directive
	for _, file := range files {
		for _, group := range file.Comments {
			for _, c := range group.List {
				text := strings.TrimPrefix(c.Text, "//")
				if !strings.HasPrefix(text, Prefix) {
					continue
				}
				d, err := parseDirective(text, s.fset.Position(c.Pos()), c.Pos())
				if err != nil {
					return nil, err
				}
				directives = append(directives, d)
			}
		}
	}
	sort.SliceStable(directives, func(i, j int) bool {
		a, b := directives[i].Pos, directives[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Offset < b.Offset
	})
	return directives, nil
}

// fold turns a directive into a plan by evaluating every segment.
func (s *Scanner) fold(pkg *types.Package, info *types.Info, files []*ast.File, d *Directive) (*plan.Plan, error) {
	p := &plan.Plan{
		Name: d.Name,
		Kind: d.Kind,
		Pos:  d.Pos,
	}

	switch d.Kind {
	case plan.KindString, plan.KindBytes:
		for i, seg := range d.Segs {
			folded, err := s.foldScalar(pkg, d, seg)
			if err != nil {
				return nil, fmt.Errorf("%s: segment %d (%s): %w", d.Pos, i+1, seg, err)
			}
			p.Segments = append(p.Segments, folded)
		}

	case plan.KindSlice:
		elem, err := s.resolveElemType(pkg, d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Pos, err)
		}
		p.ElemType = strings.TrimPrefix(d.ElemType, "[]")

		if d.Init != "" {
			if err := s.checkInit(pkg, d, elem); err != nil {
				return nil, fmt.Errorf("%s: init=%s: %w", d.Pos, d.Init, err)
			}
			p.Init = d.Init
		}

		for i, seg := range d.Segs {
			folded, err := s.foldSliceSegment(pkg, info, files, d, elem, seg)
			if err != nil {
				return nil, fmt.Errorf("%s: segment %d (%s): %w", d.Pos, i+1, seg, err)
			}
			p.Segments = append(p.Segments, folded)
		}
	}

	return p, nil
}

// foldScalar evaluates one segment of a string or bytes directive.
func (s *Scanner) foldScalar(pkg *types.Package, d *Directive, seg string) (plan.Segment, error) {
	expr, tv, err := s.evalExpr(pkg, d.TokenPos, seg)
	if err != nil {
		return plan.Segment{}, err
	}
	if tv.Value == nil {
		return plan.Segment{}, fmt.Errorf("not a constant expression")
	}

	out := plan.Segment{
		Expr:    seg,
		Pos:     d.Pos,
		Literal: isLiteral(expr),
	}

	switch d.Kind {
	case plan.KindString:
		str, err := plan.FormatConst(tv.Value, tv.Type)
		if err != nil {
			return plan.Segment{}, err
		}
		if tv.Value.Kind() == constant.String && !utf8.ValidString(str) {
			return plan.Segment{}, fmt.Errorf("string content is not valid UTF-8")
		}
		out.Str = str

	case plan.KindBytes:
		switch tv.Value.Kind() {
		case constant.String:
			out.Str = constant.StringVal(tv.Value)
		case constant.Int:
			n, ok := constant.Int64Val(tv.Value)
			if !ok || n < 0 || n > 255 {
				return plan.Segment{}, fmt.Errorf("integer segment %s does not fit in a byte", tv.Value.ExactString())
			}
			out.Str = string([]byte{byte(n)})
		default:
			return plan.Segment{}, fmt.Errorf("bytes segments must be string or byte-valued constants, got %v", tv.Value.Kind())
		}
	}

	return out, nil
}

// resolveElemType checks the directive's declared slice type and returns
// its element type.
func (s *Scanner) resolveElemType(pkg *types.Package, d *Directive) (types.Type, error) {
	expr, err := parser.ParseExpr(d.ElemType)
	if err != nil {
		return nil, fmt.Errorf("bad element type %q: %w", d.ElemType, err)
	}
	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	if err := types.CheckExpr(s.fset, pkg, d.TokenPos, expr, info); err != nil {
		return nil, fmt.Errorf("bad element type %q: %w", d.ElemType, err)
	}
	tv := info.Types[expr]
	if !tv.IsType() {
		return nil, fmt.Errorf("%q is not a type", d.ElemType)
	}
	slice, ok := tv.Type.Underlying().(*types.Slice)
	if !ok {
		return nil, fmt.Errorf("%q is not a slice type", d.ElemType)
	}
	return slice.Elem(), nil
}

// checkInit type-checks the fill expression against the element type.
func (s *Scanner) checkInit(pkg *types.Package, d *Directive, elem types.Type) error {
	_, tv, err := s.evalExpr(pkg, d.TokenPos, d.Init)
	if err != nil {
		return err
	}
	if !types.AssignableTo(tv.Type, elem) {
		return fmt.Errorf("type %s is not assignable to element type %s", tv.Type, elem)
	}
	return nil
}

// foldSliceSegment evaluates one segment of a slice directive. Segments are
// either composite literals or references to package-level slice variables
// whose initializer is a composite literal.
func (s *Scanner) foldSliceSegment(pkg *types.Package, info *types.Info, files []*ast.File, d *Directive, elem types.Type, seg string) (plan.Segment, error) {
	expr, err := parser.ParseExpr(seg)
	if err != nil {
		return plan.Segment{}, fmt.Errorf("parse failed: %w", err)
	}

	out := plan.Segment{Expr: seg, Pos: d.Pos}

	switch e := expr.(type) {
	case *ast.CompositeLit:
		segInfo := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
		if err := types.CheckExpr(s.fset, pkg, d.TokenPos, expr, segInfo); err != nil {
			return plan.Segment{}, err
		}
		tv := segInfo.Types[expr]
		if err := checkElemType(tv.Type, elem); err != nil {
			return plan.Segment{}, err
		}
		out.Literal = true
		out.Elems, err = renderElems(e, segInfo, nil)
		if err != nil {
			return plan.Segment{}, err
		}

	case *ast.Ident:
		obj := pkg.Scope().Lookup(e.Name)
		if obj == nil {
			return plan.Segment{}, fmt.Errorf("undefined: %s", e.Name)
		}
		v, ok := obj.(*types.Var)
		if !ok {
			return plan.Segment{}, fmt.Errorf("%s is not a package-level variable", e.Name)
		}
		if err := checkElemType(v.Type(), elem); err != nil {
			return plan.Segment{}, err
		}
		lit, err := findVarInit(files, e.Name)
		if err != nil {
			return plan.Segment{}, err
		}
		out.Elems, err = renderElems(lit, info, s.fset)
		if err != nil {
			return plan.Segment{}, err
		}

	default:
		return plan.Segment{}, fmt.Errorf("slice segments must be composite literals or named slice variables")
	}

	return out, nil
}

// renderElems renders each element of a composite literal: folded constants
// by value, anything else (structs, nested literals) by source text.
func renderElems(lit *ast.CompositeLit, info *types.Info, fset *token.FileSet) ([]string, error) {
	elems := make([]string, 0, len(lit.Elts))
	for _, elt := range lit.Elts {
		if _, keyed := elt.(*ast.KeyValueExpr); keyed {
			return nil, fmt.Errorf("keyed composite literal elements are not supported")
		}
		if tv, ok := info.Types[elt]; ok && tv.Value != nil {
			rendered, err := plan.FormatElem(tv.Value, tv.Type)
			if err != nil {
				return nil, err
			}
			elems = append(elems, rendered)
			continue
		}
		elems = append(elems, exprText(fset, elt))
	}
	return elems, nil
}

// findVarInit locates the composite-literal initializer of a package-level
// variable.
func findVarInit(files []*ast.File, name string) (*ast.CompositeLit, error) {
	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}
			for _, spec := range gen.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for i, ident := range vs.Names {
					if ident.Name != name || i >= len(vs.Values) {
						continue
					}
					lit, ok := vs.Values[i].(*ast.CompositeLit)
					if !ok {
						return nil, fmt.Errorf("%s is not initialized with a composite literal", name)
					}
					return lit, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("no initializer found for %s", name)
}

// evalExpr parses and type-checks a segment expression in package scope.
func (s *Scanner) evalExpr(pkg *types.Package, pos token.Pos, src string) (ast.Expr, types.TypeAndValue, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, types.TypeAndValue{}, fmt.Errorf("parse failed: %w", err)
	}
	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	if err := types.CheckExpr(s.fset, pkg, pos, expr, info); err != nil {
		return nil, types.TypeAndValue{}, err
	}
	tv, ok := info.Types[expr]
	if !ok {
		return nil, types.TypeAndValue{}, fmt.Errorf("expression could not be evaluated")
	}
	return expr, tv, nil
}

func checkElemType(t types.Type, elem types.Type) error {
	switch u := t.Underlying().(type) {
	case *types.Slice:
		if !types.Identical(u.Elem(), elem) {
			return fmt.Errorf("element type %s does not match declared %s", u.Elem(), elem)
		}
	case *types.Array:
		if !types.Identical(u.Elem(), elem) {
			return fmt.Errorf("element type %s does not match declared %s", u.Elem(), elem)
		}
	default:
		return fmt.Errorf("segment type %s is not a slice or array", t)
	}
	return nil
}

func isLiteral(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.BasicLit:
		return true
	case *ast.UnaryExpr:
		// -3 parses as a unary expression over a literal.
		_, ok := e.X.(*ast.BasicLit)
		return ok
	}
	return false
}

func exprText(fset *token.FileSet, e ast.Expr) string {
	if fset == nil {
		fset = token.NewFileSet()
	}
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, e); err != nil {
		return ""
	}
	return buf.String()
}
