// Package verify checks a generated file against the plans that produced
// it. The structural pass parses the file and confirms every expected
// declaration exists with the right shape; the evaluation pass runs the
// string and bytes declarations through a sandboxed yaegi interpreter and
// compares the values with the folded plans. A mismatch is a generator
// defect, never a user error.
package verify

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"

	"constgen/internal/plan"
)

// Result holds the outcome of verifying one generated file.
type Result struct {
	Valid       bool
	Errors      []string
	PackageName string
	Checked     int // declarations compared by value
}

// Verifier validates generated output.
type Verifier struct {
	log *zap.Logger
}

// New creates a Verifier. log may be nil.
func New(log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{log: log}
}

// Verify parses src and checks it against plans.
func (v *Verifier) Verify(src []byte, pkgName string, plans []*plan.Plan) *Result {
	result := &Result{Valid: true}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "generated.go", src, 0)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("generated file does not parse: %v", err))
		return result
	}
	result.PackageName = file.Name.Name
	if file.Name.Name != pkgName {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("package %q, want %q", file.Name.Name, pkgName))
	}

	decls := indexDecls(file)
	for _, p := range plans {
		d, ok := decls[p.Name]
		if !ok {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("declaration %s missing from generated file", p.Name))
			continue
		}
		if err := v.checkDecl(fset, d, p, result); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", p.Name, err))
		}
	}

	v.log.Debug("verified generated file",
		zap.String("package", pkgName),
		zap.Int("declarations", len(plans)),
		zap.Int("value_checked", result.Checked),
		zap.Bool("valid", result.Valid))
	return result
}

type decl struct {
	tok  token.Token
	spec *ast.ValueSpec
}

func indexDecls(file *ast.File) map[string]decl {
	decls := make(map[string]decl)
	for _, d := range file.Decls {
		gen, ok := d.(*ast.GenDecl)
		if !ok || (gen.Tok != token.CONST && gen.Tok != token.VAR) {
			continue
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, name := range vs.Names {
				decls[name.Name] = decl{tok: gen.Tok, spec: vs}
			}
		}
	}
	return decls
}

// checkDecl verifies one declaration structurally and, where the value is
// self-contained, by interpretation.
func (v *Verifier) checkDecl(fset *token.FileSet, d decl, p *plan.Plan, result *Result) error {
	switch p.Kind {
	case plan.KindString:
		if d.tok != token.CONST {
			return fmt.Errorf("declared with %s, want const", d.tok)
		}
		got, err := v.evalString(fset, d.spec, p.Name)
		if err != nil {
			return err
		}
		if want := p.FoldString(); got != want {
			return fmt.Errorf("value mismatch: generated %q, folded %q", got, want)
		}
		result.Checked++

	case plan.KindBytes:
		if d.tok != token.VAR {
			return fmt.Errorf("declared with %s, want var", d.tok)
		}
		got, err := v.evalBytes(fset, d.spec, p.Name)
		if err != nil {
			return err
		}
		if want := []byte(p.FoldString()); !bytes.Equal(got, want) {
			return fmt.Errorf("value mismatch: generated %v, folded %v", got, want)
		}
		result.Checked++

	case plan.KindSlice:
		if d.tok != token.VAR {
			return fmt.Errorf("declared with %s, want var", d.tok)
		}
		// Slice elements may reference types defined elsewhere in the
		// package, so only the length is checked here.
		lit, ok := singleValue(d.spec).(*ast.CompositeLit)
		if !ok {
			return fmt.Errorf("initializer is not a composite literal")
		}
		if got, want := len(lit.Elts), p.TotalLen(); got != want {
			return fmt.Errorf("length mismatch: generated %d elements, folded %d", got, want)
		}
	}
	return nil
}

// evalString evaluates a const string declaration in a fresh interpreter.
func (v *Verifier) evalString(fset *token.FileSet, spec *ast.ValueSpec, name string) (string, error) {
	out, err := v.eval(fset, token.CONST, spec, name)
	if err != nil {
		return "", err
	}
	s, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("evaluated to %T, want string", out)
	}
	return s, nil
}

// evalBytes evaluates a var []byte declaration in a fresh interpreter.
func (v *Verifier) evalBytes(fset *token.FileSet, spec *ast.ValueSpec, name string) ([]byte, error) {
	out, err := v.eval(fset, token.VAR, spec, name)
	if err != nil {
		return nil, err
	}
	b, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("evaluated to %T, want []byte", out)
	}
	return b, nil
}

// eval wraps a single self-contained declaration in package main and
// interprets it. Generated string and bytes declarations are pure
// literals, so no other symbols are required.
func (v *Verifier) eval(fset *token.FileSet, tok token.Token, spec *ast.ValueSpec, name string) (any, error) {
	var buf bytes.Buffer
	buf.WriteString("package main\n\n")
	buf.WriteString(tok.String())
	buf.WriteString(" ")
	if err := printer.Fprint(&buf, fset, spec); err != nil {
		return nil, fmt.Errorf("failed to print declaration: %w", err)
	}
	buf.WriteString("\n")

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("interpreter setup failed: %w", err)
	}
	if _, err := i.Eval(buf.String()); err != nil {
		return nil, fmt.Errorf("interpretation failed: %w", err)
	}
	val, err := i.Eval("main." + name)
	if err != nil {
		return nil, fmt.Errorf("declaration not found after interpretation: %w", err)
	}
	return val.Interface(), nil
}

func singleValue(spec *ast.ValueSpec) ast.Expr {
	if len(spec.Values) != 1 {
		return nil
	}
	return spec.Values[0]
}
