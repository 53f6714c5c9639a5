// Package gen renders concatenation plans into a generated Go source file.
// Output is deterministic: declarations appear in plan order and the
// result is gofmt-formatted before it is written.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"constgen/internal/plan"
)

const header = "// Code generated by constgen. DO NOT EDIT."

var fileTemplate = template.Must(template.New("file").Parse(`{{.Header}}

{{if .BuildTag}}//go:build {{.BuildTag}}

{{end}}package {{.Package}}

{{range .Decls}}{{.}}

{{end}}`))

// Options controls rendering.
type Options struct {
	BuildTag string // optional //go:build constraint
}

// Emitter renders plans and writes generated files.
type Emitter struct {
	log *zap.Logger
}

// New creates an Emitter. log may be nil.
func New(log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{log: log}
}

// Render produces the generated file for pkgName from plans.
func (e *Emitter) Render(pkgName string, plans []*plan.Plan, opts Options) ([]byte, error) {
	decls := make([]string, 0, len(plans))
	for _, p := range plans {
		decl, err := renderDecl(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		decls = append(decls, decl)
	}

	var buf bytes.Buffer
	err := fileTemplate.Execute(&buf, struct {
		Header   string
		BuildTag string
		Package  string
		Decls    []string
	}{
		Header:   header,
		BuildTag: opts.BuildTag,
		Package:  pkgName,
		Decls:    decls,
	})
	if err != nil {
		return nil, fmt.Errorf("template execution failed: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		// Formatting only fails if a rendered declaration is not valid
		// Go, which is a generator defect.
		return nil, fmt.Errorf("generated source does not format: %w", err)
	}
	return src, nil
}

// Write renders the file and writes it to dir.
func (e *Emitter) Write(dir, name, pkgName string, plans []*plan.Plan, opts Options) (string, error) {
	src, err := e.Render(pkgName, plans, opts)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if _, err := e.WriteIfChanged(path, src); err != nil {
		return "", err
	}
	return path, nil
}

// WriteIfChanged writes src to path unless the file already holds exactly
// that content, so watchers do not loop on their own output. It reports
// whether the file was written.
func (e *Emitter) WriteIfChanged(path string, src []byte) (bool, error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, src) {
		e.log.Debug("generated file unchanged", zap.String("path", path))
		return false, nil
	}
	if err := os.WriteFile(path, src, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	e.log.Info("wrote generated file",
		zap.String("path", path),
		zap.Int("bytes", len(src)))
	return true, nil
}

// renderDecl renders one plan as a Go declaration.
func renderDecl(p *plan.Plan) (string, error) {
	switch p.Kind {
	case plan.KindString:
		return fmt.Sprintf("const %s = %s", p.Name, strconv.Quote(p.FoldString())), nil

	case plan.KindBytes:
		// strconv.Quote escapes arbitrary byte content, so the string
		// conversion round-trips raw bytes exactly.
		return fmt.Sprintf("var %s = []byte(%s)", p.Name, strconv.Quote(p.FoldString())), nil

	case plan.KindSlice:
		elems := p.FoldElems()
		if len(elems) == 0 {
			return fmt.Sprintf("var %s = []%s{}", p.Name, p.ElemType), nil
		}
		return fmt.Sprintf("var %s = []%s{%s}", p.Name, p.ElemType, strings.Join(elems, ", ")), nil

	default:
		return "", fmt.Errorf("unknown plan kind %d", p.Kind)
	}
}

// IsGenerated reports whether a file carries the constgen header.
func IsGenerated(src []byte) bool {
	return bytes.HasPrefix(src, []byte(header))
}
