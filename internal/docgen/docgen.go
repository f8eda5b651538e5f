// Package docgen renders the API reference of the construct packages from
// their Go doc comments and splices it into the README.
package docgen

import (
	"bytes"
	"go/ast"
	"go/doc"
	"go/format"
	"go/parser"
	"go/printer"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/basewarphq/bwconstructs/internal/markers"
	"github.com/cockroachdb/errors"
)

// Region is the marker region of the API reference in the README.
const Region = "API"

// Package locates a package to document.
type Package struct {
	// Dir is relative to the module root, e.g. "bwcdk/bwcdkwaf".
	Dir string
}

// Generator renders the API reference of a module.
type Generator struct {
	// Root is the directory of the go.mod.
	Root string
	// ModulePath is the module path of Root.
	ModulePath string
}

// Render returns the Markdown reference of the packages in the given order.
func (g Generator) Render(pkgs []Package) (string, error) {
	var b strings.Builder
	b.WriteString("# API\n")

	for _, pkg := range pkgs {
		r, err := g.load(pkg)
		if err != nil {
			return "", err
		}
		r.b = &b
		if err := r.renderPackage(); err != nil {
			return "", errors.Wrapf(err, "rendering %s", r.p.ImportPath)
		}
	}
	return b.String(), nil
}

type renderer struct {
	b        *strings.Builder
	p        *doc.Package
	fset     *token.FileSet
	comments []*ast.CommentGroup
}

func (g Generator) load(pkg Package) (*renderer, error) {
	dir := filepath.Join(g.Root, filepath.FromSlash(pkg.Dir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading package %s", pkg.Dir)
	}

	r := &renderer{fset: token.NewFileSet()}
	var files []*ast.File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(r.fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", name)
		}
		files = append(files, f)
		// Files are added to the set in order, so the comments stay sorted.
		r.comments = append(r.comments, f.Comments...)
	}
	if len(files) == 0 {
		return nil, errors.Newf("no Go files in %s", pkg.Dir)
	}

	r.p, err = doc.NewFromFiles(r.fset, files, path.Join(g.ModulePath, pkg.Dir))
	if err != nil {
		return nil, errors.Wrapf(err, "reading documentation of %s", pkg.Dir)
	}
	return r, nil
}

func (r *renderer) renderPackage() error {
	r.b.WriteString("\n## " + r.p.Name + "\n\n")
	r.b.WriteString("```go\nimport \"" + r.p.ImportPath + "\"\n```\n")
	r.writeDoc(r.p.Doc)

	for _, c := range r.p.Consts {
		if err := r.writeDecl(c.Decl); err != nil {
			return err
		}
		r.writeDoc(c.Doc)
	}
	for _, f := range r.p.Funcs {
		if err := r.writeFunc(f); err != nil {
			return err
		}
	}
	for _, t := range r.p.Types {
		r.b.WriteString("\n### type " + t.Name + "\n")
		if err := r.writeDecl(t.Decl); err != nil {
			return err
		}
		r.writeDoc(t.Doc)

		for _, f := range t.Funcs {
			if err := r.writeFunc(f); err != nil {
				return err
			}
		}
		for _, m := range t.Methods {
			if err := r.writeFunc(m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) writeFunc(f *doc.Func) error {
	title := "func " + f.Name
	if f.Recv != "" {
		title = "func (" + strings.TrimPrefix(f.Recv, "*") + ") " + f.Name
	}
	r.b.WriteString("\n### " + title + "\n")

	decl := *f.Decl
	decl.Body = nil
	decl.Doc = nil
	if err := r.writeDecl(&decl); err != nil {
		return err
	}
	r.writeDoc(f.Doc)
	return nil
}

// writeDecl prints decl with the comments inside it, such as field docs.
func (r *renderer) writeDecl(decl ast.Decl) error {
	if gen, ok := decl.(*ast.GenDecl); ok {
		stripped := *gen
		stripped.Doc = nil
		decl = &stripped
	}

	var buf bytes.Buffer
	node := &printer.CommentedNode{Node: decl, Comments: r.comments}
	if err := format.Node(&buf, r.fset, node); err != nil {
		return errors.Wrap(err, "printing declaration")
	}
	r.b.WriteString("\n```go\n")
	r.b.Write(buf.Bytes())
	r.b.WriteString("\n```\n")
	return nil
}

func (r *renderer) writeDoc(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	pr := r.p.Printer()
	pr.HeadingLevel = 4
	r.b.WriteString("\n")
	r.b.Write(pr.Markdown(r.p.Parser().Parse(text)))
}

// Demote adds one level to every Markdown heading outside code fences.
func Demote(md string) string {
	lines := strings.SplitAfter(md, "\n")
	fenced := false
	for i, line := range lines {
		if strings.HasPrefix(line, "```") {
			fenced = !fenced
			continue
		}
		if !fenced && strings.HasPrefix(line, "#") {
			lines[i] = "#" + line
		}
	}
	return strings.Join(lines, "")
}

// WriteAPI renders the reference to path and reports whether it changed.
func (g Generator) WriteAPI(dst string, pkgs []Package) (bool, error) {
	md, err := g.Render(pkgs)
	if err != nil {
		return false, err
	}

	old, err := os.ReadFile(dst)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "reading %s", dst)
	}
	if string(old) == md {
		return false, nil
	}
	if err := os.WriteFile(dst, []byte(md), 0o644); err != nil { //nolint:gosec // documentation is world readable
		return false, errors.Wrapf(err, "writing %s", dst)
	}
	return true, nil
}

// SpliceReadme injects the API reference at apiPath into the README at
// readmePath, one heading level deeper. It reports whether the README changed.
func SpliceReadme(readmePath, apiPath string) (bool, error) {
	api, err := os.ReadFile(apiPath)
	if err != nil {
		return false, errors.Wrapf(err, "reading %s", apiPath)
	}
	return markers.InjectFile(readmePath, markers.MarkdownRegion(Region), Demote(string(api)))
}
