package main

import (
	"path/filepath"

	"github.com/basewarphq/bwconstructs/internal/docgen"
)

// documentedPackages are rendered in this order.
var documentedPackages = []string{
	"bwcdk/bwcdkimagebuilder",
	"bwcdk/bwcdkddbprovision",
	"bwcdk/bwcdkwaf",
	"bwcdk/bwcdkdynamo",
	"bwcdk/bwcdkprovider",
	"bwcdk/bwcdkgolambda",
	"bwcdk/bwcdkloggroup",
	"bwcdk/bwcdkparams",
	"bwcdk/bwcdkutil",
}

type APIDocsCmd struct {
	Out      string   `default:"API.md" help:"Output file."`
	Module   string   `default:"github.com/basewarphq/bwconstructs" help:"Module path of the root."`
	Packages []string `name:"package" help:"Package directories to document, relative to the root."`
}

func (c *APIDocsCmd) Run(app *App) error {
	dirs := c.Packages
	if len(dirs) == 0 {
		dirs = documentedPackages
	}
	pkgs := make([]docgen.Package, 0, len(dirs))
	for _, dir := range dirs {
		pkgs = append(pkgs, docgen.Package{Dir: dir})
	}

	gen := docgen.Generator{Root: app.Root, ModulePath: c.Module}
	out := filepath.Join(app.Root, c.Out)
	changed, err := gen.WriteAPI(out, pkgs)
	if err != nil {
		return err
	}
	report(out, changed)
	return nil
}
