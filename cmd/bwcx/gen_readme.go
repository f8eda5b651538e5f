package main

import (
	"path/filepath"

	"github.com/basewarphq/bwconstructs/internal/docgen"
)

type ReadmeCmd struct {
	Readme string `default:"README.md" help:"README to update."`
	API    string `default:"API.md" help:"API reference to splice in."`
}

func (c *ReadmeCmd) Run(app *App) error {
	readme := filepath.Join(app.Root, c.Readme)
	changed, err := docgen.SpliceReadme(readme, filepath.Join(app.Root, c.API))
	if err != nil {
		return err
	}
	report(readme, changed)
	return nil
}
