package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

type App struct {
	Root string `short:"C" default:"." help:"Module root directory." type:"existingdir"`

	Gen struct {
		WafRules WafRulesCmd `cmd:"" name:"waf-rules" help:"Regenerate the WAF managed rule group enumeration."`
		APIDocs  APIDocsCmd  `cmd:"" name:"api-docs" help:"Render API.md from the construct packages."`
		Readme   ReadmeCmd   `cmd:"" help:"Splice API.md into README.md."`
	} `cmd:"" help:"Code and documentation generators."`
}

func main() {
	var app App
	ctx := kong.Parse(&app,
		kong.Name("bwcx"),
		kong.Description("Generators for the bwconstructs library."),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)

	if err := ctx.Run(&app); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func report(path string, changed bool) {
	if changed {
		fmt.Fprintf(os.Stdout, "updated %s\n", path)
		return
	}
	fmt.Fprintf(os.Stdout, "%s is up to date\n", path)
}
