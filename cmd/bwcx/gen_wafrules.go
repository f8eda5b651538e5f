package main

import (
	"context"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/wafv2"
	"github.com/basewarphq/bwconstructs/internal/wafgen"
	"github.com/cockroachdb/errors"
)

type WafRulesCmd struct {
	File    string   `default:"bwcdk/bwcdkwaf/rulegroups.go" help:"Go file holding the enumeration."`
	Readme  string   `default:"README.md" help:"Markdown file receiving the rule group table. Empty to skip."`
	Vendors []string `name:"vendor" help:"Vendors to include. Defaults to AWS; pass an empty value for all."`
	Region  string   `default:"us-east-1" help:"Region to list REGIONAL rule groups in."`
}

func (c *WafRulesCmd) Run(ctx context.Context, app *App) error {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(c.Region))
	if err != nil {
		return errors.Wrap(err, "loading AWS config")
	}

	lister := wafgen.Lister{
		Regional: wafv2.NewFromConfig(cfg),
		// CloudFront rule groups are only listed in us-east-1.
		CloudFront: wafv2.NewFromConfig(cfg, func(o *wafv2.Options) { o.Region = "us-east-1" }),
	}

	vendors := c.Vendors
	if len(vendors) == 0 {
		vendors = wafgen.DefaultVendors
	}
	groups, err := lister.List(ctx, vendorFilter(vendors))
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return errors.New("no managed rule groups found")
	}

	file := filepath.Join(app.Root, c.File)
	changed, err := wafgen.UpdateGoFile(file, groups)
	if err != nil {
		return err
	}
	report(file, changed)

	if c.Readme == "" {
		return nil
	}
	readme := filepath.Join(app.Root, c.Readme)
	changed, err = wafgen.UpdateMarkdownFile(readme, groups)
	if err != nil {
		return err
	}
	report(readme, changed)
	return nil
}

// vendorFilter treats a single empty vendor as "all vendors".
func vendorFilter(vendors []string) []string {
	if len(vendors) == 1 && vendors[0] == "" {
		return nil
	}
	return vendors
}
