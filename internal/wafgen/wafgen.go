// Package wafgen generates the managed rule group enumeration of bwcdkwaf
// from the ListAvailableManagedRuleGroups API.
package wafgen

import (
	"context"
	"fmt"
	"go/format"
	"go/token"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/wafv2"
	"github.com/aws/aws-sdk-go-v2/service/wafv2/types"
	"github.com/basewarphq/bwconstructs/internal/markers"
	"github.com/cockroachdb/errors"
	markdown "github.com/fbiville/markdown-table-formatter/pkg/markdown"
	"github.com/iancoleman/strcase"
	"github.com/samber/lo"
)

// Region is the marker region of the generated enumeration in Go source and
// of the rule group table in Markdown.
const Region = "MANAGED RULE GROUPS"

// DefaultVendors limits the enumeration to groups that need no subscription.
var DefaultVendors = []string{"AWS"}

// API is the subset of the WAFv2 client used to list rule groups.
type API interface {
	ListAvailableManagedRuleGroups(
		ctx context.Context, params *wafv2.ListAvailableManagedRuleGroupsInput, optFns ...func(*wafv2.Options),
	) (*wafv2.ListAvailableManagedRuleGroupsOutput, error)
}

// RuleGroup is a managed rule group merged across scopes.
type RuleGroup struct {
	Vendor      string
	Name        string
	Description string
	Scopes      []types.Scope
}

// ConstName returns the Go identifier of the group. Groups of other vendors
// are prefixed with the vendor.
func (g RuleGroup) ConstName() string {
	if g.Vendor == "AWS" {
		return identifier(g.Name)
	}
	return identifier(g.Vendor) + identifier(g.Name)
}

// identifier keeps names that are valid identifiers as published.
func identifier(s string) string {
	if token.IsIdentifier(s) && token.IsExported(s) {
		return s
	}
	return strcase.ToCamel(s)
}

// Lister lists rule groups per scope. CloudFront rule groups are only listed
// by a client for us-east-1.
type Lister struct {
	Regional   API
	CloudFront API
}

// List returns the groups of the given vendors, available in any scope,
// sorted by name. Groups with the same vendor and name are merged.
func (l Lister) List(ctx context.Context, vendors []string) ([]RuleGroup, error) {
	byKey := map[string]*RuleGroup{}
	for _, scope := range []struct {
		api   API
		scope types.Scope
	}{
		{l.Regional, types.ScopeRegional},
		{l.CloudFront, types.ScopeCloudfront},
	} {
		if scope.api == nil {
			continue
		}
		summaries, err := listScope(ctx, scope.api, scope.scope)
		if err != nil {
			return nil, err
		}

		for _, s := range summaries {
			vendor, name := aws.ToString(s.VendorName), aws.ToString(s.Name)
			if len(vendors) > 0 && !slices.Contains(vendors, vendor) {
				continue
			}

			key := vendor + "/" + name
			group, ok := byKey[key]
			if !ok {
				group = &RuleGroup{Vendor: vendor, Name: name, Description: normalize(aws.ToString(s.Description))}
				byKey[key] = group
			}
			if !slices.Contains(group.Scopes, scope.scope) {
				group.Scopes = append(group.Scopes, scope.scope)
			}
		}
	}

	groups := make([]RuleGroup, 0, len(byKey))
	for _, g := range byKey {
		slices.Sort(g.Scopes)
		groups = append(groups, *g)
	}
	slices.SortFunc(groups, func(a, b RuleGroup) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Vendor, b.Vendor)
	})
	return groups, nil
}

func listScope(ctx context.Context, api API, scope types.Scope) ([]types.ManagedRuleGroupSummary, error) {
	var (
		all    []types.ManagedRuleGroupSummary
		marker *string
	)
	for {
		out, err := api.ListAvailableManagedRuleGroups(ctx, &wafv2.ListAvailableManagedRuleGroupsInput{
			Scope:      scope,
			NextMarker: marker,
			Limit:      aws.Int32(100),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "listing %s managed rule groups", scope)
		}
		all = append(all, out.ManagedRuleGroups...)

		if aws.ToString(out.NextMarker) == "" || aws.ToString(out.NextMarker) == aws.ToString(marker) {
			return all, nil
		}
		marker = out.NextMarker
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RenderGo renders the constants and the info table of the enumeration.
func RenderGo(groups []RuleGroup) (string, error) {
	dupes := lo.FindDuplicatesBy(groups, RuleGroup.ConstName)
	if len(dupes) > 0 {
		return "", errors.Newf("rule groups map to the same identifier %s", dupes[0].ConstName())
	}

	var b strings.Builder
	b.WriteString("\nconst (\n")
	for _, g := range groups {
		text := g.ConstName() + ":"
		if g.Description != "" {
			text += " " + g.Description
		}
		for _, line := range wrap(text, 74) {
			fmt.Fprintf(&b, "\t// %s\n", line)
		}
		fmt.Fprintf(&b, "\t%s ManagedRuleGroup = %s\n", g.ConstName(), strconv.Quote(g.Name))
	}
	b.WriteString(")\n\nvar managedRuleGroups = []managedRuleGroupInfo{\n")
	for _, g := range groups {
		scopes := lo.Map(g.Scopes, func(s types.Scope, _ int) string { return scopeConst(s) })
		fmt.Fprintf(&b, "\t{group: %s, vendor: %s, description: %s, scopes: []Scope{%s}},\n",
			g.ConstName(), strconv.Quote(g.Vendor), strconv.Quote(g.Description), strings.Join(scopes, ", "))
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func scopeConst(s types.Scope) string {
	if s == types.ScopeCloudfront {
		return "ScopeCloudFront"
	}
	return "ScopeRegional"
}

func wrap(text string, width int) []string {
	var (
		lines []string
		line  string
	)
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// RenderMarkdown renders a table of the groups.
func RenderMarkdown(groups []RuleGroup) (string, error) {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		scopes := lo.Map(g.Scopes, func(s types.Scope, _ int) string { return string(s) })
		rows = append(rows, []string{
			"`" + g.ConstName() + "`",
			g.Vendor,
			strings.Join(scopes, ", "),
			strings.ReplaceAll(g.Description, "|", `\|`),
		})
	}

	table, err := markdown.NewTableFormatterBuilder().
		Build("Rule group", "Vendor", "Scopes", "Description").
		Format(rows)
	if err != nil {
		return "", errors.Wrap(err, "formatting rule group table")
	}
	return table, nil
}

// UpdateGoFile injects the enumeration into the Go source at path and
// formats the result. It reports whether the file changed.
func UpdateGoFile(path string, groups []RuleGroup) (bool, error) {
	content, err := RenderGo(groups)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrapf(err, "reading %s", path)
	}
	src, err := markers.Inject(string(data), markers.GoRegion(Region), content)
	if err != nil {
		return false, errors.Wrapf(err, "in %s", path)
	}
	formatted, err := format.Source([]byte(src))
	if err != nil {
		return false, errors.Wrapf(err, "formatting %s", path)
	}
	if string(formatted) == string(data) {
		return false, nil
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil { //nolint:gosec // source files are world readable
		return false, errors.Wrapf(err, "writing %s", path)
	}
	return true, nil
}

// UpdateMarkdownFile injects the rule group table into the Markdown file at
// path and reports whether the file changed.
func UpdateMarkdownFile(path string, groups []RuleGroup) (bool, error) {
	table, err := RenderMarkdown(groups)
	if err != nil {
		return false, err
	}
	return markers.InjectFile(path, markers.MarkdownRegion(Region), table)
}
