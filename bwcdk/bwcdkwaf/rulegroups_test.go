package bwcdkwaf_test

import (
	"slices"
	"testing"

	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkwaf"
)

func TestAll_SortedAndUnique(t *testing.T) {
	t.Parallel()

	all := bwcdkwaf.All()
	if len(all) == 0 {
		t.Fatal("All() returned no rule groups")
	}
	names := make([]string, 0, len(all))
	for _, g := range all {
		names = append(names, g.Name())
	}
	if !slices.IsSorted(names) {
		t.Errorf("All() is not sorted by name: %v", names)
	}
	if len(slices.Compact(slices.Clone(names))) != len(names) {
		t.Errorf("All() contains duplicates: %v", names)
	}
}

func TestManagedRuleGroup_Info(t *testing.T) {
	t.Parallel()

	g := bwcdkwaf.AWSManagedRulesCommonRuleSet
	if g.Name() != "AWSManagedRulesCommonRuleSet" {
		t.Errorf("Name() = %q", g.Name())
	}
	if g.Vendor() != "AWS" {
		t.Errorf("Vendor() = %q", g.Vendor())
	}
	if g.Description() == "" {
		t.Error("Description() is empty")
	}
	if !g.AvailableIn(bwcdkwaf.ScopeRegional) || !g.AvailableIn(bwcdkwaf.ScopeCloudFront) {
		t.Errorf("Scopes() = %v", g.Scopes())
	}
}

func TestManagedRuleGroup_Unknown(t *testing.T) {
	t.Parallel()

	g := bwcdkwaf.ManagedRuleGroup("NoSuchGroup")
	if g.Vendor() != "" || g.Description() != "" || len(g.Scopes()) != 0 {
		t.Errorf("unknown group should have no info, got vendor=%q scopes=%v", g.Vendor(), g.Scopes())
	}
	if g.AvailableIn(bwcdkwaf.ScopeRegional) {
		t.Error("unknown group should not be available")
	}
}

func TestLookupManagedRuleGroup(t *testing.T) {
	t.Parallel()

	g, ok := bwcdkwaf.LookupManagedRuleGroup("AWSManagedRulesSQLiRuleSet")
	if !ok || g != bwcdkwaf.AWSManagedRulesSQLiRuleSet {
		t.Errorf("LookupManagedRuleGroup() = %q, %v", g, ok)
	}

	if _, ok := bwcdkwaf.LookupManagedRuleGroup("awsmanagedrulessqlruleset"); ok {
		t.Error("lookup should be case sensitive")
	}
}

func TestScopes_ReturnsCopy(t *testing.T) {
	t.Parallel()

	scopes := bwcdkwaf.AWSManagedRulesCommonRuleSet.Scopes()
	scopes[0] = "MUTATED"
	if slices.Contains(bwcdkwaf.AWSManagedRulesCommonRuleSet.Scopes(), "MUTATED") {
		t.Error("Scopes() exposes internal state")
	}
}
