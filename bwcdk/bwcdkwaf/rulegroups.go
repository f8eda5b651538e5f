package bwcdkwaf

import (
	"slices"
)

// Scope is where a web ACL applies.
type Scope string

const (
	// ScopeRegional protects regional resources such as API Gateway stages
	// and load balancers.
	ScopeRegional Scope = "REGIONAL"
	// ScopeCloudFront protects CloudFront distributions. Web ACLs in this
	// scope must be deployed in us-east-1.
	ScopeCloudFront Scope = "CLOUDFRONT"
)

// ManagedRuleGroup names a managed rule group offered by AWS WAF.
type ManagedRuleGroup string

type managedRuleGroupInfo struct {
	group       ManagedRuleGroup
	vendor      string
	description string
	scopes      []Scope
}

// The region below is generated by "bwcx gen waf-rules" from the
// ListAvailableManagedRuleGroups API.

// BEGIN MANAGED RULE GROUPS

const (
	// AWSManagedRulesACFPRuleSet: Provides protection against the creation of
	// fraudulent accounts on your application's sign-up page.
	AWSManagedRulesACFPRuleSet ManagedRuleGroup = "AWSManagedRulesACFPRuleSet"
	// AWSManagedRulesATPRuleSet: Provides protection for your login page against
	// stolen credentials, credential stuffing attacks, brute force login
	// attempts, and other anomalous login activities.
	AWSManagedRulesATPRuleSet ManagedRuleGroup = "AWSManagedRulesATPRuleSet"
	// AWSManagedRulesAdminProtectionRuleSet: Contains rules that allow you to
	// block external access to exposed admin pages.
	AWSManagedRulesAdminProtectionRuleSet ManagedRuleGroup = "AWSManagedRulesAdminProtectionRuleSet"
	// AWSManagedRulesAmazonIpReputationList: This group contains rules that are
	// based on Amazon threat intelligence. This is useful if you would like to
	// block sources associated with bots or other threats.
	AWSManagedRulesAmazonIpReputationList ManagedRuleGroup = "AWSManagedRulesAmazonIpReputationList"
	// AWSManagedRulesAnonymousIpList: This group contains rules that allow you
	// to block requests from services that allow obfuscation of viewer identity.
	// This can include request originating from VPN, proxies, Tor nodes, and
	// hosting providers.
	AWSManagedRulesAnonymousIpList ManagedRuleGroup = "AWSManagedRulesAnonymousIpList"
	// AWSManagedRulesBotControlRuleSet: Provides protection against automated
	// bots that can consume excess resources, skew business metrics, cause
	// downtime, or perform malicious activities.
	AWSManagedRulesBotControlRuleSet ManagedRuleGroup = "AWSManagedRulesBotControlRuleSet"
	// AWSManagedRulesCommonRuleSet: Contains rules that are generally applicable
	// to web applications. This provides protection against exploitation of a
	// wide range of vulnerabilities, including those described in OWASP
	// publications.
	AWSManagedRulesCommonRuleSet ManagedRuleGroup = "AWSManagedRulesCommonRuleSet"
	// AWSManagedRulesKnownBadInputsRuleSet: Contains rules that allow you to
	// block request patterns that are known to be invalid and are associated
	// with exploitation or discovery of vulnerabilities.
	AWSManagedRulesKnownBadInputsRuleSet ManagedRuleGroup = "AWSManagedRulesKnownBadInputsRuleSet"
	// AWSManagedRulesLinuxRuleSet: Contains rules that block request patterns
	// associated with exploitation of vulnerabilities specific to Linux,
	// including LFI attacks.
	AWSManagedRulesLinuxRuleSet ManagedRuleGroup = "AWSManagedRulesLinuxRuleSet"
	// AWSManagedRulesPHPRuleSet: Contains rules that block request patterns
	// associated with exploiting vulnerabilities specific to the use of the PHP.
	AWSManagedRulesPHPRuleSet ManagedRuleGroup = "AWSManagedRulesPHPRuleSet"
	// AWSManagedRulesSQLiRuleSet: Contains rules that allow you to block request
	// patterns associated with exploitation of SQL databases, like SQL injection
	// attacks.
	AWSManagedRulesSQLiRuleSet ManagedRuleGroup = "AWSManagedRulesSQLiRuleSet"
	// AWSManagedRulesUnixRuleSet: Contains rules that block request patterns
	// associated with exploiting vulnerabilities specific to POSIX/POSIX-like
	// OS, including LFI attacks.
	AWSManagedRulesUnixRuleSet ManagedRuleGroup = "AWSManagedRulesUnixRuleSet"
	// AWSManagedRulesWindowsRuleSet: Contains rules that block request patterns
	// associated with exploiting vulnerabilities specific to Windows, (e.g.,
	// PowerShell commands).
	AWSManagedRulesWindowsRuleSet ManagedRuleGroup = "AWSManagedRulesWindowsRuleSet"
	// AWSManagedRulesWordPressRuleSet: The WordPress Applications group contains
	// rules that block request patterns associated with the exploitation of
	// vulnerabilities specific to WordPress sites.
	AWSManagedRulesWordPressRuleSet ManagedRuleGroup = "AWSManagedRulesWordPressRuleSet"
)

var managedRuleGroups = []managedRuleGroupInfo{
	{group: AWSManagedRulesACFPRuleSet, vendor: "AWS", description: "Provides protection against the creation of fraudulent accounts on your application's sign-up page.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesATPRuleSet, vendor: "AWS", description: "Provides protection for your login page against stolen credentials, credential stuffing attacks, brute force login attempts, and other anomalous login activities.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesAdminProtectionRuleSet, vendor: "AWS", description: "Contains rules that allow you to block external access to exposed admin pages.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesAmazonIpReputationList, vendor: "AWS", description: "This group contains rules that are based on Amazon threat intelligence. This is useful if you would like to block sources associated with bots or other threats.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesAnonymousIpList, vendor: "AWS", description: "This group contains rules that allow you to block requests from services that allow obfuscation of viewer identity. This can include request originating from VPN, proxies, Tor nodes, and hosting providers.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesBotControlRuleSet, vendor: "AWS", description: "Provides protection against automated bots that can consume excess resources, skew business metrics, cause downtime, or perform malicious activities.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesCommonRuleSet, vendor: "AWS", description: "Contains rules that are generally applicable to web applications. This provides protection against exploitation of a wide range of vulnerabilities, including those described in OWASP publications.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesKnownBadInputsRuleSet, vendor: "AWS", description: "Contains rules that allow you to block request patterns that are known to be invalid and are associated with exploitation or discovery of vulnerabilities.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesLinuxRuleSet, vendor: "AWS", description: "Contains rules that block request patterns associated with exploitation of vulnerabilities specific to Linux, including LFI attacks.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesPHPRuleSet, vendor: "AWS", description: "Contains rules that block request patterns associated with exploiting vulnerabilities specific to the use of the PHP.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesSQLiRuleSet, vendor: "AWS", description: "Contains rules that allow you to block request patterns associated with exploitation of SQL databases, like SQL injection attacks.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesUnixRuleSet, vendor: "AWS", description: "Contains rules that block request patterns associated with exploiting vulnerabilities specific to POSIX/POSIX-like OS, including LFI attacks.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesWindowsRuleSet, vendor: "AWS", description: "Contains rules that block request patterns associated with exploiting vulnerabilities specific to Windows, (e.g., PowerShell commands).", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
	{group: AWSManagedRulesWordPressRuleSet, vendor: "AWS", description: "The WordPress Applications group contains rules that block request patterns associated with the exploitation of vulnerabilities specific to WordPress sites.", scopes: []Scope{ScopeCloudFront, ScopeRegional}},
}

// END MANAGED RULE GROUPS

// All returns every known managed rule group sorted by name.
func All() []ManagedRuleGroup {
	all := make([]ManagedRuleGroup, 0, len(managedRuleGroups))
	for _, info := range managedRuleGroups {
		all = append(all, info.group)
	}
	return all
}

// LookupManagedRuleGroup returns the managed rule group with the given name.
func LookupManagedRuleGroup(name string) (ManagedRuleGroup, bool) {
	for _, info := range managedRuleGroups {
		if string(info.group) == name {
			return info.group, true
		}
	}
	return "", false
}

func (g ManagedRuleGroup) info() (managedRuleGroupInfo, bool) {
	for _, info := range managedRuleGroups {
		if info.group == g {
			return info, true
		}
	}
	return managedRuleGroupInfo{}, false
}

// Name returns the name used in rule statements.
func (g ManagedRuleGroup) Name() string {
	return string(g)
}

// Vendor returns the vendor of the group, or "" for unknown groups.
func (g ManagedRuleGroup) Vendor() string {
	info, _ := g.info()
	return info.vendor
}

// Description returns the description published by the vendor.
func (g ManagedRuleGroup) Description() string {
	info, _ := g.info()
	return info.description
}

// Scopes returns the scopes the group is available in.
func (g ManagedRuleGroup) Scopes() []Scope {
	info, _ := g.info()
	return slices.Clone(info.scopes)
}

// AvailableIn reports whether the group can be used in scope.
func (g ManagedRuleGroup) AvailableIn(scope Scope) bool {
	info, _ := g.info()
	return slices.Contains(info.scopes, scope)
}
