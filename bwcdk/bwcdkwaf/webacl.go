// Package bwcdkwaf provides a web ACL construct assembled from AWS managed
// rule groups. The rule groups are an enumeration generated from the WAF API.
package bwcdkwaf

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awswafv2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkutil"
	"github.com/cockroachdb/errors"
)

// WebACL provides access to a web ACL.
type WebACL interface {
	// ACL returns the underlying CloudFormation web ACL.
	ACL() awswafv2.CfnWebACL
	// Arn returns the ARN of the web ACL.
	Arn() *string
	// Associate attaches the web ACL to a regional resource such as an API
	// Gateway stage or a load balancer.
	Associate(id string, resourceArn *string) awswafv2.CfnWebACLAssociation
}

// WebACLProps configures the WebACL construct.
type WebACLProps struct {
	// Scope of the web ACL.
	// Required.
	Scope Scope `validate:"required,oneof=REGIONAL CLOUDFRONT"`
	// RuleGroups are evaluated in order.
	// Required, at least one.
	RuleGroups []ManagedRuleGroup `validate:"min=1"`
	// BlockByDefault blocks requests no rule allows. Defaults to allow.
	BlockByDefault bool
	// MetricName of the web ACL. Defaults to a name derived from the id.
	MetricName *string `validate:"omitempty,max=128"`
}

type webACL struct {
	scope constructs.Construct
	acl   awswafv2.CfnWebACL
	props WebACLProps
}

// NewWebACL creates a web ACL with one managed rule group statement per
// group. It panics on invalid props, on groups that are unknown or not
// available in the scope, and on duplicate groups.
func NewWebACL(scope constructs.Construct, id string, props WebACLProps) WebACL {
	bwcdkutil.MustValidateProps("bwcdkwaf.WebACL", props)
	if err := validateRuleGroups(props.Scope, props.RuleGroups); err != nil {
		panic(err)
	}

	scope = constructs.NewConstruct(scope, jsii.String(id))
	con := &webACL{scope: scope, props: props}

	if props.Scope == ScopeCloudFront {
		region := awscdk.Stack_Of(scope).Region()
		if !bwcdkutil.IsToken(*region) && *region != "us-east-1" {
			panic(fmt.Sprintf("bwcdkwaf.WebACL: CLOUDFRONT web ACLs must be deployed in us-east-1, not %s", *region))
		}
	}

	metricName := props.MetricName
	if metricName == nil {
		metricName = jsii.String(bwcdkutil.ResourceName(scope, id, bwcdkutil.CasingCamel))
	}

	rules := make([]*awswafv2.CfnWebACL_RuleProperty, 0, len(props.RuleGroups))
	for i, group := range props.RuleGroups {
		rules = append(rules, &awswafv2.CfnWebACL_RuleProperty{
			Name:     jsii.String(group.Name()),
			Priority: jsii.Number(i),
			Statement: &awswafv2.CfnWebACL_StatementProperty{
				ManagedRuleGroupStatement: &awswafv2.CfnWebACL_ManagedRuleGroupStatementProperty{
					Name:       jsii.String(group.Name()),
					VendorName: jsii.String(group.Vendor()),
				},
			},
			OverrideAction: &awswafv2.CfnWebACL_OverrideActionProperty{
				None: map[string]any{},
			},
			VisibilityConfig: visibility(jsii.String(group.Name())),
		})
	}

	defaultAction := &awswafv2.CfnWebACL_DefaultActionProperty{
		Allow: &awswafv2.CfnWebACL_AllowActionProperty{},
	}
	if props.BlockByDefault {
		defaultAction = &awswafv2.CfnWebACL_DefaultActionProperty{
			Block: &awswafv2.CfnWebACL_BlockActionProperty{},
		}
	}

	con.acl = awswafv2.NewCfnWebACL(scope, jsii.String("Resource"), &awswafv2.CfnWebACLProps{
		Scope:            jsii.String(string(props.Scope)),
		DefaultAction:    defaultAction,
		VisibilityConfig: visibility(metricName),
		Rules:            &rules,
	})

	return con
}

func visibility(metricName *string) *awswafv2.CfnWebACL_VisibilityConfigProperty {
	return &awswafv2.CfnWebACL_VisibilityConfigProperty{
		CloudWatchMetricsEnabled: jsii.Bool(true),
		MetricName:               metricName,
		SampledRequestsEnabled:   jsii.Bool(true),
	}
}

func validateRuleGroups(scope Scope, groups []ManagedRuleGroup) error {
	var msgs []string
	seen := map[ManagedRuleGroup]int{}
	for i, group := range groups {
		if first, ok := seen[group]; ok {
			msgs = append(msgs, fmt.Sprintf("RuleGroups[%d] repeats %s from RuleGroups[%d]", i, group, first))
			continue
		}
		seen[group] = i

		if _, ok := LookupManagedRuleGroup(string(group)); !ok {
			msgs = append(msgs, fmt.Sprintf("RuleGroups[%d] is not a known managed rule group: %q", i, group))
			continue
		}
		if !group.AvailableIn(scope) {
			msgs = append(msgs, fmt.Sprintf("RuleGroups[%d] %s is not available in scope %s", i, group, scope))
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.Errorf("bwcdkwaf.WebACL: invalid props:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (w *webACL) ACL() awswafv2.CfnWebACL {
	return w.acl
}

func (w *webACL) Arn() *string {
	return w.acl.AttrArn()
}

func (w *webACL) Associate(id string, resourceArn *string) awswafv2.CfnWebACLAssociation {
	if w.props.Scope != ScopeRegional {
		panic("bwcdkwaf.WebACL: only REGIONAL web ACLs are associated with resources; " +
			"set the web ACL on the CloudFront distribution instead")
	}
	return awswafv2.NewCfnWebACLAssociation(w.scope, jsii.String(id), &awswafv2.CfnWebACLAssociationProps{
		ResourceArn: resourceArn,
		WebAclArn:   w.acl.AttrArn(),
	})
}
