package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkdynamo"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkwaf"
)

func NewDeployment(stack awscdk.Stack, shared *Shared, deploymentIdent string) {
	table := bwcdkdynamo.New(stack, bwcdkdynamo.Props{
		Identifier: jsii.String("main"),
	})
	table.Provision("Seed", []map[string]any{
		{"pk": "CONFIG", "sk": "DEFAULT", "deployment": deploymentIdent, "maxNodes": 3},
		{"pk": "CONFIG", "sk": "IMAGE", "buildArn": shared.Image.ImageBuildVersionArn()},
	})

	bwcdkwaf.NewWebACL(stack, "ApiFirewall", bwcdkwaf.WebACLProps{
		Scope: bwcdkwaf.ScopeRegional,
		RuleGroups: []bwcdkwaf.ManagedRuleGroup{
			bwcdkwaf.AWSManagedRulesAmazonIpReputationList,
			bwcdkwaf.AWSManagedRulesCommonRuleSet,
			bwcdkwaf.AWSManagedRulesKnownBadInputsRuleSet,
		},
	})
}
