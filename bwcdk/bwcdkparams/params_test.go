//nolint:paralleltest // jsii runtime doesn't support parallel tests
package bwcdkparams_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkparams"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkutil"
)

func newStack(region string) awscdk.Stack {
	app := awscdk.NewApp(nil)
	bwcdkutil.StoreConfig(app, &bwcdkutil.Config{
		Qualifier:        "myapp",
		PrimaryRegion:    "us-east-1",
		SecondaryRegions: []string{"eu-west-1"},
		Deployments:      []string{"Dev"},
	})
	return awscdk.NewStack(app, jsii.String("ParamsStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{Region: jsii.String(region)},
	})
}

func TestParameterName(t *testing.T) {
	defer jsii.Close()

	stack := newStack("us-east-1")
	got := *bwcdkparams.ParameterName(stack, "imagebuilder", "pipeline-arn")
	if got != "/myapp/imagebuilder/pipeline-arn" {
		t.Errorf("ParameterName() = %q", got)
	}
}

func TestStore(t *testing.T) {
	defer jsii.Close()

	stack := newStack("us-east-1")
	bwcdkparams.Store(stack, "PipelineArnParam", "imagebuilder", "pipeline-arn", jsii.String("arn:value"))

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::SSM::Parameter"), map[string]any{
		"Name":  "/myapp/imagebuilder/pipeline-arn",
		"Value": "arn:value",
		"Type":  "String",
	})
}

func TestLookup_ReadsFromPrimaryRegion(t *testing.T) {
	defer jsii.Close()

	stack := newStack("eu-west-1")
	value := bwcdkparams.Lookup(stack, "LookupPipelineArn", "imagebuilder", "pipeline-arn", "pipeline-arn-lookup")
	if value == nil {
		t.Fatal("Lookup() returned nil")
	}

	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("Custom::AWS"), jsii.Number(1))
}
