// Package bwcdkimagebuilder provides EC2 Image Builder constructs: a pipeline
// with its supporting resources, and a custom resource that starts the
// pipeline during deployment and optionally waits for the image.
package bwcdkimagebuilder

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssnssubscriptions"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkgolambda"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkprovider"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkutil"
)

const (
	// StartResourceType is the CloudFormation type of the start resource.
	StartResourceType = "Custom::Ec2ImageBuilderStart"
	// StartHandlerEntry is the Go command implementing the start resource.
	StartHandlerEntry = "handlers/cmd/imagebuilderstart"
	// SignalHandlerEntry is the Go command signaling the wait condition.
	SignalHandlerEntry = "handlers/cmd/waitsignal"

	startProviderID = "Ec2ImageBuilderStartProvider"
)

// Wait timeout bounds. CloudFormation caps wait conditions at 12 hours.
const (
	minWaitSeconds = 60
	maxWaitSeconds = 12 * 60 * 60
)

// Start provides access to a started pipeline execution.
type Start interface {
	// Resource returns the underlying custom resource.
	Resource() awscdk.CustomResource
	// ImageBuildVersionArn returns the ARN of the image build started by the
	// resource.
	ImageBuildVersionArn() *string
	// WaitCondition returns the wait condition, or nil when not waiting.
	WaitCondition() awscdk.CfnWaitCondition
	// ImageData returns the data of the wait condition signal: a JSON object
	// mapping the build version ARN to the AMI id. It panics when the
	// construct does not wait for completion.
	ImageData() *string
}

// WaitForCompletion makes the deployment wait for the image build.
type WaitForCompletion struct {
	// Topic is the SNS topic of the pipeline's infrastructure configuration.
	// Required.
	Topic awssns.ITopic `validate:"-"`
	// Timeout of the wait, between 1 minute and 12 hours. Defaults to 12 hours.
	Timeout awscdk.Duration `validate:"-"`
}

// StartProps configures the Start construct.
type StartProps struct {
	// PipelineArn is the ARN of the image pipeline to start.
	// Required.
	PipelineArn *string `validate:"required,imagebuilderpipelinearn"`
	// Hash triggers a new execution whenever it changes, for example a digest
	// of the component documents. At most 64 characters.
	Hash *string `validate:"omitempty,min=1,max=64"`
	// WaitForCompletion blocks the deployment until the image is available.
	// Optional.
	WaitForCompletion *WaitForCompletion
	// ModuleDir is the directory containing the go.mod of the handlers.
	ModuleDir *string `validate:"-"`
}

type start struct {
	resource      awscdk.CustomResource
	waitCondition awscdk.CfnWaitCondition
}

// NewStart starts the pipeline on create and whenever PipelineArn or Hash
// change. It panics on invalid props.
func NewStart(scope constructs.Construct, id string, props StartProps) Start {
	bwcdkutil.MustValidateProps("bwcdkimagebuilder.Start", props)
	timeoutSeconds := validateWait(props.WaitForCompletion)

	scope = constructs.NewConstruct(scope, jsii.String(id))
	con := &start{}

	provider := bwcdkprovider.Singleton(scope, startProviderID, bwcdkprovider.Props{
		Entry:     jsii.String(StartHandlerEntry),
		ModuleDir: props.ModuleDir,
	})

	properties := map[string]any{
		"PipelineArn": props.PipelineArn,
	}
	if props.Hash != nil {
		properties["Hash"] = props.Hash
	}

	con.resource = awscdk.NewCustomResource(scope, jsii.String("Resource"), &awscdk.CustomResourceProps{
		ServiceToken: provider.ServiceToken(),
		ResourceType: jsii.String(StartResourceType),
		Properties:   &properties,
	})

	fn := provider.Function()
	fn.AddToRolePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions:   jsii.Strings("imagebuilder:StartImagePipelineExecution"),
		Resources: &[]*string{props.PipelineArn},
	}))
	fn.AddToRolePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions:   jsii.Strings("iam:CreateServiceLinkedRole"),
		Resources: jsii.Strings("*"),
		Conditions: &map[string]any{
			"StringEquals": map[string]any{"iam:AWSServiceName": "imagebuilder.amazonaws.com"},
		},
	}))
	// The role and its policies live below the function.
	con.resource.Node().AddDependency(fn)

	if props.WaitForCompletion != nil {
		con.waitCondition = newWait(scope, id, con.resource, props, timeoutSeconds)
	}

	return con
}

// newWait declares the wait condition and the function that signals it. A
// changed hash or literal pipeline ARN yields new logical ids, because a wait
// condition that has received its signal cannot be reused.
func newWait(
	scope constructs.Construct, id string, resource awscdk.CustomResource, props StartProps, timeoutSeconds int,
) awscdk.CfnWaitCondition {
	handle := awscdk.NewCfnWaitConditionHandle(scope, jsii.String("WaitHandle"+waitSuffix(props)), nil)

	signal := bwcdkgolambda.New(scope, bwcdkgolambda.Props{
		Entry:     jsii.String(SignalHandlerEntry),
		ModuleDir: props.ModuleDir,
		Suffix:    jsii.String(id),
		Timeout:   awscdk.Duration_Minutes(jsii.Number(1)),
		Environment: &map[string]*string{
			"WAIT_HANDLE_URL":         handle.Ref(),
			"IMAGE_BUILD_VERSION_ARN": resource.GetAttString(jsii.String("ImageBuildVersionArn")),
		},
	})
	props.WaitForCompletion.Topic.AddSubscription(
		awssnssubscriptions.NewLambdaSubscription(signal.Function(), nil))

	wait := awscdk.NewCfnWaitCondition(scope, jsii.String("WaitCondition"+waitSuffix(props)), &awscdk.CfnWaitConditionProps{
		Count:   jsii.Number(1),
		Handle:  handle.Ref(),
		Timeout: jsii.String(fmt.Sprintf("%d", timeoutSeconds)),
	})
	wait.Node().AddDependency(resource)

	return wait
}

// waitSuffix digests what triggers a new execution. A token ARN cannot take
// part, so such starts rely on Hash alone.
func waitSuffix(props StartProps) string {
	key := ""
	if props.Hash != nil {
		key = *props.Hash
	}
	if !bwcdkutil.IsToken(*props.PipelineArn) {
		key = *props.PipelineArn + "\n" + key
	}
	return bwcdkutil.IDSuffix(key)
}

func validateWait(wait *WaitForCompletion) int {
	if wait == nil {
		return 0
	}
	if wait.Topic == nil {
		panic("bwcdkimagebuilder.Start: invalid props:\n  - WaitForCompletion.Topic is required")
	}
	if wait.Timeout == nil {
		return maxWaitSeconds
	}

	seconds := int(*wait.Timeout.ToSeconds(nil))
	if seconds < minWaitSeconds || seconds > maxWaitSeconds {
		panic(fmt.Sprintf("bwcdkimagebuilder.Start: invalid props:\n"+
			"  - WaitForCompletion.Timeout must be between 1 minute and 12 hours (got %s)",
			*wait.Timeout.ToHumanString()))
	}
	return seconds
}

func (s *start) Resource() awscdk.CustomResource {
	return s.resource
}

func (s *start) ImageBuildVersionArn() *string {
	return s.resource.GetAttString(jsii.String("ImageBuildVersionArn"))
}

func (s *start) WaitCondition() awscdk.CfnWaitCondition {
	return s.waitCondition
}

func (s *start) ImageData() *string {
	if s.waitCondition == nil {
		panic("bwcdkimagebuilder.Start: ImageData requires WaitForCompletion")
	}
	return awscdk.Token_AsString(s.waitCondition.AttrData(), nil)
}
