package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsssm"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkimagebuilder"
)

const parentImageParam = "/aws/service/ami-amazon-linux-latest/al2023-ami-kernel-default-x86_64"

type Shared struct {
	Pipeline bwcdkimagebuilder.Pipeline
	Image    bwcdkimagebuilder.Start
}

// NewShared builds the node image of the region and waits for it, so
// deployment stacks can launch instances from it.
func NewShared(stack awscdk.Stack) *Shared {
	shared := &Shared{}

	shared.Pipeline = bwcdkimagebuilder.NewPipeline(stack, "NodeImage", bwcdkimagebuilder.PipelineProps{
		Name:        jsii.String("node-ami"),
		ParentImage: awsssm.StringParameter_ValueForStringParameter(stack, jsii.String(parentImageParam), nil),
		Components: []bwcdkimagebuilder.ComponentDocument{
			bwcdkimagebuilder.BuildComponent("install-runtime", "Installs the node runtime",
				bwcdkimagebuilder.ExecuteBash("InstallPackages",
					"dnf install -y docker amazon-cloudwatch-agent",
					"systemctl enable docker",
				),
			),
			bwcdkimagebuilder.BuildComponent("harden", "Applies the base hardening",
				bwcdkimagebuilder.ExecuteBash("DisablePasswordLogin",
					"sed -i 's/^#\\?PasswordAuthentication.*/PasswordAuthentication no/' /etc/ssh/sshd_config",
				),
			),
		},
		ScheduleExpression: jsii.String("cron(0 4 ? * MON *)"),
	})

	shared.Image = bwcdkimagebuilder.NewStart(stack, "NodeImageBuild", bwcdkimagebuilder.StartProps{
		PipelineArn: shared.Pipeline.PipelineArn(),
		Hash:        jsii.String(shared.Pipeline.Hash()),
		WaitForCompletion: &bwcdkimagebuilder.WaitForCompletion{
			Topic:   shared.Pipeline.Topic(),
			Timeout: awscdk.Duration_Hours(jsii.Number(2)),
		},
	})

	awscdk.NewCfnOutput(stack, jsii.String("NodeImageData"), &awscdk.CfnOutputProps{
		Value:       shared.Image.ImageData(),
		Description: jsii.String("Build version ARN and AMI id of the node image"),
	})

	return shared
}
