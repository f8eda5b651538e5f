package bwcdkimagebuilder

import (
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsimagebuilder"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkparams"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkutil"
	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
)

const paramsNamespace = "imagebuilder"

// Pipeline provides access to an image pipeline and its supporting resources.
type Pipeline interface {
	// PipelineArn returns the ARN of the image pipeline.
	PipelineArn() *string
	// Topic receives a notification on every image state change.
	Topic() awssns.ITopic
	// Bucket stores the build logs.
	Bucket() awss3.IBucket
	// Hash is a digest of everything that defines the image. Pass it to
	// NewStart to rebuild when the definition changes.
	Hash() string
}

// PipelineProps configures the Pipeline construct.
type PipelineProps struct {
	// Name labels the resources, e.g. "node-ami".
	// Required.
	Name *string `validate:"required,max=40"`
	// ParentImage is the base AMI id or an SSM resolve expression.
	// Required.
	ParentImage *string `validate:"required"`
	// Components are applied in order.
	// Required, at least one.
	Components []ComponentDocument `validate:"min=1"`
	// Platform of the components. Defaults to "Linux".
	Platform *string `validate:"omitempty,oneof=Linux Windows"`
	// InstanceTypes used to build. Defaults to t3.medium.
	InstanceTypes *[]*string
	// VolumeSize of the root volume in GiB. Defaults to 20.
	VolumeSize *float64
	// RootDeviceName defaults to /dev/sda1.
	RootDeviceName *string
	// ScheduleExpression rebuilds periodically, e.g. "cron(0 4 ? * MON *)".
	// Optional.
	ScheduleExpression *string
}

type pipeline struct {
	pipeline awsimagebuilder.CfnImagePipeline
	topic    awssns.ITopic
	bucket   awss3.IBucket
	hash     string
}

// NewPipeline creates an image pipeline with an artifacts bucket, an instance
// role and profile, a notification topic, the components, a recipe and a
// distribution to the stack's region. The pipeline ARN is stored in SSM under
// the "imagebuilder" namespace.
//
// Components and recipes are immutable in Image Builder, so their names carry
// a digest of their content and a change creates new ones.
func NewPipeline(scope constructs.Construct, id string, props PipelineProps) Pipeline {
	bwcdkutil.MustValidateProps("bwcdkimagebuilder.Pipeline", props)

	platform := "Linux"
	if props.Platform != nil {
		platform = *props.Platform
	}
	docs, err := renderComponents(props.Components)
	if err != nil {
		panic(errors.Wrap(err, "bwcdkimagebuilder.Pipeline"))
	}

	scope = constructs.NewConstruct(scope, jsii.String(id))
	con := &pipeline{}
	name := *props.Name
	resourceName := func(label string) *string {
		return jsii.String(bwcdkutil.ResourceName(scope, name+"-"+label, bwcdkutil.CasingKebab))
	}

	bucket := awss3.NewBucket(scope, jsii.String("ArtifactsBucket"), &awss3.BucketProps{
		RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
		AutoDeleteObjects: jsii.Bool(true),
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		EnforceSSL:        jsii.Bool(true),
	})
	con.bucket = bucket

	role := awsiam.NewRole(scope, jsii.String("InstanceRole"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("ec2.amazonaws.com"), nil),
		ManagedPolicies: &[]awsiam.IManagedPolicy{
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("EC2InstanceProfileForImageBuilder")),
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("AmazonSSMManagedInstanceCore")),
		},
	})
	bucket.GrantReadWrite(role, nil)

	profile := awsiam.NewCfnInstanceProfile(scope, jsii.String("InstanceProfile"), &awsiam.CfnInstanceProfileProps{
		Roles: &[]any{role.RoleName()},
	})

	con.topic = awssns.NewTopic(scope, jsii.String("Topic"), &awssns.TopicProps{
		TopicName: resourceName("notifications"),
	})

	instanceTypes := props.InstanceTypes
	if instanceTypes == nil {
		instanceTypes = jsii.Strings("t3.medium")
	}

	infra := awsimagebuilder.NewCfnInfrastructureConfiguration(scope, jsii.String("Infrastructure"),
		&awsimagebuilder.CfnInfrastructureConfigurationProps{
			Name:                resourceName("infrastructure"),
			InstanceProfileName: profile.Ref(),
			InstanceTypes:       instanceTypes,
			SnsTopicArn:         con.topic.TopicArn(),
			Logging: &awsimagebuilder.CfnInfrastructureConfiguration_LoggingProperty{
				S3Logs: &awsimagebuilder.CfnInfrastructureConfiguration_S3LogsProperty{
					S3BucketName: bucket.BucketName(),
					S3KeyPrefix:  jsii.String("build-logs"),
				},
			},
			TerminateInstanceOnFailure: jsii.Bool(true),
		})
	infra.AddDependency(profile)

	hashInput := []string{*props.ParentImage, platform}
	components := make([]*awsimagebuilder.CfnImageRecipe_ComponentConfigurationProperty, 0, len(docs))
	for i, doc := range docs {
		suffix := bwcdkutil.IDSuffix(doc)
		hashInput = append(hashInput, doc)

		label := strcase.ToKebab(props.Components[i].Name) + "-" + suffix
		component := awsimagebuilder.NewCfnComponent(scope,
			jsii.String("Component"+strcase.ToCamel(props.Components[i].Name)+suffix),
			&awsimagebuilder.CfnComponentProps{
				Name:        resourceName(label),
				Platform:    jsii.String(platform),
				Version:     jsii.String("1.0.0"),
				Description: optionalString(props.Components[i].Description),
				Data:        jsii.String(doc),
			})
		components = append(components, &awsimagebuilder.CfnImageRecipe_ComponentConfigurationProperty{
			ComponentArn: component.AttrArn(),
		})
	}

	volumeSize := props.VolumeSize
	if volumeSize == nil {
		volumeSize = jsii.Number(20)
	}
	deviceName := props.RootDeviceName
	if deviceName == nil {
		deviceName = jsii.String("/dev/sda1")
	}
	hashInput = append(hashInput, *deviceName)
	for _, instanceType := range *instanceTypes {
		hashInput = append(hashInput, *instanceType)
	}
	con.hash = bwcdkutil.IDSuffix(strings.Join(hashInput, "\n"))

	recipe := awsimagebuilder.NewCfnImageRecipe(scope, jsii.String("Recipe"+con.hash),
		&awsimagebuilder.CfnImageRecipeProps{
			Name:        resourceName("recipe-" + con.hash),
			Version:     jsii.String("1.0.0"),
			ParentImage: props.ParentImage,
			Components:  &components,
			BlockDeviceMappings: &[]*awsimagebuilder.CfnImageRecipe_InstanceBlockDeviceMappingProperty{
				{
					DeviceName: deviceName,
					Ebs: &awsimagebuilder.CfnImageRecipe_EbsInstanceBlockDeviceSpecificationProperty{
						VolumeSize:          volumeSize,
						VolumeType:          jsii.String("gp3"),
						DeleteOnTermination: jsii.Bool(true),
					},
				},
			},
		})

	distribution := awsimagebuilder.NewCfnDistributionConfiguration(scope, jsii.String("Distribution"),
		&awsimagebuilder.CfnDistributionConfigurationProps{
			Name: resourceName("distribution"),
			Distributions: &[]*awsimagebuilder.CfnDistributionConfiguration_DistributionProperty{
				{
					Region: awscdk.Aws_REGION(),
					AmiDistributionConfiguration: &awsimagebuilder.CfnDistributionConfiguration_AmiDistributionConfigurationProperty{
						AmiTags: &map[string]*string{
							"Name": jsii.String(name + "-{{imagebuilder:buildDate}}"),
						},
					},
				},
			},
		})

	var schedule *awsimagebuilder.CfnImagePipeline_ScheduleProperty
	if props.ScheduleExpression != nil {
		schedule = &awsimagebuilder.CfnImagePipeline_ScheduleProperty{
			ScheduleExpression:              props.ScheduleExpression,
			PipelineExecutionStartCondition: jsii.String("EXPRESSION_MATCH_AND_DEPENDENCY_UPDATES_AVAILABLE"),
		}
	}

	con.pipeline = awsimagebuilder.NewCfnImagePipeline(scope, jsii.String("Pipeline"),
		&awsimagebuilder.CfnImagePipelineProps{
			Name:                           resourceName("pipeline"),
			ImageRecipeArn:                 recipe.AttrArn(),
			InfrastructureConfigurationArn: infra.AttrArn(),
			DistributionConfigurationArn:   distribution.AttrArn(),
			Status:                         jsii.String("ENABLED"),
			Schedule:                       schedule,
			ImageTestsConfiguration: &awsimagebuilder.CfnImagePipeline_ImageTestsConfigurationProperty{
				ImageTestsEnabled: jsii.Bool(true),
				TimeoutMinutes:    jsii.Number(90),
			},
		})

	bwcdkparams.Store(scope, "PipelineArnParam", paramsNamespace, name+"/pipeline-arn", con.pipeline.AttrArn())

	return con
}

func renderComponents(components []ComponentDocument) ([]string, error) {
	docs := make([]string, 0, len(components))
	seen := map[string]bool{}
	for _, c := range components {
		if seen[c.Name] {
			return nil, errors.Newf("duplicate component name %q", c.Name)
		}
		seen[c.Name] = true

		doc, err := c.Render()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return jsii.String(s)
}

// LookupPipelineArn reads the ARN stored by NewPipeline in the same region.
func LookupPipelineArn(scope constructs.Construct, name string) *string {
	return bwcdkparams.LookupLocal(scope, paramsNamespace, name+"/pipeline-arn")
}

func (p *pipeline) PipelineArn() *string {
	return p.pipeline.AttrArn()
}

func (p *pipeline) Topic() awssns.ITopic {
	return p.topic
}

func (p *pipeline) Bucket() awss3.IBucket {
	return p.bucket
}

func (p *pipeline) Hash() string {
	return p.hash
}
