// Package imagebuilderstart implements the custom resource that starts an
// EC2 Image Builder pipeline execution.
package imagebuilderstart

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/imagebuilder"
	"github.com/basewarphq/bwconstructs/bwcr"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// AttrImageBuildVersionArn is the attribute holding the ARN of the started build.
const AttrImageBuildVersionArn = "ImageBuildVersionArn"

// API is the part of the Image Builder client the handler uses.
type API interface {
	StartImagePipelineExecution(
		ctx context.Context,
		params *imagebuilder.StartImagePipelineExecutionInput,
		optFns ...func(*imagebuilder.Options),
	) (*imagebuilder.StartImagePipelineExecutionOutput, error)
}

// Properties of a Custom::Ec2ImageBuilderStart resource.
type Properties struct {
	PipelineArn string `cfn:"PipelineArn"`
	// Hash only exists to force an update, and thereby a new execution.
	Hash string `cfn:"Hash"`
}

// Handler handles the lifecycle events of the resource.
type Handler struct {
	api API
}

// New creates the handler.
func New(api API) *Handler {
	return &Handler{api: api}
}

// Handle starts a pipeline execution on create and update. The build version
// ARN becomes the physical id, so every update replaces the resource.
// Delete leaves the built image in place.
func (h *Handler) Handle(ctx context.Context, ev bwcr.Event) (bwcr.Response, error) {
	switch ev.RequestType {
	case bwcr.RequestCreate, bwcr.RequestUpdate:
		return h.start(ctx, ev)
	case bwcr.RequestDelete:
		bwcr.Log(ctx).Info("nothing to delete",
			zap.String("physical_resource_id", ev.PhysicalResourceID))
		return bwcr.Response{PhysicalResourceID: ev.PhysicalResourceID}, nil
	default:
		return bwcr.Response{}, errors.Newf("unsupported request type %q", ev.RequestType)
	}
}

func (h *Handler) start(ctx context.Context, ev bwcr.Event) (bwcr.Response, error) {
	var props Properties
	if err := bwcr.DecodeProperties(ev.ResourceProperties, &props); err != nil {
		return bwcr.Response{}, err
	}
	if props.PipelineArn == "" {
		return bwcr.Response{}, errors.New("PipelineArn is required")
	}

	out, err := h.api.StartImagePipelineExecution(ctx, &imagebuilder.StartImagePipelineExecutionInput{
		ImagePipelineArn: aws.String(props.PipelineArn),
		ClientToken:      aws.String(clientToken(ev.RequestID)),
	})
	if err != nil {
		return bwcr.Response{}, errors.Wrapf(err, "failed to start pipeline %s", props.PipelineArn)
	}

	arn := aws.ToString(out.ImageBuildVersionArn)
	if arn == "" {
		return bwcr.Response{}, errors.Newf("pipeline %s returned no image build version", props.PipelineArn)
	}

	bwcr.Log(ctx).Info("started image pipeline execution",
		zap.String("pipeline_arn", props.PipelineArn),
		zap.String("hash", props.Hash),
		zap.String("image_build_version_arn", arn))

	return bwcr.Response{
		PhysicalResourceID: arn,
		Data: map[string]any{
			AttrImageBuildVersionArn: arn,
		},
	}, nil
}

// clientToken makes retried deliveries of the same event idempotent. Image
// Builder accepts at most 36 characters, the length of a request id.
func clientToken(requestID string) string {
	if len(requestID) > 36 {
		return requestID[:36]
	}
	return requestID
}
