package bwcr

import (
	"github.com/aws/aws-lambda-go/cfn"
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// Event is the lifecycle event the CDK provider framework passes to an
// onEvent handler. It has the shape of a CloudFormation custom resource
// request.
type Event = cfn.Event

// Lifecycle request types.
const (
	RequestCreate = cfn.RequestCreate
	RequestUpdate = cfn.RequestUpdate
	RequestDelete = cfn.RequestDelete
)

// Response is returned from an onEvent handler. The provider framework
// forwards it to CloudFormation.
type Response struct {
	// PhysicalResourceID identifies the resource. A different value on update
	// makes CloudFormation issue a delete for the old id.
	PhysicalResourceID string `json:"PhysicalResourceId,omitempty"`
	// Data is available through Fn::GetAtt on the custom resource.
	Data map[string]any `json:"Data,omitempty"`
	// NoEcho masks Data in the console and API output.
	NoEcho bool `json:"NoEcho,omitempty"`
}

// DecodeProperties decodes resource properties into out, matching keys on the
// `cfn` struct tag. CloudFormation turns numbers and booleans into strings, so
// they are converted back.
func DecodeProperties(props map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "cfn",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if err := dec.Decode(props); err != nil {
		return errors.Wrap(err, "failed to decode resource properties")
	}
	return nil
}
