package waitsignal

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Image states of an Image Builder image.
const (
	StateAvailable = "AVAILABLE"
	StateFailed    = "FAILED"
	StateCancelled = "CANCELLED"
)

// Notification is the image document Image Builder publishes to the SNS
// topic of an infrastructure configuration when a build changes state.
type Notification struct {
	Arn     string `json:"arn"`
	Name    string `json:"name"`
	Version string `json:"version"`
	State   struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"state"`
	OutputResources struct {
		Amis []AMI `json:"amis"`
	} `json:"outputResources"`
}

// AMI is an image distributed by a build.
type AMI struct {
	Region    string `json:"region"`
	Image     string `json:"image"`
	Name      string `json:"name"`
	AccountID string `json:"accountId"`
}

// ParseNotification decodes an SNS message body.
func ParseNotification(message string) (Notification, error) {
	var n Notification
	if err := json.Unmarshal([]byte(message), &n); err != nil {
		return n, errors.Wrap(err, "failed to decode image builder notification")
	}
	if n.Arn == "" {
		return n, errors.New("notification has no image arn")
	}
	return n, nil
}

// Decide maps a notification about buildArn to a wait condition signal. It
// reports false for other builds and for states that are not terminal.
func Decide(n Notification, buildArn string) (Signal, bool) {
	if n.Arn != buildArn {
		return Signal{}, false
	}

	switch n.State.Status {
	case StateAvailable:
		sig := Signal{
			Status:   StatusSuccess,
			Reason:   "Image build completed",
			UniqueID: n.Arn,
		}
		if len(n.OutputResources.Amis) > 0 {
			sig.Data = n.OutputResources.Amis[0].Image
		}
		return sig, true
	case StateFailed, StateCancelled:
		reason := n.State.Reason
		if reason == "" {
			reason = "Image build " + n.State.Status
		}
		return Signal{
			Status:   StatusFailure,
			Reason:   reason,
			UniqueID: n.Arn,
		}, true
	default:
		return Signal{}, false
	}
}
