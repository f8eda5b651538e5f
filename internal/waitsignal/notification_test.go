package waitsignal_test

import (
	"testing"

	"github.com/basewarphq/bwconstructs/internal/waitsignal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buildArn = "arn:aws:imagebuilder:us-east-1:123456789012:image/node-ami/1.0.0/4"

func notification(t *testing.T, arn, status, reason string) waitsignal.Notification {
	t.Helper()
	msg := `{
		"arn": "` + arn + `",
		"name": "node-ami",
		"version": "1.0.0/4",
		"state": {"status": "` + status + `", "reason": "` + reason + `"},
		"outputResources": {"amis": [
			{"region": "us-east-1", "image": "ami-0abc1234def567890", "name": "node-ami 2026-10-19", "accountId": "123456789012"},
			{"region": "eu-west-1", "image": "ami-0fff1234def567890", "name": "node-ami 2026-10-19", "accountId": "123456789012"}
		]}
	}`
	n, err := waitsignal.ParseNotification(msg)
	require.NoError(t, err)
	return n
}

func TestParseNotification(t *testing.T) {
	n := notification(t, buildArn, "AVAILABLE", "")

	assert.Equal(t, buildArn, n.Arn)
	assert.Equal(t, "AVAILABLE", n.State.Status)
	require.Len(t, n.OutputResources.Amis, 2)
	assert.Equal(t, "ami-0abc1234def567890", n.OutputResources.Amis[0].Image)
}

func TestParseNotification_Invalid(t *testing.T) {
	_, err := waitsignal.ParseNotification("not json")
	require.Error(t, err)

	_, err = waitsignal.ParseNotification(`{"state": {"status": "AVAILABLE"}}`)
	require.Error(t, err)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		arn    string
		status string
		reason string
		wantOK bool
		want   waitsignal.Signal
	}{
		{
			name:   "available signals success with first ami",
			arn:    buildArn,
			status: "AVAILABLE",
			wantOK: true,
			want: waitsignal.Signal{
				Status:   waitsignal.StatusSuccess,
				Reason:   "Image build completed",
				UniqueID: buildArn,
				Data:     "ami-0abc1234def567890",
			},
		},
		{
			name:   "failed signals failure with reason",
			arn:    buildArn,
			status: "FAILED",
			reason: "Step RunTests failed",
			wantOK: true,
			want: waitsignal.Signal{
				Status:   waitsignal.StatusFailure,
				Reason:   "Step RunTests failed",
				UniqueID: buildArn,
			},
		},
		{
			name:   "cancelled without reason",
			arn:    buildArn,
			status: "CANCELLED",
			wantOK: true,
			want: waitsignal.Signal{
				Status:   waitsignal.StatusFailure,
				Reason:   "Image build CANCELLED",
				UniqueID: buildArn,
			},
		},
		{
			name:   "building is not terminal",
			arn:    buildArn,
			status: "BUILDING",
		},
		{
			name:   "other build is ignored",
			arn:    "arn:aws:imagebuilder:us-east-1:123456789012:image/node-ami/1.0.0/3",
			status: "AVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := waitsignal.Decide(notification(t, tt.arn, tt.status, tt.reason), buildArn)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, sig)
			}
		})
	}
}
