// Package waitsignal completes the wait condition of an image build. It
// subscribes to the Image Builder SNS topic and signals the wait condition
// handle once the awaited build reaches a terminal state.
package waitsignal

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/basewarphq/bwconstructs/bwcr"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Env is the environment of the signal function.
type Env struct {
	bwcr.BaseEnvironment
	WaitHandleURL        string `env:"WAIT_HANDLE_URL,required,notEmpty"`
	ImageBuildVersionArn string `env:"IMAGE_BUILD_VERSION_ARN,required,notEmpty"`
}

// Handler handles SNS deliveries.
type Handler struct {
	env      Env
	signaler Signaler
}

// New creates the handler.
func New(env Env, signaler Signaler) *Handler {
	return &Handler{env: env, signaler: signaler}
}

// Handle signals the wait condition for every terminal notification about
// the awaited build. Messages that fail to decode are logged and skipped
// since SNS would redeliver them unchanged.
func (h *Handler) Handle(ctx context.Context, ev events.SNSEvent) (struct{}, error) {
	log := bwcr.Log(ctx)

	for _, rec := range ev.Records {
		n, err := ParseNotification(rec.SNS.Message)
		if err != nil {
			log.Warn("skipping message", zap.String("message_id", rec.SNS.MessageID), zap.Error(err))
			continue
		}

		sig, ok := Decide(n, h.env.ImageBuildVersionArn)
		if !ok {
			log.Info("ignoring notification",
				zap.String("image_arn", n.Arn),
				zap.String("status", n.State.Status))
			continue
		}

		if err := h.signaler.Signal(ctx, h.env.WaitHandleURL, sig); err != nil {
			return struct{}{}, errors.Wrapf(err, "failed to signal %s for %s", sig.Status, n.Arn)
		}

		log.Info("signaled wait condition",
			zap.String("image_arn", n.Arn),
			zap.String("status", sig.Status),
			zap.String("data", sig.Data))
	}

	return struct{}{}, nil
}
