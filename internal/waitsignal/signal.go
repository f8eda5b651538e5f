package waitsignal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Wait condition signal statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// Signal is the document CloudFormation expects at a wait condition handle.
type Signal struct {
	Status   string `json:"Status"`
	Reason   string `json:"Reason"`
	UniqueID string `json:"UniqueId"`
	Data     string `json:"Data"`
}

// Signaler delivers a signal to a wait condition handle.
type Signaler interface {
	Signal(ctx context.Context, url string, sig Signal) error
}

// HTTPSignaler signals through the presigned URL of the handle.
type HTTPSignaler struct {
	client *httpclient.Client
}

// NewHTTPSignaler creates a signaler retrying transient failures with
// exponential backoff. Every attempt is traced as a client span; opts select
// the tracer provider and propagators.
func NewHTTPSignaler(opts ...otelhttp.Option) *HTTPSignaler {
	backoff := heimdall.NewExponentialBackoff(200*time.Millisecond, 5*time.Second, 2, 100*time.Millisecond)
	return &HTTPSignaler{
		client: httpclient.NewClient(
			httpclient.WithHTTPClient(&http.Client{
				Timeout:   10 * time.Second,
				Transport: otelhttp.NewTransport(http.DefaultTransport, opts...),
			}),
			httpclient.WithRetryCount(4),
			httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
		),
	}
}

// Signal PUTs sig to url. The presigned URL is signed without a content
// type, so the header is sent empty.
func (s *HTTPSignaler) Signal(ctx context.Context, url string, sig Signal) error {
	body, err := json.Marshal(sig)
	if err != nil {
		return errors.Wrap(err, "failed to encode signal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create signal request")
	}
	req.Header.Set("Content-Type", "")

	resp, err := s.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return errors.Wrap(err, "failed to signal wait condition")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Newf("wait condition handle responded %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
