package ojp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/ojpilot/ojpilot/pkg/stats"
)

// Transport delivers a rendered OJP document and returns the raw reply.
// A non-nil error means no usable HTTP response was obtained at all;
// non-2xx statuses come back as a normal (status, body) pair.
type Transport interface {
	Send(ctx context.Context, payload []byte) (int, []byte, error)
}

// Statuses worth retrying. Anything else is handed straight back.
var transientStatuses = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// HTTPTransport posts OJP documents with bearer authentication and a small
// exponential backoff on transient upstream statuses.
type HTTPTransport struct {
	Endpoint    string
	APIKey      string
	MaxAttempts int
	Collector   *stats.Collector

	httpClient *http.Client
}

func NewHTTPTransport(endpoint string, apiKey string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		Endpoint:    endpoint,
		APIKey:      apiKey,
		MaxAttempts: 3,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (t *HTTPTransport) Send(ctx context.Context, payload []byte) (int, []byte, error) {
	maxAttempts := t.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	var status int
	var body []byte

	operation := func() error {
		var err error
		status, body, err = t.post(ctx, payload)
		if err != nil {
			// Network failures are not retried here; the caller owns
			// the timeout budget.
			return backoff.Permanent(err)
		}

		if transientStatuses[status] {
			t.Collector.CountRetry(strconv.Itoa(status))
			log.Debug().
				Int("status", status).
				Msg("OJP endpoint returned a transient status")

			return fmt.Errorf("transient status %d", status)
		}

		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(maxAttempts-1)), ctx))
	if err != nil {
		// Retries exhausted on a transient status still produced a real
		// HTTP response, which the caller wants to see.
		if status != 0 && transientStatuses[status] {
			return status, body, nil
		}

		return 0, nil, err
	}

	return status, body, nil
}

func (t *HTTPTransport) post(ctx context.Context, payload []byte) (int, []byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}

	request.Header.Set("Content-Type", "application/xml; charset=utf-8")
	request.Header.Set("Accept", "application/xml")
	if t.APIKey != "" {
		request.Header.Set("Authorization", "Bearer "+t.APIKey)
	}

	response, err := t.client().Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, err
	}

	return response.StatusCode, body, nil
}

func (t *HTTPTransport) client() *http.Client {
	if t.httpClient == nil {
		return http.DefaultClient
	}

	return t.httpClient
}
