// stkpush-relay/internal/gateway/client.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	perr "github.com/example/stkpush-relay/pkg/errors"
	m "github.com/example/stkpush-relay/pkg/metrics"
)

// Order is the push-payment request body expected by the gateway.
type Order struct {
	Amount            float64           `json:"amount"`
	PhoneNumber       string            `json:"phone_number"`
	ChannelID         int               `json:"channel_id"`
	Provider          string            `json:"provider"`
	ExternalReference string            `json:"external_reference"`
	CallbackURL       string            `json:"callback_url,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type Client struct {
	URL        string
	Username   string
	Password   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(url, username, password string, timeout time.Duration) *Client {
	return &Client{
		URL:        url,
		Username:   username,
		Password:   password,
		Timeout:    timeout,
		HTTPClient: &http.Client{},
	}
}

// CreatePayment posts o to the gateway. Any HTTP response, including non-2xx,
// comes back as a Result; only timeouts and transport failures are errors.
func (c *Client) CreatePayment(ctx context.Context, o Order) (*Result, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(o)
	if err != nil {
		return nil, perr.Wrap(perr.CodeGatewayBadRequest, "encode payment order", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, perr.Wrap(perr.CodeGatewayBadRequest, "build gateway request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.Username, c.Password)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, c.fail(ctx, start, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, start, err)
	}

	res := &Result{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Raw:        string(raw),
		Elapsed:    time.Since(start),
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		res.Body = parsed
	}

	outcome := "rejected"
	if res.Accepted() {
		outcome = "accepted"
	}
	m.IncGatewayCall(outcome)
	m.ObserveGatewayDuration(outcome, res.Elapsed.Seconds())
	return res, nil
}

func (c *Client) fail(ctx context.Context, start time.Time, err error) error {
	elapsed := time.Since(start).Seconds()
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		m.IncGatewayCall("timeout")
		m.ObserveGatewayDuration("timeout", elapsed)
		return perr.Wrap(perr.CodeGatewayTimeout, fmt.Sprintf("no response within %s", c.Timeout), err)
	}
	m.IncGatewayCall("unreachable")
	m.ObserveGatewayDuration("unreachable", elapsed)
	return perr.Wrap(perr.CodeGatewayUnreachable, "gateway request failed", err)
}
