package notify

import (
	"context"
	"encoding/json"
	"primor/config"
	"primor/infra/tracing"
	"time"

	"github.com/go-resty/resty/v2"
)

// Transport delivers a text message to a normalized phone number.
// Failures are logged and reported as false, never returned as errors.
type Transport interface {
	Name() string
	Send(ctx context.Context, phone, text string) bool
	CheckConnection(ctx context.Context) ConnectionStatus
}

// ReadMarker is implemented by transports able to acknowledge inbound messages.
type ReadMarker interface {
	MarkRead(ctx context.Context, messageID string) bool
}

type ConnectionStatus struct {
	Transport string            `json:"transport"`
	Connected bool              `json:"connected"`
	Status    string            `json:"status"`
	Error     string            `json:"error,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetTransport(tracing.NewTracingTransport()).
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
}

// decodeBody reads a JSON body whatever Content-Type the gateway answered with.
func decodeBody(resp *resty.Response, v interface{}) error {
	body := resp.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// NewTransport builds the transport selected by NOTIFY_TRANSPORT.
func NewTransport(c *config.Config) Transport {
	if c.Notify.Transport == config.TransportEvolution {
		return NewEvolutionTransport(c.Evolution, c.Notify.Timeout)
	}
	return NewCloudTransport(c.WhatsApp, c.Notify.Timeout)
}
