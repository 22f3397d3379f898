package notify

import (
	"context"
	"primor/common"
	"primor/config"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// EvolutionTransport talks to a self-hosted Evolution API gateway.
type EvolutionTransport struct {
	client   *resty.Client
	instance string
}

func NewEvolutionTransport(c config.EvolutionConfig, timeout time.Duration) *EvolutionTransport {
	return &EvolutionTransport{
		client:   newRestyClient(c.APIURL, timeout).SetHeader("apikey", c.APIKey),
		instance: c.Instance,
	}
}

func (t *EvolutionTransport) Client() *resty.Client {
	return t.client
}

func (t *EvolutionTransport) Name() string {
	return config.TransportEvolution
}

type evolutionText struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

func (t *EvolutionTransport) Send(ctx context.Context, phone, text string) bool {
	resp, err := t.client.R().SetContext(ctx).
		SetBody(&evolutionText{Number: phone, Text: text}).
		Post("/message/sendText/" + t.instance)
	if err != nil || !common.HttpStatusIsSuccess(resp.StatusCode()) {
		logrus.WithFields(logrus.Fields{"transport": t.Name(), "phone": phone}).
			WithError(common.NewErrHttpInvoke(resp, err)).Error("failed to send whatsapp message")
		return false
	}
	logrus.WithFields(logrus.Fields{"transport": t.Name(), "phone": phone}).Info("whatsapp message sent")
	return true
}

type evolutionConnectionState struct {
	State string `json:"state"`
}

func (t *EvolutionTransport) CheckConnection(ctx context.Context) ConnectionStatus {
	status := ConnectionStatus{Transport: t.Name(), Status: "error"}
	state := evolutionConnectionState{}
	resp, err := t.client.R().SetContext(ctx).Get("/instance/connectionState/" + t.instance)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	if resp.StatusCode() != 200 {
		status.Error = resp.String()
		return status
	}
	if err := decodeBody(resp, &state); err != nil {
		status.Error = err.Error()
		return status
	}
	status.Status = state.State
	if status.Status == "" {
		status.Status = "unknown"
	}
	status.Connected = state.State == "open"
	return status
}
