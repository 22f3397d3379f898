package notify

import (
	"context"
	"primor/common"
	"primor/config"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// CloudTransport talks to the WhatsApp Business Cloud API.
type CloudTransport struct {
	client        *resty.Client
	accessToken   string
	phoneNumberID string
}

func NewCloudTransport(c config.WhatsAppConfig, timeout time.Duration) *CloudTransport {
	return &CloudTransport{
		client:        newRestyClient(c.APIURL, timeout).SetAuthToken(c.AccessToken),
		accessToken:   c.AccessToken,
		phoneNumberID: c.PhoneNumberID,
	}
}

func (t *CloudTransport) Client() *resty.Client {
	return t.client
}

func (t *CloudTransport) Name() string {
	return config.TransportCloud
}

func (t *CloudTransport) configured() bool {
	return t.accessToken != "" && t.phoneNumberID != ""
}

type cloudTextBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type cloudMessage struct {
	MessagingProduct string        `json:"messaging_product"`
	RecipientType    string        `json:"recipient_type"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Text             cloudTextBody `json:"text"`
}

type cloudSendResult struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (t *CloudTransport) Send(ctx context.Context, phone, text string) bool {
	if !t.configured() {
		logrus.Error("whatsapp cloud transport is not configured, access token or phone number id missing")
		return false
	}

	result := cloudSendResult{}
	resp, err := t.client.R().SetContext(ctx).
		SetBody(&cloudMessage{MessagingProduct: "whatsapp", RecipientType: "individual", To: phone, Type: "text",
			Text: cloudTextBody{Body: text}}).
		Post("/" + t.phoneNumberID + "/messages")
	if err != nil || !common.HttpStatusIsSuccess(resp.StatusCode()) {
		logrus.WithFields(logrus.Fields{"transport": t.Name(), "phone": phone}).
			WithError(common.NewErrHttpInvoke(resp, err)).Error("failed to send whatsapp message")
		return false
	}
	if err := decodeBody(resp, &result); err != nil {
		logrus.WithField("transport", t.Name()).WithError(err).Warn("unexpected send response body")
	}

	messageID := ""
	if len(result.Messages) > 0 {
		messageID = result.Messages[0].ID
	}
	logrus.WithFields(logrus.Fields{"transport": t.Name(), "phone": phone, "messageId": messageID}).Info("whatsapp message sent")
	return true
}

type cloudReadReceipt struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

func (t *CloudTransport) MarkRead(ctx context.Context, messageID string) bool {
	if !t.configured() || messageID == "" {
		return false
	}
	resp, err := t.client.R().SetContext(ctx).
		SetBody(&cloudReadReceipt{MessagingProduct: "whatsapp", Status: "read", MessageID: messageID}).
		Post("/" + t.phoneNumberID + "/messages")
	if err != nil || !common.HttpStatusIsSuccess(resp.StatusCode()) {
		logrus.WithField("messageId", messageID).WithError(common.NewErrHttpInvoke(resp, err)).Warn("failed to mark message as read")
		return false
	}
	return true
}

type cloudPhoneNumber struct {
	VerifiedName       string `json:"verified_name"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	QualityRating      string `json:"quality_rating"`
}

func (t *CloudTransport) CheckConnection(ctx context.Context) ConnectionStatus {
	status := ConnectionStatus{Transport: t.Name(), Status: "error"}
	if !t.configured() {
		status.Error = "credentials not configured"
		return status
	}

	info := cloudPhoneNumber{}
	resp, err := t.client.R().SetContext(ctx).Get("/" + t.phoneNumberID)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	if resp.StatusCode() != 200 {
		status.Error = resp.String()
		return status
	}
	if err := decodeBody(resp, &info); err != nil {
		status.Error = err.Error()
		return status
	}

	status.Connected = true
	status.Status = info.VerifiedName
	if status.Status == "" {
		status.Status = "ok"
	}
	status.Details = map[string]string{"phoneNumber": info.DisplayPhoneNumber, "qualityRating": info.QualityRating}
	return status
}
