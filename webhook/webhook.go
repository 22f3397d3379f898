package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"primor/activity"
	"primor/bizerror"
	"primor/notify"
	"primor/persistence"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var PathWebhook = "/webhook/whatsapp"

const signatureHeader = "X-Hub-Signature-256"

// Receiver handles the WhatsApp Business webhook.
type Receiver struct {
	VerifyToken string
	AppSecret   string
	// Marker acknowledges inbound messages, nil when the transport cannot.
	Marker notify.ReadMarker
}

func RegisterWebhookHandler(r *gin.Engine, rc *Receiver, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWebhook, middleWares...)
	g.GET("", rc.handleVerify)
	g.POST("", rc.handleReceive)
}

func (rc *Receiver) handleVerify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	if mode == "subscribe" && rc.VerifyToken != "" &&
		hmac.Equal([]byte(token), []byte(rc.VerifyToken)) {
		logrus.Info("whatsapp webhook verified")
		c.String(http.StatusOK, c.Query("hub.challenge"))
		return
	}
	logrus.WithField("mode", mode).Warn("whatsapp webhook verification failed")
	c.String(http.StatusForbidden, "Forbidden")
}

// ValidSignature checks header "sha256=<hex hmac of body>" against secret.
func ValidSignature(body []byte, secret, header string) bool {
	if header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}

func (rc *Receiver) handleReceive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if rc.AppSecret != "" && !ValidSignature(body, rc.AppSecret, c.GetHeader(signatureHeader)) {
		logrus.Warn("whatsapp webhook signature rejected")
		panic(bizerror.ErrInvalidSignature)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		panic(&bizerror.ErrBadParam{Cause: errors.New("empty or invalid payload")})
	}
	env := envelope{}
	if err := json.Unmarshal(body, &env); err != nil || env.Object != objectBusinessAccount {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := rc.process(c.Request.Context(), &env); err != nil {
		logrus.WithFields(logrus.Fields{"object": env.Object, "entries": len(env.Entry)}).
			WithError(err).Error("failed to process whatsapp webhook")
		recordFailure(c.Request.Context(), err)
		// acknowledged anyway so the platform does not retry
		c.JSON(http.StatusOK, gin.H{"status": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (rc *Receiver) process(ctx context.Context, env *envelope) (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			err = fmt.Errorf("panic: %v", ret)
		}
	}()
	for i, raw := range env.Entry {
		e := entry{}
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		for _, ch := range e.Changes {
			if ch.Field == "messages" {
				rc.processMessages(ctx, &ch.Value)
			}
		}
	}
	return nil
}

func (rc *Receiver) processMessages(ctx context.Context, v *changeValue) {
	phoneNumberID := v.Metadata.PhoneNumberID
	for _, st := range v.Statuses {
		logrus.WithFields(logrus.Fields{"recipient": st.RecipientID, "status": st.Status,
			"phoneNumberId": phoneNumberID, "timestamp": st.Timestamp}).Info("message status")
		for _, se := range st.Errors {
			logrus.WithFields(logrus.Fields{"recipient": st.RecipientID, "code": se.Code,
				"title": se.Title, "detail": se.Message}).Error("message delivery failed")
		}
	}
	for _, m := range v.Messages {
		logrus.WithFields(logrus.Fields{"from": m.From, "type": m.Type, "messageId": m.ID}).Info("message received")
		if m.ID != "" && rc.Marker != nil {
			rc.Marker.MarkRead(ctx, m.ID)
		}
	}
}

func recordFailure(ctx context.Context, cause error) {
	if persistence.ActiveDataSourceManager == nil {
		return
	}
	record, err := activity.CreateActivity(activity.SourceWebhook, 0, cause.Error(), activity.CategoryFailed, nil, nil,
		persistence.ActiveDataSourceManager.GormDB(ctx))
	if err != nil {
		logrus.WithError(err).Error("failed to record webhook failure")
		return
	}
	activity.InvokeHandlersFunc(record)
}
