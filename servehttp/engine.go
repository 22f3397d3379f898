package servehttp

import (
	"net/http"
	"primor/account"
	"primor/activity"
	"primor/avatar"
	"primor/bizerror"
	"primor/common"
	"primor/confirmation"
	"primor/dashboard"
	"primor/domain/event"
	"primor/domain/worker"
	"primor/indices"
	"primor/infra/ratelimit"
	"primor/infra/tracing"
	"primor/notify"
	"primor/report"
	"primor/session"
	"primor/sessions"
	"primor/web"
	"primor/webhook"
	"time"

	"github.com/gin-gonic/gin"
)

const confirmLimiterIdle = 10 * time.Minute

type Options struct {
	Notifier notify.Notifier
	Receiver *webhook.Receiver

	// ConfirmRateLimit is per client ip and second, zero disables limiting.
	ConfirmRateLimit float64
	ConfirmRateBurst int
}

// NewEngine wires every route. Staff routes require a session, the confirmation
// pages, the webhook and the login endpoints are public.
func NewEngine(o Options) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.SetHTMLTemplate(web.Templates())

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.ServiceName)
	})

	sessions.RegisterSessionsHandler(engine)
	confirmation.RegisterConfirmationHandler(engine,
		ratelimit.PerClientIP(ratelimit.NewLimiter(o.ConfirmRateLimit, o.ConfirmRateBurst, confirmLimiterIdle)))
	if o.Receiver != nil {
		webhook.RegisterWebhookHandler(engine, o.Receiver)
	}

	auth := session.SimpleAuthFilter()
	sessions.RegisterSessionHandler(engine, auth)
	account.RegisterUsersRestAPI(engine, auth)
	worker.RegisterWorkersRestAPI(engine, auth)
	avatar.RegisterAvatarRestAPI(engine, auth)
	event.RegisterEventsRestAPI(engine, auth)
	if o.Notifier != nil {
		notify.RegisterNotifyRestAPI(engine, o.Notifier, auth)
	}
	activity.RegisterActivitiesRestAPI(engine, auth)
	dashboard.RegisterDashboardRestAPI(engine, auth)
	report.RegisterReportsRestAPI(engine, auth)
	indices.RegisterIndicesRestAPI(engine, auth)
	return engine
}

// RegisterActivityHandlers subscribes the search indexer and the avatar cleaner to committed changes.
func RegisterActivityHandlers(searchEnabled bool) {
	activity.ActivityHandlers = append(activity.ActivityHandlers, avatar.AvatarCleanupHandle)
	if searchEnabled {
		activity.ActivityHandlers = append(activity.ActivityHandlers, indices.IndexActivityHandle)
	}
}
