package notify

import (
	"net/http"
	"primor/bizerror"
	"primor/session"

	"github.com/gin-gonic/gin"
)

var (
	PathEvents        = "/v1/events"
	PathNotifications = "/v1/notifications"
)

func RegisterNotifyRestAPI(r *gin.Engine, n Notifier, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathEvents, middleWares...)
	g.POST(":id/notify", func(c *gin.Context) {
		id := bizerror.MustParseIDParam(c, "id")
		result, err := n.NotifyEvent(id, session.ExtractSessionFromGinContext(c))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, result)
	})
	g.POST(":id/assignments/:aid/notify", func(c *gin.Context) {
		id := bizerror.MustParseIDParam(c, "id")
		aid := bizerror.MustParseIDParam(c, "aid")
		result, err := n.NotifyAssignment(id, aid, session.ExtractSessionFromGinContext(c))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, result)
	})

	status := r.Group(PathNotifications, middleWares...)
	status.GET("status", func(c *gin.Context) {
		c.JSON(http.StatusOK, n.Status(c.Request.Context()))
	})
}
