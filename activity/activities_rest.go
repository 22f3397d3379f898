package activity

import (
	"net/http"
	"primor/bizerror"
	"primor/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathActivities = "/v1/activities"

func RegisterActivitiesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathActivities, middleWares...)
	g.GET("", handleQueryActivities)
}

func handleQueryActivities(c *gin.Context) {
	q := Query{}
	if err := c.ShouldBindWith(&q, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryActivitiesFunc(q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
