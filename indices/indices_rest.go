package indices

import (
	"net/http"
	"primor/bizerror"
	"primor/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathIndexRequests = "/v1/index-requests"
	PathSearch        = "/v1/search"
)

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.Group(PathIndexRequests, middleWares...).POST("", handleIndexRequest)
	r.Group(PathSearch, middleWares...).GET("", handleSearch)
}

func handleIndexRequest(c *gin.Context) {
	success, err := ScheduleNewSyncRunFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"result": success})
}

func handleSearch(c *gin.Context) {
	q := SearchQuery{}
	if err := c.ShouldBindWith(&q, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	r, err := SearchFunc(q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}
