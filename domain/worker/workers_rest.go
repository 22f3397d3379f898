package worker

import (
	"net/http"
	"primor/bizerror"
	"primor/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathWorkers = "/v1/workers"

func RegisterWorkersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWorkers, middleWares...)
	g.POST("", handleCreateWorker)
	g.GET("", handleQueryWorkers)
	g.GET(":id", handleDetailWorker)
	g.PUT(":id", handleUpdateWorker)
	g.POST(":id/toggle", handleToggleWorker)
	g.DELETE(":id", handleDeleteWorker)
}

func handleCreateWorker(c *gin.Context) {
	creation := WorkerCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	w, err := CreateWorkerFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, w)
}

func handleQueryWorkers(c *gin.Context) {
	q := WorkerQuery{}
	if err := c.ShouldBindWith(&q, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	workers, err := QueryWorkersFunc(q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, workers)
}

func handleDetailWorker(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	detail, err := DetailWorkerFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleUpdateWorker(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	updating := WorkerUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	w, err := UpdateWorkerFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, w)
}

func handleToggleWorker(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	w, err := ToggleWorkerActiveFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, w)
}

func handleDeleteWorker(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	if err := DeleteWorkerFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
