package event

import (
	"errors"
	"net/http"
	"primor/bizerror"
	"primor/session"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathEvents = "/v1/events"

func RegisterEventsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathEvents, middleWares...)
	g.POST("", handleCreateEvent)
	g.GET("", handleQueryEvents)
	g.GET(":id", handleDetailEvent)
	g.PUT(":id", handleUpdateEvent)
	g.DELETE(":id", handleDeleteEvent)
	g.POST(":id/complete", handleCompleteEvent)
	g.GET(":id/conflicts", handleListConflicts)

	g.POST(":id/assignments", handleAddWorkers)
	g.PUT(":id/assignments/:aid", handleUpdateAssignment)
	g.DELETE(":id/workers/:workerId", handleRemoveWorker)
}

func handleCreateEvent(c *gin.Context) {
	creation := EventCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	e, err := CreateEventFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, e)
}

func handleQueryEvents(c *gin.Context) {
	q := EventQuery{}
	if err := c.ShouldBindWith(&q, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	events, err := QueryEventsFunc(q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, events)
}

func handleDetailEvent(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	detail, err := DetailEventFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleUpdateEvent(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	updating := EventUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	e, err := UpdateEventFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, e)
}

func handleDeleteEvent(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	if err := DeleteEventFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleCompleteEvent(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	e, err := CompleteEventFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, e)
}

func handleListConflicts(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	workerIDs, err := ParseIDList(c.Query("workerIds"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	conflicts, err := ListConflictsFunc(id, workerIDs, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, conflicts)
}

// ParseIDList parses a comma separated id list, blank items are ignored.
func ParseIDList(raw string) ([]types.ID, error) {
	ids := []types.ID{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, err := types.ParseID(item)
		if err != nil {
			return nil, errors.New("invalid id '" + item + "'")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func handleAddWorkers(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	req := AddWorkersRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := AddWorkersFunc(id, req.WorkerIDs, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleUpdateAssignment(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	aid := bizerror.MustParseIDParam(c, "aid")
	updating := AssignmentUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	a, err := UpdateAssignmentFunc(id, aid, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, a)
}

func handleRemoveWorker(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	workerID := bizerror.MustParseIDParam(c, "workerId")
	if err := RemoveWorkerFunc(id, workerID, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
