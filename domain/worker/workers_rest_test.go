package worker_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"primor/bizerror"
	"primor/domain/worker"
	"primor/session"
	"primor/testinfra"
	"strings"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func workersRouter() *gin.Engine {
	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	worker.RegisterWorkersRestAPI(router)
	return router
}

func TestCreateWorkerAPI(t *testing.T) {
	RegisterTestingT(t)
	router := workersRouter()
	defer func() { worker.CreateWorkerFunc = worker.CreateWorker }()

	t.Run("should validate parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, worker.PathWorkers, strings.NewReader(`{"name":"Ana"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message":"Key: 'WorkerCreation.Phone' Error:Field validation for 'Phone' failed on the 'required' tag",
			"data":null}`))
	})

	t.Run("should create worker", func(t *testing.T) {
		var got *worker.WorkerCreation
		worker.CreateWorkerFunc = func(c *worker.WorkerCreation, s *session.Session) (*worker.Worker, error) {
			got = c
			return &worker.Worker{ID: 12, Name: c.Name, Phone: c.Phone, Active: true}, nil
		}
		req := httptest.NewRequest(http.MethodPost, worker.PathWorkers, strings.NewReader(`{"name":"Ana","phone":"11999990000"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"id":"12"`))
		Expect(got.Name).To(Equal("Ana"))
	})
}

func TestWorkerDetailAPI(t *testing.T) {
	RegisterTestingT(t)
	router := workersRouter()
	defer func() {
		worker.DetailWorkerFunc = worker.DetailWorker
		worker.DeleteWorkerFunc = worker.DeleteWorker
	}()

	t.Run("should reject invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, worker.PathWorkers+"/abc", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'abc'","data":null}`))
	})

	t.Run("should map missing worker to 404", func(t *testing.T) {
		worker.DetailWorkerFunc = func(id types.ID, s *session.Session) (*worker.WorkerDetail, error) {
			return nil, bizerror.ErrNotFound
		}
		req := httptest.NewRequest(http.MethodGet, worker.PathWorkers+"/100", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
	})

	t.Run("should answer 409 when deleting worker with assignments", func(t *testing.T) {
		worker.DeleteWorkerFunc = func(id types.ID, s *session.Session) error {
			return bizerror.ErrWorkerHasAssignments
		}
		req := httptest.NewRequest(http.MethodDelete, worker.PathWorkers+"/100", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
	})

	t.Run("should delete worker", func(t *testing.T) {
		var reqID types.ID
		worker.DeleteWorkerFunc = func(id types.ID, s *session.Session) error {
			reqID = id
			return nil
		}
		req := httptest.NewRequest(http.MethodDelete, worker.PathWorkers+"/100", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
		Expect(body).To(BeZero())
		Expect(reqID).To(Equal(types.ID(100)))
	})

	t.Run("should handle unknown errors", func(t *testing.T) {
		worker.DeleteWorkerFunc = func(id types.ID, s *session.Session) error {
			return errors.New("some error")
		}
		req := httptest.NewRequest(http.MethodDelete, worker.PathWorkers+"/100", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"some error","data":null}`))
	})
}
