package indices_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"primor/bizerror"
	"primor/client/es"
	"primor/indices"
	"primor/session"
	"primor/testinfra"
	"testing"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestHandleIndexRequest(t *testing.T) {
	RegisterTestingT(t)

	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	indices.RegisterIndicesRestAPI(router)
	defer func() { indices.ScheduleNewSyncRunFunc = indices.ScheduleNewSyncRun }()

	t.Run("should handle errors", func(t *testing.T) {
		indices.ScheduleNewSyncRunFunc = func(s *session.Session) (bool, error) {
			return false, errors.New("error on schedule new sync run")
		}
		req := httptest.NewRequest(http.MethodPost, indices.PathIndexRequests, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"error on schedule new sync run","data":null}`))
	})

	t.Run("should report whether the run happened", func(t *testing.T) {
		indices.ScheduleNewSyncRunFunc = func(s *session.Session) (bool, error) { return true, nil }
		req := httptest.NewRequest(http.MethodPost, indices.PathIndexRequests, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"result":true}`))

		indices.ScheduleNewSyncRunFunc = func(s *session.Session) (bool, error) { return false, nil }
		req = httptest.NewRequest(http.MethodPost, indices.PathIndexRequests, nil)
		_, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(body).To(MatchJSON(`{"result":false}`))
	})
}

func TestSearch(t *testing.T) {
	RegisterTestingT(t)

	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	router.Use(func(c *gin.Context) {
		session.InjectSessionIntoGinContext(c, testinfra.BuildSession(1))
	})
	indices.RegisterIndicesRestAPI(router)

	t.Run("should respond 503 when search is disabled", func(t *testing.T) {
		es.ActiveESClient = nil
		req := httptest.NewRequest(http.MethodGet, indices.PathSearch+"?index=events&q=casa", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusServiceUnavailable))
		Expect(body).To(MatchJSON(`{"code":"common.feature_disabled","message":"feature disabled","data":null}`))
	})

	t.Run("should reject unknown indexes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, indices.PathSearch+"?index=users", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should build a multi match query and return sources", func(t *testing.T) {
		es.ActiveESClient = &elasticsearch.Client{}
		defer func() {
			es.ActiveESClient = nil
			es.SearchFunc = es.Search
		}()
		var captured interface{}
		es.SearchFunc = func(ctx context.Context, index string, query interface{}) (*es.SearchResult, error) {
			Expect(index).To(Equal("workers"))
			captured = query
			return &es.SearchResult{Hits: es.SearchHits{
				Total: es.SearchHitsTotal{Value: 1},
				Hits:  []es.SearchHit{{ID: "7", Source: es.Source(`{"id":"7","name":"Ana"}`)}},
			}}, nil
		}

		req := httptest.NewRequest(http.MethodGet, indices.PathSearch+"?index=workers&q=ana", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"total":1,"hits":[{"id":"7","name":"Ana"}]}`))
		Expect(captured).To(Equal(es.H{
			"size":  20,
			"query": es.H{"multi_match": es.H{"query": "ana", "fields": []string{"name", "email", "phone"}, "fuzziness": "AUTO"}},
		}))
	})

	t.Run("should forbid non admin sessions", func(t *testing.T) {
		_, err := indices.Search(indices.SearchQuery{Index: "events"}, testinfra.BuildSession(1, "guest"))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}
