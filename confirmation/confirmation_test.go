package confirmation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"primor/activity"
	"primor/bizerror"
	"primor/common"
	"primor/confirmation"
	"primor/domain/event"
	"primor/domain/worker"
	"primor/persistence"
	"primor/session"
	"primor/testinfra"
	"primor/web"
	"strings"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartTestDatabase("primor")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(
		&worker.Worker{}, &event.Event{}, &event.Assignment{}, &activity.Record{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopTestDatabase(testDatabase)
	}
}

func confirmationRouter() *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(web.Templates())
	router.Use(bizerror.ErrorHandling())
	confirmation.RegisterConfirmationHandler(router)
	return router
}

func prepareAssignment(s *session.Session, workerName string) *event.Assignment {
	day := common.NewDate(2024, 5, 1)
	start := common.NewClockTime(18, 0)
	end := common.NewClockTime(23, 0)
	created, err := event.CreateEvent(&event.EventCreation{
		Name: "Casamento Silva", Category: "Casamento", Date: &day, StartTime: &start, EndTime: &end,
		Venue: "Salão Primor", DefaultPayout: decimal.RequireFromString("150"),
	}, s)
	Expect(err).To(BeNil())
	w, err := worker.CreateWorker(&worker.WorkerCreation{Name: workerName, Phone: "11999990000"}, s)
	Expect(err).To(BeNil())
	_, err = event.AddWorkers(created.Event.ID, []types.ID{w.ID}, s)
	Expect(err).To(BeNil())
	a, err := event.FindByPair(context.Background(), created.Event.ID, w.ID)
	Expect(err).To(BeNil())
	return a
}

func reload(id types.ID) event.Assignment {
	a := event.Assignment{}
	Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).Where("id = ?", id).First(&a).Error).To(BeNil())
	return a
}

func linkOf(a *event.Assignment) string {
	return confirmation.PathConfirm + "/escala-" + a.EventID.String() + "-" + a.WorkerID.String()
}

func postAnswer(router *gin.Engine, token, answer string) (int, string) {
	form := url.Values{"resposta": {answer}}
	req := httptest.NewRequest(http.MethodPost, confirmation.PathConfirm+"/"+token, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, body, _ := testinfra.ExecuteRequest(req, router)
	return status, body
}

func TestParseRef(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should parse event and worker ids", func(t *testing.T) {
		eventID, workerID, ok := confirmation.ParseRef("escala-12-34")
		Expect(ok).To(BeTrue())
		Expect(eventID).To(Equal(types.ID(12)))
		Expect(workerID).To(Equal(types.ID(34)))
	})

	t.Run("should reject malformed references", func(t *testing.T) {
		for _, ref := range []string{"escala-12", "escala-a-1", "escala-1-2-3", "12-34", "abcdef"} {
			_, _, ok := confirmation.ParseRef(ref)
			Expect(ok).To(BeFalse(), ref)
		}
	})
}

func TestConfirmationLink(t *testing.T) {
	RegisterTestingT(t)

	var testDatabase *testinfra.TestDatabase
	t.Run("setup", func(t *testing.T) { setup(t, &testDatabase) })
	defer t.Run("teardown", func(t *testing.T) { teardown(t, testDatabase) })

	s := testinfra.BuildSession(1)
	router := confirmationRouter()

	t.Run("should confirm once and keep the first timestamp", func(t *testing.T) {
		a := prepareAssignment(s, "Ana")

		req := httptest.NewRequest(http.MethodGet, linkOf(a), nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("Presença confirmada!"))
		Expect(body).To(ContainSubstring("Casamento Silva"))

		confirmed := reload(a.ID)
		Expect(confirmed.Status).To(Equal(event.AssignmentConfirmed))
		Expect(confirmed.RespondedAt).ToNot(BeNil())

		time.Sleep(10 * time.Millisecond)
		req = httptest.NewRequest(http.MethodGet, linkOf(a), nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("Resposta já registrada"))

		again := reload(a.ID)
		Expect(again.Status).To(Equal(event.AssignmentConfirmed))
		Expect(again.RespondedAt.Equal(*confirmed.RespondedAt)).To(BeTrue())
	})

	t.Run("should render not found for unknown pairs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, confirmation.PathConfirm+"/escala-404-405", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(ContainSubstring("Link inválido"))
	})

	t.Run("should render not found when the worker is gone", func(t *testing.T) {
		a := prepareAssignment(s, "Bruno")
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Delete(&worker.Worker{}, "id = ?", a.WorkerID).Error).To(BeNil())

		req := httptest.NewRequest(http.MethodGet, linkOf(a), nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
	})
}

func TestConfirmationToken(t *testing.T) {
	RegisterTestingT(t)

	var testDatabase *testinfra.TestDatabase
	t.Run("setup", func(t *testing.T) { setup(t, &testDatabase) })
	defer t.Run("teardown", func(t *testing.T) { teardown(t, testDatabase) })

	s := testinfra.BuildSession(1)
	router := confirmationRouter()

	t.Run("should render the form for pending assignments", func(t *testing.T) {
		a := prepareAssignment(s, "Carla")
		req := httptest.NewRequest(http.MethodGet, confirmation.PathConfirm+"/"+a.Token, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("Olá Carla!"))
		Expect(body).To(ContainSubstring("R$ 150.00"))
		Expect(body).To(ContainSubstring("18:00 - 23:00"))
		Expect(body).To(ContainSubstring(`action="/confirmar/` + a.Token + `"`))
	})

	t.Run("should render not found for unknown tokens", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, confirmation.PathConfirm+"/unknown-token", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))

		status, _ = postAnswer(router, "unknown-token", confirmation.AnswerConfirmed)
		Expect(status).To(Equal(http.StatusNotFound))
	})

	t.Run("should reject invalid answers", func(t *testing.T) {
		a := prepareAssignment(s, "Daniel")
		status, body := postAnswer(router, a.Token, "talvez")
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring("Resposta inválida"))
		Expect(reload(a.ID).Status).To(Equal(event.AssignmentPending))
	})

	t.Run("should decline and refuse further answers", func(t *testing.T) {
		a := prepareAssignment(s, "Eva")
		status, body := postAnswer(router, a.Token, confirmation.AnswerDeclined)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("Resposta registrada"))

		declined := reload(a.ID)
		Expect(declined.Status).To(Equal(event.AssignmentDeclined))
		Expect(declined.RespondedAt).ToNot(BeNil())

		status, body = postAnswer(router, a.Token, confirmation.AnswerConfirmed)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("presença recusada"))
		Expect(reload(a.ID).Status).To(Equal(event.AssignmentDeclined))

		req := httptest.NewRequest(http.MethodGet, confirmation.PathConfirm+"/"+a.Token, nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("Resposta já registrada"))
	})

	t.Run("should confirm through the form", func(t *testing.T) {
		a := prepareAssignment(s, "Fábio")
		status, body := postAnswer(router, a.Token, confirmation.AnswerConfirmed)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("Presença confirmada!"))
		Expect(reload(a.ID).Status).To(Equal(event.AssignmentConfirmed))
	})
}
