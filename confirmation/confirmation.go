package confirmation

import (
	"errors"
	"net/http"
	"primor/bizerror"
	"primor/common"
	"primor/domain/event"
	"primor/web"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var PathConfirm = "/confirmar"

const (
	refPrefix = "escala-"

	AnswerConfirmed = "confirmado"
	AnswerDeclined  = "recusado"
)

var answers = map[string]string{
	AnswerConfirmed: event.TransitionConfirm,
	AnswerDeclined:  event.TransitionDecline,
}

// RegisterConfirmationHandler mounts the public pages reached from the notification link.
func RegisterConfirmationHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathConfirm, middleWares...)
	g.GET(":ref", handleShow)
	g.POST(":ref", handleAnswer)
}

// ParseRef splits "escala-{eventId}-{workerId}".
func ParseRef(ref string) (types.ID, types.ID, bool) {
	if !strings.HasPrefix(ref, refPrefix) {
		return 0, 0, false
	}
	parts := strings.Split(strings.TrimPrefix(ref, refPrefix), "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	eventID, err := types.ParseID(parts[0])
	if err != nil {
		return 0, 0, false
	}
	workerID, err := types.ParseID(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return eventID, workerID, true
}

func handleShow(c *gin.Context) {
	ref := c.Param("ref")
	if eventID, workerID, ok := ParseRef(ref); ok {
		confirmByLink(c, eventID, workerID)
		return
	}

	a, err := event.FindByToken(c.Request.Context(), ref)
	if err != nil {
		renderLookupFailure(c, err)
		return
	}
	p, err := event.LoadParticipation(c.Request.Context(), a)
	if err != nil {
		renderLookupFailure(c, err)
		return
	}
	if a.Responded() {
		renderAlreadyResponded(c, p)
		return
	}
	renderForm(c, http.StatusOK, p, "")
}

// confirmByLink confirms right away, the link carries no decline option.
func confirmByLink(c *gin.Context, eventID, workerID types.ID) {
	a, err := event.FindByPair(c.Request.Context(), eventID, workerID)
	if err != nil {
		renderLookupFailure(c, err)
		return
	}
	p, err := event.LoadParticipation(c.Request.Context(), a)
	if err != nil {
		renderLookupFailure(c, err)
		return
	}
	if a.Responded() {
		renderAlreadyResponded(c, p)
		return
	}
	respond(c, p, event.TransitionConfirm)
}

func handleAnswer(c *gin.Context) {
	a, err := event.FindByToken(c.Request.Context(), c.Param("ref"))
	if err != nil {
		renderLookupFailure(c, err)
		return
	}
	p, err := event.LoadParticipation(c.Request.Context(), a)
	if err != nil {
		renderLookupFailure(c, err)
		return
	}
	if a.Responded() {
		renderAlreadyResponded(c, p)
		return
	}

	transition, ok := answers[c.PostForm("resposta")]
	if !ok {
		renderForm(c, http.StatusBadRequest, p, "Resposta inválida, escolha uma das opções.")
		return
	}
	respond(c, p, transition)
}

func respond(c *gin.Context, p *event.Participation, transition string) {
	a, err := event.Respond(c.Request.Context(), p.Assignment.ID, transition)
	if errors.Is(err, bizerror.ErrAlreadyResponded) {
		renderAlreadyResponded(c, p)
		return
	}
	if err != nil {
		panic(err)
	}
	p.Assignment = *a
	logrus.WithFields(logrus.Fields{"assignmentId": a.ID, "eventId": a.EventID, "workerId": a.WorkerID, "status": a.Status}).
		Info("assignment answered")

	if a.Status == event.AssignmentConfirmed {
		renderResult(c, http.StatusOK, p, "confirmed", "Presença confirmada!",
			"Obrigado, "+p.Worker.Name+". Sua presença foi confirmada.")
		return
	}
	renderResult(c, http.StatusOK, p, "declined", "Resposta registrada",
		"Obrigado por avisar, "+p.Worker.Name+". Registramos que você não poderá comparecer.")
}

func renderLookupFailure(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, bizerror.ErrNotFound) {
		c.HTML(http.StatusNotFound, web.PageNotFound, gin.H{"Message": "Este link de confirmação não é válido ou expirou."})
		return
	}
	panic(err)
}

func renderAlreadyResponded(c *gin.Context, p *event.Participation) {
	answer := "confirmada"
	if p.Assignment.Status == event.AssignmentDeclined {
		answer = "recusada"
	}
	renderResult(c, http.StatusOK, p, "already", "Resposta já registrada",
		"Você já respondeu a esta escala: presença "+answer+".")
}

func renderResult(c *gin.Context, status int, p *event.Participation, outcome, title, message string) {
	c.HTML(status, web.PageConfirmResult, gin.H{
		"Outcome":   outcome,
		"Title":     title,
		"Message":   message,
		"EventName": p.Event.Name,
		"Date":      p.Event.FormatDate(),
		"Schedule":  p.Event.FormatSchedule(),
	})
}

func renderForm(c *gin.Context, status int, p *event.Participation, errorMessage string) {
	c.HTML(status, web.PageConfirmForm, gin.H{
		"WorkerName": p.Worker.Name,
		"EventName":  p.Event.Name,
		"Date":       p.Event.FormatDate(),
		"Schedule":   p.Event.FormatSchedule(),
		"Venue":      p.Event.Venue,
		"Amount":     common.FormatMoney(event.EffectivePayout(&p.Assignment, &p.Event)),
		"Token":      p.Assignment.Token,
		"Error":      errorMessage,
	})
}
