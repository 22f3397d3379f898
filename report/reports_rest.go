package report

import (
	"fmt"
	"net/http"
	"primor/bizerror"
	"primor/common"
	"primor/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathReports = "/v1/reports"

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type GeneralQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

func (q *GeneralQuery) Period() (Period, error) {
	p := Period{}
	if q.From != "" {
		from, err := common.ParseDate(q.From)
		if err != nil {
			return p, err
		}
		p.From = &from
	}
	if q.To != "" {
		to, err := common.ParseDate(q.To)
		if err != nil {
			return p, err
		}
		p.To = &to
	}
	return p, nil
}

func RegisterReportsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathReports, middleWares...)
	g.GET("", handleRecentEvents)
	g.GET("events/:id/pdf", handleEventPDF)
	g.GET("workers/pdf", handleWorkersPDF)
	g.GET("month/pdf", handleMonthPDF)
	g.GET("general/pdf", handleGeneralPDF)
	g.GET("general/xlsx", handleGeneralXLSX)
}

func handleRecentEvents(c *gin.Context) {
	events, err := RecentEventsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, events)
}

func handleEventPDF(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	detail, err := LoadEventReportFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	sendFile(c, contentTypePDF, "inline", fmt.Sprintf("evento_%s_%s.pdf", detail.ID, detail.Date), func() ([]byte, error) {
		return RenderEventPDF(detail)
	})
}

func handleWorkersPDF(c *gin.Context) {
	workers, err := LoadWorkersReportFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	sendFile(c, contentTypePDF, "inline", "garcons.pdf", func() ([]byte, error) {
		return RenderWorkersPDF(workers)
	})
}

func handleMonthPDF(c *gin.Context) {
	report, err := LoadMonthReportFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	name := fmt.Sprintf("eventos_%d_%d.pdf", int(report.Month.Month()), report.Month.Year())
	sendFile(c, contentTypePDF, "inline", name, func() ([]byte, error) {
		return RenderMonthPDF(report)
	})
}

func loadGeneral(c *gin.Context) *GeneralReport {
	q := GeneralQuery{}
	if err := c.ShouldBindWith(&q, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	period, err := q.Period()
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	report, err := LoadGeneralReportFunc(period, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	return report
}

func handleGeneralPDF(c *gin.Context) {
	report := loadGeneral(c)
	sendFile(c, contentTypePDF, "inline", "relatorio_geral.pdf", func() ([]byte, error) {
		return RenderGeneralPDF(report)
	})
}

func handleGeneralXLSX(c *gin.Context) {
	report := loadGeneral(c)
	sendFile(c, contentTypeXLSX, "attachment", "relatorio_geral.xlsx", func() ([]byte, error) {
		return RenderGeneralXLSX(report)
	})
}

func sendFile(c *gin.Context, contentType, disposition, fileName string, render func() ([]byte, error)) {
	data, err := render()
	if err != nil {
		panic(err)
	}
	c.Header("Content-Disposition", disposition+"; filename="+fileName)
	c.Data(http.StatusOK, contentType, data)
}
