package report

import (
	"primor/bizerror"
	"primor/common"
	"primor/domain/event"
	"primor/domain/worker"
	"primor/persistence"
	"primor/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

const recentEventsLimit = 20

var (
	LoadEventReportFunc   = LoadEventReport
	LoadWorkersReportFunc = LoadWorkersReport
	LoadMonthReportFunc   = LoadMonthReport
	LoadGeneralReportFunc = LoadGeneralReport
	RecentEventsFunc      = RecentEvents
)

// Period bounds are inclusive, a nil bound is open.
type Period struct {
	From *common.Date `json:"from"`
	To   *common.Date `json:"to"`
}

// EventsReport is a list of events with aggregated totals.
type EventsReport struct {
	Events       []event.EventView `json:"events"`
	TotalWorkers int               `json:"totalWorkers"`
	TotalValue   decimal.Decimal   `json:"totalValue"`
}

type MonthReport struct {
	EventsReport
	Month common.Date `json:"month"`
}

type GeneralReport struct {
	EventsReport
	Period Period `json:"period"`
}

func LoadEventReport(id types.ID, s *session.Session) (*event.EventDetail, error) {
	return event.DetailEventFunc(id, s)
}

// LoadWorkersReport lists active workers by name with their event counts.
func LoadWorkersReport(s *session.Session) ([]worker.WorkerDetail, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	return worker.QueryWorkersFunc(worker.WorkerQuery{Filter: worker.FilterActive}, s)
}

// LoadMonthReport covers the current calendar month in date order.
func LoadMonthReport(s *session.Session) (*MonthReport, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	first := common.Today().FirstDayOfMonth()
	last := common.DateOf(first.AddDate(0, 1, -1))

	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	events, err := loadEvents(db, db.Where("date >= ? AND date <= ?", first, last).Order("date ASC").Order("start_time ASC"))
	if err != nil {
		return nil, err
	}
	return &MonthReport{EventsReport: summarize(events), Month: first}, nil
}

// LoadGeneralReport covers the period, latest events first.
func LoadGeneralReport(p Period, s *session.Session) (*GeneralReport, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	query := db
	if p.From != nil {
		query = query.Where("date >= ?", *p.From)
	}
	if p.To != nil {
		query = query.Where("date <= ?", *p.To)
	}
	events, err := loadEvents(db, query.Order("date DESC").Order("start_time ASC"))
	if err != nil {
		return nil, err
	}
	return &GeneralReport{EventsReport: summarize(events), Period: p}, nil
}

func RecentEvents(s *session.Session) ([]event.EventView, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	return loadEvents(db, db.Order("date DESC").Order("start_time ASC").Limit(recentEventsLimit))
}

func loadEvents(db, query *gorm.DB) ([]event.EventView, error) {
	events := []event.Event{}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return event.ViewEvents(db, events)
}

func summarize(views []event.EventView) EventsReport {
	r := EventsReport{Events: views, TotalValue: decimal.Zero}
	for _, v := range views {
		r.TotalWorkers += v.Summary.Total
		r.TotalValue = r.TotalValue.Add(v.Summary.TotalValue)
	}
	return r
}
