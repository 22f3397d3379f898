package dashboard

import (
	"net/http"
	"primor/bizerror"
	"primor/common"
	"primor/domain/event"
	"primor/persistence"
	"primor/session"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

var PathDashboard = "/v1/dashboard"

const (
	upcomingWindowDays = 30
	upcomingLimit      = 5
)

var LoadDashboardFunc = LoadDashboard

type Dashboard struct {
	UpcomingEvents     []event.EventView `json:"upcomingEvents"`
	TodayEvents        []event.EventView `json:"todayEvents"`
	PendingAssignments int               `json:"pendingAssignments"`
	MonthEvents        int               `json:"monthEvents"`
	ConfirmedUpcoming  int               `json:"confirmedUpcoming"`
}

func LoadDashboard(s *session.Session) (*Dashboard, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	today := common.Today()
	d := Dashboard{}

	var err error
	d.UpcomingEvents, err = viewEvents(db, db.Where("date >= ? AND date <= ?", today, today.AddDays(upcomingWindowDays)).
		Order("date ASC").Order("start_time ASC").Limit(upcomingLimit))
	if err != nil {
		return nil, err
	}
	d.TodayEvents, err = viewEvents(db, db.Where("date = ?", today).Order("start_time ASC"))
	if err != nil {
		return nil, err
	}
	if d.PendingAssignments, err = countUpcomingAssignments(db, today, event.AssignmentPending); err != nil {
		return nil, err
	}
	if d.ConfirmedUpcoming, err = countUpcomingAssignments(db, today, event.AssignmentConfirmed); err != nil {
		return nil, err
	}
	if err := db.Model(&event.Event{}).Where("date >= ?", today.FirstDayOfMonth()).Count(&d.MonthEvents).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func viewEvents(db, query *gorm.DB) ([]event.EventView, error) {
	events := []event.Event{}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return event.ViewEvents(db, events)
}

func countUpcomingAssignments(db *gorm.DB, today common.Date, status string) (int, error) {
	count := 0
	err := db.Table("assignments").
		Joins("JOIN events ON events.id = assignments.event_id").
		Where("assignments.status = ? AND events.date >= ?", status, today).
		Count(&count).Error
	return count, err
}

func RegisterDashboardRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathDashboard, middleWares...)
	g.GET("", func(c *gin.Context) {
		d, err := LoadDashboardFunc(session.ExtractSessionFromGinContext(c))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, d)
	})
}
