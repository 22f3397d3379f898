package event_test

import (
	"context"
	"primor/activity"
	"primor/common"
	"primor/domain/event"
	"primor/domain/worker"
	"primor/persistence"
	"primor/session"
	"primor/testinfra"
	"testing"
	"time"

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

func clock(hour, minute int) *common.ClockTime {
	c := common.NewClockTime(hour, minute)
	return &c
}

func date(year int, month time.Month, day int) *common.Date {
	d := common.NewDate(year, month, day)
	return &d
}

func createWorker(name string, s *session.Session) *worker.Worker {
	w, err := worker.CreateWorker(&worker.WorkerCreation{Name: name, Phone: "11999990000"}, s)
	Expect(err).To(BeNil())
	return w
}

func createEvent(name string, day *common.Date, start, end *common.ClockTime, s *session.Session) *event.Event {
	created, err := event.CreateEvent(&event.EventCreation{
		Name: name, Category: "Casamento", Date: day, StartTime: start, EndTime: end, Venue: "Salão Primor",
		DefaultPayout: decimal.RequireFromString("150"), DriverSupplement: decimal.RequireFromString("30"),
	}, s)
	Expect(err).To(BeNil())
	return &created.Event
}
