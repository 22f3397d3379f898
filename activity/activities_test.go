package activity_test

import (
	"context"
	"errors"
	"primor/activity"
	"primor/persistence"
	"primor/testinfra"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartTestDatabase("primor")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(&activity.Record{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	activity.ActivityPersistCreateFunc = activity.CreateActivityPersistDefault
	if testDatabase != nil {
		testinfra.StopTestDatabase(testDatabase)
	}
}

func TestCreateActivity(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should return error when failed to persist record", func(t *testing.T) {
		defer teardown(t, nil)
		testErr := errors.New("test error")
		activity.ActivityPersistCreateFunc = func(record *activity.Record, tx *gorm.DB) error {
			return testErr
		}
		r, err := activity.CreateActivity(activity.SourceWorker, 1234, "Ana", activity.CategoryCreated, nil,
			testinfra.BuildSession(333), &gorm.DB{})
		Expect(r).To(BeNil())
		Expect(err).To(Equal(testErr))
	})

	t.Run("should persist and query records", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(333)
		db := testDatabase.DS.GormDB(context.Background())
		props := activity.UpdatedProperties{}.Diff("name", "Ana", "Ana Maria").Diff("phone", "1", "1")
		Expect(props).To(Equal(activity.UpdatedProperties{{PropertyName: "name", OldValue: "Ana", NewValue: "Ana Maria"}}))

		r1, err := activity.CreateActivity(activity.SourceWorker, 1234, "Ana", activity.CategoryCreated, nil, s, db)
		Expect(err).To(BeNil())
		time.Sleep(2 * time.Millisecond)
		r2, err := activity.CreateActivity(activity.SourceWorker, 1234, "Ana Maria", activity.CategoryPropertyUpdated, props, s, db)
		Expect(err).To(BeNil())
		_, err = activity.CreateActivity(activity.SourceEvent, 99, "Casamento", activity.CategoryCreated, nil, s, db)
		Expect(err).To(BeNil())

		records, err := activity.QueryActivities(activity.Query{SourceType: activity.SourceWorker, SourceID: 1234}, s)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(2))
		Expect(records[0].ID).To(Equal(r2.ID))
		Expect(records[0].UpdatedProperties).To(Equal(props))
		Expect(records[0].CreatorName).To(Equal("user333"))
		Expect(records[1].ID).To(Equal(r1.ID))
		Expect(records[1].UpdatedProperties).To(Equal(activity.UpdatedProperties{}))

		records, err = activity.QueryActivities(activity.Query{Limit: 1}, s)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(1))
	})
}

func TestInvokeHandlers(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should invoke all registered handlers for each record", func(t *testing.T) {
		defer func() { activity.ActivityHandlers = nil }()
		activity.ActivityHandlers = []activity.Handler{
			func(r *activity.Record) *activity.HandleResult { return nil },
			func(r *activity.Record) *activity.HandleResult {
				return &activity.HandleResult{Success: true, Message: r.SourceDesc, HandlerIdentifier: "ok"}
			},
			func(r *activity.Record) *activity.HandleResult {
				return &activity.HandleResult{Success: false, Message: "failure", HandlerIdentifier: "ko"}
			},
		}

		ret := activity.InvokeHandlersFunc(&activity.Record{SourceDesc: "a"}, nil, &activity.Record{SourceDesc: "b"})
		Expect(ret).To(Equal([]activity.HandleResult{
			{Success: true, Message: "a", HandlerIdentifier: "ok"},
			{Success: false, Message: "failure", HandlerIdentifier: "ko"},
			{Success: true, Message: "b", HandlerIdentifier: "ok"},
			{Success: false, Message: "failure", HandlerIdentifier: "ko"},
		}))
	})
}
