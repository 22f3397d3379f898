package event

import (
	"errors"
	"primor/activity"
	"primor/bizerror"
	"primor/common"
	"primor/idgen"
	"primor/persistence"
	"primor/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

var (
	eventIdWorker = idgen.NewWorker()

	CreateEventFunc   = CreateEvent
	UpdateEventFunc   = UpdateEvent
	DetailEventFunc   = DetailEvent
	QueryEventsFunc   = QueryEvents
	DeleteEventFunc   = DeleteEvent
	CompleteEventFunc = CompleteEvent
)

func validateMoney(values ...decimal.Decimal) error {
	for _, v := range values {
		if v.IsNegative() {
			return &bizerror.ErrBadParam{Cause: errors.New("amount must not be negative")}
		}
	}
	return nil
}

// CreateEvent stores a planned event, then assigns the initial workers one by one.
func CreateEvent(c *EventCreation, s *session.Session) (*CreatedEvent, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	if err := validateMoney(c.DefaultPayout, c.DriverSupplement); err != nil {
		return nil, err
	}

	now := time.Now()
	e := Event{
		ID:               idgen.NextID(eventIdWorker),
		Name:             strings.TrimSpace(c.Name),
		Category:         strings.TrimSpace(c.Category),
		Date:             *c.Date,
		StartTime:        *c.StartTime,
		EndTime:          c.EndTime,
		Venue:            strings.TrimSpace(c.Venue),
		Description:      strings.TrimSpace(c.Description),
		DefaultPayout:    c.DefaultPayout,
		DriverSupplement: c.DriverSupplement,
		Status:           StatusPlanned,
		CreateTime:       now,
		UpdateTime:       now,
	}

	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&e).Error; err != nil {
			return err
		}
		var err error
		record, err = activity.CreateActivity(activity.SourceEvent, e.ID, e.Name, activity.CategoryCreated, nil, s, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.InvokeHandlersFunc(record)

	created := CreatedEvent{Event: e}
	if len(c.WorkerIDs) > 0 {
		result, err := AddWorkers(e.ID, c.WorkerIDs, s)
		if err != nil {
			return nil, err
		}
		created.Assignments = result
	}
	return &created, nil
}

// UpdateEvent never re-notifies, the caller is warned when workers already received the old details.
func UpdateEvent(id types.ID, u *EventUpdating, s *session.Session) (*UpdatedEvent, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	if err := validateMoney(u.DefaultPayout, u.DriverSupplement); err != nil {
		return nil, err
	}

	var updated Event
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		old := Event{}
		if err := tx.Where("id = ?", id).First(&old).Error; err != nil {
			return err
		}
		updated = old
		updated.Name = strings.TrimSpace(u.Name)
		updated.Category = strings.TrimSpace(u.Category)
		updated.Date = *u.Date
		updated.StartTime = *u.StartTime
		updated.EndTime = u.EndTime
		updated.Venue = strings.TrimSpace(u.Venue)
		updated.Description = strings.TrimSpace(u.Description)
		updated.DefaultPayout = u.DefaultPayout
		updated.DriverSupplement = u.DriverSupplement
		updated.UpdateTime = time.Now()

		changes := activity.UpdatedProperties{}.
			Diff("name", old.Name, updated.Name).
			Diff("category", old.Category, updated.Category).
			Diff("date", old.Date, updated.Date).
			Diff("schedule", old.FormatSchedule(), updated.FormatSchedule()).
			Diff("venue", old.Venue, updated.Venue).
			Diff("description", old.Description, updated.Description).
			Diff("defaultPayout", old.DefaultPayout.StringFixed(2), updated.DefaultPayout.StringFixed(2)).
			Diff("driverSupplement", old.DriverSupplement.StringFixed(2), updated.DriverSupplement.StringFixed(2))

		if err := tx.Save(&updated).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		var err error
		record, err = activity.CreateActivity(activity.SourceEvent, id, updated.Name, activity.CategoryPropertyUpdated, changes, s, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.InvokeHandlersFunc(record)
	return &UpdatedEvent{Event: updated, NotifiedWarning: updated.Status == StatusNotified}, nil
}

func DetailEvent(id types.ID, s *session.Session) (*EventDetail, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	e := Event{}
	if err := db.Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	assignments, err := ListAssignments(db, e.ID)
	if err != nil {
		return nil, err
	}
	details, err := describeAssignments(db, &e, assignments)
	if err != nil {
		return nil, err
	}
	return &EventDetail{EventView: NewEventView(&e, assignments), Assignments: details}, nil
}

func NewEventView(e *Event, assignments []Assignment) EventView {
	return EventView{Event: *e, Schedule: e.FormatSchedule(), DisplayDate: e.FormatDate(), Summary: Summarize(e, assignments)}
}

func QueryEvents(q EventQuery, s *session.Session) ([]EventView, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	query := db.Model(&Event{})
	switch q.Filter {
	case FilterPlanned, FilterNotified, FilterCompleted:
		query = query.Where("status = ?", q.Filter)
	case FilterUpcoming:
		query = query.Where("date >= ?", common.Today())
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	events := []Event{}
	if err := query.Order("date DESC").Order("start_time ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return ViewEvents(db, events)
}

// ViewEvents attaches summaries, loading the assignments of all events in one query.
func ViewEvents(db *gorm.DB, events []Event) ([]EventView, error) {
	ids := make([]types.ID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	grouped := map[types.ID][]Assignment{}
	if len(ids) > 0 {
		assignments := []Assignment{}
		if err := db.Where("event_id IN (?)", ids).Find(&assignments).Error; err != nil {
			return nil, err
		}
		for _, a := range assignments {
			grouped[a.EventID] = append(grouped[a.EventID], a)
		}
	}

	views := make([]EventView, 0, len(events))
	for i := range events {
		views = append(views, NewEventView(&events[i], grouped[events[i].ID]))
	}
	return views, nil
}

// DeleteEvent removes the event together with its assignments.
func DeleteEvent(id types.ID, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		e := Event{}
		if err := tx.Where("id = ?", id).First(&e).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Assignment{}, "event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Event{}, "id = ?", id).Error; err != nil {
			return err
		}
		var err error
		record, err = activity.CreateActivity(activity.SourceEvent, id, e.Name, activity.CategoryDeleted, nil, s, tx)
		return err
	})
	if err != nil {
		return err
	}
	activity.InvokeHandlersFunc(record)
	return nil
}

func CompleteEvent(id types.ID, s *session.Session) (*Event, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	var e *Event
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		var err error
		e, record, err = TransitEvent(tx, id, TransitionComplete, s)
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.InvokeHandlersFunc(record)
	return e, nil
}

// TransitEvent fires an event lifecycle transition inside tx.
func TransitEvent(tx *gorm.DB, id types.ID, transition string, s *session.Session) (*Event, *activity.Record, error) {
	e := Event{}
	if err := tx.Where("id = ?", id).First(&e).Error; err != nil {
		return nil, nil, err
	}
	to, err := EventStateMachine.Fire(e.Status, transition)
	if err != nil {
		return nil, nil, err
	}
	if to.Name == e.Status {
		return &e, nil, nil
	}

	from := e.Status
	e.Status = to.Name
	e.UpdateTime = time.Now()
	if err := tx.Model(&Event{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": e.Status, "update_time": e.UpdateTime}).Error; err != nil {
		return nil, nil, err
	}
	record, err := activity.CreateActivity(activity.SourceEvent, id, e.Name, activity.CategoryStatusChanged,
		activity.UpdatedProperties{}.Diff("status", from, e.Status), s, tx)
	if err != nil {
		return nil, nil, err
	}
	return &e, record, nil
}
