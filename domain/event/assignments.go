package event

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"primor/activity"
	"primor/bizerror"
	"primor/domain/worker"
	"primor/idgen"
	"primor/persistence"
	"primor/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const tokenBytes = 32

var (
	assignmentIdWorker = idgen.NewWorker()

	NewTokenFunc = NewToken

	AddWorkersFunc       = AddWorkers
	RemoveWorkerFunc     = RemoveWorker
	UpdateAssignmentFunc = UpdateAssignment
	ListConflictsFunc    = ListConflicts
)

// NewToken returns 32 random bytes in unpadded URL-safe base64.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type addOutcome int

const (
	outcomeAdded addOutcome = iota
	outcomeAlreadyAssigned
	outcomeConflict
)

// AddWorkers assigns each worker in its own transaction, skipping those already
// assigned and those with a schedule conflict on the event's day.
func AddWorkers(eventID types.ID, workerIDs []types.ID, s *session.Session) (*AddWorkersResult, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	e := Event{}
	if err := db.Where("id = ?", eventID).First(&e).Error; err != nil {
		return nil, err
	}
	workers, err := worker.FindWorkers(db, workerIDs)
	if err != nil {
		return nil, err
	}

	result := &AddWorkersResult{AddedIDs: []types.ID{}, ConflictingWorkerIDs: []types.ID{}}
	for _, workerID := range workerIDs {
		w, found := workers[workerID]
		if !found {
			logrus.WithFields(logrus.Fields{"eventId": eventID, "workerId": workerID}).Warn("skip assigning unknown worker")
			continue
		}
		outcome, err := addWorker(db, &e, &w, s)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case outcomeAdded:
			result.Added++
			result.AddedIDs = append(result.AddedIDs, workerID)
		case outcomeAlreadyAssigned:
			result.AlreadyAssigned++
		case outcomeConflict:
			result.Conflicts++
			result.ConflictingWorkerIDs = append(result.ConflictingWorkerIDs, workerID)
		}
	}
	return result, nil
}

func addWorker(db *gorm.DB, e *Event, w *worker.Worker, s *session.Session) (addOutcome, error) {
	outcome := outcomeAdded
	var record *activity.Record
	err := db.Transaction(func(tx *gorm.DB) error {
		assigned, err := isAssigned(tx, e.ID, w.ID)
		if err != nil {
			return err
		}
		if assigned {
			outcome = outcomeAlreadyAssigned
			return nil
		}
		conflict, err := HasConflict(tx, w.ID, e)
		if err != nil {
			return err
		}
		if conflict {
			outcome = outcomeConflict
			return nil
		}

		token, err := NewTokenFunc()
		if err != nil {
			return err
		}
		a := Assignment{
			ID:         idgen.NextID(assignmentIdWorker),
			EventID:    e.ID,
			WorkerID:   w.ID,
			Amount:     e.DefaultPayout,
			Status:     AssignmentPending,
			Token:      token,
			CreateTime: time.Now(),
		}
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		record, err = activity.CreateActivity(activity.SourceAssignment, a.ID, assignmentDesc(w, e), activity.CategoryCreated, nil, s, tx)
		return err
	})
	if err != nil {
		// a concurrent request may have inserted the same pair
		if assigned, checkErr := isAssigned(db, e.ID, w.ID); checkErr == nil && assigned {
			return outcomeAlreadyAssigned, nil
		}
		return outcome, err
	}
	activity.InvokeHandlersFunc(record)
	return outcome, nil
}

func isAssigned(db *gorm.DB, eventID, workerID types.ID) (bool, error) {
	var count int
	if err := db.Model(&Assignment{}).Where("event_id = ? AND worker_id = ?", eventID, workerID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func assignmentDesc(w *worker.Worker, e *Event) string {
	return fmt.Sprintf("%s @ %s", w.Name, e.Name)
}

func RemoveWorker(eventID, workerID types.ID, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		a := Assignment{}
		if err := tx.Where("event_id = ? AND worker_id = ?", eventID, workerID).First(&a).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Assignment{}, "id = ?", a.ID).Error; err != nil {
			return err
		}
		var err error
		record, err = activity.CreateActivity(activity.SourceAssignment, a.ID, fmt.Sprintf("worker %s @ event %s", workerID, eventID),
			activity.CategoryDeleted, nil, s, tx)
		return err
	})
	if err != nil {
		return err
	}
	activity.InvokeHandlersFunc(record)
	return nil
}

func UpdateAssignment(eventID, assignmentID types.ID, u *AssignmentUpdating, s *session.Session) (*Assignment, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	if err := validateMoney(u.Amount); err != nil {
		return nil, err
	}

	a := Assignment{}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", assignmentID).First(&a).Error; err != nil {
			return err
		}
		if a.EventID != eventID {
			return &bizerror.ErrBadParam{Cause: errors.New("assignment does not belong to event")}
		}
		changes := activity.UpdatedProperties{}.
			Diff("amount", a.Amount.StringFixed(2), u.Amount.StringFixed(2)).
			Diff("driver", a.Driver, u.Driver)
		a.Amount = u.Amount
		a.Driver = u.Driver
		if err := tx.Model(&Assignment{}).Where("id = ?", a.ID).
			Updates(map[string]interface{}{"amount": a.Amount, "driver": a.Driver}).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		var err error
		record, err = activity.CreateActivity(activity.SourceAssignment, a.ID, "", activity.CategoryPropertyUpdated, changes, s, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.InvokeHandlersFunc(record)
	return &a, nil
}

// ListAssignments returns the assignments of an event in the order they were created.
func ListAssignments(db *gorm.DB, eventID types.ID) ([]Assignment, error) {
	assignments := []Assignment{}
	if err := db.Where("event_id = ?", eventID).Order("create_time ASC").Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func describeAssignments(db *gorm.DB, e *Event, assignments []Assignment) ([]AssignmentDetail, error) {
	ids := make([]types.ID, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.WorkerID)
	}
	workers, err := worker.FindWorkers(db, ids)
	if err != nil {
		return nil, err
	}
	details := make([]AssignmentDetail, 0, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		w := workers[a.WorkerID]
		details = append(details, AssignmentDetail{Assignment: *a, WorkerName: w.Name, WorkerPhone: w.Phone, EffectivePayout: EffectivePayout(a, e)})
	}
	return details, nil
}

func FindByToken(ctx context.Context, token string) (*Assignment, error) {
	if token == "" {
		return nil, bizerror.ErrNotFound
	}
	a := Assignment{}
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Where("token = ?", token).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByPair returns the most recent assignment of the worker to the event.
func FindByPair(ctx context.Context, eventID, workerID types.ID) (*Assignment, error) {
	a := Assignment{}
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).
		Where("event_id = ? AND worker_id = ?", eventID, workerID).
		Order("create_time DESC").First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Responded reports whether the worker already confirmed or declined.
func (a *Assignment) Responded() bool {
	return AssignmentStateMachine.IsTerminal(a.Status)
}

// Respond applies the worker's decision once, a second answer yields ErrAlreadyResponded.
func Respond(ctx context.Context, assignmentID types.ID, transition string) (*Assignment, error) {
	a := Assignment{}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", assignmentID).First(&a).Error; err != nil {
			return err
		}
		if a.Responded() {
			return bizerror.ErrAlreadyResponded
		}
		to, err := AssignmentStateMachine.Fire(a.Status, transition)
		if err != nil {
			return err
		}

		from := a.Status
		now := time.Now()
		res := tx.Model(&Assignment{}).Where("id = ? AND status = ?", a.ID, from).
			Updates(map[string]interface{}{"status": to.Name, "responded_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return bizerror.ErrAlreadyResponded
		}
		a.Status = to.Name
		a.RespondedAt = &now

		record, err = activity.CreateActivity(activity.SourceAssignment, a.ID, "", activity.CategoryStatusChanged,
			activity.UpdatedProperties{}.Diff("status", from, a.Status), nil, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.InvokeHandlersFunc(record)
	return &a, nil
}

// SaveNotification persists a regenerated token, and the send time when notifiedAt is set.
func SaveNotification(db *gorm.DB, assignmentID types.ID, token string, notifiedAt *time.Time) error {
	changes := map[string]interface{}{"token": token}
	if notifiedAt != nil {
		changes["notified_at"] = *notifiedAt
	}
	return db.Model(&Assignment{}).Where("id = ?", assignmentID).Updates(changes).Error
}

// Participation is an assignment with its event and worker loaded.
type Participation struct {
	Assignment Assignment
	Event      Event
	Worker     worker.Worker
}

func LoadParticipation(ctx context.Context, a *Assignment) (*Participation, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	p := Participation{Assignment: *a}
	if err := db.Where("id = ?", a.EventID).First(&p.Event).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id = ?", a.WorkerID).First(&p.Worker).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
