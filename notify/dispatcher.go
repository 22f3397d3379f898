package notify

import (
	"context"
	"fmt"
	"primor/activity"
	"primor/bizerror"
	"primor/domain/event"
	"primor/domain/worker"
	"primor/persistence"
	"primor/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

type EventNotifyResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type AssignmentNotifyResult struct {
	Sent bool `json:"sent"`
}

// Notifier is what the notification endpoints need.
type Notifier interface {
	NotifyEvent(eventID types.ID, s *session.Session) (*EventNotifyResult, error)
	NotifyAssignment(eventID, assignmentID types.ID, s *session.Session) (*AssignmentNotifyResult, error)
	Status(ctx context.Context) ConnectionStatus
}

type Dispatcher struct {
	Transport   Transport
	BaseURL     string
	CountryCode string
}

func NewDispatcher(transport Transport, baseURL, countryCode string) *Dispatcher {
	return &Dispatcher{Transport: transport, BaseURL: baseURL, CountryCode: countryCode}
}

func (d *Dispatcher) Status(ctx context.Context) ConnectionStatus {
	return d.Transport.CheckConnection(ctx)
}

func (d *Dispatcher) send(ctx context.Context, w *worker.Worker, e *event.Event, a *event.Assignment) bool {
	return d.Transport.Send(ctx, NormalizePhone(w.Phone, d.CountryCode), FormatMessage(w, e, a, d.BaseURL))
}

// NotifyEvent messages every assigned worker, regenerating each token. Send failures are counted,
// the event moves to notified regardless.
func (d *Dispatcher) NotifyEvent(eventID types.ID, s *session.Session) (*EventNotifyResult, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	ctx := s.Ctx()
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	e := event.Event{}
	if err := db.Where("id = ?", eventID).First(&e).Error; err != nil {
		return nil, err
	}
	if _, err := event.EventStateMachine.Fire(e.Status, event.TransitionNotify); err != nil {
		return nil, err
	}
	assignments, err := event.ListAssignments(db, eventID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, bizerror.ErrNoAssignments
	}
	workerIDs := make([]types.ID, 0, len(assignments))
	for _, a := range assignments {
		workerIDs = append(workerIDs, a.WorkerID)
	}
	workers, err := worker.FindWorkers(db, workerIDs)
	if err != nil {
		return nil, err
	}

	result := EventNotifyResult{}
	var records []*activity.Record
	for i := range assignments {
		a := &assignments[i]
		token, err := event.NewTokenFunc()
		if err != nil {
			return nil, err
		}
		a.Token = token

		w, found := workers[a.WorkerID]
		sent := found && d.send(ctx, &w, &e, a)
		var notifiedAt *time.Time
		if sent {
			now := time.Now()
			notifiedAt = &now
			result.Sent++
		} else {
			result.Failed++
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := event.SaveNotification(tx, a.ID, token, notifiedAt); err != nil {
				return err
			}
			record, err := recordDelivery(tx, a, &w, sent, s)
			records = append(records, record)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		_, record, err := event.TransitEvent(tx, eventID, event.TransitionNotify, s)
		records = append(records, record)
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.InvokeHandlersFunc(records...)

	logrus.WithFields(logrus.Fields{"eventId": eventID, "sent": result.Sent, "failed": result.Failed}).Info("event notified")
	return &result, nil
}

// NotifyAssignment re-sends one worker's message, the new token is kept only when delivery succeeds.
func (d *Dispatcher) NotifyAssignment(eventID, assignmentID types.ID, s *session.Session) (*AssignmentNotifyResult, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	ctx := s.Ctx()
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	a := event.Assignment{}
	if err := db.Where("id = ? AND event_id = ?", assignmentID, eventID).First(&a).Error; err != nil {
		return nil, err
	}
	p, err := event.LoadParticipation(ctx, &a)
	if err != nil {
		return nil, err
	}
	token, err := event.NewTokenFunc()
	if err != nil {
		return nil, err
	}
	p.Assignment.Token = token

	sent := d.send(ctx, &p.Worker, &p.Event, &p.Assignment)
	var record *activity.Record
	err = db.Transaction(func(tx *gorm.DB) error {
		if sent {
			now := time.Now()
			if err := event.SaveNotification(tx, a.ID, token, &now); err != nil {
				return err
			}
		}
		var err error
		record, err = recordDelivery(tx, &a, &p.Worker, sent, s)
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.InvokeHandlersFunc(record)
	return &AssignmentNotifyResult{Sent: sent}, nil
}

func recordDelivery(tx *gorm.DB, a *event.Assignment, w *worker.Worker, sent bool, s *session.Session) (*activity.Record, error) {
	category := activity.CategoryNotified
	if !sent {
		category = activity.CategoryFailed
	}
	return activity.CreateActivity(activity.SourceAssignment, a.ID, fmt.Sprintf("%s (%s)", w.Name, w.Phone), category, nil, s, tx)
}
