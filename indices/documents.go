package indices

import (
	"context"
	"fmt"
	"primor/client/es"
	"primor/common"
	"primor/domain/event"
	"primor/domain/worker"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

const (
	EventIndexName  = "events"
	WorkerIndexName = "workers"
)

type EventDocument struct {
	ID       types.ID    `json:"id"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Date     common.Date `json:"date"`
	Venue    string      `json:"venue"`
	Status   string      `json:"status"`
}

type WorkerDocument struct {
	ID     types.ID `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Phone  string   `json:"phone"`
	Active bool     `json:"active"`
}

func NewEventDocument(e *event.Event) EventDocument {
	return EventDocument{ID: e.ID, Name: e.Name, Category: e.Category, Date: e.Date, Venue: e.Venue, Status: e.Status}
}

func NewWorkerDocument(w *worker.Worker) WorkerDocument {
	return WorkerDocument{ID: w.ID, Name: w.Name, Email: w.Email, Phone: w.Phone, Active: w.Active}
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexEvents(ctx context.Context, events []event.Event) error {
	errs := BatchActionError{}
	for i := range events {
		doc := NewEventDocument(&events[i])
		if err := es.IndexFunc(ctx, EventIndexName, doc.ID, doc); err != nil {
			errs[doc.ID] = err
			logrus.WithFields(logrus.Fields{"index": EventIndexName, "id": doc.ID}).Warn("index document: ", err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func IndexWorkers(ctx context.Context, workers []worker.Worker) error {
	errs := BatchActionError{}
	for i := range workers {
		doc := NewWorkerDocument(&workers[i])
		if err := es.IndexFunc(ctx, WorkerIndexName, doc.ID, doc); err != nil {
			errs[doc.ID] = err
			logrus.WithFields(logrus.Fields{"index": WorkerIndexName, "id": doc.ID}).Warn("index document: ", err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
