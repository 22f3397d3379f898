package indices

import (
	"context"
	"fmt"
	"primor/activity"
	"primor/bizerror"
	"primor/client/es"
	"primor/domain/event"
	"primor/domain/worker"
	"primor/persistence"
	"primor/session"
	"sync"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const IndexActivityHandlerName = "searchIndexer"

var (
	lock    sync.Mutex
	running bool

	SyncBatchSize = 500

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// ScheduleNewSyncRun runs a full sync and reports false when another one is in progress.
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.IsAdmin() {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	defer func() {
		lock.Lock()
		running = false
		lock.Unlock()
	}()
	if err := IndicesFullSyncFunc(s.Ctx()); err != nil {
		return false, err
	}
	return true, nil
}

func IndicesFullSync(ctx context.Context) (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()
	if !es.Enabled() {
		return bizerror.ErrFeatureDisabled
	}

	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if err := syncPages(db, func(q *gorm.DB) (int, error) {
		events := []event.Event{}
		if err := q.Order("id ASC").Find(&events).Error; err != nil {
			return 0, err
		}
		if err := IndexEvents(ctx, events); err != nil {
			logrus.Warnf("indices full sync: %d events failed", len(err.(BatchActionError)))
		}
		return len(events), nil
	}); err != nil {
		return err
	}
	return syncPages(db, func(q *gorm.DB) (int, error) {
		workers := []worker.Worker{}
		if err := q.Order("id ASC").Find(&workers).Error; err != nil {
			return 0, err
		}
		if err := IndexWorkers(ctx, workers); err != nil {
			logrus.Warnf("indices full sync: %d workers failed", len(err.(BatchActionError)))
		}
		return len(workers), nil
	})
}

func syncPages(db *gorm.DB, indexPage func(q *gorm.DB) (int, error)) error {
	for page := 0; ; page++ {
		n, err := indexPage(db.Offset(page * SyncBatchSize).Limit(SyncBatchSize))
		if err != nil {
			return err
		}
		if n < SyncBatchSize {
			return nil
		}
	}
}

// IndexActivityHandle keeps the search index in step with committed worker and event changes.
func IndexActivityHandle(r *activity.Record) *activity.HandleResult {
	var index string
	switch r.SourceType {
	case activity.SourceEvent:
		index = EventIndexName
	case activity.SourceWorker:
		index = WorkerIndexName
	default:
		return nil
	}

	if err := syncDocument(context.Background(), index, r); err != nil {
		return &activity.HandleResult{
			Message:           fmt.Sprintf("sync %s document %d, %v", index, r.SourceID, err),
			HandlerIdentifier: IndexActivityHandlerName,
		}
	}
	return &activity.HandleResult{Success: true, HandlerIdentifier: IndexActivityHandlerName}
}

func syncDocument(ctx context.Context, index string, r *activity.Record) error {
	if r.Category == activity.CategoryDeleted {
		return es.DeleteDocumentFunc(ctx, index, r.SourceID)
	}

	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if index == EventIndexName {
		e := event.Event{}
		if err := db.Where("id = ?", r.SourceID).First(&e).Error; err != nil {
			return err
		}
		return IndexEvents(ctx, []event.Event{e})
	}
	w := worker.Worker{}
	if err := db.Where("id = ?", r.SourceID).First(&w).Error; err != nil {
		return err
	}
	return IndexWorkers(ctx, []worker.Worker{w})
}
