package activity

import (
	"primor/idgen"
	"primor/persistence"
	"primor/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	activityIdWorker = idgen.NewWorker()

	ActivityPersistCreateFunc = CreateActivityPersistDefault
	QueryActivitiesFunc       = QueryActivities
)

type Query struct {
	SourceType string   `form:"sourceType"`
	SourceID   types.ID `form:"sourceId"`
	Limit      int      `form:"limit" binding:"omitempty,min=1,max=500"`
}

// CreateActivity persists a record inside tx, handlers run once the caller committed.
func CreateActivity(sourceType string, sourceID types.ID, sourceDesc string, category string,
	updatedProperties UpdatedProperties, s *session.Session, tx *gorm.DB) (*Record, error) {

	record := Record{
		ID:                idgen.NextID(activityIdWorker),
		SourceType:        sourceType,
		SourceID:          sourceID,
		SourceDesc:        sourceDesc,
		Category:          category,
		UpdatedProperties: updatedProperties,
		Timestamp:         time.Now(),
	}
	if s != nil {
		record.CreatorID = s.Identity.ID
		record.CreatorName = s.Identity.Name
	}
	if err := ActivityPersistCreateFunc(&record, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

func CreateActivityPersistDefault(record *Record, db *gorm.DB) error {
	return db.Create(record).Error
}

func QueryActivities(q Query, s *session.Session) ([]Record, error) {
	limit := q.Limit
	if limit == 0 {
		limit = 100
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	if q.SourceType != "" {
		db = db.Where("source_type = ?", q.SourceType)
	}
	if q.SourceID != 0 {
		db = db.Where("source_id = ?", q.SourceID)
	}
	records := []Record{}
	if err := db.Order("timestamp DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
