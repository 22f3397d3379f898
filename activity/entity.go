package activity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	SourceWorker     = "WORKER"
	SourceEvent      = "EVENT"
	SourceAssignment = "ASSIGNMENT"
	SourceWebhook    = "WEBHOOK"
)

const (
	CategoryCreated         = "CREATED"
	CategoryDeleted         = "DELETED"
	CategoryPropertyUpdated = "PROPERTY_UPDATED"
	CategoryStatusChanged   = "STATUS_CHANGED"
	CategoryNotified        = "NOTIFIED"
	CategoryFailed          = "FAILED"
)

type Record struct {
	ID types.ID `json:"id"`

	SourceType string   `json:"sourceType" gorm:"index:idx_activity_source"`
	SourceID   types.ID `json:"sourceId" gorm:"index:idx_activity_source"`
	SourceDesc string   `json:"sourceDesc"`

	Category          string            `json:"category"`
	UpdatedProperties UpdatedProperties `json:"updatedProperties" sql:"type:TEXT"`

	CreatorID   types.ID  `json:"creatorId"`
	CreatorName string    `json:"creatorName"`
	Timestamp   time.Time `json:"timestamp"`
}

func (r *Record) TableName() string {
	return "activities"
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`
	OldValue     string `json:"oldValue"`
	NewValue     string `json:"newValue"`
}

type UpdatedProperties []UpdatedProperty

func (t UpdatedProperties) Value() (driver.Value, error) {
	if t == nil {
		t = UpdatedProperties{}
	}
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *UpdatedProperties) Scan(v interface{}) error {
	var jsonBytes []byte
	switch value := v.(type) {
	case string:
		jsonBytes = []byte(value)
	case []byte:
		jsonBytes = value
	case nil:
		*c = UpdatedProperties{}
		return nil
	default:
		return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
	}
	return json.Unmarshal(jsonBytes, c)
}

// Diff records a property change when the values differ.
func (t UpdatedProperties) Diff(name string, oldValue, newValue interface{}) UpdatedProperties {
	o, n := fmt.Sprint(oldValue), fmt.Sprint(newValue)
	if o == n {
		return t
	}
	return append(t, UpdatedProperty{PropertyName: name, OldValue: o, NewValue: n})
}
