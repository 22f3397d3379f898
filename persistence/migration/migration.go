package migration

import (
	"primor/account"
	"primor/activity"
	"primor/domain/event"
	"primor/domain/worker"

	"github.com/jinzhu/gorm"
)

// Models lists every persisted entity in dependency order.
var Models = []interface{}{
	&account.User{},
	&worker.Worker{},
	&event.Event{},
	&event.Assignment{},
	&activity.Record{},
}

// Migrate creates missing tables, columns and indexes. It never drops anything.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...).Error
}
