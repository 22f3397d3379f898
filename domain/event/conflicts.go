package event

import (
	"primor/bizerror"
	"primor/common"
	"primor/domain/schedule"
	"primor/persistence"
	"primor/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

type assignedSlot struct {
	WorkerID  types.ID
	EventID   types.ID
	Name      string
	Date      common.Date
	StartTime common.ClockTime
	EndTime   *common.ClockTime
}

func SlotOf(e *Event) schedule.Slot {
	return schedule.Slot{EventID: e.ID, Name: e.Name, Date: e.Date, Start: e.StartTime, End: e.EndTime}
}

// sameDaySlots loads the other events of e's day that the given workers are assigned to.
func sameDaySlots(db *gorm.DB, workerIDs []types.ID, e *Event) ([]assignedSlot, error) {
	rows := []assignedSlot{}
	if len(workerIDs) == 0 {
		return rows, nil
	}
	err := db.Table("assignments").
		Select("assignments.worker_id, events.id AS event_id, events.name, events.date, events.start_time, events.end_time").
		Joins("JOIN events ON events.id = assignments.event_id").
		Where("assignments.worker_id IN (?) AND events.date = ? AND events.id <> ?", workerIDs, e.Date, e.ID).
		Order("events.start_time ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func conflictsOf(db *gorm.DB, workerIDs []types.ID, e *Event) (map[types.ID][]schedule.Slot, error) {
	rows, err := sameDaySlots(db, workerIDs, e)
	if err != nil {
		return nil, err
	}
	candidate := SlotOf(e)
	r := map[types.ID][]schedule.Slot{}
	for _, row := range rows {
		slot := schedule.Slot{EventID: row.EventID, Name: row.Name, Date: row.Date, Start: row.StartTime, End: row.EndTime}
		if schedule.Overlaps(candidate, slot) {
			r[row.WorkerID] = append(r[row.WorkerID], slot)
		}
	}
	return r, nil
}

// HasConflict reports whether the worker is already assigned to an overlapping event on the same day.
func HasConflict(db *gorm.DB, workerID types.ID, e *Event) (bool, error) {
	conflicts, err := conflictsOf(db, []types.ID{workerID}, e)
	if err != nil {
		return false, err
	}
	return len(conflicts[workerID]) > 0, nil
}

// ListConflicts describes, per worker, the overlapping events preventing assignment to the event.
// Workers without conflicts are absent from the result.
func ListConflicts(eventID types.ID, workerIDs []types.ID, s *session.Session) (map[types.ID][]string, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	e := Event{}
	if err := db.Where("id = ?", eventID).First(&e).Error; err != nil {
		return nil, err
	}
	conflicts, err := conflictsOf(db, workerIDs, &e)
	if err != nil {
		return nil, err
	}
	r := map[types.ID][]string{}
	for workerID, slots := range conflicts {
		r[workerID] = schedule.DescribeAll(slots)
	}
	return r, nil
}
