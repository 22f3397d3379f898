package worker

import (
	"fmt"
	"primor/activity"
	"primor/bizerror"
	"primor/idgen"
	"primor/persistence"
	"primor/session"
	"strings"
	"time"
	"unicode"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const (
	FilterActive   = "active"
	FilterInactive = "inactive"
	FilterAll      = "all"
)

type Worker struct {
	ID          types.ID  `json:"id"`
	Name        string    `json:"name" gorm:"index:idx_worker_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Age         *int      `json:"age"`
	Description string    `json:"description" sql:"type:TEXT"`
	Pix         string    `json:"pix"`
	Active      bool      `json:"active"`
	CreateTime  time.Time `json:"createTime"`
	UpdateTime  time.Time `json:"updateTime"`
}

type WorkerDetail struct {
	Worker
	Initials    string `json:"initials"`
	TotalEvents int    `json:"totalEvents"`
}

type WorkerCreation struct {
	Name        string `json:"name" binding:"required,lte=100"`
	Email       string `json:"email" binding:"omitempty,email,lte=120"`
	Phone       string `json:"phone" binding:"required,lte=20"`
	Age         *int   `json:"age" binding:"omitempty,min=14,max=120"`
	Description string `json:"description"`
	Pix         string `json:"pix" binding:"lte=100"`
	Active      *bool  `json:"active"`
}

type WorkerUpdating WorkerCreation

type WorkerQuery struct {
	Filter string `form:"filter" binding:"omitempty,oneof=active inactive all"`
	Search string `form:"search"`
}

var (
	workerIdWorker = idgen.NewWorker()

	CreateWorkerFunc       = CreateWorker
	UpdateWorkerFunc       = UpdateWorker
	DetailWorkerFunc       = DetailWorker
	QueryWorkersFunc       = QueryWorkers
	ToggleWorkerActiveFunc = ToggleWorkerActive
	DeleteWorkerFunc       = DeleteWorker
)

// Initials takes the first letter of the first and last names, or the first two letters of a single name.
func Initials(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "?"
	case 1:
		runes := []rune(parts[0])
		if len(runes) >= 2 {
			return strings.ToUpper(string(runes[:2]))
		}
		return strings.ToUpper(string(runes))
	default:
		first := []rune(parts[0])[0]
		last := []rune(parts[len(parts)-1])[0]
		return string([]rune{unicode.ToUpper(first), unicode.ToUpper(last)})
	}
}

func CreateWorker(c *WorkerCreation, s *session.Session) (*Worker, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	now := time.Now()
	w := Worker{
		ID:          idgen.NextID(workerIdWorker),
		Name:        strings.TrimSpace(c.Name),
		Email:       strings.TrimSpace(c.Email),
		Phone:       strings.TrimSpace(c.Phone),
		Age:         c.Age,
		Description: c.Description,
		Pix:         c.Pix,
		Active:      c.Active == nil || *c.Active,
		CreateTime:  now,
		UpdateTime:  now,
	}

	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&w).Error; err != nil {
			return err
		}
		var err error
		record, err = activity.CreateActivity(activity.SourceWorker, w.ID, w.Name, activity.CategoryCreated, nil, s, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.InvokeHandlersFunc(record)
	return &w, nil
}

func UpdateWorker(id types.ID, u *WorkerUpdating, s *session.Session) (*Worker, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	var updated Worker
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		w := Worker{}
		if err := tx.Where("id = ?", id).First(&w).Error; err != nil {
			return err
		}
		updated = w
		updated.Name = strings.TrimSpace(u.Name)
		updated.Email = strings.TrimSpace(u.Email)
		updated.Phone = strings.TrimSpace(u.Phone)
		updated.Age = u.Age
		updated.Description = u.Description
		updated.Pix = u.Pix
		if u.Active != nil {
			updated.Active = *u.Active
		}
		updated.UpdateTime = time.Now()

		changes := activity.UpdatedProperties{}.
			Diff("name", w.Name, updated.Name).
			Diff("email", w.Email, updated.Email).
			Diff("phone", w.Phone, updated.Phone).
			Diff("age", ageText(w.Age), ageText(updated.Age)).
			Diff("description", w.Description, updated.Description).
			Diff("pix", w.Pix, updated.Pix).
			Diff("active", w.Active, updated.Active)

		if err := tx.Save(&updated).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		var err error
		record, err = activity.CreateActivity(activity.SourceWorker, id, updated.Name, activity.CategoryPropertyUpdated, changes, s, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.InvokeHandlersFunc(record)
	return &updated, nil
}

func ageText(age *int) string {
	if age == nil {
		return ""
	}
	return fmt.Sprint(*age)
}

func ToggleWorkerActive(id types.ID, s *session.Session) (*Worker, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	w := Worker{}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&w).Error; err != nil {
			return err
		}
		w.Active = !w.Active
		w.UpdateTime = time.Now()
		if err := tx.Model(&Worker{}).Where("id = ?", id).
			Updates(map[string]interface{}{"active": w.Active, "update_time": w.UpdateTime}).Error; err != nil {
			return err
		}
		var err error
		record, err = activity.CreateActivity(activity.SourceWorker, id, w.Name, activity.CategoryStatusChanged,
			activity.UpdatedProperties{}.Diff("active", !w.Active, w.Active), s, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.InvokeHandlersFunc(record)
	return &w, nil
}

// DeleteWorker removes a worker who was never assigned, others must be deactivated.
func DeleteWorker(id types.ID, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		w := Worker{}
		if err := tx.Where("id = ?", id).First(&w).Error; err != nil {
			return err
		}
		counts, err := countAssignments(tx, []types.ID{id})
		if err != nil {
			return err
		}
		if counts[id] > 0 {
			return bizerror.ErrWorkerHasAssignments
		}
		if err := tx.Delete(&Worker{}, "id = ?", id).Error; err != nil {
			return err
		}
		record, err = activity.CreateActivity(activity.SourceWorker, id, w.Name, activity.CategoryDeleted, nil, s, tx)
		return err
	})
	if err != nil {
		return err
	}
	activity.InvokeHandlersFunc(record)
	return nil
}

func DetailWorker(id types.ID, s *session.Session) (*WorkerDetail, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	w := Worker{}
	if err := db.Where("id = ?", id).First(&w).Error; err != nil {
		return nil, err
	}
	details, err := withDetails(db, []Worker{w})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func QueryWorkers(q WorkerQuery, s *session.Session) ([]WorkerDetail, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	query := db.Model(&Worker{})
	switch q.Filter {
	case FilterAll:
	case FilterInactive:
		query = query.Where("active = ?", false)
	default:
		query = query.Where("active = ?", true)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	workers := []Worker{}
	if err := query.Order("name ASC").Find(&workers).Error; err != nil {
		return nil, err
	}
	return withDetails(db, workers)
}

// FindWorkers returns the workers with the given ids, keyed by id.
func FindWorkers(db *gorm.DB, ids []types.ID) (map[types.ID]Worker, error) {
	r := map[types.ID]Worker{}
	if len(ids) == 0 {
		return r, nil
	}
	workers := []Worker{}
	if err := db.Where("id IN (?)", ids).Find(&workers).Error; err != nil {
		return nil, err
	}
	for _, w := range workers {
		r[w.ID] = w
	}
	return r, nil
}

func withDetails(db *gorm.DB, workers []Worker) ([]WorkerDetail, error) {
	ids := make([]types.ID, 0, len(workers))
	for _, w := range workers {
		ids = append(ids, w.ID)
	}
	counts, err := countAssignments(db, ids)
	if err != nil {
		return nil, err
	}
	details := make([]WorkerDetail, 0, len(workers))
	for _, w := range workers {
		details = append(details, WorkerDetail{Worker: w, Initials: Initials(w.Name), TotalEvents: counts[w.ID]})
	}
	return details, nil
}

type assignmentCount struct {
	WorkerID types.ID
	Total    int
}

// countAssignments reads the assignments table owned by the event package.
func countAssignments(db *gorm.DB, ids []types.ID) (map[types.ID]int, error) {
	r := map[types.ID]int{}
	if len(ids) == 0 {
		return r, nil
	}
	rows := []assignmentCount{}
	if err := db.Table("assignments").Select("worker_id, COUNT(*) AS total").
		Where("worker_id IN (?)", ids).Group("worker_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		r[row.WorkerID] = row.Total
	}
	return r, nil
}
