// Package seeding loads and removes the demo data used to try the confirmation flow by hand.
package seeding

import (
	"context"
	"primor/authority"
	"primor/common"
	"primor/domain/event"
	"primor/domain/worker"
	"primor/notify"
	"primor/persistence"
	"primor/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type demoEvent struct {
	name, category, venue, description string
	daysAhead                          int
	start, end                         common.ClockTime
	payout, driverSupplement           string
}

var (
	demoWorkers = []worker.WorkerCreation{
		{Name: "Carlos Souza", Email: "carlos@teste.com", Phone: "11991110001", Age: intRef(28),
			Description: "Garçom experiente em eventos corporativos", Pix: "carlos@pix.com"},
		{Name: "Ana Lima", Email: "ana@teste.com", Phone: "11991110002", Age: intRef(25),
			Description: "Especialista em casamentos", Pix: "ana@pix.com"},
		{Name: "Marcos Pereira", Email: "marcos@teste.com", Phone: "11991110003", Age: intRef(32),
			Description: "Motorista e garçom", Pix: "marcos@pix.com"},
	}
	demoEvents = []demoEvent{
		{name: "Casamento Silva", category: "Casamento", venue: "Espaço Villa Eventos - São Paulo",
			description: "Recepção com jantar para 150 pessoas", daysAhead: 7,
			start: common.NewClockTime(18, 0), end: common.NewClockTime(23, 0), payout: "250", driverSupplement: "50"},
		{name: "Formatura Turma 2025", category: "Formatura", venue: "Clube Atlético - Campinas",
			description: "Jantar de gala com 200 convidados", daysAhead: 14,
			start: common.NewClockTime(20, 0), end: common.NewClockTime(2, 0), payout: "300", driverSupplement: "60"},
	}
)

func intRef(v int) *int {
	return &v
}

type Report struct {
	Workers     int      `json:"workers"`
	Events      int      `json:"events"`
	Assignments int      `json:"assignments"`
	Links       []string `json:"links"`
}

func seeder(ctx context.Context) *session.Session {
	return &session.Session{
		Identity: session.Identity{ID: 1, Name: "seeder"},
		Perms:    authority.Permissions{authority.SystemAdmin},
		Context:  ctx,
	}
}

// Seed creates what is missing of the demo data, leaving existing rows untouched.
func Seed(ctx context.Context, baseURL string) (*Report, error) {
	s := seeder(ctx)
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	report := &Report{Links: []string{}}

	workerIDs := make([]types.ID, 0, len(demoWorkers))
	for i := range demoWorkers {
		existing := worker.Worker{}
		err := db.Where("email = ?", demoWorkers[i].Email).First(&existing).Error
		if err == nil {
			logrus.Infof("seed: skip existing worker %s", existing.Name)
			workerIDs = append(workerIDs, existing.ID)
			continue
		}
		if !gorm.IsRecordNotFoundError(err) {
			return nil, err
		}
		w, err := worker.CreateWorkerFunc(&demoWorkers[i], s)
		if err != nil {
			return nil, err
		}
		report.Workers++
		workerIDs = append(workerIDs, w.ID)
	}

	today := common.Today()
	for _, d := range demoEvents {
		e := event.Event{}
		err := db.Where("name = ?", d.name).First(&e).Error
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return nil, err
		}
		if err != nil {
			date, start, end := today.AddDays(d.daysAhead), d.start, d.end
			created, err := event.CreateEventFunc(&event.EventCreation{
				Name: d.name, Category: d.category, Date: &date, StartTime: &start, EndTime: &end,
				Venue: d.venue, Description: d.description,
				DefaultPayout: decimal.RequireFromString(d.payout), DriverSupplement: decimal.RequireFromString(d.driverSupplement),
			}, s)
			if err != nil {
				return nil, err
			}
			report.Events++
			e = created.Event
		} else {
			logrus.Infof("seed: skip existing event %s", e.Name)
		}

		added, err := event.AddWorkersFunc(e.ID, workerIDs, s)
		if err != nil {
			return nil, err
		}
		report.Assignments += added.Added
		driverID := workerIDs[len(workerIDs)-1]
		for _, workerID := range added.AddedIDs {
			if workerID != driverID {
				continue
			}
			a, err := event.FindByPair(ctx, e.ID, workerID)
			if err != nil {
				return nil, err
			}
			if _, err := event.UpdateAssignmentFunc(e.ID, a.ID, &event.AssignmentUpdating{Amount: a.Amount, Driver: true}, s); err != nil {
				return nil, err
			}
		}
		for _, workerID := range workerIDs {
			report.Links = append(report.Links, notify.ConfirmationLink(baseURL, e.ID, workerID))
		}
	}
	return report, nil
}

// Reset deletes the demo events and workers together with all their assignments.
func Reset(ctx context.Context) (*Report, error) {
	s := seeder(ctx)
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	report := &Report{Links: []string{}}

	for _, d := range demoEvents {
		events := []event.Event{}
		if err := db.Where("name = ?", d.name).Find(&events).Error; err != nil {
			return nil, err
		}
		for _, e := range events {
			if err := event.DeleteEventFunc(e.ID, s); err != nil {
				return nil, err
			}
			report.Events++
		}
	}

	for _, c := range demoWorkers {
		workers := []worker.Worker{}
		if err := db.Where("email = ?", c.Email).Find(&workers).Error; err != nil {
			return nil, err
		}
		for _, w := range workers {
			removed := db.Delete(&event.Assignment{}, "worker_id = ?", w.ID)
			if removed.Error != nil {
				return nil, removed.Error
			}
			report.Assignments += int(removed.RowsAffected)
			if err := worker.DeleteWorkerFunc(w.ID, s); err != nil {
				return nil, err
			}
			report.Workers++
		}
	}
	return report, nil
}
