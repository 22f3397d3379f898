package event

import (
	"encoding/json"
	"primor/common"
	"primor/domain/state"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

const (
	StatusPlanned   = "planned"
	StatusNotified  = "notified"
	StatusCompleted = "completed"

	TransitionNotify   = "notify"
	TransitionComplete = "complete"
)

const (
	AssignmentPending   = "pending"
	AssignmentConfirmed = "confirmed"
	AssignmentDeclined  = "declined"

	TransitionConfirm = "confirm"
	TransitionDecline = "decline"
)

var (
	planned   = state.State{Name: StatusPlanned, Category: state.InProcess}
	notified  = state.State{Name: StatusNotified, Category: state.InProcess}
	completed = state.State{Name: StatusCompleted, Category: state.Done}

	EventStateMachine = state.NewStateMachine(
		[]state.State{planned, notified, completed},
		[]state.Transition{
			{Name: TransitionNotify, From: planned, To: notified},
			{Name: TransitionNotify, From: notified, To: notified},
			{Name: TransitionComplete, From: planned, To: completed},
			{Name: TransitionComplete, From: notified, To: completed},
		})

	pending   = state.State{Name: AssignmentPending, Category: state.InProcess}
	confirmed = state.State{Name: AssignmentConfirmed, Category: state.Done}
	declined  = state.State{Name: AssignmentDeclined, Category: state.Done}

	AssignmentStateMachine = state.NewStateMachine(
		[]state.State{pending, confirmed, declined},
		[]state.Transition{
			{Name: TransitionConfirm, From: pending, To: confirmed},
			{Name: TransitionDecline, From: pending, To: declined},
		})
)

type Event struct {
	ID               types.ID          `json:"id"`
	Name             string            `json:"name" gorm:"index:idx_event_name"`
	Category         string            `json:"category"`
	Date             common.Date       `json:"date" sql:"type:VARCHAR(10)" gorm:"index:idx_event_date"`
	StartTime        common.ClockTime  `json:"startTime" sql:"type:VARCHAR(8)"`
	EndTime          *common.ClockTime `json:"endTime" sql:"type:VARCHAR(8)"`
	Venue            string            `json:"venue"`
	Description      string            `json:"description" sql:"type:TEXT"`
	DefaultPayout    decimal.Decimal   `json:"defaultPayout" sql:"type:DECIMAL(10,2)"`
	DriverSupplement decimal.Decimal   `json:"driverSupplement" sql:"type:DECIMAL(10,2)"`
	Status           string            `json:"status"`
	CreateTime       time.Time         `json:"createTime"`
	UpdateTime       time.Time         `json:"updateTime"`
}

// Schedule renders "HH:MM - HH:MM", or "HH:MM" without end time.
func (e *Event) FormatSchedule() string {
	if e.EndTime == nil {
		return e.StartTime.String()
	}
	return e.StartTime.String() + " - " + e.EndTime.String()
}

func (e *Event) FormatDate() string {
	return e.Date.Display()
}

type Assignment struct {
	ID          types.ID        `json:"id"`
	EventID     types.ID        `json:"eventId" gorm:"unique_index:uni_event_worker"`
	WorkerID    types.ID        `json:"workerId" gorm:"unique_index:uni_event_worker;index:idx_assignment_worker"`
	Amount      decimal.Decimal `json:"amount" sql:"type:DECIMAL(10,2)"`
	Driver      bool            `json:"driver"`
	Status      string          `json:"status"`
	Token       string          `json:"-" gorm:"unique_index:uni_assignment_token"`
	NotifiedAt  *time.Time      `json:"notifiedAt"`
	RespondedAt *time.Time      `json:"respondedAt"`
	CreateTime  time.Time       `json:"createTime"`
}

// EffectivePayout is the amount plus the event's driver supplement when the worker drives.
func EffectivePayout(a *Assignment, e *Event) decimal.Decimal {
	if a.Driver {
		return a.Amount.Add(e.DriverSupplement)
	}
	return a.Amount
}

type EventSummary struct {
	Total      int             `json:"total"`
	Confirmed  int             `json:"confirmed"`
	Pending    int             `json:"pending"`
	Declined   int             `json:"declined"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

func Summarize(e *Event, assignments []Assignment) EventSummary {
	s := EventSummary{TotalValue: decimal.Zero}
	for i := range assignments {
		a := &assignments[i]
		s.Total++
		switch a.Status {
		case AssignmentConfirmed:
			s.Confirmed++
		case AssignmentPending:
			s.Pending++
		case AssignmentDeclined:
			s.Declined++
		}
		s.TotalValue = s.TotalValue.Add(EffectivePayout(a, e))
	}
	return s
}

type EventView struct {
	Event
	Schedule    string       `json:"schedule"`
	DisplayDate string       `json:"displayDate"`
	Summary     EventSummary `json:"summary"`
}

type AssignmentDetail struct {
	Assignment
	WorkerName      string          `json:"workerName"`
	WorkerPhone     string          `json:"workerPhone"`
	EffectivePayout decimal.Decimal `json:"effectivePayout"`
}

type EventDetail struct {
	EventView
	Assignments []AssignmentDetail `json:"assignments"`
}

type EventCreation struct {
	Name             string            `json:"name" binding:"required,lte=150"`
	Category         string            `json:"category" binding:"required,lte=100"`
	Date             *common.Date      `json:"date" binding:"required"`
	StartTime        *common.ClockTime `json:"startTime" binding:"required"`
	EndTime          *common.ClockTime `json:"endTime"`
	Venue            string            `json:"venue" binding:"required,lte=200"`
	Description      string            `json:"description"`
	DefaultPayout    decimal.Decimal   `json:"defaultPayout"`
	DriverSupplement decimal.Decimal   `json:"driverSupplement"`
	WorkerIDs        []types.ID        `json:"workerIds"`
}

type EventUpdating struct {
	Name             string            `json:"name" binding:"required,lte=150"`
	Category         string            `json:"category" binding:"required,lte=100"`
	Date             *common.Date      `json:"date" binding:"required"`
	StartTime        *common.ClockTime `json:"startTime" binding:"required"`
	EndTime          *common.ClockTime `json:"endTime"`
	Venue            string            `json:"venue" binding:"required,lte=200"`
	Description      string            `json:"description"`
	DefaultPayout    decimal.Decimal   `json:"defaultPayout"`
	DriverSupplement decimal.Decimal   `json:"driverSupplement"`
}

// UnmarshalJSON reads a blank "endTime" as no end time.
func (c *EventCreation) UnmarshalJSON(data []byte) error {
	type creation EventCreation
	aux := struct {
		*creation
		EndTime *string `json:"endTime"`
	}{creation: (*creation)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	end, err := common.ParseOptionalClockTime(aux.EndTime)
	if err != nil {
		return err
	}
	c.EndTime = end
	return nil
}

func (u *EventUpdating) UnmarshalJSON(data []byte) error {
	type updating EventUpdating
	aux := struct {
		*updating
		EndTime *string `json:"endTime"`
	}{updating: (*updating)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	end, err := common.ParseOptionalClockTime(aux.EndTime)
	if err != nil {
		return err
	}
	u.EndTime = end
	return nil
}

type CreatedEvent struct {
	Event
	Assignments *AddWorkersResult `json:"assignments,omitempty"`
}

type UpdatedEvent struct {
	Event
	NotifiedWarning bool `json:"notifiedWarning"`
}

const (
	FilterAll       = "all"
	FilterPlanned   = StatusPlanned
	FilterNotified  = StatusNotified
	FilterCompleted = StatusCompleted
	FilterUpcoming  = "upcoming"
)

type EventQuery struct {
	Filter string `form:"filter" binding:"omitempty,oneof=all planned notified completed upcoming"`
	Search string `form:"search"`
}

type AddWorkersRequest struct {
	WorkerIDs []types.ID `json:"workerIds" binding:"required,min=1"`
}

type AddWorkersResult struct {
	Added                int        `json:"added"`
	AlreadyAssigned      int        `json:"alreadyAssigned"`
	Conflicts            int        `json:"conflicts"`
	AddedIDs             []types.ID `json:"addedIds"`
	ConflictingWorkerIDs []types.ID `json:"conflictingWorkerIds"`
}

type AssignmentUpdating struct {
	Amount decimal.Decimal `json:"amount"`
	Driver bool            `json:"driver"`
}
