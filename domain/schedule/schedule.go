// Package schedule decides whether two events on the same day overlap in time.
//
// An event without an end time, or whose end is not after its start (midnight
// or a shift crossing into the next day), is considered to last until the end
// of its day. Intervals are half-open: an event ending exactly when another
// starts does not conflict with it.
package schedule

import (
	"fmt"
	"primor/common"

	"github.com/fundwit/go-commons/types"
)

type Slot struct {
	EventID types.ID
	Name    string
	Date    common.Date
	Start   common.ClockTime
	End     *common.ClockTime
}

func EffectiveEnd(start common.ClockTime, end *common.ClockTime) common.ClockTime {
	if end == nil || *end == 0 || *end <= start {
		return common.EndOfDay
	}
	return *end
}

func (s Slot) EffectiveEnd() common.ClockTime {
	return EffectiveEnd(s.Start, s.End)
}

// Overlaps is symmetric, a slot never overlaps itself.
func Overlaps(a, b Slot) bool {
	if a.EventID == b.EventID || !a.Date.Equal(b.Date.Time) {
		return false
	}
	return b.Start < a.EffectiveEnd() && b.EffectiveEnd() > a.Start
}

// Conflicts returns the slots of existing that overlap candidate, in input order.
func Conflicts(candidate Slot, existing []Slot) []Slot {
	r := []Slot{}
	for _, s := range existing {
		if Overlaps(candidate, s) {
			r = append(r, s)
		}
	}
	return r
}

// Describe renders "Name (HH:MM - HH:MM)", or "Name (HH:MM)" without end time.
func Describe(s Slot) string {
	if s.End == nil {
		return fmt.Sprintf("%s (%s)", s.Name, s.Start)
	}
	return fmt.Sprintf("%s (%s - %s)", s.Name, s.Start, *s.End)
}

func DescribeAll(slots []Slot) []string {
	r := make([]string, 0, len(slots))
	for _, s := range slots {
		r = append(r, Describe(s))
	}
	return r
}
