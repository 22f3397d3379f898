package schedule_test

import (
	"primor/common"
	"primor/domain/schedule"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func at(h, m int) common.ClockTime {
	return common.NewClockTime(h, m)
}

func until(h, m int) *common.ClockTime {
	t := common.NewClockTime(h, m)
	return &t
}

var day = common.NewDate(2024, time.May, 10)

func slot(id uint64, name string, start common.ClockTime, end *common.ClockTime) schedule.Slot {
	return schedule.Slot{EventID: typesID(id), Name: name, Date: day, Start: start, End: end}
}

var _ = Describe("EffectiveEnd", func() {
	It("should keep an end after the start", func() {
		Expect(schedule.EffectiveEnd(at(18, 0), until(22, 0))).To(Equal(at(22, 0)))
	})

	It("should clamp to end of day", func() {
		Expect(schedule.EffectiveEnd(at(18, 0), nil)).To(Equal(common.EndOfDay))
		Expect(schedule.EffectiveEnd(at(18, 0), until(0, 0))).To(Equal(common.EndOfDay))
		Expect(schedule.EffectiveEnd(at(22, 0), until(2, 0))).To(Equal(common.EndOfDay))
		Expect(schedule.EffectiveEnd(at(18, 0), until(18, 0))).To(Equal(common.EndOfDay))
	})
})

var _ = Describe("Overlaps", func() {
	It("should detect overlapping intervals", func() {
		a := slot(1, "A", at(18, 0), until(22, 0))
		b := slot(2, "B", at(20, 0), until(23, 0))
		Expect(schedule.Overlaps(a, b)).To(BeTrue())
		Expect(schedule.Overlaps(b, a)).To(BeTrue())
	})

	It("should not flag disjoint intervals", func() {
		c := slot(3, "C", at(10, 0), until(14, 0))
		d := slot(4, "D", at(18, 0), until(22, 0))
		Expect(schedule.Overlaps(c, d)).To(BeFalse())
		Expect(schedule.Overlaps(d, c)).To(BeFalse())
	})

	It("should not flag touching boundaries", func() {
		a := slot(1, "A", at(10, 0), until(14, 0))
		b := slot(2, "B", at(14, 0), until(18, 0))
		Expect(schedule.Overlaps(a, b)).To(BeFalse())
		Expect(schedule.Overlaps(b, a)).To(BeFalse())
	})

	It("should extend open ended events to the end of the day", func() {
		open := slot(1, "Open", at(18, 0), nil)
		late := slot(2, "Late", at(23, 0), until(23, 30))
		Expect(schedule.Overlaps(open, late)).To(BeTrue())

		overnight := slot(3, "Overnight", at(22, 0), until(2, 0))
		Expect(schedule.Overlaps(overnight, late)).To(BeTrue())
		early := slot(4, "Early", at(8, 0), until(12, 0))
		Expect(schedule.Overlaps(overnight, early)).To(BeFalse())
	})

	It("should ignore other days and the event itself", func() {
		a := slot(1, "A", at(18, 0), until(22, 0))
		other := a
		other.EventID = typesID(2)
		other.Date = day.AddDays(1)
		Expect(schedule.Overlaps(a, other)).To(BeFalse())
		Expect(schedule.Overlaps(a, a)).To(BeFalse())
	})
})

var _ = Describe("Conflicts", func() {
	It("should return overlapping slots in order", func() {
		candidate := slot(9, "New", at(19, 0), until(21, 0))
		existing := []schedule.Slot{
			slot(1, "Morning", at(8, 0), until(12, 0)),
			slot(2, "Dinner", at(18, 0), until(22, 0)),
			slot(3, "Party", at(20, 30), nil),
		}
		conflicts := schedule.Conflicts(candidate, existing)
		Expect(schedule.DescribeAll(conflicts)).To(Equal([]string{"Dinner (18:00 - 22:00)", "Party (20:30)"}))
	})

	It("should return empty list without overlaps", func() {
		Expect(schedule.Conflicts(slot(1, "A", at(8, 0), until(9, 0)), nil)).To(BeEmpty())
	})
})
