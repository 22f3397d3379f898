package common_test

import (
	"encoding/json"
	"primor/common"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Date", func() {
	Describe("ParseDate", func() {
		It("should accept iso and brazilian layouts", func() {
			d, err := common.ParseDate("2024-03-15")
			Expect(err).To(BeNil())
			Expect(d).To(Equal(common.NewDate(2024, time.March, 15)))

			d, err = common.ParseDate("15/03/2024")
			Expect(err).To(BeNil())
			Expect(d).To(Equal(common.NewDate(2024, time.March, 15)))
		})
		It("should reject malformed dates", func() {
			_, err := common.ParseDate("2024-13-01")
			Expect(err).ToNot(BeNil())
			_, err = common.ParseDate("tomorrow")
			Expect(err).ToNot(BeNil())
		})
	})

	Describe("Value and Scan", func() {
		It("should round trip through stored text", func() {
			d := common.NewDate(2024, time.January, 2)
			v, err := d.Value()
			Expect(err).To(BeNil())
			Expect(v).To(Equal("2024-01-02"))

			var scanned common.Date
			Expect(scanned.Scan("2024-01-02")).To(BeNil())
			Expect(scanned).To(Equal(d))
			Expect(scanned.Scan([]byte("2024-01-02 00:00:00"))).To(BeNil())
			Expect(scanned).To(Equal(d))
			Expect(scanned.Scan(time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local))).To(BeNil())
			Expect(scanned).To(Equal(d))
			Expect(scanned.Scan(1234)).ToNot(BeNil())
		})
	})

	Describe("JSON", func() {
		It("should marshal as iso text and unmarshal both layouts", func() {
			bytes, err := json.Marshal(common.NewDate(2024, time.June, 9))
			Expect(err).To(BeNil())
			Expect(string(bytes)).To(Equal(`"2024-06-09"`))

			var d common.Date
			Expect(json.Unmarshal([]byte(`"09/06/2024"`), &d)).To(BeNil())
			Expect(d.Display()).To(Equal("09/06/2024"))
			Expect(d.FirstDayOfMonth().String()).To(Equal("2024-06-01"))
			Expect(d.AddDays(30).String()).To(Equal("2024-07-09"))
		})
	})
})

var _ = Describe("ClockTime", func() {
	It("should parse HH:MM and HH:MM:SS", func() {
		t, err := common.ParseClockTime("18:30")
		Expect(err).To(BeNil())
		Expect(t).To(Equal(common.NewClockTime(18, 30)))
		Expect(t.String()).To(Equal("18:30"))

		t, err = common.ParseClockTime("23:59:59")
		Expect(err).To(BeNil())
		Expect(t).To(Equal(common.EndOfDay))
	})

	It("should reject out of range values", func() {
		_, err := common.ParseClockTime("24:00")
		Expect(err).ToNot(BeNil())
		_, err = common.ParseClockTime("12:60")
		Expect(err).ToNot(BeNil())
		_, err = common.ParseClockTime("noon")
		Expect(err).ToNot(BeNil())
	})

	It("should be stored with seconds", func() {
		v, err := common.NewClockTime(9, 5).Value()
		Expect(err).To(BeNil())
		Expect(v).To(Equal("09:05:00"))

		var t common.ClockTime
		Expect(t.Scan([]byte("09:05:00"))).To(BeNil())
		Expect(t).To(Equal(common.NewClockTime(9, 5)))
	})

	It("should be encoded as HH:MM in json", func() {
		bytes, err := json.Marshal(common.NewClockTime(7, 0))
		Expect(err).To(BeNil())
		Expect(string(bytes)).To(Equal(`"07:00"`))

		var t common.ClockTime
		Expect(json.Unmarshal([]byte(`"22:15"`), &t)).To(BeNil())
		Expect(t).To(Equal(common.NewClockTime(22, 15)))
	})

	It("should treat blank optional values as no time", func() {
		blank := " "
		t, err := common.ParseOptionalClockTime(&blank)
		Expect(err).To(BeNil())
		Expect(t).To(BeNil())

		t, err = common.ParseOptionalClockTime(nil)
		Expect(err).To(BeNil())
		Expect(t).To(BeNil())

		value := "02:00"
		t, err = common.ParseOptionalClockTime(&value)
		Expect(err).To(BeNil())
		Expect(*t).To(Equal(common.NewClockTime(2, 0)))

		bad := "25:00"
		_, err = common.ParseOptionalClockTime(&bad)
		Expect(err).ToNot(BeNil())
	})
})
