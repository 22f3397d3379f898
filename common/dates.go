package common

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	DisplayDateLayout = "02/01/2006"
)

// Date is a calendar day without time zone, persisted as YYYY-MM-DD text.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD and DD/MM/YYYY.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	layout := DateLayout
	if strings.Contains(s, "/") {
		layout = DisplayDateLayout
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Display() string {
	return d.Format(DisplayDateLayout)
}

func (d Date) AddDays(days int) Date {
	return Date{Time: d.Time.AddDate(0, 0, days)}
}

func (d Date) FirstDayOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(v interface{}) error {
	switch value := v.(type) {
	case string:
		return d.parseStored(value)
	case []byte:
		return d.parseStored(string(value))
	case time.Time:
		*d = DateOf(value)
		return nil
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
	}
}

func (d *Date) parseStored(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ClockTime is a time of day in seconds since midnight, persisted as HH:MM:SS text.
type ClockTime int

const EndOfDay = ClockTime(23*3600 + 59*60 + 59)

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*3600 + minute*60)
}

// ParseClockTime accepts HH:MM and HH:MM:SS.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	var hour, minute, second int
	var n int
	var err error
	if strings.Count(s, ":") == 2 {
		n, err = fmt.Sscanf(s, "%d:%d:%d", &hour, &minute, &second)
		if n != 3 {
			err = fmt.Errorf("invalid time %q", s)
		}
	} else {
		n, err = fmt.Sscanf(s, "%d:%d", &hour, &minute)
		if n != 2 {
			err = fmt.Errorf("invalid time %q", s)
		}
	}
	if err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return ClockTime(hour*3600 + minute*60 + second), nil
}

func (t ClockTime) Hour() int {
	return int(t) / 3600
}

func (t ClockTime) Minute() int {
	return int(t) % 3600 / 60
}

func (t ClockTime) Second() int {
	return int(t) % 60
}

// String formats as HH:MM, the precision used in messages and reports.
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t ClockTime) stored() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t ClockTime) Value() (driver.Value, error) {
	return t.stored(), nil
}

func (t *ClockTime) Scan(v interface{}) error {
	var s string
	switch value := v.(type) {
	case string:
		s = value
	case []byte:
		s = string(value)
	case time.Time:
		*t = ClockTime(value.Hour()*3600 + value.Minute()*60 + value.Second())
		return nil
	default:
		return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseOptionalClockTime reads a nil or blank value as no time.
func ParseOptionalClockTime(s *string) (*ClockTime, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	parsed, err := ParseClockTime(strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
