package schedule

import (
	"fmt"
	"strings"
	"time"
)

const stLayout = "15:04:05"

// TODAY anchors parsed wall-clock times to a concrete date so
// they can be compared against real timestamps. Overridable for
// tests.
var TODAY time.Time = time.Now()

// Time is a wall clock time of day anchored to TODAY's date.
type Time time.Time

func ParseTime(value string) (Time, error) {
	nt, err := time.Parse(stLayout, value)
	if err != nil {
		return Time{}, err
	}
	return anchor(nt), nil
}

func anchor(nt time.Time) Time {
	return Time(time.Date(
		TODAY.Year(),
		TODAY.Month(),
		TODAY.Day(),
		nt.Hour(),
		nt.Minute(),
		nt.Second(),
		nt.Nanosecond(),
		nt.Location(),
	))
}

func (st *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	nt, err := time.Parse(stLayout, s)
	if err != nil {
		return err
	}
	*st = anchor(nt)
	return nil
}

func (st *Time) MarshalJSON() ([]byte, error) {
	return []byte(st.String()), nil
}

func (st *Time) Before(u Time) bool {
	return time.Time(*st).Before(time.Time(u))
}

func (st *Time) After(u Time) bool {
	return time.Time(*st).After(time.Time(u))
}

func (st *Time) Sub(u time.Time) time.Duration {
	return time.Time(*st).Sub(u)
}

func (st *Time) Weekday() time.Weekday { return time.Time(*st).Weekday() }
func (st *Time) Year() int             { return time.Time(*st).Year() }
func (st *Time) Month() time.Month     { return time.Time(*st).Month() }
func (st *Time) Day() int              { return time.Time(*st).Day() }
func (st *Time) Hour() int             { return time.Time(*st).Hour() }
func (st *Time) Minute() int           { return time.Time(*st).Minute() }
func (st *Time) Second() int           { return time.Time(*st).Second() }
func (st *Time) Nanosecond() int       { return time.Time(*st).Nanosecond() }

func (st *Time) Location() *time.Location { return time.Time(*st).Location() }

func (st *Time) String() string {
	return fmt.Sprintf("%q", time.Time(*st).Format(stLayout))
}

// OnOffTimes holds the optional switch on and switch off wall
// clock times for a single day.
type OnOffTimes struct {
	On  *Time `json:"on"`
	Off *Time `json:"off"`
}

// Week maps each weekday to its on/off entry. An entirely empty
// week means the stream is always on.
type Week struct {
	Monday    OnOffTimes `json:"monday"`
	Tuesday   OnOffTimes `json:"tuesday"`
	Wednesday OnOffTimes `json:"wednesday"`
	Thursday  OnOffTimes `json:"thursday"`
	Friday    OnOffTimes `json:"friday"`
	Saturday  OnOffTimes `json:"saturday"`
	Sunday    OnOffTimes `json:"sunday"`
}

func (w *Week) onDay(day time.Weekday) *OnOffTimes {
	switch day {
	case time.Monday:
		return &w.Monday
	case time.Tuesday:
		return &w.Tuesday
	case time.Wednesday:
		return &w.Wednesday
	case time.Thursday:
		return &w.Thursday
	case time.Friday:
		return &w.Friday
	case time.Saturday:
		return &w.Saturday
	}
	return &w.Sunday
}

type Schedule interface {
	IsOn(Time) bool
}

func NewSchedule(w Week) Schedule {
	return &schedule{week: w}
}

type schedule struct {
	week Week
}

// IsOn reports whether the given time falls within an on period.
// The latest on/off entry at or before the given time wins, a day
// with no entries inherits whatever state the previous days left
// the stream in.
func (s *schedule) IsOn(t Time) bool {
	day := t.Weekday()
	for i := 0; i < 7; i++ {
		entry := s.week.onDay(day)
		if on := latestSwitchState(t, entry, i == 0); on != nil {
			return *on
		}
		day = previousWeekday(day)
	}
	return true
}

// latestSwitchState resolves the most recent state change a day's
// entry applies. For the current day only changes at or before the
// query time count, previous days apply their final state.
func latestSwitchState(t Time, entry *OnOffTimes, sameDay bool) *bool {
	applies := func(st *Time) bool {
		if st == nil {
			return false
		}
		if !sameDay {
			return true
		}
		return !t.Before(*st)
	}

	onApplies, offApplies := applies(entry.On), applies(entry.Off)
	on, off := true, false
	switch {
	case onApplies && offApplies:
		if entry.On.After(*entry.Off) {
			return &on
		}
		return &off
	case onApplies:
		return &on
	case offApplies:
		return &off
	}
	return nil
}

func previousWeekday(day time.Weekday) time.Weekday {
	if day == time.Sunday {
		return time.Saturday
	}
	return day - 1
}
