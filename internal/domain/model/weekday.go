package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"meal-subscriptions/internal/domain"
)

// Weekday is the wire and storage name of a day of the week.
type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// AllWeekdays is ordered like time.Weekday (Sunday first).
var AllWeekdays = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var weekdayByName = map[Weekday]time.Weekday{
	Sunday:    time.Sunday,
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
}

// ParseWeekday accepts full names and three-letter abbreviations, case-insensitive.
func ParseWeekday(s string) (Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, d := range AllWeekdays {
		if v == string(d) || v == string(d)[:3] {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q: %w", s, domain.ErrInvalidArgument)
}

func WeekdayOf(t time.Time) Weekday { return AllWeekdays[t.Weekday()] }

func (d Weekday) Valid() bool {
	_, ok := weekdayByName[d]
	return ok
}

func (d Weekday) TimeWeekday() time.Weekday { return weekdayByName[d] }

// WeekdaySet is a bit set indexed by time.Weekday.
type WeekdaySet uint8

func NewWeekdaySet(days ...Weekday) (WeekdaySet, error) {
	var s WeekdaySet
	for _, d := range days {
		if !d.Valid() {
			return 0, fmt.Errorf("unknown weekday %q: %w", d, domain.ErrInvalidArgument)
		}
		s = s.With(d.TimeWeekday())
	}
	return s, nil
}

// ParseWeekdaySet parses names as stored in the database.
func ParseWeekdaySet(names []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			return 0, err
		}
		s = s.With(d.TimeWeekday())
	}
	return s, nil
}

func (s WeekdaySet) With(d time.Weekday) WeekdaySet { return s | 1<<uint(d) }

func (s WeekdaySet) Has(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }

func (s WeekdaySet) Empty() bool { return s&0x7f == 0 }

// Days returns the members in Sunday-first order.
func (s WeekdaySet) Days() []Weekday {
	out := make([]Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, AllWeekdays[d])
		}
	}
	return out
}

// Names is the text[] representation used by the repositories.
func (s WeekdaySet) Names() []string {
	days := s.Days()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}
	return out
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) { return json.Marshal(s.Names()) }

func (s *WeekdaySet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	p, err := ParseWeekdaySet(names)
	if err != nil {
		return err
	}
	*s = p
	return nil
}
