package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidClock    = errors.New("time must use HH:MM format")
	ErrInvalidTimeSlot = errors.New("start time must be before end time")
	ErrInvalidWeekday  = errors.New("invalid day name")
)

// Weekdays in calendar order, lowercase as stored in schedules.
var Weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Allowed consultation lengths in minutes.
var SessionDurations = []int{15, 30, 60}

const DefaultSessionDuration = 30

// TimeSlot is a same-day interval in HH:MM.
type TimeSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// DaySchedule holds the working intervals of one weekday.
type DaySchedule struct {
	IsWorking bool       `json:"is_working"`
	TimeSlots []TimeSlot `json:"time_slots"`
}

// WeeklySchedule maps a lowercase weekday name to its working intervals.
type WeeklySchedule map[string]DaySchedule

// ParseClock converts HH:MM to minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, ErrInvalidClock
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes after midnight to HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// WeekdayName returns the schedule key for the date's weekday.
func WeekdayName(date time.Time) string {
	return Weekdays[int(date.Weekday())]
}

func IsValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

func IsValidSessionDuration(minutes int) bool {
	for _, d := range SessionDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// Bounds returns the slot as minutes after midnight.
func (s TimeSlot) Bounds() (int, int, error) {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("start_time %q: %w", s.StartTime, err)
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("end_time %q: %w", s.EndTime, err)
	}
	if start >= end {
		return 0, 0, ErrInvalidTimeSlot
	}
	return start, end, nil
}

func (s TimeSlot) Validate() error {
	_, _, err := s.Bounds()
	return err
}

// Overlaps reports whether the two half-open intervals intersect.
// HH:MM strings compare correctly as text.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.StartTime < o.EndTime && o.StartTime < s.EndTime
}

// Contains reports whether o lies entirely inside s.
func (s TimeSlot) Contains(o TimeSlot) bool {
	return s.StartTime <= o.StartTime && o.EndTime <= s.EndTime
}

func (s TimeSlot) String() string {
	return s.StartTime + "-" + s.EndTime
}

// Validate checks day names and every interval of the working days.
func (w WeeklySchedule) Validate() error {
	for day, ds := range w {
		if !IsValidWeekday(day) {
			return fmt.Errorf("%w: %s", ErrInvalidWeekday, day)
		}
		if !ds.IsWorking {
			continue
		}
		for _, slot := range ds.TimeSlots {
			if err := slot.Validate(); err != nil {
				return fmt.Errorf("%s %s: %w", day, slot, err)
			}
		}
	}
	return nil
}

// Normalize lowercases day names and trims surrounding whitespace.
func (w WeeklySchedule) Normalize() WeeklySchedule {
	out := make(WeeklySchedule, len(w))
	for day, ds := range w {
		out[strings.ToLower(strings.TrimSpace(day))] = ds
	}
	return out
}

// ForDate returns the working intervals for the weekday of date.
func (w WeeklySchedule) ForDate(date time.Time) (DaySchedule, bool) {
	ds, ok := w[WeekdayName(date)]
	return ds, ok
}

func (w WeeklySchedule) HasWorkingDay() bool {
	for _, ds := range w {
		if ds.IsWorking && len(ds.TimeSlots) > 0 {
			return true
		}
	}
	return false
}

// GenerateSlots tiles each working interval with sessions of the given
// length. A trailing remainder shorter than a session is dropped.
func (d DaySchedule) GenerateSlots(sessionMinutes int) []TimeSlot {
	if !d.IsWorking || sessionMinutes <= 0 {
		return nil
	}
	var slots []TimeSlot
	for _, interval := range d.TimeSlots {
		start, end, err := interval.Bounds()
		if err != nil {
			continue
		}
		for cur := start; cur+sessionMinutes <= end; cur += sessionMinutes {
			slots = append(slots, TimeSlot{
				StartTime: FormatClock(cur),
				EndTime:   FormatClock(cur + sessionMinutes),
			})
		}
	}
	return slots
}

// Covers reports whether slot fits inside one working interval.
func (d DaySchedule) Covers(slot TimeSlot) bool {
	for _, interval := range d.TimeSlots {
		if interval.Contains(slot) {
			return true
		}
	}
	return false
}
