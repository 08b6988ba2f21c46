// Package attendance holds the canonical time-of-day policy for check-in and
// check-out transitions. Every caller goes through the same Policy instance;
// window boundaries are configuration, never call-site constants.
package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a time-of-day with minute resolution, e.g. "09:15".
type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClockTime(raw string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: want HH:MM", raw)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in clock time %q", raw)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in clock time %q", raw)
	}

	return ClockTime{Hour: hour, Minute: minute}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On anchors the clock time to the calendar day of t, in t's location.
func (c ClockTime) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

func (c ClockTime) minutes() int {
	return c.Hour*60 + c.Minute
}

// Policy defines the attendance windows for one calendar day:
//
//	CheckInOpen <= LateThreshold < CheckInClose, and check-out is accepted
//	at or before CheckOutCutoff.
//
// A check-in strictly after LateThreshold is classified late.
type Policy struct {
	CheckInOpen    ClockTime
	LateThreshold  ClockTime
	CheckInClose   ClockTime
	CheckOutCutoff ClockTime
	Location       *time.Location
}

// Default mirrors the standard office schedule: doors open at 09:00, arrivals
// after 09:15 are late, no new check-ins after 12:00, check-out closes 15:55.
func Default() Policy {
	return Policy{
		CheckInOpen:    ClockTime{Hour: 9, Minute: 0},
		LateThreshold:  ClockTime{Hour: 9, Minute: 15},
		CheckInClose:   ClockTime{Hour: 12, Minute: 0},
		CheckOutCutoff: ClockTime{Hour: 15, Minute: 55},
		Location:       time.Local,
	}
}

func (p Policy) Validate() error {
	if p.Location == nil {
		return fmt.Errorf("attendance policy: location is required")
	}
	if p.CheckInOpen.minutes() > p.LateThreshold.minutes() {
		return fmt.Errorf("attendance policy: check-in open %s is after late threshold %s",
			p.CheckInOpen, p.LateThreshold)
	}
	if p.LateThreshold.minutes() >= p.CheckInClose.minutes() {
		return fmt.Errorf("attendance policy: late threshold %s must be before check-in close %s",
			p.LateThreshold, p.CheckInClose)
	}
	return nil
}

// Now returns the current instant in the policy's location.
func (p Policy) Now(t time.Time) time.Time {
	return t.In(p.Location)
}

// WithinCheckInWindow reports whether a new check-in is accepted at t.
// Both boundaries are inclusive.
func (p Policy) WithinCheckInWindow(t time.Time) bool {
	t = t.In(p.Location)
	return !t.Before(p.CheckInOpen.On(t)) && !t.After(p.CheckInClose.On(t))
}

// IsLate reports whether a check-in at t is classified late. The boundary is
// strict: a check-in at exactly the threshold instant is still present.
func (p Policy) IsLate(t time.Time) bool {
	t = t.In(p.Location)
	return t.After(p.LateThreshold.On(t))
}

// WithinCheckOutWindow reports whether a check-out is accepted at t.
// Check-out is allowed at or before the cutoff instant.
func (p Policy) WithinCheckOutWindow(t time.Time) bool {
	t = t.In(p.Location)
	return !t.After(p.CheckOutCutoff.On(t))
}

// Day returns the calendar date key for t in the policy's location.
func (p Policy) Day(t time.Time) string {
	return t.In(p.Location).Format("2006-01-02")
}
