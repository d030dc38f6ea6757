// Package adherence holds the pure dose-status logic shared by the patient
// dashboard, the caretaker view, and the missed-dose alert job: deciding
// whether a scheduled dose is taken, still pending, or missed.
package adherence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Notification window bounds, in minutes. Enforced by the profile service;
// the evaluator assumes its input is already within range.
const (
	MinWindowMinutes = 15
	MaxWindowMinutes = 480
)

// ParseClock parses a 24-hour "HH:MM" string. A single-digit hour is
// accepted ("8:00"), matching what the medication form lets through.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// Deadline returns the instant after which a dose scheduled at the given
// clock time counts as missed: today's date (relative to now) at HH:MM plus
// the notification window. With a late schedule and a wide window the
// deadline can land on the following calendar day; time.Time arithmetic
// handles the rollover.
//
// No timezone conversion is performed. The scheduled time is interpreted in
// now's location, so the server clock and the patients' schedules must share
// one timezone.
func Deadline(scheduled string, windowMinutes int, now time.Time) (time.Time, error) {
	hour, minute, err := ParseClock(scheduled)
	if err != nil {
		return time.Time{}, err
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	return at.Add(time.Duration(windowMinutes) * time.Minute), nil
}

// IsMissedAt reports whether a dose scheduled at the given clock time is
// overdue at the given instant. The boundary is exclusive: exactly at the
// deadline is not missed. An unparseable scheduled time is never missed;
// validation upstream keeps those out of the store.
func IsMissedAt(scheduled string, windowMinutes int, now time.Time) bool {
	deadline, err := Deadline(scheduled, windowMinutes, now)
	if err != nil {
		return false
	}
	return now.After(deadline)
}

// IsMissed is IsMissedAt evaluated against the current wall clock.
func IsMissed(scheduled string, windowMinutes int) bool {
	return IsMissedAt(scheduled, windowMinutes, time.Now())
}
