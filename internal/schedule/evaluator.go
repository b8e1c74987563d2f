// Package schedule decides when medication reminders are due and drives
// the periodic evaluation loop.
//
// Matching is minute-exact: a reminder is due only during the exact
// wall-clock minute listed in its times. There is no catch-up for
// minutes that pass while the process is not running; a missed
// occurrence is dropped, matching the behavior users already rely on.
package schedule

import (
	"time"

	"github.com/lazypower/medtick/internal/store"
)

// MinuteKey formats an instant at the evaluator's resolution. Two ticks
// with the same key belong to the same occurrence.
func MinuteKey(now time.Time) string {
	return now.Format("2006-01-02 15:04")
}

// timeOfDay returns now's local wall-clock time as canonical "HH:MM".
func timeOfDay(now time.Time) string {
	return now.Format("15:04")
}

// weekday returns now's local weekday label, matching store.DaysOfWeek.
func weekday(now time.Time) string {
	return now.Weekday().String()
}

// DueAt returns the subset of reminders due at the given instant, in
// input order. It is pure and stateless; firing dedup within a minute
// is the Clock's job.
//
// Disabled reminders never match. As-needed reminders never match
// either: they are taken on user demand, not on a schedule.
func DueAt(now time.Time, reminders []store.Reminder) []store.Reminder {
	current := timeOfDay(now)
	day := weekday(now)

	var due []store.Reminder
	for _, r := range reminders {
		if !r.Enabled || r.Frequency == store.FrequencyAsNeeded {
			continue
		}
		if !containsTime(r.Times, current) {
			continue
		}
		switch r.Frequency {
		case store.FrequencyDaily:
			due = append(due, r)
		case store.FrequencyWeekly:
			if containsDay(r.Days, day) {
				due = append(due, r)
			}
		}
	}
	return due
}

func containsTime(times []string, want string) bool {
	for _, t := range times {
		if t == want {
			return true
		}
	}
	return false
}

func containsDay(days []string, want string) bool {
	for _, d := range days {
		if d == want {
			return true
		}
	}
	return false
}
