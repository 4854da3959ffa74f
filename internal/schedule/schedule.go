// Package schedule computes job run timing from a frequency and a
// reference time. All functions are pure; nothing here reads the clock.
package schedule

import (
	"fmt"
	"time"

	"dataforge/internal/store"

	"github.com/robfig/cron/v3"
)

// NextRun maps a frequency and a reference time to the next run timestamp.
// The reference time is the job's last_run if set, else its creation time.
// Once returns the reference unchanged: a once job runs a single time and
// is never rescheduled.
func NextRun(freq store.Frequency, ref time.Time) time.Time {
	switch freq {
	case store.FrequencyOnce:
		return ref
	case store.FrequencyHourly:
		return ref.Add(time.Hour)
	case store.FrequencyDaily:
		return ref.Add(24 * time.Hour)
	case store.FrequencyWeekly:
		return ref.Add(7 * 24 * time.Hour)
	case store.FrequencyMonthly:
		return addMonth(ref)
	default:
		return ref
	}
}

// addMonth advances t by one calendar month, preserving the day of month.
// If the target month is shorter, the day clamps to its last day.
func addMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// Day 0 of month+2 is the last day of month+1.
	lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month+1, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// CronSpec derives the cron-like schedule representation stored on a job.
// The spec is validated with the standard cron parser before it is returned.
func CronSpec(freq store.Frequency, ref time.Time) (string, error) {
	var spec string
	switch freq {
	case store.FrequencyOnce:
		spec = fmt.Sprintf("%d %d %d %d *", ref.Minute(), ref.Hour(), ref.Day(), int(ref.Month()))
	case store.FrequencyHourly:
		spec = fmt.Sprintf("%d * * * *", ref.Minute())
	case store.FrequencyDaily:
		spec = fmt.Sprintf("%d %d * * *", ref.Minute(), ref.Hour())
	case store.FrequencyWeekly:
		spec = fmt.Sprintf("%d %d * * %d", ref.Minute(), ref.Hour(), int(ref.Weekday()))
	case store.FrequencyMonthly:
		spec = fmt.Sprintf("%d %d %d * *", ref.Minute(), ref.Hour(), ref.Day())
	default:
		return "", fmt.Errorf("unknown frequency %q", freq)
	}

	if _, err := cron.ParseStandard(spec); err != nil {
		return "", fmt.Errorf("derived cron spec %q is invalid: %w", spec, err)
	}
	return spec, nil
}

// ValidFrequency reports whether f is one of the supported frequencies.
func ValidFrequency(f store.Frequency) bool {
	switch f {
	case store.FrequencyOnce, store.FrequencyHourly, store.FrequencyDaily,
		store.FrequencyWeekly, store.FrequencyMonthly:
		return true
	}
	return false
}
