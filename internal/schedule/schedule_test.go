package schedule

import (
	"testing"
	"time"

	"dataforge/internal/store"
)

func TestNextRun_Intervals(t *testing.T) {
	ref := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		freq store.Frequency
		want time.Time
	}{
		{"Once", store.FrequencyOnce, ref},
		{"Hourly", store.FrequencyHourly, ref.Add(time.Hour)},
		{"Daily", store.FrequencyDaily, ref.Add(24 * time.Hour)},
		{"Weekly", store.FrequencyWeekly, ref.Add(7 * 24 * time.Hour)},
		{"Monthly", store.FrequencyMonthly, time.Date(2025, time.April, 10, 14, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRun(tt.freq, ref)
			if !got.Equal(tt.want) {
				t.Errorf("NextRun(%s) = %v, want %v", tt.freq, got, tt.want)
			}
		})
	}
}

func TestNextRun_StrictlyAfterReference(t *testing.T) {
	refs := []time.Time{
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 15, 23, 59, 59, 0, time.UTC),
		time.Date(2025, time.December, 31, 12, 0, 0, 0, time.UTC),
	}
	freqs := []store.Frequency{
		store.FrequencyHourly, store.FrequencyDaily,
		store.FrequencyWeekly, store.FrequencyMonthly,
	}

	for _, ref := range refs {
		for _, f := range freqs {
			if got := NextRun(f, ref); !got.After(ref) {
				t.Errorf("NextRun(%s, %v) = %v, not after reference", f, ref, got)
			}
		}
		// Once is the only frequency that returns the reference unchanged.
		if got := NextRun(store.FrequencyOnce, ref); !got.Equal(ref) {
			t.Errorf("NextRun(once, %v) = %v, want reference unchanged", ref, got)
		}
	}
}

func TestNextRun_Idempotent(t *testing.T) {
	// For interval-based frequencies, advancing twice adds the same
	// interval both times.
	ref := time.Date(2025, time.February, 3, 8, 15, 0, 0, time.UTC)
	freqs := []store.Frequency{
		store.FrequencyHourly, store.FrequencyDaily, store.FrequencyWeekly,
	}

	for _, f := range freqs {
		first := NextRun(f, ref)
		second := NextRun(f, first)
		if second.Sub(first) != first.Sub(ref) {
			t.Errorf("NextRun(%s) interval drifted: %v then %v", f, first.Sub(ref), second.Sub(first))
		}
	}
}

func TestNextRun_MonthlyClampsToLastDay(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{
			name: "Jan 31 to Feb 28",
			ref:  time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.February, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "Jan 31 to Feb 29 leap year",
			ref:  time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "Mar 31 to Apr 30",
			ref:  time.Date(2025, time.March, 31, 18, 45, 0, 0, time.UTC),
			want: time.Date(2025, time.April, 30, 18, 45, 0, 0, time.UTC),
		},
		{
			name: "Dec crosses year boundary",
			ref:  time.Date(2025, time.December, 15, 6, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.January, 15, 6, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRun(store.FrequencyMonthly, tt.ref)
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCronSpec(t *testing.T) {
	ref := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC) // a Monday

	tests := []struct {
		freq store.Frequency
		want string
	}{
		{store.FrequencyOnce, "30 14 10 3 *"},
		{store.FrequencyHourly, "30 * * * *"},
		{store.FrequencyDaily, "30 14 * * *"},
		{store.FrequencyWeekly, "30 14 * * 1"},
		{store.FrequencyMonthly, "30 14 10 * *"},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			got, err := CronSpec(tt.freq, ref)
			if err != nil {
				t.Fatalf("CronSpec(%s) error: %v", tt.freq, err)
			}
			if got != tt.want {
				t.Errorf("CronSpec(%s) = %q, want %q", tt.freq, got, tt.want)
			}
		})
	}
}

func TestCronSpec_UnknownFrequency(t *testing.T) {
	if _, err := CronSpec(store.Frequency("fortnightly"), time.Now()); err == nil {
		t.Error("expected error for unknown frequency, got nil")
	}
}

func TestValidFrequency(t *testing.T) {
	if !ValidFrequency(store.FrequencyWeekly) {
		t.Error("weekly should be valid")
	}
	if ValidFrequency(store.Frequency("yearly")) {
		t.Error("yearly should not be valid")
	}
}
