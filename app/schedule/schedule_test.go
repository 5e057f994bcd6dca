package schedule

import (
	"testing"
	"time"
)

// bruteForceNextFire scans minute by minute until a matching instant is
// found. Used as the correctness oracle for NextFire.
func bruteForceNextFire(t *testing.T, set *Set, after time.Time, limit time.Duration) time.Time {
	t.Helper()

	instant := after.Truncate(time.Minute).Add(time.Minute)
	deadline := after.Add(limit)
	for instant.Before(deadline) {
		if set.Matches(instant) {
			return instant
		}
		instant = instant.Add(time.Minute)
	}

	t.Fatalf("no matching instant within %s of %s", limit, after)
	return time.Time{}
}

func TestParse_AllOrNothing(t *testing.T) {
	_, err := Parse([]string{"45 7 * * *", "not a cron"})
	if err == nil {
		t.Fatal("Expected error for invalid expression in set")
	}

	_, err = Parse([]string{"45 7 * * *", "0 17 * * 1-5"})
	if err != nil {
		t.Fatalf("Expected valid set to parse, got: %v", err)
	}
}

func TestParse_RejectsOutOfRangeFields(t *testing.T) {
	invalid := []string{
		"60 * * * *",    // minute out of range
		"* 24 * * *",    // hour out of range
		"* * 32 * *",    // day of month out of range
		"* * * 13 *",    // month out of range
		"* * * * 8",     // day of week out of range
		"* * * *",       // too few fields
		"* * * * * *",   // too many fields
		"",              // empty
	}

	for _, expr := range invalid {
		if _, err := Parse([]string{expr}); err == nil {
			t.Errorf("Expected parse error for %q", expr)
		}
	}
}

func TestNextFire_EmptySet(t *testing.T) {
	set, err := Parse(nil)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}

	if _, err := set.NextFire(time.Now()); err != ErrNoSchedules {
		t.Errorf("Expected ErrNoSchedules, got: %v", err)
	}
}

func TestNextFire_EarliestAcrossSchedules(t *testing.T) {
	set, err := Parse([]string{"45 7 * * *", "0 17 * * *"})
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}

	after := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	next, err := set.NextFire(after)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Expected next fire at %s, got %s", want, next)
	}
}

func TestNextFire_StrictlyAfter(t *testing.T) {
	set, err := Parse([]string{"30 12 * * *"})
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}

	// Asking from the fire instant itself must skip to the next day.
	after := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	next, err := set.NextFire(after)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := time.Date(2024, 3, 16, 12, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Expected next fire at %s, got %s", want, next)
	}
}

func TestNextFire_SubMinuteOffsetIgnored(t *testing.T) {
	set, err := Parse([]string{"0 * * * *"})
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}

	after := time.Date(2024, 3, 15, 8, 59, 42, 0, time.UTC)
	next, err := set.NextFire(after)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Expected next fire at %s, got %s", want, next)
	}
}

func TestNextFire_MatchesBruteForceScan(t *testing.T) {
	cases := []struct {
		name  string
		exprs []string
		after time.Time
	}{
		{
			name:  "every five minutes",
			exprs: []string{"*/5 * * * *"},
			after: time.Date(2024, 3, 15, 8, 3, 0, 0, time.UTC),
		},
		{
			name:  "two daily schedules",
			exprs: []string{"45 7 * * *", "0 17 * * *"},
			after: time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "weekday mornings",
			exprs: []string{"15 9 * * 1-5"},
			after: time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC), // a Saturday
		},
		{
			name:  "first of month",
			exprs: []string{"0 0 1 * *"},
			after: time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set, err := Parse(tc.exprs)
			if err != nil {
				t.Fatalf("Unexpected parse error: %v", err)
			}

			got, err := set.NextFire(tc.after)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			want := bruteForceNextFire(t, set, tc.after, 45*24*time.Hour)
			if !got.Equal(want) {
				t.Errorf("NextFire = %s, brute-force scan = %s", got, want)
			}

			if !got.After(tc.after) {
				t.Errorf("NextFire %s is not strictly after %s", got, tc.after)
			}
		})
	}
}

func TestMatches_DayOfMonthDayOfWeekUnion(t *testing.T) {
	// When both day fields are restricted, standard cron matches on either.
	set, err := Parse([]string{"0 0 13 * 5"})
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}

	friday := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)     // Friday, not the 13th
	thirteenth := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC) // Wednesday the 13th
	neither := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)    // Thursday the 14th

	if !set.Matches(friday) {
		t.Error("Expected Friday to match via day-of-week")
	}
	if !set.Matches(thirteenth) {
		t.Error("Expected the 13th to match via day-of-month")
	}
	if set.Matches(neither) {
		t.Error("Expected Thursday the 14th not to match")
	}
}

func TestMatches_MinuteResolution(t *testing.T) {
	set, err := Parse([]string{"30 12 * * *"})
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}

	within := time.Date(2024, 3, 15, 12, 30, 45, 0, time.UTC)
	if !set.Matches(within) {
		t.Error("Expected instant within the matching minute to match")
	}

	outside := time.Date(2024, 3, 15, 12, 31, 0, 0, time.UTC)
	if set.Matches(outside) {
		t.Error("Expected adjacent minute not to match")
	}
}
