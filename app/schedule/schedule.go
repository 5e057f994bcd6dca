package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrNoSchedules is returned by NextFire when the set is empty. A non-empty
// set of valid 5-field expressions always has a future fire time.
var ErrNoSchedules = errors.New("schedule set is empty")

// parser accepts standard 5-field cron expressions
// (minute, hour, day-of-month, month, day-of-week).
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

type entry struct {
	expr string
	spec cron.Schedule
}

// Set holds a group of parsed cron schedules. Immutable once parsed.
type Set struct {
	entries []entry
}

// Parse parses all expressions or none: a single invalid expression rejects
// the whole set, with the offending expression named in the error.
func Parse(exprs []string) (*Set, error) {
	set := &Set{entries: make([]entry, 0, len(exprs))}

	for _, expr := range exprs {
		spec, err := parser.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
		}
		set.entries = append(set.entries, entry{expr: expr, spec: spec})
	}

	return set, nil
}

func (s *Set) Len() int {
	return len(s.entries)
}

// Expressions returns the source expressions in parse order.
func (s *Set) Expressions() []string {
	exprs := make([]string, len(s.entries))
	for i, e := range s.entries {
		exprs[i] = e.expr
	}
	return exprs
}

// NextFire returns the earliest instant strictly after the minute containing
// "after" that matches at least one schedule in the set.
func (s *Set) NextFire(after time.Time) (time.Time, error) {
	if len(s.entries) == 0 {
		return time.Time{}, ErrNoSchedules
	}

	after = after.Truncate(time.Minute)

	var earliest time.Time
	for _, e := range s.entries {
		next := e.spec.Next(after)
		if earliest.IsZero() || next.Before(earliest) {
			earliest = next
		}
	}

	return earliest, nil
}

// Matches reports whether any schedule in the set accepts the given instant,
// truncated to minute resolution.
func (s *Set) Matches(t time.Time) bool {
	t = t.Truncate(time.Minute)

	// A 5-field schedule only fires on whole minutes, so t matches exactly
	// when it is the first fire time after the preceding minute.
	for _, e := range s.entries {
		if e.spec.Next(t.Add(-time.Minute)).Equal(t) {
			return true
		}
	}
	return false
}
