package display

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestAgo(t *testing.T) {
	now := time.Date(2024, time.March, 14, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		now  time.Time
		then time.Time
		exp  string
	}{
		"same instant": {
			now: now, then: now,
			exp: "just now",
		},
		"less than a minute": {
			now: now, then: now.Add(-30 * time.Second),
			exp: "just now",
		},
		"in the future": {
			now: now, then: now.Add(time.Hour),
			exp: "just now",
		},
		"minutes": {
			now: now, then: now.Add(-5 * time.Minute),
			exp: "5 minutes ago",
		},
		"just under an hour": {
			now: now, then: now.Add(-59*time.Minute - 59*time.Second),
			exp: "59 minutes ago",
		},
		"one hour": {
			now: now, then: now.Add(-time.Hour),
			exp: "1 hours ago",
		},
		"just under a day": {
			now: now, then: now.Add(-23*time.Hour - 59*time.Minute),
			exp: "23 hours ago",
		},
		"whole days": {
			now: now, then: now.AddDate(0, 0, -3),
			exp: "3 days ago",
		},
		"calendar days not elapsed days": {
			now: now, then: time.Date(2024, time.March, 12, 13, 0, 0, 0, time.UTC),
			exp: "2 days ago",
		},
		"across the end of february": {
			now:  time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC),
			then: time.Date(2023, time.January, 31, 12, 0, 0, 0, time.UTC),
			exp:  "1 days ago",
		},
		"month clamps to leap day": {
			now: now, then: time.Date(2024, time.January, 29, 12, 0, 0, 0, time.UTC),
			exp: "1 months ago",
		},
		"months": {
			now: now, then: time.Date(2023, time.September, 1, 8, 0, 0, 0, time.UTC),
			exp: "6 months ago",
		},
		"years": {
			now: now, then: time.Date(2021, time.February, 8, 8, 0, 0, 0, time.UTC),
			exp: "3 years ago",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "ago", Ago(tt.now, tt.then), tt.exp)
		})
	}
}

func TestPeriodBetween(t *testing.T) {
	tests := map[string]struct {
		start time.Time
		end   time.Time
		exp   period
	}{
		"same day": {
			start: time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2024, time.May, 5, 23, 0, 0, 0, time.UTC),
			exp:   period{},
		},
		"borrow a month": {
			start: time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			exp:   period{months: 1, days: 19},
		},
		"year and a bit": {
			start: time.Date(2022, time.June, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2023, time.August, 4, 0, 0, 0, 0, time.UTC),
			exp:   period{years: 1, months: 2, days: 3},
		},
		"backwards": {
			start: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
			exp:   period{months: -1, days: -21},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := periodBetween(tt.start, tt.end)
			testutil.AssertEqual(t, "years", p.years, tt.exp.years)
			testutil.AssertEqual(t, "months", p.months, tt.exp.months)
			testutil.AssertEqual(t, "days", p.days, tt.exp.days)
		})
	}
}
