package display

import (
	"fmt"
	"time"
)

// Ago describes how long before now then was, in the coarsest sensible unit.
//
// Below 30 elapsed days the day count is the days part of the calendar
// period between the two dates, not elapsed hours / 24. Near the end of
// February that makes e.g. Jan 31 -> Mar 1 read "1 days ago".
func Ago(now, then time.Time) string {
	elapsed := now.Sub(then)

	minutes := int64(elapsed / time.Minute)
	if minutes <= 0 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d minutes ago", minutes)
	}

	hours := int64(elapsed / time.Hour)
	if hours < 24 {
		return fmt.Sprintf("%d hours ago", hours)
	}

	p := periodBetween(then.In(now.Location()), now)

	days := int64(elapsed / (24 * time.Hour))
	if days < 30 {
		return fmt.Sprintf("%d days ago", p.days)
	}

	if p.years > 0 {
		return fmt.Sprintf("%d years ago", p.years)
	}
	return fmt.Sprintf("%d months ago", p.months)
}

type period struct {
	years  int
	months int
	days   int
}

// periodBetween computes the years, months and days between the calendar
// dates of start and end. Month arithmetic clamps to the end of the month.
func periodBetween(start, end time.Time) period {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()

	totalMonths := monthIndex(ey, em) - monthIndex(sy, sm)
	days := ed - sd

	switch {
	case totalMonths > 0 && days < 0:
		totalMonths--
		y, m, d := plusMonths(sy, sm, sd, totalMonths)
		days = epochDay(ey, em, ed) - epochDay(y, m, d)
	case totalMonths < 0 && days > 0:
		totalMonths++
		days -= daysIn(ey, em)
	}

	return period{
		years:  totalMonths / 12,
		months: totalMonths % 12,
		days:   days,
	}
}

func monthIndex(y int, m time.Month) int {
	return y*12 + int(m) - 1
}

func plusMonths(y int, m time.Month, d int, n int) (int, time.Month, int) {
	idx := monthIndex(y, m) + n
	ny, nm := idx/12, time.Month(idx%12+1)
	return ny, nm, min(d, daysIn(ny, nm))
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func epochDay(y int, m time.Month, d int) int {
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
