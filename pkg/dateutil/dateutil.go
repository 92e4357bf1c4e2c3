// Package dateutil работает с календарными датами. Дата хранится как полночь UTC.
package dateutil

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Date создает календарную дату
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf отбрасывает время суток, сохраняя дату в часовом поясе t
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// Parse разбирает дату в формате 2006-01-02 или 02.01.2006
func Parse(s string) (time.Time, error) {
	for _, layout := range []string{Layout, "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// AddDays сдвигает дату на n дней
func AddDays(d time.Time, n int) time.Time {
	return DateOf(d).AddDate(0, 0, n)
}

// DaysInclusive возвращает количество дней в отрезке [from, to]
func DaysInclusive(from, to time.Time) int {
	from, to = DateOf(from), DateOf(to)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// EachDay вызывает fn для каждого дня отрезка [from, to]
func EachDay(from, to time.Time, fn func(day time.Time)) {
	for d := DateOf(from); !d.After(DateOf(to)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// StartOfWeek returns the Monday of the week for the given date
func StartOfWeek(d time.Time) time.Time {
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return AddDays(d, -(weekday - 1))
}

// EndOfWeek returns the Sunday of the week for the given date
func EndOfWeek(d time.Time) time.Time {
	return AddDays(StartOfWeek(d), 6)
}

func StartOfMonth(d time.Time) time.Time {
	return Date(d.Year(), d.Month(), 1)
}

func EndOfMonth(d time.Time) time.Time {
	return StartOfMonth(d).AddDate(0, 1, -1)
}

func StartOfYear(d time.Time) time.Time {
	return Date(d.Year(), time.January, 1)
}

func EndOfYear(d time.Time) time.Time {
	return Date(d.Year(), time.December, 31)
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Weekday0 возвращает день недели, где понедельник = 0, воскресенье = 6
func Weekday0(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

func Format(d time.Time) string {
	return d.Format(Layout)
}
