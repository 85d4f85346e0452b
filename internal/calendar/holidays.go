// Package calendar knows the national holidays and business days used to
// place invoice closing and due dates.
package calendar

import (
	"slices"
	"sync"
	"time"
)

// Holiday is a national holiday on a given date.
type Holiday struct {
	Date time.Time
	Name string
}

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

var fixedHolidays = []fixedHoliday{
	{time.January, 1, "Confraternização Universal"},
	{time.April, 21, "Tiradentes"},
	{time.May, 1, "Dia do Trabalho"},
	{time.September, 7, "Independência do Brasil"},
	{time.October, 12, "Nossa Senhora Aparecida"},
	{time.November, 2, "Finados"},
	{time.November, 15, "Proclamação da República"},
	{time.December, 25, "Natal"},
}

type easterHoliday struct {
	offset int
	name   string
}

var easterHolidays = []easterHoliday{
	{-48, "Carnaval (segunda-feira)"},
	{-47, "Carnaval (terça-feira)"},
	{-2, "Sexta-feira Santa"},
	{60, "Corpus Christi"},
}

type yearEntry struct {
	list []Holiday
	set  map[time.Time]struct{}
}

var cache sync.Map // int -> *yearEntry

// Easter returns Easter Sunday for year using the Meeus/Jones/Butcher
// algorithm.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// HolidaysFor returns the twelve national holidays of year, ordered by date.
// Two entries may share a date (Good Friday can fall on Tiradentes).
func HolidaysFor(year int) []Holiday {
	return slices.Clone(entryFor(year).list)
}

// IsHoliday reports whether date's calendar day is a national holiday.
func IsHoliday(date time.Time) bool {
	d := dateOnly(date)
	_, ok := entryFor(d.Year()).set[d]

	return ok
}

func entryFor(year int) *yearEntry {
	if v, ok := cache.Load(year); ok {
		return v.(*yearEntry)
	}

	v, _ := cache.LoadOrStore(year, buildYear(year))

	return v.(*yearEntry)
}

func buildYear(year int) *yearEntry {
	list := make([]Holiday, 0, len(fixedHolidays)+len(easterHolidays))

	for _, f := range fixedHolidays {
		list = append(list, Holiday{
			Date: time.Date(year, f.month, f.day, 0, 0, 0, 0, time.UTC),
			Name: f.name,
		})
	}

	easter := Easter(year)
	for _, e := range easterHolidays {
		list = append(list, Holiday{Date: easter.AddDate(0, 0, e.offset), Name: e.name})
	}

	slices.SortStableFunc(list, func(a, b Holiday) int { return a.Date.Compare(b.Date) })

	set := make(map[time.Time]struct{}, len(list))
	for _, h := range list {
		set[h.Date] = struct{}{}
	}

	return &yearEntry{list: list, set: set}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
