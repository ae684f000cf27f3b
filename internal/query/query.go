// Package query derives every view of the visitor collection: search and
// date filtering, the today/month/all windows, the present/checked-out
// split, the calendar grouping and the aggregate statistics. Everything is
// recomputed from the full collection on demand; the data volume of a
// single-site visitor log never justifies incremental bookkeeping.
package query

import (
	"sort"
	"strings"
	"time"

	"visitor-management-backend/internal/model"
)

// Window names the three time-window partitions.
type Window string

const (
	WindowToday Window = "today"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// SortByInTimeDesc returns a copy ordered newest check-in first. Storage
// order is not semantic; every view applies this ordering.
func SortByInTimeDesc(visitors []model.Visitor) []model.Visitor {
	sorted := make([]model.Visitor, len(visitors))
	copy(sorted, visitors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].InTime > sorted[j].InTime
	})
	return sorted
}

// Filter applies the case-insensitive text search (substring over card
// number, phone or name, OR semantics) ANDed with an exact calendar-day
// filter on the check-in time. Empty term and date pass everything.
func Filter(visitors []model.Visitor, term, date string) []model.Visitor {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]model.Visitor, 0, len(visitors))
	for _, v := range visitors {
		if term != "" && !matchesTerm(v, term) {
			continue
		}
		if date != "" && DateKey(v.InTime) != date {
			continue
		}
		out = append(out, v)
	}
	return out
}

func matchesTerm(v model.Visitor, term string) bool {
	return strings.Contains(strings.ToLower(v.CardNo), term) ||
		strings.Contains(strings.ToLower(v.Phone), term) ||
		strings.Contains(strings.ToLower(v.Name), term)
}

// InWindow selects visitors whose check-in falls in the given window
// relative to now. Records with unparseable check-in times stay visible in
// the "all" window but drop out of today/month.
func InWindow(visitors []model.Visitor, w Window, now time.Time) []model.Visitor {
	if w == WindowAll || w == "" {
		return visitors
	}
	out := make([]model.Visitor, 0, len(visitors))
	for _, v := range visitors {
		in, err := time.Parse(time.RFC3339, v.InTime)
		if err != nil {
			continue
		}
		in = in.In(now.Location())
		switch w {
		case WindowToday:
			if sameDay(in, now) {
				out = append(out, v)
			}
		case WindowMonth:
			if in.Year() == now.Year() && in.Month() == now.Month() {
				out = append(out, v)
			}
		}
	}
	return out
}

// Present returns the visitors with no checkout time.
func Present(visitors []model.Visitor) []model.Visitor {
	out := make([]model.Visitor, 0, len(visitors))
	for _, v := range visitors {
		if v.Present() {
			out = append(out, v)
		}
	}
	return out
}

// CheckedOut returns the visitors that have a checkout time.
func CheckedOut(visitors []model.Visitor) []model.Visitor {
	out := make([]model.Visitor, 0, len(visitors))
	for _, v := range visitors {
		if !v.Present() {
			out = append(out, v)
		}
	}
	return out
}

// DateKey extracts the calendar-date portion of a stored timestamp. The
// prefix form survives imported rows whose timestamps are not RFC 3339.
func DateKey(inTime string) string {
	if len(inTime) < 10 {
		return ""
	}
	return inTime[:10]
}

// GroupByDate maps each calendar date to its visitors. Records without a
// recognizable date are skipped.
func GroupByDate(visitors []model.Visitor) map[string][]model.Visitor {
	groups := make(map[string][]model.Visitor)
	for _, v := range visitors {
		key := DateKey(v.InTime)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], v)
	}
	return groups
}

// DatesDesc returns the grouping keys newest first, for list display.
func DatesDesc(groups map[string][]model.Visitor) []string {
	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// ChartPoint is one bar of the per-day visitor count chart.
type ChartPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Chart builds the per-day count series in ascending date order, capped to
// the most recent maxDays days.
func Chart(visitors []model.Visitor, maxDays int) []ChartPoint {
	groups := GroupByDate(visitors)
	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if maxDays > 0 && len(dates) > maxDays {
		dates = dates[len(dates)-maxDays:]
	}

	points := make([]ChartPoint, 0, len(dates))
	for _, d := range dates {
		points = append(points, ChartPoint{Date: d, Count: len(groups[d])})
	}
	return points
}

// Stats are the headline aggregates, recomputed from the full collection.
type Stats struct {
	Total           int `json:"total"`
	Today           int `json:"today"`
	UniqueCompanies int `json:"uniqueCompanies"`
	UniqueToMeet    int `json:"uniqueToMeet"`
}

// Statistics computes the aggregate counters against the given clock.
func Statistics(visitors []model.Visitor, now time.Time) Stats {
	today := now.Format("2006-01-02")
	companies := make(map[string]struct{})
	toMeet := make(map[string]struct{})

	s := Stats{Total: len(visitors)}
	for _, v := range visitors {
		if DateKey(v.InTime) == today {
			s.Today++
		}
		companies[v.CompanyName] = struct{}{}
		toMeet[v.ToMeet] = struct{}{}
	}
	s.UniqueCompanies = len(companies)
	s.UniqueToMeet = len(toMeet)
	return s
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
