// Package views computes read-only aggregates over collection snapshots for
// dashboards and reports. Nothing here is persisted: statuses and counts are
// derived again on every call.
package views

import (
	"time"

	"auditportal/pkg/domain"
)

// WeekBounds returns the Monday 00:00 starting the week containing now and
// the following Monday 00:00, both in now's location. The range is
// half-open.
func WeekBounds(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	start = midnight.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// InRange reports whether t falls in [start, end).
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// CountInRange counts items whose date falls in [start, end). Zero dates
// never count.
func CountInRange[T any](items []T, date func(T) time.Time, start, end time.Time) int {
	n := 0
	for _, it := range items {
		d := date(it)
		if !d.IsZero() && InRange(d, start, end) {
			n++
		}
	}
	return n
}

// CountThisWeek counts items dated in the Monday-Sunday week containing now.
func CountThisWeek[T any](items []T, date func(T) time.Time, now time.Time) int {
	start, end := WeekBounds(now)
	return CountInRange(items, date, start, end)
}

// AuditStatus is derived from an audit's SGS date.
type AuditStatus string

// Audit statuses.
const (
	AuditScheduled AuditStatus = "scheduled"
	AuditCompleted AuditStatus = "completed"
)

// StatusOf reports an audit as completed once its SGS date is strictly
// before now.
func StatusOf(a domain.Audit, now time.Time) AuditStatus {
	if !a.SGSDate.IsZero() && a.SGSDate.Before(now) {
		return AuditCompleted
	}
	return AuditScheduled
}
