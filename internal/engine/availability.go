package engine

import (
	"time"

	"github.com/peermatch/backend/internal/models"
)

// AvailabilitySummary is the day-by-day reduction of a reviewer's
// availability slots over a date range.
type AvailabilitySummary struct {
	Coverage      float64                   `json:"coverage"`
	AvailableDays int                       `json:"available_days"`
	TentativeDays int                       `json:"tentative_days"`
	TotalDays     int                       `json:"total_days"`
	PerDay        []models.AvailabilityType `json:"per_day"`
}

// SummarizeAvailability resolves each day in [start, end] (inclusive,
// date-only granularity) against the reviewer's slots. Slots may
// overlap; the later-listed slot wins for any given day. A day with no
// covering slot is UNAVAILABLE. Tentative days count half toward
// coverage.
func SummarizeAvailability(slots []models.AvailabilitySlot, start, end time.Time) (AvailabilitySummary, error) {
	startDay := dateOnly(start)
	endDay := dateOnly(end)
	if endDay.Before(startDay) {
		return AvailabilitySummary{}, ErrInvalidDateRange
	}

	summary := AvailabilitySummary{PerDay: []models.AvailabilityType{}}

	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		dayType := resolveDay(slots, day)
		summary.PerDay = append(summary.PerDay, dayType)
		summary.TotalDays++
		switch dayType {
		case models.AvailabilityAvailable:
			summary.AvailableDays++
		case models.AvailabilityTentative:
			summary.TentativeDays++
		}
	}

	if summary.TotalDays > 0 {
		coverage := (float64(summary.AvailableDays) + 0.5*float64(summary.TentativeDays)) / float64(summary.TotalDays)
		summary.Coverage = clamp01(coverage)
	}
	return summary, nil
}

// resolveDay finds the covering slot for a day. Later slots override
// earlier ones, so the scan keeps the last match.
func resolveDay(slots []models.AvailabilitySlot, day time.Time) models.AvailabilityType {
	resolved := models.AvailabilityUnavailable
	for _, slot := range slots {
		slotStart := dateOnly(slot.StartDate)
		slotEnd := dateOnly(slot.EndDate)
		if !day.Before(slotStart) && !day.After(slotEnd) {
			resolved = slot.Type
		}
	}
	return resolved
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
