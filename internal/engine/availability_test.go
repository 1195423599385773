package engine

import (
	"testing"
	"time"

	"github.com/peermatch/backend/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSummarizeAvailability_LaterSlotWins(t *testing.T) {
	slots := []models.AvailabilitySlot{
		{StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 10), Type: models.AvailabilityAvailable},
		{StartDate: date(2026, 1, 5), EndDate: date(2026, 1, 15), Type: models.AvailabilityUnavailable},
	}

	summary, err := SummarizeAvailability(slots, date(2026, 1, 1), date(2026, 1, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalDays != 20 {
		t.Fatalf("expected 20 total days, got %d", summary.TotalDays)
	}
	if summary.AvailableDays != 4 {
		t.Fatalf("expected days 1-4 available, got %d available days", summary.AvailableDays)
	}
	for i := 0; i < 4; i++ {
		if summary.PerDay[i] != models.AvailabilityAvailable {
			t.Fatalf("expected day %d AVAILABLE, got %s", i+1, summary.PerDay[i])
		}
	}
	for i := 4; i < 15; i++ {
		if summary.PerDay[i] != models.AvailabilityUnavailable {
			t.Fatalf("expected day %d UNAVAILABLE (override), got %s", i+1, summary.PerDay[i])
		}
	}
	// No covering slot after day 15.
	for i := 15; i < 20; i++ {
		if summary.PerDay[i] != models.AvailabilityUnavailable {
			t.Fatalf("expected day %d UNAVAILABLE (no slot), got %s", i+1, summary.PerDay[i])
		}
	}
	if summary.Coverage != 0.2 {
		t.Fatalf("expected coverage 0.2, got %f", summary.Coverage)
	}
}

func TestSummarizeAvailability_SingleDay(t *testing.T) {
	cases := []struct {
		name     string
		slots    []models.AvailabilitySlot
		coverage float64
	}{
		{"no slot", nil, 0},
		{"available", []models.AvailabilitySlot{
			{StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 31), Type: models.AvailabilityAvailable},
		}, 1},
		{"tentative", []models.AvailabilitySlot{
			{StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 31), Type: models.AvailabilityTentative},
		}, 0.5},
		{"on assignment", []models.AvailabilitySlot{
			{StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 31), Type: models.AvailabilityOnAssignment},
		}, 0},
	}

	for _, tc := range cases {
		summary, err := SummarizeAvailability(tc.slots, date(2026, 3, 15), date(2026, 3, 15))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if summary.TotalDays != 1 {
			t.Fatalf("%s: expected 1 total day, got %d", tc.name, summary.TotalDays)
		}
		if summary.Coverage != tc.coverage {
			t.Fatalf("%s: expected coverage %f, got %f", tc.name, tc.coverage, summary.Coverage)
		}
	}
}

func TestSummarizeAvailability_TentativeHalfWeight(t *testing.T) {
	slots := []models.AvailabilitySlot{
		{StartDate: date(2026, 5, 1), EndDate: date(2026, 5, 5), Type: models.AvailabilityAvailable},
		{StartDate: date(2026, 5, 6), EndDate: date(2026, 5, 10), Type: models.AvailabilityTentative},
	}
	summary, err := SummarizeAvailability(slots, date(2026, 5, 1), date(2026, 5, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.AvailableDays != 5 || summary.TentativeDays != 5 {
		t.Fatalf("expected 5 available + 5 tentative, got %d + %d", summary.AvailableDays, summary.TentativeDays)
	}
	if summary.Coverage != 0.75 {
		t.Fatalf("expected coverage 0.75, got %f", summary.Coverage)
	}
}

func TestSummarizeAvailability_InvalidRange(t *testing.T) {
	_, err := SummarizeAvailability(nil, date(2026, 2, 10), date(2026, 2, 1))
	if err != ErrInvalidDateRange {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestSummarizeAvailability_IgnoresTimeOfDay(t *testing.T) {
	slots := []models.AvailabilitySlot{
		{
			StartDate: time.Date(2026, 4, 1, 23, 30, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 4, 2, 0, 15, 0, 0, time.UTC),
			Type:      models.AvailabilityAvailable,
		},
	}
	summary, err := SummarizeAvailability(slots, date(2026, 4, 1), date(2026, 4, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.AvailableDays != 2 {
		t.Fatalf("expected both days available at date granularity, got %d", summary.AvailableDays)
	}
}
