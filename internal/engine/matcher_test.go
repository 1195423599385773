package engine

import (
	"context"
	"reflect"
	"testing"

	"github.com/peermatch/backend/internal/models"
)

func TestFindMatchingReviewers_OrderingAndRetention(t *testing.T) {
	junior := strongReviewer("r-junior", "Cora Lindt")
	junior.YearsExperience = 2
	junior.ReviewsCompleted = 1

	conflicted := strongReviewer("r-conflicted", "Dan Abara")
	conflicted.HomeOrganizationID = "org-target"

	candidates := []models.ReviewerProfile{junior, conflicted, strongReviewer("r-senior", "Ada Kovacs")}

	results, err := FindMatchingReviewers(context.Background(), baseCriteria(), candidates, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected ineligible reviewers retained, got %d results", len(results))
	}
	if results[0].ReviewerID != "r-senior" && results[0].ReviewerID != "r-conflicted" {
		t.Fatalf("expected highest score first, got %s", results[0].ReviewerID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Percentage > results[i-1].Percentage {
			t.Fatalf("results not sorted by score descending")
		}
	}

	var foundIneligible bool
	for _, r := range results {
		if r.ReviewerID == "r-conflicted" {
			foundIneligible = true
			if r.IsEligible {
				t.Fatalf("expected r-conflicted to be flagged ineligible")
			}
		}
	}
	if !foundIneligible {
		t.Fatalf("ineligible reviewer missing from output")
	}
}

func TestFindMatchingReviewers_TieBreaks(t *testing.T) {
	// Identical profiles differ only by name: name ascending wins.
	a := strongReviewer("r-b", "Bruno Keller")
	b := strongReviewer("r-a", "Alma Keller")

	results, err := FindMatchingReviewers(context.Background(), baseCriteria(), []models.ReviewerProfile{a, b}, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].FullName != "Alma Keller" {
		t.Fatalf("expected name-ascending tie-break, got %s first", results[0].FullName)
	}

	// Same score, more experience wins over name.
	c := strongReviewer("r-c", "Zoe Adler")
	c.YearsExperience = 30 // saturates to the same experience score ceiling
	results, err = FindMatchingReviewers(context.Background(), baseCriteria(), []models.ReviewerProfile{b, c}, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].FullName != "Zoe Adler" {
		t.Fatalf("expected experience-descending tie-break, got %s first", results[0].FullName)
	}
}

func TestFindMatchingReviewers_Deterministic(t *testing.T) {
	candidates := []models.ReviewerProfile{
		strongReviewer("r1", "Ada Kovacs"),
		strongReviewer("r2", "Ben Osei"),
		strongReviewer("r3", "Cora Lindt"),
	}
	candidates[1].YearsExperience = 4
	candidates[2].Languages[0].IsNative = false

	first, err := FindMatchingReviewers(context.Background(), baseCriteria(), candidates, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := FindMatchingReviewers(context.Background(), baseCriteria(), candidates, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical output across repeated calls")
	}
}

func TestFindMatchingReviewers_ParallelMatchesSequential(t *testing.T) {
	var candidates []models.ReviewerProfile
	names := []string{"Ada", "Ben", "Cora", "Dan", "Elif", "Finn", "Gita", "Hugo"}
	for i, name := range names {
		r := strongReviewer("r-"+name, name+" Tester")
		r.YearsExperience = i * 3
		r.ReviewsCompleted = i * 2
		candidates = append(candidates, r)
	}

	sequential := DefaultConfig()
	sequential.ParallelThreshold = 1000

	parallel := DefaultConfig()
	parallel.ParallelThreshold = 1
	parallel.MatcherParallelism = 4

	seq, err := FindMatchingReviewers(context.Background(), baseCriteria(), candidates, sequential)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	par, err := FindMatchingReviewers(context.Background(), baseCriteria(), candidates, parallel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(seq, par) {
		t.Fatalf("parallel scoring must produce identical ordered output")
	}
}

func TestFindMatchingReviewers_EmptyPool(t *testing.T) {
	results, err := FindMatchingReviewers(context.Background(), baseCriteria(), nil, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result set, got %d", len(results))
	}
}

func TestFindMatchingReviewers_InvalidRange(t *testing.T) {
	criteria := baseCriteria()
	criteria.ReviewEndDate = date(2026, 1, 1)

	_, err := FindMatchingReviewers(context.Background(), criteria, []models.ReviewerProfile{strongReviewer("r1", "Ada Kovacs")}, DefaultConfig())
	if err != ErrInvalidDateRange {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}
