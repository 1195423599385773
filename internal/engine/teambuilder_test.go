package engine

import (
	"context"
	"testing"

	"github.com/peermatch/backend/internal/models"
)

func scorePool(t *testing.T, criteria models.MatchingCriteria, reviewers ...models.ReviewerProfile) []models.MatchResult {
	t.Helper()
	pool, err := FindMatchingReviewers(context.Background(), criteria, reviewers, DefaultConfig())
	if err != nil {
		t.Fatalf("scoring pool: %v", err)
	}
	return pool
}

func TestBuildOptimalTeam_DisjointExpertiseHalves(t *testing.T) {
	// Two reviewers each cover one half of the required expertise;
	// the greedy loop must take both for full coverage.
	criteria := baseCriteria()
	criteria.RequiredExpertise = []string{"air-traffic-services", "meteorology"}
	criteria.TeamSize = 2

	atsOnly := strongReviewer("r-ats", "Ada Kovacs")
	atsOnly.Expertise = []models.ExpertiseRecord{
		{Area: "air-traffic-services", Proficiency: models.ProficiencyExpert},
	}
	metOnly := strongReviewer("r-met", "Ben Osei")
	metOnly.Expertise = []models.ExpertiseRecord{
		{Area: "meteorology", Proficiency: models.ProficiencyExpert},
	}
	// A generalist with weaker proficiency should not displace the pair.
	weak := strongReviewer("r-weak", "Cora Lindt")
	weak.Expertise = []models.ExpertiseRecord{
		{Area: "air-traffic-services", Proficiency: models.ProficiencyBasic},
	}
	weak.YearsExperience = 1
	weak.ReviewsCompleted = 0

	pool := scorePool(t, criteria, atsOnly, metOnly, weak)
	result := BuildOptimalTeam(criteria, pool, DefaultConfig())

	if len(result.Team) != 2 {
		t.Fatalf("expected team of 2, got %d", len(result.Team))
	}
	got := map[string]bool{}
	for _, member := range result.Team {
		got[member.ReviewerID] = true
	}
	if !got["r-ats"] || !got["r-met"] {
		t.Fatalf("expected disjoint specialists selected, got %v", got)
	}
	if result.Coverage.ExpertiseCoverage != 1.0 {
		t.Fatalf("expected full expertise coverage, got %f", result.Coverage.ExpertiseCoverage)
	}
}

func TestBuildOptimalTeam_ForcedIncludeOverridesEligibility(t *testing.T) {
	criteria := baseCriteria()
	criteria.TeamSize = 2
	criteria.MustIncludeReviewerIDs = []string{"r-conflicted"}

	conflicted := strongReviewer("r-conflicted", "Dan Abara")
	conflicted.HomeOrganizationID = "org-target"

	pool := scorePool(t, criteria, conflicted, strongReviewer("r-clean", "Ada Kovacs"))
	result := BuildOptimalTeam(criteria, pool, DefaultConfig())

	if len(result.Team) != 2 {
		t.Fatalf("expected team of 2, got %d", len(result.Team))
	}
	var forced *models.MatchResult
	for i := range result.Team {
		if result.Team[i].ReviewerID == "r-conflicted" {
			forced = &result.Team[i]
		}
	}
	if forced == nil {
		t.Fatalf("expected forced reviewer in the team")
	}
	if forced.IsEligible {
		t.Fatalf("forced reviewer must stay flagged ineligible")
	}
	// Coverage reflects the forced member's actual contribution.
	if result.Coverage.ExpertiseCoverage != 1.0 {
		t.Fatalf("expected coverage to include forced member, got %f", result.Coverage.ExpertiseCoverage)
	}
}

func TestBuildOptimalTeam_NeverExceedsRequestedSize(t *testing.T) {
	criteria := baseCriteria()
	criteria.TeamSize = 2

	pool := scorePool(t, criteria,
		strongReviewer("r1", "Ada Kovacs"),
		strongReviewer("r2", "Ben Osei"),
		strongReviewer("r3", "Cora Lindt"),
		strongReviewer("r4", "Dan Abara"),
	)
	result := BuildOptimalTeam(criteria, pool, DefaultConfig())
	if len(result.Team) > criteria.TeamSize {
		t.Fatalf("team size %d exceeds requested %d", len(result.Team), criteria.TeamSize)
	}
}

func TestBuildOptimalTeam_IneligibleNeverAutoSelected(t *testing.T) {
	criteria := baseCriteria()
	criteria.TeamSize = 3

	conflicted := strongReviewer("r-conflicted", "Dan Abara")
	conflicted.HomeOrganizationID = "org-target"

	pool := scorePool(t, criteria, conflicted, strongReviewer("r-clean", "Ada Kovacs"))
	result := BuildOptimalTeam(criteria, pool, DefaultConfig())

	if len(result.Team) != 1 {
		t.Fatalf("expected short team of 1, got %d", len(result.Team))
	}
	if result.Team[0].ReviewerID != "r-clean" {
		t.Fatalf("expected only the eligible reviewer, got %s", result.Team[0].ReviewerID)
	}
}

func TestBuildOptimalTeam_EmptyPool(t *testing.T) {
	result := BuildOptimalTeam(baseCriteria(), nil, DefaultConfig())
	if result.Team == nil || len(result.Team) != 0 {
		t.Fatalf("expected empty non-nil team, got %v", result.Team)
	}
	if len(result.Coverage.ExpertiseCovered) != 0 {
		t.Fatalf("expected zero coverage, got %v", result.Coverage.ExpertiseCovered)
	}
	if result.Coverage.HasLeadQualified {
		t.Fatalf("empty team cannot have a lead")
	}
}

func TestBuildOptimalTeam_ZeroOrNegativeTeamSize(t *testing.T) {
	criteria := baseCriteria()
	pool := scorePool(t, criteria, strongReviewer("r1", "Ada Kovacs"))

	for _, size := range []int{0, -3} {
		criteria.TeamSize = size
		result := BuildOptimalTeam(criteria, pool, DefaultConfig())
		if len(result.Team) != 0 {
			t.Fatalf("team size %d: expected empty team, got %d members", size, len(result.Team))
		}
	}
}

func TestBuildOptimalTeam_LeadQualificationGain(t *testing.T) {
	// Equal coverage contribution: the lead-qualified candidate wins
	// the seat through the lead-gain component.
	criteria := baseCriteria()
	criteria.TeamSize = 1

	lead := strongReviewer("r-lead", "Ada Kovacs")
	nonLead := strongReviewer("r-nolead", "Aaa Aardal")
	nonLead.IsLeadQualified = false

	pool := scorePool(t, criteria, lead, nonLead)
	result := BuildOptimalTeam(criteria, pool, DefaultConfig())
	if len(result.Team) != 1 || result.Team[0].ReviewerID != "r-lead" {
		t.Fatalf("expected lead-qualified candidate selected, got %+v", result.Team)
	}
	if result.Coverage.TeamBalance != models.BalanceGood {
		t.Fatalf("expected GOOD balance, got %s", result.Coverage.TeamBalance)
	}
}

func TestBuildOptimalTeam_Deterministic(t *testing.T) {
	criteria := baseCriteria()
	criteria.TeamSize = 2
	pool := scorePool(t, criteria,
		strongReviewer("r1", "Ada Kovacs"),
		strongReviewer("r2", "Ben Osei"),
		strongReviewer("r3", "Cora Lindt"),
	)

	first := BuildOptimalTeam(criteria, pool, DefaultConfig())
	second := BuildOptimalTeam(criteria, pool, DefaultConfig())
	if len(first.Team) != len(second.Team) {
		t.Fatalf("nondeterministic team size")
	}
	for i := range first.Team {
		if first.Team[i].ReviewerID != second.Team[i].ReviewerID {
			t.Fatalf("nondeterministic selection at seat %d", i)
		}
	}
}
