package engine

import (
	"github.com/peermatch/backend/internal/models"
)

// BuildOptimalTeam selects up to criteria.TeamSize members from an
// already-scored pool. Forced includes go first (even when ineligible
// they stay in the team, still flagged); remaining seats are filled
// greedily by marginal coverage gain, with the candidate's own score
// and the matcher's ordering as tie-breaks. Ineligible candidates are
// never auto-selected, so the team may come back smaller than
// requested. Empty pool or TeamSize <= 0 yields an empty team with its
// coverage report; neither is an error.
func BuildOptimalTeam(criteria models.MatchingCriteria, pool []models.MatchResult, cfg Config) models.TeamBuildResult {
	team := []models.MatchResult{}
	selected := make([]bool, len(pool))

	teamSize := criteria.TeamSize
	if teamSize < 0 {
		teamSize = 0
	}

	// Forced inclusion overrides the eligibility filter.
	for _, id := range criteria.MustIncludeReviewerIDs {
		if len(team) >= teamSize {
			break
		}
		for i, candidate := range pool {
			if selected[i] || candidate.ReviewerID != id {
				continue
			}
			selected[i] = true
			team = append(team, candidate)
			break
		}
	}

	for len(team) < teamSize {
		best := -1
		bestGain := -1
		for i, candidate := range pool {
			if selected[i] || !candidate.IsEligible {
				continue
			}
			gain := marginalGain(team, candidate, criteria)
			if best == -1 || gain > bestGain ||
				(gain == bestGain && matchesBefore(candidate, pool[best])) {
				best = i
				bestGain = gain
			}
		}
		if best == -1 {
			// Eligible pool exhausted; report the short team rather
			// than padding it with ineligible members.
			break
		}
		selected[best] = true
		team = append(team, pool[best])
	}

	return models.TeamBuildResult{
		Team:     team,
		Coverage: Report(team, criteria, cfg),
	}
}

// marginalGain counts what the candidate would newly contribute to the
// current team: uncovered required expertise areas, uncovered required
// languages, and lead qualification if the team has none.
func marginalGain(team []models.MatchResult, candidate models.MatchResult, criteria models.MatchingCriteria) int {
	coveredExpertise := map[string]bool{}
	coveredLanguages := map[string]bool{}
	hasLead := false
	for _, member := range team {
		for _, area := range member.ExpertiseDetails.MatchedRequired {
			coveredExpertise[normalizeKey(area)] = true
		}
		for _, lang := range member.LanguageDetails.MatchedLanguages {
			coveredLanguages[normalizeKey(lang)] = true
		}
		if member.IsLeadQualified {
			hasLead = true
		}
	}

	gain := 0
	for _, area := range candidate.ExpertiseDetails.MatchedRequired {
		if !coveredExpertise[normalizeKey(area)] {
			gain++
		}
	}
	for _, lang := range candidate.LanguageDetails.MatchedLanguages {
		if !coveredLanguages[normalizeKey(lang)] {
			gain++
		}
	}
	if !hasLead && candidate.IsLeadQualified {
		gain++
	}
	return gain
}
