package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/peermatch/backend/internal/models"
)

// Ineligibility reasons, checked in priority order.
const (
	ReasonHardConflict               = "Hard conflict of interest with target organization"
	ReasonNoRequiredLanguage         = "Cannot conduct a review in any required language"
	ReasonUnavailableForEntirePeriod = "Unavailable for the entire review period"
)

// Preferred expertise matches add at most this many points on top of
// the required-expertise proportion, so they can never outrank a
// required match.
const preferredExpertiseBonusCap = 15.0

const nativeLanguageBonus = 10.0

// Score evaluates one reviewer against the criteria and produces the
// full match profile: eligibility verdict, 0-100 score breakdown,
// matched/missing detail, and warnings. The eligibility gate never
// alters the score; the score reflects capability, the gate reflects
// blocking constraints.
func Score(reviewer models.ReviewerProfile, criteria models.MatchingCriteria, cfg Config) (models.MatchResult, error) {
	availability, err := SummarizeAvailability(reviewer.AvailabilitySlots, criteria.ReviewStartDate, criteria.ReviewEndDate)
	if err != nil {
		return models.MatchResult{}, err
	}

	coi, err := EvaluateCOI(reviewer, criteria.TargetOrganizationID, criteria.ReviewStartDate)
	if err != nil {
		return models.MatchResult{}, err
	}

	expertiseScore, matchedRequired, missingRequired := scoreExpertise(reviewer, criteria)
	languageScore, matchedLanguages, missingLanguages := scoreLanguages(reviewer, criteria)
	availabilityScore := availability.Coverage * 100
	experienceScore := scoreExperience(reviewer, cfg)

	result := models.MatchResult{
		ReviewerID:      reviewer.ID,
		FullName:        reviewer.FullName,
		YearsExperience: reviewer.YearsExperience,
		IsLeadQualified: reviewer.IsLeadQualified,
		IsEligible:      true,
		Breakdown: models.ScoreBreakdown{
			ExpertiseScore:    expertiseScore,
			LanguageScore:     languageScore,
			AvailabilityScore: availabilityScore,
			ExperienceScore:   experienceScore,
		},
		ExpertiseDetails: models.ExpertiseDetails{
			MatchedRequired: matchedRequired,
			MissingRequired: missingRequired,
		},
		LanguageDetails: models.LanguageDetails{
			MatchedLanguages: matchedLanguages,
		},
		Availability: models.AvailabilityStatus{
			IsAvailable:   availability.Coverage > 0,
			Coverage:      availability.Coverage,
			AvailableDays: availability.AvailableDays,
			TotalDays:     availability.TotalDays,
		},
		COI:      coi,
		Warnings: []string{},
	}

	weightTotal := cfg.ExpertiseWeight + cfg.LanguageWeight + cfg.AvailabilityWeight + cfg.ExperienceWeight
	if weightTotal > 0 {
		result.Percentage = (expertiseScore*cfg.ExpertiseWeight +
			languageScore*cfg.LanguageWeight +
			availabilityScore*cfg.AvailabilityWeight +
			experienceScore*cfg.ExperienceWeight) / weightTotal
	}

	// Hard eligibility gate, first failing reason wins.
	switch {
	case coi.Severity == models.SeverityHard && !coi.CanOverride:
		result.IsEligible = false
		result.IneligibilityReason = ReasonHardConflict
	case len(criteria.RequiredLanguages) > 0 && len(matchedLanguages) == 0:
		result.IsEligible = false
		result.IneligibilityReason = ReasonNoRequiredLanguage
	case availability.TotalDays > 0 && availability.Coverage == 0:
		result.IsEligible = false
		result.IneligibilityReason = ReasonUnavailableForEntirePeriod
	}

	appendWarnings(&result, criteria, missingLanguages, cfg)
	return result, nil
}

func scoreExpertise(reviewer models.ReviewerProfile, criteria models.MatchingCriteria) (score float64, matched, missing []string) {
	matched = []string{}
	missing = []string{}

	byArea := func(area string) (models.ExpertiseRecord, bool) {
		for _, rec := range reviewer.Expertise {
			if strings.EqualFold(strings.TrimSpace(rec.Area), strings.TrimSpace(area)) {
				return rec, true
			}
		}
		return models.ExpertiseRecord{}, false
	}

	required := 100.0
	if len(criteria.RequiredExpertise) > 0 {
		var sum float64
		for _, area := range criteria.RequiredExpertise {
			rec, ok := byArea(area)
			if !ok {
				missing = append(missing, area)
				continue
			}
			matched = append(matched, area)
			sum += proficiencyWeight(rec.Proficiency)
		}
		required = sum / float64(len(criteria.RequiredExpertise)) * 100
	}

	var bonus float64
	for _, area := range criteria.PreferredExpertise {
		if rec, ok := byArea(area); ok {
			bonus += 5 * proficiencyWeight(rec.Proficiency)
		}
	}
	bonus = math.Min(bonus, preferredExpertiseBonusCap)

	return math.Min(required+bonus, 100), matched, missing
}

func scoreLanguages(reviewer models.ReviewerProfile, criteria models.MatchingCriteria) (score float64, matched, missing []string) {
	matched = []string{}
	missing = []string{}

	if len(criteria.RequiredLanguages) == 0 {
		return 100, matched, missing
	}

	nativeMatch := false
	for _, lang := range criteria.RequiredLanguages {
		found := false
		for _, skill := range reviewer.Languages {
			if !skill.CanConduct {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(skill.Language), strings.TrimSpace(lang)) {
				found = true
				if skill.IsNative {
					nativeMatch = true
				}
				break
			}
		}
		if found {
			matched = append(matched, lang)
		} else {
			missing = append(missing, lang)
		}
	}

	score = float64(len(matched)) / float64(len(criteria.RequiredLanguages)) * 100
	if nativeMatch {
		score += nativeLanguageBonus
	}
	return math.Min(score, 100), matched, missing
}

// scoreExperience is monotonic and saturating: years and completed
// reviews each contribute half, capped at the configured ceilings so
// very senior reviewers cannot dominate the composite score.
func scoreExperience(reviewer models.ReviewerProfile, cfg Config) float64 {
	var score float64
	if cfg.ExperienceYearsCeiling > 0 {
		years := math.Min(float64(reviewer.YearsExperience), float64(cfg.ExperienceYearsCeiling))
		score += 50 * years / float64(cfg.ExperienceYearsCeiling)
	}
	if cfg.ReviewsCompletedCeiling > 0 {
		reviews := math.Min(float64(reviewer.ReviewsCompleted), float64(cfg.ReviewsCompletedCeiling))
		score += 50 * reviews / float64(cfg.ReviewsCompletedCeiling)
	}
	return score
}

func appendWarnings(result *models.MatchResult, criteria models.MatchingCriteria, missingLanguages []string, cfg Config) {
	if len(result.ExpertiseDetails.MissingRequired) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Missing required expertise: %s", strings.Join(result.ExpertiseDetails.MissingRequired, ", ")))
	}
	if len(missingLanguages) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Missing required languages: %s", strings.Join(missingLanguages, ", ")))
	}
	if result.Availability.Coverage > 0 && result.Availability.Coverage < cfg.AvailabilityWarnBelow {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Available for only %d%% of the review period", int(math.Round(result.Availability.Coverage*100))))
	}
	if result.COI.HasConflict && result.COI.Severity == models.SeveritySoft {
		result.Warnings = append(result.Warnings, "Active soft conflict of interest with target organization")
	}
	// A waiver makes a hard conflict overridable but never removes the warning.
	if result.COI.HasConflict && result.COI.Severity == models.SeverityHard && result.COI.CanOverride {
		result.Warnings = append(result.Warnings, "Waived hard conflict of interest with target organization")
	}
	// A team of one must supply its own lead.
	if criteria.TeamSize == 1 && !result.IsLeadQualified {
		result.Warnings = append(result.Warnings, "Not lead-qualified")
	}
}

func proficiencyWeight(level models.ProficiencyLevel) float64 {
	switch level {
	case models.ProficiencyExpert:
		return 1.0
	case models.ProficiencyAdvanced:
		return 0.75
	case models.ProficiencyIntermediate:
		return 0.5
	case models.ProficiencyBasic:
		return 0.25
	default:
		return 0.5
	}
}
