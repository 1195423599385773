package engine

import (
	"strings"

	"github.com/peermatch/backend/internal/models"
)

// Report recomputes the aggregate expertise and language coverage of a
// team and classifies its balance. Coverage over an empty requirement
// set is 1.0 by definition.
func Report(team []models.MatchResult, criteria models.MatchingCriteria, cfg Config) models.CoverageReport {
	report := models.CoverageReport{
		ExpertiseCovered: []string{},
		ExpertiseMissing: []string{},
		LanguagesCovered: []string{},
		LanguagesMissing: []string{},
	}

	expertiseSet := map[string]bool{}
	languageSet := map[string]bool{}
	for _, member := range team {
		for _, area := range member.ExpertiseDetails.MatchedRequired {
			expertiseSet[normalizeKey(area)] = true
		}
		for _, lang := range member.LanguageDetails.MatchedLanguages {
			languageSet[normalizeKey(lang)] = true
		}
		if member.IsLeadQualified {
			report.HasLeadQualified = true
		}
	}

	// Covered/missing lists follow the criteria's order so output is
	// reproducible regardless of team composition order.
	for _, area := range criteria.RequiredExpertise {
		if expertiseSet[normalizeKey(area)] {
			report.ExpertiseCovered = append(report.ExpertiseCovered, area)
		} else {
			report.ExpertiseMissing = append(report.ExpertiseMissing, area)
		}
	}
	for _, lang := range criteria.RequiredLanguages {
		if languageSet[normalizeKey(lang)] {
			report.LanguagesCovered = append(report.LanguagesCovered, lang)
		} else {
			report.LanguagesMissing = append(report.LanguagesMissing, lang)
		}
	}

	report.ExpertiseCoverage = 1.0
	if len(criteria.RequiredExpertise) > 0 {
		report.ExpertiseCoverage = float64(len(report.ExpertiseCovered)) / float64(len(criteria.RequiredExpertise))
	}
	report.LanguageCoverage = 1.0
	if len(criteria.RequiredLanguages) > 0 {
		report.LanguageCoverage = float64(len(report.LanguagesCovered)) / float64(len(criteria.RequiredLanguages))
	}

	report.TeamBalance = classifyBalance(report, cfg)
	return report
}

func classifyBalance(report models.CoverageReport, cfg Config) models.TeamBalance {
	switch {
	case report.ExpertiseCoverage >= cfg.GoodExpertiseCoverage &&
		report.LanguageCoverage >= cfg.GoodLanguageCoverage &&
		report.HasLeadQualified:
		return models.BalanceGood
	case report.ExpertiseCoverage < cfg.PoorCoverageFloor ||
		report.LanguageCoverage < cfg.PoorCoverageFloor:
		return models.BalancePoor
	default:
		return models.BalanceFair
	}
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
