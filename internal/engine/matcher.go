package engine

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/peermatch/backend/internal/models"
)

// FindMatchingReviewers scores every candidate against the criteria.
// No filtering happens here: ineligible reviewers stay in the output
// with IsEligible=false so callers can display them. Ordering is score
// descending, then years of experience descending, then full name
// ascending, so repeated calls on the same input are byte-identical.
func FindMatchingReviewers(ctx context.Context, criteria models.MatchingCriteria, candidates []models.ReviewerProfile, cfg Config) ([]models.MatchResult, error) {
	if dateOnly(criteria.ReviewEndDate).Before(dateOnly(criteria.ReviewStartDate)) {
		return nil, ErrInvalidDateRange
	}

	results := make([]models.MatchResult, len(candidates))

	if len(candidates) >= cfg.ParallelThreshold && cfg.ParallelThreshold > 0 {
		// Each scoring call is independent and side-effect-free, so
		// large pools fan out across workers; the sort below restores
		// the deterministic ordering contract.
		g, _ := errgroup.WithContext(ctx)
		limit := cfg.MatcherParallelism
		if limit <= 0 {
			limit = runtime.NumCPU()
		}
		g.SetLimit(limit)
		for i := range candidates {
			i := i
			g.Go(func() error {
				result, err := Score(candidates[i], criteria, cfg)
				if err != nil {
					return err
				}
				results[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range candidates {
			result, err := Score(candidates[i], criteria, cfg)
			if err != nil {
				return nil, err
			}
			results[i] = result
		}
	}

	SortMatches(results)
	return results, nil
}

// SortMatches applies the matcher's ordering rule in place.
func SortMatches(results []models.MatchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Percentage != results[j].Percentage {
			return results[i].Percentage > results[j].Percentage
		}
		if results[i].YearsExperience != results[j].YearsExperience {
			return results[i].YearsExperience > results[j].YearsExperience
		}
		return results[i].FullName < results[j].FullName
	})
}

// matchesBefore reports whether a ranks ahead of b under the matcher's
// ordering rule. The team builder uses it for tie-breaking.
func matchesBefore(a, b models.MatchResult) bool {
	if a.Percentage != b.Percentage {
		return a.Percentage > b.Percentage
	}
	if a.YearsExperience != b.YearsExperience {
		return a.YearsExperience > b.YearsExperience
	}
	return a.FullName < b.FullName
}
