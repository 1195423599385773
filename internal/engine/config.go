package engine

// Config carries the tunable constants of the matching engine. The
// defaults reproduce the behaviour of the legacy selection tool; keep
// them adjustable so acceptance tests can pin different values without
// code changes.
type Config struct {
	// Score weights, out of 100 combined.
	ExpertiseWeight    float64
	LanguageWeight     float64
	AvailabilityWeight float64
	ExperienceWeight   float64

	// Team balance thresholds.
	GoodExpertiseCoverage float64
	GoodLanguageCoverage  float64
	PoorCoverageFloor     float64

	// Experience saturation ceilings.
	ExperienceYearsCeiling  int
	ReviewsCompletedCeiling int

	// Availability coverage below this fraction produces a warning.
	AvailabilityWarnBelow float64

	// Pools at or above this size are scored in parallel.
	ParallelThreshold int

	// Maximum concurrent scoring goroutines; 0 means one per CPU.
	MatcherParallelism int
}

func DefaultConfig() Config {
	return Config{
		ExpertiseWeight:         40,
		LanguageWeight:          20,
		AvailabilityWeight:      25,
		ExperienceWeight:        15,
		GoodExpertiseCoverage:   0.8,
		GoodLanguageCoverage:    1.0,
		PoorCoverageFloor:       0.5,
		ExperienceYearsCeiling:  15,
		ReviewsCompletedCeiling: 20,
		AvailabilityWarnBelow:   1.0,
		ParallelThreshold:       64,
		MatcherParallelism:      0,
	}
}
