package models

import "time"

type AvailabilityType string

const (
	AvailabilityAvailable    AvailabilityType = "AVAILABLE"
	AvailabilityTentative    AvailabilityType = "TENTATIVE"
	AvailabilityUnavailable  AvailabilityType = "UNAVAILABLE"
	AvailabilityOnAssignment AvailabilityType = "ON_ASSIGNMENT"
)

type COIType string

const (
	COIHomeOrganization   COIType = "HOME_ORGANIZATION"
	COIFamilyRelationship COIType = "FAMILY_RELATIONSHIP"
	COIFormerEmployment   COIType = "FORMER_EMPLOYMENT"
	COIFinancialInterest  COIType = "FINANCIAL_INTEREST"
	COIRecentReview       COIType = "RECENT_REVIEW"
	COIOther              COIType = "OTHER"
)

type COISeverity string

const (
	SeverityNone COISeverity = "NONE"
	SeveritySoft COISeverity = "SOFT"
	SeverityHard COISeverity = "HARD"
)

type SelectionStatus string

const (
	StatusAvailable SelectionStatus = "AVAILABLE"
	StatusSelected  SelectionStatus = "SELECTED"
	StatusInactive  SelectionStatus = "INACTIVE"
)

type ProficiencyLevel string

const (
	ProficiencyBasic        ProficiencyLevel = "BASIC"
	ProficiencyIntermediate ProficiencyLevel = "INTERMEDIATE"
	ProficiencyAdvanced     ProficiencyLevel = "ADVANCED"
	ProficiencyExpert       ProficiencyLevel = "EXPERT"
)

type TeamBalance string

const (
	BalanceGood TeamBalance = "GOOD"
	BalanceFair TeamBalance = "FAIR"
	BalancePoor TeamBalance = "POOR"
)

type VerificationDecision string

const (
	DecisionConfirm VerificationDecision = "CONFIRM"
	DecisionWaive   VerificationDecision = "WAIVE"
	DecisionReject  VerificationDecision = "REJECT"
)

type Organization struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

type ExpertiseRecord struct {
	Area        string           `json:"area"`
	Proficiency ProficiencyLevel `json:"proficiency"`
	Years       int              `json:"years"`
}

type LanguageSkill struct {
	Language    string           `json:"language"`
	Proficiency ProficiencyLevel `json:"proficiency"`
	IsNative    bool             `json:"is_native"`
	CanConduct  bool             `json:"can_conduct"`
}

// AvailabilitySlot is an inclusive date range at day granularity.
// Slots may overlap; the later-listed slot wins for any given day.
type AvailabilitySlot struct {
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	Type      AvailabilityType `json:"type"`
}

type ConflictOfInterest struct {
	ID                string     `json:"id"`
	OrganizationID    string     `json:"organization_id"`
	Type              COIType    `json:"type"`
	IsActive          bool       `json:"is_active"`
	IsVerified        bool       `json:"is_verified"`
	Decision          string     `json:"decision,omitempty"`
	Justification     string     `json:"justification,omitempty"`
	WaiverExpiryDate  *time.Time `json:"waiver_expiry_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	VerificationNotes string     `json:"verification_notes,omitempty"`
}

type ReviewerProfile struct {
	ID                 string               `json:"id"`
	FullName           string               `json:"full_name"`
	HomeOrganizationID string               `json:"home_organization_id"`
	Expertise          []ExpertiseRecord    `json:"expertise"`
	Languages          []LanguageSkill      `json:"languages"`
	AvailabilitySlots  []AvailabilitySlot   `json:"availability_slots"`
	Conflicts          []ConflictOfInterest `json:"conflicts_of_interest"`
	IsLeadQualified    bool                 `json:"is_lead_qualified"`
	ReviewsCompleted   int                  `json:"reviews_completed"`
	YearsExperience    int                  `json:"years_experience"`
	SelectionStatus    SelectionStatus      `json:"selection_status"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

type MatchingCriteria struct {
	TargetOrganizationID   string    `json:"target_organization_id" validate:"required"`
	RequiredExpertise      []string  `json:"required_expertise"`
	PreferredExpertise     []string  `json:"preferred_expertise"`
	RequiredLanguages      []string  `json:"required_languages"`
	ReviewStartDate        time.Time `json:"review_start_date" validate:"required"`
	ReviewEndDate          time.Time `json:"review_end_date" validate:"required"`
	TeamSize               int       `json:"team_size" validate:"gte=0"`
	MustIncludeReviewerIDs []string  `json:"must_include_reviewer_ids,omitempty"`
}

type ScoreBreakdown struct {
	ExpertiseScore    float64 `json:"expertise_score"`
	LanguageScore     float64 `json:"language_score"`
	AvailabilityScore float64 `json:"availability_score"`
	ExperienceScore   float64 `json:"experience_score"`
}

type ExpertiseDetails struct {
	MatchedRequired []string `json:"matched_required"`
	MissingRequired []string `json:"missing_required"`
}

type LanguageDetails struct {
	MatchedLanguages []string `json:"matched_languages"`
}

type AvailabilityStatus struct {
	IsAvailable   bool    `json:"is_available"`
	Coverage      float64 `json:"coverage"`
	AvailableDays int     `json:"available_days"`
	TotalDays     int     `json:"total_days"`
}

type COIStatus struct {
	HasConflict bool        `json:"has_conflict"`
	Severity    COISeverity `json:"severity"`
	CanOverride bool        `json:"can_override"`
}

type MatchResult struct {
	ReviewerID          string             `json:"reviewer_id"`
	FullName            string             `json:"full_name"`
	YearsExperience     int                `json:"years_experience"`
	IsLeadQualified     bool               `json:"is_lead_qualified"`
	IsEligible          bool               `json:"is_eligible"`
	IneligibilityReason string             `json:"ineligibility_reason,omitempty"`
	Percentage          float64            `json:"percentage"`
	Breakdown           ScoreBreakdown     `json:"breakdown"`
	ExpertiseDetails    ExpertiseDetails   `json:"expertise_details"`
	LanguageDetails     LanguageDetails    `json:"language_details"`
	Availability        AvailabilityStatus `json:"availability_status"`
	COI                 COIStatus          `json:"coi_status"`
	Warnings            []string           `json:"warnings"`
}

type CoverageReport struct {
	ExpertiseCoverage float64     `json:"expertise_coverage"`
	ExpertiseCovered  []string    `json:"expertise_covered"`
	ExpertiseMissing  []string    `json:"expertise_missing"`
	LanguageCoverage  float64     `json:"language_coverage"`
	LanguagesCovered  []string    `json:"languages_covered"`
	LanguagesMissing  []string    `json:"languages_missing"`
	HasLeadQualified  bool        `json:"has_lead_qualified"`
	TeamBalance       TeamBalance `json:"team_balance"`
}

type TeamBuildResult struct {
	Team     []MatchResult  `json:"team"`
	Coverage CoverageReport `json:"coverage_report"`
}

type VerificationRequest struct {
	Decision         VerificationDecision `json:"decision" validate:"required,oneof=CONFIRM WAIVE REJECT"`
	Justification    string               `json:"justification"`
	WaiverExpiryDate *time.Time           `json:"waiver_expiry_date,omitempty"`
}
