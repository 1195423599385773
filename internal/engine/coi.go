package engine

import (
	"strings"
	"time"

	"github.com/peermatch/backend/internal/models"
)

// EvaluateCOI determines whether a reviewer has a conflict of interest
// against the target organization, its severity, and whether the
// conflict can be overridden. Every reviewer carries an implicit HARD
// conflict against their own home organization. asOf anchors the
// expiry checks (callers pass the review start date, or now).
func EvaluateCOI(reviewer models.ReviewerProfile, targetOrganizationID string, asOf time.Time) (models.COIStatus, error) {
	if reviewer.HomeOrganizationID == "" {
		return models.COIStatus{}, ErrMissingHomeOrganization
	}

	status := models.COIStatus{Severity: models.SeverityNone}

	hard := reviewer.HomeOrganizationID == targetOrganizationID
	soft := false
	waived := false

	for _, coi := range reviewer.Conflicts {
		if coi.OrganizationID != targetOrganizationID {
			continue
		}
		if !coiActive(coi, asOf) {
			continue
		}
		switch coi.Type {
		case models.COIHomeOrganization, models.COIFamilyRelationship:
			hard = true
			if waiverActive(coi, asOf) {
				waived = true
			}
		default:
			soft = true
		}
	}

	switch {
	case hard:
		status.HasConflict = true
		status.Severity = models.SeverityHard
		// An active waiver makes a hard conflict overridable but
		// never removes the warning.
		status.CanOverride = waived
	case soft:
		status.HasConflict = true
		status.Severity = models.SeveritySoft
		status.CanOverride = true
	}
	return status, nil
}

func coiActive(coi models.ConflictOfInterest, asOf time.Time) bool {
	if !coi.IsActive {
		return false
	}
	if coi.EndDate != nil && dateOnly(*coi.EndDate).Before(dateOnly(asOf)) {
		return false
	}
	return true
}

func waiverActive(coi models.ConflictOfInterest, asOf time.Time) bool {
	if !coi.IsVerified || coi.Decision != string(models.DecisionWaive) {
		return false
	}
	if coi.WaiverExpiryDate != nil && dateOnly(*coi.WaiverExpiryDate).Before(dateOnly(asOf)) {
		return false
	}
	return true
}

// ValidateVerification rejects malformed admin decisions before they
// can taint COI evaluation: WAIVE and REJECT both require a
// justification.
func ValidateVerification(req models.VerificationRequest) error {
	switch req.Decision {
	case models.DecisionWaive, models.DecisionReject:
		if strings.TrimSpace(req.Justification) == "" {
			return ErrJustificationRequired
		}
	}
	return nil
}
