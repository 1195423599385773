package engine

import "errors"

// Input-contract violations. The engine fails fast on these; every
// other irregular input (empty pools, zero-length ranges, no required
// expertise) has a well-defined degenerate output instead.
var (
	ErrInvalidDateRange        = errors.New("end date precedes start date")
	ErrMissingHomeOrganization = errors.New("reviewer has no home organization")
	ErrJustificationRequired   = errors.New("justification is required for WAIVE and REJECT decisions")
)
