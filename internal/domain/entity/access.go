package entity

// AccessStatus is the outcome of a single link verification request.
type AccessStatus string

const (
	AccessStatusNotFound         AccessStatus = "NOT_FOUND"
	AccessStatusRevoked          AccessStatus = "REVOKED"
	AccessStatusExpired          AccessStatus = "EXPIRED"
	AccessStatusLocked           AccessStatus = "LOCKED"
	AccessStatusAwaitingPasscode AccessStatus = "AWAITING_PASSCODE"
	AccessStatusWrongPasscode    AccessStatus = "WRONG_PASSCODE"
	AccessStatusSuccess          AccessStatus = "SUCCESS"
)

// IsTerminal reports whether the status ends the request without touching the link.
func (s AccessStatus) IsTerminal() bool {
	switch s {
	case AccessStatusNotFound, AccessStatusRevoked, AccessStatusExpired, AccessStatusLocked:
		return true
	default:
		return false
	}
}

// GenerationOutcome is the result of a report generation trigger.
type GenerationOutcome string

const (
	GenerationOutcomeGenerated GenerationOutcome = "GENERATED"
	GenerationOutcomeDuplicate GenerationOutcome = "DUPLICATE"
	GenerationOutcomeIgnored   GenerationOutcome = "IGNORED"
)
