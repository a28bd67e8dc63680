package entity

import (
	"time"

	"github.com/google/uuid"
)

// Link is a token and passcode pair granting bearer access to one Subject's report.
// Only hashes of the two secrets are ever stored.
type Link struct {
	ID        uuid.UUID
	SubjectID uuid.UUID

	TokenHash    string
	PasscodeHash string

	ExpiresAt time.Time
	RevokedAt *time.Time

	AttemptCount int
	LockedUntil  *time.Time

	ViewCount    int
	LastViewedAt *time.Time

	CreatedAt time.Time
}

// IsRevoked reports whether the link was superseded or revoked by an administrator.
func (l *Link) IsRevoked() bool {
	return l.RevokedAt != nil
}

// IsExpired reports whether the link lapsed before now.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt.Before(now)
}

// IsLocked reports whether passcode verification is suspended at now.
func (l *Link) IsLocked(now time.Time) bool {
	return l.LockedUntil != nil && l.LockedUntil.After(now)
}

// IsActive reports whether the link can still be verified at now, ignoring lockout.
func (l *Link) IsActive(now time.Time) bool {
	return !l.IsRevoked() && !l.IsExpired(now)
}

// RemainingAttempts returns the number of wrong passcodes left before lockout.
func (l *Link) RemainingAttempts(maxAttempts int) int {
	return max(maxAttempts-l.AttemptCount, 0)
}
