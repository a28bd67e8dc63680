package usecase

import (
	"context"
	"time"

	"reportshare/internal/domain/entity"

	"github.com/google/uuid"
)

// VerifyAccessInput is one visitor attempt to open a shared report.
// An empty Passcode asks only whether the link is usable.
type VerifyAccessInput struct {
	SubjectID uuid.UUID
	Token     string
	Passcode  string
}

// VerifyAccessOutput is the verification state of a link.
type VerifyAccessOutput struct {
	Status entity.AccessStatus

	// RemainingAttempts is set for WRONG_PASSCODE and AWAITING_PASSCODE.
	RemainingAttempts int

	// LockedUntil and RetryAfter are set for LOCKED.
	LockedUntil *time.Time
	RetryAfter  time.Duration

	// Subject is set only for SUCCESS.
	Subject *entity.Subject
}

// AccessUsecase defines magic link verification.
type AccessUsecase interface {
	VerifyAccess(ctx context.Context, input *VerifyAccessInput) (*VerifyAccessOutput, error)
}
