package repository

import (
	"context"
	"time"

	"reportshare/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrLinkNotFound is returned when no link matches a token hash and subject.
var ErrLinkNotFound = errors.New("link not found")

// LinkRepository defines persistence operations for issued links.
// Counter mutations are single conditional writes keyed on the expected prior attempt count,
// so concurrent verifications of one link never lose an increment.
type LinkRepository interface {
	// CreateLink persists a new link with zeroed counters.
	CreateLink(ctx context.Context, link *entity.Link) error

	// FindLinkByTokenHash retrieves the link with the given token hash that belongs to subjectID.
	FindLinkByTokenHash(ctx context.Context, subjectID uuid.UUID, tokenHash string) (*entity.Link, error)

	// ListLinksBySubject returns every link ever issued for a subject, newest first.
	ListLinksBySubject(ctx context.Context, subjectID uuid.UUID) ([]*entity.Link, error)

	// RevokeActiveLinks marks every non-revoked link of the subject as revoked at the given instant
	// and returns the number of links revoked.
	RevokeActiveLinks(ctx context.Context, subjectID uuid.UUID, at time.Time) (int64, error)

	// RecordFailedAttempt moves attempt_count from expectedAttempts to expectedAttempts+1 and,
	// when lockUntil is set, locks the link. It returns false when the row no longer matches
	// the expected state.
	RecordFailedAttempt(ctx context.Context, linkID uuid.UUID, expectedAttempts int, lockUntil *time.Time, now time.Time) (bool, error)

	// RecordSuccessfulView resets attempt_count, increments view_count and stamps last_viewed_at.
	// It returns false when the row no longer matches the expected state.
	RecordSuccessfulView(ctx context.Context, linkID uuid.UUID, expectedAttempts int, now time.Time) (bool, error)
}
