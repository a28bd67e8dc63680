package postgres

import (
	"context"
	"time"

	"reportshare/internal/domain/entity"
	domainerrors "reportshare/internal/domain/errors"
	"reportshare/internal/domain/repository"
	"reportshare/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// linkRepository implements the domain.LinkRepository interface.
type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository is the constructor for linkRepository.
func NewLinkRepository(db *gorm.DB) repository.LinkRepository {
	return &linkRepository{db: db}
}

// CreateLink persists a new link with zeroed counters.
func (repo *linkRepository) CreateLink(ctx context.Context, link *entity.Link) error {
	if link.ID == uuid.Nil {
		link.ID = entity.NewID()
	}
	link.AttemptCount = 0
	link.ViewCount = 0
	link.RevokedAt = nil
	link.LockedUntil = nil
	link.LastViewedAt = nil

	linkM := fromLinkDomain(link)
	if err := repo.db.WithContext(ctx).Create(linkM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrLinkConflict.WrapMessage("token hash already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrSubjectNotFound.WrapMessage("invalid subject reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create link")
	}

	link.CreatedAt = linkM.CreatedAt

	return nil
}

// FindLinkByTokenHash retrieves the link with the given token hash that belongs to subjectID.
func (repo *linkRepository) FindLinkByTokenHash(ctx context.Context, subjectID uuid.UUID, tokenHash string) (*entity.Link, error) {
	var linkM model.LinkModel
	err := repo.db.WithContext(ctx).
		Where("token_hash = ? AND subject_id = ?", tokenHash, subjectID).
		First(&linkM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrLinkNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find link")
	}

	return toLinkDomain(&linkM), nil
}

// ListLinksBySubject returns every link ever issued for a subject, newest first.
func (repo *linkRepository) ListLinksBySubject(ctx context.Context, subjectID uuid.UUID) ([]*entity.Link, error) {
	var linkModels []*model.LinkModel
	err := repo.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&linkModels).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	links := make([]*entity.Link, 0, len(linkModels))
	for _, linkM := range linkModels {
		links = append(links, toLinkDomain(linkM))
	}

	return links, nil
}

// RevokeActiveLinks marks every non-revoked link of the subject as revoked.
// It runs in its own transaction, which becomes a savepoint when the caller already holds one,
// so a failure here leaves the enclosing transaction usable.
func (repo *linkRepository) RevokeActiveLinks(ctx context.Context, subjectID uuid.UUID, at time.Time) (int64, error) {
	var revoked int64
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.LinkModel{}).
			Where("subject_id = ? AND revoked_at IS NULL", subjectID).
			Update("revoked_at", at)
		if result.Error != nil {
			return result.Error
		}
		revoked = result.RowsAffected

		return nil
	})
	if err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to revoke links")
	}

	return revoked, nil
}

// RecordFailedAttempt increments attempt_count from its expected value and optionally locks the link.
func (repo *linkRepository) RecordFailedAttempt(
	ctx context.Context,
	linkID uuid.UUID,
	expectedAttempts int,
	lockUntil *time.Time,
	now time.Time,
) (bool, error) {
	updates := map[string]any{
		"attempt_count": expectedAttempts + 1,
	}
	if lockUntil != nil {
		updates["locked_until"] = *lockUntil
	}

	result := repo.verifiableLink(ctx, linkID, expectedAttempts, now).Updates(updates)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to record failed attempt")
	}

	return result.RowsAffected == 1, nil
}

// RecordSuccessfulView resets attempt_count, increments view_count and stamps last_viewed_at.
func (repo *linkRepository) RecordSuccessfulView(ctx context.Context, linkID uuid.UUID, expectedAttempts int, now time.Time) (bool, error) {
	result := repo.verifiableLink(ctx, linkID, expectedAttempts, now).Updates(map[string]any{
		"attempt_count":  0,
		"view_count":     gorm.Expr("view_count + 1"),
		"last_viewed_at": now,
	})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to record view")
	}

	return result.RowsAffected == 1, nil
}

// verifiableLink scopes an update to the link only while it still has the expected attempt count
// and is neither revoked, expired nor locked at now.
func (repo *linkRepository) verifiableLink(ctx context.Context, linkID uuid.UUID, expectedAttempts int, now time.Time) *gorm.DB {
	return repo.db.WithContext(ctx).
		Model(&model.LinkModel{}).
		Where("id = ? AND attempt_count = ?", linkID, expectedAttempts).
		Where("revoked_at IS NULL AND expires_at >= ?", now).
		Where("(locked_until IS NULL OR locked_until <= ?)", now)
}

// --- Mapper Functions ---

// toLinkDomain converts a GORM LinkModel to a domain Link entity.
func toLinkDomain(data *model.LinkModel) *entity.Link {
	if data == nil {
		return nil
	}

	return &entity.Link{
		ID:           data.ID,
		SubjectID:    data.SubjectID,
		TokenHash:    data.TokenHash,
		PasscodeHash: data.PasscodeHash,
		ExpiresAt:    data.ExpiresAt,
		RevokedAt:    data.RevokedAt,
		AttemptCount: data.AttemptCount,
		LockedUntil:  data.LockedUntil,
		ViewCount:    data.ViewCount,
		LastViewedAt: data.LastViewedAt,
		CreatedAt:    data.CreatedAt,
	}
}

// fromLinkDomain converts a domain Link entity to a GORM LinkModel.
func fromLinkDomain(data *entity.Link) *model.LinkModel {
	if data == nil {
		return nil
	}

	return &model.LinkModel{
		ID:           data.ID,
		SubjectID:    data.SubjectID,
		TokenHash:    data.TokenHash,
		PasscodeHash: data.PasscodeHash,
		ExpiresAt:    data.ExpiresAt,
		RevokedAt:    data.RevokedAt,
		AttemptCount: data.AttemptCount,
		LockedUntil:  data.LockedUntil,
		ViewCount:    data.ViewCount,
		LastViewedAt: data.LastViewedAt,
		CreatedAt:    data.CreatedAt,
	}
}
