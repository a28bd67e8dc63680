// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"reportshare/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrSubjectNotFound is returned when a subject is not found.
var ErrSubjectNotFound = errors.New("subject not found")

// SubjectRepository defines persistence operations for report subjects.
type SubjectRepository interface {
	// CreateSubject persists a new subject. A duplicate external key yields domainerrors.ErrSubjectAlreadyExists.
	CreateSubject(ctx context.Context, subject *entity.Subject) error

	// UpdateSubject overwrites the display attributes and calculation of an existing subject.
	UpdateSubject(ctx context.Context, subject *entity.Subject) error

	// FindSubjectByID retrieves a subject by its identifier.
	FindSubjectByID(ctx context.Context, id uuid.UUID) (*entity.Subject, error)

	// FindSubjectByExternalKey retrieves a subject by its upstream CRM key.
	FindSubjectByExternalKey(ctx context.Context, externalKey string) (*entity.Subject, error)

	// ClaimGeneration sets last_generated_at to now only when it is unset or older than window.
	// It returns false when another trigger claimed the subject inside the window.
	ClaimGeneration(ctx context.Context, id uuid.UUID, now time.Time, window time.Duration) (bool, error)
}
