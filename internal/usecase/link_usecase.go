// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"reportshare/internal/domain/entity"

	"github.com/google/uuid"
)

// IssuedLink carries the raw credentials of a freshly issued link.
// Token and Passcode exist only in this value; they are never stored or retrievable again.
type IssuedLink struct {
	LinkID    uuid.UUID
	SubjectID uuid.UUID
	Token     string
	Passcode  string
	URL       string
	ExpiresAt time.Time

	// QRCodePNG encodes URL; nil when QR codes are disabled or rendering failed.
	QRCodePNG []byte
}

// LinkUsecase defines link issuance, rotation and audit operations.
type LinkUsecase interface {
	// IssueLink revokes the subject's active links and issues a new credential pair.
	IssueLink(ctx context.Context, subjectID uuid.UUID) (*IssuedLink, error)

	// RevokeLinks revokes every active link of the subject and returns how many were revoked.
	RevokeLinks(ctx context.Context, subjectID uuid.UUID) (int64, error)

	// ListLinks returns all links ever issued for the subject, newest first.
	ListLinks(ctx context.Context, subjectID uuid.UUID) ([]*entity.Link, error)
}
