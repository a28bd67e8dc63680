package model

import (
	"time"

	"github.com/google/uuid"
)

// LinkModel mirrors the 'report_links' table. Rows are never deleted so they stay available for audit.
type LinkModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SubjectID    uuid.UUID `gorm:"type:uuid;not null;index:idx_report_links_subject_id"`
	TokenHash    string    `gorm:"type:char(64);not null;uniqueIndex:idx_report_links_token_hash"`
	PasscodeHash string    `gorm:"type:char(64);not null"`
	ExpiresAt    time.Time `gorm:"not null"`
	RevokedAt    *time.Time
	AttemptCount int `gorm:"not null;default:0"`
	LockedUntil  *time.Time
	ViewCount    int `gorm:"not null;default:0"`
	LastViewedAt *time.Time
	CreatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (LinkModel) TableName() string {
	return "report_links"
}
