package model

import (
	"time"

	"reportshare/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SubjectModel mirrors the 'subjects' table. The calculation is denormalized onto the row.
type SubjectModel struct {
	ID                uuid.UUID                                    `gorm:"type:uuid;primaryKey"`
	ExternalKey       *string                                      `gorm:"type:varchar(255);uniqueIndex:idx_subjects_external_key"`
	CompanyName       string                                       `gorm:"type:varchar(255);not null"`
	Industry          string                                       `gorm:"type:varchar(255);not null"`
	EmployeeCount     int                                          `gorm:"not null"`
	TotalSavings      int64                                        `gorm:"not null"`
	EmployerSavings   int64                                        `gorm:"not null"`
	EmployeeSavings   int64                                        `gorm:"not null"`
	Explanation       string                                       `gorm:"type:text;not null"`
	CalculationInputs datatypes.JSONType[entity.CalculationInputs] `gorm:"not null"`
	LastGeneratedAt   *time.Time
	CreatedBy         *uuid.UUID `gorm:"type:uuid"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName explicitly sets the table name for GORM.
func (SubjectModel) TableName() string {
	return "subjects"
}
