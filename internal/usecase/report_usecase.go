package usecase

import (
	"context"

	"reportshare/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// TriggerInput is a CRM property-change event. Report fields are kept untyped
// as decoded from the payload and validated by the usecase.
type TriggerInput struct {
	ExternalID    string
	PropertyName  string
	CompanyName   any
	Industry      any
	EmployeeCount any
}

// GenerateReportInput is the report request of a signed-in user.
type GenerateReportInput struct {
	CompanyName   any
	Industry      any
	EmployeeCount any
}

// --- Output DTOs ---

// GenerateOutput describes what a generation request did.
// Link is set only for GenerationOutcomeGenerated.
type GenerateOutput struct {
	Outcome entity.GenerationOutcome
	Subject *entity.Subject
	Link    *IssuedLink
}

// ReportUsecase defines report generation and retrieval operations.
type ReportUsecase interface {
	// GenerateFromTrigger computes a report for a CRM event, deduplicating repeated triggers.
	GenerateFromTrigger(ctx context.Context, input *TriggerInput) (*GenerateOutput, error)

	// GenerateForUser computes a new report on behalf of a signed-in user.
	GenerateForUser(ctx context.Context, userID uuid.UUID, input *GenerateReportInput) (*GenerateOutput, error)

	// RegenerateLink rotates the link of an existing report without recomputing it.
	RegenerateLink(ctx context.Context, subjectID uuid.UUID) (*IssuedLink, error)

	// GetReport returns a stored report.
	GetReport(ctx context.Context, subjectID uuid.UUID) (*entity.Subject, error)
}
