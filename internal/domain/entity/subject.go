package entity

import (
	"time"

	"github.com/google/uuid"
)

// CalculationInputs captures everything a calculation was derived from, so a stored
// report stays reproducible after the configured rates change.
type CalculationInputs struct {
	EmployeeCount int    `json:"employee_count"`
	Year          int    `json:"year"`
	RateTotal     int64  `json:"rate_total"`
	RateEmployer  int64  `json:"rate_employer"`
	RateEmployee  int64  `json:"rate_employee"`
	Currency      string `json:"currency"`
}

// Calculation is the savings breakdown for one employee count.
type Calculation struct {
	TotalSavings    int64
	EmployerSavings int64
	EmployeeSavings int64
	Inputs          CalculationInputs
	Explanation     string
}

// Subject is the business case a savings report is computed and shared for.
type Subject struct {
	ID uuid.UUID

	// ExternalKey is the upstream CRM identifier; nil for reports created by a signed-in user.
	ExternalKey *string

	CompanyName   string
	Industry      string
	EmployeeCount int

	Calculation Calculation

	// LastGeneratedAt drives duplicate trigger detection.
	LastGeneratedAt *time.Time

	CreatedBy *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GeneratedWithin reports whether the subject was (re)generated less than window before now.
func (s *Subject) GeneratedWithin(now time.Time, window time.Duration) bool {
	if s.LastGeneratedAt == nil {
		return false
	}

	return now.Sub(*s.LastGeneratedAt) < window
}
