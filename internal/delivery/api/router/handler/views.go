// Package handler contains the echo handlers of the report API.
package handler

import (
	"time"

	"reportshare/internal/domain/entity"
	"reportshare/internal/usecase"

	"github.com/google/uuid"
)

// ReportView is the public shape of a savings report.
type ReportView struct {
	ID              uuid.UUID  `json:"id"`
	CompanyName     string     `json:"company_name"`
	Industry        string     `json:"industry"`
	EmployeeCount   int        `json:"employee_count"`
	TotalSavings    int64      `json:"total_savings"`
	EmployerSavings int64      `json:"employer_savings"`
	EmployeeSavings int64      `json:"employee_savings"`
	Currency        string     `json:"currency"`
	Year            int        `json:"year"`
	Explanation     string     `json:"explanation"`
	GeneratedAt     *time.Time `json:"generated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newReportView(s *entity.Subject) *ReportView {
	return &ReportView{
		ID:              s.ID,
		CompanyName:     s.CompanyName,
		Industry:        s.Industry,
		EmployeeCount:   s.EmployeeCount,
		TotalSavings:    s.Calculation.TotalSavings,
		EmployerSavings: s.Calculation.EmployerSavings,
		EmployeeSavings: s.Calculation.EmployeeSavings,
		Currency:        s.Calculation.Inputs.Currency,
		Year:            s.Calculation.Inputs.Year,
		Explanation:     s.Calculation.Explanation,
		GeneratedAt:     s.LastGeneratedAt,
		CreatedAt:       s.CreatedAt,
	}
}

// IssuedLinkView carries freshly issued credentials. It is returned once and never again.
type IssuedLinkView struct {
	LinkID    uuid.UUID `json:"link_id"`
	URL       string    `json:"link_url"`
	Passcode  string    `json:"passcode"`
	ExpiresAt time.Time `json:"expires_at"`
	QRCodePNG []byte    `json:"qr_code_png,omitempty"`
}

func newIssuedLinkView(l *usecase.IssuedLink) *IssuedLinkView {
	if l == nil {
		return nil
	}

	return &IssuedLinkView{
		LinkID:    l.LinkID,
		URL:       l.URL,
		Passcode:  l.Passcode,
		ExpiresAt: l.ExpiresAt,
		QRCodePNG: l.QRCodePNG,
	}
}

// Link states reported by the audit view
const (
	linkStateActive  = "active"
	linkStateLocked  = "locked"
	linkStateRevoked = "revoked"
	linkStateExpired = "expired"
)

// LinkAuditView describes an issued link without its secret hashes.
type LinkAuditView struct {
	ID           uuid.UUID  `json:"id"`
	State        string     `json:"state"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	AttemptCount int        `json:"attempt_count"`
	LockedUntil  *time.Time `json:"locked_until,omitempty"`
	ViewCount    int        `json:"view_count"`
	LastViewedAt *time.Time `json:"last_viewed_at,omitempty"`
}

func newLinkAuditView(l *entity.Link, now time.Time) *LinkAuditView {
	state := linkStateActive
	switch {
	case l.IsRevoked():
		state = linkStateRevoked
	case l.IsExpired(now):
		state = linkStateExpired
	case l.IsLocked(now):
		state = linkStateLocked
	}

	return &LinkAuditView{
		ID:           l.ID,
		State:        state,
		CreatedAt:    l.CreatedAt,
		ExpiresAt:    l.ExpiresAt,
		RevokedAt:    l.RevokedAt,
		AttemptCount: l.AttemptCount,
		LockedUntil:  l.LockedUntil,
		ViewCount:    l.ViewCount,
		LastViewedAt: l.LastViewedAt,
	}
}
