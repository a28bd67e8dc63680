package service

import (
	"context"
	"time"
)

// Report event types
const (
	ReportEventIssued       = "report.issued"
	ReportEventLinkRotated  = "report.link_rotated"
	ReportEventLinksRevoked = "report.links_revoked"
)

// ReportEvent announces a report lifecycle change to the notifier worker.
// It never carries a raw token or passcode.
type ReportEvent struct {
	RequestID    string    `json:"request_id,omitempty"` // For distributed tracing
	EventID      string    `json:"event_id"`
	Type         string    `json:"type"`
	SubjectID    string    `json:"subject_id"`
	CompanyName  string    `json:"company_name"`
	Source       string    `json:"source"`
	LinkID       string    `json:"link_id,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	TotalSavings int64     `json:"total_savings"`
	Currency     string    `json:"currency"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishReportEvent publishes a report event for async processing
	PublishReportEvent(ctx context.Context, event *ReportEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
