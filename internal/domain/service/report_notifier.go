package service

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotifierUnavailable marks a delivery failure worth retrying later.
var ErrNotifierUnavailable = errors.New("notification channel temporarily unavailable")

// ReportNotifier forwards report events to the people following a deal.
type ReportNotifier interface {
	// NotifyReportEvent delivers a human readable message for event.
	// Transient failures wrap ErrNotifierUnavailable.
	NotifyReportEvent(ctx context.Context, event *ReportEvent) error
}
