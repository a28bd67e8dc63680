package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "reportshare/internal/delivery/context"
	"reportshare/internal/domain/entity"
	"reportshare/internal/domain/service"
	"reportshare/internal/usecase"

	"github.com/google/uuid"
)

// Event sources
const (
	eventSourceCRM   = "crm"
	eventSourceUser  = "user"
	eventSourceAdmin = "admin"
)

func newReportEvent(eventType, source string, subject *entity.Subject, issued *usecase.IssuedLink, now time.Time) *service.ReportEvent {
	event := &service.ReportEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		Source:     source,
		OccurredAt: now,
	}
	if subject != nil {
		event.SubjectID = subject.ID.String()
		event.CompanyName = subject.CompanyName
		event.TotalSavings = subject.Calculation.TotalSavings
		event.Currency = subject.Calculation.Inputs.Currency
	}
	if issued != nil {
		event.SubjectID = issued.SubjectID.String()
		event.LinkID = issued.LinkID.String()
		event.ExpiresAt = issued.ExpiresAt
	}

	return event
}

// publishReportEvent hands the event to the publisher after the request's data is committed.
// Delivery is fire-and-forget: errors are logged and never reach the caller.
func publishReportEvent(ctx context.Context, logger *slog.Logger, publisher service.EventPublisher, event *service.ReportEvent) {
	if publisher == nil {
		return
	}

	event.RequestID = deliverycontext.GetRequestIDFromContext(ctx)
	if err := publisher.PublishReportEvent(context.WithoutCancel(ctx), event); err != nil {
		logger.Warn("Failed to publish report event",
			slog.String("event_id", event.EventID),
			slog.String("type", event.Type),
			slog.String("subject_id", event.SubjectID),
			slog.Any("error", err),
		)
	}
}
