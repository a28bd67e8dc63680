// Package notification delivers report events to a chat channel through an incoming webhook.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"reportshare/config"
	deliverycontext "reportshare/internal/delivery/context"
	"reportshare/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// chatMessage is the payload accepted by Slack and Google Chat incoming webhooks.
type chatMessage struct {
	Text string `json:"text"`
}

type webhookNotifier struct {
	webhookURL string
	httpClient *http.Client
	printer    *message.Printer
	logger     *slog.Logger
}

// NewWebhookNotifier creates a ReportNotifier posting to the configured chat webhook.
// An empty webhook URL turns every notification into a logged no-op.
func NewWebhookNotifier(cfg *config.Config, logger *slog.Logger) service.ReportNotifier {
	notifier := &webhookNotifier{
		httpClient: &http.Client{},
		printer:    message.NewPrinter(language.English),
		logger:     logger,
	}
	if cfg.Notifier != nil {
		notifier.webhookURL = cfg.Notifier.WebhookURL
		notifier.httpClient.Timeout = cfg.Notifier.Timeout
	}

	return notifier
}

// NotifyReportEvent posts the event text to the chat webhook.
func (n *webhookNotifier) NotifyReportEvent(ctx context.Context, event *service.ReportEvent) error {
	text, err := n.render(event)
	if err != nil {
		return err
	}

	logger := deliverycontext.GetLoggerOrDefault(ctx, n.logger)
	if n.webhookURL == "" {
		logger.Debug("Chat webhook not configured, skipping", slog.String("event_id", event.EventID))

		return nil
	}

	body, err := json.Marshal(chatMessage{Text: text})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(service.ErrNotifierUnavailable, err.Error())
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return errors.Wrapf(service.ErrNotifierUnavailable, "chat webhook returned %d", resp.StatusCode)
	default:
		return errors.Errorf("chat webhook rejected message: %d", resp.StatusCode)
	}
}

func (n *webhookNotifier) render(event *service.ReportEvent) (string, error) {
	company := event.CompanyName
	if company == "" {
		company = event.SubjectID
	}

	switch event.Type {
	case service.ReportEventIssued:
		return n.printer.Sprintf("New savings report for %s: %d %s in total savings. The share link expires on %s.",
			company, event.TotalSavings, event.Currency, event.ExpiresAt.Format("2006-01-02")), nil
	case service.ReportEventLinkRotated:
		return n.printer.Sprintf("The share link for %s was replaced. The new link expires on %s.",
			company, event.ExpiresAt.Format("2006-01-02")), nil
	case service.ReportEventLinksRevoked:
		return n.printer.Sprintf("The share links for %s were revoked.", company), nil
	default:
		return "", errors.Errorf("unsupported report event type: %q", event.Type)
	}
}
