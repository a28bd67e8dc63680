package notification

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reportshare/config"
	"reportshare/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(url string) service.ReportNotifier {
	cfg := &config.Config{Notifier: &config.NotifierConfig{WebhookURL: url, Timeout: time.Second}}

	return NewWebhookNotifier(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func issuedEvent() *service.ReportEvent {
	return &service.ReportEvent{
		EventID:      "evt-1",
		Type:         service.ReportEventIssued,
		SubjectID:    "subject-1",
		CompanyName:  "Acme",
		TotalSavings: 1234567,
		Currency:     "USD",
		ExpiresAt:    time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC),
	}
}

func TestWebhookNotifier_PostsRenderedText(t *testing.T) {
	var got chatMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, newTestNotifier(server.URL).NotifyReportEvent(context.Background(), issuedEvent()))
	assert.Equal(t,
		"New savings report for Acme: 1,234,567 USD in total savings. The share link expires on 2026-03-31.",
		got.Text,
	)
}

func TestWebhookNotifier_RendersEveryEventType(t *testing.T) {
	n, ok := newTestNotifier("").(*webhookNotifier)
	require.True(t, ok)

	rotated := issuedEvent()
	rotated.Type = service.ReportEventLinkRotated
	text, err := n.render(rotated)
	require.NoError(t, err)
	assert.Equal(t, "The share link for Acme was replaced. The new link expires on 2026-03-31.", text)

	revoked := issuedEvent()
	revoked.Type = service.ReportEventLinksRevoked
	revoked.CompanyName = ""
	text, err = n.render(revoked)
	require.NoError(t, err)
	assert.Equal(t, "The share links for subject-1 were revoked.", text)

	unknown := issuedEvent()
	unknown.Type = "report.deleted"
	_, err = n.render(unknown)
	assert.Error(t, err)
}

func TestWebhookNotifier_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))

		err := newTestNotifier(server.URL).NotifyReportEvent(context.Background(), issuedEvent())
		require.Error(t, err, tt.status)
		assert.Equal(t, tt.retryable, errors.Is(err, service.ErrNotifierUnavailable), tt.status)

		server.Close()
	}
}

func TestWebhookNotifier_UnreachableIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := newTestNotifier(url).NotifyReportEvent(context.Background(), issuedEvent())
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotifierUnavailable))
}

func TestWebhookNotifier_DisabledWithoutURL(t *testing.T) {
	assert.NoError(t, newTestNotifier("").NotifyReportEvent(context.Background(), issuedEvent()))
}

