// Package notify forwards accepted submissions to an operator-facing
// webhook. Delivery is best-effort: the ledger write has already happened by
// the time a sink runs, and a delivery failure must never undo it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/config"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/metrics"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
)

//go:generate mockgen -source=webhook.go -destination=../mocks/notify.go -package=mocks

// ErrNotConfigured is returned by Forward when no webhook endpoint is set.
var ErrNotConfigured = errors.New("notification webhook is not configured")

// Sink receives the form payload of every accepted submission.
type Sink interface {
	Forward(ctx context.Context, form models.FormPayload) error
}

// Field limits applied before a payload leaves the process. The webhook side
// renders these into a chat message, so oversized fields are clipped rather
// than rejected.
const (
	MaxNameLength     = 100
	MaxSubjectLength  = 100
	MaxMemberIDLength = 50
	MaxWeekLength     = 20
)

type WebhookSink struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewWebhookSink(logger *slog.Logger, cfg *config.Config) *WebhookSink {
	return &WebhookSink{
		endpoint: cfg.Notifications.WebhookURL,
		client:   &http.Client{Timeout: cfg.Notifications.Timeout},
		logger:   logger,
	}
}

type webhookMessage struct {
	Content string `json:"content"`
}

func (s *WebhookSink) Forward(ctx context.Context, form models.FormPayload) error {
	if s.endpoint == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(webhookMessage{Content: formatContent(form)})
	if err != nil {
		metrics.NotificationErrors.Inc()
		return fmt.Errorf("failed to marshal webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		metrics.NotificationErrors.Inc()
		return fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.NotificationErrors.Inc()
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.NotificationErrors.Inc()
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	metrics.NotificationForwards.Inc()
	s.logger.Debug("forwarded submission notification")

	return nil
}

func formatContent(form models.FormPayload) string {
	content := fmt.Sprintf("New submission from %s (%s)",
		clip(form.Name, MaxNameLength),
		clip(form.MemberID, MaxMemberIDLength),
	)

	if subject := clip(form.SubjectName, MaxSubjectLength); subject != "" {
		content += fmt.Sprintf(" for %s", subject)
	}

	if week := clip(form.WeekNumber, MaxWeekLength); week != "" {
		content += fmt.Sprintf(", week %s", week)
	}

	return content
}

// clip truncates s to at most max runes.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max])
}
