package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/config"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
)

func newTestSink(endpoint string) *WebhookSink {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Notifications: config.NotificationsConfig{
			WebhookURL: endpoint,
			Timeout:    5 * time.Second,
		},
	}

	return NewWebhookSink(logger, cfg)
}

func TestWebhookSinkForward(t *testing.T) {
	var captured webhookMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sink := newTestSink(server.URL)

	err := sink.Forward(context.Background(), models.FormPayload{Name: "Ada Lovelace", MemberID: "a-1"})
	require.NoError(t, err)

	assert.Contains(t, captured.Content, "Ada Lovelace")
	assert.Contains(t, captured.Content, "a-1")
}

func TestWebhookSinkForwardExtendedForm(t *testing.T) {
	var captured webhookMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := newTestSink(server.URL)

	err := sink.Forward(context.Background(), models.FormPayload{
		SubjectName: "Biology 101",
		Name:        "Ada Lovelace",
		MemberID:    "a-1",
		WeekNumber:  "7",
	})
	require.NoError(t, err)

	assert.Contains(t, captured.Content, "Biology 101")
	assert.Contains(t, captured.Content, "week 7")
}

func TestWebhookSinkTruncatesFields(t *testing.T) {
	var captured webhookMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := newTestSink(server.URL)

	longName := strings.Repeat("n", MaxNameLength+50)
	longID := strings.Repeat("i", MaxMemberIDLength+10)

	err := sink.Forward(context.Background(), models.FormPayload{Name: longName, MemberID: longID})
	require.NoError(t, err)

	assert.Contains(t, captured.Content, longName[:MaxNameLength])
	assert.NotContains(t, captured.Content, longName[:MaxNameLength+1])
	assert.Contains(t, captured.Content, longID[:MaxMemberIDLength])
	assert.NotContains(t, captured.Content, longID[:MaxMemberIDLength+1])
}

func TestWebhookSinkNotConfigured(t *testing.T) {
	sink := newTestSink("")

	err := sink.Forward(context.Background(), models.FormPayload{Name: "Ada"})

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestWebhookSinkEndpointFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := newTestSink(server.URL)

	err := sink.Forward(context.Background(), models.FormPayload{Name: "Ada"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "exact", clip("exact", 5))
	assert.Equal(t, "trunc", clip("truncated", 5))
	assert.Equal(t, "héllö", clip("héllö wörld", 5), "clip counts runes, not bytes")
}
