package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/config"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/ledger"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/mocks"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
)

// TestContext holds everything needed for testing
type TestContext struct {
	AppContext     *middlewares.AppContext
	Request        *http.Request
	Response       *httptest.ResponseRecorder
	MockController *gomock.Controller
	MockLedger     *mocks.MockLedger
	MockSession    *mocks.MockSessionProvider
	MockSink       *mocks.MockSink
	LogHandler     *TestLogHandler
}

// NewTestConfig returns a config with every knob the handlers read set to a
// workable value.
func NewTestConfig() *config.Config {
	return &config.Config{
		Gate: config.GateConfig{
			TokenSecret:   "test-secret-0123456789",
			TokenValidity: 15 * time.Minute,
			PollInterval:  5 * time.Second,
			Form:          config.FormConfig{Shape: "basic"},
		},
		Ledger: config.LedgerConfig{
			Backend:         "memory",
			Cooldown:        30 * time.Minute,
			Retention:       time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		Notifications: config.NotificationsConfig{
			Timeout: 5 * time.Second,
		},
	}
}

func NewTestContext(t *testing.T) *TestContext {
	logHandler := NewTestLogHandler()
	logger := slog.New(logHandler)

	ctrl := gomock.NewController(t)

	mockLedger := mocks.NewMockLedger(ctrl)
	mockSession := mocks.NewMockSessionProvider(ctrl)
	mockSink := mocks.NewMockSink(ctrl)

	rr := httptest.NewRecorder()

	appCtx := &middlewares.AppContext{
		Context:        context.Background(),
		Config:         NewTestConfig(),
		Logger:         logger,
		SessionManager: mockSession,
		Ledger:         mockLedger,
		Notifier:       mockSink,
		Request:        nil,
		Response:       rr,
	}

	return &TestContext{
		AppContext:     appCtx,
		Request:        nil,
		Response:       rr,
		MockController: ctrl,
		MockLedger:     mockLedger,
		MockSession:    mockSession,
		MockSink:       mockSink,
		LogHandler:     logHandler,
	}
}

// NewTestContextWithURL creates a complete test setup with sensible defaults
func NewTestContextWithURL(t *testing.T, method, url string) *TestContext {
	tc := NewTestContext(t)

	req := httptest.NewRequest(method, url, nil)
	tc.Request = req
	tc.AppContext.Request = req
	tc.AppContext.Context = req.Context()

	return tc
}

// NewTestContextWithJSON creates a test setup whose request carries the given
// value as a JSON body.
func NewTestContextWithJSON(t *testing.T, method, url string, body any) *TestContext {
	tc := NewTestContext(t)

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Could not marshal request body: %v", err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	tc.Request = req
	tc.AppContext.Request = req
	tc.AppContext.Context = req.Context()

	return tc
}

// WithRealLedger swaps the ledger mock for an in-memory ledger using the
// configured cooldown, for tests that want real cooldown behavior.
func (tc *TestContext) WithRealLedger() (*TestContext, *ledger.MemoryLedger) {
	cooldowns := ledger.NewMemoryLedger(tc.AppContext.Config.Ledger.Cooldown)
	tc.AppContext.Ledger = cooldowns

	return tc, cooldowns
}

// Finish should be called at the end of tests to clean up mocks
func (tc *TestContext) Finish() {
	if tc.MockController != nil {
		tc.MockController.Finish()
	}
}

func (tc *TestContext) AssertLogContains(t *testing.T, level slog.Level, message string) {
	if !tc.LogHandler.ContainsMessage(level, message) {
		t.Errorf("Expected to find log entry with level %v containing message: %s", level, message)
	}
}

func (tc *TestContext) AssertLogCount(t *testing.T, level slog.Level, expectedCount int) {
	count := tc.LogHandler.CountByLevel(level)
	if count != expectedCount {
		t.Errorf("Expected %d log entries at level %v, got %d", expectedCount, level, count)
	}
}

func (tc *TestContext) GetLogRecords() []TestLogRecord {
	return tc.LogHandler.GetRecords()
}

func (tc *TestContext) ClearLogRecords() {
	tc.LogHandler.Reset()
}

// CallHandler executes a handler with the test context
func (tc *TestContext) CallHandler(handler middlewares.AppHandler) {
	handler(tc.AppContext)
}

// AssertStatus checks the HTTP status code
func (tc *TestContext) AssertStatus(t *testing.T, expectedStatus int) {
	if tc.Response.Code != expectedStatus {
		t.Errorf("Expected status %d, got %d", expectedStatus, tc.Response.Code)
	}
}

// AssertContentType checks the content type header
func (tc *TestContext) AssertContentType(t *testing.T, expectedType string) {
	if ct := tc.Response.Header().Get("Content-Type"); ct != expectedType {
		t.Errorf("Expected content type %s, got %s", expectedType, ct)
	}
}

// GetJSONResponse parses the response body as JSON
func (tc *TestContext) GetJSONResponse(t *testing.T) map[string]interface{} {
	var response map[string]interface{}
	if err := json.Unmarshal(tc.Response.Body.Bytes(), &response); err != nil {
		t.Fatalf("Could not parse JSON response: %v", err)
	}
	return response
}

// AssertJSONField checks a specific field in a JSON response
func (tc *TestContext) AssertJSONField(t *testing.T, field string, expected any) {
	response := tc.GetJSONResponse(t)
	if actual, ok := response[field]; !ok || actual != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, response[field])
	}
}

func (tc *TestContext) AssertJSONBool(t *testing.T, field string, expected bool) {
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualBool, ok := actual.(bool)
	if !ok {
		t.Errorf("Expected %s to be a boolean, got %T", field, actual)
		return
	}

	if actualBool != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, actualBool)
	}
}

// AssertJSONString checks a specific string field in a JSON response
func (tc *TestContext) AssertJSONString(t *testing.T, field string, expected string) {
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualString, ok := actual.(string)
	if !ok {
		t.Errorf("Expected %s to be a string, got %T", field, actual)
		return
	}

	if actualString != expected {
		t.Errorf("Expected %s to be %q, got %q", field, expected, actualString)
	}
}

// AssertJSONNumber checks a numeric field in a JSON response. JSON numbers
// decode as float64.
func (tc *TestContext) AssertJSONNumber(t *testing.T, field string, expected float64) {
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualNumber, ok := actual.(float64)
	if !ok {
		t.Errorf("Expected %s to be a number, got %T", field, actual)
		return
	}

	if actualNumber != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, actualNumber)
	}
}

// WithConfig allows you to override the default config for specific tests
func (tc *TestContext) WithConfig(cfg *config.Config) *TestContext {
	tc.AppContext.Config = cfg
	return tc
}

// WithLogger allows you to override the default logger for specific tests
func (tc *TestContext) WithLogger(logger *slog.Logger) *TestContext {
	tc.AppContext.Logger = logger
	return tc
}

// WithLedger allows you to override the ledger with a different mock or implementation
func (tc *TestContext) WithLedger(cooldowns ledger.Ledger) *TestContext {
	tc.AppContext.Ledger = cooldowns
	return tc
}

// WithSessionManager allows you to override the session manager with a different mock or implementation
func (tc *TestContext) WithSessionManager(sm middlewares.SessionProvider) *TestContext {
	tc.AppContext.SessionManager = sm
	return tc
}

// Helper to add query parameters to the request
func (tc *TestContext) WithQueryParam(key, value string) *TestContext {
	q := tc.Request.URL.Query()
	q.Add(key, value)
	tc.Request.URL.RawQuery = q.Encode()
	return tc
}

// Helper to add headers
func (tc *TestContext) WithHeader(key, value string) *TestContext {
	tc.Request.Header.Set(key, value)
	return tc
}

// WithRequest allows you to set a custom request (useful for tests that don't use URL constructor)
func (tc *TestContext) WithRequest(req *http.Request) *TestContext {
	tc.Request = req
	tc.AppContext.Request = req
	tc.AppContext.Context = req.Context()
	return tc
}

// ExpectLedgerCheck sets up an expectation for ledger.Check()
func (tc *TestContext) ExpectLedgerCheck(deviceID string, status models.CooldownStatus, err error) *gomock.Call {
	return tc.MockLedger.EXPECT().Check(gomock.Any(), deviceID).Return(status, err)
}

// ExpectLedgerSubmit sets up an expectation for ledger.Submit()
func (tc *TestContext) ExpectLedgerSubmit(deviceID string, result models.SubmitResult, err error) *gomock.Call {
	return tc.MockLedger.EXPECT().Submit(gomock.Any(), deviceID, gomock.Any()).Return(result, err)
}

// ExpectSessionValid sets up an expectation for session.HasValidSession()
func (tc *TestContext) ExpectSessionValid(result bool) *gomock.Call {
	return tc.MockSession.EXPECT().HasValidSession(tc.AppContext).Return(result)
}

// ExpectSinkForward sets up an expectation for sink.Forward()
func (tc *TestContext) ExpectSinkForward(err error) *gomock.Call {
	return tc.MockSink.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(err)
}
