package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/testutil"
)

func TestLogoutHandler_ShouldClearSession(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/access/logout")
	defer tc.Finish()

	tc.MockSession.EXPECT().ClearSession(tc.AppContext).Return(nil)

	tc.CallHandler(POSTLogoutHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertContentType(t, "application/json")
	tc.AssertJSONField(t, "status", "OK")
}

func TestLogoutHandler_Should500OnClearFailure(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/access/logout")
	defer tc.Finish()

	tc.MockSession.EXPECT().ClearSession(tc.AppContext).Return(errors.New("session store unreachable"))

	tc.CallHandler(POSTLogoutHandler)

	tc.AssertStatus(t, http.StatusInternalServerError)
	tc.AssertContentType(t, "application/json")
	tc.AssertJSONField(t, "error", "Failed to logout")
	tc.AssertLogContains(t, slog.LevelError, "Failed to clear session")
}
