package handlers

import (
	"net/http"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
)

// POSTLogoutHandler tears down the caller's session marker so the next
// evaluate falls back to token validation.
func POSTLogoutHandler(ctx *middlewares.AppContext) {
	logger := ctx.Logger

	if err := ctx.SessionManager.ClearSession(ctx); err != nil {
		logger.Error("Failed to clear session", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Failed to logout")
		return
	}

	logger.Info("Session cleared")

	ctx.SetJSONStatus(http.StatusOK, "OK")
}
