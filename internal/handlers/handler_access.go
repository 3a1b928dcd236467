package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/access"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/token"
)

// sessionAdapter narrows the request-scoped session manager to the two calls
// the admission controller makes.
type sessionAdapter struct {
	ctx *middlewares.AppContext
}

func (a sessionAdapter) HasValidSession(context.Context) bool {
	return a.ctx.SessionManager.HasValidSession(a.ctx)
}

func (a sessionAdapter) StoreSessionToken(context.Context) {
	a.ctx.SessionManager.StoreSessionToken(a.ctx)
}

// POSTEvaluateHandler runs the admission rules once for the calling browser
// and reports the resulting state. The controller is request-scoped: no
// presentation delay and no cooldown watch, those are pacing concerns of a
// long-lived caller.
func POSTEvaluateHandler(ctx *middlewares.AppContext) {
	var req EvaluateRequest
	if err := decodeJSONBody(ctx, &req); err != nil {
		ctx.Logger.Debug("Rejected evaluate request body", "error", err)
		ctx.SetJSONError(http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.DeviceID == "" {
		ctx.SetJSONError(http.StatusBadRequest, "device_id is required")
		return
	}

	controller := access.NewController(access.Deps{
		Ledger:   ctx.Ledger,
		Sessions: sessionAdapter{ctx: ctx},
		Devices:  access.FixedDevice(req.DeviceID),
		Tokens:   token.NewValidator(ctx.Config.Gate.TokenSecret, ctx.Config.Gate.TokenValidity),
		Sink:     ctx.Notifier,
		Logger:   ctx.Logger,
	}, access.Options{})
	defer controller.Close()

	decision := controller.Evaluate(ctx, req.Token)

	response := EvaluateResponse{
		State:     string(decision.State),
		Reason:    decision.Reason,
		Remaining: durationMillis(decision.Remaining),
	}

	if decision.State == access.StateGranted {
		if expiresAt, ok := ctx.SessionManager.SessionExpiresAt(ctx); ok {
			response.SessionExpiresAt = expiresAt.UTC().Format(time.RFC3339)
		}
	}

	ctx.WriteJSON(http.StatusOK, response)
}
