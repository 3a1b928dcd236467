package handlers

import (
	"net/http"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
)

// GETGateConfigHandler reports the client-facing gate knobs. The page paces
// itself with these: how long to hold the validating beat before revealing a
// verdict, how often to re-check an active cooldown, and which form fields to
// render.
func GETGateConfigHandler(ctx *middlewares.AppContext) {
	ctx.WriteJSON(http.StatusOK, GateConfigResponse{
		PresentationDelay: durationMillis(ctx.Config.Gate.PresentationDelay),
		PollInterval:      durationMillis(ctx.Config.Gate.PollInterval),
		FormShape:         ctx.Config.Gate.Form.Shape,
	})
}
