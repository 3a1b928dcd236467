package handlers

import (
	"net/http"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
)

// POSTCooldownHandler serves both ledger operations behind one endpoint,
// switched by the action field. A policy rejection is a 403 with the
// remaining wait, never a 500.
func POSTCooldownHandler(ctx *middlewares.AppContext) {
	logger := ctx.Logger

	var req CooldownRequest
	if err := decodeJSONBody(ctx, &req); err != nil {
		logger.Debug("Rejected cooldown request body", "error", err)
		ctx.SetJSONError(http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.DeviceID == "" {
		ctx.SetJSONError(http.StatusBadRequest, "device_id is required")
		return
	}

	switch req.Action {
	case ActionCheck:
		handleCooldownCheck(ctx, req)
	case ActionSubmit:
		handleCooldownSubmit(ctx, req)
	default:
		ctx.SetJSONError(http.StatusBadRequest, "action must be \"check\" or \"submit\"")
	}
}

func handleCooldownCheck(ctx *middlewares.AppContext, req CooldownRequest) {
	status, err := ctx.Ledger.Check(ctx, req.DeviceID)
	if err != nil {
		ctx.Logger.Error("Failed to check cooldown", "device_id", req.DeviceID, "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Failed to check cooldown")
		return
	}

	ctx.WriteJSON(http.StatusOK, CooldownCheckResponse{
		InCooldown: status.InCooldown,
		Remaining:  durationMillis(status.Remaining),
	})
}

func handleCooldownSubmit(ctx *middlewares.AppContext, req CooldownRequest) {
	logger := ctx.Logger

	sub := models.Submission{Name: req.Name, MemberID: req.MemberID}

	result, err := ctx.Ledger.Submit(ctx, req.DeviceID, sub)
	if err != nil {
		logger.Error("Failed to record submission", "device_id", req.DeviceID, "error", err)
		ctx.WriteJSON(http.StatusInternalServerError, CooldownSubmitResponse{
			Success: false,
			Error:   "failed to record submission",
		})
		return
	}

	switch result.Outcome {
	case models.SubmitAccepted:
		logger.Info("Recorded submission", "device_id", req.DeviceID, "cooldown_until", result.CooldownUntil)
		ctx.WriteJSON(http.StatusOK, CooldownSubmitResponse{
			Success:       true,
			CooldownUntil: result.CooldownUntil.UTC().Format(time.RFC3339),
		})
	case models.SubmitRejected:
		ctx.WriteJSON(http.StatusForbidden, CooldownSubmitResponse{
			Success:    false,
			InCooldown: true,
			Remaining:  durationMillis(result.Remaining),
		})
	default:
		logger.Error("Submission failed without an error", "device_id", req.DeviceID, "outcome", string(result.Outcome))
		ctx.WriteJSON(http.StatusInternalServerError, CooldownSubmitResponse{
			Success: false,
			Error:   "failed to record submission",
		})
	}
}
