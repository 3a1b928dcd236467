package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/notify"
)

// POSTNotifyHandler forwards a submitted form to the configured webhook. The
// sink is only consulted once every field the configured form shape requires
// is present.
func POSTNotifyHandler(ctx *middlewares.AppContext) {
	logger := ctx.Logger

	var form models.FormPayload
	if err := decodeJSONBody(ctx, &form); err != nil {
		logger.Debug("Rejected notify request body", "error", err)
		ctx.SetJSONError(http.StatusBadRequest, "Invalid request body")
		return
	}

	if field, ok := missingFormField(ctx.Config.Gate.Form.Shape, form); !ok {
		ctx.WriteJSON(http.StatusBadRequest, NotifyResponse{
			Success: false,
			Error:   fmt.Sprintf("%s is required", field),
		})
		return
	}

	if err := ctx.Notifier.Forward(ctx, form); err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			logger.Error("Notification webhook is not configured")
			ctx.WriteJSON(http.StatusInternalServerError, NotifyResponse{
				Success: false,
				Error:   "notification webhook is not configured",
			})
			return
		}

		logger.Error("Failed to forward notification", "error", err)
		ctx.WriteJSON(http.StatusInternalServerError, NotifyResponse{
			Success: false,
			Error:   "failed to forward notification",
		})
		return
	}

	ctx.WriteJSON(http.StatusOK, NotifyResponse{Success: true})
}

// missingFormField returns the first required field the payload leaves blank.
func missingFormField(shape string, form models.FormPayload) (string, bool) {
	required := [][2]string{
		{"name", form.Name},
		{"id", form.MemberID},
	}

	if shape == "extended" {
		required = append([][2]string{{"subjectName", form.SubjectName}}, required...)
		required = append(required, [2]string{"weekNumber", form.WeekNumber})
	}

	for _, field := range required {
		if strings.TrimSpace(field[1]) == "" {
			return field[0], false
		}
	}

	return "", true
}
