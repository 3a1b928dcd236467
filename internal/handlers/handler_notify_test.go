package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/notify"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/testutil"
)

func TestNotifyHandler_ShouldForwardBasicForm(t *testing.T) {
	form := models.FormPayload{Name: "alice", MemberID: "m-100"}

	tc := testutil.NewTestContextWithJSON(t, "POST", "/api/notify", form)
	defer tc.Finish()

	tc.MockSink.EXPECT().Forward(gomock.Any(), form).Return(nil)

	tc.CallHandler(POSTNotifyHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONBool(t, "success", true)
}

func TestNotifyHandler_ShouldRejectMissingFields(t *testing.T) {
	tests := []struct {
		name          string
		shape         string
		form          models.FormPayload
		expectedError string
	}{
		{
			name:          "ShouldRejectMissingName",
			shape:         "basic",
			form:          models.FormPayload{MemberID: "m-100"},
			expectedError: "name is required",
		},
		{
			name:          "ShouldRejectMissingID",
			shape:         "basic",
			form:          models.FormPayload{Name: "alice"},
			expectedError: "id is required",
		},
		{
			name:          "ShouldRejectBlankName",
			shape:         "basic",
			form:          models.FormPayload{Name: "   ", MemberID: "m-100"},
			expectedError: "name is required",
		},
		{
			name:          "ExtendedShapeShouldRequireSubject",
			shape:         "extended",
			form:          models.FormPayload{Name: "alice", MemberID: "m-100", WeekNumber: "7"},
			expectedError: "subjectName is required",
		},
		{
			name:          "ExtendedShapeShouldRequireWeek",
			shape:         "extended",
			form:          models.FormPayload{SubjectName: "Biology 101", Name: "alice", MemberID: "m-100"},
			expectedError: "weekNumber is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContextWithJSON(t, "POST", "/api/notify", tt.form)
			defer tc.Finish()

			tc.AppContext.Config.Gate.Form.Shape = tt.shape

			tc.CallHandler(POSTNotifyHandler)

			tc.AssertStatus(t, http.StatusBadRequest)
			tc.AssertJSONBool(t, "success", false)
			tc.AssertJSONField(t, "error", tt.expectedError)
		})
	}
}

func TestNotifyHandler_ShouldForwardExtendedForm(t *testing.T) {
	form := models.FormPayload{
		SubjectName: "Biology 101",
		Name:        "alice",
		MemberID:    "m-100",
		WeekNumber:  "7",
	}

	tc := testutil.NewTestContextWithJSON(t, "POST", "/api/notify", form)
	defer tc.Finish()

	tc.AppContext.Config.Gate.Form.Shape = "extended"
	tc.MockSink.EXPECT().Forward(gomock.Any(), form).Return(nil)

	tc.CallHandler(POSTNotifyHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONBool(t, "success", true)
}

func TestNotifyHandler_Should500WhenNotConfigured(t *testing.T) {
	tc := testutil.NewTestContextWithJSON(t, "POST", "/api/notify", models.FormPayload{
		Name:     "alice",
		MemberID: "m-100",
	})
	defer tc.Finish()

	tc.ExpectSinkForward(notify.ErrNotConfigured)

	tc.CallHandler(POSTNotifyHandler)

	tc.AssertStatus(t, http.StatusInternalServerError)
	tc.AssertJSONBool(t, "success", false)
	tc.AssertJSONField(t, "error", "notification webhook is not configured")
	tc.AssertLogContains(t, slog.LevelError, "Notification webhook is not configured")
}

func TestNotifyHandler_Should500OnDownstreamFailure(t *testing.T) {
	tc := testutil.NewTestContextWithJSON(t, "POST", "/api/notify", models.FormPayload{
		Name:     "alice",
		MemberID: "m-100",
	})
	defer tc.Finish()

	tc.ExpectSinkForward(errors.New("webhook returned 500"))

	tc.CallHandler(POSTNotifyHandler)

	tc.AssertStatus(t, http.StatusInternalServerError)
	tc.AssertJSONBool(t, "success", false)
	tc.AssertJSONField(t, "error", "failed to forward notification")
	tc.AssertLogContains(t, slog.LevelError, "Failed to forward notification")
}
