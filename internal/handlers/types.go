package handlers

// Wire types for the gate API. Durations cross the wire as whole
// milliseconds; timestamps as RFC3339.

const (
	ActionCheck  = "check"
	ActionSubmit = "submit"
)

type CooldownRequest struct {
	DeviceID string `json:"device_id"`
	Action   string `json:"action"`
	Name     string `json:"name,omitempty"`
	MemberID string `json:"id,omitempty"`
}

type CooldownCheckResponse struct {
	InCooldown bool  `json:"inCooldown"`
	Remaining  int64 `json:"remaining"`
}

type CooldownSubmitResponse struct {
	Success       bool   `json:"success"`
	CooldownUntil string `json:"cooldownUntil,omitempty"`
	InCooldown    bool   `json:"inCooldown,omitempty"`
	Remaining     int64  `json:"remaining,omitempty"`
	Error         string `json:"error,omitempty"`
}

type NotifyResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type EvaluateRequest struct {
	DeviceID string `json:"device_id"`
	Token    string `json:"token,omitempty"`
}

type EvaluateResponse struct {
	State            string `json:"state"`
	Reason           string `json:"reason,omitempty"`
	Remaining        int64  `json:"remaining,omitempty"`
	SessionExpiresAt string `json:"sessionExpiresAt,omitempty"`
}

type GateConfigResponse struct {
	PresentationDelay int64  `json:"presentationDelay"`
	PollInterval      int64  `json:"pollInterval"`
	FormShape         string `json:"formShape"`
}
