package session

type Key string

var (
	KeyGranted   Key = "gate_granted"
	KeyCreatedAt Key = "gate_created_at"
	KeyExpiresAt Key = "gate_expires_at"
)
