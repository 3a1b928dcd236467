package metrics

const Namespace = "pulsepass"

const (
	LedgerBackendMemory   = "memory"
	LedgerBackendRedis    = "redis"
	LedgerBackendPostgres = "postgres"
)

const (
	CheckResultClear    = "clear"
	CheckResultCooldown = "cooldown"
	CheckResultError    = "error"
)

const (
	LedgerOperationCheck         = "check"
	LedgerOperationSubmit        = "submit"
	LedgerOperationDeleteExpired = "delete_expired"
)
