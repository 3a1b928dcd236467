package jobs

const (
	JobNameLedgerRetention = "ledger_retention"
	JobNameThrottleCleanup = "throttle_cleanup"
)
