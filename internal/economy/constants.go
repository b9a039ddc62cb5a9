package economy

// Defaults
const (
	DefaultStartingBalance int64 = 1000
)

// Log messages
const (
	LogMsgAccountOpened  = "Economy account opened"
	LogMsgWithdrawn      = "Funds withdrawn"
	LogMsgDeposited      = "Funds deposited"
	LogMsgWithdrawDenied = "Withdrawal denied"
)
