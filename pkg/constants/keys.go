package constants

type contextKey string

const (
	LoggerKey  contextKey = "logger"
	TxKey      contextKey = "tx"
	PoolKey    contextKey = "pool"
	OrgIDKey   contextKey = "org_id"
	RequestKey contextKey = "request_meta"
)
