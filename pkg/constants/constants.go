package constants

type ContextKey string

const (
	AppKey       ContextKey = "app"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	SessionKey   ContextKey = "session"
	RequestStart ContextKey = "requestStart"
)
