package types

// RunMode is the deployment mode the service runs in
type RunMode string

const (
	ModeLocal RunMode = "local"
	ModeProd  RunMode = "prod"
)

// LogLevel controls the logger verbosity
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ContextKey is the type used for values stored on a request context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
)

// HeaderRequestID is the request id header echoed on every response
const HeaderRequestID = "X-Request-ID"
