package constants

const (
	MaxAttempts = 5
	WordLength  = 6
)

const (
	GuessStatusExact   = "exact"
	GuessStatusPresent = "present"
	GuessStatusAbsent  = "absent"
)

const (
	SessionCookieName = "session_id"
)

const (
	RouteHome    = "/"
	RouteUpdates = "/updates"
	RouteAttempt = "/attempt"
	RouteNewGame = "/new-game"
	RouteStats   = "/stats"
	RouteHealthz = "/healthz"
)

const (
	ErrorCodeNotFound      = "not_found"
	ErrorCodeInvalidLength = "invalid_length"
	ErrorCodeAttemptLimit  = "attempt_limit"
	ErrorCodeStoreFailure  = "store_unavailable"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)
