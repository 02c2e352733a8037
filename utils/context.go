package utils

// ContextKey is the type for request-scoped context values
type ContextKey string

const (
	// RequestIDKey carries the request id assigned by the router
	RequestIDKey ContextKey = "request_id"

	// IPAddressKey carries the best-effort client address extracted at the HTTP boundary
	IPAddressKey ContextKey = "ip_address"

	// UserAgentKey carries the client User-Agent header
	UserAgentKey ContextKey = "user_agent"

	// EndpointKey carries the matched endpoint path
	EndpointKey ContextKey = "endpoint"

	// CancelFuncKey carries the cancel func of the request-scoped context
	CancelFuncKey ContextKey = "cancel_func"
)
