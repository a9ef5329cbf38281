package apierr

import "fmt"

// Kind classifies API failures so callers can branch on the outcome
// instead of inspecting raw errors.
type Kind string

const (
	KindTransport Kind = "transport"  // timeout, connection refused, DNS
	KindSchema    Kind = "schema"     // malformed JSON or missing envelope fields
	KindTooLong   Kind = "too_long"   // HTTP 414, template structurally unusable
	KindAuth      Kind = "auth"       // 401/403, cookie rejected
	KindRateLimit Kind = "rate_limit" // 429
	KindServer    Kind = "server"     // 5xx
	KindNotFound  Kind = "not_found"  // 404
	KindUnknown   Kind = "unknown"
)

// Error is a typed API error carrying the failure kind and the HTTP
// status code when one was observed (0 for transport failures).
type Error struct {
	Kind    Kind
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("weibo %s error (code %d): %s", e.Kind, e.Code, e.Message)
}

// New constructs a typed error.
func New(kind Kind, code int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// FromStatus maps a non-200 HTTP status code to an error kind.
func FromStatus(code int) Kind {
	switch {
	case code == 414:
		return KindTooLong
	case code == 401 || code == 403:
		return KindAuth
	case code == 404:
		return KindNotFound
	case code == 429:
		return KindRateLimit
	case code >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// IsRetryable reports whether an error of the given kind is worth
// retrying against the same endpoint. too_long is deliberately not
// retryable: the template itself is unusable for the id.
func IsRetryable(kind Kind) bool {
	switch kind {
	case KindTransport, KindRateLimit, KindServer:
		return true
	default:
		return false
	}
}
