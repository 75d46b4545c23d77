package errorhandler

import "strings"

// FailureKind is the structured classification of a failed operation.
type FailureKind int

const (
	KindUnknown FailureKind = iota
	KindTimeout
	KindConnection
	KindTransient
	KindHTTPStatus
	KindParse
)

func (k FailureKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindTransient:
		return "transient"
	case KindHTTPStatus:
		return "http_status"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Failure is a classified error: the kind plus the HTTP status when the
// failure came from a status code.
type Failure struct {
	Kind   FailureKind
	Status int
}

// keyword table for classifying string-shaped failures. More specific
// phrases come before their substrings.
var messageKinds = []struct {
	substr string
	kind   FailureKind
	status int
}{
	{"timed out", KindTimeout, 0},
	{"timeout", KindTimeout, 0},
	{"failed to connect", KindConnection, 0},
	{"connection", KindConnection, 0},
	{"network", KindConnection, 0},
	{"temporary", KindTransient, 0},
	{"503", KindHTTPStatus, 503},
	{"502", KindHTTPStatus, 502},
	{"504", KindHTTPStatus, 504},
}

// Classify maps a failure message to its kind. Matching is
// case-insensitive substring search, so text that merely mentions a
// status code classifies as that status; callers holding a real status
// code should use ClassifyStatus instead.
func Classify(message string) Failure {
	lower := strings.ToLower(message)
	for _, mk := range messageKinds {
		if strings.Contains(lower, mk.substr) {
			return Failure{Kind: mk.kind, Status: mk.status}
		}
	}
	if strings.Contains(lower, "parse") {
		return Failure{Kind: KindParse}
	}
	return Failure{Kind: KindUnknown}
}

// ClassifyStatus classifies an HTTP status code directly.
func ClassifyStatus(code int) Failure {
	return Failure{Kind: KindHTTPStatus, Status: code}
}

// Retryable is the retry policy, a pure decision over the classified
// failure: timeouts, connection failures, and transient conditions are
// retried; HTTP statuses only when they signal an unavailable upstream.
func (f Failure) Retryable() bool {
	switch f.Kind {
	case KindTimeout, KindConnection, KindTransient:
		return true
	case KindHTTPStatus:
		return f.Status == 502 || f.Status == 503 || f.Status == 504
	default:
		return false
	}
}

// IsRetryableError reports whether a failure message describes a condition
// worth reattempting. Classification followed by the pure policy.
func IsRetryableError(message string) bool {
	return Classify(message).Retryable()
}

// UserFriendlyMessage renders a display string for an error. Technical
// details are appended only at plain Error severity: info and warning
// paths stay short, and critical events surface through the callback with
// the full ErrorInfo anyway.
func UserFriendlyMessage(info ErrorInfo) string {
	var msg string
	switch info.Category {
	case CategoryNetwork:
		lower := strings.ToLower(info.Message)
		switch {
		case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
			msg = "The server took too long to respond. Check your network connection or try again later."
		case strings.Contains(lower, "connect"):
			msg = "Could not reach the server. Check your network connection and the server address."
		default:
			msg = "A network error occurred while talking to the server. Please try again."
		}
	case CategoryJSON:
		msg = "The server sent data that could not be processed. Please try again."
	case CategorySystem:
		msg = "A system error occurred. Try again or restart the application."
	case CategoryValidation:
		msg = "The input could not be validated. Check the value and try again."
	default:
		msg = "An unexpected error occurred. Please try again."
	}
	if info.TechnicalDetails != "" && info.Severity == SeverityError {
		msg += "\nTechnical details: " + info.TechnicalDetails
	}
	return msg
}
