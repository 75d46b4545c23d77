package errorhandler

import (
	"fmt"
	"strings"
	"time"
)

// ErrorPrefix marks a result string as a failure. Every failing operation
// in the client returns a string starting with this prefix; callers test
// with strings.HasPrefix.
const ErrorPrefix = "Error:"

// IsErrorResult reports whether an operation result carries the failure
// prefix.
func IsErrorResult(result string) bool {
	return strings.HasPrefix(result, ErrorPrefix)
}

// RetryOperation runs op up to maxRetries+1 times with a fixed delay
// between attempts, until it reports success. maxRetries of zero means a
// single attempt with no retries.
func (h *Handler) RetryOperation(op func() bool, maxRetries int, delay time.Duration, errorMessage string) bool {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if op() {
			if attempt > 0 {
				h.Log(CategoryNetwork, SeverityInfo,
					fmt.Sprintf("Operation succeeded after %d retries", attempt), "RetryOperation")
			}
			return true
		}
		if attempt < maxRetries {
			h.Log(CategoryNetwork, SeverityWarning,
				fmt.Sprintf("Operation failed, retrying (%d/%d)", attempt+1, maxRetries), "RetryOperation")
			h.sleep(delay)
		}
	}
	if errorMessage != "" {
		h.Log(CategoryNetwork, SeverityError,
			fmt.Sprintf("%s (failed after %d retries)", errorMessage, maxRetries), "RetryOperation")
	}
	return false
}

// RetryOperationWithResult runs op until it yields a success: a non-empty
// result without the error prefix. Failed attempts are retried only while
// the failure is retryable; a non-retryable failure (an empty result
// included) is returned to the caller immediately, verbatim.
func (h *Handler) RetryOperationWithResult(op func() string, maxRetries int, delay time.Duration, errorMessage string) string {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		result := op()
		if result != "" && !IsErrorResult(result) {
			if attempt > 0 {
				h.Log(CategoryNetwork, SeverityInfo,
					fmt.Sprintf("Operation succeeded after %d retries", attempt), "RetryOperationWithResult")
			}
			return result
		}
		if attempt < maxRetries && IsRetryableError(result) {
			h.Log(CategoryNetwork, SeverityWarning,
				fmt.Sprintf("Operation failed with retryable error, retrying (%d/%d): %s",
					attempt+1, maxRetries, result), "RetryOperationWithResult")
			h.sleep(delay)
			continue
		}
		if errorMessage != "" {
			h.Log(CategoryNetwork, SeverityError,
				fmt.Sprintf("%s (failed after %d attempts): %s", errorMessage, attempt+1, result),
				"RetryOperationWithResult")
		}
		return result
	}
	// Not reachable: the final iteration always returns above. Kept as a
	// guard so a future edit to the loop cannot leak an empty result.
	return "Error: Operation failed after maximum retries"
}
