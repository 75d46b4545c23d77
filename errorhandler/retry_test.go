package errorhandler

import (
	"bytes"
	"testing"
	"time"
)

// testHandler logs into a buffer and records sleeps instead of blocking.
func testHandler() (*Handler, *bytes.Buffer, *[]time.Duration) {
	var buf bytes.Buffer
	var sleeps []time.Duration
	h := NewNop()
	h.out = &buf
	h.now = func() time.Time {
		return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	}
	h.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return h, &buf, &sleeps
}

func TestRetryWithResult_RetryableExhaustsAllAttempts(t *testing.T) {
	h, _, sleeps := testHandler()

	calls := 0
	result := h.RetryOperationWithResult(func() string {
		calls++
		return "Error: HTTP 503"
	}, 3, time.Second, "GET request failed")

	if calls != 4 {
		t.Errorf("calls = %d, want 4 (maxRetries+1)", calls)
	}
	if result != "Error: HTTP 503" {
		t.Errorf("result = %q, want the last error verbatim", result)
	}
	if len(*sleeps) != 3 {
		t.Errorf("sleeps = %d, want 3", len(*sleeps))
	}
	for _, d := range *sleeps {
		if d != time.Second {
			t.Errorf("sleep = %v, want fixed 1s delay", d)
		}
	}
}

func TestRetryWithResult_NonRetryableReturnsImmediately(t *testing.T) {
	h, _, sleeps := testHandler()

	calls := 0
	result := h.RetryOperationWithResult(func() string {
		calls++
		return "Error: HTTP 404"
	}, 3, time.Second, "GET request failed")

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-retryable failure)", calls)
	}
	if result != "Error: HTTP 404" {
		t.Errorf("result = %q, want the error verbatim", result)
	}
	if len(*sleeps) != 0 {
		t.Errorf("sleeps = %d, want 0", len(*sleeps))
	}
}

func TestRetryWithResult_SucceedsAfterRetries(t *testing.T) {
	h, buf, _ := testHandler()

	calls := 0
	result := h.RetryOperationWithResult(func() string {
		calls++
		if calls < 3 {
			return "Error: Failed to connect"
		}
		return `{"status":"ok"}`
	}, 3, time.Second, "GET request failed")

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if result != `{"status":"ok"}` {
		t.Errorf("result = %q, want success body", result)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Operation succeeded after 2 retries")) {
		t.Errorf("missing success-after-retries log line, got: %s", buf.String())
	}
}

func TestRetryWithResult_ImmediateSuccessLogsNothing(t *testing.T) {
	h, buf, _ := testHandler()

	result := h.RetryOperationWithResult(func() string {
		return "ok"
	}, 3, time.Second, "GET request failed")

	if result != "ok" {
		t.Errorf("result = %q, want ok", result)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output on first-attempt success, got: %s", buf.String())
	}
}

func TestRetryWithResult_EmptyResultIsNonRetryableFailure(t *testing.T) {
	h, _, _ := testHandler()

	calls := 0
	result := h.RetryOperationWithResult(func() string {
		calls++
		return ""
	}, 3, time.Second, "")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if result != "" {
		t.Errorf("result = %q, want empty string returned verbatim", result)
	}
}

func TestRetryWithResult_ZeroMaxRetriesRunsOnce(t *testing.T) {
	h, _, sleeps := testHandler()

	calls := 0
	result := h.RetryOperationWithResult(func() string {
		calls++
		return "Error: HTTP 503"
	}, 0, time.Second, "")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if result != "Error: HTTP 503" {
		t.Errorf("result = %q", result)
	}
	if len(*sleeps) != 0 {
		t.Errorf("sleeps = %d, want 0", len(*sleeps))
	}
}

func TestRetryOperation_BoolVariant(t *testing.T) {
	h, buf, sleeps := testHandler()

	calls := 0
	ok := h.RetryOperation(func() bool {
		calls++
		return false
	}, 2, time.Second, "health check failed")

	if ok {
		t.Error("expected failure")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(*sleeps) != 2 {
		t.Errorf("sleeps = %d, want 2", len(*sleeps))
	}
	if !bytes.Contains(buf.Bytes(), []byte("health check failed (failed after 2 retries)")) {
		t.Errorf("missing exhaustion log line, got: %s", buf.String())
	}
}

func TestRetryOperation_SucceedsSecondAttempt(t *testing.T) {
	h, buf, _ := testHandler()

	calls := 0
	ok := h.RetryOperation(func() bool {
		calls++
		return calls == 2
	}, 3, time.Second, "")

	if !ok {
		t.Error("expected success")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Operation succeeded after 1 retries")) {
		t.Errorf("missing success log line, got: %s", buf.String())
	}
}

func TestIsErrorResult(t *testing.T) {
	if !IsErrorResult("Error: HTTP 500") {
		t.Error("prefixed string should be an error result")
	}
	if IsErrorResult(`{"ai_response":"Error: is a substring here"}`) {
		t.Error("prefix must be at the start")
	}
	if IsErrorResult("") {
		t.Error("empty string is not an error result")
	}
}
