// Package errorhandler is the failure-reporting core of the SenAI client:
// a categorized error log sink, failure classification with a pure retry
// policy, and the bounded retry executor the HTTP layer wraps every call in.
//
// Failures travel through the client as "Error:"-prefixed strings rather
// than Go errors; see ErrorPrefix and the retry functions for the contract.
package errorhandler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Category groups errors by origin for log filtering.
type Category int

const (
	CategoryNetwork Category = iota
	CategoryJSON
	CategorySystem
	CategoryValidation
	CategoryUnknown
)

func (c Category) String() string {
	switch c {
	case CategoryNetwork:
		return "NETWORK"
	case CategoryJSON:
		return "JSON"
	case CategorySystem:
		return "SYSTEM"
	case CategoryValidation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// Severity orders errors by operator urgency.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARN"
	case SeverityError:
		return "ERROR"
	default:
		return "CRITICAL"
	}
}

// ErrorInfo is one logged event. TechnicalDetails carries the raw
// underlying error text; SystemErrorCode the platform errno when one
// could be extracted.
type ErrorInfo struct {
	Category         Category
	Severity         Severity
	Message          string
	Context          string
	TechnicalDetails string
	SystemErrorCode  uint32
}

// Handler writes one formatted line per event to a rotating log file,
// mirrors the event to a zap logger, and invokes an optional callback.
// All methods are safe for concurrent use.
type Handler struct {
	mu       sync.Mutex
	out      io.Writer
	path     string
	logger   *zap.Logger
	callback func(ErrorInfo)

	// overridable in tests
	sleep func(time.Duration)
	now   func() time.Time
}

// New opens the error log at logPath, creating it if needed. An empty
// path selects DefaultLogPath. A nil logger disables the zap mirror.
func New(logPath string, logger *zap.Logger) *Handler {
	if logPath == "" {
		logPath = DefaultLogPath()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		out: &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		},
		path:   logPath,
		logger: logger.With(zap.String("component", "errorhandler")),
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// NewNop returns a Handler that discards everything. Useful as a default
// when the caller does not care about the error log.
func NewNop() *Handler {
	return &Handler{
		out:    io.Discard,
		logger: zap.NewNop(),
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// DefaultLogPath is senai.log beside the executable, falling back to the
// working directory when the executable path cannot be resolved.
func DefaultLogPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "senai.log"
	}
	return filepath.Join(filepath.Dir(exe), "senai.log")
}

// LogFilePath returns the path the handler writes to.
func (h *Handler) LogFilePath() string { return h.path }

// SetErrorCallback installs a hook invoked after every logged event, e.g.
// to surface errors in a UI. A nil callback removes the hook.
func (h *Handler) SetErrorCallback(cb func(ErrorInfo)) {
	h.mu.Lock()
	h.callback = cb
	h.mu.Unlock()
}

// LogError records one event: file line, zap mirror, then callback.
func (h *Handler) LogError(info ErrorInfo) {
	line := h.formatLine(info)

	h.mu.Lock()
	if h.out != nil {
		fmt.Fprintln(h.out, line)
	}
	cb := h.callback
	h.mu.Unlock()

	fields := []zap.Field{
		zap.String("category", info.Category.String()),
		zap.String("context", info.Context),
	}
	if info.TechnicalDetails != "" {
		fields = append(fields, zap.String("technical", info.TechnicalDetails))
	}
	if info.SystemErrorCode != 0 {
		fields = append(fields, zap.Uint32("system_error_code", info.SystemErrorCode))
	}
	switch info.Severity {
	case SeverityInfo:
		h.logger.Info(info.Message, fields...)
	case SeverityWarning:
		h.logger.Warn(info.Message, fields...)
	default:
		h.logger.Error(info.Message, fields...)
	}

	if cb != nil {
		cb(info)
	}
}

// Log is the shorthand for events without technical details.
func (h *Handler) Log(category Category, severity Severity, message, context string) {
	h.LogError(ErrorInfo{
		Category: category,
		Severity: severity,
		Message:  message,
		Context:  context,
	})
}

// LogSystemError records a System-category error, extracting the platform
// error number when err wraps a syscall.Errno.
func (h *Handler) LogSystemError(message, context string, err error) {
	info := ErrorInfo{
		Category: CategorySystem,
		Severity: SeverityError,
		Message:  message,
		Context:  context,
	}
	if err != nil {
		info.TechnicalDetails = err.Error()
		var errno syscall.Errno
		if errors.As(err, &errno) {
			info.SystemErrorCode = uint32(errno)
		}
	}
	h.LogError(info)
}

func (h *Handler) formatLine(info ErrorInfo) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(h.now().Format("2006-01-02 15:04:05.000"))
	b.WriteString("] [")
	b.WriteString(info.Severity.String())
	b.WriteString("] [")
	b.WriteString(info.Category.String())
	b.WriteString("]")
	if info.Context != "" {
		b.WriteString(" [")
		b.WriteString(info.Context)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(info.Message)
	if info.TechnicalDetails != "" {
		b.WriteString(" | Technical: ")
		b.WriteString(info.TechnicalDetails)
	}
	if info.SystemErrorCode != 0 {
		fmt.Fprintf(&b, " | System Error Code: %d (%s)",
			info.SystemErrorCode, syscall.Errno(info.SystemErrorCode).Error())
	}
	return b.String()
}

// Close flushes and closes the underlying log file.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if closer, ok := h.out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
