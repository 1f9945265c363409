// Package audit emits the structured trail of pipeline decisions for one
// ticket. Prompt and model output are recorded as content hash plus length
// only; raw text never crosses the audit boundary.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sink receives pipeline audit events keyed by ticket key.
type Sink interface {
	TicketReceived(key string)
	ContextFetched(key string, count int)
	PromptSent(key, hash string, length int)
	OutputReceived(key, hash string, length int)
	GuardBlocked(key, reason string, blockedPaths []string)
	OperationFailed(key, stage, message string)
	PullRequestCreated(key, url string, number int)
}

// HashContent returns the sha256 hex digest of content, the only form in
// which prompt or model text may be audited.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Logger is a Sink writing structured events to a slog handler. Events go
// to stdout and, when a log directory is available, to a date-stamped
// audit file as well.
type Logger struct {
	log *slog.Logger
}

// NewLogger creates an audit logger writing to stdout and to a daily file
// under ~/.<appName>/logs. The file is best-effort: when the directory
// cannot be created the logger falls back to stdout only.
func NewLogger(appName string) *Logger {
	var w io.Writer = os.Stdout

	if f, err := openAuditFile(appName); err == nil {
		w = io.MultiWriter(os.Stdout, f)
	}

	handler := slog.NewTextHandler(w, nil)
	return &Logger{log: slog.New(handler).With("component", "audit")}
}

// NewLoggerWithWriter creates an audit logger writing to the given writer.
func NewLoggerWithWriter(w io.Writer) *Logger {
	handler := slog.NewTextHandler(w, nil)
	return &Logger{log: slog.New(handler).With("component", "audit")}
}

// openAuditFile opens (creating as needed) the date-stamped audit log file.
func openAuditFile(appName string) (*os.File, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %v", err)
	}

	logsDir := filepath.Join(homeDir, "."+appName, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %v", err)
	}

	logFileName := fmt.Sprintf("%s-%s.log", appName, time.Now().Format("2006-01-02"))
	logFilePath := filepath.Join(logsDir, logFileName)

	return os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// TicketReceived records webhook acceptance of a ticket.
func (l *Logger) TicketReceived(key string) {
	l.log.Info("ticket received", "ticket", key)
}

// ContextFetched records how many context files survived assembly.
func (l *Logger) ContextFetched(key string, count int) {
	l.log.Info("context fetched", "ticket", key, "count", count)
}

// PromptSent records the prompt hash and length sent to generation.
func (l *Logger) PromptSent(key, hash string, length int) {
	l.log.Info("prompt sent", "ticket", key, "hash", hash, "length", length)
}

// OutputReceived records the hash and length of the raw model output.
func (l *Logger) OutputReceived(key, hash string, length int) {
	l.log.Info("output received", "ticket", key, "hash", hash, "length", length)
}

// GuardBlocked records a safety-guard rejection with the offending paths.
func (l *Logger) GuardBlocked(key, reason string, blockedPaths []string) {
	l.log.Warn("guard blocked", "ticket", key, "reason", reason, "blocked_paths", blockedPaths)
}

// OperationFailed records a stage failure.
func (l *Logger) OperationFailed(key, stage, message string) {
	l.log.Error("operation failed", "ticket", key, "stage", stage, "message", message)
}

// PullRequestCreated records the opened pull request.
func (l *Logger) PullRequestCreated(key, url string, number int) {
	l.log.Info("pull request created", "ticket", key, "url", url, "number", number)
}
