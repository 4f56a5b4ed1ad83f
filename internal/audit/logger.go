package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the audit file created inside the audit directory.
const FileName = "audit.jsonl"

// Outcomes recorded in an Entry.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entry is one audit record.
type Entry struct {
	Timestamp time.Time      `json:"ts"`
	RequestID string         `json:"requestId,omitempty"`
	User      string         `json:"user"`
	Action    string         `json:"action"`
	Method    string         `json:"method"`
	Params    map[string]any `json:"params"`
	Outcome   string         `json:"outcome"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latencyMs"`
}

// Rotation bounds the audit file. Zero values use lumberjack's defaults.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger writes audit entries. It is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	filePath string
	out      io.Writer
	rotator  *lumberjack.Logger
	errLog   *zap.Logger
}

// NewLogger creates a logger appending to dir/audit.jsonl.
func NewLogger(dir string, rotation Rotation) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	filePath := filepath.Join(dir, FileName)
	rotator := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}

	return &Logger{
		filePath: filePath,
		out:      rotator,
		rotator:  rotator,
		errLog:   zap.NewNop(),
	}, nil
}

// NewWriterLogger creates a logger writing to w.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{out: w, errLog: zap.NewNop()}
}

// SetErrorLogger sets where write failures are reported.
func (l *Logger) SetErrorLogger(logger *zap.Logger) {
	if logger != nil {
		l.errLog = logger
	}
}

// Record appends e. A zero Timestamp is set to now.
func (l *Logger) Record(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.User == "" {
		e.User = "anonymous"
	}
	if e.Params == nil {
		e.Params = map[string]any{}
	}

	data, err := json.Marshal(e)
	if err != nil {
		l.errLog.Error("failed to marshal audit entry", zap.Error(err), zap.String("action", e.Action))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.out.Write(append(data, '\n')); err != nil {
		l.errLog.Error("failed to write audit entry", zap.Error(err), zap.String("action", e.Action))
	}
}

// FilePath returns the audit file path, or "" for a writer logger.
func (l *Logger) FilePath() string {
	return l.filePath
}

// Rotate closes the current file and starts a new one.
func (l *Logger) Rotate() error {
	if l.rotator == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.rotator.Rotate(); err != nil {
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	if l.rotator == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotator.Close()
}
