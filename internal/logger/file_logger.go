package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger is the injected event/decision sink for the engine. It writes a
// leveled, timestamped log file per symbol and day.
type Logger struct {
	symbol  string
	logFile *os.File
	logger  *log.Logger
	mu      sync.Mutex
	logDir  string
}

// LogLevel represents different types of log entries.
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARN"
	LogLevelError    LogLevel = "ERROR"
	LogLevelDecision LogLevel = "DECISION"
	LogLevelStatus   LogLevel = "STATUS"
)

// NewLogger creates a file logger for the given symbol.
func NewLogger(symbol, logDir string) (*Logger, error) {
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_darwin_%s.log", symbol, timestamp)
	logPath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		symbol:  symbol,
		logFile: file,
		logger:  log.New(file, "", 0),
		logDir:  logDir,
	}
	l.writeSessionHeader()
	return l, nil
}

func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
DARWIN ENGINE SESSION STARTED
================================================================================
Symbol: %s
Started: %s
================================================================================
`, l.symbol, time.Now().Format("2006-01-02 15:04:05"))
	l.logger.Print(header)
}

// Log writes a formatted log entry with the specified level.
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	l.logger.Println(fmt.Sprintf("[%s] [%s] %s", timestamp, level, message))
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// LogWarning logs a warning with a topic prefix.
func (l *Logger) LogWarning(topic, format string, args ...interface{}) {
	l.Log(LogLevelWarning, "%s: %s", topic, fmt.Sprintf(format, args...))
}

// LogError logs an error with a topic prefix.
func (l *Logger) LogError(topic string, err error) {
	l.Log(LogLevelError, "%s: %v", topic, err)
}

// LogDecision records the consensus outcome for one cycle.
func (l *Logger) LogDecision(action string, confidence float64, rationale string) {
	l.Log(LogLevelDecision, "%s (confidence %.2f) | %s", action, confidence, rationale)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}
