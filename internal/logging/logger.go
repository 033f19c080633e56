package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is a log severity
type Level int

// Logger levels
const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	globalLogger *Logger
	globalMu     sync.Mutex

	defaultLogDir  = ".todrec/logs"
	defaultLogFile = "todrec.log"
	maxLogSize     = int64(10 * 1024 * 1024) // 10MB
	maxLogAge      = 7 * 24 * time.Hour
)

// Logger writes leveled lines to a rotating file, or to any writer
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	logger *log.Logger
	level  Level
	// logPath is empty for writer-backed loggers, which never rotate
	logPath string

	maxSize     int64
	currentSize int64
}

// Initialize sets up the global logger writing under projectDir
func Initialize(projectDir string) error {
	l := &Logger{
		level:   INFO,
		maxSize: maxLogSize,
	}
	if err := l.openIn(projectDir); err != nil {
		return err
	}

	globalMu.Lock()
	old := globalLogger
	globalLogger = l
	globalMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// New creates a logger writing to w at the given level. Tests use it
// with a buffer.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		logger: log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds),
		level:  level,
	}
}

// SetGlobal replaces the global logger
func SetGlobal(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// GetLogger returns the global logger. Before Initialize it discards
// everything, so library code and tests never touch the filesystem.
func GetLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = New(io.Discard, INFO)
	}
	return globalLogger
}

func (l *Logger) openIn(projectDir string) error {
	logDir := filepath.Join(projectDir, defaultLogDir)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	l.logPath = filepath.Join(logDir, defaultLogFile)
	return l.openLogFile()
}

func (l *Logger) openLogFile() error {
	file, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if info, err := file.Stat(); err == nil {
		l.currentSize = info.Size()
	}

	l.file = file
	l.logger = log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	return nil
}

// rotateIfNeeded moves a full log file aside and starts a new one
func (l *Logger) rotateIfNeeded() error {
	if l.logPath == "" || l.currentSize < l.maxSize {
		return nil
	}

	if l.file != nil {
		l.file.Close()
	}

	timestamp := time.Now().Format("20060102-150405")
	rotatedPath := filepath.Join(filepath.Dir(l.logPath), fmt.Sprintf("todrec-%s.log", timestamp))
	if err := os.Rename(l.logPath, rotatedPath); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	if err := l.openLogFile(); err != nil {
		return err
	}

	go cleanOldLogs(filepath.Dir(l.logPath))
	return nil
}

// cleanOldLogs removes rotated logs older than maxLogAge
func cleanOldLogs(logDir string) {
	files, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-maxLogAge)
	for _, file := range files {
		if file.IsDir() || file.Name() == defaultLogFile || filepath.Ext(file.Name()) != ".log" {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(logDir, file.Name()))
		}
	}
}

func (l *Logger) write(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || l.logger == nil {
		return
	}

	l.rotateIfNeeded()

	fullMsg := fmt.Sprintf("[%s] %s", level, fmt.Sprintf(format, v...))
	l.logger.Output(3, fullMsg)
	l.currentSize += int64(len(fullMsg)) + 1
}

// String returns the level name
func (lv Level) String() string {
	switch lv {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name such as "debug" or "WARN"
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.write(DEBUG, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.write(INFO, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.write(WARN, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.write(ERROR, format, v...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.write(FATAL, format, v...)
	os.Exit(1)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.logger = nil
		return err
	}
	return nil
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	return l.logPath
}

// Debug logs a debug message using the global logger
func Debug(format string, v ...interface{}) {
	GetLogger().Debug(format, v...)
}

// Info logs an info message using the global logger
func Info(format string, v ...interface{}) {
	GetLogger().Info(format, v...)
}

// Warn logs a warning message using the global logger
func Warn(format string, v ...interface{}) {
	GetLogger().Warn(format, v...)
}

// Error logs an error message using the global logger
func Error(format string, v ...interface{}) {
	GetLogger().Error(format, v...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(format string, v ...interface{}) {
	GetLogger().Fatal(format, v...)
}

// Writer returns an io.Writer that logs each write at INFO
func Writer() io.Writer {
	return logWriter{}
}

type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	GetLogger().Info("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// RedirectStandardLog redirects the standard log package to our logger.
// chromedp reports through it.
func RedirectStandardLog() {
	log.SetOutput(Writer())
	log.SetFlags(0)
}
