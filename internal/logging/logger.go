// Package logging provides config-driven categorized file-based logging for
// trialsight. Logs are written to a logs directory with separate files per
// category. When debug mode is off, every call is a silent no-op.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup and configuration
	CategoryStore      Category = "store"      // Entity store mutations
	CategoryAudit      Category = "audit"      // Audit log mirror
	CategoryGenAI      Category = "genai"      // Generation client calls
	CategoryAnalysis   Category = "analysis"   // Document analysis pipeline
	CategorySimulation Category = "simulation" // Risk simulation engine
	CategoryAssistant  Category = "assistant"  // Assistant sessions and drafts
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	enabled   bool
	logLevel  = LevelInfo
)

// Initialize sets up the logging directory. With debug false this is a
// silent no-op and all subsequent logging calls are dropped.
func Initialize(dir string, debug bool, level string) error {
	enabled = debug
	if !enabled {
		return nil
	}
	if dir == "" {
		return fmt.Errorf("logs directory required")
	}
	logsDir = dir

	switch level {
	case "debug":
		logLevel = LevelDebug
	case "info", "":
		logLevel = LevelInfo
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== trialsight logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %d", logLevel)
	return nil
}

// Get returns (or creates) a logger for the given category. Returns a no-op
// logger if logging is disabled.
func Get(category Category) *Logger {
	if !enabled || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation a matter of deleting old files.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always written if the logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - quick logging without getting a logger first.
// These are no-ops when logging is disabled.
// =============================================================================

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// BootError logs an error to the boot category.
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

// Store logs to the store category.
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }

// StoreDebug logs debug to the store category.
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }

// Audit logs to the audit category.
func Audit(format string, args ...interface{}) { Get(CategoryAudit).Info(format, args...) }

// GenAI logs to the genai category.
func GenAI(format string, args ...interface{}) { Get(CategoryGenAI).Info(format, args...) }

// GenAIDebug logs debug to the genai category.
func GenAIDebug(format string, args ...interface{}) { Get(CategoryGenAI).Debug(format, args...) }

// GenAIWarn logs a warning to the genai category.
func GenAIWarn(format string, args ...interface{}) { Get(CategoryGenAI).Warn(format, args...) }

// GenAIError logs an error to the genai category.
func GenAIError(format string, args ...interface{}) { Get(CategoryGenAI).Error(format, args...) }

// Analysis logs to the analysis category.
func Analysis(format string, args ...interface{}) { Get(CategoryAnalysis).Info(format, args...) }

// AnalysisError logs an error to the analysis category.
func AnalysisError(format string, args ...interface{}) { Get(CategoryAnalysis).Error(format, args...) }

// Simulation logs to the simulation category.
func Simulation(format string, args ...interface{}) { Get(CategorySimulation).Info(format, args...) }

// SimulationError logs an error to the simulation category.
func SimulationError(format string, args ...interface{}) {
	Get(CategorySimulation).Error(format, args...)
}

// Assistant logs to the assistant category.
func Assistant(format string, args ...interface{}) { Get(CategoryAssistant).Info(format, args...) }

// AssistantDebug logs debug to the assistant category.
func AssistantDebug(format string, args ...interface{}) {
	Get(CategoryAssistant).Debug(format, args...)
}

// AssistantError logs an error to the assistant category.
func AssistantError(format string, args ...interface{}) {
	Get(CategoryAssistant).Error(format, args...)
}
