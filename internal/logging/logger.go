// Package logging provides categorized file-based logging for salespilot.
// Logs are written to the configured log directory with one file per
// category per day. Logging is a silent no-op unless debug mode is
// enabled, so production runs leave no log files behind.
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
	CategoryBoot      Category = "boot"      // Startup and initialization
	CategoryStore     Category = "store"     // SQLite operations
	CategoryIngest    Category = "ingest"    // CSV upload processing
	CategoryRAG       Category = "rag"       // Vector ingest and retrieval
	CategoryEmbedding Category = "embedding" // Embedding engine calls
	CategoryLLM       Category = "llm"       // LLM API calls
	CategoryChat      Category = "chat"      // Chat sessions
	CategoryDeck      Category = "deck"      // Deck generation
	CategoryAuth      Category = "auth"      // User accounts and sessions
)

// Logger writes to one category's log file. The zero value is a no-op.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	debugMode bool
)

// Initialize sets up the logging directory. Call once at startup. When
// debug is false this is a no-op and all loggers stay silent.
func Initialize(dir string, debug bool) error {
	loggersMu.Lock()
	debugMode = debug
	logsDir = dir
	loggersMu.Unlock()

	if !debug {
		return nil
	}
	if dir == "" {
		return fmt.Errorf("log directory required in debug mode")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== salespilot logging initialized ===")
	boot.Info("Logs directory: %s", dir)
	return nil
}

// IsDebugMode reports whether debug logging is active.
func IsDebugMode() bool {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	return debugMode
}

// Get returns the logger for a category, creating its file on first use.
// Outside debug mode it returns a no-op logger.
func Get(category Category) *Logger {
	loggersMu.RLock()
	if !debugMode || logsDir == "" {
		loggersMu.RUnlock()
		return &Logger{category: category}
	}
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
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not open %s: %v\n", logPath, err)
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

func (l *Logger) printf(level, format string, args ...interface{}) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) { l.printf("DEBUG", format, args...) }

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) { l.printf("INFO", format, args...) }

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...interface{}) { l.printf("WARN", format, args...) }

// Error logs an error.
func (l *Logger) Error(format string, args ...interface{}) { l.printf("ERROR", format, args...) }

// CloseAll closes every open log file. Call at shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for cat, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
		delete(loggers, cat)
	}
}

// Convenience helpers, one pair per hot category.

func Store(format string, args ...interface{})      { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }

func Ingest(format string, args ...interface{})      { Get(CategoryIngest).Info(format, args...) }
func IngestDebug(format string, args ...interface{}) { Get(CategoryIngest).Debug(format, args...) }

func RAG(format string, args ...interface{})      { Get(CategoryRAG).Info(format, args...) }
func RAGDebug(format string, args ...interface{}) { Get(CategoryRAG).Debug(format, args...) }

func Embedding(format string, args ...interface{}) { Get(CategoryEmbedding).Info(format, args...) }
func EmbeddingDebug(format string, args ...interface{}) {
	Get(CategoryEmbedding).Debug(format, args...)
}

func LLM(format string, args ...interface{})      { Get(CategoryLLM).Info(format, args...) }
func LLMDebug(format string, args ...interface{}) { Get(CategoryLLM).Debug(format, args...) }

func Chat(format string, args ...interface{}) { Get(CategoryChat).Info(format, args...) }
func Deck(format string, args ...interface{}) { Get(CategoryDeck).Info(format, args...) }
func Auth(format string, args ...interface{}) { Get(CategoryAuth).Info(format, args...) }

// Timer measures an operation for the performance-minded categories.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold warns when the operation exceeded the threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
