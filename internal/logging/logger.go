// Package logging provides component-tagged slog loggers writing to stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldExpenseID = "expense_id"
	FieldError     = "error"
	FieldPath      = "path"
)

// Component names.
const (
	ComponentApp     = "app"
	ComponentStore   = "store"
	ComponentExpense = "expense"
	ComponentSource  = "source"
	ComponentReport  = "report"
	ComponentDaemon  = "daemon"
	ComponentConfig  = "config"
)

// Operation names.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpSetting = "setting"
	OpRestore = "restore"
	OpImport  = "import"
	OpRender  = "render"
)

var (
	level = new(slog.LevelVar)

	mu      sync.RWMutex
	handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
)

// SetLevel changes the level of every logger handed out by For.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Level returns the current level.
func Level() slog.Level {
	return level.Level()
}

// SetOutput redirects logs to w. Loggers obtained earlier keep their handler.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// For returns a logger tagged with the component name.
func For(component string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slog.New(handler).With(FieldComponent, component)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Err is shorthand for an error attribute.
func Err(err error) slog.Attr {
	return slog.Any(FieldError, err)
}
