package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit statuses produced by the CLI adapter.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter writing user-facing messages to stderr.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// WithOutput redirects user-facing messages.
func (a *CLIErrorAdapter) WithOutput(w io.Writer) *CLIErrorAdapter {
	if w != nil {
		a.out = w
	}
	return a
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	classified, ok := AsClassified(err)
	if !ok {
		return ExitFailure
	}

	switch classified.Category() {
	case CategoryConfig, CategoryValidation:
		return ExitUsage
	case CategoryBuild:
		// The build tool's own status is passed through unchanged.
		if code, ok := classified.Context().GetInt(ContextExitCode); ok && code > 0 {
			return code
		}
		return ExitFailure
	default:
		return ExitFailure
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	if a.verbose {
		return fmt.Sprintf("Error: %v", err)
	}

	if classified, ok := AsClassified(err); ok {
		switch classified.Category() {
		case CategoryConfig, CategoryValidation, CategoryBuild:
			return "Error: " + classified.Message()
		}
	}
	return fmt.Sprintf("Error: %v", err)
}

// Report logs err, prints the user-facing message and returns the exit code.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return ExitOK
	}
	a.logError(err)
	fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
	for key, value := range classified.Context() {
		attrs = append(attrs, slog.Any(key, value))
	}
	if cause := classified.Cause(); cause != nil {
		attrs = append(attrs, slog.String("cause", cause.Error()))
	}
	attrs = append(attrs, slog.String("severity", string(classified.Severity())))
	a.logger.LogAttrs(context.Background(), slog.LevelError, classified.Message(), attrs...)
}
