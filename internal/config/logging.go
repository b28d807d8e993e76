package config

import (
	"log/slog"
	"strings"
)

// LogLevelEnv selects the log level when -v is not given.
const LogLevelEnv = "FTPDEPLOY_LOG_LEVEL"

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLogLevel maps a level name to a slog.Level. Verbose always wins; unknown names fall back to info.
func ParseLogLevel(verbose bool, raw string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	if level, ok := logLevels[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return level
	}
	return slog.LevelInfo
}
