package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyHost       = "host"
	KeyPort       = "port"
	KeyPath       = "path"
	KeyRemotePath = "remote_path"
	KeySize       = "size"
	KeyCount      = "count"
	KeyCommand    = "command"
	KeyDryRun     = "dry_run"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Host(h string) slog.Attr         { return slog.String(KeyHost, h) }
func Port(p int) slog.Attr            { return slog.Int(KeyPort, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func RemotePath(p string) slog.Attr   { return slog.String(KeyRemotePath, p) }
func Size(human string) slog.Attr     { return slog.String(KeySize, human) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func DryRun(enabled bool) slog.Attr   { return slog.Bool(KeyDryRun, enabled) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
