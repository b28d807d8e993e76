package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "abc", RunID("abc")},
		{"Stage", KeyStage, "upload", Stage("upload")},
		{"Host", KeyHost, "ftp.example.com", Host("ftp.example.com")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"RemotePath", KeyRemotePath, "/public_html/a.txt", RemotePath("/public_html/a.txt")},
		{"Size", KeySize, "1.2 kB", Size("1.2 kB")},
		{"Command", KeyCommand, "npm run build", Command("npm run build")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.attr.Key != c.attrKey {
				t.Fatalf("key mismatch: got %s want %s", c.attr.Key, c.attrKey)
			}
			if c.attr.Value.String() != c.attrVal {
				t.Fatalf("value mismatch: got %s want %s", c.attr.Value.String(), c.attrVal)
			}
		})
	}
}

func TestTypedHelpers(t *testing.T) {
	if a := Port(21); a.Key != KeyPort || a.Value.Int64() != 21 {
		t.Fatalf("unexpected port attr: %v", a)
	}
	if a := Count(3); a.Key != KeyCount || a.Value.Int64() != 3 {
		t.Fatalf("unexpected count attr: %v", a)
	}
	if a := DryRun(true); a.Key != KeyDryRun || !a.Value.Bool() {
		t.Fatalf("unexpected dry_run attr: %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr: %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("expected empty string for nil error, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Key != KeyError || a.Value.String() != "boom" {
		t.Fatalf("unexpected error attr: %v", a)
	}
}
