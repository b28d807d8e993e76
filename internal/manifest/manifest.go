// Package manifest records what a deploy run did, for audit and for
// comparing runs. Reports are written as JSON, or YAML when the target file
// has a .yaml or .yml extension.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/ftpdeploy/internal/deploy"
	"git.home.luguber.info/inful/ftpdeploy/internal/git"
)

// Status values recorded in a report.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusDryRun  = "dry_run"
)

// DeployReport is the record of one deploy run.
type DeployReport struct {
	ID         string          `json:"id" yaml:"id"`
	Timestamp  time.Time       `json:"timestamp" yaml:"timestamp"`
	Version    string          `json:"version,omitempty" yaml:"version,omitempty"`
	Host       string          `json:"host" yaml:"host"`
	RemoteBase string          `json:"remote_base" yaml:"remote_base"`
	LocalDir   string          `json:"local_dir" yaml:"local_dir"`
	DryRun     bool            `json:"dry_run" yaml:"dry_run"`
	Exported   bool            `json:"exported" yaml:"exported"`
	Revision   *git.Revision   `json:"revision,omitempty" yaml:"revision,omitempty"`
	Uploads    []deploy.Upload `json:"uploads" yaml:"uploads"`
	Counts     Counts          `json:"counts" yaml:"counts"`
	Status     string          `json:"status" yaml:"status"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	Duration   int64           `json:"duration_ms" yaml:"duration_ms"`
}

// Counts summarizes the walk.
type Counts struct {
	Uploaded int   `json:"uploaded" yaml:"uploaded"`
	Skipped  int   `json:"skipped" yaml:"skipped"`
	Pruned   int   `json:"pruned" yaml:"pruned"`
	Dirs     int   `json:"dirs" yaml:"dirs"`
	Bytes    int64 `json:"bytes" yaml:"bytes"`
}

// NewRunID returns a fresh identifier for a deploy run.
func NewRunID() string {
	return uuid.NewString()
}

// New starts a report for run id.
func New(id string, started time.Time) *DeployReport {
	if id == "" {
		id = NewRunID()
	}
	return &DeployReport{ID: id, Timestamp: started.UTC(), Uploads: []deploy.Upload{}}
}

// Complete fills the report from a deploy result and its error.
func (r *DeployReport) Complete(res *deploy.Result, runErr error) {
	if res != nil {
		r.LocalDir = res.LocalDir
		r.RemoteBase = res.RemoteBase
		r.DryRun = res.DryRun
		if res.Uploads != nil {
			r.Uploads = res.Uploads
		}
		r.Counts = Counts{
			Uploaded: len(res.Uploads),
			Skipped:  res.Skipped,
			Pruned:   res.Pruned,
			Dirs:     len(res.Dirs),
			Bytes:    res.Bytes,
		}
		r.Duration = res.Duration.Milliseconds()
	}
	switch {
	case runErr != nil:
		r.Status = StatusFailed
		r.Error = runErr.Error()
	case r.DryRun:
		r.Status = StatusDryRun
	default:
		r.Status = StatusSuccess
	}
}

// ToJSON serializes the report to JSON.
func (r *DeployReport) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// ToYAML serializes the report to YAML.
func (r *DeployReport) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// Hash fingerprints the uploaded set (remote path and size), independent of
// walk order, so two runs that published the same tree compare equal.
func (r *DeployReport) Hash() string {
	entries := make([]string, 0, len(r.Uploads))
	for _, u := range r.Uploads {
		entries = append(entries, fmt.Sprintf("%s\x00%d", u.Remote, u.Size))
	}
	sort.Strings(entries)
	sum := sha256.Sum256([]byte(strings.Join(entries, "\n")))
	return hex.EncodeToString(sum[:])
}

// Write stores the report at path, choosing YAML for .yaml/.yml and JSON otherwise.
func (r *DeployReport) Write(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = r.ToYAML()
	default:
		data, err = r.ToJSON()
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
