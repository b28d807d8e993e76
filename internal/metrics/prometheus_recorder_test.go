package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("sync", 150*time.Millisecond)
	pr.ObserveDeployDuration(500 * time.Millisecond)
	pr.IncDeployOutcome(OutcomeSuccess)
	pr.IncFile(FileUploaded)
	pr.IncFile(FileSkipped)
	pr.AddBytes(1024)
	pr.IncDirCreated()
	pr.IncDirPruned()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"ftpdeploy_stage_duration_seconds",
		"ftpdeploy_deploy_outcomes_total",
		"ftpdeploy_files_total",
		"ftpdeploy_uploaded_bytes_total",
		"ftpdeploy_remote_dirs_created_total",
	} {
		if !names[want] {
			t.Errorf("missing metric %s", want)
		}
	}
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncFile(FileUploaded)
	pr.AddBytes(10)
	pr.IncDeployOutcome(OutcomeFailed)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.AddBytes(2048)

	out := filepath.Join(t.TempDir(), "ftpdeploy.prom")
	if err := WriteTextfile(out, reg); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "ftpdeploy_uploaded_bytes_total 2048") {
		t.Errorf("unexpected textfile content:\n%s", data)
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg)
	if err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"), reg); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
