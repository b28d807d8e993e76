package metrics

import (
	"testing"
	"time"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("sync", time.Second)
	r.ObserveDeployDuration(time.Second)
	r.IncDeployOutcome(OutcomeDryRun)
	r.IncFile(FilePlanned)
	r.AddBytes(1)
	r.IncDirCreated()
	r.IncDirPruned()
}
