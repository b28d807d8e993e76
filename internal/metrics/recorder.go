package metrics

import "time"

// OutcomeLabel enumerates the final status of a deploy.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeDryRun   OutcomeLabel = "dry_run"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// FileResult enumerates per-file decisions.
type FileResult string

const (
	FileUploaded FileResult = "uploaded"
	FilePlanned  FileResult = "planned"
	FileSkipped  FileResult = "skipped"
	FileFailed   FileResult = "failed"
)

// Recorder defines observability hooks for a deploy run.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveDeployDuration(d time.Duration)
	IncDeployOutcome(outcome OutcomeLabel)
	IncFile(result FileResult)
	AddBytes(n int64)
	IncDirCreated()
	IncDirPruned()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveDeployDuration(time.Duration)        {}
func (NoopRecorder) IncDeployOutcome(OutcomeLabel)              {}
func (NoopRecorder) IncFile(FileResult)                         {}
func (NoopRecorder) AddBytes(int64)                             {}
func (NoopRecorder) IncDirCreated()                             {}
func (NoopRecorder) IncDirPruned()                              {}
