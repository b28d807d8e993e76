package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "ftpdeploy"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration  *prom.HistogramVec
	deployDuration prom.Histogram
	outcomes       *prom.CounterVec
	files          *prom.CounterVec
	bytes          prom.Counter
	dirsCreated    prom.Counter
	dirsPruned     prom.Counter
	lastRun        prom.Gauge
}

// NewPrometheusRecorder constructs the deploy metrics and registers them with reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of deploy stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		deployDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "deploy_duration_seconds",
			Help:      "Total deploy duration",
			Buckets:   prom.DefBuckets,
		}),
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "deploy_outcomes_total",
			Help:      "Deploy outcomes by final status",
		}, []string{"outcome"}),
		files: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files seen during the walk by decision",
		}, []string{"result"}),
		bytes: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes sent with STOR",
		}),
		dirsCreated: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "remote_dirs_created_total",
			Help:      "Remote directories created",
		}),
		dirsPruned: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "local_dirs_pruned_total",
			Help:      "Local directories excluded by ignore patterns",
		}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last deploy finished",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.deployDuration, pr.outcomes, pr.files, pr.bytes, pr.dirsCreated, pr.dirsPruned, pr.lastRun)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveDeployDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.deployDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDeployOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.outcomes.WithLabelValues(string(outcome)).Inc()
	p.lastRun.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncFile(result FileResult) {
	if p == nil {
		return
	}
	p.files.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddBytes(n int64) {
	if p == nil || n <= 0 {
		return
	}
	p.bytes.Add(float64(n))
}

func (p *PrometheusRecorder) IncDirCreated() {
	if p == nil {
		return
	}
	p.dirsCreated.Inc()
}

func (p *PrometheusRecorder) IncDirPruned() {
	if p == nil {
		return
	}
	p.dirsPruned.Inc()
}

// WriteTextfile writes everything gathered by g to filename in the text
// exposition format, atomically, for the node exporter textfile collector.
func WriteTextfile(filename string, g prom.Gatherer) error {
	if err := prom.WriteToTextfile(filename, g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", filename, err)
	}
	return nil
}
