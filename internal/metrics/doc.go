// Package metrics records deploy metrics.
//
// Components receive a Recorder and never check for nil: NoopRecorder is the
// default. The CLI swaps in a PrometheusRecorder when --metrics-file is given
// and writes the gathered registry as a node-exporter textfile once the run
// finishes, which suits a one-shot process that nothing scrapes.
package metrics
