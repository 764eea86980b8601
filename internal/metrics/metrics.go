// Package metrics exports run statistics in the Prometheus text format.
//
// hlsmaker is a short-lived CLI, so nothing is served over HTTP. Each run
// fills a private registry and writes it to a node_exporter textfile
// collector path when one is configured.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hlsmaker"

// Recorder collects metrics for one run. A nil Recorder discards everything.
type Recorder struct {
	registry *prometheus.Registry

	runTimestamp   prometheus.Gauge
	runDuration    prometheus.Gauge
	runPresets     *prometheus.GaugeVec
	presetSuccess  *prometheus.GaugeVec
	presetDuration *prometheus.GaugeVec
	presetBytes    *prometheus.GaugeVec
	invocations    *prometheus.CounterVec
}

// NewRecorder builds a Recorder backed by its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "last_completed_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of the last run",
		}),
		runPresets: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "presets",
			Help:      "Presets in the last run by outcome",
		}, []string{"status"}),
		presetSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "preset",
			Name:      "success",
			Help:      "1 when the preset completed in the last run, 0 otherwise",
		}, []string{"tier"}),
		presetDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "preset",
			Name:      "step_duration_seconds",
			Help:      "Duration of each preset step in the last run",
		}, []string{"tier", "step"}),
		presetBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "preset",
			Name:      "intermediate_bytes",
			Help:      "Size of the transcoded MP4 for each preset",
		}, []string{"tier"}),
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tool",
			Name:      "invocations_total",
			Help:      "External tool invocations by result",
		}, []string{"tool", "result"}),
	}
}

// ObserveStep records one external tool invocation for a preset.
func (r *Recorder) ObserveStep(tier, step string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.invocations.WithLabelValues(step, result).Inc()
	r.presetDuration.WithLabelValues(tier, step).Set(duration.Seconds())
}

// ObserveIntermediate records the size of a preset's transcoded file.
func (r *Recorder) ObserveIntermediate(tier string, size int64) {
	if r == nil {
		return
	}
	r.presetBytes.WithLabelValues(tier).Set(float64(size))
}

// ObservePreset records the final outcome of a preset.
func (r *Recorder) ObservePreset(tier string, ok bool) {
	if r == nil {
		return
	}
	value := 0.0
	if ok {
		value = 1
	}
	r.presetSuccess.WithLabelValues(tier).Set(value)
}

// ObserveRun records run totals.
func (r *Recorder) ObserveRun(succeeded, failed, skipped int, duration time.Duration, finished time.Time) {
	if r == nil {
		return
	}
	r.runPresets.WithLabelValues("succeeded").Set(float64(succeeded))
	r.runPresets.WithLabelValues("failed").Set(float64(failed))
	r.runPresets.WithLabelValues("skipped").Set(float64(skipped))
	r.runDuration.Set(duration.Seconds())
	r.runTimestamp.Set(float64(finished.Unix()))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The write is atomic, as required by the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if path == "" {
		return errors.New("metrics textfile path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
