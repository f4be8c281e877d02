// Package metrics records per-run gauges for a stage and writes them in the
// Prometheus text format, for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Stage struct {
	name    string
	started time.Time
	reg     *prometheus.Registry

	Records  *prometheus.GaugeVec
	Matches  *prometheus.GaugeVec
	Duration prometheus.Gauge
	Success  prometheus.Gauge
	LastRun  prometheus.Gauge
}

func NewStage(name string) *Stage {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	labels := prometheus.Labels{"stage": name}
	return &Stage{
		name:    name,
		started: time.Now(),
		reg:     reg,
		Records: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "jobpipe_records",
			Help:        "Records seen by the stage, by phase.",
			ConstLabels: labels,
		}, []string{"phase"}), // e.g. 'fetched', 'stored', 'input', 'output'
		Matches: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "jobpipe_enrichment_matches",
			Help:        "Rows matched per auxiliary source.",
			ConstLabels: labels,
		}, []string{"source"}),
		Duration: f.NewGauge(prometheus.GaugeOpts{
			Name:        "jobpipe_run_duration_seconds",
			Help:        "Wall time of the last run.",
			ConstLabels: labels,
		}),
		Success: f.NewGauge(prometheus.GaugeOpts{
			Name:        "jobpipe_run_success",
			Help:        "1 if the last run succeeded, 0 otherwise.",
			ConstLabels: labels,
		}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Name:        "jobpipe_run_timestamp_seconds",
			Help:        "Unix time the last run finished.",
			ConstLabels: labels,
		}),
	}
}

func (s *Stage) SetRecords(phase string, n int) {
	s.Records.WithLabelValues(phase).Set(float64(n))
}

func (s *Stage) SetMatches(source string, n int) {
	s.Matches.WithLabelValues(source).Set(float64(n))
}

// Finish stamps duration, outcome and completion time.
func (s *Stage) Finish(err error) {
	s.Duration.Set(time.Since(s.started).Seconds())
	if err == nil {
		s.Success.Set(1)
	} else {
		s.Success.Set(0)
	}
	s.LastRun.Set(float64(time.Now().Unix()))
}

// WriteTextfile writes dir/jobpipe_<stage>.prom. An empty dir is a no-op.
func (s *Stage) WriteTextfile(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("jobpipe_%s.prom", s.name))
	if err := prometheus.WriteToTextfile(path, s.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
