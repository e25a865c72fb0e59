// Package metrics records per-run Prometheus metrics for subrelay and can
// flush them to a node_exporter textfile.
package metrics

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"subrelay/internal/translation"
)

const namespace = "subrelay"

// Outcome labels for branch results.
const (
	OutcomeWritten = "written"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Recorder holds the run's collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration    *prometheus.HistogramVec
	relayCalls       *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	chunksFailed     *prometheus.CounterVec
	branchOutcomes   *prometheus.CounterVec
	transcriptCache  *prometheus.CounterVec
	runsTotal        *prometheus.CounterVec
	lastRunTimestamp prometheus.Gauge
}

// NewRecorder creates a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"stage"}),
		relayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_calls_total",
			Help:      "Translation relay calls by leg and result.",
		}, []string{"leg", "result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_cache_lookups_total",
			Help:      "Translation cache lookups by result.",
		}, []string{"result"}),
		chunksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_chunks_failed_total",
			Help:      "Chunks emitted empty because translation failed.",
		}, []string{"language"}),
		branchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "branch_outcomes_total",
			Help:      "Output branches by suffix and outcome.",
		}, []string{"branch", "outcome"}),
		transcriptCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_cache_lookups_total",
			Help:      "Transcript cache lookups by result.",
		}, []string{"result"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs by result.",
		}, []string{"result"}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(
		r.stageDuration,
		r.relayCalls,
		r.cacheLookups,
		r.chunksFailed,
		r.branchOutcomes,
		r.transcriptCache,
		r.runsTotal,
		r.lastRunTimestamp,
	)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RelayCall implements translation.Observer.
func (r *Recorder) RelayCall(leg translation.Leg, err error) {
	r.relayCalls.WithLabelValues(string(leg), resultLabel(err)).Inc()
}

// CacheLookup implements translation.Observer.
func (r *Recorder) CacheLookup(hit bool) {
	r.cacheLookups.WithLabelValues(hitLabel(hit)).Inc()
}

// ChunksFailed implements translation.Observer.
func (r *Recorder) ChunksFailed(language string, count int) {
	if count <= 0 {
		return
	}
	r.chunksFailed.WithLabelValues(language).Add(float64(count))
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, elapsed time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// Branch records a branch outcome.
func (r *Recorder) Branch(suffix, outcome string) {
	r.branchOutcomes.WithLabelValues(suffix, outcome).Inc()
}

// TranscriptLookup records a transcript cache hit or miss.
func (r *Recorder) TranscriptLookup(hit bool) {
	r.transcriptCache.WithLabelValues(hitLabel(hit)).Inc()
}

// RunFinished records the run result and timestamp.
func (r *Recorder) RunFinished(err error, at time.Time) {
	r.runsTotal.WithLabelValues(resultLabel(err)).Inc()
	r.lastRunTimestamp.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the node_exporter textfile format.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if r == nil {
		return errors.New("metrics recorder is nil")
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

var _ translation.Observer = (*Recorder)(nil)
