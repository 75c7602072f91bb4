package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics records media pipeline activity: staged uploads, persisted
// rows, and remote cleanup attempts.
type IngestMetrics struct {
	uploads       *prometheus.CounterVec
	uploadSeconds *prometheus.HistogramVec
	rowsInserted  *prometheus.CounterVec
	remoteDeletes *prometheus.CounterVec
}

// NewIngestMetrics registers the pipeline metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_uploads_total",
		Help: "Staged media uploads by entity and outcome.",
	}, []string{"entity", "outcome"})
	uploadSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "media_upload_duration_seconds",
		Help:    "Duration of individual object store uploads.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity"})
	rowsInserted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_rows_inserted_total",
		Help: "Rows persisted by the batch insert, per entity.",
	}, []string{"entity"})
	remoteDeletes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_remote_deletes_total",
		Help: "Remote object delete attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(uploads, uploadSeconds, rowsInserted, remoteDeletes)
	return &IngestMetrics{
		uploads:       uploads,
		uploadSeconds: uploadSeconds,
		rowsInserted:  rowsInserted,
		remoteDeletes: remoteDeletes,
	}
}

// IncUpload counts one staged upload with its outcome ("ok", "failed", "skipped").
func (m *IngestMetrics) IncUpload(entity, outcome string) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(entity), normalizeLabel(outcome)).Inc()
}

// ObserveUploadDuration records one object store upload duration.
func (m *IngestMetrics) ObserveUploadDuration(entity string, d time.Duration) {
	if m == nil || m.uploadSeconds == nil {
		return
	}
	m.uploadSeconds.WithLabelValues(normalizeLabel(entity)).Observe(d.Seconds())
}

// AddRowsInserted counts rows written by a batch insert.
func (m *IngestMetrics) AddRowsInserted(entity string, n int) {
	if m == nil || m.rowsInserted == nil || n <= 0 {
		return
	}
	m.rowsInserted.WithLabelValues(normalizeLabel(entity)).Add(float64(n))
}

// IncRemoteDelete counts one remote delete attempt by outcome.
func (m *IngestMetrics) IncRemoteDelete(outcome string) {
	if m == nil || m.remoteDeletes == nil {
		return
	}
	m.remoteDeletes.WithLabelValues(normalizeLabel(outcome)).Inc()
}
