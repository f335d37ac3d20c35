package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the engine records.  All components share one
// instance built at startup.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Fingerprint computation
	ComputeTotal       CounterVec
	ComputeDuration    HistogramVec
	ComputeAtoms       HistogramVec
	ComputeBitsOn      HistogramVec
	BatchSize          HistogramVec
	BatchActiveWorkers GaugeVec

	// Similarity scoring
	SimilarityTotal    CounterVec
	SimilarityDuration HistogramVec

	// Cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	CacheErrorsTotal CounterVec

	// Vector index
	IndexInsertTotal   CounterVec
	IndexSearchTotal   CounterVec
	IndexSearchLatency HistogramVec

	// Errors
	ErrorsTotal CounterVec
}

// Histogram bucket sets tuned to the operations they measure.
var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultComputeDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5}
	DefaultAtomCountBuckets       = []float64{4, 8, 16, 32, 64, 128, 256, 512}
	DefaultBitCountBuckets        = []float64{4, 16, 64, 128, 256, 512, 1024}
	DefaultBatchSizeBuckets       = []float64{1, 5, 10, 50, 100, 500, 1000}
)

// NewAppMetrics registers the full metric set against collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total",
		"Total HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds",
		"HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests",
		"In-flight HTTP requests", "method")

	m.ComputeTotal = collector.RegisterCounter("fingerprint_compute_total",
		"Fingerprint computations", "scheme", "status")
	m.ComputeDuration = collector.RegisterHistogram("fingerprint_compute_duration_seconds",
		"Fingerprint computation duration", DefaultComputeDurationBuckets, "scheme")
	m.ComputeAtoms = collector.RegisterHistogram("fingerprint_molecule_atoms",
		"Heavy-atom count of fingerprinted molecules", DefaultAtomCountBuckets, "scheme")
	m.ComputeBitsOn = collector.RegisterHistogram("fingerprint_bits_on",
		"Set-bit count of computed fingerprints", DefaultBitCountBuckets, "scheme")
	m.BatchSize = collector.RegisterHistogram("fingerprint_batch_size",
		"Molecules per batch request", DefaultBatchSizeBuckets, "scheme")
	m.BatchActiveWorkers = collector.RegisterGauge("fingerprint_batch_active_workers",
		"Active batch computation workers")

	m.SimilarityTotal = collector.RegisterCounter("similarity_compare_total",
		"Similarity comparisons", "metric", "status")
	m.SimilarityDuration = collector.RegisterHistogram("similarity_compare_duration_seconds",
		"Similarity comparison duration", DefaultComputeDurationBuckets, "metric")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.CacheErrorsTotal = collector.RegisterCounter("cache_errors_total", "Cache errors", "cache")

	m.IndexInsertTotal = collector.RegisterCounter("index_insert_total",
		"Vector index insertions", "collection", "status")
	m.IndexSearchTotal = collector.RegisterCounter("index_search_total",
		"Vector index searches", "collection", "status")
	m.IndexSearchLatency = collector.RegisterHistogram("index_search_duration_seconds",
		"Vector index search latency", DefaultHTTPDurationBuckets, "collection")

	m.ErrorsTotal = collector.RegisterCounter("errors_total",
		"Errors by component and code", "component", "code")

	return m
}

// NewNopMetrics returns an AppMetrics whose metrics all discard.  For tests.
func NewNopMetrics() *AppMetrics { return NewAppMetrics(NewNopCollector()) }

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCompute records one fingerprint computation.
func RecordCompute(m *AppMetrics, scheme string, atoms, bitsOn int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ComputeTotal.WithLabelValues(scheme, status).Inc()
	if err == nil {
		m.ComputeDuration.WithLabelValues(scheme).Observe(duration.Seconds())
		m.ComputeAtoms.WithLabelValues(scheme).Observe(float64(atoms))
		m.ComputeBitsOn.WithLabelValues(scheme).Observe(float64(bitsOn))
	}
}

// RecordSimilarity records one similarity comparison.
func RecordSimilarity(m *AppMetrics, metric string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SimilarityTotal.WithLabelValues(metric, status).Inc()
	if err == nil {
		m.SimilarityDuration.WithLabelValues(metric).Observe(duration.Seconds())
	}
}

// RecordCacheAccess records one cache lookup outcome.
func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordError counts an error against a component.
func RecordError(m *AppMetrics, component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
