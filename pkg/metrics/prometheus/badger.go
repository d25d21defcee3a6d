package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/colonnadedb/colonnade/pkg/metrics"
)

// badgerMetrics publishes badger engine gauges. A poller in the daemon
// samples them periodically; badger maintains the underlying counters
// itself, so storage operations never touch these.
type badgerMetrics struct {
	cacheHitRatio *prometheus.GaugeVec
	diskBytes     *prometheus.GaugeVec
}

// NewBadgerMetrics registers the badger engine gauges. Returns nil when
// metrics are disabled; the nil receiver turns every Record call into a
// no-op.
func NewBadgerMetrics() *badgerMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	factory := promauto.With(metrics.GetRegistry())
	return &badgerMetrics{
		cacheHitRatio: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "colonnade_storage_cache_hit_ratio",
				Help: "Badger cache hit ratio (0.0 to 1.0) by cache type",
			},
			[]string{"cache_type"}, // block, index
		),
		diskBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "colonnade_storage_disk_bytes",
				Help: "On-disk size of the badger engine in bytes by section",
			},
			[]string{"section"}, // lsm, vlog
		),
	}
}

// RecordCacheHitRatio publishes the hit ratio of one badger cache.
func (m *badgerMetrics) RecordCacheHitRatio(cacheType string, ratio float64) {
	if m == nil {
		return
	}
	m.cacheHitRatio.WithLabelValues(cacheType).Set(ratio)
}

// RecordDiskSize publishes the on-disk sizes of the LSM tree and value log.
func (m *badgerMetrics) RecordDiskSize(lsmBytes, vlogBytes int64) {
	if m == nil {
		return
	}
	m.diskBytes.WithLabelValues("lsm").Set(float64(lsmBytes))
	m.diskBytes.WithLabelValues("vlog").Set(float64(vlogBytes))
}
