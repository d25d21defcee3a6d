package metrics

// StorageMetrics provides observability for the storage engine.
//
// Unlike ServerMetrics, storage metrics are not recorded per operation: the
// engine maintains its own counters and the daemon polls them periodically,
// publishing snapshots through this interface. A nil *badgerMetrics value
// satisfies the interface with no-op methods, so callers never need to guard
// against metrics being disabled.
type StorageMetrics interface {
	// RecordCacheHitRatio sets the hit ratio gauge for one engine cache.
	// cacheType labels the cache (e.g. "block", "index").
	RecordCacheHitRatio(cacheType string, ratio float64)

	// RecordDiskSize sets the on-disk size gauges for the LSM tree and the
	// value log.
	RecordDiskSize(lsmBytes, vlogBytes int64)
}
