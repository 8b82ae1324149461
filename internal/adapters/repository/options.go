package repository

// Option applies a configuration option to the BestRecordStore.
type Option func(*BestRecordStore)

// WithCapacity presizes the store for roughly n records.
func WithCapacity(n int) Option {
	return func(s *BestRecordStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithMetrics toggles publication of ingest counters to pkg/metrics.
func WithMetrics(enabled bool) Option {
	return func(s *BestRecordStore) {
		s.metrics = enabled
	}
}
