package metrics

// DefaultBuckets provides histogram buckets in seconds for latency metrics.
// Endpoint checks sit behind request pacing and backoff waits, so the range
// stretches well past typical HTTP latencies.
var DefaultBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120} //nolint: gochecknoglobals
