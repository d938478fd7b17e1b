package compacthash

type options struct {
	avgRecordLen     int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Table.
type Option func(*options)

// WithAvgRecordLen sets the expected serialized record length used to size the
// bucket directory. It is ignored when the serializer reports a fixed length.
func WithAvgRecordLen(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.avgRecordLen = n
		}
	}
}

// WithLogger sets the logger. If nil, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector. If nil, metrics are disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}
