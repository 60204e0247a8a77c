package port

// Body outcomes reported to MetricsProvider.ObserveBody.
const (
	BodyLogged      = "logged"
	BodySkippedType = "skipped_type"
	BodyTruncated   = "truncated"
	BodyReadError   = "read_error"
)

// MetricsProvider records what the exchange loggers did.
type MetricsProvider interface {
	// IncExchanges counts an exchange that was logged at debug level.
	IncExchanges(direction string)
	// ObserveBody records the outcome of body handling and the number of
	// body bytes written to the log.
	ObserveBody(direction, outcome string, bytes int)
}

// NopMetrics discards all metrics.
type NopMetrics struct{}

func (NopMetrics) IncExchanges(direction string)                    {}
func (NopMetrics) ObserveBody(direction, outcome string, bytes int) {}
