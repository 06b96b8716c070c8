package middleware

// DefaultStack returns the production middleware stack: panic recovery,
// request ids, OpenTelemetry spans and metrics, then request logging.
func DefaultStack(logger Logger, otelOpts ...OTelOption) []Middleware {
	return []Middleware{
		Recover(),
		RequestID(),
		OTel(otelOpts...),
		Logging(logger),
	}
}
