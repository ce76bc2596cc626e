/*
Package tracing provides lightweight request tracing.

Every API request gets a span whose ids travel in the X-Trace-ID and
X-Span-ID headers. The prober copies the trace context onto the probes it
sends, so an application's own access log can be matched to the launch
request that caused it. Finished spans are logged by a buffered collector.

	tracer := tracing.New("launcher", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
