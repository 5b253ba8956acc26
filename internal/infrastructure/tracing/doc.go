/*
Package tracing provides lightweight request tracing.

Spans are created per HTTP request and per websocket connection, carried in
the request context, and logged by a buffered collector when finished. Trace
ids propagate through the X-Trace-ID and X-Span-ID headers.

	tracer := tracing.New("canvas", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "ws.stream")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
