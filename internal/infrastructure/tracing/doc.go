/*
Package tracing attaches a request ID to every status server request and
logs one span per request.

# Usage

	tracer := tracing.New("status", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

# Propagation

The X-Request-ID header is honoured when present and always echoed on the
response. Handlers read the ID with RequestIDFrom(c.Request.Context()).

Spans are buffered and logged by a single collector goroutine. A full buffer
drops spans rather than blocking requests.
*/
package tracing
