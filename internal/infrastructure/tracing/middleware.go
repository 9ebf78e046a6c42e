package tracing

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/tgwa-bridge/internal/shared/id"
)

const maxInboundID = 128

// HTTPMiddleware traces each request. An inbound X-Request-ID is reused so
// callers can correlate, otherwise a fresh one is minted. The ID is echoed
// on the response.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if inbound := c.GetHeader(Header); inbound != "" && len(inbound) <= maxInboundID {
			ctx = WithRequestID(ctx, id.RequestID(inbound))
		}

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, name)
		span.SetTag("http.method", c.Request.Method)

		c.Request = c.Request.WithContext(ctx)
		c.Header(Header, span.RequestID.String())

		c.Next()

		span.StatusCode = c.Writer.Status()
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}
		span.Finish()
		tracer.Submit(span)
	}
}
