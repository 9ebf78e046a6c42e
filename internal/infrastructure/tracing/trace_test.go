package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/tgwa-bridge/internal/shared/id"
)

func newObservedTracer(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("status", zap.New(core))
	t.Cleanup(tracer.Close)
	return tracer, logs
}

func newRouter(tracer *Tracer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/status", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFrom(c.Request.Context()).String())
	})
	r.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func TestMiddlewareMintsRequestID(t *testing.T) {
	tracer, logs := newObservedTracer(t)
	w := httptest.NewRecorder()
	newRouter(tracer).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))

	got := w.Header().Get(Header)
	assert.True(t, strings.HasPrefix(got, id.RequestPrefix+"_"), got)
	assert.Equal(t, got, w.Body.String())

	require.Eventually(t, func() bool {
		return logs.FilterMessage("span completed").Len() == 1
	}, time.Second, 5*time.Millisecond)
	fields := logs.FilterMessage("span completed").All()[0].ContextMap()
	assert.Equal(t, "/status", fields["operation"])
	assert.Equal(t, got, fields["request_id"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestMiddlewareReusesInboundID(t *testing.T) {
	tracer, _ := newObservedTracer(t)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(Header, "caller-42")
	w := httptest.NewRecorder()
	newRouter(tracer).ServeHTTP(w, req)

	assert.Equal(t, "caller-42", w.Header().Get(Header))
	assert.Equal(t, "caller-42", w.Body.String())
}

func TestMiddlewareIgnoresOversizedInboundID(t *testing.T) {
	tracer, _ := newObservedTracer(t)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(Header, strings.Repeat("x", maxInboundID+1))
	w := httptest.NewRecorder()
	newRouter(tracer).ServeHTTP(w, req)

	assert.True(t, strings.HasPrefix(w.Header().Get(Header), "req_"))
}

func TestMiddlewareRecordsHandlerErrors(t *testing.T) {
	tracer, logs := newObservedTracer(t)
	w := httptest.NewRecorder()
	newRouter(tracer).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))

	require.Eventually(t, func() bool {
		return logs.FilterMessage("span completed with error").Len() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	tracer, logs := newObservedTracer(t)
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	span.Finish()
	tracer.Submit(span)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, logs.Len())
}

func TestStartSpanKeepsContextID(t *testing.T) {
	tracer, _ := newObservedTracer(t)
	ctx := WithRequestID(context.Background(), "req_fixed")

	span, out := tracer.StartSpan(ctx, "op")
	assert.Equal(t, id.RequestID("req_fixed"), span.RequestID)
	assert.Equal(t, id.RequestID("req_fixed"), RequestIDFrom(out))
}
