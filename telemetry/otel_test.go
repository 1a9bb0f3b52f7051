package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	p, err := Setup(context.Background(), "hostel-test", "")
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestHandlerRecordsServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var sawSpan bool
	h := Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSpan = trace.SpanFromContext(r.Context()).SpanContext().IsValid()
		w.WriteHeader(http.StatusNoContent)
	}), "hostel-test")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meals", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, sawSpan)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /meals", spans[0].Name())
}
