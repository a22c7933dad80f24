package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"sublet/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStoreLoggerLogMutation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStoreLogger("listings").WithLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := WithCorrelationID(context.Background(), "corr-1")
	logger.LogMutation(ctx, "create", map[string]interface{}{"listing_id": 7})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "store mutation", rec["msg"])
	assert.Equal(t, "listings", rec["collection"])
	assert.Equal(t, "create", rec["operation"])
	assert.Equal(t, "corr-1", rec["correlation_id"])
	assert.EqualValues(t, 7, rec["listing_id"])
}

func TestStoreLoggerDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStoreLogger("favorites").WithLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	prev := Config
	Config.EnableStoreLogging = false
	t.Cleanup(func() { Config = prev })

	logger.LogMutation(context.Background(), "toggle", nil)
	logger.LogRejected(context.Background(), "toggle", errors.New("nope"))
	assert.Zero(t, buf.Len())
}

func TestRecordMutation(t *testing.T) {
	before := testutil.ToFloat64(StoreMutations.WithLabelValues("reviews", "create", "rejected"))
	RecordMutation("reviews", "create", errors.New("rating out of range"))
	after := testutil.ToFloat64(StoreMutations.WithLabelValues("reviews", "create", "rejected"))
	assert.Equal(t, before+1, after)
}

func TestSpansFinish(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	spans := NewSpans(tp.Tracer("test"))

	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantCode   string
	}{
		{name: "ok", err: nil, wantStatus: codes.Unset},
		{name: "rejected", err: models.NewNotFoundError("User", 99), wantStatus: codes.Unset, wantCode: models.CodeNotFound},
		{name: "internal", err: errors.New("disk full"), wantStatus: codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, span := spans.Mutation(context.Background(), "messages", "send")
			assert.NotEmpty(t, TraceIDFromContext(ctx))
			Finish(span, tt.err)

			ended := recorder.Ended()
			got := ended[len(ended)-1]
			assert.Equal(t, "messages.send", got.Name())
			assert.Equal(t, tt.wantStatus, got.Status().Code)

			var code string
			for _, kv := range got.Attributes() {
				if kv.Key == "sublet.error_code" {
					code = kv.Value.AsString()
				}
			}
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestInitTracingUnknownExporter(t *testing.T) {
	_, err := InitTracing(TracingConfig{ServiceName: "sublet-test", Enabled: true, Exporter: "zipkin"})
	assert.ErrorContains(t, err, "zipkin")
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "sublet-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
