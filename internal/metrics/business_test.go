package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine checks that the Prometheus output contains a business metric
// matching the given name, partial label pattern, and value. Uses regex to handle
// extra OTel scope labels injected by the Prometheus exporter.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestNewBusinessMetrics(t *testing.T) {
	t.Run("Success_CreateBusinessMetrics", func(t *testing.T) {
		provider, err := NewProvider("test_app")
		require.NoError(t, err)

		businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

		require.NoError(t, err)
		assert.NotNil(t, businessMetrics)
	})
}

func TestBusinessMetrics_RecordOperation(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	t.Run("Success_RecordSuccessfulOperation", func(t *testing.T) {
		// Should not panic
		bm.RecordOperation(context.Background(), "authz", "resolve", "success")
	})

	t.Run("Success_RecordFailedOperation", func(t *testing.T) {
		// Should not panic
		bm.RecordOperation(context.Background(), "authz", "resolve", "error")
	})

	t.Run("Success_RecordMultipleDomains", func(t *testing.T) {
		bm.RecordOperation(context.Background(), "authz", "resolve", "success")
		bm.RecordOperation(context.Background(), "fetch", "track", "success")
		bm.RecordOperation(context.Background(), "deletion", "sweep", "error")
	})
}

func TestBusinessMetrics_RecordDuration(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	t.Run("Success_RecordSuccessfulDuration", func(t *testing.T) {
		// Should not panic
		bm.RecordDuration(context.Background(), "authz", "resolve", 123*time.Millisecond, "success")
	})

	t.Run("Success_RecordFailedDuration", func(t *testing.T) {
		// Should not panic
		bm.RecordDuration(context.Background(), "authz", "resolve", 456*time.Millisecond, "error")
	})

	t.Run("Success_RecordMultipleDomains", func(t *testing.T) {
		bm.RecordDuration(context.Background(), "authz", "resolve", 100*time.Millisecond, "success")
		bm.RecordDuration(context.Background(), "fetch", "track", 200*time.Millisecond, "success")
		bm.RecordDuration(context.Background(), "deletion", "sweep", 300*time.Millisecond, "error")
	})
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.NotNil(t, noOpMetrics)
	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)

	t.Run("NoOp_RecordOperationDoesNotPanic", func(t *testing.T) {
		// Should not panic or do anything
		noOpMetrics.RecordOperation(context.Background(), "authz", "resolve", "success")
		noOpMetrics.RecordOperation(context.Background(), "fetch", "track", "error")
	})

	t.Run("NoOp_RecordDurationDoesNotPanic", func(t *testing.T) {
		// Should not panic or do anything
		noOpMetrics.RecordDuration(
			context.Background(),
			"authz",
			"resolve",
			100*time.Millisecond,
			"success",
		)
		noOpMetrics.RecordDuration(context.Background(), "fetch", "track", 200*time.Millisecond, "error")
	})
}

func TestBusinessMetrics_Integration(t *testing.T) {
	provider, err := NewProvider("integration_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "integration_test")
	require.NoError(t, err)

	// Record various operations
	ctx := context.Background()

	// Record operation counts
	bm.RecordOperation(ctx, "authz", "resolve", "success")
	bm.RecordOperation(ctx, "authz", "resolve", "success")
	bm.RecordOperation(ctx, "authz", "resolve", "error")
	bm.RecordOperation(ctx, "fetch", "track", "success")
	bm.RecordOperation(ctx, "fetch", "read_and_track", "success")
	bm.RecordOperation(ctx, "deletion", "sweep", "success")

	// Record operation durations
	bm.RecordDuration(ctx, "authz", "resolve", 50*time.Millisecond, "success")
	bm.RecordDuration(ctx, "authz", "resolve", 60*time.Millisecond, "success")
	bm.RecordDuration(ctx, "authz", "resolve", 100*time.Millisecond, "error")
	bm.RecordDuration(ctx, "fetch", "track", 10*time.Millisecond, "success")
	bm.RecordDuration(ctx, "fetch", "read_and_track", 20*time.Millisecond, "success")
	bm.RecordDuration(ctx, "deletion", "sweep", 150*time.Millisecond, "success")

	// Metrics should be recorded without errors
	// Verify metrics in Prometheus registry
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, req)

	output := w.Body.String()

	// Check operation counts
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="authz".*operation="resolve".*status="success"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="authz".*operation="resolve".*status="error"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="fetch".*operation="track".*status="success"`,
		`1`,
	)

	// Check durations (existence)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operation_duration_seconds_count`,
		`domain="authz".*operation="resolve".*status="success"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operation_duration_seconds_sum`,
		`domain="authz".*operation="resolve".*status="success"`,
		``,
	)
}

func TestBusinessMetrics_RecordContents(t *testing.T) {
	provider, err := NewProvider("contents_test")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "contents_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordContents(ctx, "deletion", "delete_contents", 2)
	bm.RecordContents(ctx, "deletion", "delete_contents", 3)
	bm.RecordContents(ctx, "fetch", "track", 0)

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	output := w.Body.String()

	assertBizMetricLine(t, output, `contents_test_contents_total`, `domain="deletion".*operation="delete_contents"`, `5`)
	assert.NotRegexp(t, `contents_test_contents_total\{[^}]*domain="fetch"`, output)

	NewNoOpBusinessMetrics().RecordContents(ctx, "fetch", "track", 4)
}
