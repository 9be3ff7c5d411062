package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafflehq/orderops/internal/approval"
)

func TestValidateOutput(t *testing.T) {
	assert.NoError(t, validateOutput(outputTable))
	assert.NoError(t, validateOutput(outputJSON))
	assert.Error(t, validateOutput("csv"))
}

func TestRenderSummaryTable(t *testing.T) {
	result := approval.Result{
		RunID:               "01J0000000000000000000TEST",
		Approved:            12500,
		Failed:              200,
		Skipped:             3,
		Batches:             26,
		TotalPendingAtStart: 12703,
		Remaining:           0,
		Duration:            90 * time.Second,
		Throughput:          138.9,
	}

	var buf bytes.Buffer
	require.NoError(t, renderSummaryTable(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "APPROVAL RUN 01J0000000000000000000TEST")
	// Thousands separators in table mode.
	assert.Contains(t, out, "12,500")
	assert.Contains(t, out, "12,703")
	assert.Contains(t, out, "1m30s")
	assert.Contains(t, out, "138.9 orders/sec")
}

func TestRenderSummaryRemainingUnknown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderSummaryTable(&buf, approval.Result{Remaining: -1}))
	assert.Contains(t, buf.String(), "Remaining:        unknown")
}

func TestRenderSummaryJSON(t *testing.T) {
	result := approval.Result{RunID: "r1", Approved: 5, Remaining: 2}

	var buf bytes.Buffer
	require.NoError(t, renderSummary(&buf, outputJSON, result))

	var decoded approval.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, result, decoded)
}

func TestRenderStatus(t *testing.T) {
	rows := []statusRow{
		{Status: "pending_approval", Count: 1200},
		{Status: "completed", Count: 34000},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderStatus(&buf, outputTable, rows))
		assert.Contains(t, buf.String(), "pending_approval")
		assert.Contains(t, buf.String(), "34,000")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderStatus(&buf, outputJSON, rows))

		var decoded []statusRow
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, rows, decoded)
	})
}

func TestShortDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{250 * time.Millisecond, "250ms"},
		{time.Second, "1s"},
		{90 * time.Second, "1m30s"},
		{3700 * time.Second, "1h1m40s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, shortDuration(tt.d))
		})
	}
}
