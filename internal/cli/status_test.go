package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCommand(t *testing.T) {
	t.Run("json counts per status", func(t *testing.T) {
		backend := newFakeBackend(12)
		backend.completed = 30
		setupBackend(t, backend)

		stdout, _, err := runCommand(t, "status", "--output", "json")
		require.NoError(t, err)

		var rows []statusRow
		require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
		require.Len(t, rows, 5)

		counts := make(map[string]int, len(rows))
		for _, row := range rows {
			counts[row.Status] = row.Count
		}
		assert.Equal(t, 12, counts["pending_approval"])
		assert.Equal(t, 30, counts["completed"])
		assert.Equal(t, 0, counts["cancelled"])

		// Read-only: no bulk updates were issued.
		assert.Equal(t, 0, backend.patchCalls)
	})

	t.Run("table output", func(t *testing.T) {
		backend := newFakeBackend(3)
		setupBackend(t, backend)

		stdout, _, err := runCommand(t, "status")
		require.NoError(t, err)

		assert.Contains(t, stdout, "STATUS")
		assert.Contains(t, stdout, "pending_approval")
	})

	t.Run("rejects unknown output format", func(t *testing.T) {
		backend := newFakeBackend(0)
		setupBackend(t, backend)

		_, _, err := runCommand(t, "status", "--output", "yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format")
	})
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "orderops test\n", stdout)
}
