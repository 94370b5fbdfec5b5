//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/incident-cli/internal/config"
	"github.com/sells-group/incident-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:           "abc12345-6789-0000-0000-000000000000",
			Source:       "gva-2025.csv",
			Target:       "incidents.csv",
			Rows:         120,
			Found:        110,
			NotFound:     6,
			UnknownState: 1,
			Failures:     map[string]int{"timeout": 3},
			StartedAt:    now,
			FinishedAt:   now.Add(2 * time.Minute),
		},
		{
			ID:         "def12345-6789-0000-0000-000000000000",
			Source:     "gva-2025.csv",
			Target:     "preview.csv",
			DryRun:     true,
			Rows:       20,
			StartedAt:  now.Add(-time.Hour),
			FinishedAt: now.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs, false)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "SOURCE")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "gva-2025.csv")
	assert.Contains(t, output, "preview.csv (dry run)")
	assert.Contains(t, output, "2025-06-15 10:30")
	assert.Contains(t, output, "2m0s")
	assert.Contains(t, output, " 4 ")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestRequireStore_Disabled(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })
	cfg = &config.Config{Store: config.StoreConfig{Driver: "none"}}

	_, err := requireStore(runsListCmd)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "run history is disabled")
}
