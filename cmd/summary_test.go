//go:build !integration

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/incident-cli/internal/enrich"
	"github.com/sells-group/incident-cli/pkg/geocode"
)

func TestSummaryRows(t *testing.T) {
	sum := &enrich.Summary{
		Total:        9,
		Found:        4,
		NotFound:     2,
		UnknownState: 1,
		Failed:       map[geocode.Kind]int{geocode.KindTimeout: 1, geocode.KindRateLimited: 1},
	}

	rows := summaryRows(sum)
	require.Len(t, rows, 4+len(geocode.Kinds))
	assert.Equal(t, []string{"found", "4"}, rows[0])
	assert.Equal(t, []string{"not found", "2"}, rows[1])
	assert.Equal(t, []string{"unknown state", "1"}, rows[2])
	assert.Equal(t, []string{"service_error", "0"}, rows[3])
	assert.Equal(t, []string{"timeout", "1"}, rows[4])
	assert.Equal(t, []string{"total", "9"}, rows[len(rows)-1])
}

func TestWriteSummary_PlainWhenNotTerminal(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sum := &enrich.Summary{
		Total:      3,
		Found:      3,
		Failed:     map[geocode.Kind]int{},
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
	}

	var buf bytes.Buffer
	writeSummary(&buf, "incidents.csv", sum)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "incidents.csv: 3 rows in 3s\n"), out)
	assert.Contains(t, out, "OUTCOME")
	assert.Contains(t, out, "+-")
	assert.NotContains(t, out, "╭")
	assert.NotContains(t, out, "matched an area")
}

func TestWriteSummary_AreaMatches(t *testing.T) {
	sum := &enrich.Summary{Total: 4, Found: 3, AreaMatches: 2, Failed: map[geocode.Kind]int{}}

	var buf bytes.Buffer
	writeSummary(&buf, "incidents.csv", sum)

	assert.Contains(t, buf.String(), "2 of 3 found rows matched an area, not a point\n")
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil, nil, false))

	out := renderTable([]string{"A", "B"}, [][]string{{"x"}, {"y", "22"}}, []columnAlignment{alignLeft, alignRight}, true)
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "22")
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
