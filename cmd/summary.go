package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sells-group/incident-cli/internal/enrich"
	"github.com/sells-group/incident-cli/pkg/geocode"
)

// summaryRows lists every outcome with its row count, failure kinds in
// declaration order.
func summaryRows(sum *enrich.Summary) [][]string {
	rows := [][]string{
		{"found", strconv.Itoa(sum.Found)},
		{"not found", strconv.Itoa(sum.NotFound)},
		{"unknown state", strconv.Itoa(sum.UnknownState)},
	}
	for _, k := range geocode.Kinds {
		rows = append(rows, []string{k.String(), strconv.Itoa(sum.Failed[k])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(sum.Total)})
	return rows
}

// writeSummary renders the end-of-run table to w.
func writeSummary(w io.Writer, target string, sum *enrich.Summary) {
	_, _ = fmt.Fprintf(w, "%s: %d rows in %s\n", target, sum.Total, sum.Duration().Round(time.Second))
	if sum.AreaMatches > 0 {
		_, _ = fmt.Fprintf(w, "%d of %d found rows matched an area, not a point\n", sum.AreaMatches, sum.Found)
	}
	_, _ = fmt.Fprintln(w, renderTable(
		[]string{"OUTCOME", "ROWS"},
		summaryRows(sum),
		[]columnAlignment{alignLeft, alignRight},
		isTerminal(w),
	))
}
