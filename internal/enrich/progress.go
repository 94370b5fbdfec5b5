package enrich

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/incident-cli/internal/incident"
	"github.com/sells-group/incident-cli/pkg/geocode"
)

// coordWidth is the display width (and significant digits) of a coordinate
// on the progress line.
const coordWidth = 5

// FormatProgress renders the progress line for row index (1-based) of total.
func FormatProgress(index, total int, f Fields) string {
	return fmt.Sprintf("Row %06d/%06d| City: %-20s State: %-2s ZIP: %-5s Coords: %s, %s",
		index, total, f.City, f.State, f.PostalCode,
		displayCoordinate(f.Lat), displayCoordinate(f.Long))
}

// Label is the prefix written before the progress line of a row that did not
// enrich cleanly, or "" for found and not-found rows.
func Label(row Row, res geocode.Result, enrichErr error) string {
	if res.Outcome == geocode.OutcomeFailed && res.Err != nil {
		switch res.Err.Kind {
		case geocode.KindTimeout:
			return "TIMED OUT | "
		case geocode.KindQuotaExceeded:
			return "QUOTA EXCEEDED | "
		case geocode.KindRateLimited:
			return "RATE LIMITED | "
		case geocode.KindUnavailable:
			return "UNAVAILABLE | "
		default:
			return "SERVICE ERROR | " + row.Address + " | "
		}
	}
	if errors.Is(enrichErr, incident.ErrUnknownState) {
		return "UNKNOWN STATE | "
	}
	return ""
}

// displayCoordinate formats c to coordWidth significant digits, right
// aligned in coordWidth columns. Whole numbers keep a trailing ".0"; an
// absent coordinate is blank.
func displayCoordinate(c Coordinate) string {
	if !c.Valid {
		return strings.Repeat(" ", coordWidth)
	}
	s := strconv.FormatFloat(c.Value, 'g', coordWidth, 64)
	if !strings.ContainsAny(s, ".eInN") {
		s += ".0"
	}
	return fmt.Sprintf("%*s", coordWidth, s)
}
