// Package enrich turns geocoding results into the city, state, postal code
// and coordinate columns of the Incidents spreadsheet, one row at a time and
// strictly in input order.
package enrich

import (
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/incident-cli/internal/incident"
	"github.com/sells-group/incident-cli/pkg/geocode"
)

// Coordinate is a latitude or longitude that may be absent.
type Coordinate struct {
	Value float64
	Valid bool
}

// Coord returns a present coordinate.
func Coord(v float64) Coordinate {
	return Coordinate{Value: v, Valid: true}
}

// String renders the coordinate for the spreadsheet: the shortest exact
// decimal form, or "" when absent.
func (c Coordinate) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// Fields are the geocoded columns of one row. The zero value is the all-empty
// row written for misses and failures.
type Fields struct {
	City       string
	State      string // two-letter abbreviation
	PostalCode string
	Lat        Coordinate
	Long       Coordinate
}

// IsEmpty reports whether no field is set.
func (f Fields) IsEmpty() bool {
	return f == Fields{}
}

// EnrichRow converts one lookup result into spreadsheet fields. Misses and
// failures give empty Fields. For a match, each field is filled
// independently from whatever the address detail carries.
//
// The returned error is non-nil only when the matched state name has no
// abbreviation; it matches incident.ErrUnknownState. The Fields are usable
// even then, with State left empty.
func EnrichRow(res geocode.Result) (Fields, error) {
	if res.Outcome != geocode.OutcomeFound || res.Location == nil {
		return Fields{}, nil
	}

	// OSM names may arrive decomposed; compose them before output and lookup.
	loc := res.Location
	f := Fields{
		City:       norm.NFC.String(loc.Address.City),
		PostalCode: loc.Address.PostalCode,
		Lat:        Coord(loc.Latitude),
		Long:       Coord(loc.Longitude),
	}

	state := norm.NFC.String(loc.Address.State)
	if state == "" {
		return f, nil
	}
	abbr, err := incident.Abbreviation(state)
	if err != nil {
		return f, err
	}
	f.State = abbr
	return f, nil
}
