// Package incident defines the Gun Violence Archive export schema, the
// internal Incidents spreadsheet schema, and the migration between them.
package incident

import (
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// OperationsColumn is the trailing link column of a GVA export. It carries no
// data and is dropped on read.
const OperationsColumn = "Operations"

// StartDateLayout is the timestamp format written to start_date.
const StartDateLayout = "2006-01-02T15:04Z"

// sourceDateLayouts are the Incident Date formats accepted on read, most
// common first.
var sourceDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
}

// SourceRecord is one row of a Gun Violence Archive incident export.
type SourceRecord struct {
	IncidentID   string `csv:"Incident ID"`
	IncidentDate string `csv:"Incident Date"`
	State        string `csv:"State"`
	CityOrCounty string `csv:"City Or County"`
	Address      string `csv:"Address"`
	Killed       int    `csv:"# Killed,omitempty"`
	Injured      int    `csv:"# Injured,omitempty"`
}

// Incident is one row of the Incidents spreadsheet. Field order is column
// order.
type Incident struct {
	GVAID         string `csv:"gva_id"`
	IncidentName  string `csv:"incident_name"`
	PlaceType     string `csv:"place_type"`
	StartDate     string `csv:"start_date"`
	EndDate       string `csv:"end_date"`
	Address       string `csv:"address"`
	City          string `csv:"city"`
	State         string `csv:"state"`
	PostalCode    string `csv:"postal_code"`
	Congressional string `csv:"congressional"`
	StateHouse    string `csv:"state_house"`
	Lat           string `csv:"lat"`
	Long          string `csv:"long"`
	Deaths        int    `csv:"deaths"`
	Wounded       int    `csv:"wounded"`
	Transferred   string `csv:"transferred"`
	FactCheck1    string `csv:"fact_check1"`
	FactCheck2    string `csv:"fact_check2"`
	FactCheck3    string `csv:"fact_check3"`
}

// SourceColumns returns the GVA export header, without the Operations column.
func SourceColumns() []string {
	return mustHeader(SourceRecord{})
}

// Columns returns the Incidents spreadsheet header in column order.
func Columns() []string {
	return mustHeader(Incident{})
}

func mustHeader(v any) []string {
	h, err := csvutil.Header(v, "csv")
	if err != nil {
		panic(err) // static struct tags; only fails on a programming error
	}
	return h
}

// Migrate converts a GVA export row into an Incidents row. Columns with no
// GVA counterpart are left empty; start_date is normalized to
// StartDateLayout.
func Migrate(src SourceRecord) (Incident, error) {
	start, err := ParseIncidentDate(src.IncidentDate)
	if err != nil {
		return Incident{}, eris.Wrapf(err, "incident: migrate %s", src.IncidentID)
	}

	return Incident{
		GVAID:     src.IncidentID,
		StartDate: start.Format(StartDateLayout),
		Address:   src.Address,
		City:      src.CityOrCounty,
		State:     src.State,
		Deaths:    src.Killed,
		Wounded:   src.Injured,
	}, nil
}

// MigrateAll migrates every record, reporting the 1-based data row of the
// first failure.
func MigrateAll(records []SourceRecord) ([]Incident, error) {
	out := make([]Incident, 0, len(records))
	for i, rec := range records {
		inc, err := Migrate(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "incident: row %d", i+1)
		}
		out = append(out, inc)
	}
	return out, nil
}

// ParseIncidentDate parses a GVA Incident Date value as a UTC calendar date.
func ParseIncidentDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range sourceDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("incident: unrecognized incident date %q", s)
}
