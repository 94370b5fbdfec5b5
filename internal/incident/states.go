package incident

import (
	"sort"
	"strconv"
)

// stateAbbreviations maps the 50 states and the District of Columbia to their
// USPS codes. Keys are the names Nominatim reports in its address details.
var stateAbbreviations = map[string]string{
	"Alabama":              "AL",
	"Alaska":               "AK",
	"Arizona":              "AZ",
	"Arkansas":             "AR",
	"California":           "CA",
	"Colorado":             "CO",
	"Connecticut":          "CT",
	"Delaware":             "DE",
	"District of Columbia": "DC",
	"Florida":              "FL",
	"Georgia":              "GA",
	"Hawaii":               "HI",
	"Idaho":                "ID",
	"Illinois":             "IL",
	"Indiana":              "IN",
	"Iowa":                 "IA",
	"Kansas":               "KS",
	"Kentucky":             "KY",
	"Louisiana":            "LA",
	"Maine":                "ME",
	"Maryland":             "MD",
	"Massachusetts":        "MA",
	"Michigan":             "MI",
	"Minnesota":            "MN",
	"Mississippi":          "MS",
	"Missouri":             "MO",
	"Montana":              "MT",
	"Nebraska":             "NE",
	"Nevada":               "NV",
	"New Hampshire":        "NH",
	"New Jersey":           "NJ",
	"New Mexico":           "NM",
	"New York":             "NY",
	"North Carolina":       "NC",
	"North Dakota":         "ND",
	"Ohio":                 "OH",
	"Oklahoma":             "OK",
	"Oregon":               "OR",
	"Pennsylvania":         "PA",
	"Rhode Island":         "RI",
	"South Carolina":       "SC",
	"South Dakota":         "SD",
	"Tennessee":            "TN",
	"Texas":                "TX",
	"Utah":                 "UT",
	"Vermont":              "VT",
	"Virginia":             "VA",
	"Washington":           "WA",
	"West Virginia":        "WV",
	"Wisconsin":            "WI",
	"Wyoming":              "WY",
}

// UnknownStateError reports a state name that is not in the abbreviation
// table. It matches ErrUnknownState with errors.Is.
type UnknownStateError struct {
	Name string
}

func (e *UnknownStateError) Error() string {
	return "incident: unknown state " + strconv.Quote(e.Name)
}

// Is lets errors.Is(err, ErrUnknownState) match any UnknownStateError.
func (e *UnknownStateError) Is(target error) bool {
	return target == ErrUnknownState
}

// Abbreviation returns the two-letter code for a full state name. The name
// must match a table entry exactly; anything else, including other casings,
// returns an *UnknownStateError.
func Abbreviation(name string) (string, error) {
	if abbr, ok := stateAbbreviations[name]; ok {
		return abbr, nil
	}
	return "", &UnknownStateError{Name: name}
}

// StateNames returns the canonical names accepted by Abbreviation, sorted.
func StateNames() []string {
	names := make([]string, 0, len(stateAbbreviations))
	for name := range stateAbbreviations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
