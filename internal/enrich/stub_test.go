package enrich

import (
	"context"

	"github.com/sells-group/incident-cli/pkg/geocode"
)

// reply is one scripted geocoder response.
type reply struct {
	loc *geocode.Location
	err error
}

// scriptedClient answers the n-th call with replies[n] and records every
// query it receives.
type scriptedClient struct {
	replies []reply
	queries []geocode.Query
	onCall  func(n int)
}

func (s *scriptedClient) Geocode(_ context.Context, q geocode.Query) (*geocode.Location, error) {
	n := len(s.queries)
	s.queries = append(s.queries, q)
	if s.onCall != nil {
		s.onCall(n)
	}
	if n >= len(s.replies) {
		return nil, nil
	}
	return s.replies[n].loc, s.replies[n].err
}

func denver() *geocode.Location {
	return &geocode.Location{
		Latitude:  39.7392,
		Longitude: -104.9903,
		Address: geocode.AddressDetail{
			City:       "Denver",
			State:      "Colorado",
			PostalCode: "80202",
		},
	}
}
