package enrich

import (
	"errors"
	"time"

	"github.com/sells-group/incident-cli/internal/incident"
	"github.com/sells-group/incident-cli/pkg/geocode"
)

// Summary counts the rows of a batch by outcome.
type Summary struct {
	Total        int
	Found        int
	NotFound     int
	UnknownState int
	// AreaMatches counts the Found rows whose match was an area, such as a
	// whole city or county, rather than a point.
	AreaMatches int
	Failed       map[geocode.Kind]int
	StartedAt    time.Time
	FinishedAt   time.Time
}

func newSummary(total int, start time.Time) *Summary {
	return &Summary{
		Total:     total,
		Failed:    make(map[geocode.Kind]int, len(geocode.Kinds)),
		StartedAt: start,
	}
}

func (s *Summary) record(res geocode.Result, enrichErr error) {
	switch {
	case res.Outcome == geocode.OutcomeFailed:
		s.Failed[res.Err.Kind]++
	case errors.Is(enrichErr, incident.ErrUnknownState):
		s.UnknownState++
	case res.Outcome == geocode.OutcomeFound:
		s.Found++
		if res.Location.IsArea() {
			s.AreaMatches++
		}
	default:
		s.NotFound++
	}
}

// Failures returns the number of rows whose lookup failed, across all kinds.
func (s *Summary) Failures() int {
	n := 0
	for _, c := range s.Failed {
		n += c
	}
	return n
}

// Duration is the wall-clock time of the batch.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
