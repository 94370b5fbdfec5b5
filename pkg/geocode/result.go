package geocode

import "context"

// Outcome is the terminal state of one lookup.
type Outcome int

const (
	// OutcomeNotFound means the service understood the query and found nothing.
	OutcomeNotFound Outcome = iota
	// OutcomeFound means Result.Location holds the best match.
	OutcomeFound
	// OutcomeFailed means Result.Err says why no answer was obtained.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeFailed:
		return "failed"
	default:
		return "not_found"
	}
}

// Result is a lookup folded into a single value: exactly one of Location
// (Found) or Err (Failed) is set, neither for NotFound.
type Result struct {
	Outcome  Outcome
	Location *Location
	Err      *Error
}

// Found wraps a match.
func Found(loc *Location) Result {
	return Result{Outcome: OutcomeFound, Location: loc}
}

// NotFound is the no-match result.
func NotFound() Result {
	return Result{Outcome: OutcomeNotFound}
}

// Failed wraps a failure, classifying it if needed.
func Failed(err error) Result {
	return Result{Outcome: OutcomeFailed, Err: Classify(err)}
}

// Resolve runs one lookup and folds its return values into a Result.
func Resolve(ctx context.Context, c Client, q Query) Result {
	loc, err := c.Geocode(ctx, q)
	switch {
	case err != nil:
		return Failed(err)
	case loc == nil:
		return NotFound()
	default:
		return Found(loc)
	}
}
