package incident

import "github.com/rotisserie/eris"

// Structural input errors. Any of these is fatal to a run.
var (
	// ErrNotCSV means the input could not be parsed as CSV at all.
	ErrNotCSV = eris.New("incident: input is not a CSV file")
	// ErrNotGVA means the CSV has columns a Gun Violence Archive export never has.
	ErrNotGVA = eris.New("incident: not a Gun Violence Archive export")
	// ErrMissingColumn means a required Gun Violence Archive column is absent.
	ErrMissingColumn = eris.New("incident: missing required column")
	// ErrUnknownState is matched by every *UnknownStateError.
	ErrUnknownState = eris.New("incident: unknown state")
)
