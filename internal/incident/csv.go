package incident

import (
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// ReadSource reads a whole GVA export. The header must contain every GVA
// column; the Operations column is tolerated and dropped, anything else is
// rejected as ErrNotGVA.
func ReadSource(r io.Reader) ([]SourceRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, eris.Wrap(ErrNotCSV, "csv: empty input")
	}
	if err != nil {
		return nil, eris.Wrapf(ErrNotCSV, "csv: read header: %v", err)
	}
	header = cleanHeader(header)

	if err := validateSourceHeader(header); err != nil {
		return nil, err
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, eris.Wrapf(ErrNotCSV, "csv: init decoder: %v", err)
	}

	var records []SourceRecord
	for {
		var rec SourceRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) || errors.Is(err, csvutil.ErrFieldCount) {
				return nil, eris.Wrapf(ErrNotCSV, "csv: data row %d: %v", len(records)+1, err)
			}
			return nil, eris.Wrapf(err, "csv: decode data row %d", len(records)+1)
		}
		records = append(records, rec)
	}
}

// Load reads a GVA export and migrates it to Incidents rows.
func Load(r io.Reader) ([]Incident, error) {
	records, err := ReadSource(r)
	if err != nil {
		return nil, err
	}
	return MigrateAll(records)
}

// WriteCSV writes incidents with the Columns header. The header is written
// even when there are no rows.
func WriteCSV(w io.Writer, incidents []Incident) error {
	cw := csv.NewWriter(w)
	if err := encodeIncidents(cw, incidents); err != nil {
		return err
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}

func encodeIncidents(w csvutil.Writer, incidents []Incident) error {
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = false
	if err := enc.EncodeHeader(Incident{}); err != nil {
		return eris.Wrap(err, "csv: encode header")
	}
	for i := range incidents {
		if err := enc.Encode(incidents[i]); err != nil {
			return eris.Wrapf(err, "csv: encode row %d", i+1)
		}
	}
	return nil
}

func validateSourceHeader(header []string) error {
	required := SourceColumns()

	var missing []string
	for _, col := range required {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return eris.Wrapf(ErrMissingColumn, "csv: missing %s", strings.Join(missing, ", "))
	}

	for _, col := range header {
		if col != OperationsColumn && !slices.Contains(required, col) {
			return eris.Wrapf(ErrNotGVA, "csv: unexpected column %q", col)
		}
	}
	return nil
}

// cleanHeader strips a UTF-8 byte order mark and surrounding whitespace, both
// of which spreadsheet exports add.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}
