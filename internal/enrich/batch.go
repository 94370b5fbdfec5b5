package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/incident-cli/internal/incident"
	"github.com/sells-group/incident-cli/pkg/geocode"
)

// Row is the part of an incident that is sent to the geocoder.
type Row struct {
	Address string
	City    string
	State   string // full state name
}

// Query builds the lookup for the row.
func (r Row) Query() geocode.Query {
	return geocode.Query{Address: r.Address, City: r.City, State: r.State}
}

// RowsFrom extracts the geocoder input of each incident, in order.
func RowsFrom(incidents []incident.Incident) []Row {
	rows := make([]Row, len(incidents))
	for i, inc := range incidents {
		rows[i] = Row{Address: inc.Address, City: inc.City, State: inc.State}
	}
	return rows
}

// Table holds the enriched columns of a batch as row-aligned arrays.
type Table struct {
	City       []string
	State      []string
	PostalCode []string
	Lat        []Coordinate
	Long       []Coordinate
}

func newTable(n int) *Table {
	return &Table{
		City:       make([]string, 0, n),
		State:      make([]string, 0, n),
		PostalCode: make([]string, 0, n),
		Lat:        make([]Coordinate, 0, n),
		Long:       make([]Coordinate, 0, n),
	}
}

func (t *Table) append(f Fields) {
	t.City = append(t.City, f.City)
	t.State = append(t.State, f.State)
	t.PostalCode = append(t.PostalCode, f.PostalCode)
	t.Lat = append(t.Lat, f.Lat)
	t.Long = append(t.Long, f.Long)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.City)
}

// Fields returns row i.
func (t *Table) Fields(i int) Fields {
	return Fields{
		City:       t.City[i],
		State:      t.State[i],
		PostalCode: t.PostalCode[i],
		Lat:        t.Lat[i],
		Long:       t.Long[i],
	}
}

// Apply overwrites the city, state, postal_code, lat and long columns of
// incidents with the table, row for row.
func (t *Table) Apply(incidents []incident.Incident) error {
	if len(incidents) != t.Len() {
		return eris.Errorf("enrich: table has %d rows, incidents have %d", t.Len(), len(incidents))
	}
	for i := range incidents {
		incidents[i].City = t.City[i]
		incidents[i].State = t.State[i]
		incidents[i].PostalCode = t.PostalCode[i]
		incidents[i].Lat = t.Lat[i].String()
		incidents[i].Long = t.Long[i].String()
	}
	return nil
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithClock sets the time source used for Summary timestamps.
func WithClock(now func() time.Time) BatchOption {
	return func(b *Batch) {
		if now != nil {
			b.now = now
		}
	}
}

// Batch enriches rows one at a time with a shared geocoding client.
type Batch struct {
	client   geocode.Client
	progress io.Writer
	now      func() time.Time
}

// NewBatch creates a Batch that writes one progress line per row to
// progress. A nil progress discards them.
func NewBatch(client geocode.Client, progress io.Writer, opts ...BatchOption) *Batch {
	if progress == nil {
		progress = io.Discard
	}
	b := &Batch{
		client:   client,
		progress: progress,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run geocodes every row in order, one call per row, and returns the
// enriched table with a per-outcome summary. Lookup failures and unknown
// states leave the row empty and never stop the batch. A cancelled context
// stops it before the next row; Run then returns the context error and no
// table.
func (b *Batch) Run(ctx context.Context, rows []Row) (*Table, *Summary, error) {
	total := len(rows)
	table := newTable(total)
	sum := newSummary(total, b.now())

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, eris.Wrapf(err, "enrich: stopped before row %d of %d", i+1, total)
		}

		res := geocode.Resolve(ctx, b.client, row.Query())
		if err := ctx.Err(); err != nil {
			return nil, nil, eris.Wrapf(err, "enrich: stopped at row %d of %d", i+1, total)
		}

		fields, enrichErr := EnrichRow(res)
		table.append(fields)
		sum.record(res, enrichErr)
		logRow(i+1, row, res, enrichErr)

		_, _ = fmt.Fprintln(b.progress, Label(row, res, enrichErr)+FormatProgress(i+1, total, fields))
	}

	sum.FinishedAt = b.now()
	return table, sum, nil
}

func logRow(index int, row Row, res geocode.Result, enrichErr error) {
	log := zap.L().With(zap.Int("row", index))

	switch {
	case res.Outcome == geocode.OutcomeFailed:
		fields := []zap.Field{zap.Stringer("kind", res.Err.Kind), zap.Error(res.Err)}
		if res.Err.Kind == geocode.KindServiceError {
			fields = append(fields, zap.String("address", row.Address))
		}
		log.Warn("enrich: geocode failed", fields...)
	case errors.Is(enrichErr, incident.ErrUnknownState):
		log.Error("enrich: unknown state in geocode result",
			zap.String("state", res.Location.Address.State),
			zap.Error(enrichErr),
		)
	case res.Outcome == geocode.OutcomeFound:
		log.Debug("enrich: match",
			zap.String("display_name", res.Location.DisplayName),
			zap.String("geometry", res.Location.GeometryType()),
			zap.Bool("area", res.Location.IsArea()),
		)
	case res.Outcome == geocode.OutcomeNotFound:
		log.Debug("enrich: no match",
			zap.String("address", row.Address),
			zap.String("city", row.City),
			zap.String("state", row.State),
		)
	}
}
