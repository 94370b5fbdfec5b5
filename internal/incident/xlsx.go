package incident

import (
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Incidents"

// numericColumns are written as number cells when their value parses.
var numericColumns = map[string]bool{
	"lat":     true,
	"long":    true,
	"deaths":  true,
	"wounded": true,
}

// WriteXLSX writes incidents to a single-sheet workbook with the same header
// and column order as WriteCSV.
func WriteXLSX(w io.Writer, incidents []Incident) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	if err := encodeIncidents(&sheetWriter{sheet: sheet}, incidents); err != nil {
		return err
	}

	return eris.Wrap(f.Write(w), "xlsx: write workbook")
}

// sheetWriter adapts an xlsx sheet to csvutil.Writer so both output formats
// share one encoder and column order.
type sheetWriter struct {
	sheet  *xlsx.Sheet
	header []string
}

func (s *sheetWriter) Write(record []string) error {
	row := s.sheet.AddRow()
	if s.header == nil {
		s.header = append([]string(nil), record...)
		for _, v := range record {
			row.AddCell().SetString(v)
		}
		return nil
	}

	for i, v := range record {
		cell := row.AddCell()
		if i < len(s.header) && numericColumns[s.header[i]] && v != "" {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				cell.SetFloat(n)
				continue
			}
		}
		cell.SetString(v)
	}
	return nil
}
