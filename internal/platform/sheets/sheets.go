// Package sheets turns uploaded score spreadsheets into import rows.
package sheets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"evalportal/internal/platform/apperr"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Column order expected in every file: email, metric name, score, optional comment.
const (
	colEmail = iota
	colMetric
	colScore
	colComment
	minColumns = colScore + 1
)

func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", apperr.Validation("file", "unsupported file type, expected .csv or .xlsx")
	}
}

// Row is one data line of a score file. Score is the cell's raw text so the
// caller can report non-numeric values per line.
type Row struct {
	Line       int
	Email      string
	MetricName string
	Score      string
	Comment    string
}

// ReadImportRows parses the whole file before returning so a malformed file
// never yields a partial row set.
func ReadImportRows(r io.Reader, format Format) ([]Row, error) {
	var records [][]string
	var err error
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	default:
		return nil, apperr.Validation("format", fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, apperr.Validation("file", "file is empty or contains only a header")
	}
	return toRows(records), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	var out [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.Validation("file", "malformed csv: "+err.Error())
		}
		out = append(out, record)
	}
	return out, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("file", "malformed spreadsheet: "+err.Error())
	}
	defer f.Close()

	sheetsList := f.GetSheetList()
	if len(sheetsList) == 0 {
		return nil, apperr.Validation("file", "spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheetsList[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperr.Validation("file", "malformed spreadsheet: "+err.Error())
	}
	return rows, nil
}

// toRows drops the header and any row too short to carry a score.
func toRows(records [][]string) []Row {
	out := make([]Row, 0, len(records))
	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) < minColumns || strings.TrimSpace(record[colEmail]) == "" {
			continue
		}
		row := Row{
			Line:       i + 1,
			Email:      strings.TrimSpace(record[colEmail]),
			MetricName: strings.TrimSpace(record[colMetric]),
			Score:      strings.TrimSpace(record[colScore]),
		}
		if len(record) > colComment {
			row.Comment = strings.TrimSpace(record[colComment])
		}
		out = append(out, row)
	}
	return out
}
