// Package table reads and writes the delimited tables the classifier works on.
package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultColumn is the column holding the text to classify.
const DefaultColumn = "sentence"

// Format is the on-disk layout of a table.
type Format int

const (
	TSV Format = iota
	CSV
	XLSX
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case XLSX:
		return "xlsx"
	default:
		return "tsv"
	}
}

// FormatFromPath picks a format from the file extension. Unknown extensions
// are treated as TSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV
	case ".xlsx", ".xlsm":
		return XLSX
	default:
		return TSV
	}
}

// Table is a header row plus data rows. Rows keep the cells they were read
// with; short rows are not padded.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of name in the header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if normalizeHeader(h) == name {
			return i
		}
	}
	return -1
}

// Read parses a whole table from r.
func Read(r io.Reader, format Format) (*Table, error) {
	var (
		all [][]string
		err error
	)
	switch format {
	case XLSX:
		all, err = readExcel(r)
	case CSV:
		all, err = readCSV(r)
	default:
		all, err = readTSV(r)
	}
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, &InputFormatError{Reason: "empty table, no header row"}
	}
	return &Table{Header: all[0], Rows: all[1:]}, nil
}

// ReadFile reads a table, choosing the format from the extension.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied input table
	if err != nil {
		return nil, fmt.Errorf("opening input table: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := Read(f, FormatFromPath(path))
	if err != nil {
		var fe *InputFormatError
		if errors.As(err, &fe) && fe.Source == "" {
			fe.Source = path
		}
		return nil, err
	}
	return t, nil
}

// Texts returns the trimmed, non-empty values of column in row order. Rows with
// an empty cell are skipped without a placeholder.
func (t *Table) Texts(column string) ([]string, error) {
	idx := t.Column(column)
	if idx < 0 {
		return nil, &InputFormatError{Column: column, Reason: "required column not found in header"}
	}
	texts := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		if s := strings.TrimSpace(row[idx]); s != "" {
			texts = append(texts, s)
		}
	}
	return texts, nil
}

// ExtractTexts reads a table and returns the values of column. See Table.Texts.
func ExtractTexts(r io.Reader, format Format, column string) ([]string, error) {
	t, err := Read(r, format)
	if err != nil {
		return nil, err
	}
	return t.Texts(column)
}

// ExtractTextsFile is ExtractTexts for a path.
func ExtractTextsFile(path, column string) ([]string, error) {
	t, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	texts, err := t.Texts(column)
	if err != nil {
		var fe *InputFormatError
		if errors.As(err, &fe) {
			fe.Source = path
		}
		return nil, err
	}
	return texts, nil
}

// readTSV splits lines on tabs. Quotes carry no meaning, so a cell may start
// with a quote without swallowing the rows after it. Blank lines are skipped.
func readTSV(r io.Reader) ([][]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var rows [][]string
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	if err := sc.Err(); err != nil {
		return nil, &InputFormatError{Reason: fmt.Sprintf("failed to parse tsv: %v", err)}
	}
	return rows, nil
}

// maxLineSize bounds a single TSV line.
const maxLineSize = 16 * 1024 * 1024

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &InputFormatError{Reason: fmt.Sprintf("failed to parse csv: %v", err)}
	}
	return rows, nil
}

// Sheets with these names are skipped when looking for data.
var metadataSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

func readExcel(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &InputFormatError{Reason: fmt.Sprintf("failed to open workbook: %v", err)}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &InputFormatError{Reason: "workbook has no sheets"}
	}
	sheet := sheets[len(sheets)-1]
	for _, s := range sheets {
		if !metadataSheets[strings.ToLower(s)] {
			sheet = s
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &InputFormatError{Reason: fmt.Sprintf("failed to read sheet %q: %v", sheet, err)}
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}
