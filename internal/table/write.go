package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/untoldecay/biascheck/internal/classify"
)

// OutputHeader is the header row of a labelled table.
var OutputHeader = []string{"sentence", "new_label"}

// WriteTable writes records as a tab-separated table with a header row. An
// empty slice is an error: there is nothing to derive the table from.
func WriteTable(w io.Writer, records []classify.OutputRecord) error {
	if len(records) == 0 {
		return &OutputWriteError{Reason: "no records to write"}
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Sentence, r.Label.Cell()})
	}
	return WriteRows(w, OutputHeader, rows)
}

// WriteTableFile writes records to path, replacing any existing file.
func WriteTableFile(path string, records []classify.OutputRecord) error {
	if len(records) == 0 {
		return &OutputWriteError{Reason: "no records to write"}
	}
	return writeFile(path, func(w io.Writer) error { return WriteTable(w, records) })
}

// WriteRows writes a tab-separated table. A nil header writes data rows only.
// Cells are written as is, without quoting; tabs and line breaks inside a cell
// become spaces so every row stays one line.
func WriteRows(w io.Writer, header []string, rows [][]string) error {
	if header != nil {
		if err := writeRow(w, header); err != nil {
			return &OutputWriteError{Reason: "writing header", Err: err}
		}
	}
	for _, row := range rows {
		if err := writeRow(w, row); err != nil {
			return &OutputWriteError{Reason: "writing rows", Err: err}
		}
	}
	return nil
}

var cellSanitizer = strings.NewReplacer("\r\n", " ", "\t", " ", "\n", " ", "\r", " ")

func writeRow(w io.Writer, row []string) error {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = cellSanitizer.Replace(c)
	}
	_, err := io.WriteString(w, strings.Join(cells, "\t")+"\n")
	return err
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path) // #nosec G304 -- user-supplied output path
	if err != nil {
		return &OutputWriteError{Reason: fmt.Sprintf("creating %s", path), Err: err}
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return &OutputWriteError{Reason: "flushing output", Err: err}
	}
	if err := f.Close(); err != nil {
		return &OutputWriteError{Reason: "closing output", Err: err}
	}
	return nil
}

// ReadLabelled reads a table written by WriteTable back into records.
func ReadLabelled(path string) ([]classify.OutputRecord, error) {
	t, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	si, li := t.Column(OutputHeader[0]), t.Column(OutputHeader[1])
	if si < 0 || li < 0 {
		return nil, &InputFormatError{Source: path, Column: OutputHeader[1], Reason: "not a labelled table"}
	}
	records := make([]classify.OutputRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, classify.OutputRecord{
			Sentence: cell(row, si),
			Label:    classify.ParseCell(cell(row, li)),
		})
	}
	return records, nil
}

// cell returns row[i], or "" when the row is shorter than the header.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
