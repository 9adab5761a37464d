package table

import (
	"bytes"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ShuffleAndNumber returns rows in random order, each prefixed with a 1-based
// id reflecting its new position. The input is not modified.
func ShuffleAndNumber(rows [][]string, rnd *rand.Rand) [][]string {
	out := make([][]string, len(rows))
	copy(out, rows)
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return Number(out, 1)
}

// Number prefixes each row with a monotonically increasing id starting at start.
func Number(rows [][]string, start int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		numbered := make([]string, 0, len(row)+1)
		numbered = append(numbered, strconv.Itoa(start+i))
		numbered = append(numbered, row...)
		out[i] = numbered
	}
	return out
}

// AppendNumbered writes base unchanged, then a blank separator row, then the
// data rows of extra (its header dropped) numbered from startID. Invalid UTF-8
// in either input is discarded.
func AppendNumbered(w io.Writer, base []byte, extra *Table, startID int) error {
	base = bytes.ToValidUTF8(base, nil)
	if len(base) > 0 && !bytes.HasSuffix(base, []byte("\n")) {
		base = append(base, '\n')
	}
	if _, err := w.Write(base); err != nil {
		return &OutputWriteError{Reason: "writing base table", Err: err}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return &OutputWriteError{Reason: "writing separator", Err: err}
	}

	rows := make([][]string, len(extra.Rows))
	for i, row := range extra.Rows {
		clean := make([]string, len(row))
		for j, cell := range row {
			clean[j] = strings.ToValidUTF8(cell, "")
		}
		rows[i] = clean
	}
	return WriteRows(w, nil, Number(rows, startID))
}
