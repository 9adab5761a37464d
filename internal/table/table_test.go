package table

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/untoldecay/biascheck/internal/classify"
	"github.com/xuri/excelize/v2"
)

func TestExtractTexts(t *testing.T) {
	input := "id\tsentence\tlabel\n" +
		"1\t  He is a nurse.  \t0\n" +
		"2\t\t1\n" +
		"3\t   \t1\n" +
		"4\tShe is an engineer.\t0\n" +
		"5\n" +
		"6\tMen are \"naturally\" better leaders.\t1\n"

	got, err := ExtractTexts(strings.NewReader(input), TSV, DefaultColumn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"He is a nurse.", "She is an engineer.", `Men are "naturally" better leaders.`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractTexts_MissingColumn(t *testing.T) {
	_, err := ExtractTexts(strings.NewReader("id\ttext\n1\thello\n"), TSV, DefaultColumn)
	if !errors.Is(err, ErrInputFormat) {
		t.Fatalf("expected ErrInputFormat, got %v", err)
	}
	var fe *InputFormatError
	if !errors.As(err, &fe) || fe.Column != "sentence" {
		t.Errorf("expected column in error, got %v", err)
	}
}

func TestExtractTexts_Empty(t *testing.T) {
	_, err := ExtractTexts(strings.NewReader(""), TSV, DefaultColumn)
	if !errors.Is(err, ErrInputFormat) {
		t.Fatalf("expected ErrInputFormat, got %v", err)
	}
}

func TestExtractTexts_HeaderOnly(t *testing.T) {
	got, err := ExtractTexts(strings.NewReader("sentence\n"), TSV, DefaultColumn)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %q", got)
	}
}

func TestExtractTexts_CSVWithBOM(t *testing.T) {
	input := "\ufeffsentence,label\n\"Girls can't code, obviously.\",1\n"
	got, err := ExtractTexts(strings.NewReader(input), CSV, DefaultColumn)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "Girls can't code, obviously." {
		t.Errorf("got %q", got)
	}
}

func TestExtractTextsFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if _, err := f.NewSheet("Data"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetName("Sheet1", "README"); err != nil {
		t.Fatal(err)
	}
	// README comes first, Data is the first non-metadata sheet.
	_ = f.SetCellValue("Data", "A1", "sentence")
	_ = f.SetCellValue("Data", "A2", "The doctor said he would call.")
	_ = f.SetCellValue("Data", "A4", "The nurse said she would call.")

	path := filepath.Join(t.TempDir(), "input.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	got, err := ExtractTextsFile(path, DefaultColumn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"The doctor said he would call.", "The nurse said she would call."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractTextsFile_ErrorNamesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.tsv")
	if err := os.WriteFile(path, []byte("text\nhello\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := ExtractTextsFile(path, DefaultColumn)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("expected error naming %s, got %v", path, err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.tsv":  TSV,
		"a.TSV":  TSV,
		"a.txt":  TSV,
		"a.csv":  CSV,
		"a.xlsx": XLSX,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	records := []classify.OutputRecord{
		{Sentence: "a", Label: classify.Affirmative},
		{Sentence: "b", Label: classify.Negative},
		{Sentence: "c", Label: classify.Unknown},
	}
	if err := WriteTable(&buf, records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "sentence\tnew_label\na\t1\nb\t0\nc\tunknown\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, nil)
	if !errors.Is(err, ErrOutputWrite) {
		t.Fatalf("expected ErrOutputWrite, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}

	path := filepath.Join(t.TempDir(), "out.tsv")
	if err := WriteTableFile(path, nil); !errors.Is(err, ErrOutputWrite) {
		t.Fatalf("expected ErrOutputWrite, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty output must not create the file")
	}
}

func TestWriteThenExtract_RoundTrip(t *testing.T) {
	records := []classify.OutputRecord{
		{Sentence: "Plain sentence.", Label: classify.Negative},
		{Sentence: `She said "boys will be boys".`, Label: classify.Affirmative},
		{Sentence: "Tabs\tinside", Label: classify.Unknown},
		{Sentence: "café, 日本語 🚀", Label: classify.Negative},
	}
	path := filepath.Join(t.TempDir(), "checked.tsv")
	if err := WriteTableFile(path, records); err != nil {
		t.Fatal(err)
	}

	texts, err := ExtractTextsFile(path, DefaultColumn)
	if err != nil {
		t.Fatal(err)
	}
	// Tabs inside a cell are written as spaces.
	want := []classify.OutputRecord{records[0], records[1], {Sentence: "Tabs inside", Label: classify.Unknown}, records[3]}
	for i, r := range want {
		if texts[i] != r.Sentence {
			t.Errorf("row %d: got %q, want %q", i, texts[i], r.Sentence)
		}
	}

	back, err := ReadLabelled(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, want) {
		t.Errorf("ReadLabelled = %+v, want %+v", back, want)
	}
}

func TestExtractTexts_LeadingQuote(t *testing.T) {
	input := "id\tsentence\tlabel\n" +
		"1\t\"Women belong at home,\" he said.\t1\n" +
		"2\tThe nurse finished her shift.\t0\n" +
		"3\t\"Unclosed quote\t1\n" +
		"4\tMen do not cry.\t1\n"

	got, err := ExtractTexts(strings.NewReader(input), TSV, DefaultColumn)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		`"Women belong at home," he said.`,
		"The nurse finished her shift.",
		`"Unclosed quote`,
		"Men do not cry.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteTable_QuotesWrittenAsIs(t *testing.T) {
	var buf bytes.Buffer
	records := []classify.OutputRecord{{Sentence: `"Girls can't lead," she said.`, Label: classify.Affirmative}}
	if err := WriteTable(&buf, records); err != nil {
		t.Fatal(err)
	}
	want := "sentence\tnew_label\n\"Girls can't lead,\" she said.\t1\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRead_KeepsShortRows(t *testing.T) {
	tbl, err := Read(strings.NewReader("id\tsentence\tlabel\nonly one cell\n"), TSV)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 1 || len(tbl.Rows[0]) != 1 {
		t.Fatalf("rows = %q", tbl.Rows)
	}

	var buf bytes.Buffer
	if err := AppendNumbered(&buf, []byte("x"), tbl, 554); err != nil {
		t.Fatal(err)
	}
	if want := "x\n\n554\tonly one cell\n"; buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestReadLabelled_ShortRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.tsv")
	if err := os.WriteFile(path, []byte("sentence\tnew_label\nno label here\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLabelled(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Sentence != "no label here" || got[0].Label != classify.Unknown {
		t.Errorf("got %+v", got)
	}
}

func TestReadLabelled_NotLabelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.tsv")
	if err := os.WriteFile(path, []byte("sentence\nhi\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadLabelled(path); !errors.Is(err, ErrInputFormat) {
		t.Fatalf("expected ErrInputFormat, got %v", err)
	}
}

func TestShuffleAndNumber(t *testing.T) {
	rows := [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}
	rnd := rand.New(rand.NewPCG(1, 2))

	out := ShuffleAndNumber(rows, rnd)
	if len(out) != len(rows) {
		t.Fatalf("got %d rows", len(out))
	}
	var seen []string
	for i, row := range out {
		if row[0] != strconv.Itoa(i+1) {
			t.Errorf("row %d id = %q", i, row[0])
		}
		seen = append(seen, row[1])
	}
	sort.Strings(seen)
	if !reflect.DeepEqual(seen, []string{"a", "b", "c", "d", "e"}) {
		t.Errorf("rows lost or duplicated: %v", seen)
	}
	if rows[0][0] != "a" {
		t.Error("input must not be modified")
	}

	again := ShuffleAndNumber(rows, rand.New(rand.NewPCG(1, 2)))
	if !reflect.DeepEqual(out, again) {
		t.Error("same seed must give the same order")
	}
}

func TestAppendNumbered(t *testing.T) {
	base := []byte("id\tsentence\n1\told one\n553\told two")
	extra := &Table{
		Header: []string{"sentence", "label"},
		Rows:   [][]string{{"new one", "1"}, {"bad \xff byte", "0"}},
	}

	var buf bytes.Buffer
	if err := AppendNumbered(&buf, base, extra, 554); err != nil {
		t.Fatal(err)
	}
	want := "id\tsentence\n1\told one\n553\told two\n\n554\tnew one\t1\n555\tbad  byte\t0\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
