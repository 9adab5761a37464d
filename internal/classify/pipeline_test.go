package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// stubClassifier answers from a fixed map keyed by sentence and fails for the
// sentences listed in fail.
type stubClassifier struct {
	answers map[string]string
	fail    map[string]bool
	calls   []Request
}

func (s *stubClassifier) Classify(_ context.Context, req Request) (string, error) {
	s.calls = append(s.calls, req)
	text := strings.TrimPrefix(string(req), DefaultPrefix)
	if s.fail[text] {
		return "", errors.New("upstream 503")
	}
	return s.answers[text], nil
}

type memRecorder struct {
	lines        []string
	interactions []Interaction
	err          error
}

func (m *memRecorder) Record(resp string) error {
	if m.err != nil {
		return m.err
	}
	m.lines = append(m.lines, resp)
	return nil
}

func (m *memRecorder) RecordInteraction(i Interaction) error {
	m.interactions = append(m.interactions, i)
	return m.err
}

func always(answer string) ClassifierFunc {
	return func(context.Context, Request) (string, error) { return answer, nil }
}

func TestRun_AllAffirmative(t *testing.T) {
	res, err := New(always("Yes")).Run(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []OutputRecord{{"a", Affirmative}, {"b", Affirmative}, {"c", Affirmative}}
	if len(res.Records) != len(want) {
		t.Fatalf("got %d records, want %d", len(res.Records), len(want))
	}
	for i := range want {
		if res.Records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, res.Records[i], want[i])
		}
	}
	if res.Counts[Affirmative] != 3 || res.Skipped != 0 {
		t.Errorf("counts = %v skipped = %d", res.Counts, res.Skipped)
	}
}

func TestRun_SkipsFailedItem(t *testing.T) {
	stub := &stubClassifier{
		answers: map[string]string{"a": "Yes", "c": "No."},
		fail:    map[string]bool{"b": true},
	}

	res, err := New(stub).Run(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("pipeline should not fail on a single item: %v", err)
	}
	if len(stub.calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(stub.calls))
	}
	want := []OutputRecord{{"a", Affirmative}, {"c", Negative}}
	if len(res.Records) != 2 || res.Records[0] != want[0] || res.Records[1] != want[1] {
		t.Fatalf("records = %+v, want %+v", res.Records, want)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}

	failed := res.Outcomes[1]
	if !failed.Skipped() || failed.Index != 1 || failed.Text != "b" {
		t.Errorf("unexpected outcome for failed item: %+v", failed)
	}
	if !errors.Is(failed.Err, ErrClassificationCall) {
		t.Errorf("expected ErrClassificationCall, got %v", failed.Err)
	}
	var callErr *CallError
	if !errors.As(failed.Err, &callErr) || callErr.Index != 1 {
		t.Errorf("expected *CallError for index 1, got %v", failed.Err)
	}
}

func TestRun_FailureDoesNotShiftLabels(t *testing.T) {
	stub := &stubClassifier{
		answers: map[string]string{"first": "No", "third": "Yes", "fourth": "No"},
		fail:    map[string]bool{"second": true},
	}
	res, err := New(stub).Run(context.Background(), []string{"first", "second", "third", "fourth"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res.Records {
		if want := ParseLabel(stub.answers[r.Sentence]); r.Label != want {
			t.Errorf("%q labelled %v, want %v", r.Sentence, r.Label, want)
		}
	}
}

func TestRun_UnparseableIsUnknown(t *testing.T) {
	res, err := New(always("I cannot determine that.")).Run(context.Background(), []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Records[0].Label != Unknown {
		t.Fatalf("records = %+v", res.Records)
	}
}

func TestRun_TrimsResponseWhitespace(t *testing.T) {
	res, err := New(always("Yes.\n")).Run(context.Background(), []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Records[0].Label != Affirmative {
		t.Errorf("label = %v", res.Records[0].Label)
	}
}

func TestRun_RecordsResponsesBeforeParsing(t *testing.T) {
	rec := &memRecorder{}
	stub := &stubClassifier{
		answers: map[string]string{"a": "Yes", "c": "Perhaps"},
		fail:    map[string]bool{"b": true},
	}

	if _, err := New(stub, WithResponseLog(rec), WithInteractionLog(rec)).Run(context.Background(), []string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(rec.lines, "|"); got != "Yes|Perhaps" {
		t.Errorf("response log = %q", got)
	}
	if len(rec.interactions) != 3 {
		t.Fatalf("expected 3 interactions, got %d", len(rec.interactions))
	}
	if rec.interactions[1].Err == nil {
		t.Error("failed interaction should carry its error")
	}
	if !strings.HasSuffix(rec.interactions[2].Prompt, "c") {
		t.Errorf("prompt = %q", rec.interactions[2].Prompt)
	}
}

func TestRun_ResponseLogFailureSkipsItem(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	res, err := New(always("Yes"), WithResponseLog(rec)).Run(context.Background(), []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 0 || res.Skipped != 1 {
		t.Errorf("records = %+v skipped = %d", res.Records, res.Skipped)
	}
}

func TestRun_InteractionLogFailureIsIgnored(t *testing.T) {
	rec := &memRecorder{err: errors.New("read-only")}
	res, err := New(always("No"), WithInteractionLog(rec)).Run(context.Background(), []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 {
		t.Errorf("interaction log errors must not drop records: %+v", res.Records)
	}
}

func TestRun_CustomPrompt(t *testing.T) {
	prompt, err := ParsePrompt("instruction = \"Sexist? {{.Yes}} or {{.No}}\"\naffirmative = [\"Y\"]\nnegative = [\"N\"]")
	if err != nil {
		t.Fatal(err)
	}
	opt, err := WithPrompt(prompt)
	if err != nil {
		t.Fatal(err)
	}

	var seen Request
	c := ClassifierFunc(func(_ context.Context, req Request) (string, error) {
		seen = req
		return "N.", nil
	})
	res, err := New(c, opt).Run(context.Background(), []string{"hello"})
	if err != nil {
		t.Fatal(err)
	}
	if string(seen) != "Sexist? Y or N\nhello" {
		t.Errorf("request = %q", seen)
	}
	if res.Records[0].Label != Negative {
		t.Errorf("label = %v", res.Records[0].Label)
	}
}

func TestRun_PanicIsSkipped(t *testing.T) {
	n := 0
	c := ClassifierFunc(func(context.Context, Request) (string, error) {
		n++
		if n == 1 {
			panic("nil response body")
		}
		return "Yes", nil
	})
	res, err := New(c).Run(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Records[0].Sentence != "b" {
		t.Errorf("records = %+v", res.Records)
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	c := ClassifierFunc(func(ctx context.Context, _ Request) (string, error) {
		calls++
		if calls == 2 {
			cancel()
			return "", ctx.Err()
		}
		return "Yes", nil
	})

	res, err := New(c).Run(ctx, []string{"a", "b", "c"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected the loop to stop after cancellation, got %d calls", calls)
	}
	if len(res.Records) != 1 || res.Records[0].Sentence != "a" {
		t.Errorf("partial records = %+v", res.Records)
	}
}

func TestRun_CallTimeout(t *testing.T) {
	c := ClassifierFunc(func(ctx context.Context, req Request) (string, error) {
		if strings.HasSuffix(string(req), "slow") {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "No", nil
	})

	res, err := New(c, WithCallTimeout(10*time.Millisecond)).Run(context.Background(), []string{"slow", "fast"})
	if err != nil {
		t.Fatalf("a per-call timeout must not abort the batch: %v", err)
	}
	if res.Skipped != 1 || len(res.Records) != 1 || res.Records[0].Sentence != "fast" {
		t.Errorf("records = %+v skipped = %d", res.Records, res.Skipped)
	}
	if !errors.Is(res.Outcomes[0].Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", res.Outcomes[0].Err)
	}
}

func TestRun_Progress(t *testing.T) {
	var got []int
	_, err := New(always("Yes"), WithProgress(func(done, total int) {
		if total != 3 {
			t.Errorf("total = %d", total)
		}
		got = append(got, done)
	})).Run(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("progress = %v", got)
	}
}

func TestRun_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	stub := &stubClassifier{
		answers: map[string]string{"a": "Yes", "b": "No", "d": "?"},
		fail:    map[string]bool{"c": true},
	}

	if _, err := New(stub, WithMetrics(m)).Run(context.Background(), []string{"a", "b", "c", "d"}); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.failures); got != 1 {
		t.Errorf("failures = %v", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues("affirmative")); got != 1 {
		t.Errorf("affirmative = %v", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues("unknown")); got != 1 {
		t.Errorf("unknown = %v", got)
	}
}

func TestRun_Empty(t *testing.T) {
	res, err := New(always("Yes")).Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 0 || len(res.Outcomes) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}
