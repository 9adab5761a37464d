// Package classify labels sentences one at a time through an external
// classification capability, keeping each label attached to its sentence.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Classifier sends one prompt and returns the raw text of one response.
type Classifier interface {
	Classify(ctx context.Context, req Request) (string, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, req Request) (string, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ResponseRecorder receives every raw response before it is parsed.
type ResponseRecorder interface {
	Record(response string) error
}

// Interaction is one call as seen by an InteractionRecorder.
type Interaction struct {
	Index    int
	Prompt   string
	Response string
	Label    Label
	Err      error
}

// InteractionRecorder receives every call, failed or not. Errors are logged
// and otherwise ignored.
type InteractionRecorder interface {
	RecordInteraction(Interaction) error
}

// OutputRecord pairs a sentence with its label.
type OutputRecord struct {
	Sentence string
	Label    Label
}

// Outcome is the result of folding one input sentence. Exactly one of Label
// (with Err == nil) or Err is meaningful.
type Outcome struct {
	Index    int
	Text     string
	Response string
	Label    Label
	Err      error
}

// Skipped reports whether the item was dropped from the output.
func (o Outcome) Skipped() bool { return o.Err != nil }

// Result is the outcome of a pipeline run.
type Result struct {
	Records  []OutputRecord
	Outcomes []Outcome
	Counts   map[Label]int
	Skipped  int
	Duration time.Duration
}

// Pipeline classifies sentences sequentially.
type Pipeline struct {
	classifier   Classifier
	prefix       string
	vocab        Vocabulary
	responses    ResponseRecorder
	interactions InteractionRecorder
	logger       *slog.Logger
	metrics      *Metrics
	callTimeout  time.Duration
	progress     func(done, total int)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPrefix sets the instruction placed before each sentence.
func WithPrefix(prefix string) Option {
	return func(p *Pipeline) { p.prefix = prefix }
}

// WithVocabulary sets the accepted response tokens.
func WithVocabulary(v Vocabulary) Option {
	return func(p *Pipeline) { p.vocab = v }
}

// WithPrompt sets both prefix and vocabulary from a Prompt.
func WithPrompt(prompt Prompt) (Option, error) {
	prefix, err := prompt.Prefix()
	if err != nil {
		return nil, err
	}
	return func(p *Pipeline) {
		p.prefix = prefix
		p.vocab = prompt.Vocabulary
	}, nil
}

// WithResponseLog records raw responses, in call order, before parsing.
func WithResponseLog(r ResponseRecorder) Option {
	return func(p *Pipeline) { p.responses = r }
}

// WithInteractionLog records every call including failures.
func WithInteractionLog(r InteractionRecorder) Option {
	return func(p *Pipeline) { p.interactions = r }
}

// WithLogger sets the logger used for skipped items.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics enables metric collection.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCallTimeout bounds each call. Zero means no timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.callTimeout = d }
}

// WithProgress is called after every item.
func WithProgress(fn func(done, total int)) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// New creates a pipeline around c.
func New(c Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: c,
		prefix:     DefaultPrefix,
		vocab:      DefaultVocabulary,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run folds texts into output records, one call at a time. A failed item is
// logged and skipped; it never aborts the batch. Run only returns an error when
// ctx is done, together with the records gathered so far.
func (p *Pipeline) Run(ctx context.Context, texts []string) (*Result, error) {
	start := time.Now()
	res := &Result{
		Records:  make([]OutputRecord, 0, len(texts)),
		Outcomes: make([]Outcome, 0, len(texts)),
		Counts:   make(map[Label]int),
	}

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		callStart := time.Now()
		o := p.step(ctx, i, text)
		p.metrics.observe(o, time.Since(callStart))

		if o.Skipped() && ctx.Err() != nil {
			// The call was interrupted, not rejected.
			res.Duration = time.Since(start)
			return res, ctx.Err()
		}

		res.Outcomes = append(res.Outcomes, o)
		if o.Skipped() {
			res.Skipped++
			p.logger.Warn("skipping sentence", "index", o.Index, "error", o.Err)
		} else {
			res.Records = append(res.Records, OutputRecord{Sentence: o.Text, Label: o.Label})
			res.Counts[o.Label]++
			p.logger.Debug("classified sentence", "index", o.Index, "label", o.Label.String())
		}

		if p.progress != nil {
			p.progress(i+1, len(texts))
		}
	}

	res.Duration = time.Since(start)
	return res, nil
}

// step classifies a single sentence. Every failure is returned inside the
// Outcome as a *CallError.
func (p *Pipeline) step(ctx context.Context, index int, text string) Outcome {
	o := Outcome{Index: index, Text: text}
	req := BuildRequest(text, p.prefix)

	callCtx := ctx
	if p.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
	}

	resp, err := p.call(callCtx, req)
	if err == nil && p.responses != nil {
		if recErr := p.responses.Record(resp); recErr != nil {
			err = fmt.Errorf("recording response: %w", recErr)
		}
	}
	if err != nil {
		o.Err = &CallError{Index: index, Err: err}
	} else {
		o.Response = resp
		o.Label = p.vocab.Parse(strings.TrimSpace(resp))
	}

	if p.interactions != nil {
		// Best-effort: never skip a sentence because the interaction log failed.
		if logErr := p.interactions.RecordInteraction(Interaction{
			Index:    index,
			Prompt:   string(req),
			Response: resp,
			Label:    o.Label,
			Err:      o.Err,
		}); logErr != nil {
			p.logger.Warn("interaction log write failed", "index", index, "error", logErr)
		}
	}
	return o
}

// call invokes the classifier, turning a panic in a provider into an error so
// that one bad item cannot take down the batch.
func (p *Pipeline) call(ctx context.Context, req Request) (resp string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panic: %v", r)
		}
	}()
	return p.classifier.Classify(ctx, req)
}
