// Package evaluate runs the rubric against a folder of frames and assembles
// the resulting evaluation record.
package evaluate

import (
	"context"
	"time"

	"causaltrace/internal/config"
	"causaltrace/internal/frames"
	"causaltrace/internal/llm"
	"causaltrace/internal/models"
	"causaltrace/internal/prompt"
	"causaltrace/internal/rubric"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNoFrames is the record error used when frame selection yields nothing.
const ErrNoFrames = "No valid frames found"

// RunInput describes one evaluation run.
type RunInput struct {
	FramesDir       string
	TemplateID      string
	TemplateContent string // empty selects the built-in causal-tracing prompt
	Model           string
}

// Evaluator drives one rubric pass per RunFull call.
type Evaluator struct {
	completer llm.Completer
	selector  frames.Selector
	pacer     Pacer
	questions []string
	maxTokens int
	now       func() time.Time
	newID     func() string
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSelector replaces the frame selector.
func WithSelector(s frames.Selector) Option {
	return func(e *Evaluator) { e.selector = s }
}

// WithMaxFrames sets the frame cap.
func WithMaxFrames(n int) Option {
	return func(e *Evaluator) { e.selector.MaxFrames = n }
}

// WithPacer sets the pacing policy between provider calls.
func WithPacer(p Pacer) Option {
	return func(e *Evaluator) {
		if p == nil {
			p = NoPacing
		}
		e.pacer = p
	}
}

// WithInterval paces calls with a fixed interval. Zero disables pacing.
func WithInterval(d time.Duration) Option {
	return WithPacer(IntervalPacer{Interval: d})
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// WithIDGen overrides record id generation.
func WithIDGen(f func() string) Option {
	return func(e *Evaluator) { e.newID = f }
}

// WithRubric replaces the rubric questions.
func WithRubric(questions []string) Option {
	return func(e *Evaluator) { e.questions = append([]string(nil), questions...) }
}

// New returns an Evaluator that sends every rubric question through c.
func New(c llm.Completer, opts ...Option) *Evaluator {
	e := &Evaluator{
		completer: c,
		selector:  frames.Selector{MaxFrames: frames.DefaultMaxFrames},
		pacer:     IntervalPacer{Interval: config.DefaultPacing},
		questions: rubric.Questions(),
		maxTokens: config.MaxOutputTokens,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunFull selects frames from in.FramesDir and asks every rubric question once,
// in order. Provider failures are recorded per question and never abort the run.
// When no frames are found the record carries ErrNoFrames and no results, and
// the provider is never contacted.
func (e *Evaluator) RunFull(ctx context.Context, in RunInput) models.Record {
	rec := models.Record{
		ID:         e.newID(),
		FramesPath: in.FramesDir,
		TemplateID: in.TemplateID,
		Model:      in.Model,
		Results:    []models.QuestionResult{},
	}
	log.Info().Str("evaluation_id", rec.ID).Str("model", in.Model).Msg("starting full rubric evaluation")

	selected, err := e.selector.Select(in.FramesDir)
	if err != nil {
		log.Warn().Err(err).Str("evaluation_id", rec.ID).Msg("frame selection failed")
	}
	if len(selected) == 0 {
		rec.Timestamp = e.timestamp()
		rec.Error = ErrNoFrames
		log.Warn().Str("evaluation_id", rec.ID).Str("frames_path", in.FramesDir).Msg(ErrNoFrames)
		return rec
	}
	log.Info().Str("evaluation_id", rec.ID).Int("frames", len(selected)).Msg("using frames for evaluation")

	results := make([]models.QuestionResult, 0, len(e.questions))
	for i, question := range e.questions {
		log.Info().Str("evaluation_id", rec.ID).Msgf("evaluating question %d/%d", i+1, len(e.questions))
		results = append(results, e.ask(ctx, question, in, selected))

		if i < len(e.questions)-1 {
			if err := e.pacer.Wait(ctx); err != nil {
				log.Debug().Err(err).Msg("pacing interrupted")
			}
		}
	}

	rec.Timestamp = e.timestamp()
	rec.FramesAnalyzed = len(selected)
	rec.Results = results
	log.Info().Str("evaluation_id", rec.ID).Int("errors", rec.Errors()).Msg("evaluation complete")
	return rec
}

func (e *Evaluator) ask(ctx context.Context, question string, in RunInput, fs []frames.Frame) models.QuestionResult {
	text := prompt.Build(question, in.TemplateContent)
	req := llm.NewRequest(in.Model, e.maxTokens, llm.Assemble(text, fs))
	res := e.completer.Complete(ctx, req)
	if res.Err != nil {
		return models.Failed(question, res.Err.Message, string(res.Err.Category))
	}
	return models.Answered(question, res.Text)
}

func (e *Evaluator) timestamp() time.Time {
	return e.now().UTC()
}
