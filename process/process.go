// Package process runs one submission end to end: extraction, narration and
// persistence of each stage's result through an ItemSink.
package process

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/fwojciec/speakloud"
)

// DefaultTimeout bounds one submission, including browser rendering and
// ffmpeg subprocesses.
const DefaultTimeout = 3 * time.Minute

// Submission is one article to narrate.
type Submission struct {
	ItemID    string
	URL       string
	Voice     string
	Overwrite bool

	// SkipSynthesis stops after extraction.
	SkipSynthesis bool
}

// Outcome reports what happened to a submission.
type Outcome struct {
	ItemID     string
	Extraction *speakloud.ExtractionResult
	Synthesis  *speakloud.SynthesisResult

	// FailedStage is empty on success.
	FailedStage string
	Err         error
}

// OK reports whether every stage succeeded.
func (o *Outcome) OK() bool {
	return o.Err == nil
}

// Processor drives submissions through the pipeline.
type Processor struct {
	extractor   speakloud.ArticleExtractor
	synthesizer speakloud.Synthesizer
	sink        speakloud.ItemSink
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Processor) {
		p.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor.
func NewProcessor(extractor speakloud.ArticleExtractor, synthesizer speakloud.Synthesizer, sink speakloud.ItemSink, opts ...Option) *Processor {
	p := &Processor{
		extractor:   extractor,
		synthesizer: synthesizer,
		sink:        sink,
		timeout:     DefaultTimeout,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs sub and records progress in the sink. It never panics;
// failures are returned in the Outcome and recorded against the item.
func (p *Processor) Process(ctx context.Context, sub Submission) (out *Outcome) {
	out = &Outcome{ItemID: sub.ItemID}
	logger := p.logger.With("item_id", sub.ItemID, "url", sub.URL)

	// Sink writes outlive the pipeline deadline so failures are recorded.
	sinkCtx := context.WithoutCancel(ctx)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	stage := speakloud.StageExtract
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic", "stage", stage, "panic", r, "stack", string(debug.Stack()))
			p.fail(sinkCtx, logger, out, stage, speakloud.Errorf(speakloud.EINTERNAL, "internal error during %s: %v", stage, r))
		}
	}()

	if sub.ItemID == "" || sub.URL == "" {
		out.FailedStage = speakloud.StageFetch
		out.Err = speakloud.Errorf(speakloud.EINVALID, "item id and url required")
		return out
	}
	voice, err := speakloud.ResolveVoice(sub.Voice)
	if err != nil {
		p.fail(sinkCtx, logger, out, speakloud.StageSynthesize, err)
		return out
	}

	result, err := p.extractor.Extract(ctx, speakloud.ExtractionRequest{URL: sub.URL, ItemID: sub.ItemID})
	out.Extraction = result
	if result != nil {
		if serr := p.sink.UpdateExtraction(sinkCtx, sub.ItemID, result); serr != nil {
			logger.Error("record extraction", "err", serr)
		}
	}
	if err != nil {
		failed := speakloud.StageExtract
		if speakloud.ErrorCode(err) == speakloud.EFETCH {
			failed = speakloud.StageFetch
		}
		p.fail(sinkCtx, logger, out, failed, err)
		return out
	}
	if sub.SkipSynthesis {
		return out
	}

	stage = speakloud.StageSynthesize
	synth, err := p.synthesizer.Synthesize(ctx, speakloud.SynthesisRequest{
		ItemID:    sub.ItemID,
		Title:     result.Title,
		Author:    result.Author,
		Text:      result.Text,
		Voice:     voice,
		Overwrite: sub.Overwrite,
	})
	if err != nil {
		p.fail(sinkCtx, logger, out, stage, err)
		return out
	}
	out.Synthesis = synth
	if err := p.sink.UpdateSynthesis(sinkCtx, sub.ItemID, synth); err != nil {
		logger.Error("record synthesis", "err", err)
		out.FailedStage, out.Err = stage, fmt.Errorf("record synthesis: %w", err)
	}
	return out
}

func (p *Processor) fail(ctx context.Context, logger *slog.Logger, out *Outcome, stage string, err error) {
	out.FailedStage = stage
	out.Err = err
	logger.Warn("stage failed", "stage", stage, "err", err)
	if serr := p.sink.MarkFailed(ctx, out.ItemID, stage, failureMessage(err)); serr != nil {
		logger.Error("record failure", "err", serr)
	}
}

// failureMessage returns a message fit for showing to the submitter.
func failureMessage(err error) string {
	if speakloud.ErrorCode(err) == speakloud.EINTERNAL {
		return err.Error()
	}
	return speakloud.ErrorMessage(err)
}
