package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/process"
	"github.com/google/uuid"
)

// Processor runs a submission end to end.
type Processor interface {
	Process(ctx context.Context, sub process.Submission) *process.Outcome
}

// Run executes the process command.
func (c *ProcessCmd) Run(deps *Dependencies) error {
	id := c.ItemID
	if id == "" {
		id = uuid.NewString()
	}

	out := deps.Processor.Process(deps.Ctx, process.Submission{
		ItemID:        id,
		URL:           c.URL,
		Voice:         c.Voice,
		Overwrite:     c.Overwrite,
		SkipSynthesis: c.NoAudio,
	})

	fmt.Fprintf(deps.Stdout, "Item:    %s\n", id)
	if out.Extraction != nil && out.Extraction.Source != "" {
		fmt.Fprintf(deps.Stdout, "Title:   %s\n", out.Extraction.Title)
		fmt.Fprintf(deps.Stdout, "Source:  %s (%d words)\n", out.Extraction.Source, out.Extraction.WordCount)
	}
	if !out.OK() {
		fmt.Fprintf(deps.Stderr, "error: %s failed: %s\n", out.FailedStage, speakloud.ErrorMessage(out.Err))
		if out.Extraction != nil {
			writeStatus(deps, out.Extraction)
		}
		return out.Err
	}
	if s := out.Synthesis; s != nil {
		switch s.Status {
		case speakloud.SynthesisSkipped:
			fmt.Fprintf(deps.Stdout, "Audio:   %s already exists (use --overwrite to replace)\n", s.Key)
		default:
			fmt.Fprintf(deps.Stdout, "Audio:   %s (%.1fs, %d segments)\n", s.Location, s.DurationSeconds, s.SegmentCount)
		}
	}
	return nil
}
