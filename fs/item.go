package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/speakloud"
)

// Ensure ItemWriter implements speakloud.ItemSink at compile time.
var _ speakloud.ItemSink = (*ItemWriter)(nil)

// Record is the JSON document ItemWriter keeps per item.
type Record struct {
	ItemID      string                      `json:"item_id"`
	Status      string                      `json:"status"`
	FailedStage string                      `json:"failed_stage,omitempty"`
	Error       string                      `json:"error,omitempty"`
	Extraction  *speakloud.ExtractionResult `json:"extraction,omitempty"`
	Synthesis   *speakloud.SynthesisResult  `json:"synthesis,omitempty"`
}

// ItemWriter records item progress as <item_id>.json files.
type ItemWriter struct {
	baseDir string

	mu sync.Mutex
}

// NewItemWriter creates an ItemWriter that writes to baseDir.
func NewItemWriter(baseDir string) *ItemWriter {
	return &ItemWriter{baseDir: baseDir}
}

func (w *ItemWriter) UpdateExtraction(ctx context.Context, itemID string, result *speakloud.ExtractionResult) error {
	return w.update(itemID, func(r *Record) {
		r.Extraction = result
		if result.Error != "" {
			r.Status, r.FailedStage, r.Error = "failed", "extract", result.Error
			return
		}
		r.Status = "extracted"
	})
}

func (w *ItemWriter) UpdateSynthesis(ctx context.Context, itemID string, result *speakloud.SynthesisResult) error {
	return w.update(itemID, func(r *Record) {
		r.Synthesis = result
		r.Status = string(result.Status)
		if result.Status == speakloud.SynthesisFailed {
			r.FailedStage, r.Error = "synthesize", result.Error
		}
	})
}

func (w *ItemWriter) MarkFailed(ctx context.Context, itemID, stage, message string) error {
	return w.update(itemID, func(r *Record) {
		r.Status, r.FailedStage, r.Error = "failed", stage, message
	})
}

// ReadRecord loads the record for itemID.
// Returns ENOTFOUND if nothing was written for it.
func (w *ItemWriter) ReadRecord(itemID string) (*Record, error) {
	if err := validKey(itemID); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(w.path(itemID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, speakloud.Errorf(speakloud.ENOTFOUND, "item %q not found", itemID)
	} else if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (w *ItemWriter) path(itemID string) string {
	return filepath.Join(w.baseDir, itemID+".json")
}

func (w *ItemWriter) update(itemID string, apply func(*Record)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, err := w.ReadRecord(itemID)
	if speakloud.ErrorCode(err) == speakloud.ENOTFOUND {
		r, err = &Record{ItemID: itemID}, nil
	}
	if err != nil {
		return err
	}
	apply(r)

	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(w.path(itemID), bytes.NewReader(b))
}
