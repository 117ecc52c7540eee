package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/speakloud"
)

// Compile-time interface verification.
var _ speakloud.ItemSink = (*ItemStore)(nil)

// Item statuses.
const (
	ItemExtracted = "extracted"
	ItemDone      = "done"
	ItemSkipped   = "skipped"
	ItemFailed    = "failed"
)

// Item is the recorded state of one submission.
type Item struct {
	ID           string                      `json:"id"`
	URL          string                      `json:"url"`
	Status       string                      `json:"status"`
	FailedStage  string                      `json:"failed_stage,omitempty"`
	ErrorMessage string                      `json:"error_message,omitempty"`
	Extraction   *speakloud.ExtractionResult `json:"extraction,omitempty"`
	Synthesis    *speakloud.SynthesisResult  `json:"synthesis,omitempty"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// ItemStore records submission progress in SQLite. It implements
// speakloud.ItemSink.
type ItemStore struct {
	db  *DB
	now func() time.Time
}

// NewItemStore creates a new ItemStore.
func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db, now: time.Now}
}

// UpdateExtraction stores the extraction result and marks the item extracted.
// A result that reports an error leaves the item failed at the extract stage.
func (s *ItemStore) UpdateExtraction(ctx context.Context, itemID string, result *speakloud.ExtractionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding extraction: %w", err)
	}

	status, stage := ItemExtracted, ""
	if result.Error != "" {
		status, stage = ItemFailed, "extract"
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (id, url, status, failed_stage, error_message, extraction, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			status = excluded.status,
			failed_stage = excluded.failed_stage,
			error_message = excluded.error_message,
			extraction = excluded.extraction,
			updated_at = excluded.updated_at
	`, itemID, result.URL, status, stage, result.Error, string(data), s.timestamp())
	return err
}

// UpdateSynthesis stores the synthesis result and marks the item done or
// skipped. A skipped result keeps the previously stored synthesis, which
// describes the artifact that was reused.
func (s *ItemStore) UpdateSynthesis(ctx context.Context, itemID string, result *speakloud.SynthesisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding synthesis: %w", err)
	}

	status := ItemDone
	if result.Status == speakloud.SynthesisSkipped {
		status = ItemSkipped
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (id, status, synthesis, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			failed_stage = '',
			error_message = '',
			synthesis = CASE
				WHEN excluded.status = 'skipped' AND items.synthesis != '' THEN items.synthesis
				ELSE excluded.synthesis
			END,
			updated_at = excluded.updated_at
	`, itemID, status, string(data), s.timestamp())
	return err
}

// MarkFailed records a failure at stage. Earlier results are kept for
// inspection.
func (s *ItemStore) MarkFailed(ctx context.Context, itemID, stage, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, status, failed_stage, error_message, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			failed_stage = excluded.failed_stage,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at
	`, itemID, ItemFailed, stage, message, s.timestamp())
	return err
}

// FindItemByID retrieves an item by ID.
// Returns ENOTFOUND if the item does not exist.
func (s *ItemStore) FindItemByID(ctx context.Context, id string) (*Item, error) {
	var item Item
	var extraction, synthesis, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, status, failed_stage, error_message, extraction, synthesis, updated_at
		FROM items
		WHERE id = ?
	`, id).Scan(&item.ID, &item.URL, &item.Status, &item.FailedStage, &item.ErrorMessage,
		&extraction, &synthesis, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, speakloud.Errorf(speakloud.ENOTFOUND, "item not found")
	}
	if err != nil {
		return nil, err
	}

	if extraction != "" {
		item.Extraction = &speakloud.ExtractionResult{}
		if err := json.Unmarshal([]byte(extraction), item.Extraction); err != nil {
			return nil, fmt.Errorf("decoding extraction: %w", err)
		}
	}
	if synthesis != "" {
		item.Synthesis = &speakloud.SynthesisResult{}
		if err := json.Unmarshal([]byte(synthesis), item.Synthesis); err != nil {
			return nil, fmt.Errorf("decoding synthesis: %w", err)
		}
	}

	item.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at")
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ItemStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
