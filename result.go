package speakloud

import (
	"strings"
	"unicode/utf8"
)

// Status is the outcome of one pipeline stage or strategy.
type Status string

// Stage and strategy statuses recorded in ExtractionResult.ExtractStatus.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusUnknown Status = "unknown"
)

// Pipeline stage names. StageFetch is also the ExtractStatus key for the
// fetch stage.
const (
	StageFetch      = "fetch"
	StageExtract    = "extract"
	StageSynthesize = "synthesize"
)

// ErrAllExtractorsFailed is the ExtractionResult.Error value reported when
// no strategy produced a validated candidate.
const ErrAllExtractorsFailed = "all_extractors_failed"

// ErrCancelled is the ExtractionResult.Error value reported when the
// request context ended before a strategy succeeded.
const ErrCancelled = "cancelled"

// ErrFetchFailed is the ExtractionResult.Error value reported when the page
// could not be fetched.
const ErrFetchFailed = "fetch_failed"

// ErrEmptyContent is the ExtractionResult.Error value reported when nothing
// is left after sanitization.
const ErrEmptyContent = "empty_after_sanitization"

// ExtractionRequest is one article submission.
type ExtractionRequest struct {
	URL string

	// ItemID identifies the submission in logs. Optional.
	ItemID string
}

// ExtractionResult is the final output of the extraction pipeline.
type ExtractionResult struct {
	URL    string  `json:"url"`
	Text   string  `json:"text"`
	Blocks []Block `json:"structured_text"`

	WordCount      int    `json:"word_count"`
	ReadingTimeMin int    `json:"reading_time_min"`
	TextPreview    string `json:"text_preview"`
	ContentHash    string `json:"content_hash,omitempty"`

	Metadata

	// Source is the name of the winning strategy.
	Source string `json:"source"`

	// ExtractStatus maps stage and strategy names to their outcome.
	ExtractStatus map[string]Status `json:"extract_status"`

	// Diagnostics maps failed stages and strategies to the reason.
	Diagnostics map[string]string `json:"diagnostics,omitempty"`

	// UsedRuleID is set when an extraction rule selected the strategy.
	UsedRuleID string `json:"used_rule_id,omitempty"`

	LastModified string `json:"last_modified,omitempty"`
	ETag         string `json:"etag,omitempty"`

	// Error is empty on success.
	Error string `json:"error,omitempty"`
}

// OK reports whether extraction produced usable text.
func (r *ExtractionResult) OK() bool {
	return r.Error == "" && r.Text != ""
}

// WordsPerMinute is the narration pace assumed for reading time estimates.
const WordsPerMinute = 200

// CountWords returns the number of whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns the estimated reading time in whole minutes,
// never less than one.
func ReadingTime(words int) int {
	return max(1, words/WordsPerMinute)
}

// Preview returns the first n runes of text.
func Preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}
