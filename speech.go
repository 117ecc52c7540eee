package speakloud

import (
	"context"
	"strings"
)

// AudioEncoding identifies the audio container a speech backend returns.
type AudioEncoding string

// Supported audio encodings.
const (
	EncodingMP3 AudioEncoding = "mp3"
	EncodingWAV AudioEncoding = "wav"
)

// Extension returns the file extension for the encoding, without a dot.
func (e AudioEncoding) Extension() string {
	return string(e)
}

// ContentType returns the MIME type for the encoding.
func (e AudioEncoding) ContentType() string {
	switch e {
	case EncodingWAV:
		return "audio/wav"
	default:
		return "audio/mpeg"
	}
}

// DefaultSpeakingRate is the narration speed passed to speech backends.
const DefaultSpeakingRate = 1.1

// DefaultVoice is used when a submission does not name a voice.
const DefaultVoice = "en-US-Standard-C"

// Voices lists the allowed voice identifiers.
var Voices = []string{
	"en-US-Standard-C",
	"en-US-Standard-D",
	"en-GB-Standard-A",
	"en-AU-Standard-B",
	"en-US-Wavenet-D",
	"en-US-Wavenet-F",
}

// ResolveVoice returns voice, or DefaultVoice when voice is empty.
// Voices outside the allow-list return EINVALID.
func ResolveVoice(voice string) (string, error) {
	if voice == "" {
		return DefaultVoice, nil
	}
	for _, v := range Voices {
		if v == voice {
			return v, nil
		}
	}
	return "", Errorf(EINVALID, "unsupported voice %q", voice)
}

// LanguageCode derives the BCP-47 language code from a voice identifier,
// e.g. "en-GB" from "en-GB-Standard-A".
func LanguageCode(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 2 {
		return voice
	}
	return parts[0] + "-" + parts[1]
}

// SpeechRequest is one backend call.
type SpeechRequest struct {
	SSML         string
	Voice        string
	SpeakingRate float64
}

// SpeechBackend converts one SSML document to audio bytes.
type SpeechBackend interface {
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)

	// Encoding reports the container of the returned audio.
	Encoding() AudioEncoding
}

// Segment is one synthesized chunk on disk.
type Segment struct {
	Path  string
	Index int
}

// Concatenator joins segments, in the given order, into one audio file.
type Concatenator interface {
	Concat(ctx context.Context, segments []Segment, out string) error
}

// DurationProber measures the length of an audio file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// ArtifactStore persists finished audio artifacts.
type ArtifactStore interface {
	// Exists reports whether an artifact with key is already stored.
	Exists(ctx context.Context, key string) (bool, error)

	// Put uploads the file at path under key and returns its location.
	Put(ctx context.Context, key, path, contentType string) (string, error)

	// Location returns where the artifact with key is, or would be, served.
	Location(key string) string
}

// SynthesisStatus is the outcome of a synthesis job.
type SynthesisStatus string

// Synthesis job statuses.
const (
	SynthesisDone    SynthesisStatus = "done"
	SynthesisSkipped SynthesisStatus = "skipped"
	SynthesisFailed  SynthesisStatus = "failed"
)

// SynthesisRequest describes one narration job.
type SynthesisRequest struct {
	ItemID string
	Title  string
	Author string
	Text   string
	Voice  string

	// Overwrite forces synthesis even when the artifact exists.
	Overwrite bool
}

// SynthesisResult describes the artifact produced by a synthesis job.
type SynthesisResult struct {
	Location        string          `json:"location"`
	Key             string          `json:"key"`
	DurationSeconds float64         `json:"duration_seconds"`
	SegmentCount    int             `json:"segment_count"`
	Status          SynthesisStatus `json:"status"`
	Error           string          `json:"error,omitempty"`
}

// Paragraphs splits text into non-empty trimmed lines.
func Paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ArticleExtractor runs the full extraction pipeline for one request.
// The result is never nil: it carries the per-stage diagnostics even when
// an error is returned. Errors are EFETCH when the page could not be
// fetched and EEXTRACT when no strategy produced usable text.
type ArticleExtractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error)
}

// Synthesizer narrates article text into a stored audio artifact.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
}

// ItemSink records the progress of a submission.
type ItemSink interface {
	UpdateExtraction(ctx context.Context, itemID string, result *ExtractionResult) error
	UpdateSynthesis(ctx context.Context, itemID string, result *SynthesisResult) error
	MarkFailed(ctx context.Context, itemID, stage, message string) error
}
