// Package gemini implements speech synthesis with Gemini speech generation.
package gemini

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"

	"github.com/fwojciec/speakloud"
	"golang.org/x/net/html"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the speech generation model.
	DefaultModel = "gemini-2.5-flash-preview-tts"

	// DefaultVoiceName is the prebuilt Gemini voice.
	DefaultVoiceName = "Kore"

	// SampleRate is the rate of the 16-bit mono PCM Gemini returns.
	SampleRate = 24000
)

var _ speakloud.SpeechBackend = (*Backend)(nil)

// Backend implements speakloud.SpeechBackend using Google Gemini. Gemini
// does not read SSML, so markup is reduced to plain text and the pauses
// become paragraph breaks. Audio is returned as WAV.
type Backend struct {
	client    *genai.Client
	model     string
	voiceName string
}

// Option configures a Backend.
type Option func(*Backend)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(b *Backend) {
		b.model = model
	}
}

// WithVoiceName overrides DefaultVoiceName.
func WithVoiceName(name string) Option {
	return func(b *Backend) {
		b.voiceName = name
	}
}

// NewBackend creates a new Backend.
func NewBackend(client *genai.Client, opts ...Option) *Backend {
	b := &Backend{
		client:    client,
		model:     DefaultModel,
		voiceName: DefaultVoiceName,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Encoding returns speakloud.EncodingWAV.
func (b *Backend) Encoding() speakloud.AudioEncoding {
	return speakloud.EncodingWAV
}

// Synthesize narrates one SSML chunk.
func (b *Backend) Synthesize(ctx context.Context, req speakloud.SpeechRequest) ([]byte, error) {
	text := PlainText(req.SSML)
	if text == "" {
		return nil, speakloud.Errorf(speakloud.EINVALID, "nothing to synthesize")
	}

	result, err := b.client.Models.GenerateContent(ctx, b.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: text}},
		}},
		BuildConfig(speakloud.LanguageCode(req.Voice), b.voiceName),
	)
	if err != nil {
		return nil, err
	}

	pcm := audioData(result)
	if len(pcm) == 0 {
		return nil, speakloud.Errorf(speakloud.ESYNTHESIS, "gemini returned no audio")
	}
	return WAV(pcm, SampleRate), nil
}

// BuildConfig returns the GenerateContentConfig for a speech request.
func BuildConfig(languageCode, voiceName string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			LanguageCode: languageCode,
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
			},
		},
	}
}

func audioData(result *genai.GenerateContentResponse) []byte {
	if result == nil {
		return nil
	}
	var pcm []byte
	for _, c := range result.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil && p.InlineData != nil {
				pcm = append(pcm, p.InlineData.Data...)
			}
		}
	}
	return pcm
}

// PlainText strips SSML markup, unescapes entities and turns paragraph
// ends into blank lines.
func PlainText(ssml string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(ssml))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			sb.Write(z.Text())
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "p" {
				sb.WriteString("\n\n")
			}
		case html.SelfClosingTagToken, html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "break" {
				sb.WriteString(" ")
			}
		}
	}
}

// WAV wraps 16-bit little-endian mono PCM in a RIFF header.
func WAV(pcm []byte, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
