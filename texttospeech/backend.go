// Package texttospeech implements speech synthesis with Google Cloud
// Text-to-Speech.
package texttospeech

import (
	"context"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/fwojciec/speakloud"
)

var _ speakloud.SpeechBackend = (*Backend)(nil)

// SynthesizeFunc performs one Text-to-Speech API call.
type SynthesizeFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)

// Backend implements speakloud.SpeechBackend using Cloud Text-to-Speech.
// It sends SSML and receives MP3.
type Backend struct {
	synthesize SynthesizeFunc
}

// NewBackend creates a Backend using client.
func NewBackend(client *texttospeech.Client) *Backend {
	return &Backend{
		synthesize: func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
			return client.SynthesizeSpeech(ctx, req)
		},
	}
}

// NewBackendFunc creates a Backend that calls fn instead of the API.
func NewBackendFunc(fn SynthesizeFunc) *Backend {
	return &Backend{synthesize: fn}
}

// Encoding returns speakloud.EncodingMP3.
func (b *Backend) Encoding() speakloud.AudioEncoding {
	return speakloud.EncodingMP3
}

// Synthesize narrates one SSML chunk.
func (b *Backend) Synthesize(ctx context.Context, req speakloud.SpeechRequest) ([]byte, error) {
	if len(req.SSML) > speakloud.MaxSSMLBytes {
		return nil, speakloud.Errorf(speakloud.EINVALID, "ssml is %d bytes, over the %d byte limit", len(req.SSML), speakloud.MaxSSMLBytes)
	}

	resp, err := b.synthesize(ctx, BuildRequest(req))
	if err != nil {
		return nil, err
	}
	if len(resp.GetAudioContent()) == 0 {
		return nil, speakloud.Errorf(speakloud.ESYNTHESIS, "text-to-speech returned no audio")
	}
	return resp.GetAudioContent(), nil
}

// BuildRequest converts a speech request to the API request.
func BuildRequest(req speakloud.SpeechRequest) *texttospeechpb.SynthesizeSpeechRequest {
	rate := req.SpeakingRate
	if rate == 0 {
		rate = speakloud.DefaultSpeakingRate
	}
	voice := req.Voice
	if voice == "" {
		voice = speakloud.DefaultVoice
	}
	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Ssml{Ssml: req.SSML},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: speakloud.LanguageCode(voice),
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  rate,
		},
	}
}
