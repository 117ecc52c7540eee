package gemini_test

import (
	"encoding/binary"
	"testing"

	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	ssml := `<speak><emphasis level="strong">Fish &amp; Chips</emphasis><break time="600ms"/>` +
		`By Jane<break time="800ms"/><p>First.</p><break time="500ms"/><p>Second.</p><break time="500ms"/></speak>`

	got := gemini.PlainText(ssml)

	assert.Equal(t, "Fish & Chips By Jane First.\n\n Second.", got)
}

func TestPlainText_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, gemini.PlainText("<speak></speak>"))
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig("en-GB", "Puck")

	assert.Equal(t, []string{"AUDIO"}, config.ResponseModalities)
	require.NotNil(t, config.SpeechConfig)
	assert.Equal(t, "en-GB", config.SpeechConfig.LanguageCode)
	assert.Equal(t, "Puck", config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
}

func TestWAV(t *testing.T) {
	t.Parallel()

	pcm := []byte{1, 2, 3, 4}
	wav := gemini.WAV(pcm, gemini.SampleRate)

	require.Len(t, wav, 48)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(40), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(gemini.SampleRate), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestBackend_Encoding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, speakloud.EncodingWAV, gemini.NewBackend(nil).Encoding())
}
