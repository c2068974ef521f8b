package transcribe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe_SendsMultipartAndTrimsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/audio/transcriptions"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "text", r.FormValue("response_format"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "voice.webm", hdr.Filename)
		assert.Equal(t, "RIFF", string(body))

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("  my landlord kept the deposit\n"))
	}))
	defer srv.Close()

	tr := NewOpenAITranscriber("key", "", option.WithBaseURL(srv.URL+"/"))
	text, err := tr.Transcribe(context.Background(), Audio{
		Filename:    "voice.webm",
		ContentType: "audio/webm",
		Size:        4,
		Reader:      strings.NewReader("RIFF"),
	})

	require.NoError(t, err)
	assert.Equal(t, "my landlord kept the deposit", text)
}

func TestTranscribe_BlankResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(" \n"))
	}))
	defer srv.Close()

	tr := NewOpenAITranscriber("key", "", option.WithBaseURL(srv.URL+"/"))
	_, err := tr.Transcribe(context.Background(), Audio{Filename: "a.mp3", Size: 1, Reader: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestTranscribe_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down"}}`))
	}))
	defer srv.Close()

	tr := NewOpenAITranscriber("key", "", option.WithBaseURL(srv.URL+"/"))
	_, err := tr.Transcribe(context.Background(), Audio{Filename: "a.mp3", Size: 1, Reader: strings.NewReader("x")})
	require.Error(t, err)
}

func TestAudioValidate(t *testing.T) {
	assert.ErrorIs(t, Audio{}.Validate(), ErrNoAudio)
	assert.ErrorIs(t, Audio{Size: MaxAudioBytes + 1, Reader: strings.NewReader("x")}.Validate(), ErrAudioTooBig)
	assert.NoError(t, Audio{Size: 10, Reader: strings.NewReader("x")}.Validate())
}
