package transcribe

import (
	"context"
	"errors"
	"io"
)

// MaxAudioBytes caps a single upload.
const MaxAudioBytes = 25 * 1024 * 1024

var (
	ErrNoAudio     = errors.New("no file provided")
	ErrAudioTooBig = errors.New("audio file exceeds 25 MB")
	ErrEmptyResult = errors.New("transcription returned no text")
)

// Audio is a single recorded statement as received from the client.
type Audio struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Transcriber turns recorded speech into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// Validate checks the shape of an upload before any network call.
func (a Audio) Validate() error {
	if a.Reader == nil || a.Size == 0 {
		return ErrNoAudio
	}
	if a.Size > MaxAudioBytes {
		return ErrAudioTooBig
	}
	return nil
}
