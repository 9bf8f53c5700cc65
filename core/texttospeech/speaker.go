package texttospeech

import (
	"context"
	"errors"
)

// Speaker synthesizes text and plays it, returning once playback is over.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

var ErrPlayback = errors.New("speech playback failed")

// PlaybackError wraps any failure to synthesize or play a reply.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string {
	if e.Err == nil {
		return ErrPlayback.Error()
	}
	return ErrPlayback.Error() + ": " + e.Err.Error()
}

func (e *PlaybackError) Unwrap() error { return e.Err }

func (e *PlaybackError) Is(target error) bool { return target == ErrPlayback }

func NewPlaybackError(err error) error {
	var playbackErr *PlaybackError
	if errors.As(err, &playbackErr) {
		return err
	}
	return &PlaybackError{Err: err}
}
