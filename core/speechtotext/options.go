package speechtotext

import (
	"time"

	"github.com/koscakluka/kurt/core/audio"
)

const (
	DefaultListenTimeout   = 5 * time.Second
	DefaultPhraseTimeLimit = 5 * time.Second
)

type CaptureOptions struct {
	// ListenTimeout is how long to wait for speech to start before giving
	// up with ErrNoSpeech.
	ListenTimeout time.Duration
	// PhraseTimeLimit caps how long a single phrase may run once speech
	// has started.
	PhraseTimeLimit time.Duration

	// SpeechStartedCallback is called once speech is detected.
	SpeechStartedCallback func()
	// InterimTranscriptionCallback receives the transcript so far.
	InterimTranscriptionCallback func(transcript string)

	EncodingInfo audio.EncodingInfo
}

type CaptureOption func(*CaptureOptions)

// NewCaptureOptions applies opts over the defaults.
func NewCaptureOptions(opts ...CaptureOption) CaptureOptions {
	options := CaptureOptions{
		ListenTimeout:   DefaultListenTimeout,
		PhraseTimeLimit: DefaultPhraseTimeLimit,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithListenTimeout(timeout time.Duration) CaptureOption {
	return func(o *CaptureOptions) {
		if timeout > 0 {
			o.ListenTimeout = timeout
		}
	}
}

func WithPhraseTimeLimit(limit time.Duration) CaptureOption {
	return func(o *CaptureOptions) {
		if limit > 0 {
			o.PhraseTimeLimit = limit
		}
	}
}

func WithSpeechStartedCallback(callback func()) CaptureOption {
	return func(o *CaptureOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithInterimTranscriptionCallback(callback func(transcript string)) CaptureOption {
	return func(o *CaptureOptions) {
		o.InterimTranscriptionCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) CaptureOption {
	return func(o *CaptureOptions) {
		if encodingInfo.IsZero() {
			return
		}
		o.EncodingInfo = encodingInfo
	}
}
