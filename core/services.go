package orchestration

import (
	"context"
	"errors"

	"github.com/koscakluka/kurt/core/llms"
	"github.com/koscakluka/kurt/core/speechtotext"
)

var (
	errNoCaptureClient = errors.New("no speech capture client configured")
	errNoLanguageModel = errors.New("no language model configured")
)

type speechCapture struct {
	client SpeechCapture
}

func (s *speechCapture) set(client SpeechCapture) { s.client = client }

func (s *speechCapture) isConfigured() bool { return s.client != nil }

func (s *speechCapture) Capture(ctx context.Context, opts ...speechtotext.CaptureOption) (string, error) {
	if !s.isConfigured() {
		return "", speechtotext.NewDeviceError(errNoCaptureClient)
	}
	return s.client.Capture(ctx, opts...)
}

type languageModel struct {
	client LanguageModel
}

func (l *languageModel) set(client LanguageModel) { l.client = client }

func (l *languageModel) isConfigured() bool { return l.client != nil }

func (l *languageModel) Generate(ctx context.Context, prompt string) (string, error) {
	if !l.isConfigured() {
		return "", llms.NewUnknownError(errNoLanguageModel)
	}
	return l.client.Generate(ctx, prompt)
}

type speechPlayback struct {
	client SpeechPlayback
}

func (s *speechPlayback) set(client SpeechPlayback) { s.client = client }

func (s *speechPlayback) isConfigured() bool { return s.client != nil }

// Speak is a no-op without a client; the reply stays text only.
func (s *speechPlayback) Speak(ctx context.Context, text string) error {
	if !s.isConfigured() {
		return nil
	}
	return s.client.Speak(ctx, text)
}
