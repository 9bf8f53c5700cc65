package orchestration

import (
	"context"
	"time"

	"github.com/koscakluka/kurt/core/speechtotext"
)

type OrchestratorOption func(*Orchestrator)

// SpeechCapture records and transcribes one utterance.
type SpeechCapture interface {
	Capture(ctx context.Context, opts ...speechtotext.CaptureOption) (string, error)
}

// LanguageModel turns a prompt into a reply.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SpeechPlayback speaks text and returns when playback is over.
type SpeechPlayback interface {
	Speak(ctx context.Context, text string) error
}

const (
	DefaultJoinTimeout         = time.Second
	DefaultResultQueueCapacity = 16
)

func WithSpeechCapture(client SpeechCapture) OrchestratorOption {
	return func(o *Orchestrator) { o.speechCapture.set(client) }
}

func WithLanguageModel(client LanguageModel) OrchestratorOption {
	return func(o *Orchestrator) { o.languageModel.set(client) }
}

func WithSpeechPlayback(client SpeechPlayback) OrchestratorOption {
	return func(o *Orchestrator) { o.speechPlayback.set(client) }
}

// WithAssistantName sets the name used in the transcript, the status line
// and the prompt. The default preamble follows the name unless a preamble
// was set explicitly.
func WithAssistantName(name string) OrchestratorOption {
	return func(o *Orchestrator) {
		if name != "" {
			o.assistantName = name
		}
	}
}

func WithCreator(creator string) OrchestratorOption {
	return func(o *Orchestrator) { o.creator = creator }
}

func WithPreamble(preamble string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.preamble = preamble
		o.preambleSet = true
	}
}

// WithMaxHistory bounds both the transcript shown and the exchanges added
// to the prompt. Values below 1 are ignored.
func WithMaxHistory(maxHistory int) OrchestratorOption {
	return func(o *Orchestrator) {
		if maxHistory > 0 {
			o.maxHistory = maxHistory
		}
	}
}

// WithCaptureLimits sets how long to wait for speech to start and how long
// a single phrase may run. Non-positive values keep the defaults.
func WithCaptureLimits(listenTimeout, phraseTimeLimit time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if listenTimeout > 0 {
			o.listenTimeout = listenTimeout
		}
		if phraseTimeLimit > 0 {
			o.phraseTimeLimit = phraseTimeLimit
		}
	}
}

// WithJoinTimeout bounds how long Shutdown waits for each running task.
func WithJoinTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.joinTimeout = timeout
		}
	}
}

// WithBaseContext sets the parent of the context handed to every task.
func WithBaseContext(ctx context.Context) OrchestratorOption {
	return func(o *Orchestrator) {
		if ctx != nil {
			o.baseContext = ctx
		}
	}
}

func WithResultQueueCapacity(capacity int) OrchestratorOption {
	return func(o *Orchestrator) {
		if capacity >= 0 {
			o.resultQueueCapacity = capacity
		}
	}
}
