package main

import (
	"context"
	"fmt"

	orchestration "github.com/koscakluka/kurt/core"
	"github.com/koscakluka/kurt/core/audio"
	"github.com/koscakluka/kurt/core/audio/miniaudio"
	"github.com/koscakluka/kurt/core/audio/portaudio"
	"github.com/koscakluka/kurt/core/llms"
	"github.com/koscakluka/kurt/core/llms/gemini"
	"github.com/koscakluka/kurt/core/llms/openai"
	stt "github.com/koscakluka/kurt/core/speechtotext/deepgram"
	tts "github.com/koscakluka/kurt/core/texttospeech/deepgram"
	"github.com/koscakluka/kurt/internal/config"
)

const defaultBufferSize = 1024

// audioDevice is a microphone and speaker pair that has to be released.
type audioDevice interface {
	audio.Source
	audio.Sink
	Close()
}

func openAudioDevice(cfg config.AudioConfig) (audioDevice, error) {
	switch cfg.Backend {
	case config.AudioPortaudio:
		bufferSize := cfg.BufferSize
		if bufferSize == 0 {
			bufferSize = defaultBufferSize
		}
		client, err := portaudio.NewClient(bufferSize)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		device, err := miniaudio.NewDevice()
		if err != nil {
			return nil, err
		}
		return device, nil
	}
}

// orchestratorOptions builds the service clients cfg asks for.
func orchestratorOptions(ctx context.Context, cfg config.Config, device audioDevice) ([]orchestration.OrchestratorOption, error) {
	opts := []orchestration.OrchestratorOption{
		orchestration.WithBaseContext(ctx),
		orchestration.WithAssistantName(cfg.Assistant.Name),
		orchestration.WithCreator(cfg.Assistant.Creator),
		orchestration.WithMaxHistory(cfg.Assistant.MaxHistory),
		orchestration.WithCaptureLimits(cfg.Speech.ListenTimeout.Std(), cfg.Speech.PhraseTimeLimit.Std()),
	}
	if cfg.Assistant.Preamble != "" {
		opts = append(opts, orchestration.WithPreamble(cfg.Assistant.Preamble))
	}

	capture, err := stt.NewCaptureClient(device,
		stt.WithModel(cfg.Speech.STTModel),
		stt.WithLanguage(cfg.Speech.Language),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up speech capture: %w", err)
	}
	opts = append(opts, orchestration.WithSpeechCapture(capture))

	model, err := newLanguageModel(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to set up %s: %w", cfg.LLM.Provider, err)
	}
	opts = append(opts, orchestration.WithLanguageModel(model))

	if cfg.Speech.Enabled {
		speaker, err := tts.NewSpeechClient(device, tts.WithVoice(tts.Voice(cfg.Speech.Voice)))
		if err != nil {
			return nil, fmt.Errorf("failed to set up speech playback: %w", err)
		}
		opts = append(opts, orchestration.WithSpeechPlayback(speaker))
	}
	return opts, nil
}

func newLanguageModel(ctx context.Context, cfg config.LLMConfig) (llms.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		client, err := openai.NewClient(openai.WithModel(cfg.Model), openai.WithBaseURL(cfg.BaseURL))
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		client, err := gemini.NewClient(ctx, gemini.WithModel(cfg.Model), gemini.WithBaseURL(cfg.BaseURL))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
