package orchestration

import (
	"context"
	"sync"

	"github.com/koscakluka/kurt/core/speechtotext"
)

type captureStub struct {
	mu          sync.Mutex
	calls       int
	transcripts []string
	err         error
	block       chan struct{}
	ignoreCtx   bool
	panicWith   any
	interim     []string
	options     []speechtotext.CaptureOptions
}

func (c *captureStub) Capture(ctx context.Context, opts ...speechtotext.CaptureOption) (string, error) {
	c.mu.Lock()
	call := c.calls
	c.calls++
	options := speechtotext.NewCaptureOptions(opts...)
	c.options = append(c.options, options)
	c.mu.Unlock()

	if len(c.interim) > 0 && options.SpeechStartedCallback != nil {
		options.SpeechStartedCallback()
	}
	for _, partial := range c.interim {
		if options.InterimTranscriptionCallback != nil {
			options.InterimTranscriptionCallback(partial)
		}
	}

	if c.panicWith != nil {
		panic(c.panicWith)
	}
	if c.block != nil {
		if c.ignoreCtx {
			<-c.block
		} else {
			select {
			case <-c.block:
			case <-ctx.Done():
				return "", speechtotext.NewDeviceError(ctx.Err())
			}
		}
	}
	if c.err != nil {
		return "", c.err
	}
	if len(c.transcripts) == 0 {
		return "", nil
	}
	if call >= len(c.transcripts) {
		call = len(c.transcripts) - 1
	}
	return c.transcripts[call], nil
}

func (c *captureStub) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *captureStub) lastOptions() speechtotext.CaptureOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.options[len(c.options)-1]
}

type modelStub struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
	block   chan struct{}
}

func (m *modelStub) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.reply(prompt)
}

func (m *modelStub) promptsSeen() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func replyWith(reply string) func(string) (string, error) {
	return func(string) (string, error) { return reply, nil }
}

type playbackStub struct {
	mu     sync.Mutex
	spoken []string
	err    error
	block  chan struct{}
}

func (p *playbackStub) Speak(ctx context.Context, text string) error {
	p.mu.Lock()
	p.spoken = append(p.spoken, text)
	p.mu.Unlock()

	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.err
}

func (p *playbackStub) spokenTexts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.spoken...)
}

type recordingSurface struct {
	mu         sync.Mutex
	statuses   []string
	transcript string
	micEnabled bool
	micIcon    MicIcon
}

func (s *recordingSurface) SetStatusText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, text)
}

func (s *recordingSurface) SetTranscriptText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = text
}

func (s *recordingSurface) SetMicEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.micEnabled = enabled
}

func (s *recordingSurface) SetMicIcon(icon MicIcon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.micIcon = icon
}

func (s *recordingSurface) status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statuses) == 0 {
		return ""
	}
	return s.statuses[len(s.statuses)-1]
}

func (s *recordingSurface) allStatuses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statuses...)
}

func (s *recordingSurface) transcriptText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

func (s *recordingSurface) mic() (bool, MicIcon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.micEnabled, s.micIcon
}
