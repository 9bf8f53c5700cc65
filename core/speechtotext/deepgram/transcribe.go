package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/kurt/core/audio"
	"github.com/koscakluka/kurt/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultListenURL = "wss://api.deepgram.com/v1/listen"
	defaultModel     = "nova-3"
	defaultLanguage  = "en-US"

	// finalResultsGrace bounds how long to wait for trailing results after
	// the stream has been closed.
	finalResultsGrace = 2 * time.Second
)

var errStreamClosed = errors.New("transcription stream closed")

// CaptureClient records one utterance from an audio source and transcribes
// it with Deepgram live transcription.
type CaptureClient struct {
	source   audio.Source
	apiKey   string
	endpoint string
	model    string
	language string
	dialer   *websocket.Dialer
}

type ClientOption func(*CaptureClient)

func WithAPIKey(apiKey string) ClientOption {
	return func(c *CaptureClient) { c.apiKey = apiKey }
}

// WithEndpoint overrides the websocket endpoint, mostly useful for tests.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *CaptureClient) { c.endpoint = endpoint }
}

func WithModel(model string) ClientOption {
	return func(c *CaptureClient) {
		if model != "" {
			c.model = model
		}
	}
}

func WithLanguage(language string) ClientOption {
	return func(c *CaptureClient) {
		if language != "" {
			c.language = language
		}
	}
}

func NewCaptureClient(source audio.Source, opts ...ClientOption) (*CaptureClient, error) {
	if source == nil {
		return nil, fmt.Errorf("audio source is required")
	}

	client := &CaptureClient{
		source:   source,
		endpoint: defaultListenURL,
		model:    defaultModel,
		language: defaultLanguage,
		dialer:   websocket.DefaultDialer,
	}
	client.apiKey, _ = os.LookupEnv("DEEPGRAM_API_KEY")
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}
	return client, nil
}

// Capture listens for a single phrase. It returns once speech has ended,
// the phrase limit is hit, or no speech started within the listen timeout.
func (c *CaptureClient) Capture(ctx context.Context, opts ...speechtotext.CaptureOption) (string, error) {
	ctx, span := tracer.Start(ctx, "capture utterance")
	defer span.End()

	options := speechtotext.NewCaptureOptions(
		append([]speechtotext.CaptureOption{speechtotext.WithEncodingInfo(c.source.EncodingInfo())}, opts...)...,
	)
	span.SetAttributes(
		attribute.Float64("capture.listen_timeout", options.ListenTimeout.Seconds()),
		attribute.Float64("capture.phrase_time_limit", options.PhraseTimeLimit.Seconds()),
	)

	transcript, err := c.capture(ctx, options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return transcript, nil
}

func (c *CaptureClient) capture(ctx context.Context, options speechtotext.CaptureOptions) (string, error) {
	query, err := listenQuery(options.EncodingInfo, c.model, c.language)
	if err != nil {
		return "", speechtotext.NewDeviceError(err)
	}

	conn, err := c.connect(ctx, query)
	if err != nil {
		return "", speechtotext.NewDeviceError(err)
	}
	defer conn.Close()

	session := newCaptureSession(options)
	readDone := make(chan error, 1)
	go func() { readDone <- session.readMessages(conn) }()

	var writeMu sync.Mutex
	writeErr := make(chan error, 1)
	write := func(messageType int, data []byte) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteMessage(messageType, data); err != nil {
			select {
			case writeErr <- err:
			default:
			}
		}
	}

	if err := c.source.StartCapture(ctx, func(frame []byte) { write(websocket.BinaryMessage, frame) }); err != nil {
		return "", speechtotext.NewDeviceError(fmt.Errorf("failed to start microphone: %w", err))
	}
	stopCapture := sync.OnceFunc(func() {
		if err := c.source.StopCapture(); err != nil {
			logger.WarnContext(ctx, "failed to stop microphone", "error", err)
		}
	})
	defer stopCapture()

	listenTimer := time.NewTimer(options.ListenTimeout)
	defer listenTimer.Stop()
	speechStarted := session.started
	var phraseLimit <-chan time.Time
	readFinished := false

wait:
	for {
		select {
		case <-ctx.Done():
			return "", speechtotext.NewDeviceError(ctx.Err())
		case <-listenTimer.C:
			if !session.heardSpeech() {
				return "", speechtotext.NewNoSpeechError(fmt.Errorf("nothing heard within %s", options.ListenTimeout))
			}
		case <-speechStarted:
			speechStarted = nil
			phraseLimit = time.After(options.PhraseTimeLimit)
		case <-phraseLimit:
			break wait
		case <-session.ended:
			break wait
		case err := <-writeErr:
			return "", speechtotext.NewDeviceError(fmt.Errorf("failed to stream audio: %w", err))
		case err := <-readDone:
			readFinished = true
			if session.transcript() == "" && !session.heardSpeech() {
				if err == nil {
					err = errStreamClosed
				}
				return "", speechtotext.NewDeviceError(fmt.Errorf("transcription stream failed: %w", err))
			}
			break wait
		}
	}

	stopCapture()
	if !readFinished {
		closeStream, _ := json.Marshal(struct {
			Type string `json:"type"`
		}{Type: string(api.TypeCloseStreamResponse)})
		write(websocket.TextMessage, closeStream)

		select {
		case <-readDone:
		case <-time.After(finalResultsGrace):
		case <-ctx.Done():
		}
	}

	transcript := session.transcript()
	if transcript == "" {
		if session.heardSpeech() {
			return "", speechtotext.NewUnintelligibleError(nil)
		}
		return "", speechtotext.NewNoSpeechError(nil)
	}
	return transcript, nil
}

func (c *CaptureClient) connect(ctx context.Context, query url.Values) (*websocket.Conn, error) {
	listenURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid deepgram endpoint: %w", err)
	}
	listenURL.RawQuery = query.Encode()

	conn, _, err := c.dialer.DialContext(ctx, listenURL.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}

// listenQuery builds the live transcription parameters. Deepgram only
// accepts companded audio at 8kHz.
func listenQuery(info audio.EncodingInfo, model, language string) (url.Values, error) {
	switch info.SampleRate {
	case 8000, 16000, 24000, 32000, 48000:
	default:
		return nil, fmt.Errorf("unsupported sample rate %d", info.SampleRate)
	}
	switch info.Format {
	case audio.EncodingLinear16:
	case audio.EncodingALaw, audio.EncodingMulaw:
		if info.SampleRate != 8000 {
			return nil, fmt.Errorf("%s audio must be 8000Hz, got %d", info.Format.Name(), info.SampleRate)
		}
	default:
		return nil, fmt.Errorf("unsupported encoding %q", info.Format.Name())
	}

	return url.Values{
		"encoding":         {info.Format.Name()},
		"sample_rate":      {strconv.Itoa(info.SampleRate)},
		"channels":         {strconv.Itoa(audio.DefaultChannels)},
		"model":            {model},
		"language":         {language},
		"smart_format":     {"true"},
		"interim_results":  {"true"},
		"utterance_end_ms": {"1000"},
		"endpointing":      {"300"},
		"vad_events":       {"true"},
	}, nil
}

type captureSession struct {
	options speechtotext.CaptureOptions

	mu       sync.Mutex
	segments []string
	speech   bool

	started     chan struct{}
	startedOnce sync.Once
	ended       chan struct{}
	endedOnce   sync.Once
}

func newCaptureSession(options speechtotext.CaptureOptions) *captureSession {
	return &captureSession{
		options: options,
		started: make(chan struct{}),
		ended:   make(chan struct{}),
	}
}

func (s *captureSession) readMessages(conn *websocket.Conn) error {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		if msgType == websocket.TextMessage {
			s.processMessage(msg)
		}
	}
}

func (s *captureSession) processMessage(msg []byte) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Warn("failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram results", "error", err)
			return
		}

		transcript := ""
		if len(msgResp.Channel.Alternatives) > 0 {
			transcript = strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		}

		if transcript != "" {
			s.markSpeechStarted()
			if msgResp.IsFinal {
				s.addSegment(transcript)
			} else if s.options.InterimTranscriptionCallback != nil {
				s.options.InterimTranscriptionCallback(strings.TrimSpace(s.transcript() + " " + transcript))
			}
		}
		if msgResp.IsFinal && msgResp.SpeechFinal && s.transcript() != "" {
			s.markEnded()
		}

	case api.TypeUtteranceEndResponse:
		if s.heardSpeech() {
			s.markEnded()
		}

	case api.TypeSpeechStartedResponse:
		s.markSpeechStarted()
	}
}

func (s *captureSession) markSpeechStarted() {
	s.startedOnce.Do(func() {
		s.mu.Lock()
		s.speech = true
		s.mu.Unlock()
		close(s.started)
		if s.options.SpeechStartedCallback != nil {
			s.options.SpeechStartedCallback()
		}
	})
}

func (s *captureSession) markEnded() {
	s.endedOnce.Do(func() { close(s.ended) })
}

func (s *captureSession) addSegment(segment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = append(s.segments, segment)
}

func (s *captureSession) heardSpeech() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speech
}

func (s *captureSession) transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.segments, " ")
}
