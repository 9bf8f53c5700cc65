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

	"github.com/gorilla/websocket"
	"github.com/koscakluka/kurt/core/audio"
	"github.com/koscakluka/kurt/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultSpeakURL = "wss://api.deepgram.com/v1/speak"

var _ texttospeech.Speaker = (*SpeechClient)(nil)

// SpeechClient synthesizes replies with Deepgram Aura and plays them through
// an audio sink.
type SpeechClient struct {
	sink     audio.Sink
	apiKey   string
	endpoint string
	voice    Voice
	dialer   *websocket.Dialer
}

type ClientOption func(*SpeechClient)

func WithAPIKey(apiKey string) ClientOption {
	return func(c *SpeechClient) { c.apiKey = apiKey }
}

// WithEndpoint overrides the websocket endpoint, mostly useful for tests.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *SpeechClient) { c.endpoint = endpoint }
}

func WithVoice(voice Voice) ClientOption {
	return func(c *SpeechClient) {
		if voice != "" {
			c.voice = voice
		}
	}
}

func NewSpeechClient(sink audio.Sink, opts ...ClientOption) (*SpeechClient, error) {
	if sink == nil {
		return nil, fmt.Errorf("audio sink is required")
	}

	client := &SpeechClient{
		sink:     sink,
		endpoint: defaultSpeakURL,
		voice:    DefaultVoice,
		dialer:   websocket.DefaultDialer,
	}
	client.apiKey, _ = os.LookupEnv("DEEPGRAM_API_KEY")
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}
	if !IsAvailableVoice(string(client.voice)) {
		return nil, fmt.Errorf("invalid voice %q", client.voice)
	}
	return client, nil
}

// Speak blocks until text has been synthesized and the sink has played all
// of it. Cancelling ctx clears whatever audio is still buffered.
func (c *SpeechClient) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "speak reply")
	defer span.End()
	span.SetAttributes(
		attribute.String("tts.voice", string(c.voice)),
		attribute.Int("tts.text_length", len(text)),
	)

	if err := c.speak(ctx, text); err != nil {
		err = texttospeech.NewPlaybackError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *SpeechClient) speak(ctx context.Context, text string) error {
	conn, err := c.connect(ctx, c.sink.EncodingInfo())
	if err != nil {
		return err
	}
	defer conn.Close()

	stream := &speakStream{conn: conn, sink: c.sink, flushed: make(chan struct{})}
	readDone := make(chan error, 1)
	go func() { readDone <- stream.readMessages() }()

	if err := stream.send(speakMessage{Type: "Speak", Text: text}); err != nil {
		return fmt.Errorf("failed to send text: %w", err)
	}
	if err := stream.send(controlMessage{Type: "Flush"}); err != nil {
		return fmt.Errorf("failed to flush text: %w", err)
	}

	select {
	case <-stream.flushed:
	case err := <-readDone:
		if err == nil {
			err = errors.New("stream closed before audio was flushed")
		}
		c.sink.ClearBuffer()
		return fmt.Errorf("synthesis failed: %w", err)
	case <-ctx.Done():
		c.sink.ClearBuffer()
		return ctx.Err()
	}

	if err := stream.send(controlMessage{Type: "Close"}); err != nil {
		logger.WarnContext(ctx, "failed to close deepgram speak stream", "error", err)
	}
	if err := stream.sinkError(); err != nil {
		c.sink.ClearBuffer()
		return fmt.Errorf("failed to play audio: %w", err)
	}

	played := make(chan error, 1)
	go func() { played <- c.sink.AwaitMark() }()
	select {
	case err := <-played:
		if err != nil {
			return fmt.Errorf("failed to play audio: %w", err)
		}
		return nil
	case <-ctx.Done():
		c.sink.ClearBuffer()
		return ctx.Err()
	}
}

func (c *SpeechClient) connect(ctx context.Context, encoding audio.EncodingInfo) (*websocket.Conn, error) {
	if encoding.IsZero() {
		encoding = audio.GetDefaultEncodingInfo()
	}

	speakURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid deepgram endpoint: %w", err)
	}
	queryParams := speakURL.Query()
	queryParams.Set("encoding", encoding.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	queryParams.Set("model", string(c.voice))
	queryParams.Set("container", "none")
	speakURL.RawQuery = queryParams.Encode()

	conn, _, err := c.dialer.DialContext(ctx, speakURL.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}

type speakMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type controlMessage struct {
	Type string `json:"type"`
}

type speakStream struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	sink    audio.Sink

	flushed     chan struct{}
	flushedOnce sync.Once

	errMu   sync.Mutex
	sinkErr error
}

func (s *speakStream) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *speakStream) readMessages() error {
	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}

		switch msgType {
		case websocket.BinaryMessage:
			if err := s.sink.SendAudio(msg); err != nil {
				s.errMu.Lock()
				if s.sinkErr == nil {
					s.sinkErr = err
				}
				s.errMu.Unlock()
			}
		case websocket.TextMessage:
			var parsedMsg struct {
				Type        string `json:"type"`
				Description string `json:"description"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Warn("failed to unmarshal deepgram message", "error", err)
				continue
			}
			switch parsedMsg.Type {
			case "Flushed":
				s.flushedOnce.Do(func() { close(s.flushed) })
			case "Warning", "Error":
				logger.Warn("deepgram speak warning", "type", parsedMsg.Type, "description", parsedMsg.Description)
			}
		}
	}
}

func (s *speakStream) sinkError() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.sinkErr
}
