package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/kurt/core/audio"
	"github.com/koscakluka/kurt/core/texttospeech"
)

func TestSpeakStreamsAudioIntoSinkAndWaitsForPlayback(t *testing.T) {
	var spoken []string
	var spokenMu sync.Mutex
	server := newFakeSpeakServer(t, func(conn *websocket.Conn, msg map[string]string) bool {
		switch msg["type"] {
		case "Speak":
			spokenMu.Lock()
			spoken = append(spoken, msg["text"])
			spokenMu.Unlock()
			_ = conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2})
			_ = conn.WriteMessage(websocket.BinaryMessage, []byte{3, 4})
		case "Flush":
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Flushed","sequence_id":0}`))
		case "Close":
			return false
		}
		return true
	})

	sink := &recordingSink{}
	client := newTestSpeechClient(t, server, sink)
	if err := client.Speak(context.Background(), "Hi there"); err != nil {
		t.Fatalf("expected speak to succeed, got %v", err)
	}

	if got := sink.audio(); !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("expected all audio in sink, got %v", got)
	}
	if sink.awaited() != 1 {
		t.Fatalf("expected playback to be awaited once, got %d", sink.awaited())
	}
	spokenMu.Lock()
	defer spokenMu.Unlock()
	if len(spoken) != 1 || spoken[0] != "Hi there" {
		t.Fatalf("expected text to be sent once, got %v", spoken)
	}
}

func TestSpeakEmptyTextIsNoop(t *testing.T) {
	client, err := NewSpeechClient(&recordingSink{}, WithAPIKey("test"), WithEndpoint("ws://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("expected client, got %v", err)
	}

	if err := client.Speak(context.Background(), "   "); err != nil {
		t.Fatalf("expected empty text to be ignored, got %v", err)
	}
}

func TestSpeakCancelledClearsSink(t *testing.T) {
	server := newFakeSpeakServer(t, func(*websocket.Conn, map[string]string) bool { return true })

	sink := &recordingSink{}
	client := newTestSpeechClient(t, server, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := client.Speak(ctx, "never flushed")
	if !errors.Is(err, texttospeech.ErrPlayback) {
		t.Fatalf("expected playback error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline cause, got %v", err)
	}
	if sink.cleared() == 0 {
		t.Fatalf("expected sink buffer to be cleared")
	}
}

func TestSpeakStreamClosedBeforeFlushIsPlaybackError(t *testing.T) {
	server := newFakeSpeakServer(t, func(conn *websocket.Conn, msg map[string]string) bool {
		return msg["type"] != "Flush"
	})

	client := newTestSpeechClient(t, server, &recordingSink{})
	if err := client.Speak(context.Background(), "hello"); !errors.Is(err, texttospeech.ErrPlayback) {
		t.Fatalf("expected playback error, got %v", err)
	}
}

func TestSpeakRequestsSinkEncodingAndVoice(t *testing.T) {
	requests := make(chan *http.Request, 1)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if strings.Contains(string(msg), "Flush") {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Flushed"}`))
			}
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewSpeechClient(&recordingSink{},
		WithAPIKey("test-key"),
		WithVoice(VoiceLuna),
		WithEndpoint("ws"+strings.TrimPrefix(server.URL, "http")),
	)
	if err != nil {
		t.Fatalf("expected client, got %v", err)
	}
	if err := client.Speak(context.Background(), "hello"); err != nil {
		t.Fatalf("expected speak to succeed, got %v", err)
	}

	r := <-requests
	if got := r.URL.Query().Get("model"); got != string(VoiceLuna) {
		t.Fatalf("expected voice %q, got %q", VoiceLuna, got)
	}
	if got := r.URL.Query().Get("encoding"); got != "linear16" {
		t.Fatalf("expected linear16 encoding, got %q", got)
	}
	if got := r.Header.Get("Authorization"); got != "Token test-key" {
		t.Fatalf("expected token authorization, got %q", got)
	}
}

func TestNewSpeechClientRejectsUnknownVoice(t *testing.T) {
	if _, err := NewSpeechClient(&recordingSink{}, WithAPIKey("test"), WithVoice("robot")); err == nil {
		t.Fatalf("expected unknown voice to be rejected")
	}
}

func TestNewSpeechClientRequiresAPIKey(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "")

	if _, err := NewSpeechClient(&recordingSink{}); err == nil {
		t.Fatalf("expected missing api key to fail")
	}
}

func TestAvailableVoicesIncludeDefault(t *testing.T) {
	if !IsAvailableVoice(string(DefaultVoice)) {
		t.Fatalf("expected default voice to be available")
	}

	voices := GetAvailableVoices()
	voices[0] = "changed"
	if GetAvailableVoices()[0] == "changed" {
		t.Fatalf("expected available voices to be copied")
	}
}

func newTestSpeechClient(t *testing.T, server *httptest.Server, sink audio.Sink) *SpeechClient {
	t.Helper()

	client, err := NewSpeechClient(sink,
		WithAPIKey("test-key"),
		WithEndpoint("ws"+strings.TrimPrefix(server.URL, "http")),
	)
	if err != nil {
		t.Fatalf("failed to create speech client: %v", err)
	}
	return client
}

// newFakeSpeakServer passes every JSON message to handle and closes the
// connection normally once handle returns false.
func newFakeSpeakServer(t *testing.T, handle func(conn *websocket.Conn, msg map[string]string) bool) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg map[string]string
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Errorf("unexpected message %q", data)
				return
			}
			if !handle(conn, msg) {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

type recordingSink struct {
	mu         sync.Mutex
	buffer     []byte
	awaitCount int
	clearCount int
}

func (s *recordingSink) EncodingInfo() audio.EncodingInfo { return audio.GetDefaultEncodingInfo() }

func (s *recordingSink) SendAudio(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = append(s.buffer, data...)
	return nil
}

func (s *recordingSink) AwaitMark() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaitCount++
	return nil
}

func (s *recordingSink) ClearBuffer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCount++
	s.buffer = nil
}

func (s *recordingSink) audio() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buffer...)
}

func (s *recordingSink) awaited() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitCount
}

func (s *recordingSink) cleared() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearCount
}
