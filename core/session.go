package orchestration

import (
	"sync/atomic"

	"github.com/jinzhu/copier"
)

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Exchange is one line of the conversation. It is stored and handed out by
// value.
type Exchange struct {
	Speaker Speaker
	Text    string
}

// Session holds the state shared by the orchestrator and the presentation
// surface. Only the running flag may be read off the UI loop.
type Session struct {
	listening bool
	speaking  bool
	running   atomic.Bool

	history []Exchange
}

func NewSession() *Session {
	session := &Session{}
	session.running.Store(true)
	return session
}

func (s *Session) IsListening() bool { return s.listening }
func (s *Session) IsSpeaking() bool  { return s.speaking }
func (s *Session) IsRunning() bool   { return s.running.Load() }

// History returns a copy of every exchange, oldest first.
func (s *Session) History() []Exchange {
	history := []Exchange{}
	if err := copier.CopyWithOption(&history, s.history, copier.Option{DeepCopy: true}); err != nil {
		logger.Error("failed to copy session history", "error", err)
		return append([]Exchange(nil), s.history...)
	}
	return history
}

// Recent returns up to n of the latest exchanges, oldest first.
func (s *Session) Recent(n int) []Exchange {
	return lastN(s.history, n)
}

func (s *Session) Len() int { return len(s.history) }

func (s *Session) append(speaker Speaker, text string) {
	s.history = append(s.history, Exchange{Speaker: speaker, Text: text})
}

func lastN(exchanges []Exchange, n int) []Exchange {
	if n <= 0 || len(exchanges) == 0 {
		return nil
	}
	if len(exchanges) > n {
		exchanges = exchanges[len(exchanges)-n:]
	}
	return append([]Exchange(nil), exchanges...)
}
